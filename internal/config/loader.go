package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// JOBSCOUT_SEARCH_MAX_CONCURRENT_SCRAPERS
const EnvPrefix = "JOBSCOUT"

// legacyEnv keeps the plain variable names used by existing deployments
var legacyEnv = map[string][]string{
	"log.level":               {"LOG_LEVEL"},
	"server.host":             {"MCP_HOST"},
	"server.port":             {"PORT"},
	"adzuna.app_id":           {"ADZUNA_APP_ID"},
	"adzuna.app_key":          {"ADZUNA_APP_KEY"},
	"adzuna.country":          {"ADZUNA_COUNTRY"},
	"neo4j.uri":               {"NEO4J_URI"},
	"neo4j.username":          {"NEO4J_USERNAME"},
	"neo4j.password":          {"NEO4J_PASSWORD"},
	"redis.addr":              {"REDIS_ADDR"},
	"redis.password":          {"REDIS_PASSWORD"},
	"storage.dsn":             {"DATABASE_URL"},
	"sheets.credentials_file": {"GOOGLE_APPLICATION_CREDENTIALS"},
}

// Load reads .env, then the YAML file (configFile, or configs/config.yaml
// when empty and present), then environment overrides
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		args := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv also applies to Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("search.max_results_per_site", 25)
	v.SetDefault("search.max_concurrent_scrapers", 2)
	v.SetDefault("search.rate_limit_min_delay", 1.0)
	v.SetDefault("search.rate_limit_max_delay", 3.0)
	v.SetDefault("search.linkedin_min_delay", 3.0)
	v.SetDefault("search.linkedin_max_delay", 8.0)
	v.SetDefault("search.request_timeout", 20.0)
	v.SetDefault("search.max_attempts", 2)
	v.SetDefault("search.max_pages", 10)
	v.SetDefault("search.user_agent", "")
	v.SetDefault("search.cache_ttl", 900.0)

	v.SetDefault("sources.enable_adzuna", false)
	v.SetDefault("sources.enable_arbeitnow", true)
	v.SetDefault("sources.enable_remotive", true)
	v.SetDefault("sources.enable_weworkremotely", true)
	v.SetDefault("sources.enable_linkedin", true)
	v.SetDefault("sources.enable_indeed", false)
	v.SetDefault("sources.weworkremotely_feeds", []string{})

	v.SetDefault("adzuna.app_id", "")
	v.SetDefault("adzuna.app_key", "")
	v.SetDefault("adzuna.country", "us")

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.username", "")
	v.SetDefault("neo4j.password", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "jobscout:")

	v.SetDefault("storage.driver", "")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.sheet_name", "Listings")

	v.SetDefault("chrome.exec_path", "")
	v.SetDefault("chrome.settle_delay", 1.5)
	v.SetDefault("chrome.timeout", 45.0)
}
