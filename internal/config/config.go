package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains runtime settings for the CLI and the MCP server
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Search  SearchConfig  `mapstructure:"search"`
	Sources SourcesConfig `mapstructure:"sources"`
	Adzuna  AdzunaConfig  `mapstructure:"adzuna"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Storage StorageConfig `mapstructure:"storage"`
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	Chrome  ChromeConfig  `mapstructure:"chrome"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// SearchConfig holds the orchestrator and politeness knobs. Delays are in
// seconds.
type SearchConfig struct {
	MaxResultsPerSite     int     `mapstructure:"max_results_per_site"`
	MaxConcurrentScrapers int     `mapstructure:"max_concurrent_scrapers"`
	RateLimitMinDelay     float64 `mapstructure:"rate_limit_min_delay"`
	RateLimitMaxDelay     float64 `mapstructure:"rate_limit_max_delay"`
	LinkedInMinDelay      float64 `mapstructure:"linkedin_min_delay"`
	LinkedInMaxDelay      float64 `mapstructure:"linkedin_max_delay"`
	RequestTimeout        float64 `mapstructure:"request_timeout"`
	MaxAttempts           int     `mapstructure:"max_attempts"`
	MaxPages              int     `mapstructure:"max_pages"`
	UserAgent             string  `mapstructure:"user_agent"`
	CacheTTL              float64 `mapstructure:"cache_ttl"`
}

type SourcesConfig struct {
	EnableAdzuna         bool     `mapstructure:"enable_adzuna"`
	EnableArbeitnow      bool     `mapstructure:"enable_arbeitnow"`
	EnableRemotive       bool     `mapstructure:"enable_remotive"`
	EnableWeWorkRemotely bool     `mapstructure:"enable_weworkremotely"`
	EnableLinkedIn       bool     `mapstructure:"enable_linkedin"`
	EnableIndeed         bool     `mapstructure:"enable_indeed"`
	WeWorkRemotelyFeeds  []string `mapstructure:"weworkremotely_feeds"`
}

type AdzunaConfig struct {
	AppID   string `mapstructure:"app_id"`
	AppKey  string `mapstructure:"app_key"`
	Country string `mapstructure:"country"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"` // empty disables the response cache
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// StorageConfig selects the listing repository used by --store and the
// job_search persist flag
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3, postgres, neo4j or empty
	DSN    string `mapstructure:"dsn"`
}

type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	SheetName       string `mapstructure:"sheet_name"`
}

type ChromeConfig struct {
	ExecPath    string  `mapstructure:"exec_path"`
	SettleDelay float64 `mapstructure:"settle_delay"`
	Timeout     float64 `mapstructure:"timeout"`
}

// Storage drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverNeo4j    = "neo4j"
)

// Seconds converts a float seconds setting to a duration
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Addr is the listen address of the MCP server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ApplyDefaults fills zero values that viper defaults cannot express, e.g.
// when a Config is built by hand in tests
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	s := &c.Search
	if s.MaxResultsPerSite <= 0 {
		s.MaxResultsPerSite = 25
	}
	if s.MaxConcurrentScrapers <= 0 {
		s.MaxConcurrentScrapers = 2
	}
	if s.RateLimitMinDelay == 0 && s.RateLimitMaxDelay == 0 {
		s.RateLimitMinDelay, s.RateLimitMaxDelay = 1.0, 3.0
	}
	if s.LinkedInMinDelay == 0 && s.LinkedInMaxDelay == 0 {
		s.LinkedInMinDelay, s.LinkedInMaxDelay = 3.0, 8.0
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 20
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 2
	}
	if s.MaxPages <= 0 {
		s.MaxPages = 10
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = 900
	}

	if c.Adzuna.Country == "" {
		c.Adzuna.Country = "us"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "jobscout:"
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = "Listings"
	}
	if c.Chrome.Timeout <= 0 {
		c.Chrome.Timeout = 45
	}
}

// Validate reports every inconsistent setting at once
func (c Config) Validate() error {
	var problems []string

	s := c.Search
	if s.RateLimitMinDelay < 0 || s.RateLimitMaxDelay < s.RateLimitMinDelay {
		problems = append(problems, "search.rate_limit_max_delay must be >= rate_limit_min_delay >= 0")
	}
	if s.LinkedInMinDelay < 0 || s.LinkedInMaxDelay < s.LinkedInMinDelay {
		problems = append(problems, "search.linkedin_max_delay must be >= linkedin_min_delay >= 0")
	}
	if s.MaxConcurrentScrapers < 1 {
		problems = append(problems, "search.max_concurrent_scrapers must be positive")
	}
	if s.MaxResultsPerSite < 1 {
		problems = append(problems, "search.max_results_per_site must be positive")
	}

	if c.Sources.EnableAdzuna && (c.Adzuna.AppID == "" || c.Adzuna.AppKey == "") {
		problems = append(problems, "adzuna is enabled but ADZUNA_APP_ID / ADZUNA_APP_KEY are missing")
	}

	switch c.Storage.Driver {
	case "":
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			problems = append(problems, "storage.dsn is required for driver "+c.Storage.Driver)
		}
	case DriverNeo4j:
		if c.Neo4j.URI == "" || c.Neo4j.Username == "" || c.Neo4j.Password == "" {
			problems = append(problems, "neo4j storage needs NEO4J_URI, NEO4J_USERNAME and NEO4J_PASSWORD")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not one of sqlite3, postgres, neo4j", c.Storage.Driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
