package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/job/providers"
	exportsheets "github.com/honeycarbs/jobscout/internal/export/sheets"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
	"github.com/honeycarbs/jobscout/internal/metrics"
	storageneo4j "github.com/honeycarbs/jobscout/internal/storage/neo4j"
	"github.com/honeycarbs/jobscout/internal/storage/sqlstore"
	"github.com/honeycarbs/jobscout/pkg/cache"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/logging"
	pkgneo4j "github.com/honeycarbs/jobscout/pkg/neo4j"
	"github.com/honeycarbs/jobscout/pkg/render"
	pkgsheets "github.com/honeycarbs/jobscout/pkg/sheets"
)

const tracerName = "github.com/honeycarbs/jobscout"

// Transport replaces the network layer of every source. The zero value
// performs live HTTP.
type Transport struct {
	// Override serves responses without a round trip, e.g. a cassette player
	Override fetch.RequestFunc
	// HTTPClient is used for live requests, e.g. wrapped by a recorder
	HTTPClient *http.Client
}

// ProviderSet builds an App from configuration
var ProviderSet = wire.NewSet(
	provideLogger,
	providePrometheus,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	metrics.New,
	provideCache,
	provideFetcher,
	provideSources,
	provideService,
	wire.Bind(new(job.Searcher), new(*job.Service)),
	provideNeo4j,
	provideRepository,
	provideExporter,
	provideGraph,
	newApp,
)

func provideLogger(cfg config.Config) *logging.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

func providePrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// provideCache returns nil when Redis is not configured or unreachable; the
// fetch client then goes to the network every time
func provideCache(ctx context.Context, cfg config.Config, logger *logging.Logger) (fetch.Cache, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}

	rc, err := cache.NewRedis(cache.Config{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("response cache disabled", "addr", cfg.Redis.Addr, "err", err)
		_ = rc.Close()
		return nil, func() {}, nil
	}

	logger.Info("response cache enabled", "addr", cfg.Redis.Addr, "ttl", config.Seconds(cfg.Search.CacheTTL))
	return rc, func() { _ = rc.Close() }, nil
}

func provideFetcher(cfg config.Config, c fetch.Cache, tr Transport) *fetch.Client {
	s := cfg.Search
	return fetch.New(fetch.Config{
		HTTPClient:  tr.HTTPClient,
		UserAgent:   s.UserAgent,
		Override:    tr.Override,
		Cache:       c,
		CacheTTL:    config.Seconds(s.CacheTTL),
		MaxAttempts: s.MaxAttempts,
		Timeout:     config.Seconds(s.RequestTimeout),
	})
}

func provideSources(cfg config.Config, fetcher *fetch.Client, tr Transport, logger *logging.Logger) (*providers.Registry, func(), error) {
	deps := providers.Deps{Fetcher: fetcher, Logger: logger.Named("sources")}
	// recorded or replayed traffic cannot go through a browser
	if tr.Override != nil || tr.HTTPClient != nil {
		deps.Renderer = render.HTTP{Client: fetcher}
	}

	reg, err := providers.NewRegistry(cfg, deps)
	if err != nil {
		return nil, nil, err
	}
	return reg, reg.Close, nil
}

func provideService(cfg config.Config, sources *providers.Registry, logger *logging.Logger, m *metrics.Metrics) (*job.Service, error) {
	return job.NewService(
		job.WithProviders(sources.Providers()...),
		job.WithSettings(job.Settings{
			MaxResultsPerSite: cfg.Search.MaxResultsPerSite,
			MaxConcurrent:     cfg.Search.MaxConcurrentScrapers,
		}),
		job.WithLogger(logger.Named("search")),
		job.WithRecorder(m),
		job.WithTracer(otel.Tracer(tracerName)),
	)
}

// provideNeo4j connects only when the graph is the listing store or the
// URI is set for graph_inspect
func provideNeo4j(ctx context.Context, cfg config.Config, logger *logging.Logger) (*pkgneo4j.Client, func(), error) {
	if cfg.Neo4j.URI == "" {
		return nil, func() {}, nil
	}

	client, err := pkgneo4j.NewClient(ctx, pkgneo4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		if cfg.Storage.Driver == config.DriverNeo4j {
			return nil, nil, err
		}
		logger.Warn("neo4j unavailable, graph tools disabled", "uri", cfg.Neo4j.URI, "err", err)
		return nil, func() {}, nil
	}

	logger.Info("neo4j connected", "uri", cfg.Neo4j.URI)
	return client, func() { _ = client.Close(context.Background()) }, nil
}

func provideRepository(ctx context.Context, cfg config.Config, graph *pkgneo4j.Client) (job.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case "":
		return nil, func() {}, nil
	case config.DriverNeo4j:
		if graph == nil {
			return nil, nil, fmt.Errorf("app: neo4j storage selected but neo4j.uri is empty")
		}
		return storageneo4j.NewListingRepository(graph), func() {}, nil
	case config.DriverSQLite, config.DriverPostgres:
		store, err := sqlstore.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown storage driver %q", cfg.Storage.Driver)
	}
}

func provideExporter(ctx context.Context, cfg config.Config, logger *logging.Logger) (tools.Exporter, error) {
	if cfg.Sheets.CredentialsFile == "" {
		return nil, nil
	}

	client, err := pkgsheets.NewClient(ctx, pkgsheets.Config{CredentialsPath: cfg.Sheets.CredentialsFile})
	if err != nil {
		logger.Warn("google sheets export disabled", "err", err)
		return nil, nil
	}
	return exportsheets.NewExporter(client, cfg.Sheets.SheetName), nil
}

func provideGraph(client *pkgneo4j.Client) tools.GraphReader {
	if client == nil {
		return nil
	}
	return client
}
