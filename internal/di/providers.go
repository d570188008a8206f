// Package di wires the application together. Providers are plain
// constructors; wire generates InitializeApp from them.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/auth"
	"github.com/zengarv/StockInsightAPI/internal/dataset"
	"github.com/zengarv/StockInsightAPI/internal/domain/repository"
	"github.com/zengarv/StockInsightAPI/internal/handler/api"
	mid "github.com/zengarv/StockInsightAPI/internal/middleware"
	internalrepo "github.com/zengarv/StockInsightAPI/internal/repository"
	"github.com/zengarv/StockInsightAPI/internal/scheduler"
	svccache "github.com/zengarv/StockInsightAPI/internal/service/cache"
	"github.com/zengarv/StockInsightAPI/internal/service/ratelimit"
	"github.com/zengarv/StockInsightAPI/internal/tier"
	"github.com/zengarv/StockInsightAPI/internal/usecase"
	"github.com/zengarv/StockInsightAPI/pkg/cache"
	pkgch "github.com/zengarv/StockInsightAPI/pkg/clickhouse"
	"github.com/zengarv/StockInsightAPI/pkg/config"
	xhttp "github.com/zengarv/StockInsightAPI/pkg/http"
	applogger "github.com/zengarv/StockInsightAPI/pkg/logger"
	"github.com/zengarv/StockInsightAPI/pkg/metrics"
	"github.com/zengarv/StockInsightAPI/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when the dataset is
// served from ClickHouse. Returns nil for the CSV source.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Dataset.Source != "clickhouse" {
		return nil, nil
	}
	ch := cfg.Dataset.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSeriesSource selects the dataset source.
func ProvideSeriesSource(cfg *config.Config, chClient *pkgch.Client) repository.SeriesSource {
	if cfg.Dataset.Source == "clickhouse" {
		return dataset.NewClickHouseSource(chClient, cfg.Dataset.ClickHouse.Table)
	}
	return dataset.NewCSVSource(cfg.Dataset.CSVPath)
}

// ProvideDatasetStore loads the dataset once at startup. A load failure
// aborts initialization.
func ProvideDatasetStore(src repository.SeriesSource, log *applogger.Logger, m repository.Metrics) (*dataset.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := dataset.NewStore(ctx, src, log)
	if err != nil {
		return nil, err
	}
	info := store.Info()
	m.RecordDataset(info.Records, info.Symbols)
	return store, nil
}

// ProvideRedisCache connects to Redis for the redis and layered backends,
// and for the redis rate limit store. Returns nil when nothing needs it; a
// connection failure degrades to nil with a warning so the service can run
// on the in-memory fallbacks.
func ProvideRedisCache(cfg *config.Config, log *applogger.Logger) *cache.RedisCache {
	needed := cfg.Cache.Backend == "redis" || cfg.Cache.Backend == "layered" || cfg.RateLimit.Store == "redis"
	if !needed {
		return nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		log.Warn("redis unreachable, falling back to in-memory cache and counters", applogger.Error(err))
		return nil
	}
	return rc
}

// ProvideCacheService selects the response cache backend.
func ProvideCacheService(cfg *config.Config, redis *cache.RedisCache, log *applogger.Logger) cache.Service {
	memory := func() cache.Service {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxEntries(cfg.Cache.MaxEntries),
			cache.WithMemoryTTL(cfg.Cache.TTL),
		)
	}

	switch cfg.Cache.Backend {
	case "redis":
		if redis == nil {
			return memory()
		}
		return redis
	case "layered":
		if redis == nil {
			return memory()
		}
		return cache.NewLayeredCache(redis,
			cache.WithLayeredMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL))
	default:
		return memory()
	}
}

// ProvideIndicatorCache wraps the cache backend for indicator responses.
func ProvideIndicatorCache(cfg *config.Config, svc cache.Service, m repository.Metrics, log *applogger.Logger) *svccache.IndicatorCache {
	return svccache.NewIndicatorCache(svc, cfg.Cache.TTL, cfg.Cache.OpTimeout, m, log)
}

// CounterInfra bundles the rate counter store with the purger the
// scheduler maintains.
type CounterInfra struct {
	Store  ratelimit.CounterStore
	Purger scheduler.Purger
}

// ProvideCounterInfra selects the rate counter backend. The redis store is
// wrapped with an in-memory fallback so a mid-flight outage degrades to
// per-process counting instead of failing requests; the fallback's counters
// still need the purge job.
func ProvideCounterInfra(cfg *config.Config, redis *cache.RedisCache, log *applogger.Logger) *CounterInfra {
	ms := ratelimit.NewMemoryStore()
	if cfg.RateLimit.Store == "redis" && redis != nil {
		return &CounterInfra{Store: ratelimit.NewFallbackStore(ratelimit.NewRedisStore(redis), ms, log), Purger: ms}
	}
	return &CounterInfra{Store: ms, Purger: ms}
}

// ProvideTierTable validates and builds the tier policy table.
func ProvideTierTable(cfg *config.Config) (*tier.Table, error) {
	return tier.NewTable(cfg.Tiers)
}

// ProvideLimiter creates the daily rate limiter.
func ProvideLimiter(infra *CounterInfra, tiers *tier.Table) *ratelimit.DailyLimiter {
	return ratelimit.NewDailyLimiter(infra.Store, tiers, nil)
}

// ProvideScheduler creates the maintenance scheduler.
func ProvideScheduler(infra *CounterInfra, log *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(infra.Purger, log)
}

// ProvideUserStore opens the SQLite user database.
func ProvideUserStore(cfg *config.Config, log *applogger.Logger) (repository.UserStore, error) {
	return internalrepo.NewSQLiteUserStore(cfg.Database.Path, log)
}

// ProvideJWTManager creates the token issuer.
func ProvideJWTManager(cfg *config.Config) *auth.JWTManager {
	return auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

// ProvideHasher creates the password and API key hasher.
func ProvideHasher(cfg *config.Config) *auth.Hasher {
	return auth.NewHasher(cfg.Auth.BcryptCost)
}

// ProvideAuthUseCase creates the auth use case.
func ProvideAuthUseCase(users repository.UserStore, jwt *auth.JWTManager, hasher *auth.Hasher, log *applogger.Logger) *usecase.AuthUseCase {
	return usecase.NewAuthUseCase(users, jwt, hasher, log)
}

// ProvideIndicatorsUseCase creates the indicator use case.
func ProvideIndicatorsUseCase(
	store *dataset.Store,
	tiers *tier.Table,
	limiter *ratelimit.DailyLimiter,
	indCache *svccache.IndicatorCache,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.IndicatorsUseCase {
	return usecase.NewIndicatorsUseCase(store, tiers, limiter, indCache, m, log)
}

// ProvideAuthMiddleware creates the credential-checking middleware.
func ProvideAuthMiddleware(authUC *usecase.AuthUseCase, log *applogger.Logger) echo.MiddlewareFunc {
	return mid.RequireAuth(authUC, log)
}

// ProvideRouter builds the handler tree.
func ProvideRouter(
	cfg *config.Config,
	log *applogger.Logger,
	authUC *usecase.AuthUseCase,
	indUC *usecase.IndicatorsUseCase,
	store *dataset.Store,
	cacheSvc cache.Service,
	guard echo.MiddlewareFunc,
) xhttp.Handler {
	return api.NewRouter(
		api.NewAuthHandler(log, authUC, guard),
		api.NewIndicatorsHandler(log, indUC, guard),
		api.NewSystemHandler(cfg.Environment, store, cacheSvc),
	)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	users repository.UserStore,
	cacheSvc cache.Service,
	sched *scheduler.Scheduler,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, handler, users, cacheSvc, sched, chClient)
}
