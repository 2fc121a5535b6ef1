package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"agency/internal/catalog"
	consentmetrics "agency/internal/consent/metrics"
	consentservice "agency/internal/consent/service"
	consentstore "agency/internal/consent/store"
	jwttoken "agency/internal/jwt_token"
	"agency/internal/platform/config"
	"agency/internal/platform/httpserver"
	"agency/internal/platform/logger"
	"agency/internal/platform/metrics"
	"agency/internal/platform/postgres"
	platformredis "agency/internal/platform/redis"
	ratelimitmetrics "agency/internal/ratelimit/metrics"
	ratelimitmw "agency/internal/ratelimit/middleware"
	ratelimitservice "agency/internal/ratelimit/service"
	"agency/internal/ratelimit/store/bucket"
	"agency/pkg/platform/telemetry"
	"agency/pkg/platform/telemetry/dispatcher"
	"agency/pkg/platform/telemetry/publishers/kafka"
	"agency/pkg/platform/telemetry/publishers/logpub"
)

const (
	purgeInterval = time.Hour
	sweepInterval = 5 * time.Minute
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	holder, report, err := catalog.LoadHolder(ctx, catalogSource(cfg.Catalog))
	if err != nil {
		for _, issue := range report.Errors {
			log.Error("catalog issue", "issue", issue.String())
		}
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, issue := range report.Warnings {
		log.Warn("catalog warning", "issue", issue.String())
	}

	var redisClient *platformredis.Client
	if cfg.NeedsRedis() {
		redisClient, err = platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
	}

	kv, closeStore, purge, err := openConsentStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := openPublisher(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	events := dispatcher.New(publisher,
		dispatcher.WithLogger(log),
		dispatcher.WithMetrics(dispatcher.NewMetrics(m.Registry)),
		dispatcher.WithBufferSize(cfg.Telemetry.BufferSize),
		dispatcher.WithSampler(dispatcher.NewSampler(cfg.Telemetry.SampleRate)),
		dispatcher.WithCircuitBreaker(dispatcher.NewCircuitBreaker(cfg.Telemetry.BreakerThreshold, cfg.Telemetry.BreakerCooldown)),
	)
	// Closed after the server stops so in-flight requests can still track.
	defer events.Close()

	consent := consentservice.New(
		consentstore.NewRepository(kv, consentstore.WithSnapshotMaxAge(cfg.ConsentSnapshotTTL)),
		consentservice.WithLogger(log),
		consentservice.WithMetrics(consentmetrics.New(m.Registry)),
		consentservice.WithTelemetry(events),
		consentservice.WithIPHashKey([]byte(cfg.IPHashKey)),
	)
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	buckets, sweep := rateLimitStore(cfg.RateLimit, redisClient)
	limiter := ratelimitservice.New(buckets,
		ratelimitservice.WithLogger(log),
		ratelimitservice.WithMetrics(ratelimitmetrics.New(m.Registry)),
	)

	router := newRouter(routerDeps{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		catalog: holder,
		consent: consent,
		tokens:  tokens,
		events:  events,
		limiter: ratelimitmw.New(limiter, log, ratelimitmw.WithDisabled(cfg.RateLimit.Disabled)),
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout, log)
	})
	if purge != nil {
		g.Go(func() error {
			every(gctx, purgeInterval, func(ctx context.Context) {
				n, err := purge(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("consent purge failed", "error", err)
					return
				}
				if n > 0 {
					log.Info("purged expired consent rows", "rows", n)
				}
			})
			return nil
		})
	}
	if sweep != nil {
		g.Go(func() error {
			every(gctx, sweepInterval, func(context.Context) { sweep() })
			return nil
		})
	}
	return g.Wait()
}

func catalogSource(cfg config.CatalogConfig) fs.FS {
	if cfg.Dir == "" {
		return catalog.Embedded()
	}
	return os.DirFS(cfg.Dir)
}

// openConsentStore returns the KV backend, its closer, and an optional
// expiry sweep for backends without native TTLs.
func openConsentStore(ctx context.Context, cfg config.Server, redisClient *platformredis.Client) (consentstore.KV, func(), func(context.Context) (int64, error), error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		return consentstore.NewRedis(redisClient.Client), func() {}, nil, nil
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		kv := consentstore.NewPostgres(db)
		if err := kv.Migrate(ctx); err != nil {
			closeDB(db)
			return nil, nil, nil, fmt.Errorf("migrate consent store: %w", err)
		}
		return kv, func() { closeDB(db) }, kv.PurgeExpired, nil
	default:
		return consentstore.NewMemory(), func() {}, nil, nil
	}
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}

func openPublisher(ctx context.Context, cfg config.TelemetryConfig, log *slog.Logger) (telemetry.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("telemetry publishing to log")
		return logpub.New(log, slog.LevelInfo), func() {}, nil
	}
	p, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic, kafka.WithClientID("agency-server"))
	if err != nil {
		return nil, nil, fmt.Errorf("kafka publisher: %w", err)
	}
	if err := p.EnsureTopic(ctx, cfg.KafkaPartitions, 1); err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("ensure topic %s: %w", cfg.KafkaTopic, err)
	}
	log.Info("telemetry publishing to kafka", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	return p, p.Close, nil
}

// rateLimitStore returns the bucket store and, for the in-process store, a
// sweep that frees idle buckets.
func rateLimitStore(cfg config.RateLimitConfig, redisClient *platformredis.Client) (bucket.Store, func() int) {
	if cfg.Backend == config.StoreRedis {
		return bucket.NewRedisBucketStore(redisClient.Client), nil
	}
	mem := bucket.NewInMemoryBucketStore()
	return mem, mem.Sweep
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
