package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/golinkhq/golink/config"
	appcache "github.com/golinkhq/golink/internal/app/cache"
	appmodel "github.com/golinkhq/golink/internal/app/model"
	apprepository "github.com/golinkhq/golink/internal/app/repository"
	appserver "github.com/golinkhq/golink/internal/app/server"
	appservice "github.com/golinkhq/golink/internal/app/service"
	"github.com/golinkhq/golink/internal/infra/logger"
	"github.com/golinkhq/golink/internal/infra/metrics"
	infraNATS "github.com/golinkhq/golink/internal/infra/nats"
	infraPostgres "github.com/golinkhq/golink/internal/infra/postgres"
	infraPrometheus "github.com/golinkhq/golink/internal/infra/prometheus"
	infraRedis "github.com/golinkhq/golink/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	// The env-based bootstrap logger only lives until config is loaded.
	if cfg.Log.Level != "" || cfg.Log.Encoding != "" {
		log = logger.MustInit(logger.Config{
			Development: cfg.Server.IsDevelopment(),
			Level:       cfg.Log.Level,
			Encoding:    cfg.Log.Encoding,
		})
	}

	log.Info("Configuration loaded successfully",
		zap.String("addr", cfg.Server.ListenAddr()),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}, &appmodel.ClickEvent{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	metrics.Init()

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	linkRepo := apprepository.NewLinkRepository(gormDB)
	clickRepo := apprepository.NewClickEventRepository(gormDB)

	linkCache := appcache.NewLinkCache(redisClient, cfg.Cache.TTL, cfg.Cache.NegativeTTL)
	filter := appcache.NewFilter(cfg.Cache.BloomCapacity, cfg.Cache.BloomFalsePositive)

	refresher := appservice.NewFilterRefresher(log, linkRepo, filter, cfg.Cache.RefreshInterval)
	if err := refresher.Warm(ctx); err != nil {
		log.Fatal("Failed to warm bloom filter", zap.Error(err))
	}
	refresher.Start()
	defer refresher.Stop()

	clickConsumer := appservice.NewClickConsumer(js, log, clickRepo)
	if err := clickConsumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}

	linkService := appservice.NewLinkService(linkRepo, linkCache, filter)
	resolverSource := appservice.NewResolverSource(log, linkRepo, linkCache, filter)
	clickPublisher := appservice.NewClickPublisher(js)

	server := appserver.New(appserver.Dependencies{
		Logger:         log,
		Postgres:       pool,
		Redis:          redisClient,
		NATS:           natsConn,
		JetStream:      js,
		Links:          linkRepo,
		Clicks:         clickRepo,
		LinkService:    linkService,
		Lookup:         resolverSource.Lookup,
		ClickPublisher: clickPublisher,
	})

	if err := server.Listen(cfg.Server.ListenAddr()); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
