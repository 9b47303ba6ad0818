// The apiserver binary serves the GraphSentinel analysis API.  It wires the
// Neo4j graph store, the Redis result cache, the Kafka alert publisher and the
// detection pipeline behind the HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/config"
	"github.com/turtacn/GraphSentinel/internal/domain/fraud"
	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/neo4j"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/redis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/GraphSentinel/internal/interfaces/http"
	"github.com/turtacn/GraphSentinel/internal/interfaces/http/handlers"
	"github.com/turtacn/GraphSentinel/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting GraphSentinel API server",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.Int("port", cfg.Server.Port))

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx := context.Background()

	// Metrics.
	var (
		appMetrics     *prometheus.AppMetrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics collector: %w", err)
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		metricsHandler = collector.Handler()
	}

	// Graph store.
	driver, err := neo4j.NewDriver(neo4j.Config{
		URI:                          cfg.Neo4j.URI,
		Username:                     cfg.Neo4j.User,
		Password:                     cfg.Neo4j.Password,
		Database:                     cfg.Neo4j.Database,
		MaxConnectionPoolSize:        cfg.Neo4j.MaxConnectionPoolSize,
		ConnectionAcquisitionTimeout: cfg.Neo4j.ConnectionTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close()
	store := repositories.NewGraphStore(driver, logger)

	// Result cache.
	redisClient, err := redis.NewClient(redis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("redis client: %w", err)
	}
	defer redisClient.Close()

	cacheOpts := []redis.CacheOption{}
	if cfg.Redis.KeyPrefix != "" {
		cacheOpts = append(cacheOpts, redis.WithPrefix(cfg.Redis.KeyPrefix))
	}
	if cfg.Redis.DefaultTTL > 0 {
		cacheOpts = append(cacheOpts, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	}
	resultCache := redis.NewResultCache(redis.NewCache(redisClient, logger, cacheOpts...))

	// Alert publishing.
	if cfg.Kafka.AutoCreateTopics {
		tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
		if err != nil {
			return fmt.Errorf("kafka topic manager: %w", err)
		}
		if err := tm.EnsureDefaultTopics(ctx); err != nil {
			tm.Close()
			return fmt.Errorf("kafka topics: %w", err)
		}
		tm.Close()
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()
	alerts := kafka.NewAlertPublisher(producer, "apiserver", logger)

	// Detection pipeline.
	svc := analysis.NewService(
		store,
		graph.NewExtractor(store, logger),
		fraud.NewShellChainDetector(store, shellChainConfig(cfg.Detector), logger),
		fraud.NewCircularTradeDetector(store, circularTradeConfig(cfg.Detector), logger),
		fraud.NewHiddenInfluenceDetector(store, hiddenInfluenceConfig(cfg.Detector), logger),
		resultCache,
		alerts,
		appMetrics,
		logger,
		analysis.Options{
			Hops:           cfg.Detector.NeighborhoodHops,
			Timeout:        cfg.Detector.AnalysisTimeout,
			CacheTTL:       cfg.Detector.CacheTTL,
			AlertThreshold: cfg.Detector.AlertThreshold,
		},
	)

	// HTTP surface.
	healthHandler := handlers.NewHealthHandler(Version,
		handlers.CheckFunc{ComponentName: "neo4j", Fn: driver.HealthCheck},
		handlers.CheckFunc{ComponentName: "redis", Fn: redisClient.Ping},
	)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(svc, logger),
		HealthHandler:   healthHandler,
		Logger:          logger,
		Metrics:         appMetrics,
		MetricsHandler:  metricsHandler,
		EnableCORS:      cfg.Server.EnableCORS,
		RateLimiter:     middleware.NewTokenBucketLimiter(10, 20, 5*time.Minute),
		Mode:            cfg.Server.Mode,
	})

	server := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	return server.Stop(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Containerized deployments configure entirely through the
		// GRAPHSENTINEL_* environment.
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func shellChainConfig(d config.DetectorConfig) fraud.ShellChainConfig {
	return fraud.ShellChainConfig{
		MinLength:          d.ChainMinLength,
		MaxLength:          d.ChainMaxLength,
		MaxInvoiceActivity: d.MaxInvoiceActivity,
	}
}

func circularTradeConfig(d config.DetectorConfig) fraud.CircularTradeConfig {
	return fraud.CircularTradeConfig{
		MinVolume: d.MinTradeVolume,
		MinLength: d.CycleMinLength,
		MaxLength: d.CycleMaxLength,
	}
}

func hiddenInfluenceConfig(d config.DetectorConfig) fraud.HiddenInfluenceConfig {
	return fraud.HiddenInfluenceConfig{
		MinOwnershipPct:     d.MinOwnershipPct,
		MinConcentrationPct: d.MinConcentrationPct,
		OpportunityCutoff:   d.OpportunityCutoff,
		PageRank: fraud.PageRankConfig{
			Damping:       d.Damping,
			Tolerance:     d.Tolerance,
			MaxIterations: d.MaxIterations,
		},
	}
}
