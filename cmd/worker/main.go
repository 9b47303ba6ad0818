// The worker binary consumes analysis requests from Kafka and runs the
// detection pipeline in the background.  A Redis lock per entity keeps
// concurrent worker instances from analyzing the same company twice.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/config"
	"github.com/turtacn/GraphSentinel/internal/domain/fraud"
	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/neo4j"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/redis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
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
	logger = logger.Named("worker")

	logger.Info("starting GraphSentinel analysis worker",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.Int("concurrency", cfg.Worker.Concurrency))

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()
	alerts := kafka.NewAlertPublisher(producer, "worker", logger)

	svc := analysis.NewService(
		store,
		graph.NewExtractor(store, logger),
		fraud.NewShellChainDetector(store, fraud.ShellChainConfig{
			MinLength:          cfg.Detector.ChainMinLength,
			MaxLength:          cfg.Detector.ChainMaxLength,
			MaxInvoiceActivity: cfg.Detector.MaxInvoiceActivity,
		}, logger),
		fraud.NewCircularTradeDetector(store, fraud.CircularTradeConfig{
			MinVolume: cfg.Detector.MinTradeVolume,
			MinLength: cfg.Detector.CycleMinLength,
			MaxLength: cfg.Detector.CycleMaxLength,
		}, logger),
		fraud.NewHiddenInfluenceDetector(store, fraud.HiddenInfluenceConfig{
			MinOwnershipPct:     cfg.Detector.MinOwnershipPct,
			MinConcentrationPct: cfg.Detector.MinConcentrationPct,
			OpportunityCutoff:   cfg.Detector.OpportunityCutoff,
			PageRank: fraud.PageRankConfig{
				Damping:       cfg.Detector.Damping,
				Tolerance:     cfg.Detector.Tolerance,
				MaxIterations: cfg.Detector.MaxIterations,
			},
		}, logger),
		resultCache,
		alerts,
		nil,
		logger,
		analysis.Options{
			Hops:           cfg.Detector.NeighborhoodHops,
			Timeout:        cfg.Detector.AnalysisTimeout,
			CacheTTL:       cfg.Detector.CacheTTL,
			AlertThreshold: cfg.Detector.AlertThreshold,
		},
	)

	handler := newRequestHandler(svc, redisClient, logger)

	// Every consumer instance joins the same group, so Kafka spreads the
	// request topic's partitions across them.
	concurrency := cfg.Worker.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	consumers := make([]*kafka.Consumer, 0, concurrency)
	for i := 0; i < concurrency; i++ {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:         cfg.Kafka.Brokers,
			GroupID:         cfg.Kafka.GroupID,
			Topics:          []string{kafka.TopicAnalysisRequests},
			AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
			Retry: kafka.RetryConfig{
				MaxRetries:      cfg.Worker.MaxRetries,
				RetryBackoff:    cfg.Worker.RetryBackoff,
				DeadLetterTopic: kafka.TopicDeadLetter,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		consumer.Subscribe(kafka.TopicAnalysisRequests, handler.Handle)
		consumers = append(consumers, consumer)

		c := consumer
		g.Go(func() error {
			return c.Start(gctx)
		})
	}

	logger.Info("worker consuming", logging.String("topic", kafka.TopicAnalysisRequests))

	<-ctx.Done()
	logger.Info("shutdown signal received")

	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Warn("consumer close failed", logging.Err(err))
		}
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
