// Package config defines all configuration structures for the GraphSentinel
// platform.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS      bool          `mapstructure:"enable_cors"`
}

// Neo4jConfig holds Neo4j graph-store connection parameters.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	Database              string        `mapstructure:"database"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Apache Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	GroupID           string   `mapstructure:"group_id"`
	AutoOffsetReset   string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	TimeoutMS         int      `mapstructure:"timeout_ms"`
	ProducerRetries   int      `mapstructure:"producer_retries"`
	BatchSize         int      `mapstructure:"batch_size"`
	AutoCreateTopics  bool     `mapstructure:"auto_create_topics"`
	ReplicationFactor int      `mapstructure:"replication_factor"`
	NumPartitions     int      `mapstructure:"num_partitions"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "console"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	Path                 string `mapstructure:"path"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// DetectorConfig holds the tunable thresholds of the fraud detectors and the
// analysis orchestration.
type DetectorConfig struct {
	// Neighborhood extraction
	NeighborhoodHops int `mapstructure:"neighborhood_hops"`

	// Shell chain detection
	ChainMinLength     int `mapstructure:"chain_min_length"`
	ChainMaxLength     int `mapstructure:"chain_max_length"`
	MaxInvoiceActivity int `mapstructure:"max_invoice_activity"`

	// Circular trade detection
	MinTradeVolume float64 `mapstructure:"min_trade_volume"`
	CycleMinLength int     `mapstructure:"cycle_min_length"`
	CycleMaxLength int     `mapstructure:"cycle_max_length"`

	// Hidden influence detection
	MinOwnershipPct     float64 `mapstructure:"min_ownership_pct"`
	MinConcentrationPct float64 `mapstructure:"min_concentration_pct"`
	OpportunityCutoff   float64 `mapstructure:"opportunity_cutoff"`
	Damping             float64 `mapstructure:"damping"`
	Tolerance           float64 `mapstructure:"tolerance"`
	MaxIterations       int     `mapstructure:"max_iterations"`

	// Orchestration
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	AlertThreshold  float64       `mapstructure:"alert_threshold"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Detector DetectorConfig `mapstructure:"detector"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Neo4j
	if c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Detector
	d := c.Detector
	if d.NeighborhoodHops < 1 {
		return fmt.Errorf("config: detector.neighborhood_hops must be ≥ 1, got %d", d.NeighborhoodHops)
	}
	if d.ChainMinLength < 1 || d.ChainMaxLength < d.ChainMinLength {
		return fmt.Errorf("config: detector chain length bounds [%d, %d] are invalid", d.ChainMinLength, d.ChainMaxLength)
	}
	if d.MaxInvoiceActivity < 0 {
		return fmt.Errorf("config: detector.max_invoice_activity must be ≥ 0, got %d", d.MaxInvoiceActivity)
	}
	if d.MinTradeVolume < 0 {
		return fmt.Errorf("config: detector.min_trade_volume must be ≥ 0, got %g", d.MinTradeVolume)
	}
	if d.CycleMinLength < 3 || d.CycleMaxLength < d.CycleMinLength {
		return fmt.Errorf("config: detector cycle length bounds [%d, %d] are invalid", d.CycleMinLength, d.CycleMaxLength)
	}
	if d.MinOwnershipPct < 0 || d.MinOwnershipPct > 100 {
		return fmt.Errorf("config: detector.min_ownership_pct %g is out of range [0, 100]", d.MinOwnershipPct)
	}
	if d.MinConcentrationPct < 0 || d.MinConcentrationPct > 100 {
		return fmt.Errorf("config: detector.min_concentration_pct %g is out of range [0, 100]", d.MinConcentrationPct)
	}
	if d.Damping <= 0 || d.Damping >= 1 {
		return fmt.Errorf("config: detector.damping %g is out of range (0, 1)", d.Damping)
	}
	if d.Tolerance <= 0 {
		return fmt.Errorf("config: detector.tolerance must be > 0, got %g", d.Tolerance)
	}
	if d.MaxIterations < 1 {
		return fmt.Errorf("config: detector.max_iterations must be ≥ 1, got %d", d.MaxIterations)
	}

	return nil
}
