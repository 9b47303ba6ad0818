// Package config provides configuration loading, defaults, and validation for
// the GraphSentinel platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUser     = "neo4j"
	DefaultNeo4jDatabase = "neo4j"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "sentinel"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "graphsentinel"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "graphsentinel"
	DefaultMetricsPath      = "/metrics"

	DefaultWorkerConcurrency = 4

	// Neighborhood extraction
	DefaultNeighborhoodHops = 2

	// Shell chain detection
	DefaultChainMinLength     = 3
	DefaultChainMaxLength     = 10
	DefaultMaxInvoiceActivity = 2

	// Circular trade detection
	DefaultMinTradeVolume = 80.0
	DefaultCycleMinLength = 3
	DefaultCycleMaxLength = 5

	// Hidden influence detection
	DefaultMinOwnershipPct     = 25.0
	DefaultMinConcentrationPct = 80.0
	DefaultOpportunityCutoff   = 0.70
	DefaultDamping             = 0.85
	DefaultTolerance           = 1e-6
	DefaultMaxIterations       = 20

	// Orchestration
	DefaultAnalysisTimeout = 30 * time.Second
	DefaultCacheTTL        = 5 * time.Minute
	DefaultAlertThreshold  = 0.80
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Neo4j ─────────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.User == "" {
		cfg.Neo4j.User = DefaultNeo4jUser
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 5 * time.Second
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultCacheTTL
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 2 * time.Second
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Detector ──────────────────────────────────────────────────────────────
	d := &cfg.Detector
	if d.NeighborhoodHops == 0 {
		d.NeighborhoodHops = DefaultNeighborhoodHops
	}
	if d.ChainMinLength == 0 {
		d.ChainMinLength = DefaultChainMinLength
	}
	if d.ChainMaxLength == 0 {
		d.ChainMaxLength = DefaultChainMaxLength
	}
	// MaxInvoiceActivity 0 is a valid explicit value that cannot be told apart
	// from "not set"; operators wanting 0 must accept the documented default of
	// 2 applying only when the field is absent from both file and environment.
	if d.MaxInvoiceActivity == 0 {
		d.MaxInvoiceActivity = DefaultMaxInvoiceActivity
	}
	if d.MinTradeVolume == 0 {
		d.MinTradeVolume = DefaultMinTradeVolume
	}
	if d.CycleMinLength == 0 {
		d.CycleMinLength = DefaultCycleMinLength
	}
	if d.CycleMaxLength == 0 {
		d.CycleMaxLength = DefaultCycleMaxLength
	}
	if d.MinOwnershipPct == 0 {
		d.MinOwnershipPct = DefaultMinOwnershipPct
	}
	if d.MinConcentrationPct == 0 {
		d.MinConcentrationPct = DefaultMinConcentrationPct
	}
	if d.OpportunityCutoff == 0 {
		d.OpportunityCutoff = DefaultOpportunityCutoff
	}
	if d.Damping == 0 {
		d.Damping = DefaultDamping
	}
	if d.Tolerance == 0 {
		d.Tolerance = DefaultTolerance
	}
	if d.MaxIterations == 0 {
		d.MaxIterations = DefaultMaxIterations
	}
	if d.AnalysisTimeout == 0 {
		d.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if d.CacheTTL == 0 {
		d.CacheTTL = DefaultCacheTTL
	}
	if d.AlertThreshold == 0 {
		d.AlertThreshold = DefaultAlertThreshold
	}
}
