package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_DefaultsAreValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Server(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "server.port")

	cfg = validConfig()
	cfg.Server.Port = 70000
	assert.ErrorContains(t, cfg.Validate(), "server.port")

	cfg = validConfig()
	cfg.Server.Mode = "production"
	assert.ErrorContains(t, cfg.Validate(), "server.mode")
}

func TestConfig_Validate_Infrastructure(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Neo4j.URI = ""
	assert.ErrorContains(t, cfg.Validate(), "neo4j.uri")

	cfg = validConfig()
	cfg.Redis.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "redis.addr")

	cfg = validConfig()
	cfg.Redis.DB = -1
	assert.ErrorContains(t, cfg.Validate(), "redis.db")

	cfg = validConfig()
	cfg.Kafka.Brokers = nil
	assert.ErrorContains(t, cfg.Validate(), "kafka.brokers")

	cfg = validConfig()
	cfg.Worker.Concurrency = 0
	assert.ErrorContains(t, cfg.Validate(), "worker.concurrency")
}

func TestConfig_Validate_Log(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = validConfig()
	cfg.Log.Format = "plain"
	assert.ErrorContains(t, cfg.Validate(), "log.format")
}

func TestConfig_Validate_Detector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.DetectorConfig)
		wantErr string
	}{
		{"hops below one", func(d *config.DetectorConfig) { d.NeighborhoodHops = 0 }, "neighborhood_hops"},
		{"chain bounds inverted", func(d *config.DetectorConfig) { d.ChainMinLength = 5; d.ChainMaxLength = 3 }, "chain length bounds"},
		{"negative invoice activity", func(d *config.DetectorConfig) { d.MaxInvoiceActivity = -1 }, "max_invoice_activity"},
		{"negative trade volume", func(d *config.DetectorConfig) { d.MinTradeVolume = -1 }, "min_trade_volume"},
		{"cycle too short", func(d *config.DetectorConfig) { d.CycleMinLength = 2 }, "cycle length bounds"},
		{"cycle bounds inverted", func(d *config.DetectorConfig) { d.CycleMinLength = 5; d.CycleMaxLength = 4 }, "cycle length bounds"},
		{"ownership out of range", func(d *config.DetectorConfig) { d.MinOwnershipPct = 120 }, "min_ownership_pct"},
		{"concentration out of range", func(d *config.DetectorConfig) { d.MinConcentrationPct = -5 }, "min_concentration_pct"},
		{"damping at one", func(d *config.DetectorConfig) { d.Damping = 1 }, "damping"},
		{"negative tolerance", func(d *config.DetectorConfig) { d.Tolerance = -1e-6 }, "tolerance"},
		{"negative iterations", func(d *config.DetectorConfig) { d.MaxIterations = -1 }, "max_iterations"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(&cfg.Detector)
			assert.ErrorContains(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func TestConfig_DetectorThresholdDefaults(t *testing.T) {
	t.Parallel()
	d := validConfig().Detector

	assert.Equal(t, 2, d.NeighborhoodHops)
	assert.Equal(t, 3, d.ChainMinLength)
	assert.Equal(t, 10, d.ChainMaxLength)
	assert.Equal(t, 2, d.MaxInvoiceActivity)
	assert.Equal(t, 80.0, d.MinTradeVolume)
	assert.Equal(t, 3, d.CycleMinLength)
	assert.Equal(t, 5, d.CycleMaxLength)
	assert.Equal(t, 25.0, d.MinOwnershipPct)
	assert.Equal(t, 80.0, d.MinConcentrationPct)
	assert.Equal(t, 0.70, d.OpportunityCutoff)
	assert.Equal(t, 0.85, d.Damping)
	assert.Equal(t, 1e-6, d.Tolerance)
	assert.Equal(t, 20, d.MaxIterations)
	assert.Equal(t, 30*time.Second, d.AnalysisTimeout)
	assert.Equal(t, 0.80, d.AlertThreshold)
}
