package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, 50, cfg.Swarm.MaxTurns)
	assert.Equal(t, "user", cfg.Swarm.UserActor)
	assert.Equal(t, "terminate", cfg.Swarm.DefaultAfterWork)
	assert.Equal(t, "memory", cfg.Swarm.StoreBackend)
	assert.Equal(t, "cl100k_base", cfg.Swarm.TokenizerEncoding)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "swarmflow:session:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoader_YAMLOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
swarm:
  max_turns: 7
  user_actor: customer
  default_after_work: stay
  max_duration: 90s
redis:
  addr: redis.internal:6379
  key_prefix: "flow:"
log:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Swarm.MaxTurns)
	assert.Equal(t, "customer", cfg.Swarm.UserActor)
	assert.Equal(t, "stay", cfg.Swarm.DefaultAfterWork)
	assert.Equal(t, 90*time.Second, cfg.Swarm.MaxDuration)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "flow:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swarm:\n  max_turns: 7\n"), 0o644))

	t.Setenv("SWARMFLOW_SWARM_MAX_TURNS", "11")
	t.Setenv("SWARMFLOW_SWARM_MAX_DURATION", "2m")
	t.Setenv("SWARMFLOW_LOG_OUTPUT_PATHS", "stdout, /var/log/swarmflow.log")
	t.Setenv("SWARMFLOW_TELEMETRY_ENABLED", "true")
	t.Setenv("SWARMFLOW_TELEMETRY_SAMPLE_RATE", "0.25")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 11, cfg.Swarm.MaxTurns)
	assert.Equal(t, 2*time.Minute, cfg.Swarm.MaxDuration)
	assert.Equal(t, []string{"stdout", "/var/log/swarmflow.log"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRate, 1e-9)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Swarm.MaxTurns)
}

func TestLoader_Validators(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().
		WithValidator(func(c *Config) error { return assert.AnError }).
		Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Swarm.DefaultAfterWork = "explode"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Swarm.MaxTurns = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.OTLPEndpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Swarm.StoreBackend = "cassandra"
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger, err = NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "shouting"})
	assert.Error(t, err)

	_, err = NewLogger(LogConfig{Format: "xml"})
	assert.Error(t, err)
}
