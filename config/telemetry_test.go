package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTelemetryOptions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	opts := cfg.TelemetryOptions()
	assert.False(t, opts.Enabled)
	assert.Equal(t, "localhost:4317", opts.Endpoint)
	assert.Equal(t, "swarmflow", opts.ServiceName)
	assert.InDelta(t, 0.1, opts.SampleRate, 1e-9)

	cfg.Telemetry.Enabled = true
	cfg.Telemetry.OTLPEndpoint = "collector:4317"
	opts = cfg.TelemetryOptions()
	assert.True(t, opts.Enabled)
	assert.Equal(t, "collector:4317", opts.Endpoint)
}
