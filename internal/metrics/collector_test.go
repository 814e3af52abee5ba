package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Collectors auto-register against the default Prometheus registry, so each
// test uses its own namespace.
func TestCollector_Observations(t *testing.T) {
	c := NewCollector("swarmflow_test_observe", zap.NewNop())

	assert.NotPanics(t, func() {
		c.SessionStarted()
		c.ObserveTurn("triage", 120*time.Millisecond)
		c.ObserveToolCall("lookup_order", 5*time.Millisecond, false)
		c.ObserveToolCall("lookup_order", 7*time.Millisecond, true)
		c.ObserveHandoff("triage", "refunds")
		c.ObserveNested("triage", 2, 800*time.Millisecond)
		c.ObserveSessionTurns(3)
		c.SessionEnded("normal", false, 2*time.Second)
		c.SessionEnded("exhausted", true, time.Second)
	})
}

func TestCollector_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		c := NewCollector("swarmflow_test_nillogger", nil)
		c.SessionStarted()
		c.SessionEnded("normal", false, time.Millisecond)
	})
}
