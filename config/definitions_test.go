package config

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/swarmflow/swarm"
)

const sampleDefinition = `
initial_actor: triage
actors:
  - name: triage
    description: routes customers
    system_message: "Help {customer} quickly."
    tools: [lookup_order]
    after_work: delegate_to_selector
    handoffs:
      - to: actor:refunds
        condition: customer wants a refund
      - nested:
          share_context: true
          steps:
            - actor: writer
              message: Draft an apology
              turn_limit: 2
              summary: reflection_with_llm
              summary_prompt: Condense the apology.
              carryover:
                mode: last_message_only
                max_tokens: 200
        condition: customer is upset
  - name: refunds
    after_work: terminate
  - name: writer
`

func noopTool(name string) swarm.Tool {
	return swarm.Tool{
		Name: name,
		Handler: func(context.Context, json.RawMessage, swarm.ContextView) (any, error) {
			return "ok", nil
		},
	}
}

func TestParseSwarmDefinition(t *testing.T) {
	t.Parallel()

	def, err := ParseSwarmDefinition([]byte(sampleDefinition))
	require.NoError(t, err)
	assert.Equal(t, "triage", def.InitialActor)
	require.Len(t, def.Actors, 3)
	require.Len(t, def.Actors[0].Handoffs, 2)

	_, err = ParseSwarmDefinition([]byte("actors: []"))
	assert.Error(t, err)

	def, err = ParseSwarmDefinition([]byte("actors:\n  - name: only\n"))
	require.NoError(t, err)
	assert.Equal(t, "only", def.InitialActor, "first actor is the default initial actor")
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	def, err := ParseSwarmDefinition([]byte(sampleDefinition))
	require.NoError(t, err)

	reg, err := def.BuildRegistry(map[string]swarm.Tool{"lookup_order": noopTool("lookup_order")})
	require.NoError(t, err)
	assert.Equal(t, []string{"triage", "refunds", "writer"}, reg.Names())

	triage, ok := reg.Get("triage")
	require.True(t, ok)
	assert.Equal(t, "Help {customer} quickly.", triage.SystemMessage())
	require.Len(t, triage.Tools(), 1)

	rules := triage.Rules()
	require.Len(t, rules, 2)
	ct, ok := rules[0].(swarm.ConditionalTransfer)
	require.True(t, ok)
	assert.Equal(t, "refunds", ct.Target.Actor())
	assert.Equal(t, "customer wants a refund", ct.Condition)

	nt, ok := rules[1].(swarm.NestedChatTransfer)
	require.True(t, ok)
	assert.True(t, nt.Flow.ShareContext)
	require.Len(t, nt.Flow.Steps, 1)
	step := nt.Flow.Steps[0]
	assert.Equal(t, "writer", step.TargetActor)
	assert.Equal(t, 2, step.TurnLimit)
	assert.Equal(t, swarm.SummaryReflection, step.Summary)
	require.NotNil(t, step.Carryover)
	assert.Equal(t, swarm.CarryoverLastMessageOnly, step.Carryover.Mode)
	assert.Equal(t, 200, step.Carryover.MaxTokens)

	aw := triage.AfterWork()
	require.NotNil(t, aw)
	assert.Equal(t, swarm.PolicyDelegateToSelector, aw.Policy())
}

func TestBuildRegistry_Errors(t *testing.T) {
	t.Parallel()

	def, err := ParseSwarmDefinition([]byte(sampleDefinition))
	require.NoError(t, err)

	_, err = def.BuildRegistry(nil)
	assert.Error(t, err, "missing tool must fail")

	bad, err := ParseSwarmDefinition([]byte(`
initial_actor: ghost
actors:
  - name: a
`))
	require.NoError(t, err)
	_, err = bad.BuildRegistry(nil)
	assert.Error(t, err, "unknown initial actor must fail")

	both, err := ParseSwarmDefinition([]byte(`
actors:
  - name: a
    handoffs:
      - to: actor:b
        nested:
          steps:
            - actor: b
  - name: b
`))
	require.NoError(t, err)
	_, err = both.BuildRegistry(nil)
	assert.Error(t, err, "handoff with both to and nested must fail")
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	target, err := ParseTarget("actor:sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", target.Actor())

	target, err = ParseTarget("revert_to_initiator")
	require.NoError(t, err)
	assert.Equal(t, swarm.PolicyRevertToInitiator, target.Policy())

	_, err = ParseTarget("actor:")
	assert.Error(t, err)
	_, err = ParseTarget("warp_speed")
	assert.Error(t, err)
}
