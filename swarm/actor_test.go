package swarm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/swarmflow/types"
)

func TestActor_AddTool_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	a := NewActor("triage")
	require.NoError(t, a.AddTool(echoTool("lookup", "ok")))
	err := a.AddTool(echoTool("lookup", "again"))
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	tool, ok := a.Tool("lookup")
	require.True(t, ok)
	assert.Equal(t, "lookup", tool.Name)
}

func TestActor_RegisterHandoffs_Accumulates(t *testing.T) {
	t.Parallel()

	a := NewActor("triage")
	a.RegisterHandoffs(ConditionalTransfer{Target: ToActor("refunds"), Condition: "refund requested"})
	a.RegisterHandoffs(ConditionalTransfer{Target: ToActor("sales"), Condition: "wants to buy"})

	rules := a.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "refund requested", rules[0].RuleCondition())
	assert.Equal(t, "wants to buy", rules[1].RuleCondition())
}

func TestActor_ReplaceHandoffs(t *testing.T) {
	t.Parallel()

	a := NewActor("triage",
		WithHandoffs(ConditionalTransfer{Target: ToActor("refunds"), Condition: "old"}))
	a.ReplaceHandoffs(ConditionalTransfer{Target: ToActor("sales"), Condition: "new"})

	rules := a.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "new", rules[0].RuleCondition())
}

func TestActor_SetAfterWork_ReplacesPrior(t *testing.T) {
	t.Parallel()

	a := NewActor("triage")
	a.SetAfterWork(ToPolicy(PolicyStay))
	a.SetAfterWork(ToActor("closing"))

	aw := a.AfterWork()
	require.NotNil(t, aw)
	assert.Equal(t, TargetActor, aw.Kind())
	assert.Equal(t, "closing", aw.Actor())
}

func TestRenderTemplate(t *testing.T) {
	t.Parallel()

	vars := NewContextVars(map[string]any{"name": "Ada", "tier": "gold"})
	out := renderTemplate("Hello {name}, you are {tier}. Missing: {nope}.", vars)
	assert.Equal(t, "Hello Ada, you are gold. Missing: .", out)
}

func TestTemplateHook_RewritesSystemMessage(t *testing.T) {
	t.Parallel()

	vars := NewContextVars(map[string]any{"customer": "Ada"})
	st := &TurnState{Actor: "triage", SystemMessage: "ignored", Vars: vars}

	hook := TemplateHook("Help {customer} politely.")
	require.NoError(t, hook(context.Background(), st))
	assert.Equal(t, "Help Ada politely.", st.SystemMessage)
}

func TestNewRegistry_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry()
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = NewRegistry(NewActor("a"), nil)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = NewRegistry(NewActor("a"), NewActor(""))
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = NewRegistry(NewActor("a"), NewActor("b"), NewActor("a"))
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), `"a"`)
}

func TestRegistry_PreservesOrder(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(NewActor("c"), NewActor("a"), NewActor("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, reg.Names())
	assert.Equal(t, 3, reg.Len())
	assert.True(t, reg.Has("b"))
	assert.False(t, reg.Has("z"))
}

func TestTarget_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "actor:refunds", ToActor("refunds").String())
	assert.Equal(t, "policy:stay", ToPolicy(PolicyStay).String())
	assert.Equal(t, "none", Target{}.String())
	assert.True(t, Target{}.IsZero())
	assert.False(t, ToActor("x").IsZero())
}
