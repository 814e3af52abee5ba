package swarm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/swarmflow/persistence"
	"github.com/BaSui01/swarmflow/types"
)

func TestSession_PlainTextDefaultTermination(t *testing.T) {
	t.Parallel()

	// An actor with no tools, no rules and no fallback terminates after one
	// plain-text turn: transcript length = seed + 1.
	reg := testRegistry(t, NewActor("solo"))
	responder := newScriptedResponder().addText("solo", "all done")

	sess, err := New(Options{Registry: reg, Responder: responder})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "solo", "hello there")
	require.NoError(t, err)

	assert.Equal(t, TerminationNormal, res.Reason)
	assert.Equal(t, "solo", res.LastActor)
	assert.Equal(t, 1, res.Turns)
	require.Len(t, res.Transcript, 2)
	assert.Equal(t, "hello there", res.Transcript[0].Content)
	assert.Equal(t, "user", res.Transcript[0].Name)
	assert.Equal(t, "all done", res.Transcript[1].Content)
}

func TestSession_Validation(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, NewActor("a"))
	responder := newScriptedResponder()

	_, err := New(Options{Responder: responder})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = New(Options{Registry: reg})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = New(Options{Registry: reg, Responder: responder, Initiator: "ghost"})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	sess, err := New(Options{Registry: reg, Responder: responder})
	require.NoError(t, err)

	_, err = sess.Initiate(context.Background(), "ghost", []types.Message{msg("user", "hi")})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = sess.Initiate(context.Background(), "a", nil)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
}

func TestSession_ResumeSeedRequiresRegisteredSpeakers(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, NewActor("a"))
	sess, err := New(Options{Registry: reg, Responder: newScriptedResponder()})
	require.NoError(t, err)

	seed := []types.Message{
		msg("user", "hi"),
		msg("stranger", "I was never registered"),
	}
	_, err = sess.Initiate(context.Background(), "a", seed)
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
}

func TestSession_HandoffFollowsRules(t *testing.T) {
	t.Parallel()

	triage := NewActor("triage",
		WithHandoffs(ConditionalTransfer{Target: ToActor("refunds"), Condition: "refund requested"}))
	refunds := NewActor("refunds")
	reg := testRegistry(t, triage, refunds)

	responder := newScriptedResponder().
		addText("triage", "let me route you").
		addText("refunds", "refund issued")
	eval := newStaticEvaluator(map[string]bool{"refund requested": true})

	sess, err := New(Options{Registry: reg, Responder: responder, Evaluator: eval})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "triage", "I want my money back")
	require.NoError(t, err)

	assert.Equal(t, []string{"triage", "refunds"}, responder.calls)
	assert.Equal(t, "refunds", res.LastActor)
	assert.Equal(t, TerminationNormal, res.Reason)
	assert.Equal(t, 2, res.Turns)
}

func TestSession_ToolHintBeatsRules(t *testing.T) {
	t.Parallel()

	route := Tool{
		Name: "route",
		Handler: func(context.Context, json.RawMessage, ContextView) (any, error) {
			return ReplyWithTarget("routing to sales", ToActor("sales")), nil
		},
	}
	triage := NewActor("triage",
		WithTools(route),
		WithHandoffs(ConditionalTransfer{Target: ToActor("refunds"), Condition: "cond"}))
	reg := testRegistry(t, triage, NewActor("sales"), NewActor("refunds"))

	responder := newScriptedResponder().
		addTurn("triage", &TurnResult{
			Messages:  []types.Message{msg("triage", "routing")},
			ToolCalls: []types.ToolCall{call("c1", "route", "")},
		}).
		addText("sales", "welcome to sales")
	eval := newStaticEvaluator(map[string]bool{"cond": true})

	sess, err := New(Options{Registry: reg, Responder: responder, Evaluator: eval})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "triage", "hi")
	require.NoError(t, err)

	assert.Equal(t, "sales", res.LastActor)
	// The rule's condition was never consulted.
	assert.Empty(t, eval.seen)
}

func TestSession_ContextMonotonicityAcrossHandoffs(t *testing.T) {
	t.Parallel()

	remember := Tool{
		Name: "remember",
		Handler: func(context.Context, json.RawMessage, ContextView) (any, error) {
			return ReplyWithUpdates("noted", map[string]any{"order_id": "o-7"}), nil
		},
	}
	triage := NewActor("triage", WithTools(remember), WithAfterWork(ToActor("refunds")))
	refunds := NewActor("refunds")
	reg := testRegistry(t, triage, refunds)

	var seenOrderID string
	responder := ResponderFunc(func(_ context.Context, actor *Actor, _ string, _ []types.Message, vars ContextView) (*TurnResult, error) {
		if actor.Name() == "triage" {
			return &TurnResult{
				Messages:  []types.Message{msg("triage", "noting")},
				ToolCalls: []types.ToolCall{call("c1", "remember", "")},
			}, nil
		}
		seenOrderID = vars.GetString("order_id")
		return &TurnResult{Messages: []types.Message{msg(actor.Name(), "done")}}, nil
	})

	sess, err := New(Options{Registry: reg, Responder: responder})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "triage", "hi")
	require.NoError(t, err)

	assert.Equal(t, "o-7", seenOrderID)
	assert.Equal(t, "o-7", res.FinalContext["order_id"])
}

func TestSession_MaxTurnsExhaustion(t *testing.T) {
	t.Parallel()

	// Stay forever; the budget must cut the session off.
	looper := NewActor("looper", WithAfterWork(ToPolicy(PolicyStay)))
	reg := testRegistry(t, looper)

	sess, err := New(Options{
		Registry:  reg,
		Responder: newScriptedResponder(),
		MaxTurns:  3,
	})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "looper", "go")
	require.NoError(t, err)

	assert.Equal(t, TerminationExhausted, res.Reason)
	assert.Equal(t, 3, res.Turns)
	assert.Equal(t, "looper", res.LastActor)
}

func TestSession_HooksRunInOrderAndSeeEarlierWrites(t *testing.T) {
	t.Parallel()

	var rendered string
	first := func(_ context.Context, st *TurnState) error {
		st.Vars.Set("mood", "cheerful")
		return nil
	}
	second := TemplateHook("Be {mood} with {customer}.")

	actor := NewActor("greeter", WithHooks(first, second))
	reg := testRegistry(t, actor)

	responder := ResponderFunc(func(_ context.Context, a *Actor, systemMessage string, _ []types.Message, _ ContextView) (*TurnResult, error) {
		rendered = systemMessage
		return &TurnResult{Messages: []types.Message{msg(a.Name(), "hi")}}, nil
	})

	sess, err := New(Options{
		Registry:         reg,
		Responder:        responder,
		ContextVariables: map[string]any{"customer": "Ada"},
	})
	require.NoError(t, err)

	_, err = sess.InitiateText(context.Background(), "greeter", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Be cheerful with Ada.", rendered)
}

func TestSession_HookErrorIsNonFatal(t *testing.T) {
	t.Parallel()

	failing := func(context.Context, *TurnState) error {
		return types.NewError(types.ErrInternal, "hook exploded")
	}
	after := func(_ context.Context, st *TurnState) error {
		st.Vars.Set("ran", true)
		return nil
	}
	actor := NewActor("a", WithHooks(failing, after))
	reg := testRegistry(t, actor)

	sess, err := New(Options{Registry: reg, Responder: newScriptedResponder()})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "a", "hi")
	require.NoError(t, err)
	assert.Equal(t, true, res.FinalContext["ran"])
}

func TestSession_NestedFlowFoldsBackOneMessage(t *testing.T) {
	t.Parallel()

	flow := NestedFlow{Steps: []NestedStep{{
		TargetActor: "poet",
		Message:     "Write a poem",
		Carryover:   &CarryoverConfig{Mode: CarryoverLastMessageOnly},
		Summary:     SummaryLastMsg,
	}}}
	triage := NewActor("triage",
		WithHandoffs(NestedChatTransfer{Flow: flow, Condition: "wants poetry"}))
	poet := NewActor("poet")
	reg := testRegistry(t, triage, poet)

	var poetSeed string
	responder := ResponderFunc(func(_ context.Context, a *Actor, _ string, transcript []types.Message, _ ContextView) (*TurnResult, error) {
		if a.Name() == "poet" {
			poetSeed = transcript[0].Content
			return &TurnResult{Messages: []types.Message{msg("poet", "roses are red")}}, nil
		}
		return &TurnResult{Messages: []types.Message{msg(a.Name(), "m2")}}, nil
	})
	eval := newStaticEvaluator(map[string]bool{"wants poetry": true})

	sess, err := New(Options{Registry: reg, Responder: responder, Evaluator: eval})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "triage", "m1")
	require.NoError(t, err)

	// The nested seed carries the parent's last message.
	assert.Equal(t, "Write a poem\nContext: \nm2", poetSeed)

	// The fold-back is one assistant message attributed to the trigger.
	last := res.Transcript[len(res.Transcript)-1]
	assert.Equal(t, "triage", last.Name)
	assert.Equal(t, "roses are red", last.Content)
	assert.Equal(t, TerminationNormal, res.Reason)
}

func TestSession_NestedSnapshotKeepsParentContextClean(t *testing.T) {
	t.Parallel()

	scribble := Tool{
		Name: "scribble",
		Handler: func(context.Context, json.RawMessage, ContextView) (any, error) {
			return ReplyWithUpdates("ok", map[string]any{"draft": "v1"}), nil
		},
	}
	flow := NestedFlow{Steps: []NestedStep{{TargetActor: "writer", Message: "go"}}}
	trigger := NewActor("trigger",
		WithHandoffs(NestedChatTransfer{Flow: flow, Condition: "always"}))
	writer := NewActor("writer", WithTools(scribble))
	reg := testRegistry(t, trigger, writer)

	responder := ResponderFunc(func(_ context.Context, a *Actor, _ string, _ []types.Message, _ ContextView) (*TurnResult, error) {
		if a.Name() == "writer" {
			return &TurnResult{
				Messages:  []types.Message{msg("writer", "drafted")},
				ToolCalls: []types.ToolCall{call("c1", "scribble", "")},
			}, nil
		}
		return &TurnResult{Messages: []types.Message{msg(a.Name(), "dispatching")}}, nil
	})
	eval := newStaticEvaluator(map[string]bool{"always": true})

	sess, err := New(Options{Registry: reg, Responder: responder, Evaluator: eval})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "trigger", "hi")
	require.NoError(t, err)
	// Default is snapshot isolation: the nested write stays nested.
	_, leaked := res.FinalContext["draft"]
	assert.False(t, leaked)
}

func TestSession_CheckpointAndResume(t *testing.T) {
	t.Parallel()

	store := persistence.NewMemorySessionStore()
	defer store.Close()

	mark := Tool{
		Name: "mark",
		Handler: func(context.Context, json.RawMessage, ContextView) (any, error) {
			return ReplyWithUpdates("marked", map[string]any{"stage": "triage-done"}), nil
		},
	}
	triage := NewActor("triage", WithTools(mark), WithAfterWork(ToActor("closing")))
	closing := NewActor("closing")
	reg := testRegistry(t, triage, closing)

	responder := newScriptedResponder().
		addTurn("triage", &TurnResult{
			Messages:  []types.Message{msg("triage", "working")},
			ToolCalls: []types.ToolCall{call("c1", "mark", "")},
		}).
		addText("closing", "goodbye")

	sess, err := New(Options{Registry: reg, Responder: responder, Store: store})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "triage", "hi")
	require.NoError(t, err)
	require.Equal(t, TerminationNormal, res.Reason)

	snap, err := store.Load(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.Turns, snap.Turns)
	assert.Equal(t, "triage-done", snap.ContextVars["stage"])
	assert.Len(t, snap.Transcript, len(res.Transcript))

	// Resuming the finished snapshot with the same collaborators replays to
	// the same final context and last actor.
	resumed, err := New(Options{Registry: reg, Responder: newScriptedResponder(), Store: store})
	require.NoError(t, err)
	res2, err := resumed.Resume(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, res2.SessionID)
	assert.Equal(t, "triage-done", res2.FinalContext["stage"])
	assert.Equal(t, "closing", res2.LastActor)
}

func TestSession_MaxDurationExhaustion(t *testing.T) {
	t.Parallel()

	looper := NewActor("looper", WithAfterWork(ToPolicy(PolicyStay)))
	reg := testRegistry(t, looper)

	slow := ResponderFunc(func(_ context.Context, a *Actor, _ string, _ []types.Message, _ ContextView) (*TurnResult, error) {
		time.Sleep(20 * time.Millisecond)
		return &TurnResult{Messages: []types.Message{msg(a.Name(), "tick")}}, nil
	})

	sess, err := New(Options{
		Registry:    reg,
		Responder:   slow,
		MaxDuration: 30 * time.Millisecond,
		MaxTurns:    1000,
	})
	require.NoError(t, err)

	res, err := sess.InitiateText(context.Background(), "looper", "go")
	require.NoError(t, err)
	assert.Equal(t, TerminationExhausted, res.Reason)
	assert.Less(t, res.Turns, 1000)
}
