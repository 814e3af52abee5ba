package swarm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BaSui01/swarmflow/types"
)

// msg builds an assistant message from a named speaker.
func msg(name, content string) types.Message {
	return types.NewActorMessage(name, content)
}

// scriptedResponder replays canned turns per actor, in order. When an
// actor's script runs out it falls back to a plain-text reply, which drives
// the session toward default termination.
type scriptedResponder struct {
	scripts map[string][]*TurnResult
	calls   []string
}

func newScriptedResponder() *scriptedResponder {
	return &scriptedResponder{scripts: make(map[string][]*TurnResult)}
}

func (r *scriptedResponder) addTurn(actor string, turn *TurnResult) *scriptedResponder {
	r.scripts[actor] = append(r.scripts[actor], turn)
	return r
}

func (r *scriptedResponder) addText(actor, text string) *scriptedResponder {
	return r.addTurn(actor, &TurnResult{Messages: []types.Message{msg(actor, text)}})
}

func (r *scriptedResponder) ProduceTurn(_ context.Context, actor *Actor, _ string, _ []types.Message, _ ContextView) (*TurnResult, error) {
	r.calls = append(r.calls, actor.Name())
	script := r.scripts[actor.Name()]
	if len(script) == 0 {
		return &TurnResult{Messages: []types.Message{msg(actor.Name(), "done")}}, nil
	}
	turn := script[0]
	r.scripts[actor.Name()] = script[1:]
	return turn, nil
}

// staticEvaluator answers conditions from a fixed table; unknown conditions
// are false.
type staticEvaluator struct {
	truths map[string]bool
	seen   []string
}

func newStaticEvaluator(truths map[string]bool) *staticEvaluator {
	return &staticEvaluator{truths: truths}
}

func (e *staticEvaluator) Evaluate(_ context.Context, condition string, _ []types.Message, _ ContextView) (bool, error) {
	e.seen = append(e.seen, condition)
	return e.truths[condition], nil
}

// call builds a tool call with JSON arguments.
func call(id, name string, args string) types.ToolCall {
	if args == "" {
		args = "{}"
	}
	return types.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(args)}
}

// echoTool returns a tool that echoes a fixed value.
func echoTool(name, value string) Tool {
	return Tool{
		Name: name,
		Handler: func(context.Context, json.RawMessage, ContextView) (any, error) {
			return value, nil
		},
	}
}

// failingTool returns a tool whose handler always errors.
func failingTool(name string) Tool {
	return Tool{
		Name: name,
		Handler: func(context.Context, json.RawMessage, ContextView) (any, error) {
			return nil, fmt.Errorf("%s blew up", name)
		},
	}
}
