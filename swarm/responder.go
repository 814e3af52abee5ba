package swarm

import (
	"context"

	"github.com/BaSui01/swarmflow/types"
)

// TurnResult is one actor turn as produced by a Responder: the messages the
// actor emits, the tool calls it requests, and an optional navigation hint
// carried over from a previous stage.
type TurnResult struct {
	// Messages are the actor's emitted messages, appended to the transcript
	// in order.
	Messages []types.Message
	// ToolCalls are executed sequentially by the tool stage after the
	// messages are appended.
	ToolCalls []types.ToolCall
}

// Responder produces an actor's turn. The engine stays model-agnostic:
// whether the turn comes from an LLM, a script, or a human is the
// responder's business.
type Responder interface {
	// ProduceTurn generates the next turn for actor given the transcript so
	// far and a read-only view of the context store. systemMessage is the
	// hook-processed system message for this turn.
	ProduceTurn(ctx context.Context, actor *Actor, systemMessage string, transcript []types.Message, vars ContextView) (*TurnResult, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, actor *Actor, systemMessage string, transcript []types.Message, vars ContextView) (*TurnResult, error)

// ProduceTurn implements Responder.
func (f ResponderFunc) ProduceTurn(ctx context.Context, actor *Actor, systemMessage string, transcript []types.Message, vars ContextView) (*TurnResult, error) {
	return f(ctx, actor, systemMessage, transcript, vars)
}
