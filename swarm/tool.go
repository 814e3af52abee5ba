package swarm

import (
	"context"
	"encoding/json"

	"github.com/BaSui01/swarmflow/types"
)

// ToolHandler executes one tool call. args is the raw JSON argument object
// from the turn; vars is a read-only view of the context store. A handler
// returns either a plain value (wrapped as message content) or a ToolReply,
// by value or by pointer, carrying context updates and an optional
// navigation hint.
type ToolHandler func(ctx context.Context, args json.RawMessage, vars ContextView) (any, error)

// Tool is an invocable capability registered on an actor.
type Tool struct {
	// Name must be unique within the owning actor.
	Name string
	// Description documents the tool for selection prompts.
	Description string
	// Parameters is the JSON Schema of the typed arguments.
	Parameters json.RawMessage
	// Handler runs the tool.
	Handler ToolHandler
}

// Schema returns the tool's declared interface.
func (t Tool) Schema() types.ToolSchema {
	return types.ToolSchema{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// ToolReply is the structured result a tool may return instead of a plain
// value: the value itself, context updates merged immediately with
// overwrite-by-key semantics, and an optional navigation hint. When several
// calls in one turn yield hints, the rightmost non-nil hint wins.
type ToolReply struct {
	// Value becomes the tool message content.
	Value any
	// ContextUpdates merge into the context store, present keys replacing.
	ContextUpdates map[string]any
	// Next, when set, short-circuits handoff resolution for this turn.
	Next *Target
}

// ReplyWithUpdates is shorthand for a value plus context updates.
func ReplyWithUpdates(value any, updates map[string]any) ToolReply {
	return ToolReply{Value: value, ContextUpdates: updates}
}

// ReplyWithTarget is shorthand for a value plus a navigation hint.
func ReplyWithTarget(value any, target Target) ToolReply {
	return ToolReply{Value: value, Next: &target}
}

// renderToolValue converts a tool's return value into message content.
// Strings pass through; everything else is JSON encoded.
func renderToolValue(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case string:
		return json.RawMessage(v), nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
