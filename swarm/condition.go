package swarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/swarmflow/types"
)

// CompletionClient is the minimal LLM surface the engine's optional
// collaborators need: one prompt in, one completion out.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionFunc adapts a function to the CompletionClient interface.
type CompletionFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements CompletionClient.
func (f CompletionFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ConditionEvaluator judges whether a handoff rule's free-form condition
// holds against the current transcript and context.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, condition string, transcript []types.Message, vars ContextView) (bool, error)
}

// EvaluatorFunc adapts a function to the ConditionEvaluator interface.
type EvaluatorFunc func(ctx context.Context, condition string, transcript []types.Message, vars ContextView) (bool, error)

// Evaluate implements ConditionEvaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, condition string, transcript []types.Message, vars ContextView) (bool, error) {
	return f(ctx, condition, transcript, vars)
}

// LLMEvaluator judges conditions by asking a completion client for a
// yes-or-no verdict over the last transcript message and the condition text.
type LLMEvaluator struct {
	client CompletionClient
	// window caps how many trailing messages are shown to the model.
	window int
}

// NewLLMEvaluator creates an evaluator backed by the given client.
func NewLLMEvaluator(client CompletionClient) *LLMEvaluator {
	return &LLMEvaluator{client: client, window: 5}
}

// Evaluate implements ConditionEvaluator.
func (e *LLMEvaluator) Evaluate(ctx context.Context, condition string, transcript []types.Message, vars ContextView) (bool, error) {
	if e.client == nil {
		return false, types.NewError(types.ErrEvaluation, "llm evaluator has no completion client")
	}
	var sb strings.Builder
	sb.WriteString("Judge whether the following condition currently holds for the conversation. Answer with exactly YES or NO.\n\n")
	fmt.Fprintf(&sb, "Condition: %s\n\nRecent messages:\n", condition)
	start := 0
	if len(transcript) > e.window {
		start = len(transcript) - e.window
	}
	for _, m := range transcript[start:] {
		fmt.Fprintf(&sb, "[%s] %s\n", m.Name, m.Content)
	}
	reply, err := e.client.Complete(ctx, sb.String())
	if err != nil {
		return false, types.NewError(types.ErrEvaluation, "condition evaluation failed").WithCause(err)
	}
	verdict := strings.ToUpper(strings.TrimSpace(reply))
	return strings.HasPrefix(verdict, "YES"), nil
}
