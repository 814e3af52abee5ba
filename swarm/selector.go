package swarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/swarmflow/types"
)

// SpeakerSelector picks the next speaker when resolution delegates the
// choice instead of naming an actor. The candidate set is always the full
// registered actor set.
type SpeakerSelector interface {
	SelectNext(ctx context.Context, registry *Registry, current string, transcript []types.Message, vars ContextView) (string, error)
}

// SelectorFunc adapts a function to the SpeakerSelector interface.
type SelectorFunc func(ctx context.Context, registry *Registry, current string, transcript []types.Message, vars ContextView) (string, error)

// SelectNext implements SpeakerSelector.
func (f SelectorFunc) SelectNext(ctx context.Context, registry *Registry, current string, transcript []types.Message, vars ContextView) (string, error) {
	return f(ctx, registry, current, transcript, vars)
}

// RoundRobinSelector walks the registry in registration order, picking the
// actor after the current speaker and wrapping at the end. Deterministic, so
// it doubles as the test selector.
type RoundRobinSelector struct{}

// SelectNext implements SpeakerSelector.
func (RoundRobinSelector) SelectNext(_ context.Context, registry *Registry, current string, _ []types.Message, _ ContextView) (string, error) {
	names := registry.Names()
	if len(names) == 0 {
		return "", types.NewError(types.ErrNavigation, "selector has no candidates")
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)], nil
		}
	}
	return names[0], nil
}

// LLMSelector asks a completion client to pick the next speaker from the
// registered actors, using their descriptions as the selection prompt.
type LLMSelector struct {
	client CompletionClient
	window int
}

// NewLLMSelector creates a selector backed by the given client.
func NewLLMSelector(client CompletionClient) *LLMSelector {
	return &LLMSelector{client: client, window: 10}
}

// SelectNext implements SpeakerSelector.
func (s *LLMSelector) SelectNext(ctx context.Context, registry *Registry, current string, transcript []types.Message, _ ContextView) (string, error) {
	if s.client == nil {
		return "", types.NewError(types.ErrNavigation, "llm selector has no completion client")
	}
	var sb strings.Builder
	sb.WriteString("Pick the best next speaker for this conversation. Answer with exactly one name from the list.\n\nSpeakers:\n")
	for _, a := range registry.Actors() {
		fmt.Fprintf(&sb, "- %s: %s\n", a.Name(), a.Description())
	}
	fmt.Fprintf(&sb, "\nCurrent speaker: %s\n\nRecent messages:\n", current)
	start := 0
	if len(transcript) > s.window {
		start = len(transcript) - s.window
	}
	for _, m := range transcript[start:] {
		fmt.Fprintf(&sb, "[%s] %s\n", m.Name, m.Content)
	}
	reply, err := s.client.Complete(ctx, sb.String())
	if err != nil {
		return "", types.NewError(types.ErrNavigation, "speaker selection failed").WithCause(err)
	}
	choice := strings.TrimSpace(reply)
	if registry.Has(choice) {
		return choice, nil
	}
	// Models sometimes quote or embellish the name; salvage an exact
	// substring match before giving up.
	for _, name := range registry.Names() {
		if strings.Contains(choice, name) {
			return name, nil
		}
	}
	return "", types.NewErrorf(types.ErrNavigation, "selector returned unknown actor %q", choice)
}
