package swarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/swarmflow/tokenizer"
	"github.com/BaSui01/swarmflow/types"
)

// CarryoverMode selects how parent conversation state is injected into a
// nested flow's first step.
type CarryoverMode string

const (
	// CarryoverConcatenateAll joins every parent transcript message.
	CarryoverConcatenateAll CarryoverMode = "concatenate_all"
	// CarryoverLastMessageOnly appends only the latest parent message.
	CarryoverLastMessageOnly CarryoverMode = "last_message_only"
	// CarryoverLLMSummary asks the summarizer to condense the parent
	// transcript with a prompt template.
	CarryoverLLMSummary CarryoverMode = "llm_summary"
	// CarryoverCustom delegates to a caller-supplied extractor whose output
	// replaces the carryover text entirely.
	CarryoverCustom CarryoverMode = "custom"
)

// CarryoverExtractor produces the full carryover text for CarryoverCustom.
type CarryoverExtractor func(ctx context.Context, parent []types.Message, vars ContextView) (string, error)

// CarryoverConfig controls parent-state injection for a flow's first step.
type CarryoverConfig struct {
	Mode CarryoverMode
	// PromptTemplate is the summarization prompt for CarryoverLLMSummary.
	// The parent transcript is appended after it.
	PromptTemplate string
	// Extractor serves CarryoverCustom.
	Extractor CarryoverExtractor
	// MaxTokens truncates the carryover text when positive. Requires a
	// session tokenizer; without one the cap is ignored.
	MaxTokens int
}

// SummaryMethod selects how a finished step's transcript collapses into one
// result message.
type SummaryMethod string

const (
	// SummaryAll joins every message produced by the step.
	SummaryAll SummaryMethod = "all"
	// SummaryLastMsg keeps only the step's final message.
	SummaryLastMsg SummaryMethod = "last_msg"
	// SummaryReflection asks the summarizer to condense the step transcript.
	SummaryReflection SummaryMethod = "reflection_with_llm"
	// SummaryCustom delegates to a caller-supplied function.
	SummaryCustom SummaryMethod = "custom"
)

// SummaryFunc produces the result message content for SummaryCustom.
type SummaryFunc func(ctx context.Context, transcript []types.Message, vars ContextView) (string, error)

// defaultReflectionPrompt condenses a step transcript when SummaryReflection
// is selected without an explicit prompt.
const defaultReflectionPrompt = "Summarize the takeaway from the conversation. Do not add any introductory phrases."

// NestedStep is one bounded sub-loop within a nested flow.
type NestedStep struct {
	// TargetActor opens the step; it must be registered.
	TargetActor string
	// Message seeds the step's transcript. Carryover text, when present, is
	// appended after it.
	Message string
	// TurnLimit bounds the step's turns. Zero means a single turn.
	TurnLimit int
	// Summary selects the step's result extraction. Empty means SummaryLastMsg.
	Summary SummaryMethod
	// SummaryPrompt overrides the reflection prompt for SummaryReflection.
	SummaryPrompt string
	// SummaryFn serves SummaryCustom.
	SummaryFn SummaryFunc
	// Carryover is honored on the first step only.
	Carryover *CarryoverConfig
}

// NestedFlow is an ordered list of steps dispatched as one handoff. Steps
// run sequentially; each step after the first receives the previous step's
// summary as carryover. The final step's summary folds back into the parent
// transcript as the triggering actor's turn output.
type NestedFlow struct {
	Steps []NestedStep
	// ShareContext makes nested steps mutate the parent context store
	// directly. The default is a snapshot: nested writes stay nested.
	ShareContext bool
}

func (f NestedFlow) validate(registry *Registry) error {
	if len(f.Steps) == 0 {
		return types.NewError(types.ErrValidation, "nested flow must have at least one step")
	}
	for i, step := range f.Steps {
		if !registry.Has(step.TargetActor) {
			return types.NewErrorf(types.ErrValidation, "nested step %d targets unregistered actor %q", i, step.TargetActor)
		}
		if i > 0 && step.Carryover != nil {
			return types.NewErrorf(types.ErrValidation, "nested step %d declares carryover, only the first step may", i)
		}
		if step.Summary == SummaryCustom && step.SummaryFn == nil {
			return types.NewErrorf(types.ErrValidation, "nested step %d selects custom summary without a function", i)
		}
		if step.Carryover != nil && step.Carryover.Mode == CarryoverCustom && step.Carryover.Extractor == nil {
			return types.NewErrorf(types.ErrValidation, "nested step %d selects custom carryover without an extractor", i)
		}
	}
	return nil
}

// composeStepMessage builds a step's seed message. Non-empty carryover is
// appended after a context marker line.
func composeStepMessage(message, carryover string) string {
	if carryover == "" {
		return message
	}
	return message + "\nContext: \n" + carryover
}

// buildCarryover produces the carryover text for a flow's first step.
func buildCarryover(ctx context.Context, cfg *CarryoverConfig, parent []types.Message, vars ContextView, summarizer CompletionClient, tok tokenizer.Tokenizer) (string, error) {
	if cfg == nil {
		return "", nil
	}

	var text string
	switch cfg.Mode {
	case CarryoverConcatenateAll:
		parts := make([]string, 0, len(parent))
		for _, m := range parent {
			if m.Content != "" {
				parts = append(parts, m.Content)
			}
		}
		text = strings.Join(parts, "\n")

	case CarryoverLastMessageOnly, "":
		if len(parent) > 0 {
			text = parent[len(parent)-1].Content
		}

	case CarryoverLLMSummary:
		if summarizer == nil {
			return "", types.NewError(types.ErrValidation, "llm_summary carryover requires a summarizer")
		}
		var sb strings.Builder
		sb.WriteString(cfg.PromptTemplate)
		sb.WriteString("\n\n")
		for _, m := range parent {
			fmt.Fprintf(&sb, "[%s] %s\n", m.Name, m.Content)
		}
		summary, err := summarizer.Complete(ctx, sb.String())
		if err != nil {
			return "", types.NewError(types.ErrEvaluation, "carryover summarization failed").WithCause(err)
		}
		text = strings.TrimSpace(summary)

	case CarryoverCustom:
		out, err := cfg.Extractor(ctx, parent, vars)
		if err != nil {
			return "", types.NewError(types.ErrEvaluation, "carryover extractor failed").WithCause(err)
		}
		text = out

	default:
		return "", types.NewErrorf(types.ErrValidation, "unknown carryover mode %q", cfg.Mode)
	}

	if cfg.MaxTokens > 0 && tok != nil {
		text = tokenizer.Truncate(tok, text, cfg.MaxTokens)
	}
	return text, nil
}

// summarizeStep collapses a finished step's transcript into its result text.
// seedLen is the number of seed messages at the head of the transcript,
// excluded from SummaryAll and SummaryLastMsg.
func summarizeStep(ctx context.Context, step NestedStep, transcript []types.Message, seedLen int, vars ContextView, summarizer CompletionClient) (string, error) {
	produced := transcript
	if seedLen < len(transcript) {
		produced = transcript[seedLen:]
	}

	method := step.Summary
	if method == "" {
		method = SummaryLastMsg
	}

	switch method {
	case SummaryAll:
		parts := make([]string, 0, len(produced))
		for _, m := range produced {
			if m.Content != "" {
				parts = append(parts, m.Content)
			}
		}
		return strings.Join(parts, "\n"), nil

	case SummaryLastMsg:
		if len(produced) == 0 {
			return "", nil
		}
		return produced[len(produced)-1].Content, nil

	case SummaryReflection:
		if summarizer == nil {
			return "", types.NewError(types.ErrValidation, "reflection summary requires a summarizer")
		}
		prompt := step.SummaryPrompt
		if prompt == "" {
			prompt = defaultReflectionPrompt
		}
		var sb strings.Builder
		sb.WriteString(prompt)
		sb.WriteString("\n\n")
		for _, m := range transcript {
			fmt.Fprintf(&sb, "[%s] %s\n", m.Name, m.Content)
		}
		summary, err := summarizer.Complete(ctx, sb.String())
		if err != nil {
			return "", types.NewError(types.ErrEvaluation, "reflection summary failed").WithCause(err)
		}
		return strings.TrimSpace(summary), nil

	case SummaryCustom:
		return step.SummaryFn(ctx, transcript, vars)

	default:
		return "", types.NewErrorf(types.ErrValidation, "unknown summary method %q", method)
	}
}
