package swarm

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/types"
)

// TurnState is the mutable pre-turn state passed through an actor's update
// hooks in registration order. Later hooks observe earlier mutations of both
// the system message and the context store.
type TurnState struct {
	// Actor is the name of the actor about to take a turn.
	Actor string
	// SystemMessage is the system message the responder will receive.
	// Hooks may rewrite it.
	SystemMessage string
	// Transcript is a read-only copy of the messages so far.
	Transcript []types.Message
	// Vars is the live context store; hook writes are visible immediately.
	Vars *ContextVars
}

// UpdateHook mutates pre-turn state. Hook errors are logged and skipped;
// remaining hooks still run.
type UpdateHook func(ctx context.Context, st *TurnState) error

var templateKeyPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// renderTemplate substitutes {key} placeholders from the context store.
// Missing keys render as empty strings.
func renderTemplate(template string, vars ContextView) string {
	return templateKeyPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		return vars.GetString(key)
	})
}

// TemplateHook returns a hook that rewrites the system message from a
// template with {key} placeholders resolved against the context store.
func TemplateHook(template string) UpdateHook {
	return func(_ context.Context, st *TurnState) error {
		st.SystemMessage = renderTemplate(template, st.Vars)
		return nil
	}
}

// Actor is an autonomous conversational participant: a unique name, ordered
// tool capabilities, ordered handoff rules, at most one after-work fallback,
// and ordered pre-turn update hooks.
type Actor struct {
	name          string
	description   string
	systemMessage string
	tools         []Tool
	toolIndex     map[string]int
	rules         []HandoffRule
	afterWork     *Target
	hooks         []UpdateHook
	logger        *zap.Logger
}

// ActorOption configures an Actor.
type ActorOption func(*Actor)

// WithSystemMessage sets the actor's system message. It may contain {key}
// placeholders resolved against the context store before each turn.
func WithSystemMessage(msg string) ActorOption {
	return func(a *Actor) { a.systemMessage = msg }
}

// WithDescription sets a human-readable description used by selectors.
func WithDescription(desc string) ActorOption {
	return func(a *Actor) { a.description = desc }
}

// WithTools registers tools in order.
func WithTools(tools ...Tool) ActorOption {
	return func(a *Actor) {
		for _, t := range tools {
			_ = a.AddTool(t)
		}
	}
}

// WithHooks registers pre-turn update hooks in order.
func WithHooks(hooks ...UpdateHook) ActorOption {
	return func(a *Actor) { a.hooks = append(a.hooks, hooks...) }
}

// WithHandoffs registers handoff rules in order.
func WithHandoffs(rules ...HandoffRule) ActorOption {
	return func(a *Actor) { a.rules = append(a.rules, rules...) }
}

// WithAfterWork sets the actor-level after-work fallback.
func WithAfterWork(target Target) ActorOption {
	return func(a *Actor) { a.afterWork = &target }
}

// WithActorLogger sets the actor's logger.
func WithActorLogger(logger *zap.Logger) ActorOption {
	return func(a *Actor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewActor creates an actor with the given unique name.
func NewActor(name string, opts ...ActorOption) *Actor {
	a := &Actor{
		name:      name,
		toolIndex: make(map[string]int),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the actor's unique name.
func (a *Actor) Name() string { return a.name }

// Description returns the actor's description.
func (a *Actor) Description() string { return a.description }

// SystemMessage returns the actor's raw system message template.
func (a *Actor) SystemMessage() string { return a.systemMessage }

// Tools returns the actor's tools in registration order.
func (a *Actor) Tools() []Tool {
	out := make([]Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// Tool looks up a tool by name.
func (a *Actor) Tool(name string) (Tool, bool) {
	i, ok := a.toolIndex[name]
	if !ok {
		return Tool{}, false
	}
	return a.tools[i], true
}

// AddTool registers a tool. Duplicate names are rejected.
func (a *Actor) AddTool(t Tool) error {
	if _, exists := a.toolIndex[t.Name]; exists {
		return types.NewErrorf(types.ErrValidation, "actor %q already has tool %q", a.name, t.Name)
	}
	a.toolIndex[t.Name] = len(a.tools)
	a.tools = append(a.tools, t)
	return nil
}

// Rules returns the actor's handoff rules in registration order.
func (a *Actor) Rules() []HandoffRule {
	out := make([]HandoffRule, len(a.rules))
	copy(out, a.rules)
	return out
}

// RegisterHandoffs appends rules to the actor's ordered rule list. Repeated
// calls accumulate; prior rules are never replaced implicitly.
func (a *Actor) RegisterHandoffs(rules ...HandoffRule) {
	a.rules = append(a.rules, rules...)
}

// ReplaceHandoffs discards the actor's rule list and installs the given
// rules instead.
func (a *Actor) ReplaceHandoffs(rules ...HandoffRule) {
	a.rules = append([]HandoffRule(nil), rules...)
}

// AfterWork returns the actor-level after-work fallback, if set.
func (a *Actor) AfterWork() *Target {
	return a.afterWork
}

// SetAfterWork installs the actor-level after-work fallback. At most one is
// active; setting a second replaces the first with a warning rather than
// keeping both.
func (a *Actor) SetAfterWork(target Target) {
	if a.afterWork != nil {
		a.logger.Warn("replacing existing after-work fallback",
			zap.String("actor", a.name),
			zap.String("previous", a.afterWork.String()),
			zap.String("next", target.String()),
		)
	}
	a.afterWork = &target
}

// AddHook appends a pre-turn update hook.
func (a *Actor) AddHook(h UpdateHook) {
	a.hooks = append(a.hooks, h)
}

// Hooks returns the actor's hooks in registration order.
func (a *Actor) Hooks() []UpdateHook {
	out := make([]UpdateHook, len(a.hooks))
	copy(out, a.hooks)
	return out
}
