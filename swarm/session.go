package swarm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/swarmflow/internal/metrics"
	"github.com/BaSui01/swarmflow/internal/telemetry"
	"github.com/BaSui01/swarmflow/persistence"
	"github.com/BaSui01/swarmflow/tokenizer"
	"github.com/BaSui01/swarmflow/types"
)

// defaultUserActor attributes raw-text seed messages when no user actor is
// configured.
const defaultUserActor = "user"

// TerminationReason distinguishes a session that resolved to Terminate from
// one that ran out of budget.
type TerminationReason string

const (
	// TerminationNormal means resolution reached Terminate.
	TerminationNormal TerminationReason = "normal"
	// TerminationExhausted means a turn or wall-clock budget expired.
	TerminationExhausted TerminationReason = "exhausted"
)

// Result is what a finished session returns.
type Result struct {
	SessionID string
	// Transcript is the full ordered message log.
	Transcript []types.Message
	// FinalContext is a snapshot of the context store at termination.
	FinalContext map[string]any
	// LastActor is the speaker of the final turn.
	LastActor string
	Reason    TerminationReason
	Turns     int
}

// Options configures a Session. Registry and Responder are required; every
// other collaborator is optional.
type Options struct {
	Registry  *Registry
	Responder Responder

	// Evaluator judges rule conditions. Without one every condition is
	// treated as false with a warning.
	Evaluator ConditionEvaluator
	// Selector serves PolicyDelegateToSelector.
	Selector SpeakerSelector
	// Summarizer serves llm_summary carryover and reflection summaries.
	Summarizer CompletionClient
	// Tokenizer enables carryover token budgets.
	Tokenizer tokenizer.Tokenizer
	// Store, when set, checkpoints the session after every turn.
	Store persistence.SessionStore

	// ContextVariables seed the context store.
	ContextVariables map[string]any
	// DefaultAfterWork is the session-level fallback applied when an actor
	// has none. Absent both, the session terminates.
	DefaultAfterWork *Target
	// UserActor attributes seed messages that carry no speaker name.
	UserActor string
	// Initiator serves PolicyRevertToInitiator.
	Initiator string

	// MaxTurns bounds the turn count; zero means unbounded.
	MaxTurns int
	// MaxDuration bounds wall-clock time; zero means unbounded.
	MaxDuration time.Duration
	// ToolRateLimit throttles tool calls when set.
	ToolRateLimit *rate.Limiter

	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// Session is one swarm run: registry, context store, transcript, and the
// current speaker, driven turn by turn until terminal.
type Session struct {
	id     string
	opts   Options
	vars   *ContextVars
	log    *Transcript
	res    *resolver
	stage  *toolStage
	logger *zap.Logger
	tracer trace.Tracer

	current  string
	previous string
	turns    int
	terminal bool
	reason   TerminationReason
}

// New validates options and builds a session.
func New(opts Options) (*Session, error) {
	if opts.Registry == nil || opts.Registry.Len() == 0 {
		return nil, types.NewError(types.ErrValidation, "session requires a non-empty actor registry")
	}
	if opts.Responder == nil {
		return nil, types.NewError(types.ErrValidation, "session requires a responder")
	}
	if opts.Initiator != "" && !opts.Registry.Has(opts.Initiator) {
		return nil, types.NewErrorf(types.ErrValidation, "initiator %q is not registered", opts.Initiator)
	}
	if opts.UserActor == "" {
		opts.UserActor = defaultUserActor
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "session"))

	s := &Session{
		id:     uuid.NewString(),
		opts:   opts,
		vars:   NewContextVars(opts.ContextVariables),
		log:    NewTranscript(),
		logger: logger,
		tracer: telemetry.Tracer(),
		reason: TerminationNormal,
	}
	s.res = newResolver(opts.Registry, opts.Evaluator, opts.Selector, opts.Initiator, opts.DefaultAfterWork, logger)
	s.stage = newToolStage(s.vars, opts.ToolRateLimit, opts.Metrics, logger)
	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// InitiateText starts the session from a single raw-text message attributed
// to the configured user actor.
func (s *Session) InitiateText(ctx context.Context, initialActor, text string) (*Result, error) {
	return s.Initiate(ctx, initialActor, []types.Message{types.NewUserMessage(s.opts.UserActor, text)})
}

// Initiate seeds the transcript and runs the session to termination. A
// single seed message starts a fresh conversation; several seed messages are
// resume mode, where every named speaker must already be registered.
func (s *Session) Initiate(ctx context.Context, initialActor string, seed []types.Message) (*Result, error) {
	if !s.opts.Registry.Has(initialActor) {
		return nil, types.NewErrorf(types.ErrValidation, "initial actor %q is not registered", initialActor)
	}
	if len(seed) == 0 {
		return nil, types.NewError(types.ErrValidation, "session requires at least one seed message")
	}
	seed = types.CopyMessages(seed)
	for i := range seed {
		if seed[i].Name == "" {
			seed[i].Name = s.opts.UserActor
		}
	}
	if len(seed) > 1 {
		if err := s.validateSpeakers(seed); err != nil {
			return nil, err
		}
	}

	s.log.Append(seed...)
	s.current = initialActor
	return s.run(ctx)
}

// Resume restores a checkpointed session and runs it to termination.
func (s *Session) Resume(ctx context.Context, snap *persistence.Snapshot) (*Result, error) {
	if snap == nil {
		return nil, types.NewError(types.ErrValidation, "resume requires a snapshot")
	}
	if !s.opts.Registry.Has(snap.CurrentActor) {
		return nil, types.NewErrorf(types.ErrValidation, "resumed speaker %q is not registered", snap.CurrentActor)
	}
	if err := s.validateSpeakers(snap.Transcript); err != nil {
		return nil, err
	}

	if snap.SessionID != "" {
		s.id = snap.SessionID
	}
	s.log = NewTranscript()
	s.log.Append(types.CopyMessages(snap.Transcript)...)
	s.vars = NewContextVars(snap.ContextVars)
	s.stage = newToolStage(s.vars, s.opts.ToolRateLimit, s.opts.Metrics, s.logger)
	s.current = snap.CurrentActor
	s.previous = snap.PreviousActor
	s.turns = snap.Turns
	return s.run(ctx)
}

// validateSpeakers checks that every named speaker in a resumed transcript
// is registered. Tool messages are named after tools, not speakers, and
// system messages may be anonymous, so both are skipped.
func (s *Session) validateSpeakers(msgs []types.Message) error {
	for _, m := range msgs {
		if m.Role == types.RoleTool || m.Role == types.RoleSystem || m.Name == "" {
			continue
		}
		if m.Name != s.opts.UserActor && !s.opts.Registry.Has(m.Name) {
			return types.NewErrorf(types.ErrValidation, "resumed speaker %q is not registered", m.Name)
		}
	}
	return nil
}

func (s *Session) run(ctx context.Context) (*Result, error) {
	started := time.Now()
	ctx = types.WithSessionID(ctx, s.id)
	ctx, span := s.tracer.Start(ctx, "swarm.session",
		trace.WithAttributes(telemetry.SessionAttrs(s.id, s.current)...))
	defer span.End()

	s.logger.Info("session started",
		zap.String("session_id", s.id),
		zap.String("initial_actor", s.current),
	)
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionStarted()
	}

	var runErr error
	for !s.terminal {
		if s.exhausted(started) {
			s.reason = TerminationExhausted
			break
		}
		if err := s.takeTurn(ctx); err != nil {
			runErr = err
			break
		}
		s.checkpoint(ctx)
	}

	result := &Result{
		SessionID:    s.id,
		Transcript:   s.log.Messages(),
		FinalContext: s.vars.Snapshot(),
		LastActor:    s.current,
		Reason:       s.reason,
		Turns:        s.turns,
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionEnded(string(s.reason), runErr != nil, time.Since(started))
		s.opts.Metrics.ObserveSessionTurns(s.turns)
	}
	s.logger.Info("session finished",
		zap.String("session_id", s.id),
		zap.String("reason", string(s.reason)),
		zap.Int("turns", s.turns),
		zap.String("last_actor", s.current),
		zap.Error(runErr),
	)
	if runErr != nil {
		span.RecordError(runErr)
		return result, runErr
	}
	return result, nil
}

func (s *Session) exhausted(started time.Time) bool {
	if s.opts.MaxTurns > 0 && s.turns >= s.opts.MaxTurns {
		return true
	}
	if s.opts.MaxDuration > 0 && time.Since(started) >= s.opts.MaxDuration {
		return true
	}
	return false
}

// takeTurn runs one full ActorTurn → ToolExecution → ResolveHandoff cycle.
func (s *Session) takeTurn(ctx context.Context) error {
	actor, ok := s.opts.Registry.Get(s.current)
	if !ok {
		return types.NewErrorf(types.ErrNavigation, "current speaker %q is not registered", s.current)
	}
	ctx = types.WithActorName(ctx, actor.Name())
	ctx, span := s.tracer.Start(ctx, "swarm.turn",
		trace.WithAttributes(telemetry.TurnAttrs(actor.Name())...))
	defer span.End()
	turnStarted := time.Now()

	systemMessage := s.runHooks(ctx, actor)

	turn, err := s.opts.Responder.ProduceTurn(ctx, actor, systemMessage, s.log.Messages(), s.vars)
	if err != nil {
		return types.NewErrorf(types.ErrInternal, "actor %q failed to produce a turn", actor.Name()).WithCause(err)
	}
	msgs := types.CopyMessages(turn.Messages)
	for i := range msgs {
		if msgs[i].Name == "" {
			msgs[i].Name = actor.Name()
		}
	}
	s.log.Append(msgs...)

	toolMsgs, hint, err := s.stage.run(ctx, actor, turn.ToolCalls)
	s.log.Append(toolMsgs...)
	if err != nil {
		return err
	}

	s.turns++
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveTurn(actor.Name(), time.Since(turnStarted))
	}

	res, err := s.res.resolve(ctx, s.current, s.previous, hint, s.log.Messages(), s.vars)
	if err != nil {
		return err
	}
	if res.nested != nil {
		folded, nerr := s.runNested(ctx, res.nested, actor.Name())
		if nerr != nil {
			return nerr
		}
		s.log.Append(folded)
		res, err = s.res.resolveFallbacks(ctx, s.current, s.previous, s.log.Messages(), s.vars)
		if err != nil {
			return err
		}
	}

	s.apply(res)
	return nil
}

// runHooks renders the actor's system message template and threads it
// through the actor's update hooks in registration order. Hook errors are
// logged and skipped.
func (s *Session) runHooks(ctx context.Context, actor *Actor) string {
	st := &TurnState{
		Actor:         actor.Name(),
		SystemMessage: renderTemplate(actor.SystemMessage(), s.vars),
		Transcript:    s.log.Messages(),
		Vars:          s.vars,
	}
	for _, hook := range actor.Hooks() {
		if err := hook(ctx, st); err != nil {
			s.logger.Warn("pre-turn hook failed",
				zap.String("actor", actor.Name()),
				zap.Error(err),
			)
		}
	}
	return st.SystemMessage
}

func (s *Session) apply(res resolution) {
	if res.terminate {
		s.terminal = true
		s.reason = TerminationNormal
		return
	}
	if res.nextActor != s.current {
		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveHandoff(s.current, res.nextActor)
		}
		s.previous = s.current
		s.current = res.nextActor
	}
}

// runNested dispatches a nested flow synchronously and returns the folded
// back message attributed to the triggering actor.
func (s *Session) runNested(ctx context.Context, flow *NestedFlow, trigger string) (types.Message, error) {
	ctx, span := s.tracer.Start(ctx, "swarm.nested",
		trace.WithAttributes(telemetry.NestedAttrs(trigger, len(flow.Steps))...))
	defer span.End()
	started := time.Now()

	if err := flow.validate(s.opts.Registry); err != nil {
		return types.Message{}, err
	}

	vars := s.vars
	if !flow.ShareContext {
		vars = s.vars.Clone()
	}
	stage := s.stage
	if !flow.ShareContext {
		stage = newToolStage(vars, s.opts.ToolRateLimit, s.opts.Metrics, s.logger)
	}

	carry, err := buildCarryover(ctx, flow.Steps[0].Carryover, s.log.Messages(), vars, s.opts.Summarizer, s.opts.Tokenizer)
	if err != nil {
		return types.Message{}, err
	}

	summary := ""
	for i, step := range flow.Steps {
		seedText := step.Message
		if i == 0 {
			seedText = composeStepMessage(step.Message, carry)
		} else if summary != "" {
			seedText = composeStepMessage(step.Message, summary)
		}
		summary, err = s.runNestedStep(ctx, step, seedText, vars, stage)
		if err != nil {
			return types.Message{}, err
		}
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveNested(trigger, len(flow.Steps), time.Since(started))
	}
	return types.NewActorMessage(trigger, summary), nil
}

// runNestedStep runs one bounded sub-loop and returns its extracted summary.
func (s *Session) runNestedStep(ctx context.Context, step NestedStep, seedText string, vars *ContextVars, stage *toolStage) (string, error) {
	sub := NewTranscript()
	sub.Append(types.NewUserMessage(s.opts.UserActor, seedText))

	current := step.TargetActor
	previous := ""
	limit := step.TurnLimit
	if limit <= 0 {
		limit = 1
	}

	for turn := 0; turn < limit; turn++ {
		actor, ok := s.opts.Registry.Get(current)
		if !ok {
			return "", types.NewErrorf(types.ErrNavigation, "nested speaker %q is not registered", current)
		}

		systemMessage := renderTemplate(actor.SystemMessage(), vars)
		result, err := s.opts.Responder.ProduceTurn(ctx, actor, systemMessage, sub.Messages(), vars)
		if err != nil {
			return "", types.NewErrorf(types.ErrInternal, "nested actor %q failed to produce a turn", actor.Name()).WithCause(err)
		}
		msgs := types.CopyMessages(result.Messages)
		for i := range msgs {
			if msgs[i].Name == "" {
				msgs[i].Name = actor.Name()
			}
		}
		sub.Append(msgs...)

		toolMsgs, hint, err := stage.run(ctx, actor, result.ToolCalls)
		sub.Append(toolMsgs...)
		if err != nil {
			return "", err
		}

		res, err := s.res.resolve(ctx, current, previous, hint, sub.Messages(), vars)
		if err != nil {
			return "", err
		}
		if res.nested != nil || res.terminate {
			// Nested flows do not recurse into further nested flows; either
			// way the step is done.
			break
		}
		if res.nextActor != current {
			previous = current
			current = res.nextActor
		}
	}

	return summarizeStep(ctx, step, sub.Messages(), 1, vars, s.opts.Summarizer)
}

// checkpoint persists the session state after a turn. Persistence failures
// are logged, never fatal.
func (s *Session) checkpoint(ctx context.Context) {
	if s.opts.Store == nil {
		return
	}
	snap := &persistence.Snapshot{
		SessionID:     s.id,
		Transcript:    s.log.Messages(),
		ContextVars:   s.vars.Snapshot(),
		CurrentActor:  s.current,
		PreviousActor: s.previous,
		Turns:         s.turns,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.opts.Store.Save(ctx, snap); err != nil {
		s.logger.Warn("session checkpoint failed",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
	}
}
