package swarm

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/types"
)

// maxCallbackDepth bounds chains of callback targets returning further
// callback targets.
const maxCallbackDepth = 8

// resolution is the outcome of one handoff resolution pass.
type resolution struct {
	// terminate ends the session when set.
	terminate bool
	// nextActor names the next speaker when terminate is false and no
	// nested flow matched.
	nextActor string
	// nested is set when a NestedChatTransfer rule matched; the session
	// dispatches the flow and then resolves fallbacks only.
	nested *NestedFlow
}

// resolver applies the deterministic handoff resolution order after each
// turn: tool hint, then the current actor's rules in registration order,
// then the actor's after-work fallback, then the session default, then
// terminate.
type resolver struct {
	registry  *Registry
	evaluator ConditionEvaluator
	selector  SpeakerSelector
	initiator string
	fallback  *Target
	logger    *zap.Logger
}

func newResolver(registry *Registry, evaluator ConditionEvaluator, selector SpeakerSelector, initiator string, fallback *Target, logger *zap.Logger) *resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resolver{
		registry:  registry,
		evaluator: evaluator,
		selector:  selector,
		initiator: initiator,
		fallback:  fallback,
		logger:    logger.With(zap.String("component", "resolver")),
	}
}

// resolve runs the full resolution order for the turn just completed.
// current is the speaker that finished; previous is the speaker before it,
// empty on the first turn. hint is the winning tool navigation hint, nil
// when no tool supplied one.
func (r *resolver) resolve(ctx context.Context, current, previous string, hint *Target, transcript []types.Message, vars ContextView) (resolution, error) {
	if hint != nil {
		return r.applyTarget(ctx, *hint, current, previous, transcript, vars, 0)
	}

	actor, ok := r.registry.Get(current)
	if !ok {
		return resolution{}, types.NewErrorf(types.ErrNavigation, "current speaker %q is not registered", current)
	}

	for _, rule := range actor.Rules() {
		holds, err := r.evalCondition(ctx, rule.RuleCondition(), transcript, vars)
		if err != nil {
			return resolution{}, err
		}
		if !holds {
			continue
		}
		switch rl := rule.(type) {
		case ConditionalTransfer:
			return r.applyTarget(ctx, rl.Target, current, previous, transcript, vars, 0)
		case NestedChatTransfer:
			flow := rl.Flow
			return resolution{nested: &flow}, nil
		}
	}

	return r.resolveFallbacks(ctx, current, previous, transcript, vars)
}

// resolveFallbacks runs only the after-work portion of the order. The
// session calls it directly after a nested flow folds back, so the fold-back
// never re-triggers the rule that spawned it.
func (r *resolver) resolveFallbacks(ctx context.Context, current, previous string, transcript []types.Message, vars ContextView) (resolution, error) {
	actor, ok := r.registry.Get(current)
	if !ok {
		return resolution{}, types.NewErrorf(types.ErrNavigation, "current speaker %q is not registered", current)
	}
	if aw := actor.AfterWork(); aw != nil {
		return r.applyTarget(ctx, *aw, current, previous, transcript, vars, 0)
	}
	if r.fallback != nil {
		return r.applyTarget(ctx, *r.fallback, current, previous, transcript, vars, 0)
	}
	return resolution{terminate: true}, nil
}

func (r *resolver) evalCondition(ctx context.Context, condition string, transcript []types.Message, vars ContextView) (bool, error) {
	if r.evaluator == nil {
		r.logger.Warn("no condition evaluator configured, treating condition as false",
			zap.String("condition", condition))
		return false, nil
	}
	holds, err := r.evaluator.Evaluate(ctx, condition, transcript, vars)
	if err != nil {
		return false, types.NewErrorf(types.ErrEvaluation, "condition %q evaluation failed", condition).WithCause(err)
	}
	return holds, nil
}

// applyTarget resolves a target to a concrete outcome. Callback targets may
// chain into further targets up to maxCallbackDepth.
func (r *resolver) applyTarget(ctx context.Context, t Target, current, previous string, transcript []types.Message, vars ContextView, depth int) (resolution, error) {
	if depth > maxCallbackDepth {
		return resolution{}, types.NewErrorf(types.ErrNavigation, "callback target chain exceeded depth %d", maxCallbackDepth)
	}

	switch t.Kind() {
	case TargetActor:
		if !r.registry.Has(t.Actor()) {
			return resolution{}, types.NewErrorf(types.ErrNavigation, "target actor %q is not registered", t.Actor())
		}
		return resolution{nextActor: t.Actor()}, nil

	case TargetPolicy:
		return r.applyPolicy(ctx, t.Policy(), current, previous, transcript, vars)

	case TargetCallback:
		next, err := t.decide(ctx, transcript, vars)
		if err != nil {
			return resolution{}, types.NewError(types.ErrNavigation, "callback target failed").WithCause(err)
		}
		if next.IsZero() {
			r.logger.Warn("callback target returned no destination, falling back to session default",
				zap.String("actor", current),
				zap.String("code", string(types.ErrResolutionAmbiguity)))
			if r.fallback != nil {
				return r.applyTarget(ctx, *r.fallback, current, previous, transcript, vars, depth+1)
			}
			return resolution{terminate: true}, nil
		}
		return r.applyTarget(ctx, next, current, previous, transcript, vars, depth+1)

	default:
		return resolution{}, types.NewError(types.ErrNavigation, "target has no kind")
	}
}

func (r *resolver) applyPolicy(ctx context.Context, policy AfterWorkPolicy, current, previous string, transcript []types.Message, vars ContextView) (resolution, error) {
	switch policy {
	case PolicyTerminate:
		return resolution{terminate: true}, nil

	case PolicyStay:
		return resolution{nextActor: current}, nil

	case PolicyRevertToInitiator:
		if r.initiator == "" {
			return resolution{}, types.NewError(types.ErrNavigation, "revert_to_initiator requires a configured initiator")
		}
		return resolution{nextActor: r.initiator}, nil

	case PolicyRevertToPrevious:
		if previous == "" {
			return resolution{}, types.NewError(types.ErrNavigation, "revert_to_previous has no previous speaker")
		}
		return resolution{nextActor: previous}, nil

	case PolicyDelegateToSelector:
		if r.selector == nil {
			return resolution{}, types.NewError(types.ErrNavigation, "delegate_to_selector requires a speaker selector")
		}
		name, err := r.selector.SelectNext(ctx, r.registry, current, transcript, vars)
		if err != nil {
			return resolution{}, types.NewError(types.ErrNavigation, "speaker selection failed").WithCause(err)
		}
		if !r.registry.Has(name) {
			return resolution{}, types.NewErrorf(types.ErrNavigation, "selector picked unregistered actor %q", name)
		}
		return resolution{nextActor: name}, nil

	default:
		return resolution{}, types.NewErrorf(types.ErrNavigation, "unknown after-work policy %q", policy)
	}
}
