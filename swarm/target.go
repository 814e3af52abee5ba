package swarm

import (
	"context"

	"github.com/BaSui01/swarmflow/types"
)

// AfterWorkPolicy names a built-in next-step policy.
type AfterWorkPolicy string

const (
	// PolicyTerminate ends the session.
	PolicyTerminate AfterWorkPolicy = "terminate"
	// PolicyStay keeps the current actor for the next turn.
	PolicyStay AfterWorkPolicy = "stay"
	// PolicyRevertToInitiator hands control back to the configured
	// initiator. Fatal when no initiator is configured.
	PolicyRevertToInitiator AfterWorkPolicy = "revert_to_initiator"
	// PolicyDelegateToSelector defers to the speaker selector over the
	// full actor set.
	PolicyDelegateToSelector AfterWorkPolicy = "delegate_to_selector"
	// PolicyRevertToPrevious hands control to the speaker that was active
	// immediately before the current one. Only meaningful as a tool hint.
	PolicyRevertToPrevious AfterWorkPolicy = "revert_to_previous"
)

// TargetKind discriminates the Target union.
type TargetKind string

const (
	TargetActor    TargetKind = "actor"
	TargetPolicy   TargetKind = "policy"
	TargetCallback TargetKind = "callback"
)

// DecisionFunc is a caller-supplied navigation decision. It observes the
// transcript and context and returns the target to apply next.
type DecisionFunc func(ctx context.Context, transcript []types.Message, vars ContextView) (Target, error)

// Target is the closed union of navigation destinations: a registered actor
// by name, a built-in policy, or a decision callback. The zero value means
// "no target".
type Target struct {
	kind   TargetKind
	actor  string
	policy AfterWorkPolicy
	decide DecisionFunc
}

// ToActor targets a registered actor by name.
func ToActor(name string) Target {
	return Target{kind: TargetActor, actor: name}
}

// ToPolicy targets a built-in policy.
func ToPolicy(policy AfterWorkPolicy) Target {
	return Target{kind: TargetPolicy, policy: policy}
}

// ToCallback targets a decision callback.
func ToCallback(decide DecisionFunc) Target {
	return Target{kind: TargetCallback, decide: decide}
}

// Kind returns the union discriminant.
func (t Target) Kind() TargetKind { return t.kind }

// Actor returns the actor name for TargetActor targets.
func (t Target) Actor() string { return t.actor }

// Policy returns the policy for TargetPolicy targets.
func (t Target) Policy() AfterWorkPolicy { return t.policy }

// IsZero reports whether the target is unset.
func (t Target) IsZero() bool { return t.kind == "" }

// String renders the target for logs.
func (t Target) String() string {
	switch t.kind {
	case TargetActor:
		return "actor:" + t.actor
	case TargetPolicy:
		return "policy:" + string(t.policy)
	case TargetCallback:
		return "callback"
	default:
		return "none"
	}
}
