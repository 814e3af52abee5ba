package swarm

// HandoffRule is the closed union of handoff rules an actor can declare:
// ConditionalTransfer and NestedChatTransfer. Rules are evaluated in
// registration order; the first rule whose condition holds wins.
type HandoffRule interface {
	// RuleCondition returns the free-form condition text evaluated by the
	// session's ConditionEvaluator.
	RuleCondition() string

	// sealed keeps the union closed so the resolver's type switch stays
	// exhaustive.
	sealed()
}

// ConditionalTransfer hands control to a target when its condition is
// asserted true.
type ConditionalTransfer struct {
	// Target receives control when Condition holds.
	Target Target
	// Condition is free-form text judged by the injected evaluator.
	Condition string
}

// RuleCondition implements HandoffRule.
func (r ConditionalTransfer) RuleCondition() string { return r.Condition }

func (ConditionalTransfer) sealed() {}

// NestedChatTransfer spawns a nested flow when its condition is asserted
// true. The flow's folded-back message becomes the triggering actor's turn
// output and resolution continues through the after-work chain.
type NestedChatTransfer struct {
	// Flow describes the nested run.
	Flow NestedFlow
	// Condition is free-form text judged by the injected evaluator.
	Condition string
}

// RuleCondition implements HandoffRule.
func (r NestedChatTransfer) RuleCondition() string { return r.Condition }

func (NestedChatTransfer) sealed() {}
