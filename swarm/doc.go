// Package swarm implements the handoff-resolution and turn-scheduling engine:
// a deterministic state machine that decides, after every actor turn, who
// speaks next, how shared context propagates, and how nested chats are
// spawned and folded back into the parent run.
//
// The engine owns scheduling only. Producing an actor's textual response is
// delegated to a Responder, free-form handoff conditions to a
// ConditionEvaluator, and delegated speaker selection to a SpeakerSelector,
// so all model-facing concerns stay behind injectable interfaces.
//
// Exactly one actor is active at any instant and tool calls within a turn run
// sequentially in declared order, so the engine performs no locking of its
// own state.
package swarm
