// Package swarmflow provides a top-level convenience entry point for running
// swarm sessions with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/swarmflow"
//
//	triage := swarmflow.NewActor("triage",
//	    swarmflow.WithHandoffs(swarmflow.ConditionalTransfer{
//	        Target:    swarmflow.ToActor("refunds"),
//	        Condition: "customer wants a refund",
//	    }))
//	reg, err := swarmflow.NewRegistry(triage, refunds)
//	sess, err := swarmflow.NewSession(swarmflow.Options{Registry: reg, Responder: r})
//	res, err := sess.InitiateText(ctx, "triage", "I want my money back")
//
// This is a thin wrapper around the [swarm] package; both produce identical
// results. Use this package when you prefer the shorter import path.
package swarmflow

import (
	"github.com/BaSui01/swarmflow/swarm"
)

// Core session types.
type (
	Options           = swarm.Options
	Session           = swarm.Session
	Result            = swarm.Result
	TerminationReason = swarm.TerminationReason
)

// Actor construction.
type (
	Actor       = swarm.Actor
	ActorOption = swarm.ActorOption
	Registry    = swarm.Registry
	Tool        = swarm.Tool
	ToolReply   = swarm.ToolReply
)

// Handoff rules and targets.
type (
	HandoffRule         = swarm.HandoffRule
	ConditionalTransfer = swarm.ConditionalTransfer
	NestedChatTransfer  = swarm.NestedChatTransfer
	NestedFlow          = swarm.NestedFlow
	NestedStep          = swarm.NestedStep
	Target              = swarm.Target
	AfterWorkPolicy     = swarm.AfterWorkPolicy
)

// Collaborator contracts.
type (
	Responder          = swarm.Responder
	ResponderFunc      = swarm.ResponderFunc
	ConditionEvaluator = swarm.ConditionEvaluator
	EvaluatorFunc      = swarm.EvaluatorFunc
	SpeakerSelector    = swarm.SpeakerSelector
	CompletionClient   = swarm.CompletionClient
	ContextView        = swarm.ContextView
	TurnResult         = swarm.TurnResult
)

const (
	TerminationNormal    = swarm.TerminationNormal
	TerminationExhausted = swarm.TerminationExhausted

	PolicyTerminate          = swarm.PolicyTerminate
	PolicyStay               = swarm.PolicyStay
	PolicyRevertToInitiator  = swarm.PolicyRevertToInitiator
	PolicyDelegateToSelector = swarm.PolicyDelegateToSelector
	PolicyRevertToPrevious   = swarm.PolicyRevertToPrevious
)

// NewSession creates a session from options.
func NewSession(opts Options) (*Session, error) {
	return swarm.New(opts)
}

// NewActor creates an actor with the given unique name.
var NewActor = swarm.NewActor

// NewRegistry builds a registry from the given actors.
var NewRegistry = swarm.NewRegistry

// Target constructors.
var (
	ToActor    = swarm.ToActor
	ToPolicy   = swarm.ToPolicy
	ToCallback = swarm.ToCallback
)

// Actor options.
var (
	WithSystemMessage = swarm.WithSystemMessage
	WithDescription   = swarm.WithDescription
	WithTools         = swarm.WithTools
	WithHooks         = swarm.WithHooks
	WithHandoffs      = swarm.WithHandoffs
	WithAfterWork     = swarm.WithAfterWork
)

// Tool reply helpers.
var (
	ReplyWithUpdates = swarm.ReplyWithUpdates
	ReplyWithTarget  = swarm.ReplyWithTarget
)
