package swarm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/swarmflow/internal/metrics"
	"github.com/BaSui01/swarmflow/types"
)

// toolStage executes a turn's tool calls sequentially in emission order.
// Failures are non-fatal: the error text becomes the tool message and the
// run continues. Context updates merge into the store immediately, so later
// calls in the same turn observe earlier writes. When several calls carry
// navigation hints, the rightmost non-nil hint wins.
type toolStage struct {
	vars    *ContextVars
	limiter *rate.Limiter
	metrics *metrics.Collector
	logger  *zap.Logger

	// lastHint carries the hint from the call just executed. The stage is
	// confined to one session goroutine, so a plain field suffices.
	lastHint *Target
}

func newToolStage(vars *ContextVars, limiter *rate.Limiter, collector *metrics.Collector, logger *zap.Logger) *toolStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &toolStage{
		vars:    vars,
		limiter: limiter,
		metrics: collector,
		logger:  logger.With(zap.String("component", "tool_stage")),
	}
}

// run executes calls for actor and returns the tool messages to append plus
// the winning navigation hint, if any. Only context cancellation is fatal.
func (s *toolStage) run(ctx context.Context, actor *Actor, calls []types.ToolCall) ([]types.Message, *Target, error) {
	msgs := make([]types.Message, 0, len(calls))
	var hint *Target

	for _, call := range calls {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return msgs, hint, types.NewError(types.ErrToolExecution, "tool rate limit wait interrupted").WithCause(err)
			}
		}

		result := s.execute(ctx, actor, call)
		if result.IsError() {
			s.logger.Warn("tool call failed",
				zap.String("actor", actor.Name()),
				zap.String("tool", call.Name),
				zap.String("error", result.Error),
			)
		}
		if s.metrics != nil {
			s.metrics.ObserveToolCall(call.Name, result.Duration, result.IsError())
		}
		msgs = append(msgs, result.ToMessage())

		if ctx.Err() != nil {
			return msgs, hint, types.NewError(types.ErrToolExecution, "tool stage cancelled").WithCause(ctx.Err())
		}
		if h := s.lastHint; h != nil {
			hint = h
			s.lastHint = nil
		}
	}
	return msgs, hint, nil
}

func (s *toolStage) execute(ctx context.Context, actor *Actor, call types.ToolCall) types.ToolResult {
	started := time.Now()
	res := types.ToolResult{ToolCallID: call.ID, Name: call.Name}

	tool, ok := actor.Tool(call.Name)
	if !ok {
		res.Error = types.NewErrorf(types.ErrToolExecution, "actor %q has no tool %q", actor.Name(), call.Name).Error()
		res.Duration = time.Since(started)
		return res
	}
	if tool.Handler == nil {
		res.Error = types.NewErrorf(types.ErrToolExecution, "tool %q has no handler", call.Name).Error()
		res.Duration = time.Since(started)
		return res
	}

	value, err := tool.Handler(ctx, call.Arguments, s.vars)
	res.Duration = time.Since(started)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	// Handlers may hand the reply back by value or by pointer.
	if p, ok := value.(*ToolReply); ok && p != nil {
		value = *p
	}
	if reply, ok := value.(ToolReply); ok {
		if len(reply.ContextUpdates) > 0 {
			s.vars.Merge(reply.ContextUpdates)
		}
		if reply.Next != nil {
			s.lastHint = reply.Next
		}
		value = reply.Value
	}

	rendered, err := renderToolValue(value)
	if err != nil {
		res.Error = types.NewErrorf(types.ErrToolExecution, "tool %q result not serializable", call.Name).WithCause(err).Error()
		return res
	}
	res.Result = rendered
	return res
}
