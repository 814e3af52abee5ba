// ScriptedResponder 的回合生成器测试模拟实现。
//
// 支持按演员名脚本化回复、工具调用与错误注入场景。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/swarmflow/swarm"
	"github.com/BaSui01/swarmflow/types"
)

// --- ScriptedResponder 结构 ---

// ScriptedResponder 是 swarm.Responder 的模拟实现。
// 每个演员可以注册一串脚本回合，按调用顺序依次消费；
// 脚本耗尽或演员未注册时返回 fallback 回复。
type ScriptedResponder struct {
	mu sync.Mutex

	// 脚本配置
	scripts  map[string][]*swarm.TurnResult
	cursor   map[string]int
	fallback string
	err      error

	// 调用记录
	calls []ResponderCall

	// 行为控制
	delay     time.Duration
	failAfter int
	callCount int
}

// ResponderCall 记录单次回合请求
type ResponderCall struct {
	Actor         string
	SystemMessage string
	Transcript    []types.Message
}

// --- 构造函数和 Builder 方法 ---

// NewScriptedResponder 创建新的 ScriptedResponder
func NewScriptedResponder() *ScriptedResponder {
	return &ScriptedResponder{
		scripts:  map[string][]*swarm.TurnResult{},
		cursor:   map[string]int{},
		fallback: "done",
	}
}

// WithReply 为演员追加一条纯文本回复
func (m *ScriptedResponder) WithReply(actor, content string) *ScriptedResponder {
	return m.WithTurn(actor, &swarm.TurnResult{
		Messages: []types.Message{types.NewActorMessage(actor, content)},
	})
}

// WithToolCall 为演员追加一条带工具调用的回复
func (m *ScriptedResponder) WithToolCall(actor, tool, args string) *ScriptedResponder {
	return m.WithTurn(actor, &swarm.TurnResult{
		Messages:  []types.Message{types.NewActorMessage(actor, "calling "+tool)},
		ToolCalls: []types.ToolCall{{ID: "call-" + tool, Name: tool, Arguments: []byte(args)}},
	})
}

// WithTurn 为演员追加一条完整脚本回合
func (m *ScriptedResponder) WithTurn(actor string, turn *swarm.TurnResult) *ScriptedResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[actor] = append(m.scripts[actor], turn)
	return m
}

// WithFallback 设置脚本耗尽后的兜底回复内容
func (m *ScriptedResponder) WithFallback(content string) *ScriptedResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = content
	return m
}

// WithError 设置返回错误
func (m *ScriptedResponder) WithError(err error) *ScriptedResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置响应延迟
func (m *ScriptedResponder) WithDelay(d time.Duration) *ScriptedResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithFailAfter 设置在第 N 次调用后失败
func (m *ScriptedResponder) WithFailAfter(n int) *ScriptedResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// --- Responder 接口实现 ---

// ProduceTurn 实现 swarm.Responder
func (m *ScriptedResponder) ProduceTurn(ctx context.Context, actor *swarm.Actor, systemMessage string, transcript []types.Message, vars swarm.ContextView) (*swarm.TurnResult, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, ResponderCall{
		Actor:         actor.Name(),
		SystemMessage: systemMessage,
		Transcript:    types.CopyMessages(transcript),
	})

	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	if m.failAfter > 0 && m.callCount > m.failAfter {
		m.mu.Unlock()
		return nil, types.NewError(types.ErrInternal, "scripted responder: fail-after threshold reached")
	}

	name := actor.Name()
	var turn *swarm.TurnResult
	if script := m.scripts[name]; m.cursor[name] < len(script) {
		turn = script[m.cursor[name]]
		m.cursor[name]++
	} else {
		turn = &swarm.TurnResult{
			Messages: []types.Message{types.NewActorMessage(name, m.fallback)},
		}
	}
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return turn, nil
}

// --- 查询方法 ---

// Calls 返回记录的调用快照
func (m *ScriptedResponder) Calls() []ResponderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ResponderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回总调用次数
func (m *ScriptedResponder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset 清空调用记录并重置脚本游标
func (m *ScriptedResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.callCount = 0
	m.cursor = map[string]int{}
}
