// TruthTable 与 ScriptedCompletion 的条件求值测试模拟实现。
//
// 支持固定真值表、提示词记录与错误注入场景。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/swarmflow/swarm"
	"github.com/BaSui01/swarmflow/types"
)

// --- TruthTable 结构 ---

// TruthTable 是 swarm.ConditionEvaluator 的模拟实现，
// 按条件文本查表返回真值，未注册的条件返回 false。
type TruthTable struct {
	mu sync.Mutex

	table map[string]bool
	err   error
	seen  []string
}

// NewTruthTable 创建新的 TruthTable
func NewTruthTable() *TruthTable {
	return &TruthTable{table: map[string]bool{}}
}

// WithCondition 注册一条条件真值
func (m *TruthTable) WithCondition(condition string, verdict bool) *TruthTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table[condition] = verdict
	return m
}

// WithError 设置返回错误
func (m *TruthTable) WithError(err error) *TruthTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Evaluate 实现 swarm.ConditionEvaluator
func (m *TruthTable) Evaluate(_ context.Context, condition string, _ []types.Message, _ swarm.ContextView) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, condition)
	if m.err != nil {
		return false, m.err
	}
	return m.table[condition], nil
}

// Seen 返回按求值顺序记录的条件文本
func (m *TruthTable) Seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.seen))
	copy(out, m.seen)
	return out
}

// --- ScriptedCompletion 结构 ---

// ScriptedCompletion 是 swarm.CompletionClient 的模拟实现，
// 按调用顺序依次返回脚本回复，耗尽后重复最后一条。
type ScriptedCompletion struct {
	mu sync.Mutex

	replies []string
	cursor  int
	err     error
	prompts []string
}

// NewScriptedCompletion 创建新的 ScriptedCompletion
func NewScriptedCompletion(replies ...string) *ScriptedCompletion {
	return &ScriptedCompletion{replies: replies}
}

// WithError 设置返回错误
func (m *ScriptedCompletion) WithError(err error) *ScriptedCompletion {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete 实现 swarm.CompletionClient
func (m *ScriptedCompletion) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", types.NewError(types.ErrEvaluation, "scripted completion: no replies configured")
	}
	reply := m.replies[m.cursor]
	if m.cursor < len(m.replies)-1 {
		m.cursor++
	}
	return reply, nil
}

// Prompts 返回记录的提示词快照
func (m *ScriptedCompletion) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
