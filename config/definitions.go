// 声明式 swarm 定义：用 YAML 描述 actor、handoff 规则与嵌套流程，
// 再结合代码注册的工具编译成可运行的 Registry。
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/swarmflow/swarm"
)

// SwarmDefinition 是一份完整的声明式 swarm 描述
type SwarmDefinition struct {
	// InitialActor 是会话的起始发言者
	InitialActor string `yaml:"initial_actor"`
	// Actors 按注册顺序列出全部 actor
	Actors []ActorDefinition `yaml:"actors"`
}

// ActorDefinition 描述一个 actor
type ActorDefinition struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	SystemMessage string `yaml:"system_message"`
	// Tools 引用编译时传入的具名工具
	Tools []string `yaml:"tools"`
	// AfterWork: terminate, stay, revert_to_initiator, delegate_to_selector
	// 或 "actor:NAME"
	AfterWork string `yaml:"after_work"`
	// Handoffs 按声明顺序注册
	Handoffs []HandoffDefinition `yaml:"handoffs"`
}

// HandoffDefinition 是一条 handoff 规则：To 与 Nested 二选一
type HandoffDefinition struct {
	// To 指向条件转移的目标，格式同 AfterWork
	To        string `yaml:"to"`
	Condition string `yaml:"condition"`
	// Nested 描述嵌套流程
	Nested *NestedDefinition `yaml:"nested"`
}

// NestedDefinition 描述一个嵌套流程
type NestedDefinition struct {
	ShareContext bool             `yaml:"share_context"`
	Steps        []StepDefinition `yaml:"steps"`
}

// StepDefinition 描述嵌套流程中的一步
type StepDefinition struct {
	Actor         string               `yaml:"actor"`
	Message       string               `yaml:"message"`
	TurnLimit     int                  `yaml:"turn_limit"`
	Summary       string               `yaml:"summary"`
	SummaryPrompt string               `yaml:"summary_prompt"`
	Carryover     *CarryoverDefinition `yaml:"carryover"`
}

// CarryoverDefinition 描述第一步的 carryover 配置
type CarryoverDefinition struct {
	Mode           string `yaml:"mode"`
	PromptTemplate string `yaml:"prompt_template"`
	MaxTokens      int    `yaml:"max_tokens"`
}

// LoadSwarmDefinition 从 YAML 文件加载声明式定义
func LoadSwarmDefinition(path string) (*SwarmDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read swarm definition: %w", err)
	}
	return ParseSwarmDefinition(data)
}

// ParseSwarmDefinition 解析 YAML 字节为声明式定义
func ParseSwarmDefinition(data []byte) (*SwarmDefinition, error) {
	var def SwarmDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse swarm definition: %w", err)
	}
	if len(def.Actors) == 0 {
		return nil, fmt.Errorf("swarm definition has no actors")
	}
	if def.InitialActor == "" {
		def.InitialActor = def.Actors[0].Name
	}
	return &def, nil
}

// BuildRegistry 将声明式定义与具名工具编译成 Registry。
// 定义中引用的工具必须全部存在于 tools。
func (d *SwarmDefinition) BuildRegistry(tools map[string]swarm.Tool) (*swarm.Registry, error) {
	actors := make([]*swarm.Actor, 0, len(d.Actors))
	for _, ad := range d.Actors {
		actor, err := ad.build(tools)
		if err != nil {
			return nil, err
		}
		actors = append(actors, actor)
	}
	reg, err := swarm.NewRegistry(actors...)
	if err != nil {
		return nil, err
	}
	if !reg.Has(d.InitialActor) {
		return nil, fmt.Errorf("initial_actor %q is not defined", d.InitialActor)
	}
	return reg, nil
}

func (ad ActorDefinition) build(tools map[string]swarm.Tool) (*swarm.Actor, error) {
	opts := []swarm.ActorOption{
		swarm.WithDescription(ad.Description),
		swarm.WithSystemMessage(ad.SystemMessage),
	}

	actor := swarm.NewActor(ad.Name, opts...)
	for _, name := range ad.Tools {
		tool, ok := tools[name]
		if !ok {
			return nil, fmt.Errorf("actor %q references unknown tool %q", ad.Name, name)
		}
		if err := actor.AddTool(tool); err != nil {
			return nil, err
		}
	}

	for i, hd := range ad.Handoffs {
		rule, err := hd.build(ad.Name, i)
		if err != nil {
			return nil, err
		}
		actor.RegisterHandoffs(rule)
	}

	if ad.AfterWork != "" {
		target, err := ParseTarget(ad.AfterWork)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", ad.Name, err)
		}
		actor.SetAfterWork(target)
	}
	return actor, nil
}

func (hd HandoffDefinition) build(actorName string, index int) (swarm.HandoffRule, error) {
	if hd.To != "" && hd.Nested != nil {
		return nil, fmt.Errorf("actor %q handoff %d sets both to and nested", actorName, index)
	}

	if hd.Nested != nil {
		flow := swarm.NestedFlow{ShareContext: hd.Nested.ShareContext}
		for _, sd := range hd.Nested.Steps {
			step := swarm.NestedStep{
				TargetActor:   sd.Actor,
				Message:       sd.Message,
				TurnLimit:     sd.TurnLimit,
				Summary:       swarm.SummaryMethod(sd.Summary),
				SummaryPrompt: sd.SummaryPrompt,
			}
			if sd.Carryover != nil {
				step.Carryover = &swarm.CarryoverConfig{
					Mode:           swarm.CarryoverMode(sd.Carryover.Mode),
					PromptTemplate: sd.Carryover.PromptTemplate,
					MaxTokens:      sd.Carryover.MaxTokens,
				}
			}
			flow.Steps = append(flow.Steps, step)
		}
		return swarm.NestedChatTransfer{Flow: flow, Condition: hd.Condition}, nil
	}

	if hd.To == "" {
		return nil, fmt.Errorf("actor %q handoff %d sets neither to nor nested", actorName, index)
	}
	target, err := ParseTarget(hd.To)
	if err != nil {
		return nil, fmt.Errorf("actor %q handoff %d: %w", actorName, index, err)
	}
	return swarm.ConditionalTransfer{Target: target, Condition: hd.Condition}, nil
}

// ParseTarget 解析目标字符串：策略名或 "actor:NAME"
func ParseTarget(s string) (swarm.Target, error) {
	if name, ok := strings.CutPrefix(s, "actor:"); ok {
		if name == "" {
			return swarm.Target{}, fmt.Errorf("empty actor target")
		}
		return swarm.ToActor(name), nil
	}
	switch swarm.AfterWorkPolicy(s) {
	case swarm.PolicyTerminate, swarm.PolicyStay, swarm.PolicyRevertToInitiator,
		swarm.PolicyDelegateToSelector, swarm.PolicyRevertToPrevious:
		return swarm.ToPolicy(swarm.AfterWorkPolicy(s)), nil
	}
	return swarm.Target{}, fmt.Errorf("unknown target %q", s)
}
