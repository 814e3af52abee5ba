// =============================================================================
// 📦 测试数据工厂 - 演员与交接规则
// =============================================================================
// 提供预定义的演员注册表、工具与嵌套流程，用于集成测试
// =============================================================================
package fixtures

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/BaSui01/swarmflow/swarm"
)

// =============================================================================
// 🛠️ 工具工厂
// =============================================================================

// EchoTool 返回一个原样回显参数的工具
func EchoTool(name string) swarm.Tool {
	return swarm.Tool{
		Name:        name,
		Description: "echoes its raw arguments",
		Handler: func(_ context.Context, args json.RawMessage, _ swarm.ContextView) (any, error) {
			return string(args), nil
		},
	}
}

// LookupOrderTool 返回查询订单状态的工具，写入 order_status 上下文变量
func LookupOrderTool() swarm.Tool {
	return swarm.Tool{
		Name:        "lookup_order",
		Description: "looks up the status of an order",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"order":{"type":"string"}}}`),
		Handler: func(_ context.Context, args json.RawMessage, _ swarm.ContextView) (any, error) {
			var req struct {
				Order string `json:"order"`
			}
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, err
			}
			return swarm.ReplyWithUpdates("shipped", map[string]any{"order_status": "shipped", "order_id": req.Order}), nil
		},
	}
}

// TransferTool 返回一个携带交接提示的工具
func TransferTool(name, target string) swarm.Tool {
	return swarm.Tool{
		Name:        name,
		Description: "transfers the conversation to " + target,
		Handler: func(context.Context, json.RawMessage, swarm.ContextView) (any, error) {
			return swarm.ReplyWithTarget("transferring to "+target, swarm.ToActor(target)), nil
		},
	}
}

// =============================================================================
// 🤖 注册表工厂
// =============================================================================

// SupportRegistry 返回客服场景的三演员注册表:
// triage 按条件移交 refunds，refunds 处理后终止，writer 供嵌套流程使用。
func SupportRegistry(t *testing.T) *swarm.Registry {
	t.Helper()

	triage := swarm.NewActor("triage",
		swarm.WithSystemMessage("You route customer requests."),
		swarm.WithTools(LookupOrderTool()),
		swarm.WithHandoffs(swarm.ConditionalTransfer{
			Target:    swarm.ToActor("refunds"),
			Condition: "customer wants a refund",
		}),
		swarm.WithAfterWork(swarm.ToPolicy(swarm.PolicyTerminate)),
	)
	refunds := swarm.NewActor("refunds",
		swarm.WithSystemMessage("You process refunds."),
		swarm.WithAfterWork(swarm.ToPolicy(swarm.PolicyTerminate)),
	)
	writer := swarm.NewActor("writer",
		swarm.WithSystemMessage("You draft customer-facing text."),
	)

	reg, err := swarm.NewRegistry(triage, refunds, writer)
	if err != nil {
		t.Fatalf("build support registry: %v", err)
	}
	return reg
}

// ReviewFlow 返回单步嵌套流程，目标为 writer
func ReviewFlow() swarm.NestedFlow {
	return swarm.NestedFlow{
		Steps: []swarm.NestedStep{{
			TargetActor: "writer",
			Message:     "Draft an apology for the customer",
			TurnLimit:   1,
			Summary:     swarm.SummaryLastMsg,
		}},
	}
}

// =============================================================================
// 📄 群组定义样例
// =============================================================================

// SupportDefinitionYAML 是与 SupportRegistry 等价的 YAML 群组定义
const SupportDefinitionYAML = `
initial_actor: triage
actors:
  - name: triage
    system_message: "You route customer requests."
    tools: [lookup_order]
    after_work: terminate
    handoffs:
      - to: actor:refunds
        condition: customer wants a refund
  - name: refunds
    system_message: "You process refunds."
    after_work: terminate
  - name: writer
    system_message: "You draft customer-facing text."
`
