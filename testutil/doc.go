/*
Package testutil 提供 SwarmFlow 测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试提供统一的辅助能力，
避免各包重复实现相似的测试基础设施。包外测试（集成测试、
示例测试）应优先使用此包中的工具函数和 Mock 实现。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 数据工具: MustJSON / MustParseJSON / Call，简化测试数据构造

# 子包

  - testutil/mocks: Mock 实现，包括 ScriptedResponder（回合生成器）、
    ScriptedCompletion（补全客户端）、TruthTable（条件求值器），
    均支持 Builder 模式与错误注入
  - testutil/fixtures: 测试数据工厂，提供预置的演员注册表、
    交接规则、嵌套流程与 YAML 群组定义样例

# 使用示例

	ctx := testutil.TestContext(t)
	responder := mocks.NewScriptedResponder().
	    WithReply("triage", "routing you now").
	    WithToolCall("refunds", "issue_refund", `{"order":"A-1"}`)
	sess, err := swarmflow.NewSession(swarmflow.Options{
	    Registry:  fixtures.SupportRegistry(t),
	    Responder: responder,
	})
*/
package testutil
