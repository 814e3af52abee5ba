// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供通用的测试上下文与数据构造辅助
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	call := testutil.Call("c1", "lookup_order", `{"order":"A-1"}`)
// =============================================================================
package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BaSui01/swarmflow/types"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 🔧 测试数据辅助
// =============================================================================

// Call 构造一次工具调用请求
func Call(id, name, args string) types.ToolCall {
	return types.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(args)}
}

// MustJSON 将值转换为 JSON 字符串，失败时 panic
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// MustParseJSON 解析 JSON 字符串，失败时 panic
func MustParseJSON[T any](s string) T {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		panic(err)
	}
	return v
}
