package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewActorMessage(t *testing.T) {
	t.Parallel()
	m := NewActorMessage("triage", "routing to billing")
	assert.Equal(t, RoleAssistant, m.Role)
	assert.Equal(t, "triage", m.Name)
	assert.Equal(t, "routing to billing", m.Content)
	assert.False(t, m.Timestamp.IsZero())
}

func TestToolResult_ToMessage(t *testing.T) {
	t.Parallel()
	ok := ToolResult{ToolCallID: "c1", Name: "lookup", Result: []byte(`{"plan":"pro"}`)}
	msg := ok.ToMessage()
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, `{"plan":"pro"}`, msg.Content)
	assert.False(t, ok.IsError())

	failed := ToolResult{ToolCallID: "c2", Name: "lookup", Error: "upstream timeout"}
	assert.True(t, failed.IsError())
	assert.Equal(t, "Error: upstream timeout", failed.ToMessage().Content)
}

func TestCopyMessages_Independent(t *testing.T) {
	t.Parallel()
	orig := []Message{NewUserMessage("user", "hi")}
	cp := CopyMessages(orig)
	cp[0].Content = "changed"
	assert.Equal(t, "hi", orig[0].Content)
	assert.Nil(t, CopyMessages(nil))
}
