package types

import (
	"encoding/json"
	"time"
)

// ToolSchema declares a tool's callable interface: name plus a JSON Schema
// describing its typed parameters.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolResult represents the outcome of one tool execution.
type ToolResult struct {
	ToolCallID string          `json:"tool_call_id"`
	Name       string          `json:"name"`
	Result     json.RawMessage `json:"result"`
	Error      string          `json:"error,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// ToMessage converts ToolResult to a transcript message. Failed executions
// become an "Error: ..." entry so the run can continue past them.
func (tr ToolResult) ToMessage() Message {
	content := string(tr.Result)
	if tr.Error != "" {
		content = "Error: " + tr.Error
	}
	return Message{
		Role:       RoleTool,
		Content:    content,
		Name:       tr.Name,
		ToolCallID: tr.ToolCallID,
		Timestamp:  time.Now(),
	}
}

// IsError returns true if the tool execution failed.
func (tr ToolResult) IsError() bool {
	return tr.Error != ""
}
