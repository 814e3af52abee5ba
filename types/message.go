package types

import (
	"encoding/json"
	"time"
)

// Role represents the role of a message participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a tool invocation request produced by an actor turn.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message represents a single transcript entry. Name carries the speaker
// (actor name, or the configured user actor for seed messages).
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Metadata   any        `json:"metadata,omitempty"`
	Timestamp  time.Time  `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a new user message attributed to the given speaker.
func NewUserMessage(speaker, content string) Message {
	m := NewMessage(RoleUser, content)
	m.Name = speaker
	return m
}

// NewActorMessage creates a new assistant message attributed to an actor.
func NewActorMessage(actor, content string) Message {
	m := NewMessage(RoleAssistant, content)
	m.Name = actor
	return m
}

// NewToolMessage creates a new tool result message.
func NewToolMessage(toolCallID, name, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: toolCallID,
		Timestamp:  time.Now(),
	}
}

// WithToolCalls adds tool calls to the message.
func (m Message) WithToolCalls(calls []ToolCall) Message {
	m.ToolCalls = calls
	return m
}

// WithMetadata adds metadata to the message.
func (m Message) WithMetadata(metadata any) Message {
	m.Metadata = metadata
	return m
}

// CopyMessages returns a shallow copy of a message slice. The engine hands
// copies to external collaborators so the transcript stays append-only.
func CopyMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
