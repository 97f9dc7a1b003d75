package models

import "time"

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry in the locally persisted chat history. The
// history is append-only; entries are deleted only in bulk.
type ChatMessage struct {
	// ID is the UUID primary key, generated on append.
	ID string `json:"id"`

	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// ToolCall is an optional structured record of a tool invocation the
	// assistant made while producing this message. Stored as JSON.
	ToolCall map[string]any `json:"tool_call,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the ChatMessage model.
func (m ChatMessage) TableName() string {
	return "chat_history"
}

// ChatSendRequest is the body of the remote-dependent chat send call.
type ChatSendRequest struct {
	// Message is the user's prompt text.
	Message string `json:"message"`

	// History optionally carries prior turns the remote model should see.
	History []ChatMessage `json:"history,omitempty"`
}

// ChatSendResponse is what the agent returns for a chat send call, both for
// forwarded remote replies and for the synthetic offline reply.
type ChatSendResponse struct {
	// Reply is the assistant's answer text.
	Reply string `json:"reply"`

	// CreditsUsed is the number of credits the call consumed. Always zero
	// for the offline reply.
	CreditsUsed float64 `json:"creditsUsed"`

	// CreditsRemaining mirrors the balance reported by the remote service
	// after the call, when available.
	CreditsRemaining *float64 `json:"creditsRemaining,omitempty"`

	// Offline marks the synthetic reply produced without a network call.
	Offline bool `json:"offline,omitempty"`
}
