package domain

import "time"

// Message is one entry of a playground conversation.
type Message struct {
	ID                  string        `json:"id"`
	Role                Role          `json:"role"`
	CreatedAt           time.Time     `json:"createAt"`
	Content             string        `json:"content"`
	ReasoningContent    string        `json:"reasoningContent,omitempty"`
	IsReasoningExpanded bool          `json:"isReasoningExpanded"`
	Status              MessageStatus `json:"status"`
	Error               *ErrorInfo    `json:"error,omitempty"`
}

// MessageUpdate is pushed to live subscribers whenever a message changes.
type MessageUpdate struct {
	Type      string  `json:"type"`
	SessionID string  `json:"session_id"`
	Ts        int64   `json:"ts"`
	Message   Message `json:"message"`
}

// MessageUpdateType is the Type of every MessageUpdate.
const MessageUpdateType = "message_update"
