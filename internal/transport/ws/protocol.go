package ws

import "github.com/xiaot623/gogo/playground/internal/domain"

// Message types from client to server
const (
	TypeSendMessage = "send_message"
	TypeAbort       = "abort"
)

// Message types from server to client. Message updates use
// domain.MessageUpdateType.
const (
	TypeSubmitted = "submitted"
	TypeError     = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// SendMessage asks the server to submit a user message.
type SendMessage struct {
	BaseMessage
	Content string `json:"content"`
}

// SubmittedMessage acknowledges a SendMessage.
type SubmittedMessage struct {
	BaseMessage
	UserMessageID      string `json:"user_message_id"`
	AssistantMessageID string `json:"assistant_message_id"`
}

// ErrorMessage reports a rejected command.
type ErrorMessage struct {
	BaseMessage
	Error domain.ErrorInfo `json:"error"`
}
