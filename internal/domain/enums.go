// Package domain defines the core domain models for the playground.
package domain

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// MessageStatus represents the lifecycle status of a message.
type MessageStatus string

const (
	MessageStatusLoading    MessageStatus = "loading"
	MessageStatusIncomplete MessageStatus = "incomplete"
	MessageStatusComplete   MessageStatus = "complete"
	MessageStatusError      MessageStatus = "error"
)

// Terminal reports whether no further transition is allowed from s.
func (s MessageStatus) Terminal() bool {
	return s == MessageStatusComplete || s == MessageStatusError
}

// InFlight reports whether a message with status s is still receiving content.
func (s MessageStatus) InFlight() bool {
	return s == MessageStatusLoading || s == MessageStatusIncomplete
}

// DebugTab names one of the inspection views of the debug panel.
type DebugTab string

const (
	DebugTabPreview  DebugTab = "preview"
	DebugTabRequest  DebugTab = "request"
	DebugTabResponse DebugTab = "response"
)

// EventType represents the type of a trace event.
type EventType string

const (
	EventTypeMessageSubmitted EventType = "message_submitted"
	EventTypeRequestRejected  EventType = "request_rejected"
	EventTypeLLMCallStarted   EventType = "llm_call_started"
	EventTypeLLMCallDone      EventType = "llm_call_done"
	EventTypeMessageCompleted EventType = "message_completed"
	EventTypeMessageFailed    EventType = "message_failed"
	EventTypeConfigRestored   EventType = "config_restored"
)

// Storage slot names owned by the persistence collaborator.
const (
	StorageKeyConfig   = "playground_config"
	StorageKeyMessages = "playground_messages"
)

// Upstream endpoints consumed by the playground.
const (
	EndpointChatCompletions = "/pg/chat/completions"
	EndpointUserModels      = "/api/user/models"
	EndpointUserGroups      = "/api/user/self/groups"
)

// Reasoning delimiters. Matching is case-sensitive.
const (
	ThinkOpenTag  = "<think>"
	ThinkCloseTag = "</think>"
)
