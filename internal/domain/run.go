package domain

import "encoding/json"

// Event represents a trace event recorded for a session.
type Event struct {
	EventID   string          `json:"event_id"`
	SessionID string          `json:"session_id"`
	Ts        int64           `json:"ts"` // Unix milliseconds
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// MessageSubmittedPayload is the payload for message_submitted events.
type MessageSubmittedPayload struct {
	UserMessageID      string `json:"user_message_id"`
	AssistantMessageID string `json:"assistant_message_id"`
	CustomRequest      bool   `json:"custom_request"`
}

// RequestRejectedPayload is the payload for request_rejected events.
type RequestRejectedPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LLMCallStartedPayload is the payload for llm_call_started events.
type LLMCallStartedPayload struct {
	RequestID string `json:"request_id"`
	MessageID string `json:"message_id,omitempty"`
	Model     string `json:"model,omitempty"`
	Stream    bool   `json:"stream"`
}

// LLMCallDonePayload is the payload for llm_call_done events.
type LLMCallDonePayload struct {
	RequestID        string `json:"request_id"`
	MessageID        string `json:"message_id,omitempty"`
	Model            string `json:"model,omitempty"`
	LatencyMs        int64  `json:"latency_ms"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	TotalTokens      int    `json:"total_tokens,omitempty"`
	Error            string `json:"error,omitempty"`
}

// MessageFinishedPayload is the payload for message_completed and message_failed events.
type MessageFinishedPayload struct {
	MessageID string     `json:"message_id"`
	Error     *ErrorInfo `json:"error,omitempty"`
}
