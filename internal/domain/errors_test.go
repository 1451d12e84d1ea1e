package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		key  string
	}{
		{"cancelled", context.Canceled, ErrorCodeCancelled, ""},
		{"deadline", context.DeadlineExceeded, ErrorCodeNetwork, "playground.error.networkError"},
		{"network", &NetworkError{Err: errors.New("reset")}, ErrorCodeNetwork, "playground.error.networkError"},
		{"api", &APIError{StatusCode: 500, Message: "boom"}, ErrorCodeAPIRequest, "playground.error.apiRequestError"},
		{"json", &JSONParseError{Source: "customRequestBody", Err: errors.New("eof")}, ErrorCodeJSONParse, "playground.error.jsonParseError"},
		{"wrapped json", fmt.Errorf("load: %w", &JSONParseError{Source: "x"}), ErrorCodeJSONParse, "playground.error.jsonParseError"},
		{"in progress", ErrRequestInProgress, ErrorCodeRequestInProgress, ""},
		{"not found", ErrMessageNotFound, ErrorCodeNotFound, ""},
		{"no text", ErrNoTextContent, ErrorCodeNoTextContent, "playground.error.noTextContent"},
		{"duplicate", &DuplicateIDError{ID: "m1"}, ErrorCodeDuplicateID, ""},
		{"transition", &InvalidTransitionError{ID: "m1", From: MessageStatusComplete, To: MessageStatusError}, ErrorCodeInvalidTransition, ""},
		{"tab", &InvalidTabError{Tab: "x"}, ErrorCodeInvalidTab, ""},
		{"parameter", &InvalidParameterError{Name: "x"}, ErrorCodeInvalidParameter, ""},
		{"copy", &CopyFailedError{}, ErrorCodeCopyFailed, "playground.error.copyFailed"},
		{"copy https", &CopyHTTPSRequiredError{}, ErrorCodeCopyHTTPSRequired, "playground.error.copyHttpsRequired"},
		{"message type", &InvalidMessageTypeError{Type: "tool"}, ErrorCodeInvalidMessageType, "playground.error.invalidMessageType"},
		{"policy", &PolicyError{Decision: "block", Reason: "no"}, ErrorCodePolicy, ""},
		{"other", errors.New("boom"), ErrorCodeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Describe(tt.err)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.key, info.Key)
			assert.NotEmpty(t, info.Description())
		})
	}
}

func TestErrorInfoDescription(t *testing.T) {
	assert.Equal(t, "Request cancelled", ErrorInfo{Code: ErrorCodeCancelled}.Description())
	assert.Equal(t, "custom", ErrorInfo{Code: ErrorCodeNetwork, Message: "custom"}.Description())
	assert.Equal(t, "Request failed: weird", ErrorInfo{Code: "weird"}.Description())
}

func TestMessageStatus(t *testing.T) {
	assert.True(t, MessageStatusLoading.InFlight())
	assert.True(t, MessageStatusIncomplete.InFlight())
	assert.True(t, MessageStatusComplete.Terminal())
	assert.True(t, MessageStatusError.Terminal())
	assert.False(t, MessageStatusComplete.InFlight())
	assert.False(t, Role("tool").Valid())
}
