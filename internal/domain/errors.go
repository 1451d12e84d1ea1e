package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error codes surfaced to the user.
const (
	ErrorCodeNetwork            = "network"
	ErrorCodeCancelled          = "cancelled"
	ErrorCodeInterrupted        = "interrupted"
	ErrorCodeAPIRequest         = "api_request"
	ErrorCodeJSONParse          = "json_parse"
	ErrorCodeInvalidMessageType = "invalid_message_type"
	ErrorCodeNoTextContent      = "no_text_content"
	ErrorCodeCopyFailed         = "copy_failed"
	ErrorCodeCopyHTTPSRequired  = "copy_https_required"
	ErrorCodeDuplicateID        = "duplicate_id"
	ErrorCodeInvalidTransition  = "invalid_transition"
	ErrorCodeInvalidTab         = "invalid_tab"
	ErrorCodeInvalidParameter   = "invalid_parameter"
	ErrorCodeRequestInProgress  = "request_in_progress"
	ErrorCodeNotFound           = "not_found"
	ErrorCodePolicy             = "policy_blocked"
	ErrorCodeInternal           = "internal"
)

// errorKeys maps codes to the translation keys used by the web client.
var errorKeys = map[string]string{
	ErrorCodeNetwork:            "playground.error.networkError",
	ErrorCodeAPIRequest:         "playground.error.apiRequestError",
	ErrorCodeJSONParse:          "playground.error.jsonParseError",
	ErrorCodeInvalidMessageType: "playground.error.invalidMessageType",
	ErrorCodeNoTextContent:      "playground.error.noTextContent",
	ErrorCodeCopyFailed:         "playground.error.copyFailed",
	ErrorCodeCopyHTTPSRequired:  "playground.error.copyHttpsRequired",
}

// ErrorInfo is the user-visible description of a failure.
type ErrorInfo struct {
	Code    string `json:"code"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// Description returns the text shown in place of a failed message's content.
func (e ErrorInfo) Description() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Code {
	case ErrorCodeNetwork:
		return "Network error, please check your connection and retry"
	case ErrorCodeCancelled:
		return "Request cancelled"
	case ErrorCodeInterrupted:
		return "Response interrupted before it completed"
	case ErrorCodeAPIRequest:
		return "API request failed"
	}
	return "Request failed: " + e.Code
}

// ErrRequestInProgress is returned when a message is submitted while another
// exchange of the same session is still streaming.
var ErrRequestInProgress = errors.New("request in progress")

// ErrMessageNotFound is returned when no message has the given id.
var ErrMessageNotFound = errors.New("message not found")

// ErrNoTextContent is returned when a submitted message has no text.
var ErrNoTextContent = errors.New("message has no text content")

// ErrNoRequestInProgress is returned when aborting while nothing is streaming.
var ErrNoRequestInProgress = errors.New("no request in progress")

// DuplicateIDError is returned when appending a message whose id is already in the log.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate message id %q", e.ID)
}

// InvalidTransitionError is returned for a status change the lifecycle does not allow.
type InvalidTransitionError struct {
	ID   string
	From MessageStatus
	To   MessageStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("message %s: invalid transition %s -> %s", e.ID, e.From, e.To)
}

// JSONParseError is returned for a malformed custom request body or stored config.
type JSONParseError struct {
	Source string
	Err    error
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Source, e.Err)
}

func (e *JSONParseError) Unwrap() error { return e.Err }

// InvalidTabError is returned when selecting an unknown debug view.
type InvalidTabError struct {
	Tab string
}

func (e *InvalidTabError) Error() string {
	return fmt.Sprintf("invalid debug tab %q", e.Tab)
}

// InvalidParameterError is returned for a parameterEnabled key outside the tunable set.
type InvalidParameterError struct {
	Name string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}

// NetworkError wraps a transport failure reported by the upstream client.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-success response returned by the upstream.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%d]: %s", e.StatusCode, e.Message)
}

// CopyFailedError is reported by the clipboard collaborator.
type CopyFailedError struct {
	Err error
}

func (e *CopyFailedError) Error() string {
	if e.Err == nil {
		return "copy failed"
	}
	return fmt.Sprintf("copy failed: %v", e.Err)
}

func (e *CopyFailedError) Unwrap() error { return e.Err }

// CopyHTTPSRequiredError is reported when the clipboard is unavailable on insecure origins.
type CopyHTTPSRequiredError struct{}

func (e *CopyHTTPSRequiredError) Error() string {
	return "copy requires a secure (https) context"
}

// InvalidMessageTypeError is returned for a message with an unsupported shape.
type InvalidMessageTypeError struct {
	Type string
}

func (e *InvalidMessageTypeError) Error() string {
	return fmt.Sprintf("invalid message type %q", e.Type)
}

// PolicyError is returned when the request policy blocks an outbound payload.
type PolicyError struct {
	Decision string
	Reason   string
}

func (e *PolicyError) Error() string {
	if e.Reason == "" {
		return "request blocked by policy"
	}
	return "request blocked by policy: " + e.Reason
}

// Describe maps err to the information shown to the user.
func Describe(err error) ErrorInfo {
	info := ErrorInfo{Code: ErrorCodeInternal}
	if err == nil {
		return info
	}
	info.Message = err.Error()

	var (
		dupErr        *DuplicateIDError
		transitionErr *InvalidTransitionError
		jsonErr       *JSONParseError
		tabErr        *InvalidTabError
		paramErr      *InvalidParameterError
		netErr        *NetworkError
		apiErr        *APIError
		copyErr       *CopyFailedError
		httpsErr      *CopyHTTPSRequiredError
		typeErr       *InvalidMessageTypeError
		policyErr     *PolicyError
	)
	switch {
	case errors.Is(err, context.Canceled):
		info.Code = ErrorCodeCancelled
		info.Message = ""
	case errors.Is(err, ErrRequestInProgress):
		info.Code = ErrorCodeRequestInProgress
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrNoRequestInProgress):
		info.Code = ErrorCodeNotFound
	case errors.Is(err, ErrNoTextContent):
		info.Code = ErrorCodeNoTextContent
	case errors.As(err, &dupErr):
		info.Code = ErrorCodeDuplicateID
	case errors.As(err, &transitionErr):
		info.Code = ErrorCodeInvalidTransition
	case errors.As(err, &jsonErr):
		info.Code = ErrorCodeJSONParse
	case errors.As(err, &tabErr):
		info.Code = ErrorCodeInvalidTab
	case errors.As(err, &paramErr):
		info.Code = ErrorCodeInvalidParameter
	case errors.As(err, &apiErr):
		info.Code = ErrorCodeAPIRequest
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		info.Code = ErrorCodeNetwork
	case errors.As(err, &httpsErr):
		info.Code = ErrorCodeCopyHTTPSRequired
	case errors.As(err, &copyErr):
		info.Code = ErrorCodeCopyFailed
	case errors.As(err, &typeErr):
		info.Code = ErrorCodeInvalidMessageType
	case errors.As(err, &policyErr):
		info.Code = ErrorCodePolicy
	}
	info.Key = errorKeys[info.Code]
	return info
}
