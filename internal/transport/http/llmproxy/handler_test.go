package llmproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/playground/internal/adapter/llm"
	"github.com/xiaot623/gogo/playground/internal/config"
	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/service"
	"github.com/xiaot623/gogo/playground/policy"
	"github.com/xiaot623/gogo/playground/tests/helpers"
)

func newTestProxy(t *testing.T) (*echo.Echo, *service.Service, *llm.MockClient) {
	cfg := &config.Config{StreamTimeout: 5 * time.Second}
	db := helpers.NewTestSQLiteStore(t)
	mock := llm.NewMockClient()
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	svc := service.New(db, mock, nil, policyEngine, cfg)
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e)
	return e, svc, mock
}

func post(e *echo.Echo, body, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, domain.EndpointChatCompletions, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("x-session-id", sessionID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatCompletionsNonStreaming(t *testing.T) {
	e, svc, mock := newTestProxy(t)
	mock.Fragments = []string{"Hello", " there"}

	rec := post(e, `{"model":"mock-gpt-4o","messages":[{"role":"user","content":"hi"}]}`, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp llm.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "Hello there" {
		t.Fatalf("unexpected choices: %+v", resp.Choices)
	}

	events, err := svc.GetEvents(context.Background(), "s1", 0, nil, 10)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != domain.EventTypeLLMCallStarted || events[1].Type != domain.EventTypeLLMCallDone {
		t.Fatalf("unexpected event types: %s, %s", events[0].Type, events[1].Type)
	}
}

func TestChatCompletionsStreaming(t *testing.T) {
	e, _, mock := newTestProxy(t)
	mock.Fragments = []string{"a", "b"}

	rec := post(e, `{"model":"mock-gpt-4o","stream":true,"messages":[{"role":"user","content":"hi"}]}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := rec.Body.String()
	if strings.Count(body, "data: ") < 3 {
		t.Fatalf("expected chunk frames, got %q", body)
	}
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Fatalf("stream not terminated: %q", body)
	}
	if len(mock.Payloads()) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(mock.Payloads()))
	}
}

func TestChatCompletionsPolicyBlocked(t *testing.T) {
	e, svc, mock := newTestProxy(t)

	rec := post(e, `{"messages":[{"role":"user","content":"hi"}]}`, "s1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp llm.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != domain.ErrorCodePolicy {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
	if len(mock.Payloads()) != 0 {
		t.Fatal("blocked payload reached upstream")
	}

	events, _ := svc.GetEvents(context.Background(), "s1", 0, nil, 10)
	if len(events) != 0 {
		t.Fatalf("expected no trace events, got %d", len(events))
	}
}

func TestChatCompletionsUpstreamError(t *testing.T) {
	e, _, mock := newTestProxy(t)
	mock.Err = &domain.APIError{StatusCode: http.StatusTooManyRequests, Message: "slow down"}

	rec := post(e, `{"model":"mock-gpt-4o","messages":[{"role":"user","content":"hi"}]}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestChatCompletionsInvalidBody(t *testing.T) {
	e, _, _ := newTestProxy(t)

	rec := post(e, `{not json`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
