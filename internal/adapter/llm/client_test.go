package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

func TestClientChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != domain.EndpointChatCompletions {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected authorization: %q", got)
		}
		if got := r.Header.Get("New-Api-User"); got != "7" {
			t.Fatalf("unexpected user header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt","choices":[{"index":0,"message":{"role":"assistant","content":"hi","reasoning_content":"hmm"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "7", time.Second)
	resp, raw, err := client.ChatCompletion(context.Background(), domain.Payload{"model": "gpt"})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Model != "gpt" || len(resp.Choices) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := resp.Choices[0].Message.ReasoningText(); got != "hmm" {
		t.Fatalf("unexpected reasoning: %q", got)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 3 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body")
	}
}

func TestClientChatCompletionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", time.Second)
	_, raw, err := client.ChatCompletion(context.Background(), domain.Payload{"model": "gpt"})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "bad" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body on error")
	}
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "", "", time.Second)
	_, _, err := client.ChatCompletion(context.Background(), domain.Payload{"model": "gpt"})
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if info := domain.Describe(err); info.Code != domain.ErrorCodeNetwork {
		t.Fatalf("unexpected code: %s", info.Code)
	}
}

func TestClientChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt\",\"choices\":[{\"index\":0,\"delta\":{\"reasoning_content\":\"think\"}}]}\n\n")
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"hi\"}}],\"usage\":{\"prompt_tokens\":1,\"completion_tokens\":1,\"total_tokens\":2}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"id\":\"after-done\"}\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", time.Second)
	var chunks []StreamChunk
	usage, err := client.ChatCompletionStream(context.Background(), domain.Payload{"model": "gpt", "stream": true}, func(chunk *StreamChunk) error {
		chunks = append(chunks, *chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("ChatCompletionStream failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := chunks[0].Delta().ReasoningText(); got != "think" {
		t.Fatalf("unexpected reasoning delta: %q", got)
	}
	if got := chunks[1].Delta().Content; got != "hi" {
		t.Fatalf("unexpected content delta: %q", got)
	}
	if chunks[1].Raw == "" {
		t.Fatalf("expected raw chunk")
	}
	if usage == nil || usage.TotalTokens != 2 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}

func TestClientChatCompletionStreamCallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"b\"}}]}\n\n")
	}))
	defer server.Close()

	stop := errors.New("stop")
	calls := 0
	client := NewClient(server.URL, "", "", time.Second)
	_, err := client.ChatCompletionStream(context.Background(), domain.Payload{}, func(chunk *StreamChunk) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestClientListModelsAndGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case domain.EndpointUserModels:
			fmt.Fprint(w, `{"success":true,"message":"","data":["gpt-4o","deepseek-r1"]}`)
		case domain.EndpointUserGroups:
			fmt.Fprint(w, `{"success":true,"message":"","data":{"vip":{"desc":"VIP","ratio":0.5},"default":{"desc":"Default","ratio":1}}}`)
		default:
			fmt.Fprint(w, `{"success":false,"message":"unknown"}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", time.Second)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 || models[0] != "gpt-4o" {
		t.Fatalf("unexpected models: %v", models)
	}

	groups, err := client.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "default" || groups[1].Name != "vip" || groups[1].Ratio != 0.5 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}

func TestClientEnvelopeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"not logged in"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", time.Second)
	_, err := client.ListModels(context.Background())
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "not logged in" {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestMockClientStream(t *testing.T) {
	m := NewMockClient()
	m.Reasoning = []string{"r"}
	m.Fragments = []string{"a", "b"}

	var content, reasoning string
	_, err := m.ChatCompletionStream(context.Background(), domain.Payload{"model": "x"}, func(chunk *StreamChunk) error {
		content += chunk.Delta().Content
		reasoning += chunk.Delta().ReasoningText()
		return nil
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if content != "ab" || reasoning != "r" {
		t.Fatalf("unexpected output: %q %q", content, reasoning)
	}
	if len(m.Payloads()) != 1 {
		t.Fatalf("expected recorded payload")
	}
}

func TestMockClientDefaultReplyEchoes(t *testing.T) {
	m := NewMockClient()
	payload := domain.Payload{"messages": []interface{}{
		map[string]interface{}{"role": "user", "content": "ping"},
	}}
	resp, _, err := m.ChatCompletion(context.Background(), payload)
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	want := `<think>The user said "ping".</think>[MOCK] Received your message. This is a mock response.`
	if got := resp.Choices[0].Message.Content; got != want {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestNewLLMClientMode(t *testing.T) {
	if _, ok := NewLLMClient(ModeMock, "", "", "", time.Second).(*MockClient); !ok {
		t.Fatalf("expected mock client")
	}
	if _, ok := NewLLMClient("", "http://x", "", "", time.Second).(*Client); !ok {
		t.Fatalf("expected real client")
	}
}
