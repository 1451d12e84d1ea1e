package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// MockClient is a scripted implementation of LLMClient for tests and MOCK mode.
type MockClient struct {
	// Fragments, when set, are streamed verbatim as content deltas.
	Fragments []string
	// Reasoning is streamed through the reasoning_content field before Fragments.
	Reasoning []string
	// Err is returned after all scripted chunks were delivered.
	Err error
	// Delay is waited before each chunk.
	Delay time.Duration
	// Gate, when set, must yield a value before each chunk is sent.
	Gate chan struct{}

	Models []string
	Groups []Group

	mu       sync.Mutex
	payloads []domain.Payload
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{
		Models: []string{"mock-gpt-4o", "mock-deepseek-r1"},
		Groups: []Group{{Name: "default", Desc: "default group", Ratio: 1}},
	}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// ChatCompletion returns the scripted reply as a single message.
func (m *MockClient) ChatCompletion(ctx context.Context, payload domain.Payload) (*ChatCompletionResponse, []byte, error) {
	m.record(payload)
	if m.Err != nil {
		return nil, nil, m.Err
	}

	resp := &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   modelOf(payload),
		Choices: []Choice{
			{
				Index: 0,
				Message: &ChatMessage{
					Role:             "assistant",
					Content:          strings.Join(m.fragments(payload), ""),
					ReasoningContent: strings.Join(m.Reasoning, ""),
				},
				FinishReason: "stop",
			},
		},
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, err
	}
	return resp, raw, nil
}

// ChatCompletionStream streams the scripted reply chunk by chunk.
func (m *MockClient) ChatCompletionStream(ctx context.Context, payload domain.Payload, callback StreamCallback) (*Usage, error) {
	m.record(payload)
	id := fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano())
	created := time.Now().Unix()

	var deltas []ChatMessage
	for _, r := range m.Reasoning {
		deltas = append(deltas, ChatMessage{Role: "assistant", ReasoningContent: r})
	}
	for _, f := range m.fragments(payload) {
		deltas = append(deltas, ChatMessage{Role: "assistant", Content: f})
	}

	for i := range deltas {
		if err := m.wait(ctx); err != nil {
			return nil, err
		}

		finishReason := ""
		if i == len(deltas)-1 {
			finishReason = "stop"
		}
		chunk := &StreamChunk{
			ID:      id,
			Object:  "chat.completion.chunk",
			Created: created,
			Model:   modelOf(payload),
			Choices: []Choice{
				{Index: 0, Delta: &deltas[i], FinishReason: finishReason},
			},
		}
		raw, _ := json.Marshal(chunk)
		chunk.Raw = string(raw)

		if err := callback(chunk); err != nil {
			return nil, err
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return &Usage{CompletionTokens: len(deltas), TotalTokens: len(deltas)}, nil
}

// ListModels returns the scripted models.
func (m *MockClient) ListModels(ctx context.Context) ([]string, error) {
	return m.Models, nil
}

// ListGroups returns the scripted groups.
func (m *MockClient) ListGroups(ctx context.Context) ([]Group, error) {
	return m.Groups, nil
}

// Payloads returns every payload received so far.
func (m *MockClient) Payloads() []domain.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Payload(nil), m.payloads...)
}

func (m *MockClient) record(payload domain.Payload) {
	m.mu.Lock()
	m.payloads = append(m.payloads, payload)
	m.mu.Unlock()
}

func (m *MockClient) wait(ctx context.Context) error {
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

// fragments returns the scripted fragments, or an echo of the last user
// message wrapped in a short reasoning span.
func (m *MockClient) fragments(payload domain.Payload) []string {
	if m.Fragments != nil {
		return m.Fragments
	}
	reply := fmt.Sprintf("<think>The user said %q.</think>[MOCK] Received your message. This is a mock response.", truncate(lastUserText(payload), 100))
	return splitIntoChunks(reply, 10)
}

func modelOf(payload domain.Payload) string {
	if s, ok := payload["model"].(string); ok {
		return s
	}
	return "mock"
}

func lastUserText(payload domain.Payload) string {
	msgs, _ := payload["messages"].([]interface{})
	for i := len(msgs) - 1; i >= 0; i-- {
		msg, ok := msgs[i].(map[string]interface{})
		if !ok || msg["role"] != "user" {
			continue
		}
		if s, ok := msg["content"].(string); ok {
			return s
		}
		if parts, ok := msg["content"].([]interface{}); ok {
			for _, p := range parts {
				if part, ok := p.(map[string]interface{}); ok && part["type"] == "text" {
					s, _ := part["text"].(string)
					return s
				}
			}
		}
	}
	return ""
}

// splitIntoChunks splits a string into chunks of approximately the given size.
func splitIntoChunks(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}

	var chunks []string
	for i := 0; i < len(s); i += chunkSize {
		end := i + chunkSize
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
