package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// Client talks to the upstream gateway that serves the playground endpoints.
type Client struct {
	baseURL      string
	apiKey       string
	userID       string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a new upstream client. timeout bounds non-streaming
// calls; streams are bounded by their context only.
func NewClient(baseURL, apiKey, userID string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		streamClient: &http.Client{},
	}
}

// ChatMessage is a message as returned by the upstream.
type ChatMessage struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
	Reasoning        string `json:"reasoning,omitempty"`
}

// ReasoningText returns whichever reasoning field the upstream filled.
func (m *ChatMessage) ReasoningText() string {
	if m.ReasoningContent != "" {
		return m.ReasoningContent
	}
	return m.Reasoning
}

// ChatCompletionResponse represents a non-streaming chat completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice represents a completion choice.
type Choice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	Delta        *ChatMessage `json:"delta,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk represents a single SSE chunk from the stream.
type StreamChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`

	// Raw is the data line the chunk was decoded from.
	Raw string `json:"-"`
}

// Delta returns the first choice's delta, or nil.
func (c *StreamChunk) Delta() *ChatMessage {
	if len(c.Choices) == 0 {
		return nil
	}
	return c.Choices[0].Delta
}

// ErrorResponse represents an OpenAI-style error body.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents the error details.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Group is a billing group the user may send requests under.
type Group struct {
	Name  string  `json:"name"`
	Desc  string  `json:"desc"`
	Ratio float64 `json:"ratio"`
}

// apiEnvelope is the {success, message, data} wrapper of the user endpoints.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// StreamCallback is called for each chunk in a streaming response.
type StreamCallback func(chunk *StreamChunk) error

// ChatCompletion sends a non-streaming chat completion request. The raw
// response body is returned alongside the decoded one.
func (c *Client) ChatCompletion(ctx context.Context, payload domain.Payload) (*ChatCompletionResponse, []byte, error) {
	resp, err := c.post(ctx, c.httpClient, payload)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &domain.NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, respBody, apiError(resp.StatusCode, respBody)
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, respBody, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, respBody, nil
}

// ChatCompletionStream sends a streaming chat completion request and calls
// callback for every chunk until the upstream sends [DONE].
func (c *Client) ChatCompletionStream(ctx context.Context, payload domain.Payload, callback StreamCallback) (*Usage, error) {
	resp, err := c.post(ctx, c.streamClient, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apiError(resp.StatusCode, respBody)
	}

	reader := bufio.NewReader(resp.Body)
	var usage *Usage

	for {
		select {
		case <-ctx.Done():
			return usage, ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			if err == io.EOF {
				return usage, nil
			}
			if ctx.Err() != nil {
				return usage, ctx.Err()
			}
			return usage, &domain.NetworkError{Err: fmt.Errorf("failed to read stream: %w", err)}
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return usage, nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks
			continue
		}
		chunk.Raw = data
		if chunk.Usage != nil {
			usage = chunk.Usage
		}

		if err := callback(&chunk); err != nil {
			return usage, err
		}
	}
}

// ListModels retrieves the model names available to the user.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var models []string
	if err := c.getEnvelope(ctx, domain.EndpointUserModels, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// ListGroups retrieves the user's groups sorted by name.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var raw map[string]Group
	if err := c.getEnvelope(ctx, domain.EndpointUserGroups, &raw); err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(raw))
	for name, g := range raw {
		g.Name = name
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (c *Client) post(ctx context.Context, hc *http.Client, payload domain.Payload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+domain.EndpointChatCompletions, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := hc.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &domain.NetworkError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	return resp, nil
}

func (c *Client) getEnvelope(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, respBody)
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !env.Success {
		return &domain.APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.userID != "" {
		req.Header.Set("New-Api-User", c.userID)
	}
}

func apiError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return &domain.APIError{StatusCode: status, Message: errResp.Error.Message}
	}
	return &domain.APIError{StatusCode: status, Message: string(body)}
}
