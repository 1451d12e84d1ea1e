// Package llm provides an abstraction for the upstream chat gateway.
package llm

import (
	"context"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// LLMClient defines the upstream operations the playground consumes.
type LLMClient interface {
	// ChatCompletion sends a non-streaming chat completion request.
	ChatCompletion(ctx context.Context, payload domain.Payload) (*ChatCompletionResponse, []byte, error)

	// ChatCompletionStream sends a streaming chat completion request.
	// The callback is called for each chunk received.
	ChatCompletionStream(ctx context.Context, payload domain.Payload, callback StreamCallback) (*Usage, error)

	// ListModels retrieves the models available to the user.
	ListModels(ctx context.Context) ([]string, error)

	// ListGroups retrieves the groups available to the user.
	ListGroups(ctx context.Context) ([]Group, error)
}

// Ensure Client implements LLMClient interface.
var _ LLMClient = (*Client)(nil)
