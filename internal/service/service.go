// Package service implements the playground operations on top of the
// per-session state, persistence, request policy and the upstream client.
package service

import (
	"context"
	"sync"

	"github.com/xiaot623/gogo/playground/internal/adapter/llm"
	"github.com/xiaot623/gogo/playground/internal/config"
	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/playground"
	"github.com/xiaot623/gogo/playground/internal/repository"
)

// Publisher pushes live updates to the watchers of a session.
type Publisher interface {
	Publish(sessionID string, v interface{}) error
}

// PayloadChecker vets a payload before it is sent upstream.
type PayloadChecker interface {
	Check(ctx context.Context, payload domain.Payload) error
}

type Service struct {
	store     repository.Store
	llmClient llm.LLMClient
	publisher Publisher
	policy    PayloadChecker
	config    *config.Config

	mu       sync.Mutex
	sessions map[string]*playground.Session
}

// New creates the service. publisher and policy may be nil.
func New(store repository.Store, llmClient llm.LLMClient, publisher Publisher, policy PayloadChecker, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		llmClient: llmClient,
		publisher: publisher,
		policy:    policy,
		config:    cfg,
		sessions:  make(map[string]*playground.Session),
	}
}
