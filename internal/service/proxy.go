package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/playground/internal/adapter/llm"
	"github.com/xiaot623/gogo/playground/internal/domain"
)

// ProxyChatCompletion forwards a raw payload upstream after the request
// policy has accepted it. When sessionID is set the call is traced under
// that session.
func (s *Service) ProxyChatCompletion(ctx context.Context, sessionID string, payload domain.Payload) (*llm.ChatCompletionResponse, []byte, error) {
	if err := s.checkPayload(ctx, payload); err != nil {
		return nil, nil, err
	}

	done := s.traceProxyCall(ctx, sessionID, payload, false)
	resp, raw, err := s.llmClient.ChatCompletion(ctx, payload)
	var usage *llm.Usage
	if resp != nil {
		usage = resp.Usage
	}
	done(usage, err)
	return resp, raw, err
}

// ProxyChatCompletionStream is the streaming form of ProxyChatCompletion.
func (s *Service) ProxyChatCompletionStream(ctx context.Context, sessionID string, payload domain.Payload, callback llm.StreamCallback) error {
	if err := s.checkPayload(ctx, payload); err != nil {
		return err
	}

	done := s.traceProxyCall(ctx, sessionID, payload, true)
	usage, err := s.llmClient.ChatCompletionStream(ctx, payload, callback)
	done(usage, err)
	return err
}

func (s *Service) traceProxyCall(ctx context.Context, sessionID string, payload domain.Payload, stream bool) func(*llm.Usage, error) {
	if sessionID == "" {
		return func(*llm.Usage, error) {}
	}

	requestID := "llm_" + uuid.New().String()[:8]
	model, _ := payload["model"].(string)
	startTime := time.Now()
	if err := s.recordEvent(ctx, sessionID, domain.EventTypeLLMCallStarted, domain.LLMCallStartedPayload{
		RequestID: requestID,
		Model:     model,
		Stream:    stream,
	}); err != nil {
		log.Printf("WARN: failed to record llm_call_started event: %v", err)
	}

	return func(usage *llm.Usage, err error) {
		done := domain.LLMCallDonePayload{
			RequestID: requestID,
			Model:     model,
			LatencyMs: time.Since(startTime).Milliseconds(),
		}
		if usage != nil {
			done.PromptTokens = usage.PromptTokens
			done.CompletionTokens = usage.CompletionTokens
			done.TotalTokens = usage.TotalTokens
		}
		if err != nil {
			done.Error = err.Error()
		}
		if recErr := s.recordEvent(context.WithoutCancel(ctx), sessionID, domain.EventTypeLLMCallDone, done); recErr != nil {
			log.Printf("WARN: failed to record llm_call_done event: %v", recErr)
		}
	}
}
