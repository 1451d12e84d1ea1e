package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/playground/internal/adapter/llm"
	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/playground"
)

// processReply sends the exchange's payload upstream and feeds the reply
// into the assistant message until it completes, fails or is aborted.
func (s *Service) processReply(sess *playground.Session, x *playground.Exchange) {
	defer sess.End(x)

	ctx := x.Context()
	if s.config != nil && s.config.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.StreamTimeout)
		defer cancel()
	}
	// Bookkeeping must survive an abort of the exchange context.
	bgCtx := context.Background()

	id := x.AssistantMessageID
	requestID := "llm_" + uuid.New().String()[:8]
	model, _ := x.Payload["model"].(string)
	stream, _ := x.Payload["stream"].(bool)
	startTime := time.Now()

	if err := s.recordEvent(bgCtx, sess.ID, domain.EventTypeLLMCallStarted, domain.LLMCallStartedPayload{
		RequestID: requestID,
		MessageID: id,
		Model:     model,
		Stream:    stream,
	}); err != nil {
		log.Printf("WARN: failed to record llm_call_started event: %v", err)
	}

	var (
		usage *llm.Usage
		err   error
	)
	if stream {
		usage, err = s.llmClient.ChatCompletionStream(ctx, x.Payload, func(chunk *llm.StreamChunk) error {
			sess.RecordResponse("data: " + chunk.Raw + "\n\n")
			if responseModel := chunk.Model; responseModel != "" {
				model = responseModel
			}
			return s.applyDelta(sess, id, chunk.Delta())
		})
	} else {
		var resp *llm.ChatCompletionResponse
		var raw []byte
		resp, raw, err = s.llmClient.ChatCompletion(ctx, x.Payload)
		sess.RecordResponse(string(raw))
		if err == nil {
			usage = resp.Usage
			if resp.Model != "" {
				model = resp.Model
			}
			if len(resp.Choices) > 0 {
				err = s.applyDelta(sess, id, resp.Choices[0].Message)
			}
		}
	}

	done := domain.LLMCallDonePayload{
		RequestID: requestID,
		MessageID: id,
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
	if recErr := s.recordEvent(bgCtx, sess.ID, domain.EventTypeLLMCallDone, done); recErr != nil {
		log.Printf("WARN: failed to record llm_call_done event: %v", recErr)
	}

	if cur, ok := sess.Messages.Get(id); !ok || cur.Status.Terminal() {
		// Aborted or removed while streaming; the abort path already reported it.
		return
	}

	var (
		msg       domain.Message
		eventType domain.EventType
	)
	if err != nil {
		log.Printf("ERROR: session %s: reply %s failed: %v", sess.ID, id, err)
		msg, err = sess.Messages.Fail(id, domain.Describe(err))
		eventType = domain.EventTypeMessageFailed
	} else {
		msg, err = sess.Messages.Complete(id)
		eventType = domain.EventTypeMessageCompleted
	}
	if err != nil {
		// Lost a race with an abort.
		return
	}

	s.publish(sess.ID, msg)
	if err := s.saveMessages(bgCtx, sess); err != nil {
		log.Printf("ERROR: %v", err)
	}
	if err := s.recordEvent(bgCtx, sess.ID, eventType, domain.MessageFinishedPayload{
		MessageID: id,
		Error:     msg.Error,
	}); err != nil {
		log.Printf("ERROR: failed to record %s event: %v", eventType, err)
	}
}

// applyDelta routes one upstream delta into the assistant message.
func (s *Service) applyDelta(sess *playground.Session, id string, delta *llm.ChatMessage) error {
	if delta == nil {
		return nil
	}
	var (
		msg     domain.Message
		err     error
		changed bool
	)
	if r := delta.ReasoningText(); r != "" {
		if msg, err = sess.Messages.ApplyReasoning(id, r); err != nil {
			return err
		}
		changed = true
	}
	if delta.Content != "" {
		if msg, err = sess.Messages.ApplyFragment(id, delta.Content); err != nil {
			return err
		}
		changed = true
	}
	if changed {
		s.publish(sess.ID, msg)
	}
	return nil
}

// ListModels retrieves the models available upstream.
func (s *Service) ListModels(ctx context.Context) ([]string, error) {
	return s.llmClient.ListModels(ctx)
}

// ListGroups retrieves the groups available upstream.
func (s *Service) ListGroups(ctx context.Context) ([]llm.Group, error) {
	return s.llmClient.ListGroups(ctx)
}
