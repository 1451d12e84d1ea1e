package service

import (
	"context"
	"errors"
	"log"

	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/playground"
)

// ListMessages returns the session's message log.
func (s *Service) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Messages.Messages(), nil
}

// SendMessage submits a user message and starts streaming the reply in the
// background. Build and policy failures are returned before anything is
// sent or stored.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string) (*playground.Exchange, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	x, err := sess.Submit(ctx, content, s.checkPayload)
	if err != nil {
		if !errors.Is(err, domain.ErrRequestInProgress) {
			info := domain.Describe(err)
			if recErr := s.recordEvent(ctx, sessionID, domain.EventTypeRequestRejected, domain.RequestRejectedPayload{
				Code:    info.Code,
				Message: info.Message,
			}); recErr != nil {
				log.Printf("ERROR: failed to record request_rejected event: %v", recErr)
			}
		}
		return nil, err
	}

	if err := s.saveMessages(ctx, sess); err != nil {
		log.Printf("ERROR: %v", err)
	}
	for _, id := range []string{x.UserMessageID, x.AssistantMessageID} {
		if msg, ok := sess.Messages.Get(id); ok {
			s.publish(sessionID, msg)
		}
	}
	cfg := sess.Config.Snapshot()
	if err := s.recordEvent(ctx, sessionID, domain.EventTypeMessageSubmitted, domain.MessageSubmittedPayload{
		UserMessageID:      x.UserMessageID,
		AssistantMessageID: x.AssistantMessageID,
		CustomRequest:      cfg.CustomRequestMode,
	}); err != nil {
		log.Printf("ERROR: failed to record message_submitted event: %v", err)
	}

	go s.processReply(sess, x)

	return x, nil
}

// AbortMessage cancels the in-flight reply of a session.
func (s *Service) AbortMessage(ctx context.Context, sessionID string) (domain.Message, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := sess.Abort()
	if err != nil {
		return domain.Message{}, err
	}

	s.publish(sessionID, msg)
	if err := s.saveMessages(ctx, sess); err != nil {
		log.Printf("ERROR: %v", err)
	}
	if err := s.recordEvent(ctx, sessionID, domain.EventTypeMessageFailed, domain.MessageFinishedPayload{
		MessageID: msg.ID,
		Error:     msg.Error,
	}); err != nil {
		log.Printf("ERROR: failed to record message_failed event: %v", err)
	}
	return msg, nil
}

// DeleteMessage removes a message that is not in flight.
func (s *Service) DeleteMessage(ctx context.Context, sessionID, messageID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := sess.Messages.Delete(messageID); err != nil {
		return err
	}
	return s.saveMessages(ctx, sess)
}

// ToggleReasoning flips whether a message's reasoning is shown expanded.
func (s *Service) ToggleReasoning(ctx context.Context, sessionID, messageID string) (domain.Message, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := sess.Messages.ToggleReasoning(messageID)
	if err != nil {
		return domain.Message{}, err
	}
	s.publish(sessionID, msg)
	return msg, s.saveMessages(ctx, sess)
}

// ResetMessages replaces the log with the default sample exchange.
func (s *Service) ResetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.InFlight() != nil {
		return nil, domain.ErrRequestInProgress
	}
	if err := sess.Messages.Restore(playground.DefaultMessages(sess.NewID, sess.Now())); err != nil {
		return nil, err
	}
	return sess.Messages.Messages(), s.saveMessages(ctx, sess)
}

// ClearMessages empties the log.
func (s *Service) ClearMessages(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.InFlight() != nil {
		return domain.ErrRequestInProgress
	}
	sess.Messages.Clear()
	return s.saveMessages(ctx, sess)
}

func (s *Service) checkPayload(ctx context.Context, payload domain.Payload) error {
	if s.policy == nil {
		return nil
	}
	return s.policy.Check(ctx, payload)
}
