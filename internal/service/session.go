package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/playground"
)

// session returns the live session, restoring it from storage on first use.
func (s *Service) session(ctx context.Context, sessionID string) (*playground.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}

	sess := playground.NewSession(sessionID)

	data, err := s.store.LoadSlot(ctx, sessionID, domain.StorageKeyConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if data != nil {
		if err := sess.Config.Load(data); err != nil {
			log.Printf("WARN: session %s: discarding stored config: %v", sessionID, err)
			info := domain.Describe(err)
			if recErr := s.recordEvent(ctx, sessionID, domain.EventTypeConfigRestored, domain.RequestRejectedPayload{
				Code:    info.Code,
				Message: info.Message,
			}); recErr != nil {
				log.Printf("ERROR: failed to record config_restored event: %v", recErr)
			}
		}
	}

	data, err = s.store.LoadSlot(ctx, sessionID, domain.StorageKeyMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if data != nil {
		var msgs []domain.Message
		if err := json.Unmarshal(data, &msgs); err != nil {
			log.Printf("WARN: session %s: discarding stored messages: %v", sessionID, &domain.JSONParseError{Source: domain.StorageKeyMessages, Err: err})
		} else if err := sess.Messages.Restore(msgs); err != nil {
			log.Printf("WARN: session %s: discarding stored messages: %v", sessionID, err)
		}
	}

	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *Service) saveConfig(ctx context.Context, sess *playground.Session) error {
	data, err := sess.Config.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := s.store.SaveSlot(ctx, sess.ID, domain.StorageKeyConfig, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (s *Service) saveMessages(ctx context.Context, sess *playground.Session) error {
	data, err := json.Marshal(sess.Messages.Messages())
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	if err := s.store.SaveSlot(ctx, sess.ID, domain.StorageKeyMessages, data); err != nil {
		return fmt.Errorf("failed to save messages: %w", err)
	}
	return nil
}

func (s *Service) publish(sessionID string, msg domain.Message) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(sessionID, domain.MessageUpdate{
		Type:      domain.MessageUpdateType,
		SessionID: sessionID,
		Ts:        time.Now().UnixMilli(),
		Message:   msg,
	}); err != nil {
		log.Printf("WARN: failed to publish message update: %v", err)
	}
}
