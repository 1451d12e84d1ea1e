package service

import (
	"context"
	"encoding/json"

	"github.com/xiaot623/gogo/playground/internal/playground"
)

// Preview returns the payload the next request would be built from.
func (s *Service) Preview(ctx context.Context, sessionID string) (json.RawMessage, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Preview()
}

// DebugState returns the debug panel views.
func (s *Service) DebugState(ctx context.Context, sessionID string) (playground.DebugView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return playground.DebugView{}, err
	}
	return sess.DebugView(), nil
}

// SelectDebugTab switches the active debug view.
func (s *Service) SelectDebugTab(ctx context.Context, sessionID, tab string) (playground.DebugView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return playground.DebugView{}, err
	}
	if err := sess.Debug.Select(tab); err != nil {
		return playground.DebugView{}, err
	}
	return sess.DebugView(), nil
}
