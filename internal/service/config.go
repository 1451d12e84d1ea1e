package service

import (
	"context"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// GetConfig returns the session's request configuration.
func (s *Service) GetConfig(ctx context.Context, sessionID string) (domain.RequestConfig, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.RequestConfig{}, err
	}
	return sess.Config.Snapshot(), nil
}

// UpdateConfig replaces the session's request configuration.
func (s *Service) UpdateConfig(ctx context.Context, sessionID string, cfg domain.RequestConfig) (domain.RequestConfig, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.RequestConfig{}, err
	}
	if err := sess.Config.Replace(cfg); err != nil {
		return domain.RequestConfig{}, err
	}
	if err := s.saveConfig(ctx, sess); err != nil {
		return domain.RequestConfig{}, err
	}
	return sess.Config.Snapshot(), nil
}

// SetParameterEnabled switches one tunable parameter on or off.
func (s *Service) SetParameterEnabled(ctx context.Context, sessionID, name string, enabled bool) (domain.RequestConfig, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.RequestConfig{}, err
	}
	if err := sess.Config.SetParameterEnabled(name, enabled); err != nil {
		return domain.RequestConfig{}, err
	}
	if err := s.saveConfig(ctx, sess); err != nil {
		return domain.RequestConfig{}, err
	}
	return sess.Config.Snapshot(), nil
}

// ResetConfig restores the default configuration.
func (s *Service) ResetConfig(ctx context.Context, sessionID string) (domain.RequestConfig, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.RequestConfig{}, err
	}
	sess.Config.Reset()
	if err := s.saveConfig(ctx, sess); err != nil {
		return domain.RequestConfig{}, err
	}
	return sess.Config.Snapshot(), nil
}
