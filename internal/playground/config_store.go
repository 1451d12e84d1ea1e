package playground

import (
	"encoding/json"
	"sync"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// ConfigStore holds the request configuration of one session.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg domain.RequestConfig
}

// NewConfigStore returns a store holding the default configuration.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{cfg: domain.DefaultRequestConfig()}
}

// Snapshot returns a deep copy of the current configuration.
func (s *ConfigStore) Snapshot() domain.RequestConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Replace validates cfg and makes it the current configuration.
func (s *ConfigStore) Replace(cfg domain.RequestConfig) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	return nil
}

// SetParameterEnabled switches a tunable parameter on or off.
func (s *ConfigStore) SetParameterEnabled(name string, enabled bool) error {
	if !domain.IsTunableParameter(name) {
		return &domain.InvalidParameterError{Name: name}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.ParameterEnabled == nil {
		s.cfg.ParameterEnabled = make(map[string]bool)
	}
	s.cfg.ParameterEnabled[name] = enabled
	return nil
}

// Reset restores the default configuration.
func (s *ConfigStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = domain.DefaultRequestConfig()
}

// Marshal serializes the configuration for the playground_config slot.
func (s *ConfigStore) Marshal() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.cfg)
}

// Load replaces the configuration with a serialized one. On any error the
// current configuration is left untouched.
func (s *ConfigStore) Load(data []byte) error {
	var cfg domain.RequestConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return &domain.JSONParseError{Source: domain.StorageKeyConfig, Err: err}
	}
	return s.Replace(cfg)
}

func validateConfig(cfg domain.RequestConfig) error {
	for name := range cfg.ParameterEnabled {
		if !domain.IsTunableParameter(name) {
			return &domain.InvalidParameterError{Name: name}
		}
	}
	return nil
}
