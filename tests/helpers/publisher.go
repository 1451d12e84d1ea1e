package helpers

import (
	"sync"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// RecordingPublisher keeps every message update it is asked to publish.
type RecordingPublisher struct {
	mu      sync.Mutex
	updates []domain.MessageUpdate
}

func (p *RecordingPublisher) Publish(sessionID string, v interface{}) error {
	if u, ok := v.(domain.MessageUpdate); ok {
		p.mu.Lock()
		p.updates = append(p.updates, u)
		p.mu.Unlock()
	}
	return nil
}

// Updates returns the updates published for sessionID.
func (p *RecordingPublisher) Updates(sessionID string) []domain.MessageUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.MessageUpdate
	for _, u := range p.updates {
		if u.SessionID == sessionID {
			out = append(out, u)
		}
	}
	return out
}
