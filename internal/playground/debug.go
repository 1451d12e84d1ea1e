package playground

import (
	"sync"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// DebugPanel tracks which inspection view is active.
type DebugPanel struct {
	mu     sync.RWMutex
	active domain.DebugTab
}

// NewDebugPanel returns a panel showing the preview view.
func NewDebugPanel() *DebugPanel {
	return &DebugPanel{active: domain.DebugTabPreview}
}

// Select makes tab the active view.
func (d *DebugPanel) Select(tab string) error {
	switch t := domain.DebugTab(tab); t {
	case domain.DebugTabPreview, domain.DebugTabRequest, domain.DebugTabResponse:
		d.mu.Lock()
		d.active = t
		d.mu.Unlock()
		return nil
	}
	return &domain.InvalidTabError{Tab: tab}
}

// Active returns the active view.
func (d *DebugPanel) Active() domain.DebugTab {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}
