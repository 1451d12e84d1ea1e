// Package repository persists playground state: the per-session storage
// slots and the trace event log.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Slot operations. LoadSlot returns nil data when the slot is empty.
	SaveSlot(ctx context.Context, sessionID, key string, value []byte) error
	LoadSlot(ctx context.Context, sessionID, key string) ([]byte, error)
	DeleteSlots(ctx context.Context, sessionID string) error

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, sessionID string, afterTs int64, types []string, limit int) ([]domain.Event, error)

	Close() error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
