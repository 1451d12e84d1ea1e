package playground

import (
	"time"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// DefaultMessages returns the sample exchange a fresh conversation shows.
func DefaultMessages(newID func() string, now time.Time) []domain.Message {
	return []domain.Message{
		{
			ID:        newID(),
			Role:      domain.RoleUser,
			CreatedAt: now,
			Content:   "Hello",
			Status:    domain.MessageStatusComplete,
		},
		{
			ID:        newID(),
			Role:      domain.RoleAssistant,
			CreatedAt: now,
			Content:   "Hello! How can I help you today?",
			Status:    domain.MessageStatusComplete,
		},
	}
}
