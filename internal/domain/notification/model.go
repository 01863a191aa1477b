package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message created for each completed assessment.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RecordID  uuid.UUID `json:"record_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
