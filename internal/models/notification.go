package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an admin notification fetched from the hub.
type Notification struct {
	NotificationID string    `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// PendingAction is an in-flight toggle request. It exists only between
// dispatch and confirmation or failure, and is removed on either outcome.
type PendingAction struct {
	Token           uuid.UUID
	EntityID        string
	PreviousState   string
	OptimisticState string
	DispatchedAt    time.Time
}
