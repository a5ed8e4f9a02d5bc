package domain

import "time"

type Notification struct {
	ID        string    `json:"id"`
	UserID    int       `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	NotificationKindUpload = "upload"
	NotificationKindSystem = "system"
)

const (
	EventUploadCompleted     = "upload.completed"
	EventNotificationCreated = "notification.created"
)

// Event is what the notification publisher sends out.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}
