package ingesting

import (
	"context"

	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

// Notifier tells the uploader the upload finished.
type Notifier interface {
	Create(ctx context.Context, userID int, title, message, kind string) (*domain.Notification, error)
	Publish(ctx context.Context, eventType string, payload any)
}
