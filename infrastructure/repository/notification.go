package repository

import (
	"context"
	"sync"

	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	Update(ctx context.Context, notification *domain.Notification) error
	// GetByID returns nil, nil for an unknown id.
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID int, unreadOnly bool) ([]*domain.Notification, error)
}

type memoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]domain.Notification
	order         []string
}

func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{
		notifications: make(map[string]domain.Notification),
	}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifications[notification.ID]; !exists {
		r.order = append(r.order, notification.ID)
	}
	r.notifications[notification.ID] = *notification

	return nil
}

func (r *memoryNotificationRepository) Update(ctx context.Context, notification *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifications[notification.ID]; !exists {
		return nil
	}
	r.notifications[notification.ID] = *notification

	return nil
}

func (r *memoryNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	notification, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}

	return &notification, nil
}

func (r *memoryNotificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool) ([]*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Notification, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		notification := r.notifications[r.order[i]]
		if notification.UserID != userID || (unreadOnly && notification.Read) {
			continue
		}
		result = append(result, &notification)
	}

	return result, nil
}
