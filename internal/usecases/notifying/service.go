// Package notifying stores user notifications and fans them out to the
// event publisher.
package notifying

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vfg2006/receivables-dashboard-api/infrastructure/messaging"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/utils"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMissingTitle         = errors.New("notification title is required")
	ErrStoreFailure         = errors.New("notification store failure")
)

type Notifier interface {
	Create(ctx context.Context, userID int, title, message, kind string) (*domain.Notification, error)
	MarkRead(ctx context.Context, userID int, id string) (*domain.Notification, error)
	List(ctx context.Context, userID int, unreadOnly bool) ([]*domain.Notification, error)
}

type Service struct {
	repo      repository.NotificationRepository
	publisher messaging.Publisher
	now       func() time.Time
}

func NewService(repo repository.NotificationRepository, publisher messaging.Publisher) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, userID int, title, message, kind string) (*domain.Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}
	if kind == "" {
		kind = domain.NotificationKindSystem
	}

	id, err := utils.GenerateID(utils.NotificationIDSize)
	if err != nil {
		return nil, fmt.Errorf("generate notification id: %w", err)
	}

	now := s.now()
	notification := &domain.Notification{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("%w: create: %v", ErrStoreFailure, err)
	}

	event := domain.Event{
		Type:       domain.EventNotificationCreated,
		OccurredAt: now,
		Payload:    notification,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.ForContext(ctx).WithError(err).WithField("user_id", userID).Warn("notify: publish failed")
	}

	return notification, nil
}

// MarkRead answers not-found for ids owned by another user.
func (s *Service) MarkRead(ctx context.Context, userID int, id string) (*domain.Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrStoreFailure, err)
	}
	if notification == nil || notification.UserID != userID {
		return nil, ErrNotificationNotFound
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	notification.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("%w: update: %v", ErrStoreFailure, err)
	}

	return notification, nil
}

func (s *Service) List(ctx context.Context, userID int, unreadOnly bool) ([]*domain.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreFailure, err)
	}
	return notifications, nil
}

// Publish forwards a domain event that is not tied to a stored notification.
func (s *Service) Publish(ctx context.Context, eventType string, payload any) {
	event := domain.Event{Type: eventType, OccurredAt: s.now(), Payload: payload}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.ForContext(ctx).WithError(err).WithField("job_event", eventType).Warn("notify: publish failed")
	}
}
