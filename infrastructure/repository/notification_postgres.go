package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

const notificationsTable = "notifications"

var notificationColumns = []string{"id", "user_id", "title", "message", "kind", "read", "created_at", "updated_at"}

type postgresNotificationRepository struct {
	conn *postgres.Connection
}

func NewPostgresNotificationRepository(conn *postgres.Connection) NotificationRepository {
	return &postgresNotificationRepository{
		conn: conn,
	}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query, args, err := squirrel.
		Insert(notificationsTable).
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.Title, n.Message, n.Kind, n.Read, n.CreatedAt, n.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notification %s: %w", n.ID, err)
	}

	return nil
}

func (r *postgresNotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	query, args, err := squirrel.
		Update(notificationsTable).
		Set("title", n.Title).
		Set("message", n.Message).
		Set("read", n.Read).
		Set("updated_at", n.UpdatedAt).
		Where(squirrel.Eq{"id": n.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update notification %s: %w", n.ID, err)
	}

	return nil
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query, args, err := squirrel.
		Select(notificationColumns...).
		From(notificationsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	n, err := scanNotification(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("select notification %s: %w", id, err)
	}

	return n, nil
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool) ([]*domain.Notification, error) {
	builder := squirrel.
		Select(notificationColumns...).
		From(notificationsTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(squirrel.Dollar)

	if unreadOnly {
		builder = builder.Where(squirrel.Eq{"read": false})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return result, nil
}

func scanNotification(s scanner) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := s.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Kind,
		&n.Read,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return n, nil
}
