package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

func TestMemoryNotificationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNotificationRepository()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, n := range []domain.Notification{
		{ID: "n1", UserID: 1, Title: "first", CreatedAt: now},
		{ID: "n2", UserID: 2, Title: "other user", CreatedAt: now},
		{ID: "n3", UserID: 1, Title: "second", CreatedAt: now.Add(time.Minute)},
	} {
		n := n
		require.NoError(t, repo.Create(ctx, &n), i)
	}

	list, err := repo.ListByUser(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n3", list[0].ID)
	assert.Equal(t, "n1", list[1].ID)

	n1, err := repo.GetByID(ctx, "n1")
	require.NoError(t, err)
	n1.Read = true
	require.NoError(t, repo.Update(ctx, n1))

	unread, err := repo.ListByUser(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n3", unread[0].ID)

	missing, err := repo.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
