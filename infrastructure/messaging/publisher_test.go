package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/receivables-dashboard-api/internal/config"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

func TestNewPublisher_WithoutURLIsNop(t *testing.T) {
	p, err := NewPublisher(config.AMQP{})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), domain.Event{Type: domain.EventUploadCompleted}))
	assert.NoError(t, p.Close())
}

func TestNewPublishing(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	msg, err := newPublishing(domain.Event{
		Type:       domain.EventUploadCompleted,
		OccurredAt: at,
		Payload:    map[string]any{"uploadId": "abc", "newRecords": 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, domain.EventUploadCompleted, msg.Type)
	assert.Equal(t, at, msg.Timestamp)
	assert.JSONEq(t, `{
		"type": "upload.completed",
		"occurredAt": "2024-03-01T10:00:00Z",
		"payload": {"uploadId": "abc", "newRecords": 2}
	}`, string(msg.Body))
}

func TestNewPublishing_StampsMissingTime(t *testing.T) {
	msg, err := newPublishing(domain.Event{Type: domain.EventNotificationCreated})
	require.NoError(t, err)
	assert.False(t, msg.Timestamp.IsZero())
}
