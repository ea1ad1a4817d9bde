package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/realtime"
)

// RealtimePublisher publishes in-app notification realtime events
type RealtimePublisher interface {
	NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error
}

type userSender interface {
	SendToUser(userID uuid.UUID, event *realtime.Event) error
}

// WSPublisher publishes notification:new events over websocket
type WSPublisher struct {
	sender userSender
}

// NewWSPublisher creates a websocket-backed realtime publisher
func NewWSPublisher(sender userSender) *WSPublisher {
	return &WSPublisher{sender: sender}
}

func (p *WSPublisher) NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error {
	if p == nil || p.sender == nil {
		return nil
	}

	return p.sender.SendToUser(userID, &realtime.Event{
		Type: realtime.EventNotification,
		Data: map[string]interface{}{
			"notification": notification,
			"unread_count": unreadCount,
		},
	})
}
