package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse is the API shape of a notification
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      Type       `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Payload   *Payload   `json:"payload,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewNotificationResponse maps a stored notification to its API shape
func NewNotificationResponse(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body.String,
		Payload:   n.Payload(),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.ReadAt.Valid {
		at := n.ReadAt.Time
		resp.ReadAt = &at
	}
	return resp
}

// UnreadCountResponse for unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
