package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeBadgeUnlocked Type = "badge_unlocked" // User earned a badge
	TypeContentHidden Type = "content_hidden" // Author: fail or comment hidden by moderation
)

// Notification is an in-app message row
type Notification struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Type      Type            `db:"type"`
	Title     string          `db:"title"`
	Body      sql.NullString  `db:"body"`
	Data      json.RawMessage `db:"data"`
	IsRead    bool            `db:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at"`
	CreatedAt time.Time       `db:"created_at"`
}

// Payload links a notification to the badge or content it is about
type Payload struct {
	BadgeID     string     `json:"badge_id,omitempty"`
	ContentKind string     `json:"content_kind,omitempty"`
	ContentID   *uuid.UUID `json:"content_id,omitempty"`
	Automatic   *bool      `json:"automatic,omitempty"`
}

func newNotification(userID uuid.UUID, t Type, title, body string, payload *Payload, now time.Time) *Notification {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		Title:     title,
		Body:      sql.NullString{String: body, Valid: body != ""},
		CreatedAt: now,
	}
	if payload != nil {
		n.Data, _ = json.Marshal(payload)
	}
	return n
}

// Payload decodes the stored data column; nil when absent or malformed
func (n *Notification) Payload() *Payload {
	if len(n.Data) == 0 {
		return nil
	}
	var p Payload
	if err := json.Unmarshal(n.Data, &p); err != nil {
		return nil
	}
	return &p
}
