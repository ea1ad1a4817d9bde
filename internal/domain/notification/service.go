package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/pkg/logger"
)

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher RealtimePublisher
	now       func() time.Time
}

// NewService creates notification service. publisher may be nil.
func NewService(repo Repository, publisher RealtimePublisher) *Service {
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

// Create stores a notification and pushes it to the user's live connections
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, payload *Payload) (*Notification, error) {
	n := newNotification(userID, notifType, title, body, payload, s.now())
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.publish(ctx, n)
	return n, nil
}

// List returns a page of the user's notifications, newest first, and the total
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*NotificationResponse, int, error) {
	items, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*NotificationResponse, len(items))
	for i, n := range items {
		out[i] = NewNotificationResponse(n)
	}
	return out, total, nil
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyContentHidden tells an author their fail or comment was hidden
func (s *Service) NotifyContentHidden(ctx context.Context, authorID uuid.UUID, kind string, contentID uuid.UUID, automatic bool) error {
	body := fmt.Sprintf("A moderator hid your %s.", kind)
	if automatic {
		body = fmt.Sprintf("Your %s was hidden after several community reports. A moderator will review it.", kind)
	}
	_, err := s.Create(ctx, authorID, TypeContentHidden,
		"Your content was hidden",
		body,
		&Payload{ContentKind: kind, ContentID: &contentID, Automatic: &automatic},
	)
	return err
}

// NotifyBadgeUnlocked tells a user they earned a badge
func (s *Service) NotifyBadgeUnlocked(ctx context.Context, userID uuid.UUID, badgeID, badgeName string) error {
	_, err := s.Create(ctx, userID, TypeBadgeUnlocked,
		"New badge unlocked!",
		fmt.Sprintf("You earned the \"%s\" badge.", badgeName),
		&Payload{BadgeID: badgeID},
	)
	return err
}

func (s *Service) publish(ctx context.Context, n *Notification) {
	if s.publisher == nil {
		return
	}
	unread, err := s.repo.CountUnreadByUser(ctx, n.UserID)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to count unread notifications")
	}
	if err := s.publisher.NotifyNew(ctx, n.UserID, NewNotificationResponse(n), unread); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("notification_id", n.ID.String()).
			Msg("Failed to publish realtime notification")
	}
}
