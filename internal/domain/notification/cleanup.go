package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// unread notifications are kept twice as long as read ones
const unreadRetentionFactor = 2

// CleanupJob handles notification retention cleanup
type CleanupJob struct {
	repo          Repository
	retentionDays int
}

// NewCleanupJob creates a cleanup job
func NewCleanupJob(repo Repository, retentionDays int) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupJob{
		repo:          repo,
		retentionDays: retentionDays,
	}
}

// Start runs the cleanup immediately and then on every interval until ctx is done
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Notification cleanup job stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *CleanupJob) run(ctx context.Context) {
	read, unread, err := j.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to cleanup old notifications")
		return
	}
	if read+unread > 0 {
		log.Info().
			Int64("deleted_read", read).
			Int64("deleted_unread", unread).
			Int("retention_days", j.retentionDays).
			Msg("Cleaned up old notifications")
	}
}

// RunOnce deletes read notifications past retention and any notification
// past the extended unread retention
func (j *CleanupJob) RunOnce(ctx context.Context) (read, unread int64, err error) {
	day := 24 * time.Hour
	read, err = j.repo.DeleteOlderThan(ctx, time.Duration(j.retentionDays)*day, true)
	if err != nil {
		return 0, 0, err
	}
	unread, err = j.repo.DeleteOlderThan(ctx, time.Duration(j.retentionDays*unreadRetentionFactor)*day, false)
	if err != nil {
		return read, 0, err
	}
	return read, unread, nil
}
