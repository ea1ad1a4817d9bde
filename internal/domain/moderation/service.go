package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
	"github.com/faildaily/faildaily-api/internal/pkg/logger"
)

// maxTransitionAttempts bounds the re-read loop when a concurrent writer
// changes the record between evaluation and the conditional write
const maxTransitionAttempts = 3

// Notifier receives the content-hidden signal
type Notifier interface {
	NotifyContentHidden(ctx context.Context, authorID uuid.UUID, kind string, contentID uuid.UUID, automatic bool) error
}

// Service handles moderation business logic
type Service struct {
	repo     Repository
	counter  aggregate.Counter
	notifier Notifier
	now      func() time.Time
}

// NewService creates moderation service. notifier may be nil.
func NewService(repo Repository, counter aggregate.Counter, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		counter:  counter,
		notifier: notifier,
		now:      time.Now,
	}
}

// SeedConfig stores defaults unless a config row already exists
func (s *Service) SeedConfig(ctx context.Context, defaults Config) error {
	if err := defaults.Validate(); err != nil {
		return err
	}
	return s.repo.SeedConfig(ctx, defaults)
}

// RecordReport stores a report and re-evaluates the item's moderation state
func (s *Service) RecordReport(ctx context.Context, reporterID uuid.UUID, req *CreateReportRequest) (*ReportResult, error) {
	kind := ContentKind(req.ContentKind)
	if !kind.Valid() {
		return nil, ErrInvalidContentKind
	}

	ref, err := s.repo.GetContentRef(ctx, kind, req.ContentID)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrContentNotFound
	}
	if ref.AuthorID == reporterID {
		return nil, ErrCannotReportOwn
	}

	report := &Report{
		ID:          uuid.New(),
		ContentKind: kind,
		ContentID:   req.ContentID,
		ReporterID:  reporterID,
		Reason:      sql.NullString{String: req.Reason, Valid: req.Reason != ""},
		CreatedAt:   s.now(),
	}
	inserted, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		if !errors.Is(err, ErrDuplicateReport) {
			return nil, err
		}
		inserted = false
	}

	count, status, err := s.evaluate(ctx, ref)
	if err != nil {
		return nil, err
	}

	return &ReportResult{
		ContentKind: kind,
		ContentID:   req.ContentID,
		ReportCount: count,
		Status:      status,
		Duplicate:   !inserted,
	}, nil
}

// evaluate runs the threshold rule against the persisted record using a
// conditional write, retrying when a concurrent writer wins
func (s *Service) evaluate(ctx context.Context, ref *ContentRef) (int, Status, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("load moderation config: %w", err)
	}
	if cfg == nil {
		return 0, "", ErrConfigMissing
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		rec, err := s.repo.GetRecord(ctx, ref.Kind, ref.ID)
		if err != nil {
			return 0, "", fmt.Errorf("load moderation record: %w", err)
		}

		count, err := s.counter.ReportCount(ctx, string(ref.Kind), ref.ID)
		if err != nil {
			return 0, "", err
		}

		if Evaluate(ref.Kind, rec, count, *cfg) == NoChange {
			return count, statusOf(rec), nil
		}

		ok, err := s.repo.TransitionToHidden(ctx, ref.Kind, ref.ID, rec)
		if err != nil {
			return 0, "", err
		}
		if ok {
			logger.FromContext(ctx).Info().
				Str("content_kind", string(ref.Kind)).
				Str("content_id", ref.ID.String()).
				Int("report_count", count).
				Int("threshold", cfg.ThresholdFor(ref.Kind)).
				Msg("Content auto-hidden")
			s.notifyHidden(ctx, ref, true)
			return count, StatusHidden, nil
		}
	}

	return 0, "", ErrConcurrentUpdate
}

// Approve is the admin override that makes content visible again
func (s *Service) Approve(ctx context.Context, actorID uuid.UUID, kind ContentKind, id uuid.UUID) (*Record, error) {
	if _, err := s.contentRef(ctx, kind, id); err != nil {
		return nil, err
	}

	rec, err := s.repo.Approve(ctx, kind, id, actorID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("content_kind", string(kind)).
		Str("content_id", id.String()).
		Int("approved_report_count", rec.ApprovedReportCount).
		Msg("Content approved")
	return rec, nil
}

// Hide is the admin override that hides content regardless of reports
func (s *Service) Hide(ctx context.Context, actorID uuid.UUID, kind ContentKind, id uuid.UUID) (*Record, error) {
	ref, err := s.contentRef(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	prev, err := s.repo.GetRecord(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Hide(ctx, kind, id, actorID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("content_kind", string(kind)).
		Str("content_id", id.String()).
		Msg("Content hidden by moderator")

	if statusOf(prev) != StatusHidden {
		s.notifyHidden(ctx, ref, false)
	}
	return rec, nil
}

// GetStatus returns the effective status of a content item
func (s *Service) GetStatus(ctx context.Context, kind ContentKind, id uuid.UUID) (Status, error) {
	rec, err := s.repo.GetRecord(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return statusOf(rec), nil
}

// GetConfig returns the current moderation config
func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrConfigMissing
	}
	return cfg, nil
}

// UpdateConfig merges req into the current config and persists it.
// Non-positive values are rejected before anything is written.
func (s *Service) UpdateConfig(ctx context.Context, actorID uuid.UUID, req *UpdateConfigRequest) (*Config, error) {
	current, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	next := *current
	if req.FailReportThreshold != nil {
		next.FailReportThreshold = *req.FailReportThreshold
	}
	if req.CommentReportThreshold != nil {
		next.CommentReportThreshold = *req.CommentReportThreshold
	}
	if req.PanelAutoRefreshSec != nil {
		next.PanelAutoRefreshSec = *req.PanelAutoRefreshSec
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateConfig(ctx, next, actorID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int("fail_report_threshold", updated.FailReportThreshold).
		Int("comment_report_threshold", updated.CommentReportThreshold).
		Int("panel_auto_refresh_sec", updated.PanelAutoRefreshSec).
		Msg("Moderation config updated")
	return updated, nil
}

// ListFlagged returns reported content for the moderation panel
func (s *Service) ListFlagged(ctx context.Context, filter FlaggedFilter) ([]*FlaggedItem, int, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, ErrInvalidContentKind
	}
	return s.repo.ListFlagged(ctx, filter)
}

// ListMyReports returns reports created by the user
func (s *Service) ListMyReports(ctx context.Context, userID uuid.UUID) ([]*Report, error) {
	return s.repo.ListReportsByReporter(ctx, userID)
}

func (s *Service) contentRef(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRef, error) {
	if !kind.Valid() {
		return nil, ErrInvalidContentKind
	}
	ref, err := s.repo.GetContentRef(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrContentNotFound
	}
	return ref, nil
}

func (s *Service) notifyHidden(ctx context.Context, ref *ContentRef, automatic bool) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyContentHidden(ctx, ref.AuthorID, string(ref.Kind), ref.ID, automatic); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("content_id", ref.ID.String()).
			Msg("Failed to notify author of hidden content")
	}
}

func statusOf(rec *Record) Status {
	if rec == nil {
		return StatusPending
	}
	return rec.Status
}
