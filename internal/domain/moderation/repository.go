package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines moderation data access interface
type Repository interface {
	// Content lookup
	GetContentRef(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRef, error)

	// Reports
	CreateReport(ctx context.Context, report *Report) (bool, error)
	ListReportsByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Report, error)

	// Records
	GetRecord(ctx context.Context, kind ContentKind, id uuid.UUID) (*Record, error)
	TransitionToHidden(ctx context.Context, kind ContentKind, id uuid.UUID, from *Record) (bool, error)
	Approve(ctx context.Context, kind ContentKind, id, actorID uuid.UUID) (*Record, error)
	Hide(ctx context.Context, kind ContentKind, id, actorID uuid.UUID) (*Record, error)
	ListFlagged(ctx context.Context, filter FlaggedFilter) ([]*FlaggedItem, int, error)

	// Config
	GetConfig(ctx context.Context) (*Config, error)
	SeedConfig(ctx context.Context, cfg Config) error
	UpdateConfig(ctx context.Context, cfg Config, actorID uuid.UUID) (*Config, error)
}

const recordColumns = `content_kind, content_id, status, approved_report_count, updated_by, updated_at`

const configColumns = `fail_report_threshold, comment_report_threshold, panel_auto_refresh_sec, updated_by, updated_at`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new moderation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetContentRef(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRef, error) {
	var query string
	switch kind {
	case KindFail:
		query = `SELECT 'fail' AS kind, id, author_id FROM fails WHERE id = $1`
	case KindComment:
		query = `SELECT 'comment' AS kind, id, author_id FROM comments WHERE id = $1`
	default:
		return nil, ErrInvalidContentKind
	}

	var ref ContentRef
	if err := r.db.GetContext(ctx, &ref, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

// CreateReport inserts a report and reports whether a new row was written.
// A repeat report from the same user is ignored.
func (r *repository) CreateReport(ctx context.Context, report *Report) (bool, error) {
	query := `
		INSERT INTO reports (id, content_kind, content_id, reporter_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_kind, content_id, reporter_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.ContentKind,
		report.ContentID,
		report.ReporterID,
		report.Reason,
		report.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return false, fmt.Errorf("%w: %w", ErrDuplicateReport, err)
			case "23503":
				return false, fmt.Errorf("%w: %w", ErrContentNotFound, err)
			}
		}
		return false, fmt.Errorf("moderation repository create report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) ListReportsByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Report, error) {
	query := `
		SELECT id, content_kind, content_id, reporter_id, reason, created_at
		FROM reports
		WHERE reporter_id = $1
		ORDER BY created_at DESC
	`
	var reports []*Report
	if err := r.db.SelectContext(ctx, &reports, query, reporterID); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repository) GetRecord(ctx context.Context, kind ContentKind, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM moderation_records WHERE content_kind = $1 AND content_id = $2`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, query, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// TransitionToHidden writes the auto-hide transition only if the record still
// matches from (nil meaning no record). It returns false when another writer
// got there first; the caller re-reads and re-evaluates.
func (r *repository) TransitionToHidden(ctx context.Context, kind ContentKind, id uuid.UUID, from *Record) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	if from == nil {
		result, err = r.db.ExecContext(ctx, `
			INSERT INTO moderation_records (content_kind, content_id, status, approved_report_count, updated_at)
			VALUES ($1, $2, 'hidden', 0, NOW())
			ON CONFLICT (content_kind, content_id) DO NOTHING
		`, kind, id)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE moderation_records
			SET status = 'hidden', updated_by = NULL, updated_at = NOW()
			WHERE content_kind = $1 AND content_id = $2
			  AND status = $3 AND approved_report_count = $4
		`, kind, id, from.Status, from.ApprovedReportCount)
	}
	if err != nil {
		return false, fmt.Errorf("moderation repository transition: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Approve marks the item approved and snapshots its current distinct reporter count
func (r *repository) Approve(ctx context.Context, kind ContentKind, id, actorID uuid.UUID) (*Record, error) {
	query := `
		INSERT INTO moderation_records (content_kind, content_id, status, approved_report_count, updated_by, updated_at)
		VALUES (
			$1, $2, 'approved',
			(SELECT COUNT(DISTINCT reporter_id) FROM reports WHERE content_kind = $1 AND content_id = $2),
			$3, NOW()
		)
		ON CONFLICT (content_kind, content_id) DO UPDATE
		SET status = EXCLUDED.status,
		    approved_report_count = EXCLUDED.approved_report_count,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = NOW()
		RETURNING ` + recordColumns

	var rec Record
	if err := r.db.GetContext(ctx, &rec, query, kind, id, actorID); err != nil {
		return nil, fmt.Errorf("moderation repository approve: %w", err)
	}
	return &rec, nil
}

// Hide marks the item hidden regardless of its report count
func (r *repository) Hide(ctx context.Context, kind ContentKind, id, actorID uuid.UUID) (*Record, error) {
	query := `
		INSERT INTO moderation_records (content_kind, content_id, status, approved_report_count, updated_by, updated_at)
		VALUES ($1, $2, 'hidden', 0, $3, NOW())
		ON CONFLICT (content_kind, content_id) DO UPDATE
		SET status = EXCLUDED.status,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = NOW()
		RETURNING ` + recordColumns

	var rec Record
	if err := r.db.GetContext(ctx, &rec, query, kind, id, actorID); err != nil {
		return nil, fmt.Errorf("moderation repository hide: %w", err)
	}
	return &rec, nil
}

func (r *repository) ListFlagged(ctx context.Context, filter FlaggedFilter) ([]*FlaggedItem, int, error) {
	query := `
		WITH counts AS (
			SELECT content_kind, content_id,
			       COUNT(DISTINCT reporter_id) AS report_count,
			       MAX(created_at) AS last_reported_at
			FROM reports
			GROUP BY content_kind, content_id
		)
		SELECT c.content_kind, c.content_id, c.report_count, c.last_reported_at,
		       COALESCE(m.status, 'pending') AS status,
		       COALESCE(m.approved_report_count, 0) AS approved_report_count,
		       COALESCE(f.author_id, cm.author_id) AS author_id,
		       COALESCE(f.title, cm.content, '') AS excerpt,
		       COUNT(*) OVER() AS total
		FROM counts c
		LEFT JOIN moderation_records m ON m.content_kind = c.content_kind AND m.content_id = c.content_id
		LEFT JOIN fails f ON c.content_kind = 'fail' AND f.id = c.content_id
		LEFT JOIN comments cm ON c.content_kind = 'comment' AND cm.id = c.content_id
		WHERE ($1::text = '' OR COALESCE(m.status, 'pending') = $1::text)
		  AND ($2::text = '' OR c.content_kind = $2::text)
		ORDER BY c.report_count DESC, c.last_reported_at DESC
		LIMIT $3 OFFSET $4
	`
	var items []*FlaggedItem
	if err := r.db.SelectContext(ctx, &items, query, string(filter.Status), string(filter.Kind), filter.Limit, filter.Offset); err != nil {
		return nil, 0, fmt.Errorf("moderation repository list flagged: %w", err)
	}

	total := 0
	if len(items) > 0 {
		total = items[0].Total
	}
	return items, total, nil
}

func (r *repository) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := r.db.GetContext(ctx, &cfg, `SELECT `+configColumns+` FROM moderation_config WHERE id = 1`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// SeedConfig writes the initial config row; an existing row is left untouched
func (r *repository) SeedConfig(ctx context.Context, cfg Config) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO moderation_config (id, fail_report_threshold, comment_report_threshold, panel_auto_refresh_sec, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO NOTHING
	`, cfg.FailReportThreshold, cfg.CommentReportThreshold, cfg.PanelAutoRefreshSec)
	if err != nil {
		return fmt.Errorf("moderation repository seed config: %w", err)
	}
	return nil
}

func (r *repository) UpdateConfig(ctx context.Context, cfg Config, actorID uuid.UUID) (*Config, error) {
	query := `
		UPDATE moderation_config
		SET fail_report_threshold = $1,
		    comment_report_threshold = $2,
		    panel_auto_refresh_sec = $3,
		    updated_by = $4,
		    updated_at = NOW()
		WHERE id = 1
		RETURNING ` + configColumns

	var out Config
	err := r.db.GetContext(ctx, &out, query, cfg.FailReportThreshold, cfg.CommentReportThreshold, cfg.PanelAutoRefreshSec, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigMissing
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23514" {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return nil, fmt.Errorf("moderation repository update config: %w", err)
	}
	return &out, nil
}
