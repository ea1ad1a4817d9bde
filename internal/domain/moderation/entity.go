package moderation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentKind identifies what a report or moderation record points at
type ContentKind string

const (
	KindFail    ContentKind = "fail"
	KindComment ContentKind = "comment"
)

// Valid reports whether k is a known content kind
func (k ContentKind) Valid() bool {
	return k == KindFail || k == KindComment
}

// Status is the moderation state of a content item
type Status string

const (
	StatusPending  Status = "pending" // default, including never reported
	StatusHidden   Status = "hidden"
	StatusApproved Status = "approved"
)

// Visible reports whether content in this status appears in public listings
func (s Status) Visible() bool {
	return s == StatusPending || s == StatusApproved
}

// Report is one user's flag against a content item
type Report struct {
	ID          uuid.UUID      `db:"id"`
	ContentKind ContentKind    `db:"content_kind"`
	ContentID   uuid.UUID      `db:"content_id"`
	ReporterID  uuid.UUID      `db:"reporter_id"`
	Reason      sql.NullString `db:"reason"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Record is the persisted moderation state of a content item.
// ApprovedReportCount is the distinct reporter count at the last admin
// approval; auto-hide re-arms only once the count grows past it.
type Record struct {
	ContentKind         ContentKind   `db:"content_kind"`
	ContentID           uuid.UUID     `db:"content_id"`
	Status              Status        `db:"status"`
	ApprovedReportCount int           `db:"approved_report_count"`
	UpdatedBy           uuid.NullUUID `db:"updated_by"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// Config is the single persisted moderation configuration row
type Config struct {
	FailReportThreshold    int           `db:"fail_report_threshold"`
	CommentReportThreshold int           `db:"comment_report_threshold"`
	PanelAutoRefreshSec    int           `db:"panel_auto_refresh_sec"`
	UpdatedBy              uuid.NullUUID `db:"updated_by"`
	UpdatedAt              time.Time     `db:"updated_at"`
}

// ThresholdFor returns the report threshold for a content kind
func (c Config) ThresholdFor(kind ContentKind) int {
	if kind == KindComment {
		return c.CommentReportThreshold
	}
	return c.FailReportThreshold
}

// ContentRef is the minimal view of a reportable item
type ContentRef struct {
	Kind     ContentKind `db:"kind"`
	ID       uuid.UUID   `db:"id"`
	AuthorID uuid.UUID   `db:"author_id"`
}

// FlaggedItem is a reported content item as shown in the moderation panel
type FlaggedItem struct {
	ContentKind         ContentKind   `db:"content_kind"`
	ContentID           uuid.UUID     `db:"content_id"`
	AuthorID            uuid.NullUUID `db:"author_id"`
	Excerpt             string        `db:"excerpt"`
	Status              Status        `db:"status"`
	ReportCount         int           `db:"report_count"`
	ApprovedReportCount int           `db:"approved_report_count"`
	LastReportedAt      time.Time     `db:"last_reported_at"`
	Total               int           `db:"total"`
}

// FlaggedFilter narrows the moderation panel listing
type FlaggedFilter struct {
	Status Status
	Kind   ContentKind
	Limit  int
	Offset int
}

// Validate rejects non-positive values
func (c Config) Validate() error {
	switch {
	case c.FailReportThreshold <= 0:
		return fmt.Errorf("%w: fail_report_threshold must be greater than 0", ErrInvalidConfig)
	case c.CommentReportThreshold <= 0:
		return fmt.Errorf("%w: comment_report_threshold must be greater than 0", ErrInvalidConfig)
	case c.PanelAutoRefreshSec <= 0:
		return fmt.Errorf("%w: panel_auto_refresh_sec must be greater than 0", ErrInvalidConfig)
	}
	return nil
}
