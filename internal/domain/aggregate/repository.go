package aggregate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Counter computes counts over the persisted event log.
// Every method returns 0 for no rows and *AggregationError on store failure.
type Counter interface {
	// ReportCount returns the number of distinct reporters of a content item
	ReportCount(ctx context.Context, kind string, contentID uuid.UUID) (int, error)
	// ReactionCount returns the number of reactions of one type on a fail
	ReactionCount(ctx context.Context, failID uuid.UUID, reactionType string) (int, error)
	// ReactionCounts returns reaction counts on a fail keyed by type
	ReactionCounts(ctx context.Context, failID uuid.UUID) (map[string]int, error)
	// UserCount returns a per-user activity count
	UserCount(ctx context.Context, userID uuid.UUID, metric Metric) (int, error)
}

var userQueries = map[Metric]string{
	MetricFailCount:     `SELECT COUNT(*) FROM fails WHERE author_id = $1`,
	MetricCommentCount:  `SELECT COUNT(*) FROM comments WHERE author_id = $1`,
	MetricReactionCount: `SELECT COUNT(*) FROM reactions WHERE user_id = $1`,
	MetricReactionsReceived: `
		SELECT COUNT(*)
		FROM reactions r
		JOIN fails f ON f.id = r.fail_id
		WHERE f.author_id = $1`,
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a Postgres-backed Counter
func NewRepository(db *sqlx.DB) Counter {
	return &repository{db: db}
}

func (r *repository) count(ctx context.Context, metric Metric, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, &AggregationError{Metric: metric, Err: err}
	}
	return n, nil
}

func (r *repository) ReportCount(ctx context.Context, kind string, contentID uuid.UUID) (int, error) {
	return r.count(ctx, MetricReportCount, `
		SELECT COUNT(DISTINCT reporter_id)
		FROM reports
		WHERE content_kind = $1 AND content_id = $2
	`, kind, contentID)
}

func (r *repository) ReactionCount(ctx context.Context, failID uuid.UUID, reactionType string) (int, error) {
	return r.count(ctx, MetricReactionsByType,
		`SELECT COUNT(*) FROM reactions WHERE fail_id = $1 AND type = $2`, failID, reactionType)
}

func (r *repository) ReactionCounts(ctx context.Context, failID uuid.UUID) (map[string]int, error) {
	var rows []struct {
		Type  string `db:"type"`
		Count int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT type, COUNT(*) AS count
		FROM reactions
		WHERE fail_id = $1
		GROUP BY type
	`, failID)
	if err != nil {
		return nil, &AggregationError{Metric: MetricReactionsByType, Err: err}
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

func (r *repository) UserCount(ctx context.Context, userID uuid.UUID, metric Metric) (int, error) {
	query, ok := userQueries[metric]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	return r.count(ctx, metric, query, userID)
}
