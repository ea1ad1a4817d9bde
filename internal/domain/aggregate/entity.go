package aggregate

import "fmt"

// Metric names a scalar count the aggregator can compute
type Metric string

const (
	// Per content
	MetricReportCount     Metric = "report_count"
	MetricReactionsByType Metric = "reactions_by_type"

	// Per user; values match badge requirement types
	MetricFailCount         Metric = "fail_count"
	MetricCommentCount      Metric = "comment_count"
	MetricReactionCount     Metric = "reaction_count"
	MetricReactionsReceived Metric = "reactions_received"
)

// IsUserMetric reports whether m is counted per user
func (m Metric) IsUserMetric() bool {
	switch m {
	case MetricFailCount, MetricCommentCount, MetricReactionCount, MetricReactionsReceived:
		return true
	default:
		return false
	}
}

// AggregationError is returned when a count cannot be read from the store.
// Callers must not treat it as a zero count.
type AggregationError struct {
	Metric Metric
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s: %v", e.Metric, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
