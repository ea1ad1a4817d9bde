package moderation

// Decision is the outcome of evaluating a content item's report count
type Decision int

const (
	NoChange Decision = iota
	Hide
)

func (d Decision) String() string {
	if d == Hide {
		return "hide"
	}
	return "no_change"
}

// Evaluate decides whether a content item must be auto-hidden.
//
// A nil record means the item was never moderated and counts as pending.
// Pending items hide once reportCount reaches the kind's threshold.
// Approved items hide only when the threshold is met and the count has
// grown past the count recorded at approval. Hidden items never change.
func Evaluate(kind ContentKind, rec *Record, reportCount int, cfg Config) Decision {
	threshold := cfg.ThresholdFor(kind)
	if threshold <= 0 || reportCount < threshold {
		return NoChange
	}

	if rec == nil {
		return Hide
	}

	switch rec.Status {
	case StatusPending:
		return Hide
	case StatusApproved:
		if reportCount > rec.ApprovedReportCount {
			return Hide
		}
		return NoChange
	default:
		return NoChange
	}
}
