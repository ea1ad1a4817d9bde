package badge

import (
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
)

// RequirementType names the activity count a badge is measured against
type RequirementType string

const (
	RequirementFailCount         RequirementType = "fail_count"
	RequirementCommentCount      RequirementType = "comment_count"
	RequirementReactionCount     RequirementType = "reaction_count"     // reactions given
	RequirementReactionsReceived RequirementType = "reactions_received" // reactions on the user's fails
)

// Valid reports whether t is a known requirement type
func (t RequirementType) Valid() bool {
	switch t {
	case RequirementFailCount, RequirementCommentCount, RequirementReactionCount, RequirementReactionsReceived:
		return true
	default:
		return false
	}
}

// Metric maps the requirement onto the aggregator metric that measures it
func (t RequirementType) Metric() aggregate.Metric {
	return aggregate.Metric(t)
}

// Definition is a static badge catalog entry
type Definition struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	Description      string          `db:"description"`
	Icon             string          `db:"icon"`
	Category         string          `db:"category"`
	RequirementType  RequirementType `db:"requirement_type"`
	RequirementValue int             `db:"requirement_value"`
	SortOrder        int             `db:"sort_order"`
}

// UserBadge is one row of the append-only unlock ledger
type UserBadge struct {
	UserID     uuid.UUID `db:"user_id"`
	BadgeID    string    `db:"badge_id"`
	UnlockedAt time.Time `db:"unlocked_at"`
}

// Progress is a user's standing against one badge
type Progress struct {
	Badge      *Definition
	Current    int
	Required   int
	Ratio      float64
	Unlocked   bool
	UnlockedAt *time.Time
}
