package reaction

import (
	"time"

	"github.com/google/uuid"
)

// ReactRequest for PUT /fails/{id}/reaction
type ReactRequest struct {
	Type string `json:"type" validate:"required,reaction_type"`
}

// ReactionResponse represents a reaction in API response
type ReactionResponse struct {
	ID        uuid.UUID `json:"id"`
	FailID    uuid.UUID `json:"fail_id"`
	Type      Type      `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReactionResponse creates ReactionResponse from entity
func NewReactionResponse(r *Reaction) ReactionResponse {
	return ReactionResponse{
		ID:        r.ID,
		FailID:    r.FailID,
		Type:      r.Type,
		UpdatedAt: r.UpdatedAt,
	}
}

// SummaryResponse is the per-type count for a fail plus the caller's own reaction
type SummaryResponse struct {
	FailID uuid.UUID      `json:"fail_id"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
	Mine   *Type          `json:"mine,omitempty"`
}

// ReactResponse is returned after a reaction is recorded
type ReactResponse struct {
	Reaction      ReactionResponse `json:"reaction"`
	Summary       SummaryResponse  `json:"summary"`
	NewlyUnlocked []string         `json:"newly_unlocked_badges"`
}
