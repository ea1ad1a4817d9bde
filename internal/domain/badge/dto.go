package badge

import "time"

// DefinitionResponse represents a catalog entry in API response
type DefinitionResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	Category         string          `json:"category"`
	RequirementType  RequirementType `json:"requirement_type"`
	RequirementValue int             `json:"requirement_value"`
}

// NewDefinitionResponse creates DefinitionResponse from entity
func NewDefinitionResponse(d *Definition) DefinitionResponse {
	return DefinitionResponse{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		Icon:             d.Icon,
		Category:         d.Category,
		RequirementType:  d.RequirementType,
		RequirementValue: d.RequirementValue,
	}
}

// ProgressResponse represents badge progress in API response
type ProgressResponse struct {
	Badge      DefinitionResponse `json:"badge"`
	Current    int                `json:"current"`
	Required   int                `json:"required"`
	Ratio      float64            `json:"ratio"`
	Unlocked   bool               `json:"unlocked"`
	UnlockedAt *time.Time         `json:"unlocked_at,omitempty"`
}

// NewProgressResponse creates ProgressResponse from Progress
func NewProgressResponse(p Progress) ProgressResponse {
	return ProgressResponse{
		Badge:      NewDefinitionResponse(p.Badge),
		Current:    p.Current,
		Required:   p.Required,
		Ratio:      p.Ratio,
		Unlocked:   p.Unlocked,
		UnlockedAt: p.UnlockedAt,
	}
}

// CheckResponse is returned by POST /badges/check
type CheckResponse struct {
	NewlyUnlocked []DefinitionResponse `json:"newly_unlocked"`
}

func progressList(ps []Progress) []ProgressResponse {
	out := make([]ProgressResponse, len(ps))
	for i, p := range ps {
		out[i] = NewProgressResponse(p)
	}
	return out
}

func definitionList(defs []*Definition) []DefinitionResponse {
	out := make([]DefinitionResponse, len(defs))
	for i, d := range defs {
		out[i] = NewDefinitionResponse(d)
	}
	return out
}
