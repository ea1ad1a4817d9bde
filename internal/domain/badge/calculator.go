package badge

// Calculate computes progress of a metric count against a badge definition.
// current is capped at the requirement, so the ratio never exceeds 1.
func Calculate(def *Definition, count int) Progress {
	required := def.RequirementValue
	current := count
	if current > required {
		current = required
	}
	if current < 0 {
		current = 0
	}

	ratio := 0.0
	if required > 0 {
		ratio = float64(current) / float64(required)
	}

	return Progress{
		Badge:    def,
		Current:  current,
		Required: required,
		Ratio:    ratio,
		Unlocked: current >= required,
	}
}

// IsUpcoming is the display filter for goals worth surfacing: badges not yet
// unlocked where the user has started, or is within window of the requirement
func IsUpcoming(p Progress, window int) bool {
	if p.Unlocked {
		return false
	}
	return p.Current > 0 || p.Required-p.Current <= window
}
