package policy

import "slices"

// IsActionTypeAllowed reports whether actionType is listed in allowed_actions.
func (p *Policy) IsActionTypeAllowed(actionType string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.AllowedActions, actionType)
}

// IsTransitionAllowed reports whether moving from current to target is listed.
// A current state without an entry permits nothing.
func (p *Policy) IsTransitionAllowed(current, target string) bool {
	if p == nil {
		return false
	}
	targets, ok := p.AllowedTransitions[current]
	if !ok {
		return false
	}
	return slices.Contains(targets, target)
}

// IsStateBlocked reports whether state is listed in blocked_states.
func (p *Policy) IsStateBlocked(state string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.BlockedStates, state)
}

// SimilarityThreshold is the minimum similarity for reusing an existing ticket.
func (p *Policy) SimilarityThreshold() float64 {
	if p == nil || p.Similarity.MinSimilarity == nil {
		return DefaultMinSimilarity
	}
	return *p.Similarity.MinSimilarity
}

// LookbackDays bounds how far back the similar-issue search looks.
func (p *Policy) LookbackDays() int {
	if p == nil || p.Similarity.LookbackDays == nil || *p.Similarity.LookbackDays <= 0 {
		return DefaultLookbackDays
	}
	return *p.Similarity.LookbackDays
}
