// Package policy decides which proposed actions and workflow moves are permitted.
// A missing or broken policy file denies everything.
package policy

// Default similarity settings used when the policy leaves them unset.
const (
	DefaultMinSimilarity = 0.75
	DefaultLookbackDays  = 60
)

// Policy is the YAML policy document.
type Policy struct {
	// AllowedActions lists the action type tags that may be proposed.
	AllowedActions []string `yaml:"allowed_actions,omitempty" json:"allowed_actions,omitempty"`
	// AllowedTransitions maps a current state to the target states reachable from it.
	AllowedTransitions map[string][]string `yaml:"allowed_transitions,omitempty" json:"allowed_transitions,omitempty"`
	// BlockedStates lists states that are frozen.
	BlockedStates []string `yaml:"blocked_states,omitempty" json:"blocked_states,omitempty"`
	// Similarity tunes duplicate detection.
	Similarity Similarity `yaml:"similarity,omitempty" json:"similarity,omitempty"`
}

// Similarity holds the optional duplicate-detection settings.
type Similarity struct {
	MinSimilarity *float64 `yaml:"min_similarity,omitempty" json:"min_similarity,omitempty"`
	LookbackDays  *int     `yaml:"lookback_days,omitempty" json:"lookback_days,omitempty"`
}

// Empty returns the deny-all policy.
func Empty() *Policy {
	return &Policy{}
}
