package pipeline

import (
	"fmt"
	"strconv"

	"github.com/knightmare-26/jira-cli/internal/action"
)

// Rejection reasons.
const (
	ReasonNotAllowed = "action type not allowed by policy"
)

// Policy is the part of the policy the filter consults.
type Policy interface {
	IsActionTypeAllowed(actionType string) bool
	SimilarityThreshold() float64
}

// Rejection records why an action was dropped.
type Rejection struct {
	Action action.Action
	Reason string
}

// Filter keeps the actions the policy admits, in their original order, and returns one
// rejection per dropped action. use_existing_ticket additionally needs a similarity at or
// above the policy threshold. Malformed actions are always dropped.
func Filter(actions []action.Action, p Policy) ([]action.Action, []Rejection) {
	kept := make([]action.Action, 0, len(actions))
	var rejected []Rejection
	for _, a := range actions {
		if reason, ok := admit(a, p); !ok {
			rejected = append(rejected, Rejection{Action: a, Reason: reason})
			continue
		}
		kept = append(kept, a)
	}
	return kept, rejected
}

func admit(a action.Action, p Policy) (string, bool) {
	if !p.IsActionTypeAllowed(a.Kind()) {
		return ReasonNotAllowed, false
	}
	switch v := a.(type) {
	case action.Malformed:
		return fmt.Sprintf("malformed %s action: %v", v.Type, v.Err), false
	case action.UseExistingTicket:
		threshold := p.SimilarityThreshold()
		if v.Similarity < threshold {
			return fmt.Sprintf("similarity %s below threshold %s", formatScore(v.Similarity), formatScore(threshold)), false
		}
	}
	return "", true
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
