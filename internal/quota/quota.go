// Package quota decides whether a caller may create another quiz.
package quota

import "fmt"

// DefaultGuestLimit is how many quizzes a guest may own.
const DefaultGuestLimit = 2

const TrialLimitMessage = "Free trial limit reached. Create an account to make more quizzes."

type Decision struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"` // -1 when unlimited
	Reason    string `json:"reason,omitempty"`
}

// Check is pure: guests may own up to limit quizzes, everyone else is
// unlimited.
func Check(isAnonymous bool, currentCount int64, limit int) Decision {
	if !isAnonymous {
		return Decision{Allowed: true, Remaining: -1}
	}
	if limit < 0 {
		limit = 0
	}
	remaining := int64(limit) - currentCount
	if remaining <= 0 {
		return Decision{Allowed: false, Remaining: 0, Reason: TrialLimitMessage}
	}
	return Decision{Allowed: true, Remaining: int(remaining)}
}

func (d Decision) String() string {
	if d.Remaining < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("allowed=%t remaining=%d", d.Allowed, d.Remaining)
}
