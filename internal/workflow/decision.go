package workflow

import "strings"

// Decision is a parsed user response at a confirmation prompt.
type Decision int

const (
	DecisionInvalid Decision = iota
	DecisionApprove
	DecisionReject
	DecisionCancel
)

func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "approve"
	case DecisionReject:
		return "reject"
	case DecisionCancel:
		return "cancel"
	default:
		return "invalid"
	}
}

// ParseDecision maps free text to a decision. Matching is case-insensitive
// after trimming; anything outside the fixed vocabulary is DecisionInvalid,
// which callers treat as "ask again". No input ever defaults to a decision.
func ParseDecision(input string) Decision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y":
		return DecisionApprove
	case "no", "n":
		return DecisionReject
	case "cancel", "c":
		return DecisionCancel
	default:
		return DecisionInvalid
	}
}

// ParseYesNo is the export-offer variant: only yes/no are meaningful there,
// so "cancel" is just another invalid answer.
func ParseYesNo(input string) Decision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y":
		return DecisionApprove
	case "no", "n":
		return DecisionReject
	default:
		return DecisionInvalid
	}
}
