// Package approval defines the shared record lifecycle statuses.
package approval

import "strings"

// Status identifiers stored on daily and monthly records.
const (
	StatusPending  = 1
	StatusAccepted = 2
	StatusRejected = 3
)

const (
	DecisionAccepted = "Accepted"
	DecisionRejected = "Rejected"
)

// ParseDecision maps an approval request status string to a status id.
func ParseDecision(raw string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accepted", "accept", "approve", "approved":
		return StatusAccepted, true
	case "rejected", "reject":
		return StatusRejected, true
	default:
		return 0, false
	}
}

// Label returns the display name of a status id.
func Label(statusID int) string {
	switch statusID {
	case StatusPending:
		return "Pending"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further approval decision is expected.
func IsTerminal(statusID int) bool {
	return statusID == StatusAccepted || statusID == StatusRejected
}
