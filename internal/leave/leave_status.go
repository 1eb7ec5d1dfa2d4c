package leave

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
	StatusInfoNeeded Status = "info-needed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusInfoNeeded}

var transitions = map[Status][]Status{
	StatusPending:    {StatusApproved, StatusRejected, StatusInfoNeeded, StatusCancelled},
	StatusInfoNeeded: {StatusPending},
}

// CanTransition reports whether a request in from may move to to. Approved,
// rejected and cancelled have no outgoing edges.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// ParseStatus accepts the canonical value in any case, plus "info_needed".
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
	return s, s.Valid()
}
