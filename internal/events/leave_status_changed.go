package events

import "time"

const LeaveLifecycleTopic = "college.leave.lifecycle.v1"

const (
	LeaveCreated       = "leave.created"
	LeaveStatusChanged = "leave.status_changed"
)

type LeaveStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	Department string    `json:"department"`
	LeaveType  string    `json:"leave_type"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	TotalDays  int       `json:"total_days"`
	ActorID    string    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
