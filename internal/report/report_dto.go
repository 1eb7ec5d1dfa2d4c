package report

import "go-leave/internal/leave"

type DepartmentStats struct {
	Department              string               `json:"department"`
	From                    string               `json:"from,omitempty"`
	To                      string               `json:"to,omitempty"`
	Total                   int                  `json:"total"`
	Counts                  map[leave.Status]int `json:"counts"`
	Percentages             map[leave.Status]int `json:"percentages"`
	OnLeaveToday            int                  `json:"on_leave_today"`
	UpcomingLeaves          int                  `json:"upcoming_leaves"`
	LeaveUtilization        int                  `json:"leave_utilization"`
	AverageApprovedDuration float64              `json:"average_approved_duration"`
	ByLeaveType             map[string]int       `json:"by_leave_type"`
	AsOf                    string               `json:"as_of"`
}

// StatsQuery is bound from query params on the stats endpoint.
type StatsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type CalendarQuery struct {
	Date       string `form:"date" binding:"required"`
	Department string `form:"department"`
}

type CalendarEntry struct {
	ID           string       `json:"id"`
	EmployeeID   string       `json:"employee_id"`
	EmployeeName string       `json:"employee_name"`
	Department   string       `json:"department"`
	LeaveType    string       `json:"leave_type"`
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	Status       leave.Status `json:"status"`
}

type RequestsReport struct {
	Items   []leave.LeaveResponse `json:"items"`
	Summary leave.Summary         `json:"summary"`
}
