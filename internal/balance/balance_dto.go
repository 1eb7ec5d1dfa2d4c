package balance

type SetTotalRequest struct {
	Total *int `json:"total" binding:"required,min=0"`
}

type BalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Used       int    `json:"used"`
	Total      int    `json:"total"`
	Remaining  int    `json:"remaining"`
}

// Change describes a status move of one leave request as seen by accounting.
type Change struct {
	EmployeeID  string
	LeaveType   string
	Days        int
	WasApproved bool
	IsApproved  bool
}
