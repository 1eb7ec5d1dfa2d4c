package balance

import "time"

type LeaveBalance struct {
	ID         uint   `gorm:"primaryKey"`
	EmployeeID string `gorm:"type:varchar(64);not null;uniqueIndex:uq_leave_balance_employee_type"`
	LeaveType  string `gorm:"type:varchar(64);not null;uniqueIndex:uq_leave_balance_employee_type"`
	Used       int    `gorm:"not null;default:0"`
	Total      int    `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b LeaveBalance) Remaining() int {
	return b.Total - b.Used
}
