package leave

import (
	"time"
)

const DateLayout = "2006-01-02"

type LeaveRequest struct {
	ID                 string            `gorm:"type:char(36);primaryKey"`
	EmployeeID         string            `gorm:"type:varchar(64);not null;index:idx_leave_employee_period"`
	EmployeeName       string            `gorm:"type:varchar(255);not null"`
	Department         string            `gorm:"type:varchar(128);not null;index:idx_leave_department_status"`
	Position           string            `gorm:"type:varchar(128)"`
	LeaveType          string            `gorm:"type:varchar(64);not null"`
	StartDate          time.Time         `gorm:"type:date;not null;index:idx_leave_employee_period"`
	EndDate            time.Time         `gorm:"type:date;not null;index:idx_leave_employee_period"`
	TotalDays          int               `gorm:"not null"`
	Reason             string            `gorm:"type:text;not null"`
	Status             Status            `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_department_status"`
	Comments           *string           `gorm:"type:text"`
	ReviewedBy         *string           `gorm:"type:varchar(64)"`
	ReviewedAt         *time.Time
	InfoResponse       *string           `gorm:"type:text"`
	ContactInfo        string            `gorm:"type:varchar(255)"`
	SubstituteEmployee string            `gorm:"type:varchar(255)"`
	Attachments        []LeaveAttachment `gorm:"foreignKey:LeaveRequestID;constraint:OnDelete:CASCADE"`
	RequestDate        time.Time         `gorm:"not null;index"`
	UpdatedAt          time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

type LeaveAttachment struct {
	ID             uint   `gorm:"primaryKey"`
	LeaveRequestID string `gorm:"type:char(36);not null;index"`
	Position       int    `gorm:"not null"`
	Name           string `gorm:"type:varchar(255);not null"`
	Location       string `gorm:"type:varchar(1024);not null"`
	MediaType      string `gorm:"type:varchar(128)"`
}

func (LeaveAttachment) TableName() string {
	return "leave_attachments"
}

type StatusHistory struct {
	ID             uint   `gorm:"primaryKey"`
	LeaveRequestID string `gorm:"type:char(36);not null;index"`
	FromStatus     Status `gorm:"type:varchar(20)"`
	ToStatus       Status `gorm:"type:varchar(20);not null"`
	ActorID        string `gorm:"type:varchar(64);not null"`
	Note           string `gorm:"type:text"`
	CreatedAt      time.Time
}

func (StatusHistory) TableName() string {
	return "leave_status_history"
}

// Duration counts calendar days covered by [start, end], both ends included.
func Duration(start, end time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)
	return int(end.Sub(start).Hours()/24) + 1
}

// Covers reports whether day falls inside the request interval.
func (l LeaveRequest) Covers(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(truncateDay(l.StartDate)) && !d.After(truncateDay(l.EndDate))
}

// Overlaps reports whether the request interval intersects [from, to]. A zero
// bound is open.
func (l LeaveRequest) Overlaps(from, to time.Time) bool {
	if !from.IsZero() && truncateDay(l.EndDate).Before(truncateDay(from)) {
		return false
	}
	if !to.IsZero() && truncateDay(l.StartDate).After(truncateDay(to)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}
