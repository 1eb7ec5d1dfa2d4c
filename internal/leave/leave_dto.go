package leave

import (
	"strings"

	leaveerrors "go-leave/internal/leave/errors"
)

type AttachmentInput struct {
	Name      string `json:"name" binding:"required,max=255"`
	Location  string `json:"location" binding:"required,max=1024"`
	MediaType string `json:"media_type" binding:"max=128"`
}

type CreateLeaveRequest struct {
	LeaveType          string            `json:"leave_type" binding:"required"`
	StartDate          string            `json:"start_date" binding:"required"`
	EndDate            string            `json:"end_date" binding:"required"`
	Reason             string            `json:"reason" binding:"required"`
	ContactInfo        string            `json:"contact_info" binding:"max=255"`
	SubstituteEmployee string            `json:"substitute_employee" binding:"max=255"`
	Attachments        []AttachmentInput `json:"attachments" binding:"omitempty,max=10,dive"`
}

type ApproveLeaveRequest struct {
	Comments string `json:"comments"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RequestInfoRequest struct {
	Question string `json:"question" binding:"required"`
}

type RespondLeaveRequest struct {
	Response string `json:"response" binding:"required"`
}

// ListQuery is bound from query params on list endpoints.
type ListQuery struct {
	Department string `form:"department"`
	LeaveType  string `form:"leave_type"`
	Status     string `form:"status"`
	From       string `form:"from"`
	To         string `form:"to"`
	Search     string `form:"q"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=request_date start_date employee_name total_days"`
	Order      string `form:"order" binding:"omitempty,oneof=asc desc"`
}

type AttachmentResponse struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	MediaType string `json:"media_type,omitempty"`
}

type LeaveResponse struct {
	ID                 string               `json:"id"`
	EmployeeID         string               `json:"employee_id"`
	EmployeeName       string               `json:"employee_name"`
	Department         string               `json:"department"`
	Position           string               `json:"position,omitempty"`
	LeaveType          string               `json:"leave_type"`
	StartDate          string               `json:"start_date"`
	EndDate            string               `json:"end_date"`
	TotalDays          int                  `json:"total_days"`
	Reason             string               `json:"reason"`
	Status             Status               `json:"status"`
	RequestDate        string               `json:"request_date"`
	Comments           *string              `json:"comments,omitempty"`
	ReviewedBy         *string              `json:"reviewed_by,omitempty"`
	ReviewedAt         *string              `json:"reviewed_at,omitempty"`
	InfoResponse       *string              `json:"info_response,omitempty"`
	ContactInfo        string               `json:"contact_info,omitempty"`
	SubstituteEmployee string               `json:"substitute_employee,omitempty"`
	Attachments        []AttachmentResponse `json:"attachments"`
}

type HistoryResponse struct {
	FromStatus Status `json:"from_status,omitempty"`
	ToStatus   Status `json:"to_status"`
	ActorID    string `json:"actor_id"`
	Note       string `json:"note,omitempty"`
	At         string `json:"at"`
}

// Spec converts query params into a FilterSpec. "all" means no constraint.
func (q ListQuery) Spec() (FilterSpec, error) {
	spec := FilterSpec{
		Department: unlessAll(q.Department),
		LeaveType:  unlessAll(q.LeaveType),
		Search:     strings.TrimSpace(q.Search),
		SortBy:     q.SortBy,
		SortDesc:   q.Order == "desc",
	}
	if raw := unlessAll(q.Status); raw != "" {
		st, ok := ParseStatus(raw)
		if !ok {
			return FilterSpec{}, leaveerrors.ErrInvalidStatus
		}
		spec.Status = st
	}
	var err error
	if q.From != "" {
		if spec.From, err = ParseDate(q.From); err != nil {
			return FilterSpec{}, leaveerrors.ErrInvalidDateFormat
		}
	}
	if q.To != "" {
		if spec.To, err = ParseDate(q.To); err != nil {
			return FilterSpec{}, leaveerrors.ErrInvalidDateFormat
		}
	}
	if !spec.From.IsZero() && !spec.To.IsZero() && spec.From.After(spec.To) {
		return FilterSpec{}, leaveerrors.ErrInvalidDateRange
	}
	return spec, nil
}

func unlessAll(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
