package leave

import (
	"context"
	"time"

	leaveerrors "go-leave/internal/leave/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindByDepartment(ctx context.Context, department string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	Transition(ctx context.Context, l *LeaveRequest, from Status) error
	AppendHistory(ctx context.Context, h *StatusHistory) error
	FindHistory(ctx context.Context, leaveRequestID string) ([]StatusHistory, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	EmployeeDepartment(ctx context.Context, employeeID string) (string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to tx. A nil tx keeps the current handle.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func orderedAttachments(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Where("employee_id = ?", employeeID).
		Order("request_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByDepartment(ctx context.Context, department string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Where("department = ?", department).
		Order("request_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Order("request_date DESC").
		Find(&leaves).Error
	return leaves, err
}

// Transition writes the review fields of l only while the stored status
// still equals from. Losing that race yields ErrInvalidStatusTransition.
func (r *repository) Transition(ctx context.Context, l *LeaveRequest, from Status) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", l.ID, from).
		Updates(map[string]any{
			"status":        l.Status,
			"comments":      l.Comments,
			"reviewed_by":   l.ReviewedBy,
			"reviewed_at":   l.ReviewedAt,
			"info_response": l.InfoResponse,
			"updated_at":    l.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leaveerrors.ErrInvalidStatusTransition
	}
	return nil
}

func (r *repository) AppendHistory(ctx context.Context, h *StatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) FindHistory(ctx context.Context, leaveRequestID string) ([]StatusHistory, error) {
	var history []StatusHistory
	err := r.db.WithContext(ctx).
		Where("leave_request_id = ?", leaveRequestID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	return history, err
}

// HasOverlappingPeriod locks the employee's active rows that intersect
// [startDate, endDate], so a concurrent create for the same period waits on
// them until the caller's transaction ends.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		Where("status NOT IN ?", []Status{StatusRejected, StatusCancelled}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

// EmployeeDepartment returns the department of the employee's latest request,
// or "" when they never filed one.
func (r *repository) EmployeeDepartment(ctx context.Context, employeeID string) (string, error) {
	var departments []string
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Order("request_date DESC").
		Limit(1).
		Pluck("department", &departments).Error
	if err != nil || len(departments) == 0 {
		return "", err
	}
	return departments[0], nil
}
