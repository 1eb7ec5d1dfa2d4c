package balance

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureExists(ctx context.Context, employeeID, leaveType string, total int) error
	FindForUpdate(ctx context.Context, employeeID, leaveType string) (*LeaveBalance, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	FindByEmployees(ctx context.Context, employeeIDs []string) ([]LeaveBalance, error)
	UpdateAmounts(ctx context.Context, b *LeaveBalance) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureExists inserts a zero-usage row unless one is already there.
func (r *repository) EnsureExists(ctx context.Context, employeeID, leaveType string, total int) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&LeaveBalance{
			EmployeeID: employeeID,
			LeaveType:  leaveType,
			Total:      total,
			UpdatedAt:  time.Now().UTC(),
		}).Error
}

// FindForUpdate locks the row until the surrounding transaction ends.
func (r *repository) FindForUpdate(ctx context.Context, employeeID, leaveType string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type = ?", employeeID, leaveType).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) FindByEmployees(ctx context.Context, employeeIDs []string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	if len(employeeIDs) == 0 {
		return balances, nil
	}
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Find(&balances).Error
	return balances, err
}

func (r *repository) UpdateAmounts(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"used":       b.Used,
			"total":      b.Total,
			"updated_at": b.UpdatedAt,
		}).Error
}
