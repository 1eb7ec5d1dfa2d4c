package balance

import (
	"context"
	"strings"
	"time"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/domain"
	"go-leave/internal/shared/keylock"
	"go-leave/internal/shared/metrics"
	"go-leave/internal/shared/transaction"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, change Change) error
	Charge(ctx context.Context, tx *gorm.DB, employeeID, leaveType string, days int) error
	Release(ctx context.Context, tx *gorm.DB, employeeID, leaveType string, days int) error
	ListForEmployee(ctx context.Context, actor domain.Actor, employeeID string) ([]BalanceResponse, error)
	SetTotal(ctx context.Context, actor domain.Actor, employeeID, leaveType string, total int) (BalanceResponse, error)
	Utilization(ctx context.Context, employeeIDs []string) (used, total int, err error)
}

// DepartmentLookup resolves the department an employee files leave under.
// An empty result means the employee is unknown.
type DepartmentLookup interface {
	EmployeeDepartment(ctx context.Context, employeeID string) (string, error)
}

type service struct {
	tx          transaction.Manager
	repo        Repository
	departments DepartmentLookup
	quotas      map[string]int
	metrics     *metrics.Metrics
	locks       keylock.Striped
	logger      *zap.Logger
}

// NewService tracks only the leave types present in quotas.
func NewService(tx transaction.Manager, repo Repository, departments DepartmentLookup, quotas map[string]int, m *metrics.Metrics, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{tx: tx, repo: repo, departments: departments, quotas: quotas, metrics: m, logger: l}
}

// Apply charges on entering approved and releases on leaving it.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, change Change) error {
	switch {
	case change.IsApproved && !change.WasApproved:
		return s.Charge(ctx, tx, change.EmployeeID, change.LeaveType, change.Days)
	case change.WasApproved && !change.IsApproved:
		return s.Release(ctx, tx, change.EmployeeID, change.LeaveType, change.Days)
	default:
		return nil
	}
}

func (s *service) Charge(ctx context.Context, tx *gorm.DB, employeeID, leaveType string, days int) error {
	return s.adjust(ctx, tx, employeeID, leaveType, func(b *LeaveBalance) {
		used := b.Used + days
		if used > b.Total {
			s.logger.Warn("balance charge clamped at total",
				zap.String("employee_id", employeeID),
				zap.String("leave_type", b.LeaveType),
				zap.Int("requested_used", used),
				zap.Int("total", b.Total),
			)
			s.metrics.BalanceClamped(b.LeaveType)
			used = b.Total
		}
		b.Used = used
	})
}

func (s *service) Release(ctx context.Context, tx *gorm.DB, employeeID, leaveType string, days int) error {
	return s.adjust(ctx, tx, employeeID, leaveType, func(b *LeaveBalance) {
		b.Used = max(b.Used-days, 0)
	})
}

func (s *service) adjust(ctx context.Context, tx *gorm.DB, employeeID, leaveType string, mutate func(b *LeaveBalance)) error {
	leaveType, quota, tracked := s.resolve(leaveType)
	if !tracked {
		s.logger.Debug("balance untracked leave type", zap.String("leave_type", leaveType))
		return nil
	}

	unlock := s.locks.Lock(employeeID, leaveType)
	defer unlock()

	qtx := s.repo.WithTx(tx)
	if err := qtx.EnsureExists(ctx, employeeID, leaveType, quota); err != nil {
		s.logger.Error("balance ensure row failed", zap.String("employee_id", employeeID), zap.Error(err))
		return err
	}
	b, err := qtx.FindForUpdate(ctx, employeeID, leaveType)
	if err != nil {
		s.logger.Error("balance lock row failed", zap.String("employee_id", employeeID), zap.Error(err))
		return err
	}

	before := b.Used
	mutate(b)
	b.UpdatedAt = time.Now().UTC()
	if err := qtx.UpdateAmounts(ctx, b); err != nil {
		s.logger.Error("balance update failed", zap.String("employee_id", employeeID), zap.Error(err))
		return err
	}
	s.logger.Info("balance adjusted",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.Int("used_before", before),
		zap.Int("used", b.Used),
		zap.Int("total", b.Total),
	)
	return nil
}

func (s *service) ListForEmployee(ctx context.Context, actor domain.Actor, employeeID string) ([]BalanceResponse, error) {
	if err := s.authorizeRead(ctx, actor, employeeID); err != nil {
		return nil, err
	}

	var balances []LeaveBalance
	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		for leaveType, quota := range s.quotas {
			if err := qtx.EnsureExists(ctx, employeeID, leaveType, quota); err != nil {
				return err
			}
		}
		var err error
		balances, err = qtx.FindByEmployee(ctx, employeeID)
		return err
	})
	if err != nil {
		s.logger.Error("list balances failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	out := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		if _, _, tracked := s.resolve(b.LeaveType); !tracked {
			continue
		}
		out = append(out, mapToResponse(b))
	}
	return out, nil
}

// authorizeRead lets employees see their own balances and reviewers see
// those of employees filing in their department.
func (s *service) authorizeRead(ctx context.Context, actor domain.Actor, employeeID string) error {
	if employeeID == actor.EmployeeID || actor.IsAdmin() {
		return nil
	}
	if !actor.IsReviewer() {
		return balanceerrors.ErrBalanceForbidden
	}
	department, err := s.departments.EmployeeDepartment(ctx, employeeID)
	if err != nil {
		s.logger.Error("balance department lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return err
	}
	if !actor.CanReview(department) {
		s.logger.Warn("balance read forbidden",
			zap.String("employee_id", employeeID),
			zap.String("department", department),
			zap.String("actor_id", actor.EmployeeID),
		)
		return balanceerrors.ErrBalanceForbidden
	}
	return nil
}

func (s *service) SetTotal(ctx context.Context, actor domain.Actor, employeeID, leaveType string, total int) (BalanceResponse, error) {
	if !actor.IsAdmin() {
		return BalanceResponse{}, balanceerrors.ErrBalanceForbidden
	}
	if total < 0 {
		return BalanceResponse{}, balanceerrors.ErrNegativeTotal
	}
	leaveType, quota, tracked := s.resolve(leaveType)
	if !tracked {
		return BalanceResponse{}, balanceerrors.ErrUntrackedLeaveType
	}

	var result LeaveBalance
	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		unlock := s.locks.Lock(employeeID, leaveType)
		defer unlock()

		qtx := s.repo.WithTx(tx)
		if err := qtx.EnsureExists(ctx, employeeID, leaveType, quota); err != nil {
			return err
		}
		b, err := qtx.FindForUpdate(ctx, employeeID, leaveType)
		if err != nil {
			return err
		}
		if total < b.Used {
			return balanceerrors.ErrTotalBelowUsed
		}
		b.Total = total
		b.UpdatedAt = time.Now().UTC()
		if err := qtx.UpdateAmounts(ctx, b); err != nil {
			return err
		}
		result = *b
		return nil
	})
	if err != nil {
		s.logger.Warn("set balance total failed",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", leaveType),
			zap.Int("total", total),
			zap.Error(err),
		)
		return BalanceResponse{}, err
	}

	s.logger.Info("set balance total success",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.Int("total", total),
		zap.String("actor_id", actor.EmployeeID),
	)
	return mapToResponse(result), nil
}

// Utilization sums used and total over the tracked balances of employeeIDs.
func (s *service) Utilization(ctx context.Context, employeeIDs []string) (int, int, error) {
	var balances []LeaveBalance
	err := s.tx.Read(ctx, func() error {
		var err error
		balances, err = s.repo.FindByEmployees(ctx, employeeIDs)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	used, total := 0, 0
	for _, b := range balances {
		if _, _, tracked := s.resolve(b.LeaveType); !tracked {
			continue
		}
		used += b.Used
		total += b.Total
	}
	return used, total, nil
}

// resolve maps leaveType onto its configured spelling and default quota.
func (s *service) resolve(leaveType string) (string, int, bool) {
	if quota, ok := s.quotas[leaveType]; ok {
		return leaveType, quota, true
	}
	for name, quota := range s.quotas {
		if strings.EqualFold(name, leaveType) {
			return name, quota, true
		}
	}
	return leaveType, 0, false
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		LeaveType:  b.LeaveType,
		Used:       b.Used,
		Total:      b.Total,
		Remaining:  b.Remaining(),
	}
}
