package report

import (
	"context"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/leave"
	reporterrors "go-leave/internal/report/errors"
	"go-leave/internal/shared/transaction"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LeaveSource is satisfied by leave.Repository.
type LeaveSource interface {
	FindByDepartment(ctx context.Context, department string) ([]leave.LeaveRequest, error)
	FindAll(ctx context.Context) ([]leave.LeaveRequest, error)
}

// UtilizationSource is satisfied by balance.Service.
type UtilizationSource interface {
	Utilization(ctx context.Context, employeeIDs []string) (used, total int, err error)
}

type Service interface {
	DepartmentStats(ctx context.Context, actor domain.Actor, department string, from, to time.Time) (DepartmentStats, error)
	InvalidateDepartment(ctx context.Context, department string) error
	Requests(ctx context.Context, actor domain.Actor, spec leave.FilterSpec) (RequestsReport, error)
	Calendar(ctx context.Context, actor domain.Actor, department string, day time.Time) ([]CalendarEntry, error)
	ExportXLSX(ctx context.Context, actor domain.Actor, spec leave.FilterSpec) ([]byte, error)
}

type service struct {
	tx       transaction.Manager
	leaves   LeaveSource
	balances UtilizationSource
	cache    statsCache
	sf       *singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(tx transaction.Manager, leaves LeaveSource, balances UtilizationSource, rdb redis.Cmdable, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		tx:       tx,
		leaves:   leaves,
		balances: balances,
		cache:    statsCache{rdb: rdb, ttl: ttl},
		sf:       &singleflight.Group{},
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) DepartmentStats(ctx context.Context, actor domain.Actor, department string, from, to time.Time) (DepartmentStats, error) {
	if department == "" {
		return DepartmentStats{}, reporterrors.ErrDepartmentRequired
	}
	if !actor.CanReview(department) {
		s.logger.Warn("department stats forbidden",
			zap.String("department", department),
			zap.String("actor_id", actor.EmployeeID),
		)
		return DepartmentStats{}, reporterrors.ErrReportForbidden
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return DepartmentStats{}, reporterrors.ErrInvalidDateRange
	}

	fromStr, toStr := formatBound(from), formatBound(to)
	field := statsField(fromStr, toStr)

	cached, err := s.cache.get(ctx, department, field)
	if err != nil {
		s.logger.Warn("department stats cache read failed", zap.String("department", department), zap.Error(err))
	}
	if cached != nil {
		return *cached, nil
	}

	v, err, _ := s.sf.Do(StatsKey(department)+":"+field, func() (interface{}, error) {
		var requests []leave.LeaveRequest
		err := s.tx.Read(ctx, func() error {
			var err error
			requests, err = s.leaves.FindByDepartment(ctx, department)
			return err
		})
		if err != nil {
			return nil, err
		}
		// utilization covers everyone who ever filed in the department,
		// balance rows carry no department of their own
		used, total, err := s.balances.Utilization(ctx, employeeIDs(requests))
		if err != nil {
			return nil, err
		}

		requests = leave.Filter(requests, leave.FilterSpec{From: from, To: to})
		stats := ComputeStats(department, requests, s.now().UTC(), used, total)
		stats.From, stats.To = fromStr, toStr

		if err := s.cache.set(ctx, department, field, stats); err != nil {
			s.logger.Warn("department stats cache write failed", zap.String("department", department), zap.Error(err))
		}
		return stats, nil
	})
	if err != nil {
		s.logger.Error("department stats failed", zap.String("department", department), zap.Error(err))
		return DepartmentStats{}, err
	}
	return v.(DepartmentStats), nil
}

func (s *service) InvalidateDepartment(ctx context.Context, department string) error {
	if err := s.cache.invalidate(ctx, department); err != nil {
		s.logger.Error("department stats invalidate failed", zap.String("department", department), zap.Error(err))
		return err
	}
	s.logger.Debug("department stats invalidated", zap.String("department", department))
	return nil
}

func (s *service) Requests(ctx context.Context, actor domain.Actor, spec leave.FilterSpec) (RequestsReport, error) {
	requests, err := s.scoped(ctx, actor, spec.Department)
	if err != nil {
		return RequestsReport{}, err
	}
	filtered := leave.Filter(requests, spec)
	return RequestsReport{
		Items:   leave.ToListResponse(filtered),
		Summary: leave.Summarize(filtered),
	}, nil
}

func (s *service) Calendar(ctx context.Context, actor domain.Actor, department string, day time.Time) ([]CalendarEntry, error) {
	requests, err := s.scoped(ctx, actor, department)
	if err != nil {
		return nil, err
	}
	covering := leave.OnDate(requests, day)

	entries := make([]CalendarEntry, 0, len(covering))
	for _, r := range covering {
		if r.Status == leave.StatusRejected || r.Status == leave.StatusCancelled {
			continue
		}
		entries = append(entries, CalendarEntry{
			ID:           r.ID,
			EmployeeID:   r.EmployeeID,
			EmployeeName: r.EmployeeName,
			Department:   r.Department,
			LeaveType:    r.LeaveType,
			StartDate:    r.StartDate.Format(leave.DateLayout),
			EndDate:      r.EndDate.Format(leave.DateLayout),
			Status:       r.Status,
		})
	}
	return entries, nil
}

func (s *service) ExportXLSX(ctx context.Context, actor domain.Actor, spec leave.FilterSpec) ([]byte, error) {
	requests, err := s.scoped(ctx, actor, spec.Department)
	if err != nil {
		return nil, err
	}
	filtered := leave.Filter(requests, spec)
	out, err := BuildWorkbook(filtered)
	if err != nil {
		s.logger.Error("export leave workbook failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("export leave workbook success",
		zap.String("actor_id", actor.EmployeeID),
		zap.Int("rows", len(filtered)),
	)
	return out, nil
}

// scoped loads one department for its reviewers, or every department for
// admins when department is empty.
func (s *service) scoped(ctx context.Context, actor domain.Actor, department string) ([]leave.LeaveRequest, error) {
	if department == "" && !actor.IsAdmin() {
		if !actor.IsReviewer() {
			return nil, reporterrors.ErrReportForbidden
		}
		department = actor.Department
	}
	if department != "" && !actor.CanReview(department) {
		s.logger.Warn("report forbidden",
			zap.String("department", department),
			zap.String("actor_id", actor.EmployeeID),
		)
		return nil, reporterrors.ErrReportForbidden
	}

	var requests []leave.LeaveRequest
	err := s.tx.Read(ctx, func() error {
		var err error
		if department == "" {
			requests, err = s.leaves.FindAll(ctx)
		} else {
			requests, err = s.leaves.FindByDepartment(ctx, department)
		}
		return err
	})
	if err != nil {
		s.logger.Error("report load requests failed", zap.String("department", department), zap.Error(err))
		return nil, err
	}
	return requests, nil
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(leave.DateLayout)
}
