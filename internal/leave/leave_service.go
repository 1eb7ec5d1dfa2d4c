package leave

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go-leave/internal/balance"
	"go-leave/internal/domain"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/keylock"
	"go-leave/internal/shared/metrics"
	"go-leave/internal/shared/transaction"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minReasonLength = 5
	maxReasonLength = 500
)

// BalanceAccounting adjusts quota usage inside the caller's transaction.
type BalanceAccounting interface {
	Apply(ctx context.Context, tx *gorm.DB, change balance.Change) error
}

// EventRecorder stages a lifecycle event inside the caller's transaction.
type EventRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, event events.LeaveStatusChangedEvent) error
}

type Options struct {
	LeaveTypes []string
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	Get(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	ListMine(ctx context.Context, actor domain.Actor, spec FilterSpec) ([]LeaveResponse, error)
	ListByDepartment(ctx context.Context, actor domain.Actor, department string, spec FilterSpec) ([]LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id, comments string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error)
	RequestInfo(ctx context.Context, actor domain.Actor, id, question string) (LeaveResponse, error)
	Respond(ctx context.Context, actor domain.Actor, id, response string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	History(ctx context.Context, actor domain.Actor, id string) ([]HistoryResponse, error)
}

type service struct {
	tx         transaction.Manager
	repo       Repository
	balances   BalanceAccounting
	recorder   EventRecorder
	leaveTypes []string
	metrics    *metrics.Metrics
	now        func() time.Time
	creates    keylock.Striped
	logger     *zap.Logger
}

func NewService(tx transaction.Manager, repo Repository, balances BalanceAccounting, recorder EventRecorder, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:         tx,
		repo:       repo,
		balances:   balances,
		recorder:   recorder,
		leaveTypes: opts.LeaveTypes,
		metrics:    opts.Metrics,
		now:        now,
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("employee_id", actor.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if actor.EmployeeID == "" {
		return LeaveResponse{}, leaveerrors.ErrInvalidActor
	}
	leaveType, startDate, endDate, err := s.validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	l := &LeaveRequest{
		ID:                 uuid.NewString(),
		EmployeeID:         actor.EmployeeID,
		EmployeeName:       actor.Name,
		Department:         actor.Department,
		Position:           actor.Position,
		LeaveType:          leaveType,
		StartDate:          startDate,
		EndDate:            endDate,
		TotalDays:          Duration(startDate, endDate),
		Reason:             strings.TrimSpace(req.Reason),
		Status:             StatusPending,
		ContactInfo:        strings.TrimSpace(req.ContactInfo),
		SubstituteEmployee: strings.TrimSpace(req.SubstituteEmployee),
		RequestDate:        now,
		UpdatedAt:          now,
	}
	for i, a := range req.Attachments {
		l.Attachments = append(l.Attachments, LeaveAttachment{
			LeaveRequestID: l.ID,
			Position:       i,
			Name:           strings.TrimSpace(a.Name),
			Location:       strings.TrimSpace(a.Location),
			MediaType:      a.MediaType,
		})
	}

	// the overlap check and insert run one at a time per employee
	unlock := s.creates.Lock(l.EmployeeID)
	defer unlock()

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		overlap, err := qtx.HasOverlappingPeriod(ctx, l.EmployeeID, l.StartDate, l.EndDate)
		if err != nil {
			return err
		}
		if overlap {
			return leaveerrors.ErrLeaveOverlap
		}

		// attachment rows get fresh ids on every attempt
		for i := range l.Attachments {
			l.Attachments[i].ID = 0
		}
		if err := qtx.Create(ctx, l); err != nil {
			return err
		}
		if err := qtx.AppendHistory(ctx, &StatusHistory{
			LeaveRequestID: l.ID,
			ToStatus:       StatusPending,
			ActorID:        actor.EmployeeID,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, lifecycleEvent(events.LeaveCreated, l, "", actor.EmployeeID, "", now))
	})
	if err != nil {
		s.logFailure("create leave failed", err, zap.String("employee_id", actor.EmployeeID))
		return LeaveResponse{}, err
	}

	s.metrics.Transition("", string(StatusPending))
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID),
		zap.String("employee_id", l.EmployeeID),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) validateCreateRequest(req CreateLeaveRequest) (string, time.Time, time.Time, error) {
	leaveType, ok := s.resolveLeaveType(req.LeaveType)
	if !ok {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}

	startDate, err := ParseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := ParseDate(strings.TrimSpace(req.EndDate))
	if err != nil {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}

	n := utf8.RuneCountInString(strings.TrimSpace(req.Reason))
	if n < minReasonLength || n > maxReasonLength {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidReason
	}

	for _, a := range req.Attachments {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Location) == "" {
			return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidAttachment
		}
	}
	return leaveType, startDate, endDate, nil
}

// resolveLeaveType returns the configured spelling of raw.
func (s *service) resolveLeaveType(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, t := range s.leaveTypes {
		if strings.EqualFold(t, raw) {
			return t, true
		}
	}
	return "", false
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := authorizeRead(actor, l); err != nil {
		s.logger.Warn("get leave forbidden", zap.String("leave_id", id), zap.String("actor_id", actor.EmployeeID))
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) ListMine(ctx context.Context, actor domain.Actor, spec FilterSpec) ([]LeaveResponse, error) {
	if actor.EmployeeID == "" {
		return nil, leaveerrors.ErrInvalidActor
	}
	var leaves []LeaveRequest
	err := s.tx.Read(ctx, func() error {
		var err error
		leaves, err = s.repo.FindByEmployee(ctx, actor.EmployeeID)
		return err
	})
	if err != nil {
		s.logFailure("list own leaves failed", err, zap.String("employee_id", actor.EmployeeID))
		return nil, err
	}
	return ToListResponse(Filter(leaves, spec)), nil
}

func (s *service) ListByDepartment(ctx context.Context, actor domain.Actor, department string, spec FilterSpec) ([]LeaveResponse, error) {
	if err := authorizeReview(actor, department); err != nil {
		s.logger.Warn("list department leaves forbidden",
			zap.String("department", department),
			zap.String("actor_id", actor.EmployeeID),
		)
		return nil, err
	}
	var leaves []LeaveRequest
	err := s.tx.Read(ctx, func() error {
		var err error
		leaves, err = s.repo.FindByDepartment(ctx, department)
		return err
	})
	if err != nil {
		s.logFailure("list department leaves failed", err, zap.String("department", department))
		return nil, err
	}
	spec.Department = department
	return ToListResponse(Filter(leaves, spec)), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id, comments string) (LeaveResponse, error) {
	comments = strings.TrimSpace(comments)
	return s.transition(ctx, actor, id, transitionCmd{
		to:     StatusApproved,
		review: true,
		note:   comments,
		apply: func(l *LeaveRequest, now time.Time) {
			if comments != "" {
				l.Comments = &comments
			}
			markReviewed(l, actor, now)
		},
	})
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		s.logger.Warn("reject leave without reason", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, actor, id, transitionCmd{
		to:     StatusRejected,
		review: true,
		note:   reason,
		apply: func(l *LeaveRequest, now time.Time) {
			l.Comments = &reason
			markReviewed(l, actor, now)
		},
	})
}

func (s *service) RequestInfo(ctx context.Context, actor domain.Actor, id, question string) (LeaveResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		s.logger.Warn("request info without question", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrQuestionRequired
	}
	return s.transition(ctx, actor, id, transitionCmd{
		to:     StatusInfoNeeded,
		review: true,
		note:   question,
		apply: func(l *LeaveRequest, now time.Time) {
			l.Comments = &question
			markReviewed(l, actor, now)
		},
	})
}

func (s *service) Respond(ctx context.Context, actor domain.Actor, id, response string) (LeaveResponse, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return LeaveResponse{}, leaveerrors.ErrResponseRequired
	}
	return s.transition(ctx, actor, id, transitionCmd{
		to:   StatusPending,
		note: response,
		apply: func(l *LeaveRequest, _ time.Time) {
			l.InfoResponse = &response
		},
	})
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, transitionCmd{to: StatusCancelled})
}

func (s *service) History(ctx context.Context, actor domain.Actor, id string) ([]HistoryResponse, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(actor, l); err != nil {
		return nil, err
	}
	var history []StatusHistory
	err = s.tx.Read(ctx, func() error {
		var err error
		history, err = s.repo.FindHistory(ctx, id)
		return err
	})
	if err != nil {
		s.logFailure("leave history failed", err, zap.String("leave_id", id))
		return nil, err
	}
	out := make([]HistoryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, HistoryResponse{
			FromStatus: h.FromStatus,
			ToStatus:   h.ToStatus,
			ActorID:    h.ActorID,
			Note:       h.Note,
			At:         h.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

type transitionCmd struct {
	to Status
	// review marks reviewer actions; the rest are owner actions.
	review bool
	note   string
	apply  func(l *LeaveRequest, now time.Time)
}

func (s *service) transition(ctx context.Context, actor domain.Actor, id string, cmd transitionCmd) (LeaveResponse, error) {
	s.logger.Debug("transition leave status requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("target_status", string(cmd.to)),
	)

	if actor.EmployeeID == "" {
		return LeaveResponse{}, leaveerrors.ErrInvalidActor
	}
	if cmd.review && !actor.IsReviewer() {
		s.logger.Warn("transition leave status forbidden",
			zap.String("leave_id", id),
			zap.String("role", actor.Role),
		)
		return LeaveResponse{}, leaveerrors.ErrReviewerRequired
	}

	var (
		result LeaveRequest
		from   Status
	)
	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveNotFound
			}
			return err
		}
		if cmd.review {
			if err := authorizeReview(actor, l.Department); err != nil {
				return err
			}
		} else if l.EmployeeID != actor.EmployeeID {
			return leaveerrors.ErrNotOwner
		}

		from = l.Status
		if !CanTransition(from, cmd.to) {
			return leaveerrors.ErrInvalidStatusTransition
		}

		now := s.now().UTC()
		l.Status = cmd.to
		l.UpdatedAt = now
		if cmd.apply != nil {
			cmd.apply(l, now)
		}

		if err := qtx.Transition(ctx, l, from); err != nil {
			return err
		}
		if err := qtx.AppendHistory(ctx, &StatusHistory{
			LeaveRequestID: l.ID,
			FromStatus:     from,
			ToStatus:       cmd.to,
			ActorID:        actor.EmployeeID,
			Note:           cmd.note,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		if err := s.balances.Apply(ctx, tx, balance.Change{
			EmployeeID:  l.EmployeeID,
			LeaveType:   l.LeaveType,
			Days:        l.TotalDays,
			WasApproved: from == StatusApproved,
			IsApproved:  cmd.to == StatusApproved,
		}); err != nil {
			return err
		}
		if err := s.recorder.Record(ctx, tx, lifecycleEvent(events.LeaveStatusChanged, l, from, actor.EmployeeID, cmd.note, now)); err != nil {
			return err
		}

		result = *l
		return nil
	})
	if err != nil {
		if errors.Is(err, leaveerrors.ErrInvalidStatusTransition) {
			s.metrics.InvalidTransition(string(from), string(cmd.to))
		}
		s.logFailure("transition leave status failed", err,
			zap.String("leave_id", id),
			zap.String("from_status", string(from)),
			zap.String("to_status", string(cmd.to)),
		)
		return LeaveResponse{}, err
	}

	s.metrics.Transition(string(from), string(cmd.to))
	s.logger.Info("transition leave status success",
		zap.String("leave_id", id),
		zap.String("from_status", string(from)),
		zap.String("status", string(cmd.to)),
	)
	return mapToResponse(result), nil
}

func (s *service) find(ctx context.Context, id string) (*LeaveRequest, error) {
	var l *LeaveRequest
	err := s.tx.Read(ctx, func() error {
		var err error
		l, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		s.logFailure("find leave failed", err, zap.String("leave_id", id))
		return nil, err
	}
	return l, nil
}

// logFailure reports client-side failures at warn and everything else at error.
func (s *service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
		s.logger.Warn(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

func authorizeRead(actor domain.Actor, l *LeaveRequest) error {
	if actor.EmployeeID != "" && l.EmployeeID == actor.EmployeeID {
		return nil
	}
	if actor.CanReview(l.Department) {
		return nil
	}
	if actor.IsReviewer() {
		return leaveerrors.ErrDepartmentForbidden
	}
	return leaveerrors.ErrNotOwner
}

func authorizeReview(actor domain.Actor, department string) error {
	if !actor.IsReviewer() {
		return leaveerrors.ErrReviewerRequired
	}
	if !actor.CanReview(department) {
		return leaveerrors.ErrDepartmentForbidden
	}
	return nil
}

func markReviewed(l *LeaveRequest, actor domain.Actor, now time.Time) {
	reviewer := actor.EmployeeID
	l.ReviewedBy = &reviewer
	l.ReviewedAt = &now
}

func lifecycleEvent(eventType string, l *LeaveRequest, from Status, actorID, note string, at time.Time) events.LeaveStatusChangedEvent {
	return events.LeaveStatusChangedEvent{
		EventType:  eventType,
		RequestID:  l.ID,
		EmployeeID: l.EmployeeID,
		Department: l.Department,
		LeaveType:  l.LeaveType,
		FromStatus: string(from),
		ToStatus:   string(l.Status),
		TotalDays:  l.TotalDays,
		ActorID:    actorID,
		Note:       note,
		OccurredAt: at,
	}
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		EmployeeName:       l.EmployeeName,
		Department:         l.Department,
		Position:           l.Position,
		LeaveType:          l.LeaveType,
		StartDate:          l.StartDate.Format(DateLayout),
		EndDate:            l.EndDate.Format(DateLayout),
		TotalDays:          l.TotalDays,
		Reason:             l.Reason,
		Status:             l.Status,
		RequestDate:        l.RequestDate.UTC().Format(time.RFC3339),
		Comments:           l.Comments,
		ReviewedBy:         l.ReviewedBy,
		InfoResponse:       l.InfoResponse,
		ContactInfo:        l.ContactInfo,
		SubstituteEmployee: l.SubstituteEmployee,
		Attachments:        make([]AttachmentResponse, 0, len(l.Attachments)),
	}
	if l.ReviewedAt != nil {
		at := l.ReviewedAt.UTC().Format(time.RFC3339)
		resp.ReviewedAt = &at
	}
	for _, a := range l.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			Name:      a.Name,
			Location:  a.Location,
			MediaType: a.MediaType,
		})
	}
	return resp
}

// ToListResponse maps entities to their API shape, keeping order.
func ToListResponse(leaves []LeaveRequest) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l))
	}
	return out
}
