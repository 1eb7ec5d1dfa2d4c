package leave_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/domain"
	"go-leave/internal/events"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/retry"
	"go-leave/internal/shared/testutil"
	"go-leave/internal/shared/transaction"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// memLeaveRepository keeps requests in memory. Transition is conditional on
// the stored status, like the SQL update it stands in for.
type memLeaveRepository struct {
	mu      sync.Mutex
	leaves  map[string]leave.LeaveRequest
	history []leave.StatusHistory

	createFn  func(ctx context.Context, l *leave.LeaveRequest) error
	overlapFn func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
}

func newMemLeaveRepository(seed ...leave.LeaveRequest) *memLeaveRepository {
	r := &memLeaveRepository{leaves: map[string]leave.LeaveRequest{}}
	for _, l := range seed {
		r.leaves[l.ID] = l
	}
	return r
}

func (r *memLeaveRepository) WithTx(tx *gorm.DB) leave.Repository {
	return r
}

func (r *memLeaveRepository) Create(ctx context.Context, l *leave.LeaveRequest) error {
	if r.createFn != nil {
		if err := r.createFn(ctx, l); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves[l.ID] = *l
	return nil
}

func (r *memLeaveRepository) FindByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.collect(func(l leave.LeaveRequest) bool { return l.EmployeeID == employeeID }), nil
}

func (r *memLeaveRepository) FindByDepartment(ctx context.Context, department string) ([]leave.LeaveRequest, error) {
	return r.collect(func(l leave.LeaveRequest) bool { return l.Department == department }), nil
}

func (r *memLeaveRepository) FindAll(ctx context.Context) ([]leave.LeaveRequest, error) {
	return r.collect(func(leave.LeaveRequest) bool { return true }), nil
}

func (r *memLeaveRepository) collect(keep func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveRequest
	for _, l := range r.leaves {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func (r *memLeaveRepository) Transition(ctx context.Context, l *leave.LeaveRequest, from leave.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.leaves[l.ID]
	if !ok || stored.Status != from {
		return leaveerrors.ErrInvalidStatusTransition
	}
	r.leaves[l.ID] = *l
	return nil
}

func (r *memLeaveRepository) AppendHistory(ctx context.Context, h *leave.StatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *h)
	return nil
}

func (r *memLeaveRepository) FindHistory(ctx context.Context, leaveRequestID string) ([]leave.StatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.StatusHistory
	for _, h := range r.history {
		if h.LeaveRequestID == leaveRequestID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memLeaveRepository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	if r.overlapFn != nil {
		return r.overlapFn(ctx, employeeID, startDate, endDate)
	}
	return false, nil
}

func (r *memLeaveRepository) EmployeeDepartment(ctx context.Context, employeeID string) (string, error) {
	for _, l := range r.collect(func(l leave.LeaveRequest) bool { return l.EmployeeID == employeeID }) {
		return l.Department, nil
	}
	return "", nil
}

func (r *memLeaveRepository) status(id string) leave.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaves[id].Status
}

func (r *memLeaveRepository) historyLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// inlineTx runs every unit of work directly; commit and rollback are the
// caller's concern in these tests.
type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }
func (inlineTx) Read(ctx context.Context, fn func() error) error          { return fn() }

type fakeBalances struct {
	mu      sync.Mutex
	changes []balance.Change
	err     error
}

func (f *fakeBalances) Apply(ctx context.Context, tx *gorm.DB, change balance.Change) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakeBalances) charged() []balance.Change {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []balance.Change
	for _, c := range f.changes {
		if c.IsApproved && !c.WasApproved {
			out = append(out, c)
		}
	}
	return out
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []events.LeaveStatusChangedEvent
	err    error
}

func (f *fakeRecorder) Record(ctx context.Context, tx *gorm.DB, event events.LeaveStatusChangedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

var (
	employee = domain.Actor{EmployeeID: "EMP001", Name: "John Smith", Department: "Computer Science", Role: domain.RoleEmployee}
	other    = domain.Actor{EmployeeID: "EMP002", Name: "Jane Doe", Department: "Computer Science", Role: domain.RoleEmployee}
	reviewer = domain.Actor{EmployeeID: "REV001", Name: "Dr. Brown", Department: "Computer Science", Role: domain.RoleReviewer}
	outsider = domain.Actor{EmployeeID: "REV002", Name: "Dr. Green", Department: "Mathematics", Role: domain.RoleReviewer}
	admin    = domain.Actor{EmployeeID: "ADM001", Name: "Registrar", Role: domain.RoleAdmin}

	leaveTypes = []string{"Vacation", "Sick Leave", "Personal Leave", "Bereavement", "Unpaid Leave"}
	fixedNow   = time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)
)

type leaveServiceDeps struct {
	service  leave.Service
	repo     *memLeaveRepository
	balances *fakeBalances
	recorder *fakeRecorder
}

func setupLeaveServiceTest(t *testing.T, seed ...leave.LeaveRequest) *leaveServiceDeps {
	t.Helper()

	repo := newMemLeaveRepository(seed...)
	balances := &fakeBalances{}
	recorder := &fakeRecorder{}
	svc := leave.NewService(inlineTx{}, repo, balances, recorder, leave.Options{
		LeaveTypes: leaveTypes,
		Now:        func() time.Time { return fixedNow },
	})

	return &leaveServiceDeps{service: svc, repo: repo, balances: balances, recorder: recorder}
}

func pendingLeave(id string) leave.LeaveRequest {
	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC)
	return leave.LeaveRequest{
		ID:           id,
		EmployeeID:   employee.EmployeeID,
		EmployeeName: employee.Name,
		Department:   employee.Department,
		LeaveType:    "Vacation",
		StartDate:    start,
		EndDate:      end,
		TotalDays:    leave.Duration(start, end),
		Reason:       "Family vacation",
		Status:       leave.StatusPending,
		RequestDate:  fixedNow,
	}
}

func withStatus(l leave.LeaveRequest, st leave.Status) leave.LeaveRequest {
	l.Status = st
	return l
}

func validCreateRequest() leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		LeaveType: "vacation",
		StartDate: "2023-06-15",
		EndDate:   "2023-06-22",
		Reason:    "Family vacation",
		Attachments: []leave.AttachmentInput{
			{Name: "itinerary.pdf", Location: "https://files.example.edu/itinerary.pdf", MediaType: "application/pdf"},
		},
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		resp, err := deps.service.Create(ctx, employee, validCreateRequest())

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, "Vacation", resp.LeaveType)
		assert.Equal(t, 8, resp.TotalDays)
		assert.Equal(t, "EMP001", resp.EmployeeID)
		assert.Equal(t, "Computer Science", resp.Department)
		assert.Equal(t, "2023-06-15", resp.StartDate)
		assert.Len(t, resp.Attachments, 1)
		assert.Equal(t, leave.StatusPending, deps.repo.status(resp.ID))
		assert.Equal(t, 1, deps.repo.historyLen())
		assert.Len(t, deps.recorder.events, 1)
		assert.Equal(t, events.LeaveCreated, deps.recorder.events[0].EventType)
		assert.Empty(t, deps.balances.changes)
	})

	t.Run("negative validation", func(t *testing.T) {
		cases := []struct {
			name string
			edit func(r *leave.CreateLeaveRequest)
			want error
		}{
			{"unknown leave type", func(r *leave.CreateLeaveRequest) { r.LeaveType = "Sabbatical" }, leaveerrors.ErrInvalidLeaveType},
			{"bad start date", func(r *leave.CreateLeaveRequest) { r.StartDate = "15/06/2023" }, leaveerrors.ErrInvalidDateFormat},
			{"bad end date", func(r *leave.CreateLeaveRequest) { r.EndDate = "2023-02-30" }, leaveerrors.ErrInvalidDateFormat},
			{"start after end", func(r *leave.CreateLeaveRequest) { r.StartDate = "2023-06-23" }, leaveerrors.ErrInvalidDateRange},
			{"reason too short", func(r *leave.CreateLeaveRequest) { r.Reason = "  tiny " }, leaveerrors.ErrInvalidReason},
			{"reason too long", func(r *leave.CreateLeaveRequest) { r.Reason = strings.Repeat("é", 501) }, leaveerrors.ErrInvalidReason},
			{"attachment without location", func(r *leave.CreateLeaveRequest) {
				r.Attachments = []leave.AttachmentInput{{Name: "note.pdf"}}
			}, leaveerrors.ErrInvalidAttachment},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				deps := setupLeaveServiceTest(t)
				req := validCreateRequest()
				tc.edit(&req)

				_, err := deps.service.Create(ctx, employee, req)

				assert.ErrorIs(t, err, tc.want)
				assert.Empty(t, deps.repo.leaves)
				assert.Empty(t, deps.recorder.events)
			})
		}
	})

	t.Run("single day request counts one day", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		req := validCreateRequest()
		req.EndDate = req.StartDate

		resp, err := deps.service.Create(ctx, employee, req)

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.overlapFn = func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
			assert.Equal(t, "EMP001", employeeID)
			return true, nil
		}

		_, err := deps.service.Create(ctx, employee, validCreateRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.Empty(t, deps.repo.leaves)
	})

	t.Run("negative missing actor", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Create(ctx, domain.Actor{}, validCreateRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidActor)
	})

	t.Run("negative store failure", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			return errors.New("insert failed")
		}

		_, err := deps.service.Create(ctx, employee, validCreateRequest())

		assert.EqualError(t, err, "insert failed")
		assert.Empty(t, deps.recorder.events)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("success charges balance once", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		resp, err := deps.service.Approve(ctx, reviewer, "leave-1", " enjoy ")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		if assert.NotNil(t, resp.Comments) {
			assert.Equal(t, "enjoy", *resp.Comments)
		}
		if assert.NotNil(t, resp.ReviewedBy) {
			assert.Equal(t, "REV001", *resp.ReviewedBy)
		}
		assert.NotNil(t, resp.ReviewedAt)
		assert.Equal(t, []balance.Change{{
			EmployeeID: "EMP001",
			LeaveType:  "Vacation",
			Days:       8,
			IsApproved: true,
		}}, deps.balances.changes)
		assert.Len(t, deps.recorder.events, 1)
		assert.Equal(t, "pending", deps.recorder.events[0].FromStatus)
		assert.Equal(t, "approved", deps.recorder.events[0].ToStatus)
		assert.Equal(t, "REV001", deps.recorder.events[0].ActorID)
	})

	t.Run("success admin from any department", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		resp, err := deps.service.Approve(ctx, admin, "leave-1", "")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Nil(t, resp.Comments)
	})

	t.Run("negative second approval", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.Approve(ctx, reviewer, "leave-1", "")
		assert.NoError(t, err)

		_, err = deps.service.Approve(ctx, reviewer, "leave-1", "")
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Len(t, deps.balances.charged(), 1)
	})

	t.Run("negative employee cannot review", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.Approve(ctx, employee, "leave-1", "")

		assert.ErrorIs(t, err, leaveerrors.ErrReviewerRequired)
		assert.Equal(t, leave.StatusPending, deps.repo.status("leave-1"))
	})

	t.Run("negative reviewer of another department", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.Approve(ctx, outsider, "leave-1", "")

		assert.ErrorIs(t, err, leaveerrors.ErrDepartmentForbidden)
		assert.Equal(t, leave.StatusPending, deps.repo.status("leave-1"))
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Approve(ctx, reviewer, "missing", "")

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative not pending", func(t *testing.T) {
		for _, st := range []leave.Status{leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled, leave.StatusInfoNeeded} {
			t.Run(string(st), func(t *testing.T) {
				deps := setupLeaveServiceTest(t, withStatus(pendingLeave("leave-1"), st))

				_, err := deps.service.Approve(ctx, reviewer, "leave-1", "")

				assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
				assert.Equal(t, st, deps.repo.status("leave-1"))
				assert.Empty(t, deps.balances.changes)
			})
		}
	})
}

func TestLeaveService_ConcurrentReview(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

	const reviewers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, reviewers)
	)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			var err error
			if i%2 == 0 {
				_, err = deps.service.Approve(ctx, reviewer, "leave-1", "")
			} else {
				_, err = deps.service.Reject(ctx, reviewer, "leave-1", "staffing")
			}
			errs <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
	}

	assert.Equal(t, 1, succeeded)
	final := deps.repo.status("leave-1")
	assert.Contains(t, []leave.Status{leave.StatusApproved, leave.StatusRejected}, final)
	if final == leave.StatusApproved {
		assert.Len(t, deps.balances.charged(), 1)
	} else {
		assert.Empty(t, deps.balances.charged())
	}
	assert.Len(t, deps.recorder.events, 1)
}

func TestLeaveService_ConcurrentOverlappingCreate(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t)
	deps.repo.overlapFn = func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
		time.Sleep(time.Millisecond)
		active := deps.repo.collect(func(l leave.LeaveRequest) bool {
			return l.EmployeeID == employeeID &&
				l.Status != leave.StatusRejected && l.Status != leave.StatusCancelled &&
				l.Overlaps(startDate, endDate)
		})
		return len(active) > 0, nil
	}

	const attempts = 6
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := deps.service.Create(ctx, employee, validCreateRequest())
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
	}

	assert.Equal(t, 1, succeeded)
	mine, _ := deps.repo.FindByEmployee(ctx, employee.EmployeeID)
	assert.Len(t, mine, 1)
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		resp, err := deps.service.Reject(ctx, reviewer, "leave-1", "Insufficient staffing")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		if assert.NotNil(t, resp.Comments) {
			assert.Equal(t, "Insufficient staffing", *resp.Comments)
		}
		assert.Empty(t, deps.balances.charged())
	})

	t.Run("negative empty reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.Reject(ctx, reviewer, "leave-1", "   ")

		assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
		assert.Equal(t, leave.StatusPending, deps.repo.status("leave-1"))
		assert.Zero(t, deps.repo.historyLen())
	})
}

func TestLeaveService_RequestInfoAndRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("success round trip", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		resp, err := deps.service.RequestInfo(ctx, reviewer, "leave-1", "Who covers your classes?")
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusInfoNeeded, resp.Status)

		resp, err = deps.service.Respond(ctx, employee, "leave-1", "Jane Doe")
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
		if assert.NotNil(t, resp.InfoResponse) {
			assert.Equal(t, "Jane Doe", *resp.InfoResponse)
		}

		history, err := deps.service.History(ctx, employee, "leave-1")
		assert.NoError(t, err)
		if assert.Len(t, history, 2) {
			assert.Equal(t, leave.StatusInfoNeeded, history[0].ToStatus)
			assert.Equal(t, "Who covers your classes?", history[0].Note)
			assert.Equal(t, leave.StatusInfoNeeded, history[1].FromStatus)
			assert.Equal(t, leave.StatusPending, history[1].ToStatus)
		}
	})

	t.Run("negative empty question", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.RequestInfo(ctx, reviewer, "leave-1", "")

		assert.ErrorIs(t, err, leaveerrors.ErrQuestionRequired)
		assert.Equal(t, leave.StatusPending, deps.repo.status("leave-1"))
	})

	t.Run("negative respond by someone else", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, withStatus(pendingLeave("leave-1"), leave.StatusInfoNeeded))

		_, err := deps.service.Respond(ctx, other, "leave-1", "covered")

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
		assert.Equal(t, leave.StatusInfoNeeded, deps.repo.status("leave-1"))
	})

	t.Run("negative respond while pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.Respond(ctx, employee, "leave-1", "covered")

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
	})

	t.Run("negative empty response", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, withStatus(pendingLeave("leave-1"), leave.StatusInfoNeeded))

		_, err := deps.service.Respond(ctx, employee, "leave-1", " ")

		assert.ErrorIs(t, err, leaveerrors.ErrResponseRequired)
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		resp, err := deps.service.Cancel(ctx, employee, "leave-1")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
		assert.Equal(t, []balance.Change{{EmployeeID: "EMP001", LeaveType: "Vacation", Days: 8}}, deps.balances.changes)
	})

	t.Run("negative not the owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

		_, err := deps.service.Cancel(ctx, reviewer, "leave-1")

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
		assert.Equal(t, leave.StatusPending, deps.repo.status("leave-1"))
	})

	t.Run("negative already approved", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, withStatus(pendingLeave("leave-1"), leave.StatusApproved))

		_, err := deps.service.Cancel(ctx, employee, "leave-1")

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Equal(t, leave.StatusApproved, deps.repo.status("leave-1"))
	})
}

func TestLeaveService_Get(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))

	t.Run("success owner", func(t *testing.T) {
		resp, err := deps.service.Get(ctx, employee, "leave-1")
		assert.NoError(t, err)
		assert.Equal(t, "leave-1", resp.ID)
	})

	t.Run("success department reviewer", func(t *testing.T) {
		_, err := deps.service.Get(ctx, reviewer, "leave-1")
		assert.NoError(t, err)
	})

	t.Run("negative other employee", func(t *testing.T) {
		_, err := deps.service.Get(ctx, other, "leave-1")
		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})

	t.Run("negative reviewer of another department", func(t *testing.T) {
		_, err := deps.service.Get(ctx, outsider, "leave-1")
		assert.ErrorIs(t, err, leaveerrors.ErrDepartmentForbidden)
	})

	t.Run("negative not found", func(t *testing.T) {
		_, err := deps.service.Get(ctx, employee, "missing")
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_Lists(t *testing.T) {
	ctx := context.Background()
	mine := pendingLeave("leave-1")
	theirs := pendingLeave("leave-2")
	theirs.EmployeeID = other.EmployeeID
	theirs.EmployeeName = other.Name
	theirs.Status = leave.StatusApproved
	maths := pendingLeave("leave-3")
	maths.EmployeeID = "EMP009"
	maths.Department = "Mathematics"

	deps := setupLeaveServiceTest(t, mine, theirs, maths)

	t.Run("success list mine", func(t *testing.T) {
		resp, err := deps.service.ListMine(ctx, employee, leave.FilterSpec{})
		assert.NoError(t, err)
		if assert.Len(t, resp, 1) {
			assert.Equal(t, "leave-1", resp[0].ID)
		}
	})

	t.Run("success department with status filter", func(t *testing.T) {
		resp, err := deps.service.ListByDepartment(ctx, reviewer, "Computer Science", leave.FilterSpec{Status: leave.StatusApproved})
		assert.NoError(t, err)
		if assert.Len(t, resp, 1) {
			assert.Equal(t, "leave-2", resp[0].ID)
		}
	})

	t.Run("negative department of another reviewer", func(t *testing.T) {
		_, err := deps.service.ListByDepartment(ctx, reviewer, "Mathematics", leave.FilterSpec{})
		assert.ErrorIs(t, err, leaveerrors.ErrDepartmentForbidden)
	})

	t.Run("negative employee", func(t *testing.T) {
		_, err := deps.service.ListByDepartment(ctx, employee, "Computer Science", leave.FilterSpec{})
		assert.ErrorIs(t, err, leaveerrors.ErrReviewerRequired)
	})
}

func TestLeaveService_TransitionRollsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("negative balance failure rolls back the status update", func(t *testing.T) {
		gdb, mock, db := testutil.NewGormMock(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "department", "leave_type", "start_date", "end_date", "total_days", "status"}).
				AddRow("leave-1", "EMP001", "Computer Science", "Vacation",
					time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC), 8, "pending"))
		mock.ExpectQuery(`SELECT \* FROM "leave_attachments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(`UPDATE "leave_requests" SET .* WHERE id = \$7 AND status = \$8`).
			WithArgs(sqlmock.AnyArg(), nil, sqlmock.AnyArg(), "REV001", "approved", sqlmock.AnyArg(), "leave-1", "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "leave_status_history"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		// nothing after the balance failure may commit
		mock.ExpectRollback()

		balances := &fakeBalances{err: errors.New("balance row locked")}
		recorder := &fakeRecorder{}
		txm := transaction.NewManager(gdb, retry.Config{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond})
		svc := leave.NewService(txm, leave.NewRepository(gdb), balances, recorder, leave.Options{LeaveTypes: leaveTypes})

		_, err := svc.Approve(ctx, reviewer, "leave-1", "")

		assert.EqualError(t, err, "balance row locked")
		assert.Empty(t, recorder.events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative losing reviewer rolls back", func(t *testing.T) {
		gdb, mock, db := testutil.NewGormMock(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "department", "leave_type", "total_days", "status"}).
				AddRow("leave-1", "EMP001", "Computer Science", "Vacation", 8, "pending"))
		mock.ExpectQuery(`SELECT \* FROM "leave_attachments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		// a concurrent reviewer already moved the row
		mock.ExpectExec(`UPDATE "leave_requests" SET .* WHERE id = \$7 AND status = \$8`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		balances := &fakeBalances{}
		recorder := &fakeRecorder{}
		txm := transaction.NewManager(gdb, retry.Config{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond})
		svc := leave.NewService(txm, leave.NewRepository(gdb), balances, recorder, leave.Options{LeaveTypes: leaveTypes})

		_, err := svc.Reject(ctx, reviewer, "leave-1", "Exam week")

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Empty(t, balances.changes)
		assert.Empty(t, recorder.events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative recorder failure surfaces", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, pendingLeave("leave-1"))
		deps.recorder.err = errors.New("outbox unavailable")

		_, err := deps.service.Approve(ctx, reviewer, "leave-1", "")

		assert.EqualError(t, err, "outbox unavailable")
	})
}
