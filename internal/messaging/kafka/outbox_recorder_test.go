package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type captureOutboxRepository struct {
	kafka.OutboxRepository
	created []kafka.OutboxEvent
	tx      *gorm.DB
	err     error
}

func (r *captureOutboxRepository) WithTx(tx *gorm.DB) kafka.OutboxRepository {
	r.tx = tx
	return r
}

func (r *captureOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if r.err != nil {
		return r.err
	}
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}
	r.created = append(r.created, event)
	return nil
}

func approvedEvent() events.LeaveStatusChangedEvent {
	return events.LeaveStatusChangedEvent{
		EventType:  events.LeaveStatusChanged,
		RequestID:  "leave-1",
		EmployeeID: "EMP001",
		Department: "Computer Science",
		LeaveType:  "Vacation",
		FromStatus: "pending",
		ToStatus:   "approved",
		TotalDays:  8,
		ActorID:    "REV001",
		OccurredAt: time.Date(2023, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestOutboxRecorder_Record(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &captureOutboxRepository{}
		rec := kafka.NewOutboxRecorder(repo)
		ctx := contextutil.WithRequestID(context.Background(), "req-42")

		err := rec.Record(ctx, &gorm.DB{}, approvedEvent())

		assert.NoError(t, err)
		assert.NotNil(t, repo.tx)
		if assert.Len(t, repo.created, 1) {
			got := repo.created[0]
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "req-42", got.RequestID)
			assert.Equal(t, kafka.AggregateLeaveRequest, got.AggregateType)
			assert.Equal(t, "leave-1", got.AggregateID)
			assert.Equal(t, events.LeaveStatusChanged, got.EventType)
			assert.Equal(t, events.LeaveLifecycleTopic, got.Topic)
			assert.Equal(t, kafka.OutboxStatusPending, got.Status)

			var payload events.LeaveStatusChangedEvent
			assert.NoError(t, json.Unmarshal(got.Payload, &payload))
			assert.Equal(t, approvedEvent(), payload)
		}
	})

	t.Run("negative store failure", func(t *testing.T) {
		repo := &captureOutboxRepository{err: errors.New("db down")}
		rec := kafka.NewOutboxRecorder(repo)

		err := rec.Record(context.Background(), nil, approvedEvent())

		assert.EqualError(t, err, "db down")
	})
}
