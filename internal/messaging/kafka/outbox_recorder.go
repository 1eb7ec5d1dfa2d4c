package kafka

import (
	"context"
	"encoding/json"

	"go-leave/internal/events"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const AggregateLeaveRequest = "leave_request"

// OutboxRecorder stages lifecycle events in the outbox table so they commit
// with the status change that produced them.
type OutboxRecorder struct {
	repo OutboxRepository
}

func NewOutboxRecorder(repo OutboxRepository) *OutboxRecorder {
	return &OutboxRecorder{repo: repo}
}

func (r *OutboxRecorder) Record(ctx context.Context, tx *gorm.DB, event events.LeaveStatusChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.repo.WithTx(tx).Create(ctx, OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: AggregateLeaveRequest,
		AggregateID:   event.RequestID,
		EventType:     event.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        OutboxStatusPending,
	})
}
