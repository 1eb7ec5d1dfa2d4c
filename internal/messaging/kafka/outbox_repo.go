package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"

	outboxRetryStep     = 15 * time.Second
	outboxMaxRetrySteps = 10
	outboxErrorMaxRunes = 500
)

type OutboxEvent struct {
	ID            string     `gorm:"type:char(36);primaryKey"`
	RequestID     string     `gorm:"type:varchar(64)"`
	AggregateType string     `gorm:"type:varchar(64);not null"`
	AggregateID   string     `gorm:"type:varchar(64);not null;index"`
	EventType     string     `gorm:"type:varchar(64);not null"`
	Topic         string     `gorm:"type:varchar(255);not null"`
	Payload       []byte     `gorm:"not null"`
	Status        string     `gorm:"type:varchar(16);not null;index:idx_outbox_status_next_retry"`
	RetryCount    int        `gorm:"not null;default:0"`
	ErrorMessage  *string    `gorm:"type:text"`
	NextRetryAt   *time.Time `gorm:"index:idx_outbox_status_next_retry"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

type OutboxRepository interface {
	WithTx(tx *gorm.DB) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, event OutboxEvent, reason string) error
}

type outboxRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db, now: time.Now}
}

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository {
	if tx == nil {
		return r
	}
	return &outboxRepository{db: tx, now: r.now}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

// ListPending returns pending events and failed ones whose retry time has come,
// oldest first.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	events := make([]OutboxEvent, 0, limit)
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{OutboxStatusPending, OutboxStatusFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", r.now().UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	now := r.now().UTC()
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        OutboxStatusSent,
			"processed_at":  now,
			"error_message": nil,
			"updated_at":    now,
		}).Error
}

// MarkFailed schedules the next attempt 15s times the retry count later,
// capped at ten steps.
func (r *outboxRepository) MarkFailed(ctx context.Context, event OutboxEvent, reason string) error {
	now := r.now().UTC()
	retries := event.RetryCount + 1
	next := now.Add(time.Duration(min(retries, outboxMaxRetrySteps)) * outboxRetryStep)
	msg := truncateRunes(reason, outboxErrorMaxRunes)

	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"status":        OutboxStatusFailed,
			"retry_count":   retries,
			"error_message": msg,
			"next_retry_at": next,
			"updated_at":    now,
		}).Error
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
