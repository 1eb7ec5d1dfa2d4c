package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/bootstrap"
	"go-leave/internal/events"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/retry"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// StatsInvalidator drops cached statistics for a department.
type StatsInvalidator interface {
	InvalidateDepartment(ctx context.Context, department string) error
}

// ConsumeLeaveLifecycle handles each message with up to retryCfg.MaxRetries
// extra attempts. A message that still fails is logged and committed: the
// stats cache it could not clear expires on its own TTL. Fetch errors back
// off with the same intervals.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	stats StatsInvalidator,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
	retryCfg retry.Config,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	fetchBackoff := backoff.NewExponentialBackOff()
	if retryCfg.InitialInterval > 0 {
		fetchBackoff.InitialInterval = retryCfg.InitialInterval
	}
	if retryCfg.MaxInterval > 0 {
		fetchBackoff.MaxInterval = retryCfg.MaxInterval
	}
	fetchBackoff.MaxElapsedTime = 0

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			wait := fetchBackoff.NextBackOff()
			log.Error("fetch leave lifecycle message failed", zap.Duration("retry_in", wait), zap.Error(err))
			select {
			case <-ctx.Done():
				log.Info("leave lifecycle consumer stopped")
				return
			case <-time.After(wait):
			}
			continue
		}
		fetchBackoff.Reset()

		err = retry.DoIf(ctx, retryCfg, log, retry.Always, func() error {
			return HandleLifecycleMessage(ctx, msg, stats, audit)
		})
		if err != nil {
			if ctx.Err() != nil {
				// left uncommitted, redelivered after restart
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("handle leave lifecycle message failed, skipping",
				zap.Int64("offset", msg.Offset),
				zap.String("key", string(msg.Key)),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
			continue
		}
	}
}

// HandleLifecycleMessage returns an error only when the department cache
// could not be cleared, which is worth another attempt. Undecodable payloads
// are logged and skipped. The audit entry is written once, after the cache.
func HandleLifecycleMessage(
	ctx context.Context,
	msg kafkago.Message,
	stats StatsInvalidator,
	audit bootstrap.AuditLogger,
) error {
	for _, h := range msg.Headers {
		if h.Key == "request_id" && len(h.Value) > 0 {
			ctx = contextutil.WithRequestID(ctx, string(h.Value))
		}
	}
	log := contextutil.GetLogger(ctx, zap.L().Named("kafka.consumer.leave_lifecycle"))

	var event events.LeaveStatusChangedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave lifecycle event failed", zap.Error(err))
		return nil
	}
	if event.RequestID == "" || event.ToStatus == "" {
		log.Warn("leave lifecycle event missing fields, skipping", zap.String("key", string(msg.Key)))
		return nil
	}

	if event.Department != "" {
		if err := stats.InvalidateDepartment(ctx, event.Department); err != nil {
			return fmt.Errorf("invalidate department stats: %w", err)
		}
	}

	audit.Log(ctx, bootstrap.AuditLog{
		Action:  auditAction(event),
		ActorID: event.ActorID,
		Message: fmt.Sprintf("leave request %s moved to %s", event.RequestID, event.ToStatus),
		Meta: map[string]any{
			"request_id":  event.RequestID,
			"employee_id": event.EmployeeID,
			"department":  event.Department,
			"leave_type":  event.LeaveType,
			"from_status": event.FromStatus,
			"to_status":   event.ToStatus,
			"total_days":  event.TotalDays,
			"note":        event.Note,
			"occurred_at": event.OccurredAt,
		},
	})

	log.Info("leave lifecycle event handled",
		zap.String("leave_id", event.RequestID),
		zap.String("event_type", event.EventType),
		zap.String("to_status", event.ToStatus),
	)
	return nil
}

// auditAction renders e.g. LEAVE_INFO_NEEDED.
func auditAction(event events.LeaveStatusChangedEvent) string {
	if event.EventType == events.LeaveCreated {
		return "LEAVE_CREATED"
	}
	return "LEAVE_" + strings.ToUpper(strings.ReplaceAll(event.ToStatus, "-", "_"))
}
