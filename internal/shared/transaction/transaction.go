package transaction

import (
	"context"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/retry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manager runs units of work against the store. A failed unit leaves nothing
// behind; transient storage failures are retried and, once the budget is
// spent, reported as apperror.ErrStorageUnavailable.
type Manager interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
	Read(ctx context.Context, fn func() error) error
}

type manager struct {
	db     *gorm.DB
	cfg    retry.Config
	logger *zap.Logger
}

func NewManager(db *gorm.DB, cfg retry.Config, logger ...*zap.Logger) Manager {
	l := zap.L().Named("transaction")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("transaction")
	}
	return &manager{db: db, cfg: cfg, logger: l}
}

func (m *manager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := retry.Do(ctx, m.cfg, m.logger, func() error {
		return m.db.WithContext(ctx).Transaction(fn)
	})
	return classify(err)
}

func (m *manager) Read(ctx context.Context, fn func() error) error {
	return classify(retry.Do(ctx, m.cfg, m.logger, fn))
}

func classify(err error) error {
	if err != nil && retry.IsTransient(err) {
		return apperror.ErrStorageUnavailable.WithCause(err)
	}
	return err
}
