package retry

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// MySQL server error numbers worth another attempt.
var transientMySQL = map[uint16]struct{}{
	1040: {}, // too many connections
	1205: {}, // lock wait timeout
	1213: {}, // deadlock
}

// IsTransient reports whether err comes from the storage layer being
// temporarily unable to serve, as opposed to a rejected statement.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, ok := transientMySQL[myErr.Number]
		return ok
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08xxx connection exception, 40001 serialization failure,
		// 40P01 deadlock, 57P01 admin shutdown
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "40001" ||
			pgErr.Code == "40P01" ||
			pgErr.Code == "57P01"
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// Do runs op until it succeeds, fails with a non-transient error, or the
// retry budget is spent. The last error is returned unchanged.
func Do(ctx context.Context, cfg Config, logger *zap.Logger, op func() error) error {
	return DoIf(ctx, cfg, logger, IsTransient, op)
}

// DoIf is Do with the caller deciding which errors earn another attempt.
func DoIf(ctx context.Context, cfg Config, logger *zap.Logger, retryable func(error) bool, op func() error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		b.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		b.MaxInterval = cfg.MaxInterval
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("retryable error, retrying",
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

// Always retries every error.
func Always(error) bool { return true }
