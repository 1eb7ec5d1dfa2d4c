package app

import (
	"time"

	"go-leave/internal/auth"
	"go-leave/internal/balance"
	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/report"
	"go-leave/internal/shared/metrics"
	"go-leave/internal/shared/retry"
	"go-leave/internal/shared/transaction"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
	m *metrics.Metrics,
) error {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.StorageRetryMax
	txManager := transaction.NewManager(gormDB, retryCfg)

	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	balanceService := balance.NewService(txManager, balanceRepo, leaveRepo, cfg.LeaveQuotas, m)
	leaveService := leave.NewService(txManager, leaveRepo, balanceService, kafka.NewOutboxRecorder(outboxRepo), leave.Options{
		LeaveTypes: cfg.LeaveTypes,
		Metrics:    m,
	})
	reportService := report.NewService(txManager, leaveRepo, balanceService, rdb, cfg.StatsCacheTTL)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService)
	balanceHandler := balance.NewHandler(balanceService)
	reportHandler := report.NewHandler(reportService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.AuthMiddleware(auth.NewTokens(cfg.JWTSecret)),
		middleware.RateLimitByEmployee(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
	)
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, middleware.Idempotency(rdb, idempotencyTTL(cfg)))
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		report.RegisterRoutes(api, reportHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}

func idempotencyTTL(cfg config.Config) time.Duration {
	if cfg.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return cfg.IdempotencyTTL
}
