package app

import (
	"context"
	"net/http"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/metrics"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// BuildApp connects infrastructure, registers every route on router and
// returns a cleanup func that closes the connections.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := Migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("database schema migrated")
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.DB.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	m := metrics.New()

	router.Use(
		gin.Recovery(),
		middleware.ContextLogger(zap.L()),
		middleware.AccessLog(),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitPerSecond*2), cfg.RateLimitBurst*2),
	)
	router.GET("/healthz", healthHandler(gormDB, rdb))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	if err := registerModules(router, cfg, gormDB, rdb, m); err != nil {
		_ = rdb.Close()
		_ = sqlDB.Close()
		return nil, err
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("close redis failed", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("close database failed", zap.Error(err))
		}
	}
	return cleanup, nil
}

func healthHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		healthy := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unavailable"
			healthy = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unavailable"
			healthy = false
		}

		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency check failed", checks)
			return
		}
		response.Success(c, http.StatusOK, checks, nil)
	}
}
