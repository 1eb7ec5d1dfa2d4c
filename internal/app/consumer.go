package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/report"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/retry"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer follows the leave lifecycle topic, dropping cached department
// statistics and writing audit entries, until SIGINT or SIGTERM.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.DB.MaxRetries)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.LeaveLifecycleTopic,
		GroupID:        cfg.Kafka.Group,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.StorageRetryMax

	go consumer.ConsumeLeaveLifecycle(ctx, reader, report.NewCacheInvalidator(rdb), bootstrap.NewStdoutAuditLogger(), logger, retryCfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
