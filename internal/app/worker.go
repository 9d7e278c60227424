package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/config"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/reminder"
	"go-leave/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunWorker drives the hourly reminder scheduler and, when a broker is
// configured, publishes queued mail from the outbox to Kafka.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	infra, err := Connect(cfg, zap.L())
	if err != nil {
		return err
	}
	defer infra.Close()

	modules, err := NewModules(infra)
	if err != nil {
		return err
	}
	defer modules.Mailer.Wait()

	var kafkaWriter *kafkago.Writer
	if cfg.Kafka.Broker != "" {
		kafkaWriter, err = connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.DB.MaxRetries)
		if err != nil {
			return err
		}
		defer kafkaWriter.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Reminder.Enabled {
		scheduler := reminder.NewScheduler(modules.Sweeper, infra.Redis, cfg.Reminder.LockTTL, zap.L())
		g.Go(func() error {
			scheduler.Start(gctx)
			return nil
		})
	} else {
		logger.Info("reminder scheduler disabled")
	}

	if kafkaWriter != nil {
		g.Go(func() error {
			producer.ProcessOutboxEvents(gctx, modules.Outbox, kafkaWriter, zap.L(), cfg.Kafka.PollInterval)
			return nil
		})
	} else {
		logger.Info("kafka broker not configured, outbox producer disabled")
	}

	<-ctx.Done()
	logger.Info("worker shutting down")
	return g.Wait()
}
