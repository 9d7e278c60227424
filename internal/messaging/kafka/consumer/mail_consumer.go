package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/mail"
	"go-leave/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	maxSendAttempts = 3
	sendTimeout     = 30 * time.Second
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func ConsumeMailRequested(
	ctx context.Context,
	reader MessageReader,
	sender mail.Sender,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.mail_requested")
	log.Info("mail consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("mail consumer stopped")
				return
			}
			log.Error("fetch mail message failed", zap.Error(err))
			continue
		}

		handleMailMessage(ctx, reader, sender, log, msg, time.Second)
	}
}

func handleMailMessage(
	ctx context.Context,
	reader MessageReader,
	sender mail.Sender,
	log *zap.Logger,
	msg kafkago.Message,
	backoff time.Duration,
) {
	var event events.MailRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode mail_requested event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		commit(ctx, reader, log, msg)
		return
	}

	l := log.With(
		zap.String("message_id", event.MessageID),
		zap.String("request_id", event.RequestID),
		zap.String("to", event.To),
	)
	sendCtx := contextutil.WithRequestID(ctx, event.RequestID)

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(sendCtx, sendTimeout)
		lastErr = sender.Send(attemptCtx, mail.FromEvent(event))
		cancel()

		if lastErr == nil || errors.Is(lastErr, mail.ErrNoRecipient) {
			break
		}
		l.Warn("mail delivery attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}

	if lastErr != nil {
		l.Error("mail delivery abandoned", zap.Error(lastErr))
	} else {
		l.Info("mail delivered")
	}
	commit(ctx, reader, l, msg)
}

func commit(ctx context.Context, reader MessageReader, log *zap.Logger, msg kafkago.Message) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit mail message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
