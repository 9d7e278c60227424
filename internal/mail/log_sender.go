package mail

import (
	"context"

	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

// LogSender only logs outgoing mail. Used in development.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger ...*zap.Logger) *LogSender {
	l := zap.L().Named("mail.log_sender")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mail.log_sender")
	}
	return &LogSender{logger: l}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	contextutil.GetLogger(ctx, s.logger).Info("mail send (log backend)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("text_len", len(msg.Text)),
	)
	return nil
}
