package mail

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

const defaultSendTimeout = 15 * time.Second

// Dispatcher sends mail in the background. Callers never wait on delivery and
// never see its errors; failures are logged and counted.
type Dispatcher struct {
	sender   Sender
	from     string
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	failures atomic.Int64
}

func NewDispatcher(sender Sender, from string, timeout time.Duration, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("mail.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mail.dispatcher")
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{sender: sender, from: from, timeout: timeout, logger: l}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if msg.From == "" {
		msg.From = d.from
	}

	// keep request-scoped values but not the request's cancellation
	sendCtx := context.WithoutCancel(ctx)
	log := contextutil.GetLogger(ctx, d.logger)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.failures.Add(1)
				log.Error("mail send panicked",
					zap.String("to", msg.To),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			d.failures.Add(1)
			log.Warn("mail send failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			return
		}
		log.Debug("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}()
}

func (d *Dispatcher) Failures() int64 {
	return d.failures.Load()
}

// Wait blocks until every in-flight send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
