package sender

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

const (
	DefaultQueueSize   = 64
	DefaultSendTimeout = 30 * time.Second
)

type notifier interface {
	Notify(ctx context.Context, text string) error
}

// Queue accepts staff notices without waiting for Telegram. A single worker
// started with Run delivers them in order through the wrapped notifier.
type Queue struct {
	next    notifier
	logger  zerolog.Logger
	timeout time.Duration

	notices chan string
	done    chan struct{}
}

func NewQueue(next notifier, logger zerolog.Logger, size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Queue{
		next:    next,
		logger:  logger,
		timeout: timeout,
		notices: make(chan string, size),
		done:    make(chan struct{}),
	}
}

// Notify enqueues text. It fails only when the queue is full.
func (q *Queue) Notify(_ context.Context, text string) error {
	select {
	case q.notices <- text:
		return nil
	default:
		return errs.Upstream("staff notice queue is full").Arg("size", cap(q.notices))
	}
}

// Run delivers queued notices until ctx is done. Notices still queued at
// that point are dropped.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			if n := len(q.notices); n > 0 {
				q.logger.Warn().Int("dropped", n).Msg("staff notices dropped on shutdown")
			}
			return
		case text := <-q.notices:
			sendCtx, cancel := context.WithTimeout(ctx, q.timeout)
			if err := q.next.Notify(sendCtx, text); err != nil {
				q.logger.Error().Err(err).Msg("staff notice not delivered")
			}
			cancel()
		}
	}
}

// Done is closed once Run has returned.
func (q *Queue) Done() <-chan struct{} { return q.done }
