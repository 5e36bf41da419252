package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studiodrive/internal/domain/services"
)

// sendTimeout bounds one background delivery
const sendTimeout = 30 * time.Second

// AsyncNotifier delivers in the background so the request never waits on
// the mail relay. Failures are logged and not retried.
type AsyncNotifier struct {
	next   services.ShareNotifier
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewAsyncNotifier wraps next
func NewAsyncNotifier(next services.ShareNotifier, logger *slog.Logger) *AsyncNotifier {
	return &AsyncNotifier{next: next, logger: logger}
}

// NotifyShare schedules delivery and returns immediately
func (n *AsyncNotifier) NotifyShare(ctx context.Context, notice services.ShareNotice) error {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// Detached from the request; the response may already be written
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()

		if err := n.next.NotifyShare(sendCtx, notice); err != nil {
			n.logger.Warn("share notification failed",
				"grantee", notice.Grantee,
				"resource_id", notice.ResourceID,
				"error", err,
			)
		}
	}()
	return nil
}

// Wait blocks until queued deliveries finish. Called on shutdown.
func (n *AsyncNotifier) Wait() {
	n.wg.Wait()
}
