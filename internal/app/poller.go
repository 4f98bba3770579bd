package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

// refresher is the part of the repository the poller drives.
type refresher interface {
	Snapshot() state.Snapshot
	Refresh()
}

// RunPoller re-queries a failing cache until ctx is cancelled. While the last
// query failed and observers are active it asks for a refresh, backing off
// exponentially with the number of consecutive failures. A healthy or idle
// cache is left alone. It blocks until ctx ends.
func RunPoller(ctx context.Context, r refresher, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := interval
		snap := r.Snapshot()
		if snap.Active && snap.LastError != nil {
			logger.Info("retrying contact query",
				zap.Int("failures", snap.ConsecutiveFailures),
				zap.Error(snap.LastError))
			r.Refresh()
			wait = calculateBackoff(snap.ConsecutiveFailures, interval)
		}
		timer.Reset(wait)
	}
}

// calculateBackoff returns base doubled once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
