package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/glucobar/internal/fetcher"
)

const defaultPollInterval = 5 * time.Second

// Refresher is the scheduled operation; *fetcher.Fetcher implements it.
type Refresher interface {
	Refresh(ctx context.Context) fetcher.Outcome
}

// StartPoller launches a background goroutine that calls Refresh at a fixed
// cadence. The fetcher's own throttle decides whether a tick reaches the
// network. The returned channel closes once the goroutine exits.
func StartPoller(ctx context.Context, r Refresher, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			outcome := r.Refresh(ctx)
			if logger != nil {
				logger.Debug("poll tick", "outcome", outcome.String())
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}
