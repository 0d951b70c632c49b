package housekeeping

import (
	"context"
	"time"

	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/store"
)

const (
	// housekeepingInterval is the interval at which housekeeping will be
	// invoked by a long-lived caller. A build cache churns much faster than
	// the multi-day intervals appropriate for session-staging cleanup, so
	// this is kept short relative to that heritage.
	housekeepingInterval = time.Hour
)

// HousekeepRegularly provides regular housekeeping operations at a standard
// interval. It is designed to be run as a background Goroutine in a
// long-lived process. It will terminate when the provided context is
// cancelled.
func HousekeepRegularly(ctx context.Context, s *store.Store, sizeCap uint64, logger *logging.Logger) {
	// Perform an initial housekeeping operation since the ticker won't fire
	// straight away.
	logger.Info("performing initial housekeeping")
	Housekeep(s, sizeCap, logger)

	// Create a ticker to regulate housekeeping and defer its shutdown.
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	// Loop and wait for the ticker or cancellation.
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("performing regular housekeeping")
			Housekeep(s, sizeCap, logger)
		}
	}
}
