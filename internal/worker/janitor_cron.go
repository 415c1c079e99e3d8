package worker

// janitor_cron.go
// Background goroutine that periodically sweeps expired held bills so
// abandoned park tickets do not pile up. The sweep itself lives in the bill
// service; this cron only drives the tick.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// HoldSweeper removes park tickets past their retention window together with
// the bills they reference. Implemented by the bill service.
type HoldSweeper interface {
	SweepExpiredHolds(ctx context.Context) (int, error)
}

// StartHoldJanitor launches a background goroutine that runs the sweep on
// every tick. It respects the context for graceful shutdown.
func StartHoldJanitor(ctx context.Context, sweeper HoldSweeper, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("hold_janitor: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("hold_janitor: shutting down")
				return
			case <-ticker.C:
				removed, err := sweeper.SweepExpiredHolds(ctx)
				if err != nil {
					log.Error().Err(err).Msg("hold_janitor: sweep failed")
					continue
				}
				if removed > 0 {
					log.Info().Int("removed", removed).Msg("hold_janitor: sweep completed")
				}
			}
		}
	}()
}
