package worker

import (
	"context"
	"log"
	"time"

	"bubble/config"
	"bubble/internal/service"
)

// Sweeper drives the batch jobs on timers when no external scheduler is
// hitting the batch endpoints. Each run gets its own deadline so a stuck
// store call cannot block the next tick indefinitely.
type Sweeper struct {
	notify  *service.NotifyService
	cleanup *service.CleanupService
	cfg     config.SweeperConfig
}

func NewSweeper(notify *service.NotifyService, cleanup *service.CleanupService, cfg config.SweeperConfig) *Sweeper {
	return &Sweeper{notify: notify, cleanup: cleanup, cfg: cfg}
}

// Start blocks until ctx is cancelled. Runs stay sweep, expiration sweep
// and cleanup on independent tickers.
func (w *Sweeper) Start(ctx context.Context) {
	if !w.cfg.Enabled {
		log.Println("[sweep] background sweeper disabled")
		return
	}
	log.Println("[sweep] background sweeper started")

	stayTick := time.NewTicker(w.cfg.StayInterval)
	expireTick := time.NewTicker(w.cfg.ExpireInterval)
	cleanupTick := time.NewTicker(w.cfg.CleanupInterval)
	defer stayTick.Stop()
	defer expireTick.Stop()
	defer cleanupTick.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[sweep] background sweeper stopped")
			return
		case <-stayTick.C:
			w.run(ctx, "stay-notifications", func(ctx context.Context) error {
				sent, err := w.notify.SweepStayNotifications(ctx)
				if sent > 0 {
					log.Printf("[sweep] stay notifications sent: %d", sent)
				}
				return err
			})
		case <-expireTick.C:
			w.run(ctx, "expire-schedules", func(ctx context.Context) error {
				updated, err := w.cleanup.ExpireOverdueSchedules(ctx)
				if updated > 0 {
					log.Printf("[sweep] schedules expired: %d", updated)
				}
				return err
			})
		case <-cleanupTick.C:
			w.run(ctx, "cleanup", func(ctx context.Context) error {
				_, err := w.cleanup.PurgeExpiredData(ctx)
				return err
			})
		}
	}
}

func (w *Sweeper) run(ctx context.Context, name string, job func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()
	if err := job(runCtx); err != nil {
		log.Printf("[sweep] %s failed: %v", name, err)
	}
}
