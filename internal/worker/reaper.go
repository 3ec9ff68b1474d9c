package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"user-deletion-service/internal/domain"
	"user-deletion-service/internal/repository"
	"user-deletion-service/internal/store"
	"user-deletion-service/internal/usecase"
)

// Reaper periodically re-runs cascades for users stuck in a pending or failed
// tombstone past the grace window, so a crashed deletion always converges
// without operator action.
type Reaper struct {
	docs     store.DocumentStore
	cascade  *usecase.CascadeUsecase
	interval time.Duration
	grace    time.Duration
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewReaper(docs store.DocumentStore, cascade *usecase.CascadeUsecase, interval, grace time.Duration, log *zap.Logger) *Reaper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		docs:     docs,
		cascade:  cascade,
		interval: interval,
		grace:    grace,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the background loop.
func (r *Reaper) Start() {
	go r.run()
	r.log.Info("stale cascade reaper started",
		zap.Duration("interval", r.interval),
		zap.Duration("grace", r.grace))
}

// Stop cancels the loop.
func (r *Reaper) Stop() {
	r.cancel()
	r.log.Info("stale cascade reaper stopped")
}

func (r *Reaper) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reapStale()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Reaper) reapStale() {
	for _, status := range []domain.DeletionStatus{domain.DeletionPending, domain.DeletionFailed} {
		docs, err := r.docs.Query(r.ctx, repository.UsersTable, store.Filter{
			Field: "deletion_status",
			Value: string(status),
			Limit: 100,
		})
		if err != nil {
			r.log.Warn("failed to query stale tombstones",
				zap.String("status", string(status)),
				zap.Error(err))
			continue
		}

		for _, doc := range docs {
			ts := doc.StringField("deleted_at")
			if ts == "" {
				continue
			}
			deletedAt, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil || time.Since(deletedAt) < r.grace {
				continue
			}

			r.log.Info("retrying stale deletion cascade",
				zap.String("user_id", doc.ID),
				zap.String("status", string(status)),
				zap.Time("tombstoned_at", deletedAt))

			res := r.cascade.ExecuteUserDeletionCascade(r.ctx, doc.ID, "system", domain.CascadeOptions{
				InitiatorRole: domain.InitiatorSystem,
				Reason:        "stale cascade retry",
			})
			if !res.Success {
				r.log.Warn("stale cascade retry did not complete",
					zap.String("user_id", doc.ID),
					zap.String("error", res.ErrorMessage))
			}
		}
	}
}
