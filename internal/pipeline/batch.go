package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relaymind/autopilot/internal/config"
	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/store"
)

// Batch runs the pipeline across all users. One user's failure never stops
// the others; each user's counters are folded into the batch totals either
// way.
type Batch struct {
	store  store.Store
	runner *Runner
	cfg    config.BatchConfig
}

// NewBatch creates a batch orchestrator around a per-user runner.
func NewBatch(st store.Store, runner *Runner, cfg config.BatchConfig) *Batch {
	if cfg.MaxConcurrentUsers <= 0 {
		cfg.MaxConcurrentUsers = 1
	}
	return &Batch{store: st, runner: runner, cfg: cfg}
}

// Run processes every user and returns the aggregate counters. Users whose
// run lock is already held are skipped, not failed: an overlapping batch
// must not double-fire follow-ups.
func (b *Batch) Run(ctx context.Context) (model.BatchStats, error) {
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		return model.BatchStats{}, eris.Wrap(err, "batch: list users")
	}
	if b.cfg.UserLimit > 0 && len(users) > b.cfg.UserLimit {
		users = users[:b.cfg.UserLimit]
	}
	zap.L().Info("batch: starting",
		zap.Int("users", len(users)),
		zap.Int("max_concurrent", b.cfg.MaxConcurrentUsers),
	)

	var mu sync.Mutex
	var stats model.BatchStats

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.MaxConcurrentUsers)

	for _, user := range users {
		g.Go(func() error {
			userStats, skipped := b.runUser(gctx, user)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case skipped:
				stats.UsersSkipped++
			case userStats.State == model.StateErrored:
				stats.UsersFailed++
			default:
				stats.UsersProcessed++
			}
			stats.Add(userStats)
			// Individual failures are already counted; never abort the group.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, eris.Wrap(err, "batch: wait")
	}

	zap.L().Info("batch: complete",
		zap.Int("processed", stats.UsersProcessed),
		zap.Int("skipped", stats.UsersSkipped),
		zap.Int("failed", stats.UsersFailed),
		zap.Int("emails", stats.EmailsProcessed),
		zap.Int("created", stats.Created),
		zap.Int("priority_updated", stats.PriorityUpdated),
		zap.Int("follow_ups", stats.FollowUpsSent),
		zap.Int("errors", stats.Errors),
	)
	return stats, nil
}

// runUser executes one user's run under the per-tenant lock, absorbing
// panics so a single bad tenant cannot take the batch down.
func (b *Batch) runUser(ctx context.Context, user model.User) (stats model.UserRunStats, skipped bool) {
	log := zap.L().With(zap.String("user_id", user.ID))
	stats = model.UserRunStats{UserID: user.ID, State: model.StateGated}

	acquired, err := b.store.AcquireRunLock(ctx, user.ID)
	if err != nil {
		log.Error("batch: acquire run lock", zap.Error(err))
		stats.State = model.StateErrored
		stats.ErrorKind = model.ErrKindTransientProvider
		stats.Errors++
		return stats, false
	}
	if !acquired {
		log.Warn("batch: run already in progress, skipping")
		return stats, true
	}
	defer func() {
		if err := b.store.ReleaseRunLock(ctx, user.ID); err != nil {
			log.Error("batch: release run lock", zap.Error(err))
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("batch: user run panicked", zap.Any("panic", rec))
			stats.State = model.StateErrored
			stats.Errors++
		}
	}()

	stats, err = b.runner.Run(ctx, user)
	if err != nil {
		// Only context cancellation reaches here.
		log.Warn("batch: user run aborted", zap.Error(err))
		stats.State = model.StateErrored
		stats.Errors++
	}
	return stats, false
}
