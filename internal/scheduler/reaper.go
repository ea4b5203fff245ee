package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/metrics"
	"github.com/robfig/cron/v3"
)

// batchSize bounds each DELETE so a large backlog never holds locks for long.
const batchSize = 500

type tokenPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// Reaper deletes ephemeral tokens whose expiry has passed. Claim already
// rejects expired tokens, so this only keeps the table small.
type Reaper struct {
	repo     tokenPurger
	logger   *slog.Logger
	schedule string
	now      func() time.Time
}

func NewReaper(repo tokenPurger, logger *slog.Logger, schedule string) *Reaper {
	return &Reaper{
		repo:     repo,
		logger:   logger.With("component", "token_reaper"),
		schedule: schedule,
		now:      time.Now,
	}
}

// Start runs a purge on every tick of the cron schedule until ctx is done.
func (r *Reaper) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(r.schedule, func() { r.Reap(ctx) }); err != nil {
		return fmt.Errorf("token reaper schedule %q: %w", r.schedule, err)
	}

	r.logger.Info("token reaper started", "schedule", r.schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.Info("token reaper shut down")
	return nil
}

// Reap deletes expired tokens in batches and returns how many were removed.
func (r *Reaper) Reap(ctx context.Context) int {
	start := time.Now()
	defer func() { metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds()) }()

	cutoff := r.now()
	total := 0
	for {
		n, err := r.repo.DeleteExpired(ctx, cutoff, batchSize)
		if err != nil {
			r.logger.ErrorContext(ctx, "purge expired tokens", "error", err)
			break
		}
		total += n
		if n < batchSize {
			break
		}
	}

	if total > 0 {
		metrics.TokensPurgedTotal.Add(float64(total))
		r.logger.Info("purged expired tokens", "count", total)
	}
	return total
}
