// Package scheduler runs the recurring daily balance reset.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chromobot/internal/pkg/gameday"
	"chromobot/internal/repository"
)

// ResetTask sets every user's balance back to the starting amount at
// the configured reset instant, once every 24 hours. Daily counters
// and selections are untouched: their day key rolls at the same
// instant, so they start at zero for the new day on their own.
type ResetTask struct {
	userRepo *repository.UserRepository
	clock    gameday.Clock
	amount   int64
}

// NewResetTask creates a new ResetTask.
func NewResetTask(userRepo *repository.UserRepository, clock gameday.Clock, amount int64) *ResetTask {
	return &ResetTask{
		userRepo: userRepo,
		clock:    clock,
		amount:   amount,
	}
}

// Start launches the background goroutine. The first fire is the next
// reset instant after now; each subsequent fire is 24 hours later.
// Cancelling ctx stops the task.
func (t *ResetTask) Start(ctx context.Context) {
	next := t.clock.NextReset(time.Now())
	log.Info().
		Time("next_reset", next).
		Int64("amount", t.amount).
		Msg("Daily reset scheduled")

	go func() {
		timer := time.NewTimer(time.Until(next))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Daily reset task stopped")
				return
			case <-timer.C:
				t.run(ctx)
				next = t.clock.NextReset(time.Now())
				timer.Reset(time.Until(next))
			}
		}
	}()
}

// run executes one reset cycle.
func (t *ResetTask) run(ctx context.Context) {
	affected, err := t.userRepo.ResetAll(ctx, t.amount)
	if err != nil {
		log.Error().Err(err).Msg("Daily balance reset failed")
		return
	}
	log.Info().
		Int64("users", affected).
		Int64("amount", t.amount).
		Msg("Daily balance reset completed")
}
