package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"chromobot/internal/model"
)

// Selection-related errors.
var (
	ErrNoCandidates = errors.New("no eligible candidates")
)

// memberSource lists the members of a chat seen since a cutoff.
type memberSource interface {
	RecentMembers(ctx context.Context, chatID int64, cutoff time.Time) ([]model.Member, error)
}

// chosenRecorder persists daily selections.
type chosenRecorder interface {
	MarkChosen(ctx context.Context, chatID, userID int64, day string) error
}

// immunityChecker answers whether a member is immune.
type immunityChecker interface {
	IsImmune(ctx context.Context, chatID, userID int64, username string) (bool, error)
}

// SelectionService picks the daily member of a chat: a uniform random
// draw from the users seen within the activity window, excluding
// immune users.
type SelectionService struct {
	userRepo memberSource
	journal  chosenRecorder
	immunity immunityChecker
	window   time.Duration
}

// NewSelectionService creates a new SelectionService instance.
func NewSelectionService(
	userRepo memberSource,
	journal chosenRecorder,
	immunity immunityChecker,
	window time.Duration,
) *SelectionService {
	return &SelectionService{
		userRepo: userRepo,
		journal:  journal,
		immunity: immunity,
		window:   window,
	}
}

// Pool returns the chat's candidate pool: members seen within the
// activity window, minus immune users.
func (s *SelectionService) Pool(ctx context.Context, chatID int64) ([]model.Member, error) {
	cutoff := time.Now().Add(-s.window)
	members, err := s.userRepo.RecentMembers(ctx, chatID, cutoff)
	if err != nil {
		return nil, err
	}

	eligible := members[:0]
	for _, m := range members {
		immune, err := s.immunity.IsImmune(ctx, chatID, m.UserID, m.Username)
		if err != nil {
			return nil, err
		}
		if !immune {
			eligible = append(eligible, m)
		}
	}
	return eligible, nil
}

// PickDaily draws one candidate uniformly at random, records it as
// chosen for the day and returns it. Returns ErrNoCandidates when the
// pool is empty.
func (s *SelectionService) PickDaily(ctx context.Context, chatID int64, day string) (model.Member, error) {
	pool, err := s.Pool(ctx, chatID)
	if err != nil {
		return model.Member{}, err
	}
	if len(pool) == 0 {
		return model.Member{}, ErrNoCandidates
	}

	picked := pool[rand.Intn(len(pool))]
	if err := s.journal.MarkChosen(ctx, chatID, picked.UserID, day); err != nil {
		return model.Member{}, fmt.Errorf("failed to record selection: %w", err)
	}
	return picked, nil
}

// MarkChosen records a user as chosen for the day without a draw,
// used by the coin-flip tease and the threshold alerts.
func (s *SelectionService) MarkChosen(ctx context.Context, chatID, userID int64, day string) error {
	return s.journal.MarkChosen(ctx, chatID, userID, day)
}
