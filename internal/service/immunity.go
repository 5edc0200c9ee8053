// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chromobot/internal/model"
	"chromobot/internal/repository"
)

// Immunity-related errors.
var (
	ErrNoIdentifier = errors.New("either a user id or a username is required")
)

// ImmunityService decides whether a chat member is immune. Immune users
// are excluded from random selection and have threshold-triggering
// gifts bounced to someone else. The decision merges the per-chat
// immunity table with a statically configured set of usernames.
type ImmunityService struct {
	repo *repository.ImmunityRepository
	seed map[string]struct{}
}

// NewImmunityService creates a new ImmunityService instance.
// seedUsernames is the static exemption list from configuration.
func NewImmunityService(repo *repository.ImmunityRepository, seedUsernames []string) *ImmunityService {
	seed := make(map[string]struct{}, len(seedUsernames))
	for _, name := range seedUsernames {
		name = strings.ToLower(strings.TrimPrefix(name, "@"))
		if name != "" {
			seed[name] = struct{}{}
		}
	}
	return &ImmunityService{repo: repo, seed: seed}
}

// IsImmune reports whether a user matches any immunity grant, by ID or
// by username (case-insensitive). Zero ID and empty username never
// match.
func (s *ImmunityService) IsImmune(ctx context.Context, chatID, userID int64, username string) (bool, error) {
	if username != "" {
		if _, ok := s.seed[strings.ToLower(username)]; ok {
			return true, nil
		}
	}

	if userID != 0 {
		found, err := s.repo.HasUserID(ctx, chatID, userID)
		if err != nil {
			return false, fmt.Errorf("failed to check immunity: %w", err)
		}
		if found {
			return true, nil
		}
	}

	if username != "" {
		found, err := s.repo.HasUsername(ctx, chatID, username)
		if err != nil {
			return false, fmt.Errorf("failed to check immunity: %w", err)
		}
		if found {
			return true, nil
		}
	}

	return false, nil
}

// Grant stores an immunity entry for the chat.
func (s *ImmunityService) Grant(ctx context.Context, chatID, userID int64, username string) error {
	if userID == 0 && username == "" {
		return ErrNoIdentifier
	}
	return s.repo.Add(ctx, chatID, userID, username)
}

// Revoke removes immunity entries for the chat and returns the number
// of rows removed.
func (s *ImmunityService) Revoke(ctx context.Context, chatID, userID int64, username string) (int64, error) {
	if userID == 0 && username == "" {
		return 0, ErrNoIdentifier
	}
	return s.repo.Remove(ctx, chatID, userID, username)
}

// Entries lists the chat's immunity entries.
func (s *ImmunityService) Entries(ctx context.Context, chatID int64) ([]model.ImmunityEntry, error) {
	return s.repo.List(ctx, chatID)
}
