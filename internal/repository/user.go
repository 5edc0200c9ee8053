// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chromobot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// UserRepository handles the per-chat ledger of users and balances.
type UserRepository struct {
	pool         *pgxpool.Pool
	startBalance int64
}

// NewUserRepository creates a new UserRepository instance.
// startBalance is the balance assigned to newly observed users.
func NewUserRepository(pool *pgxpool.Pool, startBalance int64) *UserRepository {
	return &UserRepository{pool: pool, startBalance: startBalance}
}

// Observe upserts a user on any observed activity. A new user is
// created with the starting balance; an existing user only gets its
// username and last_seen refreshed, the balance is never touched here.
func (r *UserRepository) Observe(ctx context.Context, chatID, userID int64, username string) error {
	const query = `
		INSERT INTO users (chat_id, user_id, username, last_seen, balance)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (chat_id, user_id)
		DO UPDATE SET username = EXCLUDED.username, last_seen = EXCLUDED.last_seen
	`

	_, err := r.pool.Exec(ctx, query, chatID, userID, username, r.startBalance)
	if err != nil {
		return fmt.Errorf("failed to observe user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by chat and user ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, chatID, userID int64) (*model.User, error) {
	const query = `
		SELECT chat_id, user_id, username, last_seen, balance
		FROM users
		WHERE chat_id = $1 AND user_id = $2
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, chatID, userID).Scan(
		&user.ChatID,
		&user.UserID,
		&user.Username,
		&user.LastSeen,
		&user.Balance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves a user in a chat by username, case-insensitively.
func (r *UserRepository) GetByUsername(ctx context.Context, chatID int64, username string) (*model.User, error) {
	const query = `
		SELECT chat_id, user_id, username, last_seen, balance
		FROM users
		WHERE chat_id = $1 AND LOWER(username) = LOWER($2)
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, chatID, username).Scan(
		&user.ChatID,
		&user.UserID,
		&user.Username,
		&user.LastSeen,
		&user.Balance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// Adjust applies a signed delta to a user's balance and returns the new
// balance. The update is a single conditional statement: when the delta
// would drive the balance negative nothing is written and
// ErrInsufficientFunds is returned with the current balance intact.
func (r *UserRepository) Adjust(ctx context.Context, chatID, userID int64, delta int64) (int64, error) {
	const query = `
		UPDATE users
		SET balance = balance + $3
		WHERE chat_id = $1 AND user_id = $2 AND balance + $3 >= 0
		RETURNING balance
	`

	var balance int64
	err := r.pool.QueryRow(ctx, query, chatID, userID, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	// No row matched: either the user is unknown or the guard rejected
	// the delta. Distinguish for the caller.
	user, getErr := r.GetByID(ctx, chatID, userID)
	if getErr != nil {
		return 0, getErr
	}
	return user.Balance, ErrInsufficientFunds
}

// BalanceOf returns a user's current balance.
func (r *UserRepository) BalanceOf(ctx context.Context, chatID, userID int64) (int64, error) {
	user, err := r.GetByID(ctx, chatID, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// ResetAll sets every user's balance across all chats to amount.
// Daily counters are untouched; the day key rolls at the same instant.
func (r *UserRepository) ResetAll(ctx context.Context, amount int64) (int64, error) {
	result, err := r.pool.Exec(ctx, `UPDATE users SET balance = $1`, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to reset balances: %w", err)
	}
	return result.RowsAffected(), nil
}

// RecentMembers returns the members of a chat seen at or after the
// cutoff, the raw candidate pool for random selection.
func (r *UserRepository) RecentMembers(ctx context.Context, chatID int64, cutoff time.Time) ([]model.Member, error) {
	const query = `
		SELECT user_id, username
		FROM users
		WHERE chat_id = $1 AND last_seen >= $2
	`

	rows, err := r.pool.Query(ctx, query, chatID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}
