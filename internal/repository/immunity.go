package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chromobot/internal/model"
)

// ImmunityRepository handles the per-chat allow-list of users exempt
// from random selection and from keeping alert-triggering gifts.
// Entries are independent of the users table: an entry may reference a
// user never seen, or a username not yet claimed by any user ID.
type ImmunityRepository struct {
	pool *pgxpool.Pool
}

// NewImmunityRepository creates a new ImmunityRepository instance.
func NewImmunityRepository(pool *pgxpool.Pool) *ImmunityRepository {
	return &ImmunityRepository{pool: pool}
}

// Add stores an immunity entry. userID 0 and username "" mean unset;
// at least one must be provided by the caller. Duplicate entries are
// ignored.
func (r *ImmunityRepository) Add(ctx context.Context, chatID, userID int64, username string) error {
	const query = `
		INSERT INTO immunity (chat_id, user_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, user_id, username) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, chatID, userID, username)
	if err != nil {
		return fmt.Errorf("failed to add immunity entry: %w", err)
	}
	return nil
}

// Remove deletes immunity entries matching the user ID (when non-zero)
// or the username (case-insensitive). Returns the number of rows
// removed.
func (r *ImmunityRepository) Remove(ctx context.Context, chatID, userID int64, username string) (int64, error) {
	if userID != 0 {
		result, err := r.pool.Exec(ctx,
			`DELETE FROM immunity WHERE chat_id = $1 AND user_id = $2`,
			chatID, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to remove immunity entry: %w", err)
		}
		return result.RowsAffected(), nil
	}

	if username != "" {
		result, err := r.pool.Exec(ctx,
			`DELETE FROM immunity WHERE chat_id = $1 AND LOWER(username) = LOWER($2)`,
			chatID, username)
		if err != nil {
			return 0, fmt.Errorf("failed to remove immunity entry: %w", err)
		}
		return result.RowsAffected(), nil
	}

	return 0, nil
}

// HasUserID reports whether the chat has an entry for the user ID.
func (r *ImmunityRepository) HasUserID(ctx context.Context, chatID, userID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM immunity WHERE chat_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, chatID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check immunity by id: %w", err)
	}
	return exists, nil
}

// HasUsername reports whether the chat has an entry for the username,
// case-insensitively.
func (r *ImmunityRepository) HasUsername(ctx context.Context, chatID int64, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM immunity WHERE chat_id = $1 AND LOWER(username) = LOWER($2))`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, chatID, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check immunity by username: %w", err)
	}
	return exists, nil
}

// List returns all immunity entries for a chat.
func (r *ImmunityRepository) List(ctx context.Context, chatID int64) ([]model.ImmunityEntry, error) {
	const query = `
		SELECT chat_id, user_id, username
		FROM immunity
		WHERE chat_id = $1
		ORDER BY user_id, username
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list immunity entries: %w", err)
	}
	defer rows.Close()

	var entries []model.ImmunityEntry
	for rows.Next() {
		var e model.ImmunityEntry
		if err := rows.Scan(&e.ChatID, &e.UserID, &e.Username); err != nil {
			return nil, fmt.Errorf("failed to scan immunity entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating immunity entries: %w", err)
	}

	return entries, nil
}
