package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chromobot/internal/model"
)

// JournalRepository handles the per-day given/received counters and the
// daily selection records.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository instance.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// ensureStatRow lazily creates a zeroed counter row inside tx.
func ensureStatRow(ctx context.Context, tx pgx.Tx, chatID, userID int64, day string) error {
	const query = `
		INSERT INTO daily_stats (chat_id, user_id, day, given, received)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (chat_id, user_id, day) DO NOTHING
	`
	_, err := tx.Exec(ctx, query, chatID, userID, day)
	return err
}

// RecordTransfer increments the giver's given counter and the
// recipient's received counter for the day. Both increments happen in
// one transaction: they apply together or not at all.
func (r *JournalRepository) RecordTransfer(ctx context.Context, chatID, giverID, recipientID, amount int64, day string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transfer tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureStatRow(ctx, tx, chatID, giverID, day); err != nil {
		return fmt.Errorf("failed to ensure giver stats: %w", err)
	}
	if err := ensureStatRow(ctx, tx, chatID, recipientID, day); err != nil {
		return fmt.Errorf("failed to ensure recipient stats: %w", err)
	}

	const givenQuery = `
		UPDATE daily_stats SET given = given + $4
		WHERE chat_id = $1 AND user_id = $2 AND day = $3
	`
	if _, err := tx.Exec(ctx, givenQuery, chatID, giverID, day, amount); err != nil {
		return fmt.Errorf("failed to increment given: %w", err)
	}

	const receivedQuery = `
		UPDATE daily_stats SET received = received + $4
		WHERE chat_id = $1 AND user_id = $2 AND day = $3
	`
	if _, err := tx.Exec(ctx, receivedQuery, chatID, recipientID, day, amount); err != nil {
		return fmt.Errorf("failed to increment received: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}
	return nil
}

// ReceivedToday returns the received counter for a user on the day,
// 0 when no row exists.
func (r *JournalRepository) ReceivedToday(ctx context.Context, chatID, userID int64, day string) (int64, error) {
	const query = `
		SELECT received FROM daily_stats
		WHERE chat_id = $1 AND user_id = $2 AND day = $3
	`

	var received int64
	err := r.pool.QueryRow(ctx, query, chatID, userID, day).Scan(&received)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get received counter: %w", err)
	}
	return received, nil
}

// Bounce redirects amount of received-counter from one user to another
// on the same day: the source counter is decremented floored at zero,
// the destination counter incremented by the full amount. Only the
// counters move, balances are untouched. Returns the destination's new
// received total.
func (r *JournalRepository) Bounce(ctx context.Context, chatID, fromID, toID, amount int64, day string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin bounce tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureStatRow(ctx, tx, chatID, fromID, day); err != nil {
		return 0, fmt.Errorf("failed to ensure source stats: %w", err)
	}
	if err := ensureStatRow(ctx, tx, chatID, toID, day); err != nil {
		return 0, fmt.Errorf("failed to ensure destination stats: %w", err)
	}

	const decrQuery = `
		UPDATE daily_stats
		SET received = CASE WHEN received >= $4 THEN received - $4 ELSE 0 END
		WHERE chat_id = $1 AND user_id = $2 AND day = $3
	`
	if _, err := tx.Exec(ctx, decrQuery, chatID, fromID, day, amount); err != nil {
		return 0, fmt.Errorf("failed to decrement received: %w", err)
	}

	const incrQuery = `
		UPDATE daily_stats SET received = received + $4
		WHERE chat_id = $1 AND user_id = $2 AND day = $3
		RETURNING received
	`
	var total int64
	if err := tx.QueryRow(ctx, incrQuery, chatID, toID, day, amount).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to increment received: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit bounce: %w", err)
	}
	return total, nil
}

// MarkChosen records a user as chosen for the day. Re-marking the same
// user on the same day is a no-op.
func (r *JournalRepository) MarkChosen(ctx context.Context, chatID, userID int64, day string) error {
	const query = `
		INSERT INTO daily_selection (chat_id, day, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, day, user_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, chatID, day, userID)
	if err != nil {
		return fmt.Errorf("failed to mark chosen: %w", err)
	}
	return nil
}

// TodayHighlights returns the users whose received counter exceeds the
// threshold on the day, descending by received, and the de-duplicated
// set of users chosen that day.
func (r *JournalRepository) TodayHighlights(ctx context.Context, chatID int64, day string, threshold int64) ([]model.Highlight, []model.Member, error) {
	const receiversQuery = `
		SELECT u.user_id, u.username, s.received
		FROM daily_stats s
		JOIN users u ON u.chat_id = s.chat_id AND u.user_id = s.user_id
		WHERE s.chat_id = $1 AND s.day = $2 AND s.received > $3
		ORDER BY s.received DESC
	`

	rows, err := r.pool.Query(ctx, receiversQuery, chatID, day, threshold)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get top receivers: %w", err)
	}
	defer rows.Close()

	var receivers []model.Highlight
	for rows.Next() {
		var h model.Highlight
		if err := rows.Scan(&h.UserID, &h.Username, &h.Received); err != nil {
			return nil, nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		receivers = append(receivers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating highlights: %w", err)
	}

	const chosenQuery = `
		SELECT DISTINCT d.user_id, u.username
		FROM daily_selection d
		JOIN users u ON u.chat_id = d.chat_id AND u.user_id = d.user_id
		WHERE d.chat_id = $1 AND d.day = $2
	`

	chosenRows, err := r.pool.Query(ctx, chosenQuery, chatID, day)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get chosen users: %w", err)
	}
	defer chosenRows.Close()

	var chosen []model.Member
	for chosenRows.Next() {
		var m model.Member
		if err := chosenRows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, nil, fmt.Errorf("failed to scan chosen user: %w", err)
		}
		chosen = append(chosen, m)
	}
	if err := chosenRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating chosen users: %w", err)
	}

	return receivers, chosen, nil
}
