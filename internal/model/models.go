// Package model defines the data models for the chromosome bot.
package model

import "time"

// User represents a chat member known to the bot. Every chat keeps an
// independent economy, so the same Telegram user has one row per chat.
type User struct {
	ChatID   int64     `db:"chat_id"`
	UserID   int64     `db:"user_id"`
	Username string    `db:"username"`
	LastSeen time.Time `db:"last_seen"`
	Balance  int64     `db:"balance"`
}

// ImmunityEntry exempts a user from random selection and from keeping
// threshold-triggering gifts. Either UserID or Username may be set; a
// user matching either form is immune.
type ImmunityEntry struct {
	ChatID   int64  `db:"chat_id"`
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
}

// Highlight is one row of the daily over-threshold listing.
type Highlight struct {
	UserID   int64
	Username string
	Received int64
}

// Member is a minimal (id, username) pair used for candidate pools and
// selection listings.
type Member struct {
	UserID   int64
	Username string
}
