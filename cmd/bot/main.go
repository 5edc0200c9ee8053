// Package main is the entry point for the chromosome bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chromobot/internal/bot"
	"chromobot/internal/config"
	"chromobot/internal/handler"
	"chromobot/internal/pkg/db"
	"chromobot/internal/pkg/gameday"
	"chromobot/internal/pkg/lock"
	"chromobot/internal/repository"
	"chromobot/internal/scheduler"
	"chromobot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool.Pool, cfg.Game.StartBalance)
	journalRepo := repository.NewJournalRepository(dbPool.Pool)
	immunityRepo := repository.NewImmunityRepository(dbPool.Pool)

	// Services
	immunityService := service.NewImmunityService(immunityRepo, cfg.Immunity.Usernames)
	selectionService := service.NewSelectionService(userRepo, journalRepo, immunityService, cfg.RecentWindow())
	giftService := service.NewGiftService(userRepo, journalRepo, immunityService, selectionService, cfg.Game.AlertThreshold)
	resolver := service.NewTargetResolver(userRepo)

	clock := gameday.Clock{ResetHour: cfg.Reset.Hour, ResetMinute: cfg.Reset.Minute}
	memberLock := lock.NewMemberLock()

	// Handlers
	deps := &bot.Dependencies{
		Config:          cfg,
		DailyHandler:    handler.NewDailyHandler(userRepo, journalRepo, selectionService, resolver, clock, cfg.Game.AlertThreshold),
		GiftHandler:     handler.NewGiftHandler(userRepo, giftService, resolver, memberLock, clock, cfg.Game.AlertThreshold),
		ImmunityHandler: handler.NewImmunityHandler(immunityService),
		InfoHandler:     handler.NewInfoHandler(),
		ActivityHandler: handler.NewActivityHandler(userRepo),
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Daily balance reset
	resetTask := scheduler.NewResetTask(userRepo, clock, cfg.Game.StartBalance)
	resetTask.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: users ledger, one economy per chat
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			chat_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			username VARCHAR(255) NOT NULL DEFAULT '',
			last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			PRIMARY KEY (chat_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users(chat_id, last_seen DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: per-day given/received counters
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_stats (
			chat_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			day DATE NOT NULL,
			given BIGINT NOT NULL DEFAULT 0,
			received BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (chat_id, user_id, day),
			FOREIGN KEY (chat_id, user_id) REFERENCES users(chat_id, user_id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_daily_stats_received ON daily_stats(chat_id, day, received DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: daily_stats table created")

	// Migration 3: who was chosen as daily member
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_selection (
			chat_id BIGINT NOT NULL,
			day DATE NOT NULL,
			user_id BIGINT NOT NULL,
			PRIMARY KEY (chat_id, day, user_id),
			FOREIGN KEY (chat_id, user_id) REFERENCES users(chat_id, user_id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: daily_selection table created")

	// Migration 4: immunity allow-list, independent of the users table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS immunity (
			chat_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL DEFAULT 0,
			username VARCHAR(255) NOT NULL DEFAULT '',
			PRIMARY KEY (chat_id, user_id, username)
		);
		CREATE INDEX IF NOT EXISTS idx_immunity_username ON immunity(chat_id, LOWER(username));
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 4: immunity table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
