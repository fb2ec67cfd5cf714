package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/telegram-activity-bot/internal/bot"
	"github.com/telegram-activity-bot/internal/config"
	"github.com/telegram-activity-bot/internal/llm"
	"github.com/telegram-activity-bot/internal/report"
	"github.com/telegram-activity-bot/internal/scheduler"
	"github.com/telegram-activity-bot/internal/server"
	"github.com/telegram-activity-bot/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.Environment)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("timezone", cfg.Timezone).
		Str("daily_cron", cfg.DailyCronSpec).
		Str("weekly_cron", cfg.WeeklyCronSpec).
		Msg("Starting Telegram Activity Digest Bot")

	timezone, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Failed to load timezone")
	}

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage client
	logger.Info().Msg("Initializing Supabase client...")
	storageClient, err := storage.NewClient(
		cfg.SupabaseURL,
		cfg.SupabaseKey,
		cfg.SupabaseTimeout,
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create storage client")
	}

	// Ping Supabase to verify connection
	if err := storageClient.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Supabase")
	}
	logger.Info().Msg("Supabase connection successful")

	// Initialize summarizer client
	logger.Info().Msg("Initializing Gemini summarizer client...")
	llmClient := llm.NewClient(cfg.GeminiAPIKey, cfg.GeminiTimeout, logger)
	defer func() {
		if err := llmClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close summarizer client")
		}
	}()

	// Initialize report pipeline
	composer := report.NewComposer(llmClient, cfg.MaxPromptItems, logger)

	// Initialize bot
	logger.Info().Msg("Initializing Telegram bot...")
	telegramBot, err := bot.New(cfg, storageClient, timezone, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bot")
	}

	// The bot delivers notifications, so the dispatcher is wired after it
	dispatcher := report.NewDispatcher(
		storageClient,
		composer,
		telegramBot,
		time.Duration(cfg.SendIntervalMs)*time.Millisecond,
		cfg.AdminChatID,
		logger,
	)
	telegramBot.SetDispatcher(dispatcher)

	logger.Info().
		Str("username", telegramBot.GetUsername()).
		Int64("group_chat_id", cfg.GroupChatID).
		Msg("Bot initialized successfully")

	// Initialize scheduler for daily and weekly reports
	logger.Info().Msg("Initializing report scheduler...")
	sched, err := scheduler.New(dispatcher, cfg, timezone, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	// Start scheduler in background
	go func() {
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("Scheduler stopped with error")
		}
	}()

	// Start health endpoint in background
	health := server.NewHealth(cfg.HealthAddr, logger)
	go func() {
		if err := health.Start(); err != nil {
			logger.Error().Err(err).Msg("Health endpoint stopped with error")
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start bot in a goroutine
	botErrChan := make(chan error, 1)
	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			botErrChan <- err
		}
	}()

	logger.Info().Msg("Bot is running. Press Ctrl+C to stop.")

	// Wait for termination signal or bot error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
	case err := <-botErrChan:
		logger.Error().Err(err).Msg("Bot stopped with error")
	}

	// Graceful shutdown
	logger.Info().Msg("Initiating graceful shutdown...")
	cancel()

	// Stop scheduler and wait for an in-flight run
	logger.Info().Msg("Stopping scheduler...")
	sched.Stop()

	// Give the bot some time to finish processing
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := health.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to stop health endpoint")
	}

	// Create a channel to signal shutdown complete
	done := make(chan struct{})
	go func() {
		telegramBot.Stop() // This will wait for WaitGroup internally
		close(done)
	}()

	// Wait for shutdown or timeout
	select {
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Shutdown timeout exceeded, some events may be lost")
	case <-done:
		logger.Info().Msg("Graceful shutdown completed")
	}

	logger.Info().Msg("Bot stopped")
}

// setupLogger configures and returns a zerolog logger
func setupLogger(level, environment string) zerolog.Logger {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	var logger zerolog.Logger
	if environment == "development" {
		// Pretty console output for development
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return logger
}
