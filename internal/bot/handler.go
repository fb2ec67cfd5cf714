package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/telegram-activity-bot/internal/classify"
	"github.com/telegram-activity-bot/internal/models"
	"github.com/telegram-activity-bot/internal/report"
)

// handleUpdate processes incoming update
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Wrap in recover middleware
	b.recoverMiddleware(func() {
		// Handle message
		if update.Message != nil {
			b.handleMessage(ctx, update.Message)
		}
	})
}

// handleMessage processes incoming message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// Channel posts and some service messages carry no sender
	if message.From == nil {
		return
	}

	// Only process messages from the configured group chat (and commands
	// from the admin chat, if one is set)
	fromGroup := message.Chat.ID == b.config.GroupChatID
	fromAdmin := b.config.AdminChatID != 0 && message.Chat.ID == b.config.AdminChatID
	if !fromGroup && !fromAdmin {
		b.logger.Debug().
			Int64("chat_id", message.Chat.ID).
			Int64("expected_chat_id", b.config.GroupChatID).
			Msg("Ignoring message from different chat")
		return
	}

	// Handle commands
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	// Everything else is a candidate activity event
	if fromGroup {
		b.recordActivity(ctx, message)
	}
}

// recordActivity classifies the message and persists chat metadata plus
// the resulting activity record. Events without derivable content are
// skipped silently; store write failures are logged and otherwise
// considered handled.
func (b *Bot) recordActivity(ctx context.Context, message *tgbotapi.Message) {
	b.upsertChat(ctx, message.Chat)

	event := classify.EventFromMessage(message)
	kind, content, ok := classify.Classify(event)
	if !ok {
		// Not an error: the event simply has nothing to record
		return
	}

	now := time.Now().In(b.timezone)
	rec := &models.ActivityRecord{
		UserID:      event.UserID,
		DisplayName: event.DisplayName,
		Kind:        kind,
		Content:     content,
		OccurredOn:  now.Format("2006-01-02"),
		CreatedAt:   now.UTC(),
	}

	if err := b.storage.InsertActivity(ctx, rec); err != nil {
		b.logger.Error().
			Err(err).
			Int64("user_id", rec.UserID).
			Str("kind", kind.String()).
			Msg("Failed to save activity record")
	}
}

// upsertChat refreshes the chat record for the message's chat
func (b *Bot) upsertChat(ctx context.Context, chat *tgbotapi.Chat) {
	kind := "group"
	if chat.IsPrivate() {
		kind = "private"
	}

	err := b.storage.UpsertChat(ctx, &models.Chat{
		ID:          chat.ID,
		Title:       chat.Title,
		Kind:        kind,
		FirstSeenAt: time.Now().UTC(),
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Int64("chat_id", chat.ID).
			Msg("Failed to upsert chat")
	}
}

// handleCommand processes bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	b.logger.Info().
		Str("command", command).
		Int64("user_id", message.From.ID).
		Str("username", message.From.UserName).
		Msg("Received command")

	switch command {
	case "report":
		b.handleReportCommand(ctx, message)
	case "digest":
		b.handleDigestCommand(ctx, message, false)
	case "weekly":
		b.handleDigestCommand(ctx, message, true)
	case "start", "help":
		b.handleHelpCommand(message)
	default:
		b.sendErrorMessage(message.Chat.ID, "❓ Unknown command. Use /help for the command list.")
	}
}

// handleReportCommand handles /report: an on-demand report covering only
// the requesting user, for today's window.
func (b *Bot) handleReportCommand(ctx context.Context, message *tgbotapi.Message) {
	start, end := report.DayWindow(time.Now().In(b.timezone))

	err := b.dispatcher.DispatchUser(ctx, message.From.ID, message.Chat.ID, start, end)
	if err != nil {
		b.logger.Error().
			Err(err).
			Int64("user_id", message.From.ID).
			Msg("On-demand report failed")
		b.sendErrorMessage(message.Chat.ID, "❌ Could not build your report, try again later.")
	}
}

// handleDigestCommand handles /digest and /weekly: a manually triggered
// full reporting run over today's or the trailing week's window.
func (b *Bot) handleDigestCommand(ctx context.Context, message *tgbotapi.Message, weekly bool) {
	now := time.Now().In(b.timezone)
	start, end := report.DayWindow(now)
	if weekly {
		start, end = report.WeekWindow(now)
	}

	outcome, err := b.dispatcher.DispatchAll(ctx, start, end)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("start", start).
			Str("end", end).
			Msg("Manual reporting run failed")
		b.sendErrorMessage(message.Chat.ID, "❌ Could not run the digest, try again later.")
		return
	}

	b.sendMessage(message.Chat.ID, fmt.Sprintf(
		"✅ Digest for %s — %s finished: %d sent, %d failed",
		start, end, outcome.Sent, outcome.Failed,
	))
}

// handleHelpCommand handles /help and /start commands
func (b *Bot) handleHelpCommand(message *tgbotapi.Message) {
	helpMsg := "👋 *Hi! I track group activity and send digests*\n\n" +
		"I record messages, links, photos, videos, documents and voice " +
		"messages in this group, and deliver per-member activity reports " +
		"with an AI summary.\n\n" +
		"*Commands:*\n" +
		"/report - Your own report for today\n" +
		"/digest - Run today's digest for everyone\n" +
		"/weekly - Run the weekly digest for everyone\n" +
		"/help - Show this message\n\n" +
		"Daily and weekly digests also run automatically on schedule."

	b.sendMessage(message.Chat.ID, helpMsg)
}
