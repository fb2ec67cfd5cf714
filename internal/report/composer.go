package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/telegram-activity-bot/internal/models"
)

// Summarizer produces a short natural-language summary for a prompt.
// Calls are fallible and input-size bound; the composer never lets a
// summarizer failure escape.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

const (
	// NoActivitySummary replaces the summary when a user has no
	// text-like activity; the summarizer is not invoked at all.
	NoActivitySummary = "No text activity to summarize for this period."

	// FallbackSummary replaces the summary when the summarizer fails.
	FallbackSummary = "Summary is temporarily unavailable."
)

// kindLabels maps each activity kind to its report line label.
var kindLabels = map[models.ActivityKind]string{
	models.KindText:     "💬 Text",
	models.KindLink:     "🔗 Links",
	models.KindPhoto:    "📷 Photos",
	models.KindVideo:    "🎬 Videos",
	models.KindDocument: "📄 Documents",
	models.KindAudio:    "🎙 Audio",
}

// Composer builds per-user reports from aggregated activity.
type Composer struct {
	summarizer     Summarizer
	maxPromptItems int
	logger         zerolog.Logger
}

// NewComposer creates a new report composer. maxPromptItems bounds how
// many text-like items feed the summarization prompt.
func NewComposer(summarizer Summarizer, maxPromptItems int, logger zerolog.Logger) *Composer {
	return &Composer{
		summarizer:     summarizer,
		maxPromptItems: maxPromptItems,
		logger:         logger.With().Str("component", "composer").Logger(),
	}
}

// Compose builds the report for one user: a title line, the summary (or a
// fixed fallback), and the per-kind count breakdown with a total. Counts
// always cover every kind, including items excluded from the prompt.
func (c *Composer) Compose(ctx context.Context, ua models.UserActivity) models.Report {
	summary := c.summarize(ctx, ua)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *Activity report for %s*\n\n", displayName(ua)))
	sb.WriteString(summary)
	sb.WriteString("\n\n*Breakdown:*\n")

	for _, kind := range models.Kinds {
		sb.WriteString(fmt.Sprintf("%s: %d\n", kindLabels[kind], ua.Counts[kind]))
	}

	sb.WriteString(fmt.Sprintf("\n*Total:* %d", ua.Total))

	return models.Report{
		UserID:      ua.UserID,
		DisplayName: ua.DisplayName,
		Text:        sb.String(),
	}
}

// summarize returns the summary section text, substituting fixed sentences
// when there is nothing to summarize or the summarizer fails.
func (c *Composer) summarize(ctx context.Context, ua models.UserActivity) string {
	items := textLikeItems(ua.Records)
	if len(items) == 0 {
		c.logger.Debug().
			Int64("user_id", ua.UserID).
			Msg("No text-like activity, skipping summarizer")
		return NoActivitySummary
	}

	total := len(items)
	if len(items) > c.maxPromptItems {
		items = items[:c.maxPromptItems]
	}

	prompt := c.buildPrompt(displayName(ua), items)

	c.logger.Debug().
		Int64("user_id", ua.UserID).
		Int("prompt_items", len(items)).
		Int("text_like_total", total).
		Int("prompt_length", len(prompt)).
		Msg("Requesting activity summary")

	summary, err := c.summarizer.Summarize(ctx, prompt)
	if err != nil {
		c.logger.Error().
			Err(err).
			Int64("user_id", ua.UserID).
			Msg("Summarizer failed, using fallback text")
		return FallbackSummary
	}

	return summary
}

// buildPrompt constructs the summarization prompt from text-like items
func (c *Composer) buildPrompt(name string, items []models.ActivityRecord) string {
	var sb strings.Builder

	sb.WriteString("You are an assistant writing a short activity digest for a group chat member.\n")
	sb.WriteString(fmt.Sprintf("Summarize what %s contributed, based on the entries below.\n\n", name))
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Write 2-3 plain sentences, no headings and no lists\n")
	sb.WriteString("2. Mention shared links and files briefly, do not quote URLs in full\n")
	sb.WriteString("3. Stay factual, do not invent activity that is not in the entries\n\n")
	sb.WriteString("Entries:\n")

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- [%s] %s\n", item.Kind, item.Content))
	}

	return sb.String()
}

// textLikeItems filters records down to the kinds whose content can feed
// the summarizer. Binary media kinds contribute to counts only.
func textLikeItems(records []models.ActivityRecord) []models.ActivityRecord {
	items := make([]models.ActivityRecord, 0, len(records))
	for _, rec := range records {
		if rec.Kind.IsTextLike() {
			items = append(items, rec)
		}
	}
	return items
}

// displayName picks a printable name for the report title
func displayName(ua models.UserActivity) string {
	if ua.DisplayName != "" {
		return ua.DisplayName
	}
	return fmt.Sprintf("User%d", ua.UserID)
}
