package storage

import (
	"context"
	"fmt"

	"github.com/telegram-activity-bot/internal/models"
)

// UpsertChat creates or refreshes the chat record for the given ID.
// Repeated sightings of the same chat update its title and kind, never
// creating a second row.
func (c *Client) UpsertChat(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.withRetry(ctx, "upsert_chat", func() error {
		data := map[string]interface{}{
			"id":            chat.ID,
			"title":         chat.Title,
			"kind":          chat.Kind,
			"first_seen_at": chat.FirstSeenAt,
		}

		_, _, err := c.client.From("chats").
			Insert(data, true, "id", "", "").
			Execute()

		if err != nil {
			return fmt.Errorf("failed to upsert chat: %w", err)
		}

		c.logger.Debug().
			Int64("chat_id", chat.ID).
			Str("kind", chat.Kind).
			Msg("Chat upserted")

		return nil
	})
}
