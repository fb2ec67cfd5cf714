package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/telegram-activity-bot/internal/models"
)

// activityColumns is the column list for activity selects.
const activityColumns = "id,user_id,display_name,kind,content,occurred_on,created_at"

// InsertActivity stores one classified activity record. Records are
// append-only and immutable once written.
func (c *Client) InsertActivity(ctx context.Context, rec *models.ActivityRecord) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.withRetry(ctx, "insert_activity", func() error {
		data := map[string]interface{}{
			"user_id":      rec.UserID,
			"display_name": rec.DisplayName,
			"kind":         rec.Kind.String(),
			"content":      rec.Content,
			"occurred_on":  rec.OccurredOn,
			"created_at":   rec.CreatedAt,
		}

		_, _, err := c.client.From("activities").
			Insert(data, false, "", "", "").
			Execute()

		if err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}

		c.logger.Debug().
			Int64("user_id", rec.UserID).
			Str("kind", rec.Kind.String()).
			Str("occurred_on", rec.OccurredOn).
			Msg("Activity record saved")

		return nil
	})
}

// ActivitiesForRange retrieves all activity records whose occurred_on date
// falls within [start, end] inclusive, ordered by created_at ascending.
// Dates use the YYYY-MM-DD format.
func (c *Client) ActivitiesForRange(ctx context.Context, start, end string) ([]models.ActivityRecord, error) {
	return c.selectActivities(ctx, "get_activities_for_range", 0, start, end)
}

// UserActivitiesForRange retrieves one user's activity records within
// [start, end] inclusive, ordered by created_at ascending.
func (c *Client) UserActivitiesForRange(ctx context.Context, userID int64, start, end string) ([]models.ActivityRecord, error) {
	return c.selectActivities(ctx, "get_user_activities_for_range", userID, start, end)
}

// selectActivities runs the filtered select; userID 0 means all users.
func (c *Client) selectActivities(ctx context.Context, operation string, userID int64, start, end string) ([]models.ActivityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var records []models.ActivityRecord

	err := c.withRetry(ctx, operation, func() error {
		query := c.client.From("activities").
			Select(activityColumns, "exact", false).
			Gte("occurred_on", start).
			Lte("occurred_on", end)

		if userID != 0 {
			query = query.Eq("user_id", fmt.Sprintf("%d", userID))
		}

		data, _, err := query.
			Order("created_at", nil).
			Execute()

		if err != nil {
			return fmt.Errorf("failed to fetch activities: %w", err)
		}

		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to unmarshal activities: %w", err)
		}

		return nil
	})

	if err != nil {
		c.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Str("start", start).
			Str("end", end).
			Msg("Failed to get activities for range")
		return nil, err
	}

	c.logger.Debug().
		Int64("user_id", userID).
		Str("start", start).
		Str("end", end).
		Int("count", len(records)).
		Msg("Retrieved activities for range")

	return records, nil
}
