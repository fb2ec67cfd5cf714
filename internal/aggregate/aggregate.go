// Package aggregate groups stored activity records by user for one
// reporting window. Aggregation is a pure function of the record snapshot
// and the window bounds: the same input always yields the same groupings
// and counts.
package aggregate

import (
	"github.com/telegram-activity-bot/internal/models"
)

// Aggregate filters records to the inclusive [start, end] date window and
// groups them by user. Users appear in first-encountered order; a user's
// display name is the first one seen for that ID within the window.
// Dates use the YYYY-MM-DD format, which compares correctly as strings.
func Aggregate(records []models.ActivityRecord, start, end string) []models.UserActivity {
	byUser := make(map[int64]*models.UserActivity)
	order := make([]int64, 0)

	for _, rec := range records {
		if rec.OccurredOn < start || rec.OccurredOn > end {
			continue
		}

		ua, exists := byUser[rec.UserID]
		if !exists {
			ua = &models.UserActivity{
				UserID:      rec.UserID,
				DisplayName: rec.DisplayName,
				Counts:      make(map[models.ActivityKind]int),
			}
			byUser[rec.UserID] = ua
			order = append(order, rec.UserID)
		}

		ua.Records = append(ua.Records, rec)
		ua.Counts[rec.Kind]++
		ua.Total++
	}

	result := make([]models.UserActivity, 0, len(order))
	for _, userID := range order {
		result = append(result, *byUser[userID])
	}

	return result
}
