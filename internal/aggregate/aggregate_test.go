package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/telegram-activity-bot/internal/models"
)

func rec(userID int64, name string, kind models.ActivityKind, content, day string) models.ActivityRecord {
	return models.ActivityRecord{
		UserID:      userID,
		DisplayName: name,
		Kind:        kind,
		Content:     content,
		OccurredOn:  day,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateGroupsAndCounts(t *testing.T) {
	// User A has 3 text and 1 photo on day D; user B has nothing in the
	// window and must not appear
	records := []models.ActivityRecord{
		rec(1, "alice", models.KindText, "m1", "2024-05-01"),
		rec(1, "alice", models.KindText, "m2", "2024-05-01"),
		rec(1, "alice", models.KindPhoto, "p1", "2024-05-01"),
		rec(1, "alice", models.KindText, "m3", "2024-05-01"),
		rec(2, "bob", models.KindText, "other day", "2024-04-30"),
	}

	got := Aggregate(records, "2024-05-01", "2024-05-01")

	if len(got) != 1 {
		t.Fatalf("expected 1 aggregated user, got %d", len(got))
	}

	ua := got[0]
	if diff := cmp.Diff(int64(1), ua.UserID); diff != "" {
		t.Errorf("user id mismatch (-want +got):\n%s", diff)
	}
	wantCounts := map[models.ActivityKind]int{
		models.KindText:  3,
		models.KindPhoto: 1,
	}
	if diff := cmp.Diff(wantCounts, ua.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(4, ua.Total); diff != "" {
		t.Errorf("total mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(4, len(ua.Records)); diff != "" {
		t.Errorf("record count mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateWindowBoundsInclusive(t *testing.T) {
	records := []models.ActivityRecord{
		rec(1, "alice", models.KindText, "before", "2024-04-30"),
		rec(1, "alice", models.KindText, "start", "2024-05-01"),
		rec(1, "alice", models.KindText, "mid", "2024-05-03"),
		rec(1, "alice", models.KindText, "end", "2024-05-07"),
		rec(1, "alice", models.KindText, "after", "2024-05-08"),
	}

	got := Aggregate(records, "2024-05-01", "2024-05-07")

	if len(got) != 1 {
		t.Fatalf("expected 1 aggregated user, got %d", len(got))
	}
	if diff := cmp.Diff(3, got[0].Total); diff != "" {
		t.Errorf("total mismatch (-want +got):\n%s", diff)
	}

	contents := make([]string, 0, len(got[0].Records))
	for _, r := range got[0].Records {
		contents = append(contents, r.Content)
	}
	if diff := cmp.Diff([]string{"start", "mid", "end"}, contents); diff != "" {
		t.Errorf("window contents mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateFirstSeenDisplayNameWins(t *testing.T) {
	records := []models.ActivityRecord{
		rec(1, "old_name", models.KindText, "m1", "2024-05-01"),
		rec(1, "new_name", models.KindText, "m2", "2024-05-01"),
	}

	got := Aggregate(records, "2024-05-01", "2024-05-01")

	if len(got) != 1 {
		t.Fatalf("expected 1 aggregated user, got %d", len(got))
	}
	if diff := cmp.Diff("old_name", got[0].DisplayName); diff != "" {
		t.Errorf("display name mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateUserOrderIsFirstEncountered(t *testing.T) {
	records := []models.ActivityRecord{
		rec(3, "carol", models.KindText, "m1", "2024-05-01"),
		rec(1, "alice", models.KindText, "m2", "2024-05-01"),
		rec(3, "carol", models.KindText, "m3", "2024-05-01"),
		rec(2, "bob", models.KindText, "m4", "2024-05-01"),
	}

	got := Aggregate(records, "2024-05-01", "2024-05-01")

	ids := make([]int64, 0, len(got))
	for _, ua := range got {
		ids = append(ids, ua.UserID)
	}
	if diff := cmp.Diff([]int64{3, 1, 2}, ids); diff != "" {
		t.Errorf("user order mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateIdempotentOverSnapshot(t *testing.T) {
	records := []models.ActivityRecord{
		rec(1, "alice", models.KindText, "m1", "2024-05-01"),
		rec(2, "bob", models.KindLink, "https://youtu.be/x", "2024-05-02"),
		rec(1, "alice", models.KindPhoto, "p1", "2024-05-02"),
		rec(3, "carol", models.KindAudio, "[audio message]", "2024-05-03"),
	}

	first := Aggregate(records, "2024-05-01", "2024-05-03")
	second := Aggregate(records, "2024-05-01", "2024-05-03")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two runs over the same snapshot differ (-first +second):\n%s", diff)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(nil, "2024-05-01", "2024-05-01")
	if len(got) != 0 {
		t.Errorf("expected no aggregated users, got %d", len(got))
	}
}
