package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/telegram-activity-bot/internal/models"
)

type fakeStore struct {
	records []models.ActivityRecord
	err     error
}

func (f *fakeStore) ActivitiesForRange(_ context.Context, _, _ string) ([]models.ActivityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeStore) UserActivitiesForRange(_ context.Context, userID int64, _, _ string) ([]models.ActivityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	filtered := make([]models.ActivityRecord, 0)
	for _, r := range f.records {
		if r.UserID == userID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

type sentMessage struct {
	RecipientID int64
	Text        string
}

type fakeNotifier struct {
	sent    []sentMessage
	failFor map[int64]error
}

func (f *fakeNotifier) Send(recipientID int64, text string) error {
	if err, ok := f.failFor[recipientID]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{RecipientID: recipientID, Text: text})
	return nil
}

func userRec(userID int64, name, content string) models.ActivityRecord {
	return models.ActivityRecord{
		UserID:      userID,
		DisplayName: name,
		Kind:        models.KindText,
		Content:     content,
		OccurredOn:  "2024-05-01",
	}
}

func newTestDispatcher(store ActivityStore, notifier Notifier, adminChatID int64) *Dispatcher {
	composer := NewComposer(&fakeSummarizer{response: "Summary."}, 10, zerolog.Nop())
	return NewDispatcher(store, composer, notifier, 0, adminChatID, zerolog.Nop())
}

func TestDispatchAllIsolatesPerUserFailure(t *testing.T) {
	store := &fakeStore{records: []models.ActivityRecord{
		userRec(1, "alice", "m1"),
		userRec(2, "bob", "m2"),
		userRec(3, "carol", "m3"),
	}}
	notifier := &fakeNotifier{failFor: map[int64]error{2: errors.New("blocked the bot")}}

	d := newTestDispatcher(store, notifier, 0)

	outcome, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01")
	if err != nil {
		t.Fatalf("DispatchAll: %v", err)
	}

	want := models.BatchOutcome{Sent: 2, Failed: 1}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}

	// The user after the failing one was still attempted
	recipients := make([]int64, 0, len(notifier.sent))
	for _, m := range notifier.sent {
		recipients = append(recipients, m.RecipientID)
	}
	if diff := cmp.Diff([]int64{1, 3}, recipients); diff != "" {
		t.Errorf("recipients mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchAllEmptyWindowIsNoOp(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 0)

	outcome, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01")
	if err != nil {
		t.Fatalf("DispatchAll: %v", err)
	}

	if diff := cmp.Diff(models.BatchOutcome{}, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no sends for empty window, got %d", len(notifier.sent))
	}
}

func TestDispatchAllEmptyWindowStillSendsBatchNotice(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 999)

	if _, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01"); err != nil {
		t.Fatalf("DispatchAll: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected only the batch notice, got %d messages", len(notifier.sent))
	}
	notice := notifier.sent[0]
	if diff := cmp.Diff(int64(999), notice.RecipientID); diff != "" {
		t.Errorf("notice recipient mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(notice.Text, "0 sent") {
		t.Errorf("notice should report 0 sent: %s", notice.Text)
	}
}

func TestDispatchAllBatchNoticeCounts(t *testing.T) {
	store := &fakeStore{records: []models.ActivityRecord{
		userRec(1, "alice", "m1"),
		userRec(2, "bob", "m2"),
	}}
	notifier := &fakeNotifier{failFor: map[int64]error{2: errors.New("unreachable")}}

	d := newTestDispatcher(store, notifier, 999)

	if _, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01"); err != nil {
		t.Fatalf("DispatchAll: %v", err)
	}

	last := notifier.sent[len(notifier.sent)-1]
	if last.RecipientID != 999 {
		t.Fatalf("last message should be the batch notice, went to %d", last.RecipientID)
	}
	if !strings.Contains(last.Text, "1 sent") || !strings.Contains(last.Text, "1 failed") {
		t.Errorf("notice counts wrong: %s", last.Text)
	}
}

func TestDispatchAllSwallowsBatchNoticeFailure(t *testing.T) {
	store := &fakeStore{records: []models.ActivityRecord{userRec(1, "alice", "m1")}}
	notifier := &fakeNotifier{failFor: map[int64]error{999: errors.New("admin chat gone")}}

	d := newTestDispatcher(store, notifier, 999)

	outcome, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01")
	if err != nil {
		t.Fatalf("batch notice failure must not fail the run: %v", err)
	}
	if diff := cmp.Diff(models.BatchOutcome{Sent: 1}, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchAllAbortsOnStoreReadFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 999)

	_, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01")
	if err == nil {
		t.Fatal("expected error on store read failure")
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no messages may be sent after an aborted read, got %d", len(notifier.sent))
	}
}

func TestDispatchAllFollowsAggregatorOrder(t *testing.T) {
	store := &fakeStore{records: []models.ActivityRecord{
		userRec(5, "eve", "m1"),
		userRec(2, "bob", "m2"),
		userRec(5, "eve", "m3"),
		userRec(9, "ida", "m4"),
	}}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 0)

	if _, err := d.DispatchAll(context.Background(), "2024-05-01", "2024-05-01"); err != nil {
		t.Fatalf("DispatchAll: %v", err)
	}

	recipients := make([]int64, 0, len(notifier.sent))
	for _, m := range notifier.sent {
		recipients = append(recipients, m.RecipientID)
	}
	if diff := cmp.Diff([]int64{5, 2, 9}, recipients); diff != "" {
		t.Errorf("send order mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchUserSendsReportToChat(t *testing.T) {
	store := &fakeStore{records: []models.ActivityRecord{
		userRec(1, "alice", "m1"),
		userRec(2, "bob", "m2"),
	}}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 0)

	if err := d.DispatchUser(context.Background(), 1, -100, "2024-05-01", "2024-05-01"); err != nil {
		t.Fatalf("DispatchUser: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if diff := cmp.Diff(int64(-100), msg.RecipientID); diff != "" {
		t.Errorf("recipient mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(msg.Text, "alice") {
		t.Errorf("report should name the requested user: %s", msg.Text)
	}
	if strings.Contains(msg.Text, "bob") {
		t.Errorf("single-user report must not include other users: %s", msg.Text)
	}
}

func TestDispatchUserWithoutActivity(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 0)

	if err := d.DispatchUser(context.Background(), 1, -100, "2024-05-01", "2024-05-01"); err != nil {
		t.Fatalf("DispatchUser: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(notifier.sent))
	}
	if diff := cmp.Diff(noUserActivityMessage, notifier.sent[0].Text); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchUserAbortsOnStoreReadFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	notifier := &fakeNotifier{}

	d := newTestDispatcher(store, notifier, 0)

	if err := d.DispatchUser(context.Background(), 1, -100, "2024-05-01", "2024-05-01"); err == nil {
		t.Fatal("expected error on store read failure")
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no messages may be sent after an aborted read, got %d", len(notifier.sent))
	}
}
