package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-activity-bot/internal/aggregate"
	"github.com/telegram-activity-bot/internal/models"
)

// Notifier delivers one message to one recipient. Delivery is fallible
// per call; the dispatcher contains each failure.
type Notifier interface {
	Send(recipientID int64, text string) error
}

// ActivityStore is the read side of the activity store used by reporting
// runs. Dates use the YYYY-MM-DD format, ranges are inclusive.
type ActivityStore interface {
	ActivitiesForRange(ctx context.Context, start, end string) ([]models.ActivityRecord, error)
	UserActivitiesForRange(ctx context.Context, userID int64, start, end string) ([]models.ActivityRecord, error)
}

// noUserActivityMessage answers a single-user on-demand report when the
// user has nothing recorded in the window.
const noUserActivityMessage = "📭 No recorded activity for this period."

// Dispatcher fans per-user reports out through the notifier, one user at
// a time. One recipient's delivery failure never halts or skips the rest;
// that containment is the central property of this component.
type Dispatcher struct {
	store        ActivityStore
	composer     *Composer
	notifier     Notifier
	sendInterval time.Duration
	adminChatID  int64
	logger       zerolog.Logger

	// mu serializes reporting runs so an overlapping scheduled and
	// manual trigger never interleave their sends.
	mu sync.Mutex
}

// NewDispatcher creates a new dispatcher. sendInterval throttles
// consecutive sends; adminChatID 0 disables the batch outcome notice.
func NewDispatcher(
	store ActivityStore,
	composer *Composer,
	notifier Notifier,
	sendInterval time.Duration,
	adminChatID int64,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:        store,
		composer:     composer,
		notifier:     notifier,
		sendInterval: sendInterval,
		adminChatID:  adminChatID,
		logger:       logger.With().Str("component", "dispatcher").Logger(),
	}
}

// DispatchAll composes and delivers one report to every user with
// activity in [start, end]. Only a store read failure aborts the run;
// every other failure is counted and the loop continues. An empty window
// is a no-op outcome of {0, 0}, not an error.
func (d *Dispatcher) DispatchAll(ctx context.Context, start, end string) (models.BatchOutcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var outcome models.BatchOutcome

	records, err := d.store.ActivitiesForRange(ctx, start, end)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("start", start).
			Str("end", end).
			Msg("Store read failed, aborting reporting run")
		return outcome, fmt.Errorf("failed to read activities: %w", err)
	}

	users := aggregate.Aggregate(records, start, end)

	d.logger.Info().
		Str("start", start).
		Str("end", end).
		Int("record_count", len(records)).
		Int("user_count", len(users)).
		Msg("Starting reporting run")

	for i, ua := range users {
		if i > 0 {
			d.throttle(ctx)
		}

		rep := d.composer.Compose(ctx, ua)

		if err := d.notifier.Send(ua.UserID, rep.Text); err != nil {
			outcome.Failed++
			d.logger.Error().
				Err(err).
				Int64("user_id", ua.UserID).
				Msg("Failed to deliver report, continuing with next user")
			continue
		}

		outcome.Sent++
		d.logger.Debug().
			Int64("user_id", ua.UserID).
			Msg("Report delivered")
	}

	d.sendBatchNotice(start, end, outcome)

	d.logger.Info().
		Int("sent", outcome.Sent).
		Int("failed", outcome.Failed).
		Msg("Reporting run completed")

	return outcome, nil
}

// DispatchUser composes and delivers a report for a single user on
// demand, replying into chatID. A store read failure aborts this scope
// only; a user with no recorded activity gets a fixed notice instead of
// a report.
func (d *Dispatcher) DispatchUser(ctx context.Context, userID, chatID int64, start, end string) error {
	records, err := d.store.UserActivitiesForRange(ctx, userID, start, end)
	if err != nil {
		d.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("Store read failed, aborting single-user report")
		return fmt.Errorf("failed to read user activities: %w", err)
	}

	users := aggregate.Aggregate(records, start, end)
	if len(users) == 0 {
		if err := d.notifier.Send(chatID, noUserActivityMessage); err != nil {
			return fmt.Errorf("failed to send report: %w", err)
		}
		return nil
	}

	rep := d.composer.Compose(ctx, users[0])
	if err := d.notifier.Send(chatID, rep.Text); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	d.logger.Info().
		Int64("user_id", userID).
		Int64("chat_id", chatID).
		Msg("On-demand report delivered")

	return nil
}

// sendBatchNotice reports the batch outcome to the admin chat when one is
// configured. A notice delivery failure is logged and swallowed; it never
// counts against the run.
func (d *Dispatcher) sendBatchNotice(start, end string, outcome models.BatchOutcome) {
	if d.adminChatID == 0 {
		return
	}

	notice := fmt.Sprintf(
		"📬 Report batch for %s — %s: %d sent, %d failed",
		start, end, outcome.Sent, outcome.Failed,
	)

	if err := d.notifier.Send(d.adminChatID, notice); err != nil {
		d.logger.Error().
			Err(err).
			Int64("admin_chat_id", d.adminChatID).
			Msg("Failed to deliver batch notice")
	}
}

// throttle waits the configured inter-send interval, respecting
// cancellation. The delay keeps a rate-limit-sensitive notifier from
// being hit back to back; it is a throttle, not a correctness guarantee.
func (d *Dispatcher) throttle(ctx context.Context) {
	if d.sendInterval <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d.sendInterval):
	}
}
