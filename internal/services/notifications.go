package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/solacejournal/solace-backend/internal/models"
)

// NotifierStore is the persistence surface the notifier sweeps against.
// Production uses Postgres; tests hand in fakes.
type NotifierStore interface {
	UserIDs(ctx context.Context) ([]string, error)
	SettingsFor(ctx context.Context, userID string) (models.NotificationSettings, error)
	EntriesCount(ctx context.Context, userID string, day time.Time) (int, error)
	ActiveClients(ctx context.Context, therapistID string) ([]models.Relationship, error)
	ActiveTherapists(ctx context.Context, clientID string) ([]models.Relationship, error)
}

// Notifier evaluates eligibility per user and hands qualifying notifications
// to the dispatcher. It keeps no state of its own; the dedup log is the only
// guard against repeats.
type Notifier struct {
	Store      NotifierStore
	Dispatcher *Dispatcher
	MiniAppURL string
}

// DefaultNotifier serves fire-and-forget hooks (entry creation) that run
// outside the scheduler. Set once during startup.
var DefaultNotifier *Notifier

func (n *Notifier) viewButton() *LinkButton {
	if n.MiniAppURL == "" {
		return nil
	}
	return &LinkButton{Text: "Open App", URL: n.MiniAppURL}
}

// SweepReminders evaluates every user's reminder eligibility at time now.
// One user's failure is logged and never stops the rest of the sweep.
func (n *Notifier) SweepReminders(ctx context.Context, now time.Time) {
	userIDs, err := n.Store.UserIDs(ctx)
	if err != nil {
		log.Printf("[notifier] reminder sweep aborted, cannot list users: %v", err)
		return
	}
	for _, userID := range userIDs {
		if err := n.RemindUser(ctx, userID, now); err != nil {
			log.Printf("[notifier] reminder for user %s: %v", userID, err)
		}
	}
}

// RemindUser sends a daily reminder when the user is eligible at time now.
func (n *Notifier) RemindUser(ctx context.Context, userID string, now time.Time) error {
	settings, err := n.Store.SettingsFor(ctx, userID)
	if err != nil {
		return err
	}

	count, err := n.Store.EntriesCount(ctx, userID, now)
	if err != nil {
		return err
	}

	if !IsReminderDue(settings, now, count) {
		return nil
	}

	message := ReminderMessage(count, settings.MinEntriesThreshold)
	if message == "" {
		return nil
	}

	_, err = n.Dispatcher.Dispatch(ctx, userID, models.NotificationDailyReminder, message, n.viewButton())
	return err
}

// SweepDigests evaluates every user's digest eligibility at time now.
func (n *Notifier) SweepDigests(ctx context.Context, now time.Time) {
	userIDs, err := n.Store.UserIDs(ctx)
	if err != nil {
		log.Printf("[notifier] digest sweep aborted, cannot list users: %v", err)
		return
	}
	for _, userID := range userIDs {
		if err := n.DigestForTherapist(ctx, userID, now); err != nil {
			log.Printf("[notifier] digest for user %s: %v", userID, err)
		}
	}
}

// DigestForTherapist sends the once-daily digest summarizing, per connected
// client, how many entries they wrote today. Sent only when at least one
// client wrote; the dedup log keeps the open window from firing twice.
func (n *Notifier) DigestForTherapist(ctx context.Context, therapistID string, now time.Time) error {
	settings, err := n.Store.SettingsFor(ctx, therapistID)
	if err != nil {
		return err
	}
	if !IsBatchDigestDue(settings, now) {
		return nil
	}

	clients, err := n.Store.ActiveClients(ctx, therapistID)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("📊 Daily Digest - New Client Entries:\n\n")
	hasNewEntries := false
	for _, rel := range clients {
		count, err := n.Store.EntriesCount(ctx, rel.ClientID, now)
		if err != nil {
			return err
		}
		if count == 0 {
			continue
		}
		hasNewEntries = true
		word := "entries"
		if count == 1 {
			word = "entry"
		}
		fmt.Fprintf(&b, "👤 Client #%s: %d %s\n", rel.ClientID, count, word)
	}
	if !hasNewEntries {
		return nil
	}
	b.WriteString("\nOpen the app to view all entries.")

	_, err = n.Dispatcher.Dispatch(ctx, therapistID, models.NotificationBatchDigest, b.String(), n.viewButton())
	return err
}

// NotifyNewEntry tells each active therapist in per-client mode that their
// client just wrote. Runs outside the scheduler, straight off entry creation.
// New-entry pings are per-event rather than per-day, so they skip the
// dispatcher's daily dedup; see dispatchNewEntry.
func (n *Notifier) NotifyNewEntry(ctx context.Context, entry models.JournalEntry) {
	therapists, err := n.Store.ActiveTherapists(ctx, entry.UserID)
	if err != nil {
		log.Printf("[notifier] new entry lookup for client %s: %v", entry.UserID, err)
		return
	}

	for _, rel := range therapists {
		settings, err := n.Store.SettingsFor(ctx, rel.TherapistID)
		if err != nil {
			log.Printf("[notifier] settings for therapist %s: %v", rel.TherapistID, err)
			continue
		}
		if !settings.IsEnabled {
			continue
		}
		if settings.TherapistNotificationMode == nil || *settings.TherapistNotificationMode != models.ModePerClient {
			// Batch-digest therapists hear about it in the daily digest.
			continue
		}

		if err := n.dispatchNewEntry(ctx, rel.TherapistID, entry); err != nil {
			log.Printf("[notifier] new entry ping for therapist %s: %v", rel.TherapistID, err)
		}
	}
}

// dispatchNewEntry sends an immediate per-client notification. Unlike
// reminders and digests it is per-event, not per-day, so it resolves the
// channel and logs directly instead of going through the per-day dedup.
func (n *Notifier) dispatchNewEntry(ctx context.Context, therapistID string, entry models.JournalEntry) error {
	d := n.Dispatcher

	chatID, ok, err := d.ResolveChat(ctx, therapistID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	timeout := d.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	message := "📝 Your client has written a new journal entry. Open the app to read it."
	if err := d.Messenger.Send(sendCtx, chatID, message, n.viewButton()); err != nil {
		return err
	}

	metadata := fmt.Sprintf("new entry %s from client %s", entry.ID, entry.UserID)
	if err := d.Log.Record(ctx, therapistID, models.NotificationNewEntry, metadata, d.now()); err != nil {
		log.Printf("[notifier] failed to record new_entry for therapist %s: %v", therapistID, err)
	}
	return nil
}

// notifyEntryCreated fans a fresh entry out to the live feed and to
// per-client therapists. Called from CreateEntry in a goroutine; failures
// never reach the writer.
func notifyEntryCreated(entry models.JournalEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	PublishEntryEvent(ctx, EntryEvent{
		Type:      "entry_created",
		ClientID:  entry.UserID,
		EntryID:   entry.ID,
		EntryDate: entry.EntryDate.Format("2006-01-02"),
		CreatedAt: entry.CreatedAt,
	})

	if DefaultNotifier != nil {
		DefaultNotifier.NotifyNewEntry(ctx, entry)
	}
}

// pgNotifierStore backs the notifier with the package's Postgres accessors.
type pgNotifierStore struct{}

// NewNotifierStore returns the production store.
func NewNotifierStore() NotifierStore {
	return pgNotifierStore{}
}

func (pgNotifierStore) UserIDs(ctx context.Context) ([]string, error) {
	return AllUserIDs(ctx)
}

func (pgNotifierStore) SettingsFor(ctx context.Context, userID string) (models.NotificationSettings, error) {
	return GetOrCreateSettings(ctx, userID)
}

func (pgNotifierStore) EntriesCount(ctx context.Context, userID string, day time.Time) (int, error) {
	return EntriesCountForDay(ctx, userID, day)
}

func (pgNotifierStore) ActiveClients(ctx context.Context, therapistID string) ([]models.Relationship, error) {
	return ClientsOf(ctx, therapistID)
}

func (pgNotifierStore) ActiveTherapists(ctx context.Context, clientID string) ([]models.Relationship, error) {
	return TherapistsOf(ctx, clientID)
}
