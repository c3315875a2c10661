package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/solacejournal/solace-backend/internal/models"
)

type fakeNotifierStore struct {
	users    []string
	settings map[string]models.NotificationSettings
	counts   map[string]int // clientID -> entries today
	clients  map[string][]models.Relationship
	parents  map[string][]models.Relationship // clientID -> therapist rels
}

func (f *fakeNotifierStore) UserIDs(ctx context.Context) ([]string, error) {
	return f.users, nil
}

func (f *fakeNotifierStore) SettingsFor(ctx context.Context, userID string) (models.NotificationSettings, error) {
	return f.settings[userID], nil
}

func (f *fakeNotifierStore) EntriesCount(ctx context.Context, userID string, day time.Time) (int, error) {
	return f.counts[userID], nil
}

func (f *fakeNotifierStore) ActiveClients(ctx context.Context, therapistID string) ([]models.Relationship, error) {
	return f.clients[therapistID], nil
}

func (f *fakeNotifierStore) ActiveTherapists(ctx context.Context, clientID string) ([]models.Relationship, error) {
	return f.parents[clientID], nil
}

func testNotifier(store *fakeNotifierStore, m *fakeMessenger, l *fakeLog, chats map[string]int64) *Notifier {
	return &Notifier{
		Store:      store,
		Dispatcher: testDispatcher(m, l, chats),
		MiniAppURL: "https://app.example.com",
	}
}

func TestSweepRemindersSendsOnlyToEligible(t *testing.T) {
	store := &fakeNotifierStore{
		users: []string{"eligible", "disabled", "done"},
		settings: map[string]models.NotificationSettings{
			"eligible": defaultSettings(),
			"disabled": {IsEnabled: false},
			"done":     defaultSettings(),
		},
		counts: map[string]int{"eligible": 0, "done": 5},
	}
	m := &fakeMessenger{}
	l := newFakeLog()
	n := testNotifier(store, m, l, map[string]int64{"eligible": 1, "disabled": 2, "done": 3})

	n.SweepReminders(context.Background(), at("10:00"))

	if len(m.sent) != 1 {
		t.Fatalf("expected exactly one reminder, got %d", len(m.sent))
	}
	if m.sent[0].chatID != 1 {
		t.Fatalf("reminder went to chat %d, want 1", m.sent[0].chatID)
	}
	if m.sent[0].button == nil || m.sent[0].button.URL != "https://app.example.com" {
		t.Fatalf("reminder should carry the app link button, got %+v", m.sent[0].button)
	}
}

func TestSweepRemindersSecondSweepDedups(t *testing.T) {
	store := &fakeNotifierStore{
		users:    []string{"u1"},
		settings: map[string]models.NotificationSettings{"u1": defaultSettings()},
		counts:   map[string]int{"u1": 0},
	}
	m := &fakeMessenger{}
	l := newFakeLog()
	n := testNotifier(store, m, l, map[string]int64{"u1": 1})

	// The window stays open across sweeps; the log must hold it to one.
	n.SweepReminders(context.Background(), at("10:00"))
	n.SweepReminders(context.Background(), at("10:01"))
	n.SweepReminders(context.Background(), at("10:02"))

	if len(m.sent) != 1 {
		t.Fatalf("repeated sweeps in the same window sent %d messages, want 1", len(m.sent))
	}
}

func TestDigestForTherapistContent(t *testing.T) {
	batch := models.ModeBatchDigest
	th := defaultSettings()
	th.TherapistNotificationMode = &batch
	th.BatchDigestTime = "18:00"

	store := &fakeNotifierStore{
		settings: map[string]models.NotificationSettings{"th": th},
		clients: map[string][]models.Relationship{
			"th": {
				{ClientID: "c1", TherapistID: "th", IsActive: true},
				{ClientID: "c2", TherapistID: "th", IsActive: true},
				{ClientID: "c3", TherapistID: "th", IsActive: true},
			},
		},
		counts: map[string]int{"c1": 2, "c2": 0, "c3": 1},
	}
	m := &fakeMessenger{}
	l := newFakeLog()
	n := testNotifier(store, m, l, map[string]int64{"th": 7})

	if err := n.DigestForTherapist(context.Background(), "th", at("18:30")); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("expected one digest message, got %d", len(m.sent))
	}

	text := m.sent[0].text
	if !strings.Contains(text, "Daily Digest") {
		t.Fatalf("digest header missing: %q", text)
	}
	if !strings.Contains(text, "Client #c1: 2 entries") || !strings.Contains(text, "Client #c3: 1 entry") {
		t.Fatalf("per-client lines wrong: %q", text)
	}
	if strings.Contains(text, "c2") {
		t.Fatalf("clients with no entries must not appear: %q", text)
	}
}

func TestDigestSkippedWhenNoClientWrote(t *testing.T) {
	batch := models.ModeBatchDigest
	th := defaultSettings()
	th.TherapistNotificationMode = &batch

	store := &fakeNotifierStore{
		settings: map[string]models.NotificationSettings{"th": th},
		clients: map[string][]models.Relationship{
			"th": {{ClientID: "c1", TherapistID: "th", IsActive: true}},
		},
		counts: map[string]int{"c1": 0},
	}
	m := &fakeMessenger{}
	n := testNotifier(store, m, newFakeLog(), map[string]int64{"th": 7})

	if err := n.DigestForTherapist(context.Background(), "th", at("18:30")); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(m.sent) != 0 {
		t.Fatalf("digest should be skipped when no client wrote, sent %d", len(m.sent))
	}
}

func TestNotifyNewEntryPerClientModeOnly(t *testing.T) {
	perClient := models.ModePerClient
	batch := models.ModeBatchDigest

	immediate := defaultSettings()
	immediate.TherapistNotificationMode = &perClient
	digesting := defaultSettings()
	digesting.TherapistNotificationMode = &batch
	muted := defaultSettings()
	muted.TherapistNotificationMode = &perClient
	muted.IsEnabled = false

	store := &fakeNotifierStore{
		settings: map[string]models.NotificationSettings{
			"t-immediate": immediate,
			"t-digest":    digesting,
			"t-muted":     muted,
		},
		parents: map[string][]models.Relationship{
			"client": {
				{ClientID: "client", TherapistID: "t-immediate", IsActive: true},
				{ClientID: "client", TherapistID: "t-digest", IsActive: true},
				{ClientID: "client", TherapistID: "t-muted", IsActive: true},
			},
		},
	}
	m := &fakeMessenger{}
	l := newFakeLog()
	n := testNotifier(store, m, l, map[string]int64{"t-immediate": 1, "t-digest": 2, "t-muted": 3})

	entry := models.JournalEntry{ID: "e1", UserID: "client", EntryDate: at("10:00")}
	n.NotifyNewEntry(context.Background(), entry)

	if len(m.sent) != 1 {
		t.Fatalf("expected one immediate ping, got %d", len(m.sent))
	}
	if m.sent[0].chatID != 1 {
		t.Fatalf("ping went to chat %d, want the per-client therapist", m.sent[0].chatID)
	}

	// Per-event sends must not be throttled by the daily dedup: a second
	// entry the same day pings again.
	n.NotifyNewEntry(context.Background(), models.JournalEntry{ID: "e2", UserID: "client", EntryDate: at("11:00")})
	if len(m.sent) != 2 {
		t.Fatalf("second entry should ping again, got %d sends", len(m.sent))
	}
}
