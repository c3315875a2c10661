package services

import (
	"strings"
	"testing"
	"time"

	"github.com/solacejournal/solace-backend/internal/models"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func defaultSettings() models.NotificationSettings {
	return models.NotificationSettings{
		UserID:              "u1",
		IsEnabled:           true,
		ReminderTime:        "09:00",
		ReminderTimeEnd:     "21:00",
		NotifyIfNoEntries:   true,
		NotifyIfFewEntries:  true,
		MinEntriesThreshold: 3,
	}
}

func TestIsReminderDue(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.NotificationSettings)
		now     time.Time
		entries int
		want    bool
	}{
		{name: "no entries inside window", now: at("10:00"), entries: 0, want: true},
		{name: "disabled never fires", mutate: func(s *models.NotificationSettings) { s.IsEnabled = false }, now: at("10:00"), entries: 0, want: false},
		{name: "before window start", now: at("08:59"), entries: 0, want: false},
		{name: "at window start inclusive", now: at("09:00"), entries: 0, want: true},
		{name: "at window end inclusive", now: at("21:00"), entries: 0, want: true},
		{name: "after window end", now: at("21:01"), entries: 0, want: false},
		{name: "one entry below threshold", now: at("12:00"), entries: 1, want: true},
		{name: "two entries below threshold", now: at("12:00"), entries: 2, want: true},
		{name: "at threshold", now: at("12:00"), entries: 3, want: false},
		{name: "above threshold", now: at("12:00"), entries: 5, want: false},
		{
			name:    "no-entries rule off with zero entries",
			mutate:  func(s *models.NotificationSettings) { s.NotifyIfNoEntries = false },
			now:     at("12:00"),
			entries: 0,
			want:    false,
		},
		{
			name:    "few-entries rule off with one entry",
			mutate:  func(s *models.NotificationSettings) { s.NotifyIfFewEntries = false },
			now:     at("12:00"),
			entries: 1,
			want:    false,
		},
		{
			name: "empty window falls back to defaults",
			mutate: func(s *models.NotificationSettings) {
				s.ReminderTime = ""
				s.ReminderTimeEnd = ""
			},
			now:     at("08:30"),
			entries: 0,
			want:    false,
		},
		{
			name:    "zero threshold falls back to default of 3",
			mutate:  func(s *models.NotificationSettings) { s.MinEntriesThreshold = 0 },
			now:     at("12:00"),
			entries: 2,
			want:    true,
		},
		{
			name:    "custom narrow window",
			mutate:  func(s *models.NotificationSettings) { s.ReminderTime = "14:00"; s.ReminderTimeEnd = "14:30" },
			now:     at("14:15"),
			entries: 0,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSettings()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			if got := IsReminderDue(s, tt.now, tt.entries); got != tt.want {
				t.Fatalf("IsReminderDue(%s, %d entries) = %v, want %v", ClockHHMM(tt.now), tt.entries, got, tt.want)
			}
		})
	}
}

func TestIsBatchDigestDue(t *testing.T) {
	batch := models.ModeBatchDigest
	perClient := models.ModePerClient

	base := defaultSettings()
	base.TherapistNotificationMode = &batch
	base.BatchDigestTime = "18:00"

	t.Run("minute before digest time", func(t *testing.T) {
		if IsBatchDigestDue(base, at("17:59")) {
			t.Fatalf("digest should not be due before the configured time")
		}
	})
	t.Run("exactly at digest time", func(t *testing.T) {
		if !IsBatchDigestDue(base, at("18:00")) {
			t.Fatalf("digest should be due at the configured minute")
		}
	})
	t.Run("well after digest time", func(t *testing.T) {
		// The window stays open for the rest of the day; the dedup log
		// prevents a second send.
		if !IsBatchDigestDue(base, at("23:30")) {
			t.Fatalf("digest window should stay open after the configured time")
		}
	})
	t.Run("disabled", func(t *testing.T) {
		s := base
		s.IsEnabled = false
		if IsBatchDigestDue(s, at("19:00")) {
			t.Fatalf("disabled settings should never be due")
		}
	})
	t.Run("per-client mode", func(t *testing.T) {
		s := base
		s.TherapistNotificationMode = &perClient
		if IsBatchDigestDue(s, at("19:00")) {
			t.Fatalf("per-client mode should never produce a digest")
		}
	})
	t.Run("no therapist mode", func(t *testing.T) {
		s := base
		s.TherapistNotificationMode = nil
		if IsBatchDigestDue(s, at("19:00")) {
			t.Fatalf("a plain client should never produce a digest")
		}
	})
	t.Run("empty time falls back to 18:00", func(t *testing.T) {
		s := base
		s.BatchDigestTime = ""
		if IsBatchDigestDue(s, at("17:30")) {
			t.Fatalf("default digest time should be 18:00")
		}
		if !IsBatchDigestDue(s, at("18:01")) {
			t.Fatalf("default digest time should be 18:00")
		}
	})
}

func TestReminderMessage(t *testing.T) {
	if msg := ReminderMessage(0, 3); !strings.Contains(msg, "Good morning") {
		t.Fatalf("zero entries should get the morning prompt, got %q", msg)
	}
	if msg := ReminderMessage(1, 3); !strings.Contains(msg, "1 entry today") {
		t.Fatalf("singular form expected, got %q", msg)
	}
	if msg := ReminderMessage(2, 3); !strings.Contains(msg, "2 entries today") {
		t.Fatalf("plural form expected, got %q", msg)
	}
	if msg := ReminderMessage(3, 3); msg != "" {
		t.Fatalf("at threshold no message expected, got %q", msg)
	}
}

func TestClockHHMM(t *testing.T) {
	if got := ClockHHMM(at("07:05")); got != "07:05" {
		t.Fatalf("ClockHHMM = %q, want zero-padded 07:05", got)
	}
}
