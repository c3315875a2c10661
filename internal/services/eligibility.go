package services

import (
	"fmt"
	"time"

	"github.com/solacejournal/solace-backend/internal/models"
)

// Eligibility is recomputed on every scheduler sweep, never persisted.
// All functions here are pure: settings, a timestamp and a count in, a
// decision out.

// ClockHHMM formats t as a zero-padded 24-hour "HH:MM" string. Stored
// reminder times use the same format, so lexicographic comparison matches
// numeric comparison.
func ClockHHMM(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// IsReminderDue decides whether a journaling reminder should fire for a user
// at time now, given how many entries they have written for now's calendar
// day. The window check is inclusive at both ends.
func IsReminderDue(s models.NotificationSettings, now time.Time, entriesToday int) bool {
	if !s.IsEnabled {
		return false
	}

	current := ClockHHMM(now)

	start := s.ReminderTime
	if start == "" {
		start = models.DefaultReminderTime
	}
	end := s.ReminderTimeEnd
	if end == "" {
		end = models.DefaultReminderTimeEnd
	}

	if current < start || current > end {
		return false
	}

	if s.NotifyIfNoEntries && entriesToday == 0 {
		return true
	}

	threshold := s.MinEntriesThreshold
	if threshold <= 0 {
		threshold = models.DefaultMinEntriesThreshold
	}
	if s.NotifyIfFewEntries && entriesToday > 0 && entriesToday < threshold {
		return true
	}

	return false
}

// IsBatchDigestDue reports whether the daily digest window is open for a
// therapist at time now: batch-digest mode is selected, notifications are
// enabled, and now's "HH:MM" is at or past the configured digest time.
//
// This is deliberately a "minute has passed" check rather than an exact-minute
// match: the digest sweep runs on a coarse cadence, so an equality check would
// miss the minute almost every day. The dispatch dedup log keeps a passed
// window from firing more than once per day.
func IsBatchDigestDue(s models.NotificationSettings, now time.Time) bool {
	if !s.IsEnabled {
		return false
	}
	if s.TherapistNotificationMode == nil || *s.TherapistNotificationMode != models.ModeBatchDigest {
		return false
	}

	digestAt := s.BatchDigestTime
	if digestAt == "" {
		digestAt = models.DefaultBatchDigestTime
	}

	return ClockHHMM(now) >= digestAt
}

// ReminderMessage builds the reminder text for a user with entriesToday
// entries. Returns "" when neither rule produces a message (the caller skips
// dispatch).
func ReminderMessage(entriesToday, threshold int) string {
	if threshold <= 0 {
		threshold = models.DefaultMinEntriesThreshold
	}
	if entriesToday == 0 {
		return "🌿 Good morning! How are you feeling today? Take a moment to journal your thoughts and feelings."
	}
	if entriesToday < threshold {
		word := "entries"
		if entriesToday == 1 {
			word = "entry"
		}
		return fmt.Sprintf("💭 You've written %d %s today. Consider adding more to capture your full emotional journey.", entriesToday, word)
	}
	return ""
}
