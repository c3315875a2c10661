package models

import (
	"time"
)

// TherapistNotificationMode selects how a therapist hears about client entries.
type TherapistNotificationMode string

const (
	// ModePerClient sends an immediate message for every new client entry.
	ModePerClient TherapistNotificationMode = "per_client"
	// ModeBatchDigest sends one daily summary at BatchDigestTime.
	ModeBatchDigest TherapistNotificationMode = "batch_digest"
)

// NotificationType tags a dispatched notification in the log.
type NotificationType string

const (
	NotificationDailyReminder NotificationType = "daily_reminder"
	NotificationNewEntry      NotificationType = "new_entry"
	NotificationBatchDigest   NotificationType = "batch_digest"
)

// Default notification settings, applied when a user's record is created
// lazily on first access.
const (
	DefaultReminderTime        = "09:00"
	DefaultReminderTimeEnd     = "21:00"
	DefaultBatchDigestTime     = "18:00"
	DefaultMinEntriesThreshold = 3
)

// NotificationSettings is one user's notification preferences. Times are
// zero-padded 24-hour "HH:MM" strings compared lexicographically.
type NotificationSettings struct {
	ID                  string `json:"id"`
	UserID              string `json:"user_id"`
	IsEnabled           bool   `json:"is_enabled"`
	ReminderTime        string `json:"reminder_time"`
	ReminderTimeEnd     string `json:"reminder_time_end"`
	NotifyIfNoEntries   bool   `json:"notify_if_no_entries"`
	NotifyIfFewEntries  bool   `json:"notify_if_few_entries"`
	MinEntriesThreshold int    `json:"min_entries_threshold"`

	TherapistNotificationMode *TherapistNotificationMode `json:"therapist_notification_mode,omitempty"`
	BatchDigestTime           string                     `json:"batch_digest_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingsUpdate is a partial patch; nil fields keep their stored value.
type SettingsUpdate struct {
	IsEnabled                 *bool                      `json:"is_enabled,omitempty"`
	ReminderTime              *string                    `json:"reminder_time,omitempty"`
	ReminderTimeEnd           *string                    `json:"reminder_time_end,omitempty"`
	NotifyIfNoEntries         *bool                      `json:"notify_if_no_entries,omitempty"`
	NotifyIfFewEntries        *bool                      `json:"notify_if_few_entries,omitempty"`
	MinEntriesThreshold       *int                       `json:"min_entries_threshold,omitempty"`
	TherapistNotificationMode *TherapistNotificationMode `json:"therapist_notification_mode,omitempty"`
	BatchDigestTime           *string                    `json:"batch_digest_time,omitempty"`
}
