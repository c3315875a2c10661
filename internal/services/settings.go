package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/models"
)

const (
	// settingsCacheKeyPrefix is the Redis key prefix for cached settings.
	settingsCacheKeyPrefix = "settings:"
	// settingsCacheTTL keeps the 60s reminder sweep from hammering Postgres;
	// short enough that an update is visible within a few sweeps even if
	// invalidation is missed.
	settingsCacheTTL = 5 * time.Minute
)

const settingsColumns = `id, user_id, is_enabled, reminder_time, reminder_time_end,
	notify_if_no_entries, notify_if_few_entries, min_entries_threshold,
	therapist_notification_mode, batch_digest_time, created_at, updated_at`

func scanSettings(row *sql.Row) (models.NotificationSettings, error) {
	var s models.NotificationSettings
	var mode sql.NullString
	var digestTime sql.NullString
	err := row.Scan(&s.ID, &s.UserID, &s.IsEnabled, &s.ReminderTime, &s.ReminderTimeEnd,
		&s.NotifyIfNoEntries, &s.NotifyIfFewEntries, &s.MinEntriesThreshold,
		&mode, &digestTime, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	if mode.Valid {
		m := models.TherapistNotificationMode(mode.String)
		s.TherapistNotificationMode = &m
	}
	if digestTime.Valid {
		s.BatchDigestTime = digestTime.String
	}
	return s, nil
}

// GetOrCreateSettings returns the user's notification settings, creating the
// record with defaults on first access. Reads go through a short-lived Redis
// cache so scheduler sweeps stay cheap.
func GetOrCreateSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	if cached, ok := settingsFromCache(ctx, userID); ok {
		return cached, nil
	}

	s, err := scanSettings(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM notification_settings WHERE user_id = $1`, userID))
	if err == sql.ErrNoRows {
		// Lazy creation with fixed defaults. ON CONFLICT covers the race
		// where two callers create simultaneously.
		s, err = scanSettings(database.PostgresDB.QueryRowContext(ctx,
			`INSERT INTO notification_settings (user_id)
			 VALUES ($1)
			 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			 RETURNING `+settingsColumns, userID))
	}
	if err != nil {
		return models.NotificationSettings{}, fmt.Errorf("%w: settings: %v", ErrUnavailable, err)
	}

	cacheSettings(ctx, s)
	return s, nil
}

// UpdateSettings applies a partial patch; nil fields keep their stored value.
// The cache entry is dropped so the next read sees the new values.
func UpdateSettings(ctx context.Context, userID string, upd models.SettingsUpdate) (models.NotificationSettings, error) {
	// Ensure the row exists so a first-time PATCH behaves like
	// read-then-update.
	if _, err := GetOrCreateSettings(ctx, userID); err != nil {
		return models.NotificationSettings{}, err
	}

	var mode *string
	if upd.TherapistNotificationMode != nil {
		m := string(*upd.TherapistNotificationMode)
		mode = &m
	}

	s, err := scanSettings(database.PostgresDB.QueryRowContext(ctx,
		`UPDATE notification_settings SET
			is_enabled = COALESCE($2, is_enabled),
			reminder_time = COALESCE($3, reminder_time),
			reminder_time_end = COALESCE($4, reminder_time_end),
			notify_if_no_entries = COALESCE($5, notify_if_no_entries),
			notify_if_few_entries = COALESCE($6, notify_if_few_entries),
			min_entries_threshold = COALESCE($7, min_entries_threshold),
			therapist_notification_mode = COALESCE($8, therapist_notification_mode),
			batch_digest_time = COALESCE($9, batch_digest_time),
			updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+settingsColumns,
		userID, upd.IsEnabled, upd.ReminderTime, upd.ReminderTimeEnd,
		upd.NotifyIfNoEntries, upd.NotifyIfFewEntries, upd.MinEntriesThreshold,
		mode, upd.BatchDigestTime))
	if err != nil {
		return models.NotificationSettings{}, fmt.Errorf("%w: update settings: %v", ErrUnavailable, err)
	}

	database.RedisClient.Del(ctx, settingsCacheKeyPrefix+userID)
	cacheSettings(ctx, s)
	return s, nil
}

func settingsFromCache(ctx context.Context, userID string) (models.NotificationSettings, bool) {
	if database.RedisClient == nil {
		return models.NotificationSettings{}, false
	}
	val, err := database.RedisClient.Get(ctx, settingsCacheKeyPrefix+userID).Result()
	if err != nil {
		return models.NotificationSettings{}, false // cache miss, not an error
	}
	var s models.NotificationSettings
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return models.NotificationSettings{}, false
	}
	return s, true
}

func cacheSettings(ctx context.Context, s models.NotificationSettings) {
	if database.RedisClient == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	database.RedisClient.Set(ctx, settingsCacheKeyPrefix+s.UserID, data, settingsCacheTTL)
}
