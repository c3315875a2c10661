package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/solacejournal/solace-backend/internal/middleware"
	"github.com/solacejournal/solace-backend/internal/models"
	"github.com/solacejournal/solace-backend/internal/services"
)

type SettingsResponse struct {
	Success  bool                         `json:"success"`
	Message  string                       `json:"message,omitempty"`
	Settings *models.NotificationSettings `json:"settings,omitempty"`
}

// GetSettings returns the caller's notification settings, creating the
// default record on first access.
func GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	settings, err := services.GetOrCreateSettings(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Settings: &settings})
}

// UpdateSettings applies a partial update. Omitted fields keep their stored
// values.
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var upd models.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if upd.ReminderTime != nil && !validClockString(*upd.ReminderTime) {
		writeError(w, http.StatusBadRequest, "reminder_time must be HH:MM")
		return
	}
	if upd.ReminderTimeEnd != nil && !validClockString(*upd.ReminderTimeEnd) {
		writeError(w, http.StatusBadRequest, "reminder_time_end must be HH:MM")
		return
	}
	if upd.BatchDigestTime != nil && !validClockString(*upd.BatchDigestTime) {
		writeError(w, http.StatusBadRequest, "batch_digest_time must be HH:MM")
		return
	}
	if upd.TherapistNotificationMode != nil {
		mode := *upd.TherapistNotificationMode
		if mode != models.ModePerClient && mode != models.ModeBatchDigest {
			writeError(w, http.StatusBadRequest, "therapist_notification_mode must be \"per_client\" or \"batch_digest\"")
			return
		}
	}
	if upd.MinEntriesThreshold != nil && *upd.MinEntriesThreshold < 1 {
		writeError(w, http.StatusBadRequest, "min_entries_threshold must be at least 1")
		return
	}

	settings, err := services.UpdateSettings(r.Context(), userID, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Message: "Settings updated", Settings: &settings})
}

type HistoryResponse struct {
	Success       bool                          `json:"success"`
	Notifications []services.NotificationRecord `json:"notifications"`
}

// GetHistory returns the caller's recently dispatched notifications, newest
// first.
func GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := services.RecentNotifications(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []services.NotificationRecord{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Success: true, Notifications: records})
}

// validClockString checks a zero-padded 24-hour "HH:MM" value. The eligibility
// comparisons are lexicographic, so the padding matters.
func validClockString(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	hh := int(v[0]-'0')*10 + int(v[1]-'0')
	mm := int(v[3]-'0')*10 + int(v[4]-'0')
	return hh <= 23 && mm <= 59
}
