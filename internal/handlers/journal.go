package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solacejournal/solace-backend/internal/middleware"
	"github.com/solacejournal/solace-backend/internal/models"
	"github.com/solacejournal/solace-backend/internal/services"
)

const dateLayout = "2006-01-02"

type CreateEntryRequest struct {
	Text      string `json:"text"`
	EntryDate string `json:"entry_date,omitempty"` // YYYY-MM-DD, defaults to today
}

type EntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
}

type EntriesResponse struct {
	Success bool                  `json:"success"`
	Entries []models.JournalEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// CreateEntry creates a journal entry for the authenticated user. The entry
// date may be backdated.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Entry text is required")
		return
	}

	entryDate := time.Now()
	if req.EntryDate != "" {
		parsed, err := time.Parse(dateLayout, req.EntryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "entry_date must be YYYY-MM-DD")
			return
		}
		entryDate = parsed
	}

	entry, err := services.CreateEntry(r.Context(), userID, req.Text, entryDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{Success: true, Message: "Entry created", Entry: &entry})
}

// GetEntries returns entries in a date range. By default the caller's own;
// with ?user_id=, a therapist can read a connected client's entries.
func GetEntries(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)

	targetID := r.URL.Query().Get("user_id")
	if targetID == "" {
		targetID = actorID
	}

	from, err := parseDateParam(r, "from", time.Now().AddDate(0, -1, 0))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	if targetID != actorID {
		ok, err := services.IsActiveTherapist(r.Context(), actorID, targetID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "You do not have permission to do that")
			return
		}
	}

	entries, err := services.EntriesByDateRange(r.Context(), targetID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EntriesResponse{Success: true, Entries: entries, Total: len(entries)})
}

// GetEntry returns a single entry by id, visible to its owner or an active
// therapist of the owner.
func GetEntry(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)
	entryID := chi.URLParam(r, "id")

	entry, err := services.EntryForActor(r.Context(), actorID, entryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Entry: &entry})
}

// UpdateEntry applies a partial change. Field-level permissions are enforced
// by the service layer: text for the owner, comments and highlight for a
// connected therapist.
func UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)
	entryID := chi.URLParam(r, "id")

	var change models.EntryChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := services.UpdateEntry(r.Context(), actorID, entryID, change)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Message: "Entry updated", Entry: &entry})
}

// DeleteEntry removes an entry. Owner only.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)
	entryID := chi.URLParam(r, "id")

	if err := services.DeleteEntry(r.Context(), actorID, entryID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Entry deleted"})
}

func parseDateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(dateLayout, raw)
}
