package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/solacejournal/solace-backend/internal/middleware"
	"github.com/solacejournal/solace-backend/internal/models"
	"github.com/solacejournal/solace-backend/internal/services"
)

type UpsertRatingRequest struct {
	Date   string        `json:"date"`              // YYYY-MM-DD
	Rating models.Rating `json:"rating"`            // 5-point scale
	UserID string        `json:"user_id,omitempty"` // therapist rating a client's day; empty = own day
}

type RatingResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Rating  *models.DayRating `json:"rating,omitempty"`
}

// UpsertRating records a day rating. Rating your own day writes the client
// side; rating a connected client's day writes the therapist side and records
// who supplied it. The two sides never overwrite each other.
func UpsertRating(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)

	var req UpsertRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Rating.Valid() {
		writeError(w, http.StatusBadRequest, "rating must be one of the 5-point scale values")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	targetID := req.UserID
	if targetID == "" {
		targetID = actorID
	}

	var rating models.DayRating
	if targetID == actorID {
		rating, err = services.UpsertDayRating(r.Context(), actorID, date, &req.Rating, nil, nil)
	} else {
		ok, terr := services.IsActiveTherapist(r.Context(), actorID, targetID)
		if terr != nil {
			writeServiceError(w, terr)
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "You do not have permission to do that")
			return
		}
		rating, err = services.UpsertDayRating(r.Context(), targetID, date, nil, &req.Rating, &actorID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RatingResponse{Success: true, Message: "Rating saved", Rating: &rating})
}

// GetRating returns the day rating for a date, or an empty body when the day
// is unrated. Therapists may read a connected client's rating via ?user_id=.
func GetRating(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)

	date, err := parseDateParam(r, "date", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	targetID := r.URL.Query().Get("user_id")
	if targetID == "" {
		targetID = actorID
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

	rating, err := services.DayRatingFor(r.Context(), targetID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RatingResponse{Success: true, Rating: rating})
}
