package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/solacejournal/solace-backend/internal/middleware"
	"github.com/solacejournal/solace-backend/internal/models"
	"github.com/solacejournal/solace-backend/internal/services"
)

// InviteTTL is how long a newly created invite stays valid. Overridden from
// config at startup.
var InviteTTL = 30 * 24 * time.Hour

type RelationshipsResponse struct {
	Success       bool                  `json:"success"`
	Relationships []models.Relationship `json:"relationships"`
	Total         int                   `json:"total"`
}

// GetMyTherapists lists the caller's active therapists (caller as client).
func GetMyTherapists(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	rels, err := services.TherapistsOf(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RelationshipsResponse{Success: true, Relationships: rels, Total: len(rels)})
}

// GetMyClients lists the caller's active clients (caller as therapist).
func GetMyClients(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	rels, err := services.ClientsOf(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RelationshipsResponse{Success: true, Relationships: rels, Total: len(rels)})
}

type CreateInviteRequest struct {
	Role models.Role `json:"role"` // the role the INVITER holds in the relationship
}

type InviteResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Invite  *models.InviteToken `json:"invite,omitempty"`
}

// CreateInvite issues a single-use invite token. The inviter declares their
// own role; the accepter takes the opposite one.
func CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "role must be \"client\" or \"therapist\"")
		return
	}

	invite, err := services.CreateInvite(r.Context(), userID, req.Role, InviteTTL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, InviteResponse{Success: true, Message: "Invite created", Invite: &invite})
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

type AcceptInviteResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message,omitempty"`
	Relationship *models.Relationship `json:"relationship,omitempty"`
}

// AcceptInvite consumes an invite token and connects the two accounts.
func AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	rel, err := services.AcceptInvite(r.Context(), req.Token, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AcceptInviteResponse{Success: true, Message: "Connected", Relationship: &rel})
}

type DisconnectRequest struct {
	ClientID    string `json:"client_id"`
	TherapistID string `json:"therapist_id"`
}

// Disconnect soft-deactivates a relationship the caller is part of. The row
// is kept for history; listings stop returning it.
func Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var req DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if userID != req.ClientID && userID != req.TherapistID {
		writeError(w, http.StatusForbidden, "You do not have permission to do that")
		return
	}

	if err := services.DeactivateRelationship(r.Context(), req.ClientID, req.TherapistID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Disconnected"})
}
