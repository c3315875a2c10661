package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/solacejournal/solace-backend/internal/middleware"
	"github.com/solacejournal/solace-backend/internal/services"
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// EntryFeed is the therapist live feed: the connected therapist receives an
// event whenever one of their active clients writes a journal entry.
// Authentication is the session token, via Authorization: Bearer or the
// ?token= query parameter for browser WebSocket clients.
func EntryFeed(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	userID, ok := services.ValidateSession(r.Context(), token)
	if !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	// The visible set is the therapist's active clients at connect time.
	// Reconnect to pick up newly accepted relationships.
	rels, err := services.ClientsOf(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to load clients", http.StatusInternalServerError)
		return
	}
	clientIDs := make([]string, 0, len(rels))
	for _, rel := range rels {
		clientIDs = append(clientIDs, rel.ClientID)
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	services.RegisterTherapistFeed(userID, clientIDs, conn)
	defer services.UnregisterTherapistFeed(userID)

	// Reader loop: we send only; reads just detect disconnects and keep the
	// connection alive via pongs.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
