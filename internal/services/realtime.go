package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/solacejournal/solace-backend/internal/database"
)

// EntryEvent is the payload broadcast over Redis and WebSocket when a client
// writes a journal entry. Therapists with an open feed connection receive
// events for their active clients only.
type EntryEvent struct {
	Type      string    `json:"type"`
	ClientID  string    `json:"client_id"`
	EntryID   string    `json:"entry_id"`
	EntryDate string    `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
}

const entryEventChannel = "journal:entries"

// FeedConn is the minimal interface our WebSocket implementation must satisfy.
type FeedConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// feedConnection tracks one therapist's feed and the clients it may see.
type feedConnection struct {
	TherapistID string
	Conn        FeedConn
	Clients     map[string]struct{}

	// writeMu serializes writes; gorilla/websocket allows at most one
	// concurrent writer per connection.
	writeMu sync.Mutex
}

func (fc *feedConnection) send(event EntryEvent) {
	fc.writeMu.Lock()
	defer fc.writeMu.Unlock()
	if err := fc.Conn.WriteJSON(event); err != nil {
		log.Printf("[feed] error writing entry event: %v", err)
	}
}

// feedHub is a global registry of therapist feed connections.
type feedHub struct {
	mu          sync.RWMutex
	connections map[string]*feedConnection
}

var (
	entryFeedHub   = &feedHub{connections: make(map[string]*feedConnection)}
	feedSubscriber sync.Once
)

// RegisterTherapistFeed registers or replaces a therapist's feed connection.
// clientIDs fixes the visibility set for the lifetime of the connection.
func RegisterTherapistFeed(therapistID string, clientIDs []string, conn FeedConn) {
	fc := &feedConnection{
		TherapistID: therapistID,
		Conn:        conn,
		Clients:     make(map[string]struct{}, len(clientIDs)),
	}
	for _, id := range clientIDs {
		fc.Clients[id] = struct{}{}
	}

	entryFeedHub.mu.Lock()
	entryFeedHub.connections[therapistID] = fc
	entryFeedHub.mu.Unlock()
}

// UnregisterTherapistFeed removes a therapist's feed connection.
func UnregisterTherapistFeed(therapistID string) {
	entryFeedHub.mu.Lock()
	delete(entryFeedHub.connections, therapistID)
	entryFeedHub.mu.Unlock()
}

// fanOutEntryEvent sends an event to every local connection allowed to see
// the client.
func fanOutEntryEvent(event EntryEvent) {
	if event.ClientID == "" {
		return
	}

	entryFeedHub.mu.RLock()
	defer entryFeedHub.mu.RUnlock()

	for _, fc := range entryFeedHub.connections {
		if _, watching := fc.Clients[event.ClientID]; !watching {
			continue
		}

		// Non-blocking best-effort send.
		go fc.send(event)
	}
}

// PublishEntryEvent publishes an entry event to Redis so every instance can
// fan it out to its local feed connections. Best-effort; a publish failure is
// logged and swallowed.
func PublishEntryEvent(ctx context.Context, event EntryEvent) {
	if database.RedisClient == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := database.RedisClient.Publish(ctx, entryEventChannel, data).Err(); err != nil {
		log.Printf("[feed] publish entry event: %v", err)
	}
}

// StartEntryFeedSubscriber ensures a single shared Redis listener per instance.
func StartEntryFeedSubscriber(ctx context.Context) {
	feedSubscriber.Do(func() {
		go runEntryFeedSubscriber(ctx)
	})
}

func runEntryFeedSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("[feed] Redis client not initialized; entry feed subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, entryEventChannel)
			defer pubsub.Close()

			log.Println("✅ Entry feed subscriber started")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[feed] subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event EntryEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("[feed] failed to unmarshal entry event: %v", err)
					continue
				}

				fanOutEntryEvent(event)
			}
		}()

		if ctx.Err() != nil {
			return
		}
	}
}
