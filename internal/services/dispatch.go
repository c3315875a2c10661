package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/solacejournal/solace-backend/internal/models"
)

// LinkButton is an optional inline button attached to an outgoing message.
type LinkButton struct {
	Text string
	URL  string
}

// Messenger delivers a text message to an external chat. Implemented by the
// Telegram adapter in production and by fakes in tests.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, button *LinkButton) error
}

// NotificationLogStore is the dedup/audit log consulted before and written
// after every send.
type NotificationLogStore interface {
	NotifiedOn(ctx context.Context, userID string, typ models.NotificationType, day string) (bool, error)
	Record(ctx context.Context, userID string, typ models.NotificationType, metadata string, sentAt time.Time) error
}

// ChatResolver maps a user id to their messaging channel. ok is false for
// users with no linked channel.
type ChatResolver func(ctx context.Context, userID string) (chatID int64, ok bool, err error)

// Dispatcher sends notifications at most once per (user, type, day). The log
// is checked before sending, not merely written after, so a sweep that
// re-evaluates the same open window cannot double-deliver.
type Dispatcher struct {
	Messenger   Messenger
	Log         NotificationLogStore
	ResolveChat ChatResolver
	SendTimeout time.Duration // bound per send; a stuck delivery must not stall the sweep
	Now         func() time.Time
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Dispatch delivers one notification. Returns (false, nil) when the send was
// skipped: dedup hit, or the user has no linked channel (a silent no-op, not
// an error). The log row is written only after a successful send, so a failed
// delivery is retried by the next sweep.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, typ models.NotificationType, message string, button *LinkButton) (sent bool, err error) {
	now := d.now()
	day := now.Format("2006-01-02")

	already, err := d.Log.NotifiedOn(ctx, userID, typ, day)
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	if already {
		return false, nil
	}

	chatID, ok, err := d.ResolveChat(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("resolve chat: %w", err)
	}
	if !ok {
		return false, nil
	}

	timeout := d.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.Messenger.Send(sendCtx, chatID, message, button); err != nil {
		return false, fmt.Errorf("send: %w", err)
	}

	if err := d.Log.Record(ctx, userID, typ, message, now); err != nil {
		// The message is out; a missing log row only risks one duplicate on
		// the next sweep. Log and report delivered.
		log.Printf("[dispatch] failed to record %s for user %s: %v", typ, userID, err)
	}
	return true, nil
}
