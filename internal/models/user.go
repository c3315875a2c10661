package models

import (
	"time"
)

// User is a journaling account. A user is not intrinsically a client or a
// therapist; both standings are derived from active relationships, and one
// user can hold both at once.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"` // Nil until the user links the bot
	CreatedAt      time.Time `json:"created_at"`
	IsActive       bool      `json:"is_active"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}

// Role names which side of a relationship a user stands on for a given link.
type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleTherapist
}
