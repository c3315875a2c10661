package models

import (
	"time"
)

// Relationship links one client to one therapist. Rows are never deleted;
// ending a relationship clears IsActive so history stays intact. At most one
// row exists per (client, therapist) pair and re-connecting reactivates it.
type Relationship struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	TherapistID string    `json:"therapist_id"`
	ConnectedAt time.Time `json:"connected_at"`
	IsActive    bool      `json:"is_active"`
}

// InviteToken is a single-use, time-limited capability for forming a
// relationship. InviterRole is the role the INVITER holds; the accepter
// fills the opposite side.
type InviteToken struct {
	ID          string     `json:"id"`
	Token       string     `json:"token"`
	InviterID   string     `json:"inviter_id"`
	InviterRole Role       `json:"inviter_role"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	UsedBy      *string    `json:"used_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
