package services

import (
	"errors"
	"testing"
	"time"

	"github.com/solacejournal/solace-backend/internal/models"
)

func TestDeriveRelationship(t *testing.T) {
	tests := []struct {
		name          string
		inviterRole   models.Role
		wantClient    string
		wantTherapist string
	}{
		// A therapist inviting means the accepter becomes their client.
		{name: "therapist invites", inviterRole: models.RoleTherapist, wantClient: "accepter", wantTherapist: "inviter"},
		// A client inviting means the accepter becomes their therapist.
		{name: "client invites", inviterRole: models.RoleClient, wantClient: "inviter", wantTherapist: "accepter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientID, therapistID := DeriveRelationship("inviter", tt.inviterRole, "accepter")
			if clientID != tt.wantClient || therapistID != tt.wantTherapist {
				t.Fatalf("DeriveRelationship(%s) = (%s, %s), want (%s, %s)",
					tt.inviterRole, clientID, therapistID, tt.wantClient, tt.wantTherapist)
			}
		})
	}
}

func TestValidateInvite(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Hour)

	t.Run("fresh token passes", func(t *testing.T) {
		inv := models.InviteToken{ExpiresAt: now.Add(time.Hour)}
		if err := ValidateInvite(inv, now); err != nil {
			t.Fatalf("fresh invite should validate: %v", err)
		}
	})

	t.Run("used token", func(t *testing.T) {
		inv := models.InviteToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}
		if err := ValidateInvite(inv, now); !errors.Is(err, ErrInviteUsed) {
			t.Fatalf("got %v, want ErrInviteUsed", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		inv := models.InviteToken{ExpiresAt: now.Add(-time.Minute)}
		if err := ValidateInvite(inv, now); !errors.Is(err, ErrInviteExpired) {
			t.Fatalf("got %v, want ErrInviteExpired", err)
		}
	})

	t.Run("used wins over expired", func(t *testing.T) {
		inv := models.InviteToken{ExpiresAt: now.Add(-time.Minute), UsedAt: &used}
		if err := ValidateInvite(inv, now); !errors.Is(err, ErrInviteUsed) {
			t.Fatalf("got %v, want ErrInviteUsed for a used and expired token", err)
		}
	})

	t.Run("expiry boundary is inclusive", func(t *testing.T) {
		inv := models.InviteToken{ExpiresAt: now}
		if err := ValidateInvite(inv, now); err != nil {
			t.Fatalf("a token consumed exactly at its expiry instant should pass: %v", err)
		}
	})
}
