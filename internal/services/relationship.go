package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/models"
	"github.com/solacejournal/solace-backend/pkg/utils"
)

const inviteTokenBytes = 32

// DeriveRelationship maps an accepted invite onto the (client, therapist)
// pair. The inviter keeps the role they registered the invite with; the
// accepter fills the other side. Getting this backwards silently swaps who
// can read whose journal, so the inference lives in this one function.
func DeriveRelationship(inviterID string, inviterRole models.Role, accepterID string) (clientID, therapistID string) {
	if inviterRole == models.RoleTherapist {
		return accepterID, inviterID
	}
	return inviterID, accepterID
}

// ValidateInvite checks the token lifecycle rules: a token is consumable only
// while unused and unexpired. Use-before-expiry ordering: a token that is both
// used and expired reports ErrInviteUsed.
func ValidateInvite(inv models.InviteToken, now time.Time) error {
	if inv.UsedAt != nil {
		return ErrInviteUsed
	}
	if now.After(inv.ExpiresAt) {
		return ErrInviteExpired
	}
	return nil
}

// CreateInvite generates an unguessable single-use token inviting someone to
// become the counterpart of inviterRole, valid for ttl from now.
func CreateInvite(ctx context.Context, inviterID string, inviterRole models.Role, ttl time.Duration) (models.InviteToken, error) {
	token, err := utils.GenerateToken(inviteTokenBytes)
	if err != nil {
		return models.InviteToken{}, err
	}

	var inv models.InviteToken
	err = database.PostgresDB.QueryRowContext(ctx,
		`INSERT INTO invite_tokens (token, inviter_id, inviter_role, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, token, inviter_id, inviter_role, expires_at, used_at, used_by, created_at`,
		token, inviterID, string(inviterRole), time.Now().Add(ttl),
	).Scan(&inv.ID, &inv.Token, &inv.InviterID, &inv.InviterRole, &inv.ExpiresAt, &inv.UsedAt, &inv.UsedBy, &inv.CreatedAt)
	if err != nil {
		return models.InviteToken{}, fmt.Errorf("%w: create invite: %v", ErrUnavailable, err)
	}
	return inv, nil
}

// AcceptInvite consumes a token and creates (or reactivates) the relationship
// it stands for. Fails with ErrNotFound for unknown tokens, ErrInviteUsed
// after a prior use and ErrInviteExpired past the expiry.
func AcceptInvite(ctx context.Context, token, accepterID string) (models.Relationship, error) {
	var inv models.InviteToken
	err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT id, token, inviter_id, inviter_role, expires_at, used_at, used_by, created_at
		 FROM invite_tokens WHERE token = $1`, token,
	).Scan(&inv.ID, &inv.Token, &inv.InviterID, &inv.InviterRole, &inv.ExpiresAt, &inv.UsedAt, &inv.UsedBy, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Relationship{}, ErrNotFound
	}
	if err != nil {
		// Consuming a token is a write; an unreachable database surfaces as
		// unavailability rather than reading as a missing invite.
		return models.Relationship{}, fmt.Errorf("%w: load invite: %v", ErrUnavailable, err)
	}

	if err := ValidateInvite(inv, time.Now()); err != nil {
		return models.Relationship{}, err
	}

	clientID, therapistID := DeriveRelationship(inv.InviterID, inv.InviterRole, accepterID)

	// One row per pair; accepting a fresh invite for a deactivated pair
	// reactivates the existing row rather than duplicating it.
	var rel models.Relationship
	err = database.PostgresDB.QueryRowContext(ctx,
		`INSERT INTO relationships (client_id, therapist_id)
		 VALUES ($1, $2)
		 ON CONFLICT (client_id, therapist_id)
		 DO UPDATE SET is_active = TRUE
		 RETURNING id, client_id, therapist_id, connected_at, is_active`,
		clientID, therapistID,
	).Scan(&rel.ID, &rel.ClientID, &rel.TherapistID, &rel.ConnectedAt, &rel.IsActive)
	if err != nil {
		return models.Relationship{}, fmt.Errorf("%w: create relationship: %v", ErrUnavailable, err)
	}

	if _, err := database.PostgresDB.ExecContext(ctx,
		`UPDATE invite_tokens SET used_at = NOW(), used_by = $1 WHERE id = $2`,
		accepterID, inv.ID,
	); err != nil {
		return models.Relationship{}, fmt.Errorf("%w: mark invite used: %v", ErrUnavailable, err)
	}

	return rel, nil
}

func queryRelationships(ctx context.Context, query, arg string) ([]models.Relationship, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, query, arg)
	if err != nil {
		// Read path degrades to empty so callers can render a benign state.
		log.Printf("[relationships] query degraded to empty: %v", err)
		return []models.Relationship{}, nil
	}
	defer rows.Close()

	rels := []models.Relationship{}
	for rows.Next() {
		var rel models.Relationship
		if err := rows.Scan(&rel.ID, &rel.ClientID, &rel.TherapistID, &rel.ConnectedAt, &rel.IsActive); err != nil {
			log.Printf("[relationships] query degraded to empty: %v", err)
			return []models.Relationship{}, nil
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[relationships] query degraded to empty: %v", err)
		return []models.Relationship{}, nil
	}
	return rels, nil
}

// TherapistsOf lists the client's active relationships.
func TherapistsOf(ctx context.Context, clientID string) ([]models.Relationship, error) {
	return queryRelationships(ctx,
		`SELECT id, client_id, therapist_id, connected_at, is_active
		 FROM relationships WHERE client_id = $1 AND is_active = TRUE`, clientID)
}

// ClientsOf lists the therapist's active relationships.
func ClientsOf(ctx context.Context, therapistID string) ([]models.Relationship, error) {
	return queryRelationships(ctx,
		`SELECT id, client_id, therapist_id, connected_at, is_active
		 FROM relationships WHERE therapist_id = $1 AND is_active = TRUE`, therapistID)
}

// IsActiveTherapist reports whether therapistID currently stands as an active
// therapist of clientID.
func IsActiveTherapist(ctx context.Context, therapistID, clientID string) (bool, error) {
	var one int
	err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT 1 FROM relationships
		 WHERE therapist_id = $1 AND client_id = $2 AND is_active = TRUE`,
		therapistID, clientID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		// Deny access when the check cannot be made.
		log.Printf("[relationships] therapist check degraded to deny: %v", err)
		return false, nil
	}
	return true, nil
}

// DeactivateRelationship soft-ends a relationship; the row is kept so history
// survives.
func DeactivateRelationship(ctx context.Context, clientID, therapistID string) error {
	res, err := database.PostgresDB.ExecContext(ctx,
		`UPDATE relationships SET is_active = FALSE
		 WHERE client_id = $1 AND therapist_id = $2 AND is_active = TRUE`,
		clientID, therapistID)
	if err != nil {
		return fmt.Errorf("%w: deactivate relationship: %v", ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
