package services

import (
	"github.com/solacejournal/solace-backend/internal/models"
)

// Entry authorization is a pure decision over the actor, the entry, and
// whether the actor currently stands as an active therapist of the entry's
// owner. Callers resolve existence first: a missing entry must surface
// ErrNotFound before any of these run, so probing a foreign or deleted id
// never reveals whether it exists.

// CanReadEntry permits the owner and any active therapist of the owner.
func CanReadEntry(actorID string, entry models.JournalEntry, actorIsActiveTherapist bool) error {
	if actorID == entry.UserID {
		return nil
	}
	if actorIsActiveTherapist {
		return nil
	}
	return ErrForbidden
}

// AuthorizeEntryChange checks every field the change touches:
//   - body text: owner only
//   - therapist comments / highlight: an active therapist of the owner, and
//     never the owner themselves; a dual-role user cannot annotate their own
//     entries.
//
// An empty change is permitted for anyone who can read the entry.
func AuthorizeEntryChange(actorID string, entry models.JournalEntry, change models.EntryChange, actorIsActiveTherapist bool) error {
	if change.Text != nil && actorID != entry.UserID {
		return ErrForbidden
	}

	if change.TherapistComments != nil || change.IsHighlighted != nil {
		if actorID == entry.UserID {
			return ErrForbidden
		}
		if !actorIsActiveTherapist {
			return ErrForbidden
		}
	}

	if change.Text == nil && change.TherapistComments == nil && change.IsHighlighted == nil {
		return CanReadEntry(actorID, entry, actorIsActiveTherapist)
	}
	return nil
}

// CanDeleteEntry permits the owner only; therapists may annotate but never
// remove a client's words.
func CanDeleteEntry(actorID string, entry models.JournalEntry) error {
	if actorID != entry.UserID {
		return ErrForbidden
	}
	return nil
}
