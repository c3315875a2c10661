package services

import (
	"errors"
	"testing"

	"github.com/solacejournal/solace-backend/internal/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCanReadEntry(t *testing.T) {
	entry := models.JournalEntry{ID: "e1", UserID: "owner"}

	if err := CanReadEntry("owner", entry, false); err != nil {
		t.Fatalf("owner should read their own entry: %v", err)
	}
	if err := CanReadEntry("therapist", entry, true); err != nil {
		t.Fatalf("active therapist should read a client entry: %v", err)
	}
	if err := CanReadEntry("stranger", entry, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger read should be forbidden, got %v", err)
	}
}

func TestAuthorizeEntryChange(t *testing.T) {
	entry := models.JournalEntry{ID: "e1", UserID: "owner"}

	tests := []struct {
		name        string
		actor       string
		change      models.EntryChange
		isTherapist bool
		wantErr     error
	}{
		{name: "owner edits text", actor: "owner", change: models.EntryChange{Text: strPtr("new")}, wantErr: nil},
		{name: "therapist edits text", actor: "th", change: models.EntryChange{Text: strPtr("new")}, isTherapist: true, wantErr: ErrForbidden},
		{name: "stranger edits text", actor: "x", change: models.EntryChange{Text: strPtr("new")}, wantErr: ErrForbidden},

		{name: "therapist comments", actor: "th", change: models.EntryChange{TherapistComments: strPtr("note")}, isTherapist: true, wantErr: nil},
		{name: "owner comments own entry", actor: "owner", change: models.EntryChange{TherapistComments: strPtr("note")}, wantErr: ErrForbidden},
		{name: "inactive therapist comments", actor: "th", change: models.EntryChange{TherapistComments: strPtr("note")}, isTherapist: false, wantErr: ErrForbidden},

		{name: "therapist highlights", actor: "th", change: models.EntryChange{IsHighlighted: boolPtr(true)}, isTherapist: true, wantErr: nil},
		{name: "owner highlights own entry", actor: "owner", change: models.EntryChange{IsHighlighted: boolPtr(true)}, wantErr: ErrForbidden},

		// A user who is both client and therapist still cannot annotate
		// entries they own.
		{name: "dual-role self annotation", actor: "owner", change: models.EntryChange{TherapistComments: strPtr("note")}, isTherapist: true, wantErr: ErrForbidden},

		{name: "text and comment together as therapist", actor: "th", change: models.EntryChange{Text: strPtr("new"), TherapistComments: strPtr("note")}, isTherapist: true, wantErr: ErrForbidden},

		{name: "empty change as owner", actor: "owner", change: models.EntryChange{}, wantErr: nil},
		{name: "empty change as therapist", actor: "th", change: models.EntryChange{}, isTherapist: true, wantErr: nil},
		{name: "empty change as stranger", actor: "x", change: models.EntryChange{}, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeEntryChange(tt.actor, entry, tt.change, tt.isTherapist)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AuthorizeEntryChange = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanDeleteEntry(t *testing.T) {
	entry := models.JournalEntry{ID: "e1", UserID: "owner"}

	if err := CanDeleteEntry("owner", entry); err != nil {
		t.Fatalf("owner delete should pass: %v", err)
	}
	if err := CanDeleteEntry("th", entry); !errors.Is(err, ErrForbidden) {
		t.Fatalf("therapist delete should be forbidden, got %v", err)
	}
}
