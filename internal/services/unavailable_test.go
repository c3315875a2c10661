package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/models"
)

// withUnreachableDB swaps the shared Postgres handle for one pointed at a
// port nothing listens on, so every query fails at connect time.
func withUnreachableDB(t *testing.T) {
	t.Helper()
	down, err := sql.Open("postgres", "postgres://127.0.0.1:1/solace?sslmode=disable&connect_timeout=1")
	if err != nil {
		t.Fatalf("open unreachable handle: %v", err)
	}
	prev := database.PostgresDB
	database.PostgresDB = down
	t.Cleanup(func() {
		database.PostgresDB = prev
		down.Close()
	})
}

func TestReadsDegradeWhenDatabaseDown(t *testing.T) {
	withUnreachableDB(t)
	ctx := context.Background()

	if _, err := EntryForActor(ctx, "actor-1", "entry-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("EntryForActor error = %v, want ErrNotFound", err)
	}
	if _, err := UserByID(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserByID error = %v, want ErrNotFound", err)
	}

	entries, err := EntriesByDateRange(ctx, "user-1", time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("EntriesByDateRange error = %v, want nil", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("EntriesByDateRange = %v, want empty slice", entries)
	}

	rels, err := TherapistsOf(ctx, "client-1")
	if err != nil {
		t.Fatalf("TherapistsOf error = %v, want nil", err)
	}
	if rels == nil || len(rels) != 0 {
		t.Fatalf("TherapistsOf = %v, want empty slice", rels)
	}

	ok, err := IsActiveTherapist(ctx, "therapist-1", "client-1")
	if err != nil {
		t.Fatalf("IsActiveTherapist error = %v, want nil", err)
	}
	if ok {
		t.Fatal("IsActiveTherapist = true with the database down, want deny")
	}
}

func TestWritesSurfaceUnavailabilityWhenDatabaseDown(t *testing.T) {
	withUnreachableDB(t)
	ctx := context.Background()

	checks := []struct {
		name string
		call func() error
	}{
		{"CreateEntry", func() error {
			_, err := CreateEntry(ctx, "user-1", "today was fine", time.Now())
			return err
		}},
		{"UpdateEntry", func() error {
			_, err := UpdateEntry(ctx, "user-1", "entry-1", models.EntryChange{})
			return err
		}},
		{"DeleteEntry", func() error {
			return DeleteEntry(ctx, "user-1", "entry-1")
		}},
		{"CreateUser", func() error {
			_, err := CreateUser(ctx, "newuser", "hash")
			return err
		}},
		{"LinkTelegram", func() error {
			return LinkTelegram(ctx, "user-1", 42)
		}},
		{"CreateInvite", func() error {
			_, err := CreateInvite(ctx, "user-1", models.RoleClient, time.Hour)
			return err
		}},
		{"AcceptInvite", func() error {
			_, err := AcceptInvite(ctx, "some-token", "user-2")
			return err
		}},
		{"DeactivateRelationship", func() error {
			return DeactivateRelationship(ctx, "client-1", "therapist-1")
		}},
	}

	for _, c := range checks {
		if err := c.call(); !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s error = %v, want ErrUnavailable", c.name, err)
		}
	}
}
