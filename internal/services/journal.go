package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/models"
)

const entryColumns = `id, user_id, text, entry_date, therapist_comments, is_highlighted, created_at, updated_at`

func scanEntry(row *sql.Row) (models.JournalEntry, error) {
	var e models.JournalEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Text, &e.EntryDate, &e.TherapistComments, &e.IsHighlighted, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return models.JournalEntry{}, err
	}
	return e, nil
}

// CreateEntry writes a new journal entry owned by userID, attributed to the
// calendar day of entryDate (which may be in the past).
func CreateEntry(ctx context.Context, userID, text string, entryDate time.Time) (models.JournalEntry, error) {
	entry, err := scanEntry(database.PostgresDB.QueryRowContext(ctx,
		`INSERT INTO journal_entries (user_id, text, entry_date)
		 VALUES ($1, $2, $3)
		 RETURNING `+entryColumns,
		userID, text, entryDate))
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: create entry: %v", ErrUnavailable, err)
	}

	// Immediate per-client therapist notifications and the live feed both
	// hang off entry creation; neither may fail the write.
	go notifyEntryCreated(entry)

	return entry, nil
}

// EntryForActor loads an entry and enforces read access: the owner or an
// active therapist of the owner. Existence is checked before permission.
// Pure read path: an unreachable database reads as a missing entry.
func EntryForActor(ctx context.Context, actorID, entryID string) (models.JournalEntry, error) {
	entry, err := scanEntry(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, entryID))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[journal] entry lookup degraded to not found: %v", err)
			err = ErrNotFound
		}
		return models.JournalEntry{}, err
	}

	isTherapist := false
	if actorID != entry.UserID {
		isTherapist, err = IsActiveTherapist(ctx, actorID, entry.UserID)
		if err != nil {
			return models.JournalEntry{}, err
		}
	}
	if err := CanReadEntry(actorID, entry, isTherapist); err != nil {
		return models.JournalEntry{}, err
	}
	return entry, nil
}

// EntriesByDateRange returns the user's entries with entry_date in
// [from, to], newest first. The read path degrades to an empty slice when
// the database is unreachable.
func EntriesByDateRange(ctx context.Context, userID string, from, to time.Time) ([]models.JournalEntry, error) {
	rows, err := database.PostgresDB.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries
		 WHERE user_id = $1 AND entry_date >= $2 AND entry_date <= $3
		 ORDER BY entry_date DESC, created_at DESC`,
		userID, from, to)
	if err != nil {
		log.Printf("[journal] entries query degraded to empty: %v", err)
		return []models.JournalEntry{}, nil
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.EntryDate, &e.TherapistComments, &e.IsHighlighted, &e.CreatedAt, &e.UpdatedAt); err != nil {
			log.Printf("[journal] entries scan degraded to empty: %v", err)
			return []models.JournalEntry{}, nil
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[journal] entries query degraded to empty: %v", err)
		return []models.JournalEntry{}, nil
	}
	return entries, nil
}

// EntriesCountForDay counts the user's entries attributed to day's calendar
// date.
func EntriesCountForDay(ctx context.Context, userID string, day time.Time) (int, error) {
	var count int
	err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries
		 WHERE user_id = $1 AND entry_date = $2`,
		userID, day.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateEntry applies a partial change after per-field authorization: text is
// owner-only, therapist comments and the highlight flag require an active
// therapist of the owner. Missing entries surface ErrNotFound before any
// permission decision.
func UpdateEntry(ctx context.Context, actorID, entryID string, change models.EntryChange) (models.JournalEntry, error) {
	entry, err := scanEntry(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, entryID))
	if errors.Is(err, ErrNotFound) {
		return models.JournalEntry{}, err
	}
	if err != nil {
		// Write path: surface unavailability instead of degrading.
		return models.JournalEntry{}, fmt.Errorf("%w: load entry: %v", ErrUnavailable, err)
	}

	isTherapist := false
	if actorID != entry.UserID {
		isTherapist, err = IsActiveTherapist(ctx, actorID, entry.UserID)
		if err != nil {
			return models.JournalEntry{}, err
		}
	}
	if err := AuthorizeEntryChange(actorID, entry, change, isTherapist); err != nil {
		return models.JournalEntry{}, err
	}

	updated, err := scanEntry(database.PostgresDB.QueryRowContext(ctx,
		`UPDATE journal_entries SET
			text = COALESCE($2, text),
			therapist_comments = COALESCE($3, therapist_comments),
			is_highlighted = COALESCE($4, is_highlighted),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+entryColumns,
		entryID, change.Text, change.TherapistComments, change.IsHighlighted))
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: update entry: %v", ErrUnavailable, err)
	}
	return updated, nil
}

// DeleteEntry removes an entry; only the owner may delete.
func DeleteEntry(ctx context.Context, actorID, entryID string) error {
	entry, err := scanEntry(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, entryID))
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: load entry: %v", ErrUnavailable, err)
	}
	if err := CanDeleteEntry(actorID, entry); err != nil {
		return err
	}

	if _, err := database.PostgresDB.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE id = $1`, entryID); err != nil {
		return fmt.Errorf("%w: delete entry: %v", ErrUnavailable, err)
	}
	return nil
}

// UpsertDayRating merges a rating into the single (user, date) record. Only
// provided sides are written: a client updating their rating preserves a
// previously stored therapist rating and vice versa. therapistID records who
// supplied the therapist-side value.
func UpsertDayRating(ctx context.Context, userID string, date time.Time, clientRating, therapistRating *models.Rating, therapistID *string) (models.DayRating, error) {
	var r models.DayRating
	err := database.PostgresDB.QueryRowContext(ctx,
		`INSERT INTO day_ratings (user_id, rating_date, client_rating, therapist_rating, therapist_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, rating_date) DO UPDATE SET
			client_rating = COALESCE(EXCLUDED.client_rating, day_ratings.client_rating),
			therapist_rating = COALESCE(EXCLUDED.therapist_rating, day_ratings.therapist_rating),
			therapist_id = COALESCE(EXCLUDED.therapist_id, day_ratings.therapist_id),
			updated_at = NOW()
		 RETURNING id, user_id, rating_date, client_rating, therapist_rating, therapist_id, created_at, updated_at`,
		userID, date.Format("2006-01-02"), clientRating, therapistRating, therapistID,
	).Scan(&r.ID, &r.UserID, &r.RatingDate, &r.ClientRating, &r.TherapistRating, &r.TherapistID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return models.DayRating{}, fmt.Errorf("%w: upsert rating: %v", ErrUnavailable, err)
	}
	return r, nil
}

// DayRatingFor returns the rating record for (user, date), or nil when the
// day has not been rated.
func DayRatingFor(ctx context.Context, userID string, date time.Time) (*models.DayRating, error) {
	var r models.DayRating
	err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT id, user_id, rating_date, client_rating, therapist_rating, therapist_id, created_at, updated_at
		 FROM day_ratings WHERE user_id = $1 AND rating_date = $2`,
		userID, date.Format("2006-01-02"),
	).Scan(&r.ID, &r.UserID, &r.RatingDate, &r.ClientRating, &r.TherapistRating, &r.TherapistID, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		// Read path: degrade rather than fail the page render.
		log.Printf("[journal] rating query degraded to empty: %v", err)
		return nil, nil
	}
	return &r, nil
}
