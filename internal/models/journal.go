package models

import (
	"time"
)

// JournalEntry is a single journal note owned by one user (the author).
// EntryDate is the calendar day the entry is attributed to and may be
// backdated; CreatedAt is when the row was written.
type JournalEntry struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Text              string    `json:"text"`
	EntryDate         time.Time `json:"entry_date"`
	TherapistComments *string   `json:"therapist_comments,omitempty"` // Written by a connected therapist only
	IsHighlighted     bool      `json:"is_highlighted"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EntryChange is a partial update to an entry. Nil fields are left untouched.
type EntryChange struct {
	Text              *string `json:"text,omitempty"`
	TherapistComments *string `json:"therapist_comments,omitempty"`
	IsHighlighted     *bool   `json:"is_highlighted,omitempty"`
}

// Rating is the shared 5-point ordinal scale for day ratings.
type Rating string

const (
	RatingNegative       Rating = "negative"
	RatingMostlyNegative Rating = "mostly_negative"
	RatingNeutral        Rating = "neutral"
	RatingMostlyPositive Rating = "mostly_positive"
	RatingPositive       Rating = "positive"
)

// Valid reports whether r is on the scale.
func (r Rating) Valid() bool {
	switch r {
	case RatingNegative, RatingMostlyNegative, RatingNeutral, RatingMostlyPositive, RatingPositive:
		return true
	}
	return false
}

// DayRating holds both sides' ratings of one calendar day for one user.
// Exactly one record exists per (user, date); writes merge into it.
type DayRating struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	RatingDate      time.Time `json:"rating_date"`
	ClientRating    *Rating   `json:"client_rating,omitempty"`
	TherapistRating *Rating   `json:"therapist_rating,omitempty"`
	TherapistID     *string   `json:"therapist_id,omitempty"` // Who supplied the therapist-side rating
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
