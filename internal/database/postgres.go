package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist.
// Uniqueness invariants (one rating per user/day, one relationship row per
// pair, unique invite tokens) are enforced here, at the database level.
func InitPostgresTables() error {
	queries := []string{
		// Users table
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(20) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			telegram_chat_id BIGINT UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Journal entries table. entry_date is the attributed calendar day
		// and may differ from created_at (backdated entries).
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			entry_date DATE NOT NULL,
			therapist_comments TEXT,
			is_highlighted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Day ratings table: one row per (user, day), merged on conflict
		`CREATE TABLE IF NOT EXISTS day_ratings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating_date DATE NOT NULL,
			client_rating VARCHAR(16),
			therapist_rating VARCHAR(16),
			therapist_id UUID REFERENCES users(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, rating_date)
		)`,

		// Client-therapist relationships: soft-deactivated, never deleted
		`CREATE TABLE IF NOT EXISTS relationships (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			client_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			therapist_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			connected_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE(client_id, therapist_id)
		)`,

		// Invite tokens: single-use relationship capabilities
		`CREATE TABLE IF NOT EXISTS invite_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			token VARCHAR(64) NOT NULL UNIQUE,
			inviter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			inviter_role VARCHAR(9) NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			used_at TIMESTAMP,
			used_by UUID REFERENCES users(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Notification settings: one row per user, created lazily
		`CREATE TABLE IF NOT EXISTS notification_settings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			reminder_time VARCHAR(5) NOT NULL DEFAULT '09:00',
			reminder_time_end VARCHAR(5) NOT NULL DEFAULT '21:00',
			notify_if_no_entries BOOLEAN NOT NULL DEFAULT TRUE,
			notify_if_few_entries BOOLEAN NOT NULL DEFAULT TRUE,
			min_entries_threshold INTEGER NOT NULL DEFAULT 3,
			therapist_notification_mode VARCHAR(12),
			batch_digest_time VARCHAR(5),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_telegram_chat_id ON users(telegram_chat_id)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_date ON journal_entries(user_id, entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_day_ratings_user_date ON day_ratings(user_id, rating_date)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_client_id ON relationships(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_therapist_id ON relationships(therapist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invite_tokens_token ON invite_tokens(token)`,
		`CREATE INDEX IF NOT EXISTS idx_invite_tokens_expires_at ON invite_tokens(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notification_settings_user_id ON notification_settings(user_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
