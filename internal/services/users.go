package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/models"
)

// CreateUser inserts a new user with a hashed password and returns it.
func CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	var u models.User
	err := database.PostgresDB.QueryRowContext(ctx,
		`INSERT INTO users (id, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, password_hash, telegram_chat_id, created_at, is_active`,
		uuid.New(), username, passwordHash,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TelegramChatID, &u.CreatedAt, &u.IsActive)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: create user: %v", ErrUnavailable, err)
	}
	return u, nil
}

// scanUser serves the pure read lookups: a missing row and an unreachable
// database both read as an absent user.
func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TelegramChatID, &u.CreatedAt, &u.IsActive)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		log.Printf("[users] lookup degraded to not found: %v", err)
		return models.User{}, ErrNotFound
	}
	return u, nil
}

const userColumns = `id, username, password_hash, telegram_chat_id, created_at, is_active`

// UserByID returns the user with the given id, or ErrNotFound.
func UserByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UserByUsername looks a user up by normalized username, or ErrNotFound.
func UserByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username))
}

// UserByTelegramChatID finds the user linked to a Telegram chat, or ErrNotFound.
func UserByTelegramChatID(ctx context.Context, chatID int64) (models.User, error) {
	return scanUser(database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_chat_id = $1`, chatID))
}

// LinkTelegram attaches a Telegram chat id to the user's account so
// notifications can reach them.
func LinkTelegram(ctx context.Context, userID string, chatID int64) error {
	res, err := database.PostgresDB.ExecContext(ctx,
		`UPDATE users SET telegram_chat_id = $1 WHERE id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("%w: link telegram: %v", ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TelegramChatID resolves a user's messaging channel. ok is false when the
// user has not linked Telegram; that is not an error.
func TelegramChatID(ctx context.Context, userID string) (chatID int64, ok bool, err error) {
	var stored sql.NullInt64
	err = database.PostgresDB.QueryRowContext(ctx,
		`SELECT telegram_chat_id FROM users WHERE id = $1`, userID).Scan(&stored)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stored.Int64, stored.Valid, nil
}

// AllUserIDs lists every active user id; the scheduler sweeps over these.
func AllUserIDs(ctx context.Context) ([]string, error) {
	rows, err := database.PostgresDB.QueryContext(ctx,
		`SELECT id FROM users WHERE is_active = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
