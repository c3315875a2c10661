package services

import (
	"context"
	"time"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/pkg/utils"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// sessionKeyPrefix is the Redis key prefix for sessions
	sessionKeyPrefix = "session:"
	// userSessionKeyPrefix is the Redis key prefix for user->session mapping
	userSessionKeyPrefix = "user_session:"
)

// CreateSession creates a new session for a user and stores it in Redis.
// Any existing session for the user is invalidated first, so each login
// restarts the 7-day timer with a single live token.
func CreateSession(ctx context.Context, userID string) (string, error) {
	InvalidateUserSessions(ctx, userID)

	token, err := utils.GenerateToken(32)
	if err != nil {
		return "", err
	}

	if err := database.RedisClient.Set(ctx, sessionKeyPrefix+token, userID, SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKeyPrefix+userID, token, SessionDuration).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateSession checks if a session token is valid and returns the user ID.
func ValidateSession(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}

	userID, err := database.RedisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	userID, err := database.RedisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err == nil && userID != "" {
		database.RedisClient.Del(ctx, userSessionKeyPrefix+userID)
	}

	return database.RedisClient.Del(ctx, sessionKeyPrefix+token).Err()
}

// InvalidateUserSessions invalidates all sessions for a user (useful when
// password changes).
func InvalidateUserSessions(ctx context.Context, userID string) error {
	token, err := database.RedisClient.Get(ctx, userSessionKeyPrefix+userID).Result()
	if err == nil && token != "" {
		database.RedisClient.Del(ctx, sessionKeyPrefix+token)
	}
	return database.RedisClient.Del(ctx, userSessionKeyPrefix+userID).Err()
}
