package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PostgresURI    string
	MongoURI       string
	RedisURI       string
	Port           string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.

	TelegramBotToken string // Empty disables the bot; notifications become no-ops
	MiniAppURL       string // Web app linked from bot replies and notifications

	ReminderSweepEvery time.Duration // How often reminder eligibility is re-evaluated
	DigestSweepEvery   time.Duration // How often digest eligibility is re-evaluated
	InviteTTL          time.Duration // Lifetime of a relationship invite token
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		if u := strings.TrimSpace(getEnv("FRONTEND_URL", "http://localhost:3000")); u != "" {
			allowedOrigins = append(allowedOrigins, u)
		}
	}

	return &Config{
		PostgresURI:      getEnv("POSTGRES_URI", "postgres://localhost:5432/solace?sslmode=disable"),
		MongoURI:         getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/solace")),
		RedisURI:         getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   allowedOrigins,
		Environment:      env,
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		MiniAppURL:       getEnv("MINI_APP_URL", "http://localhost:3000"),

		ReminderSweepEvery: getEnvSeconds("REMINDER_SWEEP_SECONDS", 60),
		DigestSweepEvery:   getEnvSeconds("DIGEST_SWEEP_SECONDS", 3600),
		InviteTTL:          getEnvSeconds("INVITE_TTL_SECONDS", 30*24*60*60),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
