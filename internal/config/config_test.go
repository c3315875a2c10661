package config

import (
	"testing"
	"time"
)

func TestIsProduction(t *testing.T) {
	cases := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"PRODUCTION", true},
		{"development", false},
		{"", false},
	}
	for _, c := range cases {
		t.Setenv("ENV", c.env)
		if got := Load().IsProduction(); got != c.want {
			t.Errorf("ENV=%q IsProduction() = %v, want %v", c.env, got, c.want)
		}
	}
}

func TestSweepIntervalsFromEnv(t *testing.T) {
	t.Setenv("REMINDER_SWEEP_SECONDS", "15")
	t.Setenv("DIGEST_SWEEP_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.ReminderSweepEvery != 15*time.Second {
		t.Errorf("ReminderSweepEvery = %v, want 15s", cfg.ReminderSweepEvery)
	}
	if cfg.DigestSweepEvery != time.Hour {
		t.Errorf("DigestSweepEvery = %v, want the 1h default", cfg.DigestSweepEvery)
	}
}
