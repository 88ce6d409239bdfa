package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.WidgetTypingDelay != 700*time.Millisecond {
		t.Errorf("expected default typing delay 700ms, got %s", cfg.WidgetTypingDelay)
	}
	if cfg.WidgetSuccessReset != 5*time.Second {
		t.Errorf("expected default success reset 5s, got %s", cfg.WidgetSuccessReset)
	}
	if cfg.CORSAllowedOrigins != "*" {
		t.Errorf("expected wildcard CORS default, got %s", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("WIDGET_TYPING_DELAY", "600ms")
	t.Setenv("RATE_LIMIT_BURST", "50")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := Load()

	if cfg.Port != "9191" {
		t.Errorf("expected port override 9191, got %s", cfg.Port)
	}
	if cfg.WidgetTypingDelay != 600*time.Millisecond {
		t.Errorf("expected typing delay 600ms, got %s", cfg.WidgetTypingDelay)
	}
	if cfg.RateLimitBurst != 50 {
		t.Errorf("expected burst 50, got %d", cfg.RateLimitBurst)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Errorf("expected rate 2.5, got %f", cfg.RateLimitPerSecond)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("WIDGET_SUCCESS_RESET", "not-a-duration")
	t.Setenv("RATE_LIMIT_BURST", "many")

	cfg := Load()

	if cfg.WidgetSuccessReset != 5*time.Second {
		t.Errorf("expected fallback success reset 5s, got %s", cfg.WidgetSuccessReset)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("expected fallback burst 20, got %d", cfg.RateLimitBurst)
	}
}
