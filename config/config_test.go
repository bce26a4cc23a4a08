package config

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":   "postgres://localhost/fest",
		"JWT_SECRET_KEY": "secret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.ServerPort)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected log defaults: %s %s", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.FeedMinReconnect != 10*time.Second || cfg.FeedMaxReconnect != time.Minute {
		t.Errorf("unexpected feed defaults: %s %s", cfg.FeedMinReconnect, cfg.FeedMaxReconnect)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected CORS default: %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":         "postgres://localhost/fest",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9000",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "TEXT",
		"CORS_ALLOWED_ORIGINS": "https://fest.example.com, http://localhost:5173",
		"ADMIN_EMAIL":          "admin@example.com",
		"ADMIN_PASSWORD":       "changeme1",
		"FEED_MIN_RECONNECT":   "2s",
		"FEED_MAX_RECONNECT":   "20s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != 9000 || cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	want := []string{"https://fest.example.com", "http://localhost:5173"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.FeedMinReconnect != 2*time.Second || cfg.FeedMaxReconnect != 20*time.Second {
		t.Errorf("unexpected feed intervals")
	}
}

func TestFromEnvErrors(t *testing.T) {
	base := map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET_KEY": "s"}
	cases := map[string]map[string]string{
		"DATABASE_URL":       {"JWT_SECRET_KEY": "s"},
		"JWT_SECRET_KEY":     {"DATABASE_URL": "postgres://x"},
		"SERVER_PORT":        {"SERVER_PORT": "70000"},
		"LOG_FORMAT":         {"LOG_FORMAT": "xml"},
		"ADMIN_EMAIL":        {"ADMIN_EMAIL": "a@b.c"},
		"FEED_MAX_RECONNECT": {"FEED_MIN_RECONNECT": "1m", "FEED_MAX_RECONNECT": "1s"},
	}
	for name, overrides := range cases {
		m := map[string]string{}
		if name != "DATABASE_URL" && name != "JWT_SECRET_KEY" {
			for k, v := range base {
				m[k] = v
			}
		}
		for k, v := range overrides {
			m[k] = v
		}
		_, err := FromEnv(env(m))
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !strings.Contains(err.Error(), name) {
			t.Errorf("%s: error %q does not mention the variable", name, err)
		}
	}
}
