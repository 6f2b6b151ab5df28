package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  path: "data/wuji.db"
auth:
  api_key: "test-key-123"
telegram:
  token: "12345:token"
  seat_limit: 3
timezone: "Europe/Moscow"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/wuji.db" {
		t.Errorf("database.path = %q, want %q", cfg.Database.Path, "data/wuji.db")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Telegram.SeatLimit != 3 {
		t.Errorf("telegram.seat_limit = %d, want 3", cfg.Telegram.SeatLimit)
	}
	if _, err := cfg.Location(); err != nil {
		t.Errorf("timezone did not resolve: %v", err)
	}
}

// TestDefaults verifies defaults fill in when the YAML omits optional fields.
func TestDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
server:
  port: 8080
auth:
  api_key: "k"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "wuji.db" {
		t.Errorf("database.path = %q, want default", cfg.Database.Path)
	}
	if cfg.Telegram.SeatLimit != 5 {
		t.Errorf("seat_limit = %d, want 5", cfg.Telegram.SeatLimit)
	}
	if cfg.Timezone != "Europe/Moscow" {
		t.Errorf("timezone = %q, want default", cfg.Timezone)
	}
	if cfg.Reminders.StartHour != 10 || cfg.Reminders.EndHour != 21 {
		t.Errorf("reminder hours = %d..%d, want 10..21", cfg.Reminders.StartHour, cfg.Reminders.EndHour)
	}
}

// TestEnvOverride verifies that WUJI_ env vars take precedence over YAML values.
// This ensures production deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("WUJI_DB_PATH", "/var/lib/wuji/override.db")
	t.Setenv("WUJI_SERVER_PORT", "9999")
	t.Setenv("WUJI_AUTH_API_KEY", "env-key")
	t.Setenv("WUJI_TELEGRAM_TOKEN", "env-token")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/var/lib/wuji/override.db" {
		t.Errorf("database.path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want env override", cfg.Auth.APIKey)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("telegram.token = %q, want env override", cfg.Telegram.Token)
	}
}

// TestValidation verifies that required fields are enforced.
func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing port", "auth:\n  api_key: k\n"},
		{"missing api key", "server:\n  port: 8080\n"},
		{"bad timezone", "server:\n  port: 8080\nauth:\n  api_key: k\ntimezone: Nowhere/Nothing\n"},
		{"bad reminder hours", "server:\n  port: 8080\nauth:\n  api_key: k\nreminders:\n  start_hour: 25\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tc.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestMissingFile verifies a clear error for a nonexistent config path.
func TestMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
