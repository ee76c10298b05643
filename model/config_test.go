package model_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/billingcat/notes/model"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
Mode = "development"
Port = 8080
CookieSecret = "file-secret"
GoogleClientID = "file-id"
GoogleClientSecret = "file-client-secret"
Latency = "250ms"
AccessPolicy = "session"

[Servers.development]
Database = "sqlite3"
DBName = "notes.db"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_CLIENT_ID", "env-id")
	t.Setenv("PORT", "9090")

	cfg, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.GoogleClientID != "env-id" {
		t.Errorf("GoogleClientID = %q, want env override", cfg.GoogleClientID)
	}
	if cfg.GoogleClientSecret != "file-client-secret" {
		t.Errorf("GoogleClientSecret = %q", cfg.GoogleClientSecret)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Servers["development"].Database != "sqlite3" {
		t.Errorf("Servers = %+v", cfg.Servers)
	}
	if d, _ := cfg.LatencyDuration(); d != 250*time.Millisecond {
		t.Errorf("LatencyDuration = %v", d)
	}
	if cfg.Policy() != model.PolicySession {
		t.Errorf("Policy = %q", cfg.Policy())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.CookieSecret != "s" {
		t.Errorf("CookieSecret = %q", cfg.CookieSecret)
	}
}

func TestConfig_ValidateMissingSecrets(t *testing.T) {
	cfg := &model.Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty config")
	}
	for _, key := range []string{"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "SESSION_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	base := model.Config{GoogleClientID: "a", GoogleClientSecret: "b", CookieSecret: "c"}

	bad := base
	bad.Latency = "soon"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid latency")
	}
	bad = base
	bad.Latency = "-1s"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative latency")
	}
	bad = base
	bad.AccessPolicy = "everyone"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &model.Config{}
	if d, err := cfg.LatencyDuration(); err != nil || d != model.DefaultLatency {
		t.Errorf("LatencyDuration = %v, %v", d, err)
	}
	if cfg.Policy() != model.PolicyReserved {
		t.Errorf("Policy = %q", cfg.Policy())
	}
	if cfg.UpstreamAccessCodeURL() != model.DefaultAccessCodeURL {
		t.Errorf("UpstreamAccessCodeURL = %q", cfg.UpstreamAccessCodeURL())
	}
}
