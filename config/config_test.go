package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BatchSize != 1 {
		t.Errorf("expected default batch size 1, got %d", cfg.BatchSize)
	}
	if cfg.Pages != 1 {
		t.Errorf("expected default pages 1, got %d", cfg.Pages)
	}
	if cfg.SettleDelay != 2*time.Second {
		t.Errorf("expected default settle delay 2s, got %s", cfg.SettleDelay)
	}
	if cfg.ConnString != "postgres://localhost:5432/jobscout" {
		t.Errorf("unexpected default connection string %q", cfg.ConnString)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobscout.yaml")
	content := `
addr: ":9000"
connection_string: "redis://localhost:6379/0"
batch_size: 3
pages: 2
settle_delay: 500ms
refresh_roles: ["desarrollador", "devops"]
refresh_interval: 12h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %q", cfg.Addr)
	}
	if cfg.ConnString != "redis://localhost:6379/0" {
		t.Errorf("unexpected connection string %q", cfg.ConnString)
	}
	if cfg.BatchSize != 3 {
		t.Errorf("expected batch size 3, got %d", cfg.BatchSize)
	}
	if cfg.SettleDelay != 500*time.Millisecond {
		t.Errorf("expected settle delay 500ms, got %s", cfg.SettleDelay)
	}
	if len(cfg.RefreshRoles) != 2 || cfg.RefreshRoles[0] != "desarrollador" {
		t.Errorf("unexpected refresh roles %v", cfg.RefreshRoles)
	}
	if cfg.RefreshInterval != 12*time.Hour {
		t.Errorf("expected refresh interval 12h, got %s", cfg.RefreshInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobscout.yaml")
	if err := os.WriteFile(path, []byte(`connection_string: "postgres://db:5432/x"`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOBSCOUT_CONNECTION_STRING", "redis://cache:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConnString != "redis://cache:6379" {
		t.Errorf("expected env override to win, got %q", cfg.ConnString)
	}
}

func TestLoadRejectsNegativeBatchSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobscout.yaml")
	if err := os.WriteFile(path, []byte(`batch_size: -1`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative batch size, got nil")
	}
}
