package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse empty: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "kadai.db" {
		t.Errorf("Database = {%s %s}, want {sqlite kadai.db}", cfg.Database.Driver, cfg.Database.Path)
	}
	if cfg.Cache.RedisURL != "" {
		t.Errorf("Cache.RedisURL = %q, want empty (cache off)", cfg.Cache.RedisURL)
	}
	if cfg.Reconcile.Enabled {
		t.Error("Reconcile.Enabled = true, want false")
	}
	if cfg.Reconcile.Schedule != "0 3 * * *" || cfg.Reconcile.FallbackStatus != "open" {
		t.Errorf("Reconcile = {%s %s}, want {0 3 * * * open}", cfg.Reconcile.Schedule, cfg.Reconcile.FallbackStatus)
	}
}

func TestParse_Full(t *testing.T) {
	raw := `
server:
  port: 9000
database:
  driver: mysql
  host: db.internal
  password: secret
cache:
  redis_url: redis://localhost:6379/0
reconcile:
  enabled: true
  schedule: "*/15 * * * *"
  fallback_status: open
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 3306 {
		t.Errorf("Database = {%s %d}, want {db.internal 3306}", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Name != "kadai" || cfg.Database.User != "root" {
		t.Errorf("mysql defaults = {%s %s}, want {kadai root}", cfg.Database.Name, cfg.Database.User)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if !cfg.Reconcile.Enabled || cfg.Reconcile.Schedule != "*/15 * * * *" {
		t.Errorf("Reconcile = %+v", cfg.Reconcile)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad yaml", "server: [not a map"},
		{"unknown driver", "database:\n  driver: postgres\n"},
		{"port out of range", "server:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kadai.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8888\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 || cfg.Database.Driver != "sqlite" {
		t.Errorf("Default = %+v", cfg)
	}
}
