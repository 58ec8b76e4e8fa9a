package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	f := Flags()
	if err := f.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8484" {
		t.Errorf("Listen = %s", cfg.Listen)
	}
	if cfg.Owner != "default" {
		t.Errorf("Owner = %s", cfg.Owner)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s", cfg.Log.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recalld.yaml")
	content := `
listen: ":9000"
owner: alice
timezone: Europe/Dublin
sources:
  - /decks/go
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := Flags()
	if err := f.Parse([]string{"--config", path}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.Owner != "alice" || cfg.Log.Level != "debug" {
		t.Errorf("config = %+v", cfg)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "/decks/go" {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Dublin" {
		t.Errorf("Location = %s", loc)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recalld.yaml")
	if err := os.WriteFile(path, []byte("listen: \":9000\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := Flags()
	if err := f.Parse([]string{"--config", path, "--listen", ":7000"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7000" {
		t.Errorf("Listen = %s, want flag to win", cfg.Listen)
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	f := Flags()
	if err := f.Parse([]string{"--log.level", "loud"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Load(f); err == nil {
		t.Error("Load accepted an invalid log level")
	}
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	f := Flags()
	if err := f.Parse([]string{"--config", "/nonexistent/recalld.yaml"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Load(f); err == nil {
		t.Error("Load accepted a missing explicit config file")
	}
}
