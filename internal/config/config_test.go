package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GQ_DB_PATH", "")
	t.Setenv("GQ_TIMEZONE", "")
	os.Unsetenv("GQ_TIMEZONE")
	os.Unsetenv("GQ_HTTP_ADDR")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:8321" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if cfg.Location() != time.Local {
		t.Fatalf("expected local timezone")
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("GQ_HTTP_ADDR", "")
	os.Unsetenv("GQ_HTTP_ADDR")
	t.Setenv("GQ_VERBOSE", "")
	os.Unsetenv("GQ_VERBOSE")

	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte("GQ_HTTP_ADDR=:9999\nGQ_VERBOSE=true\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GQ_HTTP_ADDR")
		os.Unsetenv("GQ_VERBOSE")
	})

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" || !cfg.Verbose {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GQ_DB_PATH", "~/quests.db")

	cfg, err := Load(filepath.Join(home, "none.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != filepath.Join(home, "quests.db") {
		t.Fatalf("DBPath=%q", cfg.DBPath)
	}
}

func TestLocationFallsBack(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.Local {
		t.Fatalf("expected fallback to local")
	}
	cfg.Timezone = "UTC"
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC")
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("GQ_VERBOSE", "not-a-bool")

	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
