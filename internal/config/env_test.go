package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type envTestConfig struct {
	DBName string `env:"ATTENDLY_TEST_DB_NAME" envDefault:"attendance_db"`
	Days   int    `env:"ATTENDLY_TEST_DAYS" envDefault:"30"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBName != "attendance_db" || cfg.Days != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ATTENDLY_TEST_DAYS", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("ATTENDLY_TEST_DB_NAME=school\nATTENDLY_TEST_DAYS=7\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ATTENDLY_TEST_DB_NAME", "")
	os.Unsetenv("ATTENDLY_TEST_DB_NAME")
	t.Setenv("ATTENDLY_TEST_DAYS", "14")

	loaded, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if !loaded {
		t.Fatal("expected env file to be loaded")
	}

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBName != "school" {
		t.Fatalf("expected value from env file, got %q", cfg.DBName)
	}
	if cfg.Days != 14 {
		t.Fatalf("expected existing variable to win, got %d", cfg.Days)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if loaded {
		t.Fatal("expected nothing loaded")
	}
}
