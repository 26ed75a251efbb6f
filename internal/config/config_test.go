package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	// Ensure envs are clean to use defaults
	for _, k := range []string{"APP_ENV", "DB_PATH", "LOG_FILE", "LOG_LEVEL", "GROCERIFY_USER", "GROCERIFY_PASSWORD"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Env != "dev" || cfg.Database.Path != "Grocerify_Database.db" || cfg.Log.File != "log.txt" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnv_Validation(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for unknown APP_ENV")
	}
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("DB_PATH", "")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for empty DB_PATH")
	}
	t.Setenv("DB_PATH", "x.db")
	cfg, err := FromEnv()
	if err != nil || cfg.Env != "prod" {
		t.Fatalf("FromEnv prod: %v %+v", err, cfg)
	}
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	content := "DB_PATH=from-file.db\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_PATH", "")
	os.Unsetenv("DB_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "from-file.db" {
		t.Fatalf("DB_PATH from .env not applied: %+v", cfg)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("existing env must win over .env, got %q", cfg.Log.Level)
	}
}

func TestString_MasksPassword(t *testing.T) {
	cfg := &Config{Env: "dev", Session: SessionConfig{Username: "admin", Password: "admin123"}}
	if s := cfg.String(); strings.Contains(s, "admin123") {
		t.Fatalf("password leaked: %s", s)
	}
}
