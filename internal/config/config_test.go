package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PAPERJET_ERROR_LOG", "PAPERJET_ACCESS_LOG", "PAPERJET_JOB_LOG", "PAPERJET_MAX_LOG_SIZE",
		"PAPERJET_SNAPSHOT", "PAPERJET_SNAPSHOT_TTL", "PAPERJET_SERVER", "PAPERJET_TIMEOUT",
		"PAPERJET_JOB_TITLE", "PAPERJET_COLOR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("PAPERJET_CONF_DIR", filepath.Join(dir, "conf"))
	t.Setenv("PAPERJET_CACHE_DIR", filepath.Join(dir, "cache"))

	cfg := Load()
	if cfg.JobTitle != DefaultJobTitle {
		t.Fatalf("JobTitle = %q", cfg.JobTitle)
	}
	if cfg.SnapshotTTL != 120*time.Second {
		t.Fatalf("SnapshotTTL = %v", cfg.SnapshotTTL)
	}
	if cfg.SnapshotPath != filepath.Join(dir, "cache", "printers.db") {
		t.Fatalf("SnapshotPath = %q", cfg.SnapshotPath)
	}
	if cfg.ErrorLogPath != "stderr" || cfg.AccessLogPath != "none" {
		t.Fatalf("log targets = %q %q", cfg.ErrorLogPath, cfg.AccessLogPath)
	}
	if cfg.Color != "auto" {
		t.Fatalf("Color = %q", cfg.Color)
	}
}

func TestLoadConfFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := strings.Join([]string{
		"# paperjet settings",
		"ErrorLog logs/error_log",
		"accesslog /var/log/paperjet/access_log",
		"MaxLogSize 2m",
		"SnapshotTTL 5m",
		`JobTitle "weekly"`,
		"Color never",
		"Bogus value",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "paperjet.conf"), []byte(content), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	t.Setenv("PAPERJET_CONF_DIR", dir)
	t.Setenv("PAPERJET_CACHE_DIR", dir)
	t.Setenv("PAPERJET_JOB_TITLE", "from-env")
	t.Setenv("PAPERJET_SERVER", "print.example.com:8631")

	cfg := Load()
	if cfg.ErrorLogPath != filepath.Join(dir, "logs", "error_log") {
		t.Fatalf("ErrorLogPath = %q", cfg.ErrorLogPath)
	}
	if cfg.AccessLogPath != "/var/log/paperjet/access_log" {
		t.Fatalf("AccessLogPath = %q", cfg.AccessLogPath)
	}
	if cfg.MaxLogSize != 2*1024*1024 {
		t.Fatalf("MaxLogSize = %d", cfg.MaxLogSize)
	}
	if cfg.SnapshotTTL != 5*time.Minute {
		t.Fatalf("SnapshotTTL = %v", cfg.SnapshotTTL)
	}
	if cfg.JobTitle != "from-env" {
		t.Fatalf("JobTitle = %q", cfg.JobTitle)
	}
	if cfg.Server != "print.example.com:8631" {
		t.Fatalf("Server = %q", cfg.Server)
	}
	if cfg.Color != "never" {
		t.Fatalf("Color = %q", cfg.Color)
	}
}

func TestNoColorEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAPERJET_CONF_DIR", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	if cfg := Load(); cfg.Color != "never" {
		t.Fatalf("Color = %q with NO_COLOR set", cfg.Color)
	}
}
