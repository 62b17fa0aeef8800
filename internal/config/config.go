// Package config loads paperjet settings from paperjet.conf and PAPERJET_*
// environment variables. The environment wins over the file.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ConfDir  string
	CacheDir string

	ErrorLogPath  string
	AccessLogPath string
	JobLogPath    string
	MaxLogSize    int64

	SnapshotPath string
	SnapshotTTL  time.Duration

	// Server overrides the scheduler from client.conf and CUPS_SERVER.
	Server  string
	Timeout time.Duration

	JobTitle string
	// Color is auto, always or never.
	Color string
}

const (
	DefaultJobTitle    = "paperjet"
	DefaultSnapshotTTL = 120 * time.Second
)

func Load() Config {
	confDir := getenv("PAPERJET_CONF_DIR", defaultDir(os.UserConfigDir))
	cacheDir := getenv("PAPERJET_CACHE_DIR", defaultDir(os.UserCacheDir))

	cfg := Config{
		ConfDir:       confDir,
		CacheDir:      cacheDir,
		ErrorLogPath:  "stderr",
		AccessLogPath: "none",
		JobLogPath:    filepath.Join(cacheDir, "job_log"),
		MaxLogSize:    1024 * 1024,
		SnapshotPath:  filepath.Join(cacheDir, "printers.db"),
		SnapshotTTL:   DefaultSnapshotTTL,
		Timeout:       60 * time.Second,
		JobTitle:      DefaultJobTitle,
		Color:         "auto",
	}
	parseConf(filepath.Join(confDir, "paperjet.conf"), &cfg)
	applyEnvOverrides(&cfg)
	return cfg
}

func defaultDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil || dir == "" {
		return filepath.Join(os.TempDir(), "paperjet")
	}
	return filepath.Join(dir, "paperjet")
}

// parseConf reads "Key Value" lines. Unknown keys and bad values are
// skipped.
func parseConf(path string, cfg *Config) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		key := parts[0]
		value := strings.TrimSpace(line[len(key):])
		setValue(cfg, key, value, filepath.Dir(path))
	}
}

func setValue(cfg *Config, key, value, root string) {
	switch strings.ToLower(key) {
	case "errorlog":
		cfg.ErrorLogPath = resolvePath(root, value)
	case "accesslog":
		cfg.AccessLogPath = resolvePath(root, value)
	case "joblog":
		cfg.JobLogPath = resolvePath(root, value)
	case "maxlogsize":
		if n, ok := parseSize(value); ok {
			cfg.MaxLogSize = n
		}
	case "snapshotpath":
		cfg.SnapshotPath = resolvePath(root, value)
	case "snapshotttl":
		if n, ok := parseTimeSeconds(value); ok {
			cfg.SnapshotTTL = time.Duration(n) * time.Second
		}
	case "server":
		cfg.Server = value
	case "timeout":
		if n, ok := parseTimeSeconds(value); ok && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	case "jobtitle":
		cfg.JobTitle = strings.Trim(value, `"`)
	case "color":
		if c, ok := parseColor(value); ok {
			cfg.Color = c
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	for _, kv := range []struct{ env, key string }{
		{"PAPERJET_ERROR_LOG", "ErrorLog"},
		{"PAPERJET_ACCESS_LOG", "AccessLog"},
		{"PAPERJET_JOB_LOG", "JobLog"},
		{"PAPERJET_MAX_LOG_SIZE", "MaxLogSize"},
		{"PAPERJET_SNAPSHOT", "SnapshotPath"},
		{"PAPERJET_SNAPSHOT_TTL", "SnapshotTTL"},
		{"PAPERJET_SERVER", "Server"},
		{"PAPERJET_TIMEOUT", "Timeout"},
		{"PAPERJET_JOB_TITLE", "JobTitle"},
		{"PAPERJET_COLOR", "Color"},
	} {
		if v := strings.TrimSpace(os.Getenv(kv.env)); v != "" {
			setValue(cfg, kv.key, v, "")
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok && os.Getenv("PAPERJET_COLOR") == "" {
		cfg.Color = "never"
	}
}

func parseColor(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto":
		return "auto", true
	case "always", "on", "yes", "true":
		return "always", true
	case "never", "off", "no", "false":
		return "never", true
	}
	return "", false
}

// resolvePath leaves special log targets and absolute paths alone and
// resolves relative ones against root.
func resolvePath(root, value string) string {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	switch strings.ToLower(value) {
	case "", "none", "off", "stderr", "stdout", "-":
		return value
	}
	if root == "" || filepath.IsAbs(value) || strings.HasPrefix(value, "~/") {
		return value
	}
	return filepath.Join(root, value)
}

func parseSize(value string) (int64, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, false
	}
	mult := int64(1)
	last := v[len(v)-1]
	switch last {
	case 'k', 'K':
		mult = 1024
		v = v[:len(v)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		v = v[:len(v)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		v = v[:len(v)-1]
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	if num < 0 {
		return 0, false
	}
	return int64(num * float64(mult)), true
}

func parseTimeSeconds(value string) (int, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, false
	}
	mult := 1
	last := v[len(v)-1]
	switch last {
	case 's', 'S':
		v = v[:len(v)-1]
	case 'm', 'M':
		mult = 60
		v = v[:len(v)-1]
	case 'h', 'H':
		mult = 60 * 60
		v = v[:len(v)-1]
	case 'd', 'D':
		mult = 24 * 60 * 60
		v = v[:len(v)-1]
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
