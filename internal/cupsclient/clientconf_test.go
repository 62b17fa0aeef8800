package cupsclient

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func isolateSettings(t *testing.T) (system, home string) {
	t.Helper()
	dir := t.TempDir()
	system = filepath.Join(dir, "etc")
	home = filepath.Join(dir, "home")
	for _, d := range []string{system, filepath.Join(home, ".cups")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	t.Setenv("CUPS_SERVERROOT", system)
	t.Setenv("HOME", home)
	for _, env := range []string{"CUPS_SERVER", "CUPS_CLIENT_CONF", "CUPS_USER", "CUPS_ENCRYPTION", "CUPS_VALIDATECERTS", "IPP_PORT"} {
		t.Setenv(env, "")
	}
	return system, home
}

func writeConf(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadSettingsServerPrecedence(t *testing.T) {
	system, home := isolateSettings(t)
	writeConf(t, filepath.Join(system, "client.conf"), "# site\nServerName sys.example\nValidateCerts No\n")
	writeConf(t, filepath.Join(home, ".cups", "client.conf"), "ServerName\tuser.example:8631\nUser bob\n")

	s := LoadSettings("")
	if s.Host != "user.example" || s.Port != 8631 || s.User != "bob" || s.VerifyCerts {
		t.Fatalf("client.conf settings = %+v", s)
	}

	t.Setenv("CUPS_SERVER", "env.example")
	if s := LoadSettings(""); s.Host != "env.example" || s.Port != 631 {
		t.Fatalf("CUPS_SERVER ignored: %+v", s)
	}

	s = LoadSettings("ipps://cfg.example")
	if s.Host != "cfg.example" || s.Port != 631 || !s.TLS {
		t.Fatalf("explicit server ignored: %+v", s)
	}

	t.Setenv("CUPS_ENCRYPTION", "Never")
	if s := LoadSettings("ipps://cfg.example"); s.TLS {
		t.Fatal("Encryption Never should disable TLS")
	}
}

func TestLoadSettingsClientConfOverride(t *testing.T) {
	_, home := isolateSettings(t)
	writeConf(t, filepath.Join(home, ".cups", "client.conf"), "ServerName ignored.example\n")
	override := filepath.Join(t.TempDir(), "paperjet-client.conf")
	writeConf(t, override, "ServerName [::1]:8631\n")
	t.Setenv("CUPS_CLIENT_CONF", override)
	t.Setenv("IPP_PORT", "9100")

	s := LoadSettings("")
	if s.Host != "::1" || s.Port != 8631 {
		t.Fatalf("settings = %+v", s)
	}
	if s := LoadSettings("printhost"); s.Host != "printhost" || s.Port != 9100 {
		t.Fatalf("IPP_PORT not applied: %+v", s)
	}
}

func TestLpOptionsPaths(t *testing.T) {
	system, home := isolateSettings(t)
	got := LoadSettings("").LpOptionsPaths()
	want := []string{filepath.Join(system, "lpoptions"), filepath.Join(home, ".cups", "lpoptions")}
	if !slices.Equal(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
}

func TestNewFromConfigOptionsWin(t *testing.T) {
	system, _ := isolateSettings(t)
	writeConf(t, filepath.Join(system, "client.conf"), "ServerName sys.example\nUser bob\n")

	c := NewFromConfig(WithServer("box.example:8000"), WithUser("tester"), WithTLS(true))
	if c.Host != "box.example" || c.Port != 8000 || c.User != "tester" || !c.TLS {
		t.Fatalf("client = %+v", c.Settings)
	}
	if got := c.Server(); got != "box.example:8000" {
		t.Fatalf("Server() = %q", got)
	}
}
