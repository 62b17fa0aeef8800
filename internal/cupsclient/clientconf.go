package cupsclient

import (
	"bufio"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Settings locate the scheduler and the CUPS client files of this host.
//
// The scheduler is taken from the first of: paperjet's own Server setting
// (WithServer), CUPS_SERVER, ServerName in the user client.conf, ServerName
// in the system client.conf, localhost.
type Settings struct {
	Host string
	Port int
	TLS  bool
	User string
	// VerifyCerts is cleared by "ValidateCerts No" or CUPS_VALIDATECERTS.
	VerifyCerts bool

	// ConfDir and UserConfDir hold client.conf and lpoptions.
	ConfDir     string
	UserConfDir string
}

// LoadSettings reads client.conf and the CUPS_* environment. A non-empty
// server replaces whatever they name.
func LoadSettings(server string) Settings {
	s := Settings{VerifyCerts: true, ConfDir: systemConfDir(), UserConfDir: userConfDir()}
	var serverName, encryption, user string
	confFiles := []string{filepath.Join(s.ConfDir, "client.conf")}
	if override := strings.TrimSpace(os.Getenv("CUPS_CLIENT_CONF")); override != "" {
		confFiles = []string{override}
	} else if s.UserConfDir != "" {
		confFiles = append(confFiles, filepath.Join(s.UserConfDir, "client.conf"))
	}
	for _, path := range confFiles {
		readClientConf(path, func(key, value string) {
			switch strings.ToLower(key) {
			case "servername":
				serverName = value
			case "encryption":
				encryption = value
			case "user":
				user = value
			case "validatecerts":
				if v, ok := parseBool(value); ok {
					s.VerifyCerts = v
				}
			}
		})
	}
	if v, ok := parseBool(os.Getenv("CUPS_VALIDATECERTS")); ok {
		s.VerifyCerts = v
	}

	s.User = firstNonEmpty(os.Getenv("CUPS_USER"), user, os.Getenv("USER"), os.Getenv("USERNAME"), "unknown")
	s.setServer(firstNonEmpty(server, os.Getenv("CUPS_SERVER"), serverName))
	switch strings.ToLower(firstNonEmpty(os.Getenv("CUPS_ENCRYPTION"), encryption)) {
	case "never":
		s.TLS = false
	case "required", "always":
		s.TLS = true
	}
	return s
}

// setServer points s at server, a host, host:port or ipp(s)/http(s) URL.
// Parts the value leaves out fall back to localhost and IPP_PORT.
func (s *Settings) setServer(server string) {
	host, port, useTLS := parseServer(server)
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = ippPort()
	}
	s.Host, s.Port, s.TLS = host, port, useTLS
}

// LpOptionsPaths returns the system lpoptions file, then the user's. Later
// files override earlier ones.
func (s Settings) LpOptionsPaths() []string {
	paths := []string{filepath.Join(s.ConfDir, "lpoptions")}
	if s.UserConfDir != "" && s.UserConfDir != s.ConfDir {
		paths = append(paths, filepath.Join(s.UserConfDir, "lpoptions"))
	}
	return paths
}

// readClientConf calls set for every "Key Value" line of path. A missing
// file is skipped.
func readClientConf(path string, set func(key, value string)) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key := strings.Fields(line)[0]
		if value := strings.TrimSpace(line[len(key):]); value != "" {
			set(key, value)
		}
	}
}

func parseServer(value string) (host string, port int, useTLS bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", 0, false
	}
	if strings.Contains(value, "://") {
		u, err := url.Parse(value)
		if err != nil {
			return "", 0, false
		}
		useTLS = u.Scheme == "https" || u.Scheme == "ipps"
		value = u.Host
	}
	if h, p, err := net.SplitHostPort(value); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return h, n, useTLS
		}
	}
	return strings.Trim(value, "[]"), 0, useTLS
}

func ippPort() int {
	if n, err := strconv.Atoi(os.Getenv("IPP_PORT")); err == nil && n > 0 {
		return n
	}
	return 631
}

func systemConfDir() string {
	if v := os.Getenv("CUPS_SERVERROOT"); v != "" {
		return v
	}
	return "/etc/cups"
}

func userConfDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cups")
	}
	return ""
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "yes", "on", "true":
		return true, true
	case "0", "no", "off", "false":
		return false, true
	}
	return false, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
