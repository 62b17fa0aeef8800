package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RotatingFile appends log lines to a file. When a write would take the file
// past maxSize, the file is moved to "<path>.O" and a new one is started.
type RotatingFile struct {
	path    string
	maxSize int64
	mode    targetMode

	mu   sync.Mutex
	f    *os.File
	size int64
}

type targetMode int

const (
	targetFile targetMode = iota
	targetStderr
	targetStdout
	targetDiscard
)

func NewRotatingFile(path string, maxSize int64) *RotatingFile {
	path = strings.TrimSpace(path)
	r := &RotatingFile{path: expandHome(path), maxSize: maxSize}
	switch strings.ToLower(path) {
	case "", "none", "off":
		r.mode = targetDiscard
	case "stderr", "-":
		r.mode = targetStderr
	case "stdout":
		r.mode = targetStdout
	default:
		r.mode = targetFile
	}
	return r
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}

func (r *RotatingFile) Enabled() bool {
	return r != nil && r.mode != targetDiscard
}

// Path is the file written to, or empty for the standard streams.
func (r *RotatingFile) Path() string {
	if r == nil || r.mode != targetFile {
		return ""
	}
	return r.path
}

func (r *RotatingFile) WriteLine(line string) error {
	if r == nil {
		return nil
	}
	_, err := r.Write([]byte(line + "\n"))
	return err
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	if r == nil {
		return len(p), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case targetDiscard:
		return len(p), nil
	case targetStderr:
		return os.Stderr.Write(p)
	case targetStdout:
		return os.Stdout.Write(p)
	}
	if err := r.rotateIfNeeded(int64(len(p))); err != nil {
		return 0, err
	}
	if err := r.open(); err != nil {
		return 0, err
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *RotatingFile) open() error {
	if r.f != nil {
		return nil
	}
	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.f, r.size = f, info.Size()
	return nil
}

func (r *RotatingFile) rotateIfNeeded(next int64) error {
	if r.maxSize <= 0 {
		return nil
	}
	if err := r.open(); err != nil {
		return err
	}
	if r.size == 0 || r.size+next <= r.maxSize {
		return nil
	}
	r.f.Close()
	r.f = nil
	oldPath := r.path + ".O"
	_ = os.Remove(oldPath)
	if err := os.Rename(r.path, oldPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close closes the underlying file. A later write reopens it.
func (r *RotatingFile) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

var _ io.Writer = (*RotatingFile)(nil)
