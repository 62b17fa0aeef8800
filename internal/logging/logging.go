// Package logging routes paperjet's error, access and job logs to
// size-rotated files.
package logging

import (
	"errors"
	"io"
	"log"
	"os"
	"sync/atomic"

	"paperjet/internal/config"
)

// Logs are the log targets of one process. A nil target discards.
type Logs struct {
	Error  *RotatingFile
	Access *RotatingFile
	Job    *RotatingFile
}

var current atomic.Pointer[Logs]

// Open creates the targets named by cfg. Files are created on the first
// write.
func Open(cfg config.Config) *Logs {
	return &Logs{
		Error:  NewRotatingFile(cfg.ErrorLogPath, cfg.MaxLogSize),
		Access: NewRotatingFile(cfg.AccessLogPath, cfg.MaxLogSize),
		Job:    NewRotatingFile(cfg.JobLogPath, cfg.MaxLogSize),
	}
}

// Setup installs the logs of cfg and sends the standard logger to the
// error log. The returned func closes the files.
func Setup(cfg config.Config) func() {
	l := Open(cfg)
	Install(l)
	log.SetOutput(l.ErrorWriter())
	return func() { _ = l.Close() }
}

// Install makes l the target of Access and WriteJob and returns the logs
// it replaced, so tests can put them back.
func Install(l *Logs) *Logs {
	return current.Swap(l)
}

// ErrorWriter is the error log, or stderr when it is disabled.
func (l *Logs) ErrorWriter() io.Writer {
	if l != nil && l.Error.Enabled() {
		return l.Error
	}
	return os.Stderr
}

func (l *Logs) Close() error {
	if l == nil {
		return nil
	}
	return errors.Join(l.Error.Close(), l.Access.Close(), l.Job.Close())
}

// Access appends one line to the access log.
func Access(line string) {
	if l := current.Load(); l != nil {
		_ = l.Access.WriteLine(line)
	}
}

// WriteJob appends e to the job log.
func WriteJob(e JobLogEntry) {
	if l := current.Load(); l != nil && l.Job.Enabled() {
		_ = l.Job.WriteLine(JobLogLine(e))
	}
}
