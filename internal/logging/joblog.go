package logging

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// JobLogEntry is one line of the job log.
type JobLogEntry struct {
	JobID     int
	User      string
	Printer   string
	Title     string
	Copies    int
	Documents int
	Bytes     int64
	// Result is "ok" for a printed job, otherwise the failure.
	Result string
	Time   time.Time
}

// JobLogLine formats e as
// "printer user job-id [time] title copies documents size result".
func JobLogLine(e JobLogEntry) string {
	if e.Copies <= 0 {
		e.Copies = 1
	}
	if strings.TrimSpace(e.Result) == "" {
		e.Result = "ok"
	}
	if strings.TrimSpace(e.User) == "" {
		e.User = "-"
	}
	if strings.TrimSpace(e.Printer) == "" {
		e.Printer = "-"
	}
	if strings.TrimSpace(e.Title) == "" {
		e.Title = "Untitled"
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	var size uint64
	if e.Bytes > 0 {
		size = uint64(e.Bytes)
	}
	return strings.Join([]string{
		e.Printer,
		e.User,
		strconv.Itoa(e.JobID),
		"[" + e.Time.Format(timeLayout) + "]",
		strconv.Quote(e.Title),
		strconv.Itoa(e.Copies),
		strconv.Itoa(e.Documents),
		strings.ReplaceAll(humanize.Bytes(size), " ", ""),
		e.Result,
	}, " ")
}
