package cups

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"paperjet/internal/native"
	"paperjet/internal/printerr"
)

// ChunkSize is the size of each write of document data to the spooler.
const ChunkSize = 64 * 1024

// cancelTimeout bounds the best-effort cancel issued by Close.
const cancelTimeout = 30 * time.Second

type JobState int

const (
	JobCreated JobState = iota
	JobUploading
	JobClosed
	JobCancelled
)

func (s JobState) String() string {
	switch s {
	case JobCreated:
		return "created"
	case JobUploading:
		return "uploading"
	case JobClosed:
		return "closed"
	case JobCancelled:
		return "cancelled"
	}
	return "unknown"
}

var ErrJobFinished = errors.New("job is already closed, cancelled or released")

// Job is a print job on the spooler. Call Close with defer right after
// CreateJob: unless Print succeeded first, Close cancels the job.
type Job struct {
	api   native.Spooler
	id    int
	title string
	dest  *Destination
	info  *DestinationInfo
	opts  *Options

	docs     int
	sent     int64
	state    JobState
	released bool
}

// CreateJob creates a job on d. On success the job owns d, info and opts and
// releases them in Close. On failure the caller still owns them.
func CreateJob(ctx context.Context, title string, d *Destination, info *DestinationInfo, opts *Options) (*Job, error) {
	if _, err := native.CString(title); err != nil {
		return nil, printerr.StringConversion(err)
	}
	if opts == nil {
		opts = NewOptions(d.api)
	}
	id, status := d.api.CreateDestJob(ctx, d.native(), info.handle(), title, opts.opts.N, opts.opts.Ptr)
	if !native.StatusOK(status) {
		return nil, printerr.Backend(d.api.LastErrorString())
	}
	d.acquire()
	return &Job{api: d.api, id: id, title: title, dest: d, info: info, opts: opts}, nil
}

func (j *Job) ID() int          { return j.id }
func (j *Job) Title() string    { return j.title }
func (j *Job) State() JobState  { return j.state }
func (j *Job) Documents() int   { return j.docs }
func (j *Job) BytesSent() int64 { return j.sent }

// Options returns the options the job was created with.
func (j *Job) Options() []native.Option { return j.opts.All() }

// Destination returns the destination the job prints on.
func (j *Job) Destination() *Destination { return j.dest }

func (j *Job) finished() bool {
	return j.released || j.state == JobClosed || j.state == JobCancelled
}

func (j *Job) lastError() error {
	return printerr.Backend(j.api.LastErrorString())
}

// AddDocuments adds each reader as a document, in order.
func (j *Job) AddDocuments(ctx context.Context, readers ...io.Reader) error {
	for _, r := range readers {
		if err := j.AddDocument(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// AddDocument uploads the contents of r as the next document of the job,
// named "<title>-<n>".
func (j *Job) AddDocument(ctx context.Context, r io.Reader) error {
	if j.finished() {
		return ErrJobFinished
	}
	j.state = JobUploading
	dest := j.dest.native()
	name := fmt.Sprintf("%s-%d", j.title, j.docs+1)
	status := j.api.StartDestDocument(ctx, dest, j.info.handle(), j.id, name, native.FormatAuto, j.opts.opts.N, j.opts.opts.Ptr, false)
	if !native.HTTPContinue(status) {
		return j.lastError()
	}
	if err := j.upload(r); err != nil {
		return err
	}
	if !native.StatusOK(j.api.FinishDestDocument(ctx, dest, j.info.handle())) {
		return j.lastError()
	}
	j.docs++
	return nil
}

// upload streams r in ChunkSize writes. A chunk is consumed from the reader
// only once the spooler accepted it.
func (j *Job) upload(r io.Reader) error {
	br := bufio.NewReaderSize(r, ChunkSize)
	for {
		buf, err := br.Peek(ChunkSize)
		if len(buf) > 0 {
			if !native.HTTPContinue(j.api.WriteRequestData(buf)) {
				return j.lastError()
			}
			j.sent += int64(len(buf))
			if _, derr := br.Discard(len(buf)); derr != nil {
				return printerr.FileRead(derr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return printerr.FileRead(err)
		}
	}
}

// Print closes the job so the spooler starts printing. After a successful
// Print, Close no longer cancels. A failed Print leaves the job to be
// cancelled by Close.
func (j *Job) Print(ctx context.Context) error {
	if j.finished() {
		return ErrJobFinished
	}
	if !native.StatusOK(j.api.CloseDestJob(ctx, j.dest.native(), j.info.handle(), j.id)) {
		return j.lastError()
	}
	j.state = JobClosed
	return nil
}

// Close cancels the job unless it was printed, then frees the job's
// options, destination info and destination. A failed cancel is logged and
// never returned. Only the first call has any effect.
func (j *Job) Close() error {
	if j == nil || j.released {
		return nil
	}
	j.released = true
	if j.state != JobClosed && j.state != JobCancelled {
		ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
		status := j.api.CancelDestJob(ctx, j.dest.native(), j.id)
		cancel()
		if native.StatusOK(status) {
			j.state = JobCancelled
		} else {
			log.Printf("could not cancel job %d: %s", j.id, j.api.LastErrorString())
		}
	}
	j.opts.Close()
	j.info.Close()
	j.dest.release()
	j.dest.Close()
	return nil
}
