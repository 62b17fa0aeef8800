// Package nativetest provides an in-memory native.Spooler for tests.
package nativetest

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"

	goipp "github.com/OpenPrinting/goipp"
	"github.com/google/uuid"

	"paperjet/internal/native"
)

// Printer is one destination known to the fake spooler.
type Printer struct {
	Name     string
	Instance string
	Default  bool
	Options  []native.Option
	// Supported lists accepted values per option name. A nil map accepts
	// everything; otherwise options missing from the map are rejected.
	Supported map[string][]string
}

// NewPrinter returns a printer with a unique name.
func NewPrinter() Printer {
	id := uuid.NewString()
	return Printer{
		Name:    "fake-" + id[:8],
		Options: []native.Option{{Name: "printer-info", Value: "Fake " + id[:8]}},
	}
}

// Document is one uploaded document.
type Document struct {
	Name    string
	Format  string
	Options []native.Option
	Data    []byte
	Last    bool
}

// Job is one job created on the fake spooler.
type Job struct {
	ID        int
	Printer   string
	Title     string
	Options   []native.Option
	Documents []Document
	Closed    bool
	Cancelled bool
}

// Calls counts native calls by kind.
type Calls struct {
	GetDests     int
	GetNamedDest int
	FreeDests    int
	CopyDestInfo int
	FreeDestInfo int
	Check        int
	CreateJob    int
	Start        int
	Write        int
	Finish       int
	Close        int
	Cancel       int
}

// Fake is a native.Spooler backed by memory. Failure switches make the
// matching call fail with ErrorMessage as the last error string.
type Fake struct {
	Printers    []Printer
	Unreachable bool
	FailCreate  bool
	FailStart   bool
	FailFinish  bool
	FailClose   bool
	FailCancel  bool
	// FailWriteAt fails the n-th WriteRequestData call of the fake's
	// lifetime. Zero disables it.
	FailWriteAt  int
	ErrorMessage string

	mu      sync.Mutex
	heap    *native.Heap
	calls   Calls
	jobs    []*Job
	upload  *Document
	uploadJ *Job
	lastErr string
}

type fakeInfo struct {
	printer string
}

var _ native.Spooler = (*Fake)(nil)

func New(printers ...Printer) *Fake {
	return &Fake{Printers: printers, heap: native.NewHeap()}
}

func (f *Fake) Heap() *native.Heap {
	return f.heap
}

// Calls returns a copy of the call counters.
func (f *Fake) Calls() Calls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Jobs returns every job created so far.
func (f *Fake) Jobs() []*Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Job(nil), f.jobs...)
}

func (f *Fake) fail(what string) {
	msg := f.ErrorMessage
	if msg == "" {
		msg = what + " failed"
	}
	f.lastErr = msg
}

func (f *Fake) find(name, instance string) (Printer, bool) {
	for _, p := range f.Printers {
		if p.Name == name && p.Instance == instance {
			return p, true
		}
	}
	return Printer{}, false
}

func toDest(p Printer) native.Dest {
	return native.Dest{
		Name:      p.Name,
		Instance:  p.Instance,
		IsDefault: p.Default,
		Options:   append([]native.Option(nil), p.Options...),
	}
}

func (f *Fake) GetDests(ctx context.Context) (native.Ptr, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.GetDests++
	if f.Unreachable {
		f.fail("get dests")
		return native.Null, 0
	}
	if len(f.Printers) == 0 {
		return native.Null, 0
	}
	dests := make([]native.Dest, 0, len(f.Printers))
	for _, p := range f.Printers {
		dests = append(dests, toDest(p))
	}
	return f.heap.Alloc(dests), len(dests)
}

func (f *Fake) FreeDests(n int, dests native.Ptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.FreeDests++
	if err := native.FreeArray(f.heap, n, dests); err != nil {
		panic("nativetest: " + err.Error())
	}
}

func (f *Fake) GetNamedDest(ctx context.Context, name, instance string) native.Ptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.GetNamedDest++
	if f.Unreachable {
		f.fail("get named dest")
		return native.Null
	}
	for _, p := range f.Printers {
		if name == "" && p.Default || name != "" && p.Name == name && p.Instance == instance {
			return f.heap.Alloc([]native.Dest{toDest(p)})
		}
	}
	f.fail("get named dest")
	return native.Null
}

func (f *Fake) CopyDestInfo(ctx context.Context, dest *native.Dest) native.Ptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.CopyDestInfo++
	if f.Unreachable || dest == nil {
		f.fail("copy dest info")
		return native.Null
	}
	if _, ok := f.find(dest.Name, dest.Instance); !ok {
		f.fail("copy dest info")
		return native.Null
	}
	return f.heap.Alloc(&fakeInfo{printer: dest.Name})
}

func (f *Fake) FreeDestInfo(info native.Ptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.FreeDestInfo++
	if err := f.heap.Free(info); err != nil {
		panic("nativetest: " + err.Error())
	}
}

func (f *Fake) CheckDestSupported(ctx context.Context, dest *native.Dest, info native.Ptr, option, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Check++
	if _, ok := native.LoadAs[*fakeInfo](f.heap, info); !ok || dest == nil {
		return false
	}
	p, ok := f.find(dest.Name, dest.Instance)
	if !ok {
		return false
	}
	if p.Supported == nil {
		return true
	}
	accepted, ok := p.Supported[option]
	if !ok {
		return false
	}
	for _, v := range strings.Split(value, ",") {
		if !contains(accepted, v) {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v || s == "*" {
			return true
		}
	}
	return false
}

func (f *Fake) AddOption(name, value string, n int, opts *native.Ptr) int {
	return native.AddOption(f.heap, name, value, n, opts)
}

func (f *Fake) FreeOptions(n int, opts native.Ptr) {
	if err := native.FreeArray(f.heap, n, opts); err != nil {
		panic("nativetest: " + err.Error())
	}
}

func (f *Fake) options(n int, opts native.Ptr) []native.Option {
	return append([]native.Option(nil), native.Span[native.Option]{Ptr: opts, N: n}.Slice(f.heap)...)
}

func (f *Fake) CreateDestJob(ctx context.Context, dest *native.Dest, info native.Ptr, title string, n int, opts native.Ptr) (int, goipp.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.CreateJob++
	if f.FailCreate || dest == nil {
		f.fail("create job")
		return 0, goipp.StatusErrorInternal
	}
	job := &Job{
		ID:      len(f.jobs) + 1,
		Printer: dest.Name,
		Title:   title,
		Options: f.options(n, opts),
	}
	f.jobs = append(f.jobs, job)
	return job.ID, goipp.StatusOk
}

func (f *Fake) job(id int) *Job {
	for _, j := range f.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (f *Fake) StartDestDocument(ctx context.Context, dest *native.Dest, info native.Ptr, jobID int, docname, format string, n int, opts native.Ptr, last bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Start++
	job := f.job(jobID)
	if f.FailStart || job == nil {
		f.fail("start document")
		return http.StatusInternalServerError
	}
	f.upload = &Document{Name: docname, Format: format, Options: f.options(n, opts), Last: last}
	f.uploadJ = job
	return http.StatusContinue
}

func (f *Fake) WriteRequestData(buf []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Write++
	if f.upload == nil || f.FailWriteAt > 0 && f.calls.Write == f.FailWriteAt {
		f.fail("write request data")
		return http.StatusInternalServerError
	}
	f.upload.Data = append(f.upload.Data, bytes.Clone(buf)...)
	return http.StatusContinue
}

func (f *Fake) FinishDestDocument(ctx context.Context, dest *native.Dest, info native.Ptr) goipp.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Finish++
	if f.FailFinish || f.upload == nil {
		f.fail("finish document")
		f.upload, f.uploadJ = nil, nil
		return goipp.StatusErrorInternal
	}
	f.uploadJ.Documents = append(f.uploadJ.Documents, *f.upload)
	f.upload, f.uploadJ = nil, nil
	return goipp.StatusOk
}

func (f *Fake) CloseDestJob(ctx context.Context, dest *native.Dest, info native.Ptr, jobID int) goipp.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Close++
	job := f.job(jobID)
	if f.FailClose || job == nil {
		f.fail("close job")
		return goipp.StatusErrorInternal
	}
	job.Closed = true
	return goipp.StatusOk
}

func (f *Fake) CancelDestJob(ctx context.Context, dest *native.Dest, jobID int) goipp.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Cancel++
	job := f.job(jobID)
	if f.FailCancel || job == nil {
		f.fail("cancel job")
		return goipp.StatusErrorNotFound
	}
	job.Cancelled = true
	return goipp.StatusOk
}

func (f *Fake) LastErrorString() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
