package native

import (
	"context"
	"net/http"
	"strings"

	goipp "github.com/OpenPrinting/goipp"
)

// FormatAuto lets the spooler detect the document format.
const FormatAuto = "application/octet-stream"

// Option is one name/value pair of an option array.
type Option struct {
	Name  string
	Value string
}

// Dest is the native destination record. Arrays of Dest are allocated by
// GetDests and GetNamedDest.
type Dest struct {
	Name      string
	Instance  string
	IsDefault bool
	Options   []Option
}

// Option returns the value of the named option.
func (d *Dest) Option(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, o := range d.Options {
		if strings.EqualFold(o.Name, name) {
			return o.Value, true
		}
	}
	return "", false
}

// Spooler is the native spooler API. Names follow the libcups calls they
// stand in for. Allocations returned by the Get/Copy/Add calls must be
// released with the matching Free call on the same Spooler.
type Spooler interface {
	Heap() *Heap

	// GetDests allocates an array of every destination. On failure it
	// returns Null and zero.
	GetDests(ctx context.Context) (Ptr, int)
	FreeDests(n int, dests Ptr)
	// GetNamedDest allocates a one element destination array. An empty
	// name selects the default destination. Null means no match.
	GetNamedDest(ctx context.Context, name, instance string) Ptr

	CopyDestInfo(ctx context.Context, dest *Dest) Ptr
	FreeDestInfo(info Ptr)
	CheckDestSupported(ctx context.Context, dest *Dest, info Ptr, option, value string) bool

	// AddOption sets name to value in the array at *opts, allocating it
	// when *opts is Null, and returns the new element count.
	AddOption(name, value string, n int, opts *Ptr) int
	FreeOptions(n int, opts Ptr)

	CreateDestJob(ctx context.Context, dest *Dest, info Ptr, title string, n int, opts Ptr) (int, goipp.Status)
	// StartDestDocument returns http.StatusContinue when the document is
	// ready to receive data.
	StartDestDocument(ctx context.Context, dest *Dest, info Ptr, jobID int, docname, format string, n int, opts Ptr, last bool) int
	WriteRequestData(buf []byte) int
	FinishDestDocument(ctx context.Context, dest *Dest, info Ptr) goipp.Status
	CloseDestJob(ctx context.Context, dest *Dest, info Ptr, jobID int) goipp.Status
	CancelDestJob(ctx context.Context, dest *Dest, jobID int) goipp.Status

	// LastErrorString describes the most recent failed call, or is empty.
	LastErrorString() string
}

// StatusOK reports whether an IPP status is a success.
func StatusOK(status goipp.Status) bool {
	return status < goipp.StatusRedirectionOtherSite
}

// HTTPContinue reports whether an HTTP status lets the upload proceed.
func HTTPContinue(status int) bool {
	return status == http.StatusContinue
}

// SetOption returns opts with name set to value. Names match without
// regard to case; an existing option is replaced in place.
func SetOption(opts []Option, name, value string) []Option {
	for i := range opts {
		if strings.EqualFold(opts[i].Name, name) {
			opts[i].Value = value
			return opts
		}
	}
	grown := make([]Option, len(opts), len(opts)+1)
	copy(grown, opts)
	return append(grown, Option{Name: name, Value: value})
}

// AddOption implements Spooler.AddOption over h.
func AddOption(h *Heap, name, value string, n int, opts *Ptr) int {
	if opts == nil || name == "" {
		return n
	}
	var arr []Option
	if !opts.IsNull() {
		arr = Span[Option]{Ptr: *opts, N: n}.Slice(h)
	}
	arr = SetOption(arr, name, value)
	if opts.IsNull() || !h.Store(*opts, arr) {
		*opts = h.Alloc(arr)
	}
	return len(arr)
}

// FreeArray implements the FreeDests and FreeOptions calls over h. Releasing
// Null or a zero count array is a no-op.
func FreeArray(h *Heap, n int, p Ptr) error {
	if p.IsNull() || n <= 0 {
		return nil
	}
	return h.Free(p)
}
