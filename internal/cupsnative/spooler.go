// Package cupsnative implements native.Spooler against a CUPS scheduler
// over IPP.
package cupsnative

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	goipp "github.com/OpenPrinting/goipp"

	"paperjet/internal/cupsclient"
	"paperjet/internal/native"
)

var errNoUpload = errors.New("no document is being sent")

// destInfo is the allocation behind CopyDestInfo.
type destInfo struct {
	name  string
	attrs goipp.Attributes
}

// Spooler talks to one scheduler. Allocations live in its own heap.
type Spooler struct {
	client *cupsclient.Client
	heap   *native.Heap
	// lpoptions paths, read on every destination query.
	paths []string

	mu      sync.Mutex
	lastErr string
	upload  *cupsclient.Upload
}

var _ native.Spooler = (*Spooler)(nil)

type Option func(*Spooler)

// WithLpOptions replaces the lpoptions files merged into destinations.
func WithLpOptions(paths ...string) Option {
	return func(s *Spooler) {
		s.paths = paths
	}
}

func New(client *cupsclient.Client, opts ...Option) *Spooler {
	if client == nil {
		client = cupsclient.NewFromConfig()
	}
	s := &Spooler{client: client, heap: native.NewHeap(), paths: client.LpOptionsPaths()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Spooler) Heap() *native.Heap {
	return s.heap
}

// Client returns the IPP client the spooler sends requests with.
func (s *Spooler) Client() *cupsclient.Client {
	return s.client
}

func (s *Spooler) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

func (s *Spooler) LastErrorString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// send issues req and maps transport errors and failing IPP statuses onto
// the last error string.
func (s *Spooler) send(ctx context.Context, req *goipp.Message) (*goipp.Message, goipp.Status) {
	resp, err := s.client.Send(ctx, req, nil)
	if err != nil {
		s.setError(err.Error())
		return nil, goipp.StatusErrorServiceUnavailable
	}
	status := goipp.Status(resp.Code)
	if status >= goipp.StatusRedirectionOtherSite {
		s.setError(statusMessage(resp))
		return resp, status
	}
	s.setError("")
	return resp, status
}

func (s *Spooler) request(op goipp.Op, printer string) *goipp.Message {
	req := cupsclient.NewRequest(op)
	if printer != "" {
		req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(s.client.PrinterURI(printer))))
	}
	if s.client.User != "" {
		req.Operation.Add(goipp.MakeAttribute("requesting-user-name", goipp.TagName, goipp.String(s.client.User)))
	}
	return req
}

func requestedAttributes(names ...string) goipp.Attribute {
	vals := make([]goipp.Value, 0, len(names))
	for _, n := range names {
		vals = append(vals, goipp.String(n))
	}
	return goipp.MakeAttr("requested-attributes", goipp.TagKeyword, vals[0], vals[1:]...)
}

// serverDefault returns the scheduler's default printer name.
func (s *Spooler) serverDefault(ctx context.Context) string {
	req := cupsclient.NewRequest(goipp.OpCupsGetDefault)
	req.Operation.Add(requestedAttributes("printer-name"))
	resp, status := s.send(ctx, req)
	if resp == nil || status >= goipp.StatusRedirectionOtherSite {
		return ""
	}
	for _, attrs := range printerGroups(resp) {
		if name := findAttr(attrs, "printer-name"); name != "" {
			return name
		}
	}
	return ""
}

// resolveDefault settles the default of lp the way CUPS clients do: LPDEST,
// PRINTER, the lpoptions Default line, then the scheduler.
func (s *Spooler) resolveDefault(ctx context.Context, lp *lpOptions) {
	for _, env := range []string{"LPDEST", "PRINTER"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" && v != "lp" {
			lp.setDefault(splitInstance(v))
			return
		}
	}
	if lp.hasDefault {
		return
	}
	if name := s.serverDefault(ctx); name != "" {
		lp.setDefault(name, "")
	}
}

func (s *Spooler) GetDests(ctx context.Context) (native.Ptr, int) {
	req := cupsclient.NewRequest(goipp.OpCupsGetPrinters)
	req.Operation.Add(requestedAttributes(destAttributes...))
	resp, status := s.send(ctx, req)
	if resp == nil || status >= goipp.StatusRedirectionOtherSite {
		return native.Null, 0
	}
	lp := loadLpOptions(s.paths...)
	s.resolveDefault(ctx, lp)

	var dests []native.Dest
	for _, attrs := range printerGroups(resp) {
		base, ok := destFromAttrs(attrs)
		if !ok {
			continue
		}
		for _, inst := range lp.instances(base.Name) {
			dest := base
			dest.Instance = inst.instance
			dest.Options = slices.Clone(base.Options)
			dests = append(dests, dest)
		}
		dests = append(dests, base)
	}
	for i := range dests {
		lp.apply(&dests[i])
		dests[i].IsDefault = lp.isDefault(dests[i].Name, dests[i].Instance)
	}
	if len(dests) == 0 {
		return native.Null, 0
	}
	slices.SortStableFunc(dests, func(a, b native.Dest) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Instance), strings.ToLower(b.Instance))
	})
	return s.heap.Alloc(dests), len(dests)
}

func (s *Spooler) FreeDests(n int, dests native.Ptr) {
	s.free(native.FreeArray(s.heap, n, dests))
}

func (s *Spooler) free(err error) {
	if err != nil {
		panic("cupsnative: " + err.Error())
	}
}

func (s *Spooler) printerAttributes(ctx context.Context, name string, attrs ...string) goipp.Attributes {
	req := s.request(goipp.OpGetPrinterAttributes, name)
	if len(attrs) > 0 {
		req.Operation.Add(requestedAttributes(attrs...))
	}
	resp, status := s.send(ctx, req)
	if resp == nil || status >= goipp.StatusRedirectionOtherSite {
		return nil
	}
	groups := printerGroups(resp)
	if len(groups) == 0 {
		s.setError("printer attributes missing from response")
		return nil
	}
	return groups[0]
}

func (s *Spooler) GetNamedDest(ctx context.Context, name, instance string) native.Ptr {
	lp := loadLpOptions(s.paths...)
	s.resolveDefault(ctx, lp)
	if name == "" {
		if !lp.hasDefault {
			s.setError("no default destination")
			return native.Null
		}
		name, instance = lp.defName, lp.defInstance
	}
	attrs := s.printerAttributes(ctx, name, destAttributes...)
	if attrs == nil {
		return native.Null
	}
	dest, ok := destFromAttrs(attrs)
	if !ok {
		dest.Name = name
	}
	dest.Instance = instance
	lp.apply(&dest)
	dest.IsDefault = lp.isDefault(dest.Name, instance)
	return s.heap.Alloc([]native.Dest{dest})
}

func (s *Spooler) CopyDestInfo(ctx context.Context, dest *native.Dest) native.Ptr {
	if dest == nil {
		s.setError("missing destination")
		return native.Null
	}
	attrs := s.printerAttributes(ctx, dest.Name, "all")
	if attrs == nil {
		return native.Null
	}
	return s.heap.Alloc(&destInfo{name: dest.Name, attrs: attrs})
}

func (s *Spooler) FreeDestInfo(info native.Ptr) {
	s.free(s.heap.Free(info))
}

func (s *Spooler) CheckDestSupported(ctx context.Context, dest *native.Dest, info native.Ptr, option, value string) bool {
	di, ok := native.LoadAs[*destInfo](s.heap, info)
	if !ok || dest == nil {
		return false
	}
	return supported(di.attrs, option, value)
}

func (s *Spooler) AddOption(name, value string, n int, opts *native.Ptr) int {
	return native.AddOption(s.heap, name, value, n, opts)
}

func (s *Spooler) FreeOptions(n int, opts native.Ptr) {
	s.free(native.FreeArray(s.heap, n, opts))
}

func (s *Spooler) CreateDestJob(ctx context.Context, dest *native.Dest, info native.Ptr, title string, n int, opts native.Ptr) (int, goipp.Status) {
	if dest == nil {
		s.setError("missing destination")
		return 0, goipp.StatusErrorBadRequest
	}
	req := s.request(goipp.OpCreateJob, dest.Name)
	if title != "" {
		req.Operation.Add(goipp.MakeAttribute("job-name", goipp.TagName, goipp.String(title)))
	}
	for _, o := range (native.Span[native.Option]{Ptr: opts, N: n}).Slice(s.heap) {
		addJobOption(req, o.Name, o.Value)
	}
	resp, status := s.send(ctx, req)
	if resp == nil || status >= goipp.StatusRedirectionOtherSite {
		return 0, status
	}
	id := jobID(resp)
	if id <= 0 {
		s.setError("job id not returned")
		return 0, goipp.StatusErrorInternal
	}
	return id, status
}

func jobID(resp *goipp.Message) int {
	for _, g := range resp.Groups {
		if g.Tag != goipp.TagJobGroup {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(findAttr(g.Attrs, "job-id"))); err == nil {
			return n
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(findAttr(resp.Job, "job-id"))); err == nil {
		return n
	}
	return 0
}

func (s *Spooler) StartDestDocument(ctx context.Context, dest *native.Dest, info native.Ptr, jobID int, docname, format string, n int, opts native.Ptr, last bool) int {
	if dest == nil {
		s.setError("missing destination")
		return http.StatusBadRequest
	}
	s.mu.Lock()
	busy := s.upload != nil
	s.mu.Unlock()
	if busy {
		s.setError("a document is already being sent")
		return http.StatusConflict
	}
	if format == "" {
		format = native.FormatAuto
	}
	req := s.request(goipp.OpSendDocument, dest.Name)
	req.Operation.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(jobID)))
	if docname != "" {
		req.Operation.Add(goipp.MakeAttribute("document-name", goipp.TagName, goipp.String(docname)))
	}
	req.Operation.Add(goipp.MakeAttribute("document-format", goipp.TagMimeType, goipp.String(format)))
	req.Operation.Add(goipp.MakeAttribute("last-document", goipp.TagBoolean, goipp.Boolean(last)))

	up, err := s.client.Stream(ctx, req)
	if err != nil {
		s.setError(err.Error())
		return http.StatusInternalServerError
	}
	s.mu.Lock()
	s.upload = up
	s.mu.Unlock()
	return http.StatusContinue
}

// takeUpload detaches the document in progress.
func (s *Spooler) takeUpload() *cupsclient.Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	up := s.upload
	s.upload = nil
	return up
}

func (s *Spooler) WriteRequestData(buf []byte) int {
	s.mu.Lock()
	up := s.upload
	s.mu.Unlock()
	if up == nil {
		s.setError(errNoUpload.Error())
		return http.StatusBadRequest
	}
	if _, err := up.Write(buf); err != nil {
		// The scheduler answered early; its response explains why.
		s.takeUpload()
		resp, rerr := up.Finish()
		switch {
		case rerr != nil:
			s.setError(rerr.Error())
		case resp != nil && goipp.Status(resp.Code) >= goipp.StatusRedirectionOtherSite:
			s.setError(statusMessage(resp))
		default:
			s.setError(err.Error())
		}
		return http.StatusInternalServerError
	}
	return http.StatusContinue
}

func (s *Spooler) FinishDestDocument(ctx context.Context, dest *native.Dest, info native.Ptr) goipp.Status {
	up := s.takeUpload()
	if up == nil {
		s.setError(errNoUpload.Error())
		return goipp.StatusErrorBadRequest
	}
	resp, err := up.Finish()
	if err != nil {
		s.setError(err.Error())
		return goipp.StatusErrorServiceUnavailable
	}
	status := goipp.Status(resp.Code)
	if status >= goipp.StatusRedirectionOtherSite {
		s.setError(statusMessage(resp))
		return status
	}
	s.setError("")
	return status
}

// CloseDestJob uses Close-Job when the printer lists it, and otherwise ends
// the job with an empty last document.
func (s *Spooler) CloseDestJob(ctx context.Context, dest *native.Dest, info native.Ptr, jobID int) goipp.Status {
	if dest == nil {
		s.setError("missing destination")
		return goipp.StatusErrorBadRequest
	}
	di, ok := native.LoadAs[*destInfo](s.heap, info)
	var req *goipp.Message
	if ok && operationSupported(di.attrs, goipp.OpCloseJob) {
		req = s.request(goipp.OpCloseJob, dest.Name)
		req.Operation.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(jobID)))
	} else {
		req = s.request(goipp.OpSendDocument, dest.Name)
		req.Operation.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(jobID)))
		req.Operation.Add(goipp.MakeAttribute("last-document", goipp.TagBoolean, goipp.Boolean(true)))
	}
	_, status := s.send(ctx, req)
	return status
}

// CancelDestJob abandons a document still being sent, then cancels the job.
func (s *Spooler) CancelDestJob(ctx context.Context, dest *native.Dest, jobID int) goipp.Status {
	if up := s.takeUpload(); up != nil {
		up.Abort()
	}
	if dest == nil {
		s.setError("missing destination")
		return goipp.StatusErrorBadRequest
	}
	req := s.request(goipp.OpCancelJob, dest.Name)
	req.Operation.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(jobID)))
	_, status := s.send(ctx, req)
	return status
}
