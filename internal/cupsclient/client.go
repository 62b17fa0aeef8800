package cupsclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goipp "github.com/OpenPrinting/goipp"
)

type Client struct {
	Settings
	// Timeout bounds Send. Streams are bounded only by their context.
	Timeout time.Duration
	// Transport wraps the HTTP transport, for access logging.
	Transport func(http.RoundTripper) http.RoundTripper

	server string
	tls    bool
	user   string
}

type ClientOption func(*Client)

// WithServer names the scheduler, ahead of CUPS_SERVER and client.conf.
func WithServer(server string) ClientOption {
	return func(c *Client) {
		c.server = strings.TrimSpace(server)
	}
}

func WithTLS(enable bool) ClientOption {
	return func(c *Client) {
		c.tls = enable
	}
}

func WithUser(user string) ClientOption {
	return func(c *Client) {
		c.user = strings.TrimSpace(user)
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

func NewFromConfig(opts ...ClientOption) *Client {
	client := &Client{Timeout: 60 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.Settings = LoadSettings(client.server)
	if client.tls {
		client.TLS = true
	}
	if client.user != "" {
		client.User = client.user
	}
	return client
}

// Server returns host:port of the scheduler, used to key cached state.
func (c *Client) Server() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *Client) PrinterURI(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "ipp://localhost/printers/"
	}
	return "ipp://localhost/printers/" + url.PathEscape(name)
}

func (c *Client) ippURLForPath(path string) string {
	scheme := "http"
	if c.TLS {
		scheme = "https"
	}
	if path == "" {
		path = "/ipp/print"
	}
	return scheme + "://" + c.Host + ":" + strconv.Itoa(c.Port) + path
}

func ippPathForOp(op goipp.Op) string {
	switch op {
	case goipp.OpCancelJob,
		goipp.OpGetJobs,
		goipp.OpGetJobAttributes,
		goipp.OpCloseJob:
		return "/jobs/"
	case goipp.OpPrintJob,
		goipp.OpCreateJob,
		goipp.OpSendDocument,
		goipp.OpValidateJob:
		return "/ipp/print"
	default:
		return "/"
	}
}

// NewRequest starts an IPP request with the operation attributes every
// request carries.
func NewRequest(op goipp.Op) *goipp.Message {
	req := goipp.NewRequest(goipp.DefaultVersion, op, uint32(time.Now().UnixNano()))
	req.Operation.Add(goipp.MakeAttribute("attributes-charset", goipp.TagCharset, goipp.String("utf-8")))
	req.Operation.Add(goipp.MakeAttribute("attributes-natural-language", goipp.TagLanguage, goipp.String("en-US")))
	return req
}

func (c *Client) newHTTPRequest(ctx context.Context, msg *goipp.Message, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ippURLForPath(ippPathForMessage(msg)), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", goipp.ContentType)
	req.Header.Set("Accept", goipp.ContentType)
	return req, nil
}

func (c *Client) httpClient(timeout time.Duration) *http.Client {
	var rt http.RoundTripper = &http.Transport{
		TLSClientConfig: tlsConfig(c),
	}
	if c.Transport != nil {
		rt = c.Transport(rt)
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

func decodeResponse(resp *http.Response) (*goipp.Message, error) {
	if resp.StatusCode/100 != 2 {
		return nil, errors.New(resp.Status)
	}
	out := &goipp.Message{}
	if err := out.Decode(resp.Body); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Send(ctx context.Context, msg *goipp.Message, data io.Reader) (*goipp.Message, error) {
	if msg == nil {
		return nil, errors.New("missing ipp message")
	}
	payload, err := msg.EncodeBytes()
	if err != nil {
		return nil, err
	}
	body := io.Reader(bytes.NewBuffer(payload))
	if data != nil {
		body = io.MultiReader(bytes.NewBuffer(payload), data)
	}
	req, err := c.newHTTPRequest(ctx, msg, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient(c.Timeout).Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

// Upload is a request whose document data is written after the request
// has started. The body is sent with chunked transfer encoding.
type Upload struct {
	pw      *io.PipeWriter
	done    chan uploadResult
	written int64
	result  *uploadResult
}

type uploadResult struct {
	msg *goipp.Message
	err error
}

// Stream starts msg and returns an Upload for its document data.
func (c *Client) Stream(ctx context.Context, msg *goipp.Message) (*Upload, error) {
	if msg == nil {
		return nil, errors.New("missing ipp message")
	}
	payload, err := msg.EncodeBytes()
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	req, err := c.newHTTPRequest(ctx, msg, io.MultiReader(bytes.NewReader(payload), pr))
	if err != nil {
		return nil, err
	}
	u := &Upload{pw: pw, done: make(chan uploadResult, 1)}
	client := c.httpClient(0)
	go func() {
		resp, err := client.Do(req)
		if err != nil {
			pr.CloseWithError(err)
			u.done <- uploadResult{err: err}
			return
		}
		defer resp.Body.Close()
		out, err := decodeResponse(resp)
		pr.CloseWithError(errors.New("request already answered"))
		u.done <- uploadResult{msg: out, err: err}
	}()
	return u, nil
}

func (u *Upload) Write(p []byte) (int, error) {
	n, err := u.pw.Write(p)
	u.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("upload: %w", err)
	}
	return n, nil
}

// Written returns the number of document bytes accepted so far.
func (u *Upload) Written() int64 {
	return u.written
}

// Finish ends the document data and waits for the response.
func (u *Upload) Finish() (*goipp.Message, error) {
	u.pw.Close()
	return u.wait()
}

// Abort ends the request without completing the document.
func (u *Upload) Abort() {
	u.pw.CloseWithError(errors.New("upload aborted"))
	_, _ = u.wait()
}

func (u *Upload) wait() (*goipp.Message, error) {
	if u.result == nil {
		r := <-u.done
		u.result = &r
	}
	return u.result.msg, u.result.err
}

func tlsConfig(c *Client) *tls.Config {
	return &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: !c.VerifyCerts}
}

func ippPathForMessage(msg *goipp.Message) string {
	if msg == nil {
		return "/"
	}
	op := goipp.Op(msg.Code)
	defaultPath := ippPathForOp(op)
	if defaultPath == "/jobs/" {
		return defaultPath
	}
	if ippPathPinnedToRoot(op) {
		return "/"
	}
	if p, ok := ippResourcePathFromURI(AttrString(msg.Operation, "printer-uri")); ok {
		return p
	}
	return defaultPath
}

func ippPathPinnedToRoot(op goipp.Op) bool {
	switch op {
	case goipp.OpCupsGetPrinters,
		goipp.OpCupsGetClasses,
		goipp.OpCupsGetDefault:
		return true
	default:
		return false
	}
}

func ippResourcePathFromURI(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	path := strings.TrimSpace(u.Path)
	if path == "" {
		return "", false
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, true
}

// AttrString returns the first value of the named attribute.
func AttrString(attrs goipp.Attributes, name string) string {
	for _, attr := range attrs {
		if !strings.EqualFold(strings.TrimSpace(attr.Name), strings.TrimSpace(name)) {
			continue
		}
		if len(attr.Values) == 0 {
			return ""
		}
		return strings.TrimSpace(attr.Values[0].V.String())
	}
	return ""
}
