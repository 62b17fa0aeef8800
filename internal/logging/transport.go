package logging

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const timeLayout = "02/Jan/2006:15:04:05 -0700"

// countingBody counts the request bytes the transport actually sent.
type countingBody struct {
	io.ReadCloser
	n atomic.Int64
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n.Add(int64(n))
	return n, err
}

type accessTransport struct {
	next http.RoundTripper
	user string
}

// AccessTransport returns a wrapper that writes every request of user to the
// access log in the CUPS access_log format, with the scheduler as the host.
func AccessTransport(user string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if next == nil {
			next = http.DefaultTransport
		}
		return &accessTransport{next: next, user: user}
	}
}

func (t *accessTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	var body *countingBody
	if req.Body != nil && req.Body != http.NoBody {
		body = &countingBody{ReadCloser: req.Body}
		req = req.Clone(req.Context())
		req.Body = body
	}
	resp, err := t.next.RoundTrip(req)
	status := "-"
	if err == nil && resp != nil {
		status = fmt.Sprint(resp.StatusCode)
	}
	var sent int64
	if body != nil {
		sent = body.n.Load()
	}
	Access(AccessLogLine(req, t.user, status, sent, start))
	return resp, err
}

// AccessLogLine formats one access_log line for a client request. Basic
// auth credentials on the request take precedence over user.
func AccessLogLine(req *http.Request, user, status string, size int64, at time.Time) string {
	if u, _, ok := req.BasicAuth(); ok && strings.TrimSpace(u) != "" {
		user = u
	}
	if strings.TrimSpace(user) == "" {
		user = "-"
	}
	return fmt.Sprintf("%s - %s [%s] \"%s %s %s\" %s %d",
		req.URL.Host,
		user,
		at.Format(timeLayout),
		req.Method,
		req.URL.RequestURI(),
		req.Proto,
		status,
		size,
	)
}
