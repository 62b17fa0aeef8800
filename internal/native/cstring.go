package native

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrNulByte is returned for strings that cannot cross the native boundary.
var ErrNulByte = errors.New("string contains a nul byte")

// CString checks that s can be passed to the spooler as a terminated string.
func CString(s string) (string, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return "", fmt.Errorf("%w at position %d", ErrNulByte, i)
	}
	return s, nil
}

// GoString converts a terminated byte buffer returned by the spooler.
// Bytes after the first nul are ignored and invalid UTF-8 is replaced.
func GoString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.ToValidUTF8(string(b), "�")
}
