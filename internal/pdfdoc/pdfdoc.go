// Package pdfdoc rearranges the pages of PDF documents before they are
// submitted: a page range can be cut out of a document, and a document can
// be split into front and back sides for printing on both sides of the
// paper by hand.
//
// Documents go in and come out as byte buffers; nothing is written to disk.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

// Plan describes the transformations applied by Transform. From and To are
// 1-based and inclusive; nil means the first and the last page.
type Plan struct {
	From   *int
	To     *int
	Duplex bool
}

func (p Plan) slices() bool {
	return p.From != nil || p.To != nil
}

var ErrEmpty = errors.New("document is empty")

// Transform applies the plan to docs: slicing first, then the duplex split.
// The result is in upload order. When the plan asks for nothing, docs are
// returned unchanged.
func Transform(docs [][]byte, plan Plan) ([][]byte, error) {
	if plan.slices() {
		if len(docs) != 1 {
			return nil, errors.New("exactly one file must be specified to slice a document")
		}
		from, to := 1, 0
		if plan.From != nil {
			from = *plan.From
		}
		if plan.To != nil {
			to = *plan.To
		} else {
			n, err := PageCount(docs[0])
			if err != nil {
				return nil, err
			}
			to = n
		}
		sliced, err := Slice(docs[0], from, to)
		if err != nil {
			return nil, err
		}
		docs = [][]byte{sliced}
	}
	if plan.Duplex {
		if len(docs) != 1 {
			return nil, errors.New("exactly one file must be specified to print in duplex mode")
		}
		front, back, err := SplitDuplex(docs[0])
		if err != nil {
			return nil, err
		}
		docs = [][]byte{front, back}
	}
	return docs, nil
}

func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), newConf())
	if err != nil {
		return 0, fmt.Errorf("could not read from file: %w", err)
	}
	return n, nil
}

// Slice returns a document holding pages from..to of doc.
func Slice(doc []byte, from, to int) ([]byte, error) {
	pages, err := PageCount(doc)
	if err != nil {
		return nil, err
	}
	if err := checkRange(pages, from, to); err != nil {
		return nil, err
	}
	sel := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		sel = append(sel, strconv.Itoa(i))
	}
	return collect(doc, sel)
}

func checkRange(pages, from, to int) error {
	switch {
	case pages == 0:
		return ErrEmpty
	case from < 1:
		return fmt.Errorf("range must start from 1: provided %d", from)
	case from > pages:
		return fmt.Errorf("document has %d pages, but range is starting from %d", pages, from)
	case to > pages:
		return fmt.Errorf("document has %d pages, but range is ending at %d", pages, to)
	case from > to:
		return fmt.Errorf("range is empty: from %d to %d", from, to)
	}
	return nil
}

// SplitDuplex splits doc into the pages printed on the front of each sheet
// and the pages printed on the back. The back pages are reversed, since the
// printed stack is turned over before the second pass; when the page count
// is odd a blank page sized like the first page leads the back side so both
// stacks line up.
func SplitDuplex(doc []byte) (front, back []byte, err error) {
	pages, err := PageCount(doc)
	if err != nil {
		return nil, nil, err
	}
	if pages < 2 {
		unit := "pages"
		if pages == 1 {
			unit = "page"
		}
		return nil, nil, fmt.Errorf("document only has %d %s: must have at least 2 pages to print in duplex mode", pages, unit)
	}

	var odd, even []string
	for i := 1; i <= pages; i++ {
		if i%2 == 1 {
			odd = append(odd, strconv.Itoa(i))
		} else {
			even = append([]string{strconv.Itoa(i)}, even...)
		}
	}
	if front, err = collect(doc, odd); err != nil {
		return nil, nil, err
	}
	if back, err = collect(doc, even); err != nil {
		return nil, nil, err
	}
	if len(odd) != len(even) {
		dims, err := api.PageDims(bytes.NewReader(doc), newConf())
		if err != nil || len(dims) == 0 {
			return nil, nil, fmt.Errorf("could not read page size: %v", err)
		}
		blank := Blank(dims[:1]...)
		var buf bytes.Buffer
		rs := []io.ReadSeeker{bytes.NewReader(blank), bytes.NewReader(back)}
		if err := api.MergeRaw(rs, &buf, false, newConf()); err != nil {
			return nil, nil, fmt.Errorf("could not align sides: %w", err)
		}
		back = buf.Bytes()
	}
	return front, back, nil
}

func collect(doc []byte, pages []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(doc), &buf, pages, newConf()); err != nil {
		return nil, fmt.Errorf("could not copy pages: %w", err)
	}
	return buf.Bytes(), nil
}

func newConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Blank writes a PDF with one empty page per entry of dims.
func Blank(dims ...types.Dim) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, len(dims)+2)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, len(dims))
	for i := range dims {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(dims)))
	for _, d := range dims {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << >> >>",
			formatNum(d.Width), formatNum(d.Height)))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
