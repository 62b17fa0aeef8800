package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"paperjet/internal/config"
	"paperjet/internal/native"
	"paperjet/internal/native/nativetest"
	"paperjet/internal/pdfdoc"
	"paperjet/internal/printerr"
	"paperjet/internal/printing"
)

func newFake() *nativetest.Fake {
	return nativetest.New(
		nativetest.Printer{Name: "Zebra", Options: []native.Option{{Name: "printer-info", Value: "Label Printer"}}},
		nativetest.Printer{
			Name:    "Office",
			Default: true,
			Options: []native.Option{
				{Name: "printer-info", Value: "Office Laser"},
				{Name: "printer-make-and-model", Value: "Acme LaserJet 9"},
				{Name: "printer-state", Value: "3"},
				{Name: "printer-is-accepting-jobs", Value: "true"},
				{Name: "marker-levels", Value: "80,15"},
			},
		},
		nativetest.Printer{Name: "Lab"},
	)
}

func newTestApp(t *testing.T, api *nativetest.Fake, input string) (*app, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := config.Config{
		SnapshotPath: filepath.Join(t.TempDir(), "printers.db"),
		SnapshotTTL:  time.Minute,
		JobTitle:     config.DefaultJobTitle,
	}
	return &app{
		cfg: cfg,
		newPlatform: func(c config.Config) printing.Platform {
			return printing.NewCUPS(api, printing.WithJobTitle(c.JobTitle))
		},
		server: "test",
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}, out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func pdf(pages int) []byte {
	dims := make([]types.Dim, pages)
	for i := range dims {
		dims[i] = types.Dim{Width: 595, Height: 842}
	}
	return pdfdoc.Blank(dims...)
}

func TestParseArgsPrintFlags(t *testing.T) {
	cmd, err := parseArgs([]string{
		"print", "a.pdf", "-p", "2", "-c", "3", "--finishings=staple,punch",
		"-s", "a4", "-o", "landscape", "--from", "2", "--to=4", "--title", "weekly", "b.pdf",
	})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cmd.name != "print" || cmd.printerID != 2 || cmd.title != "weekly" {
		t.Fatalf("cmd = %+v", cmd)
	}
	if strings.Join(cmd.files, ",") != "a.pdf,b.pdf" {
		t.Fatalf("files = %v", cmd.files)
	}
	if cmd.opts.Copies == nil || *cmd.opts.Copies != 3 || len(cmd.opts.Finishings) != 2 {
		t.Fatalf("opts = %+v", cmd.opts)
	}
	if cmd.opts.MediaSize == nil || cmd.opts.Orientation == nil || cmd.opts.Orientation.String() != "landscape" {
		t.Fatalf("opts = %+v", cmd.opts)
	}
	if *cmd.from != 2 || *cmd.to != 4 {
		t.Fatalf("range = %d..%d", *cmd.from, *cmd.to)
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"frobnicate"},
		{"print"},
		{"print", "a.pdf", "-c", "0"},
		{"print", "a.pdf", "-c"},
		{"print", "a.pdf", "-s", "napkin"},
		{"print", "a.pdf", "-p", "1", "--printer-name", "Office"},
		{"print", "a.pdf", "--bogus"},
		{"display"},
		{"list", "extra"},
	} {
		if _, err := parseArgs(args); err == nil {
			t.Fatalf("parseArgs(%q) succeeded", args)
		}
	}
}

func TestListPutsDefaultFirst(t *testing.T) {
	a, out := newTestApp(t, newFake(), "")
	if err := a.run(context.Background(), []string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	want := "1. Office Laser (default)\n2. Lab\n3. Label Printer\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestDisplayByIDAndName(t *testing.T) {
	a, out := newTestApp(t, newFake(), "")
	if err := a.run(context.Background(), []string{"display", "1"}); err != nil {
		t.Fatalf("display: %v", err)
	}
	for _, want := range []string{
		"Office Laser\n\n",
		"Identifier: Office\n",
		"Model: Acme LaserJet 9\n",
		"Default: true\n",
		"State: idle\n",
		"Accepting jobs: true\n",
		"Ink level: 80%, 15%\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := a.run(context.Background(), []string{"display", "Label Printer", "-o"}); err != nil {
		t.Fatalf("display by name: %v", err)
	}
	if !strings.Contains(out.String(), "Identifier: Zebra\n") || !strings.Contains(out.String(), "Options (1):\nprinter-info: Label Printer\n") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestDisplayUnknownID(t *testing.T) {
	a, _ := newTestApp(t, newFake(), "")
	err := a.run(context.Background(), []string{"display", "9"})
	if err == nil || err.Error() != "could not find a printer by the ID: '9'" {
		t.Fatalf("err = %v", err)
	}
}

func TestInkLevels(t *testing.T) {
	for opts, want := range map[[3]string]string{
		{"", "", ""}:         "unknown",
		{"50", "", ""}:       "50%",
		{"30,x", "10", "50"}: "50%, unknown",
		{"-1", "", ""}:       "unknown",
		{"120", "", "100"}:   "100%",
	} {
		p := printing.Printer{Options: map[string]string{
			"marker-levels":      opts[0],
			"marker-low-levels":  opts[1],
			"marker-high-levels": opts[2],
		}}
		if got := inkLevels(p); got != want {
			t.Fatalf("inkLevels(%v) = %q, want %q", opts, got, want)
		}
	}
}

func TestIDsFollowTheLastListing(t *testing.T) {
	api := newFake()
	a, _ := newTestApp(t, api, "")
	ctx := context.Background()
	if err := a.run(ctx, []string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}

	// A new printer sorts ahead of Lab, but ID 2 still means Lab.
	api.Printers = append(api.Printers, nativetest.Printer{Name: "Annex"})
	p, err := a.selectPrinter(ctx, 2, "")
	if err != nil || p.Identifier != "Lab" {
		t.Fatalf("printer = %q, err = %v", p.Identifier, err)
	}
}

func TestSelectPrinterErrors(t *testing.T) {
	a, _ := newTestApp(t, nativetest.New(nativetest.Printer{Name: "Lab"}), "")
	a.platform = a.newPlatform(a.cfg)
	ctx := context.Background()

	if _, err := a.selectPrinter(ctx, 0, "Ghost"); err == nil || err.Error() != "could not find a printer by the name: 'Ghost'" {
		t.Fatalf("by name err = %v", err)
	}
	if _, err := a.selectPrinter(ctx, 0, ""); err == nil || err.Error() != "no default printer is available" {
		t.Fatalf("default err = %v", err)
	}
	if p, err := a.selectPrinter(ctx, 0, "Lab"); err != nil || p.Identifier != "Lab" {
		t.Fatalf("Lab = %q, %v", p.Identifier, err)
	}
	if _, err := a.selectPrinter(ctx, 0, "lab"); err == nil || err.Error() != "could not find a printer by the name: 'lab'" {
		t.Fatalf("names must match exactly, err = %v", err)
	}
}

func TestPrintSubmitsFiles(t *testing.T) {
	api := newFake()
	a, out := newTestApp(t, api, "")
	first := writeFile(t, "a.txt", []byte("hello"))
	second := writeFile(t, "b.txt", []byte("world"))

	err := a.run(context.Background(), []string{"print", first, second, "--printer-name", "Lab", "--title", "notes"})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out.String() != "Files have been submitted for printing.\n" {
		t.Fatalf("output = %q", out.String())
	}
	jobs := api.Jobs()
	if len(jobs) != 1 || jobs[0].Printer != "Lab" || jobs[0].Title != "notes" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if len(jobs[0].Documents) != 2 || string(jobs[0].Documents[1].Data) != "world" {
		t.Fatalf("documents = %+v", jobs[0].Documents)
	}
}

func TestPrintMissingFile(t *testing.T) {
	api := newFake()
	a, _ := newTestApp(t, api, "")
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	err := a.run(context.Background(), []string{"print", missing})
	if err == nil || !strings.HasPrefix(err.Error(), "could not open file '"+missing+"': ") {
		t.Fatalf("err = %v", err)
	}
	if !printerr.Is(err, printerr.KindFileRead) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err kind = %#v", err)
	}
	if api.Calls().CreateJob != 0 {
		t.Fatal("a job was created")
	}
}

func TestPrintDuplex(t *testing.T) {
	api := newFake()
	a, out := newTestApp(t, api, "\n")
	path := writeFile(t, "doc.pdf", pdf(5))

	if err := a.run(context.Background(), []string{"print", path, "--duplex"}); err != nil {
		t.Fatalf("print: %v", err)
	}
	text := out.String()
	steps := []string{
		"You will need 3 sheets of paper.",
		"Printing the front side...",
		"The front side has been submitted.",
		"turn the pages over and press Enter: ",
		"Printing the back side...",
		"The back side has been submitted.",
	}
	pos := 0
	for _, step := range steps {
		i := strings.Index(text[pos:], step)
		if i < 0 {
			t.Fatalf("missing %q after offset %d:\n%s", step, pos, text)
		}
		pos += i + len(step)
	}

	jobs := api.Jobs()
	if len(jobs) != 2 || jobs[0].Printer != "Office" {
		t.Fatalf("jobs = %+v", jobs)
	}
	for i, want := range []int{3, 3} {
		n, err := pdfdoc.PageCount(jobs[i].Documents[0].Data)
		if err != nil || n != want {
			t.Fatalf("job %d pages = %d, %v", i, n, err)
		}
	}
}

func TestPrintDuplexRejectsCopies(t *testing.T) {
	api := newFake()
	a, _ := newTestApp(t, api, "\n")
	path := writeFile(t, "doc.pdf", pdf(4))

	err := a.run(context.Background(), []string{"print", path, "--duplex", "-c", "2"})
	if err == nil || err.Error() != "option 'copies' is not supported in duplex mode" {
		t.Fatalf("err = %v", err)
	}
	if len(api.Jobs()) != 0 {
		t.Fatal("a job was created")
	}
}

func TestPrintSlice(t *testing.T) {
	api := newFake()
	a, _ := newTestApp(t, api, "")
	path := writeFile(t, "doc.pdf", pdf(6))

	if err := a.run(context.Background(), []string{"print", path, "--from", "2", "--to", "3"}); err != nil {
		t.Fatalf("print: %v", err)
	}
	jobs := api.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("jobs = %+v", jobs)
	}
	if n, err := pdfdoc.PageCount(jobs[0].Documents[0].Data); err != nil || n != 2 {
		t.Fatalf("pages = %d, %v", n, err)
	}

	err := a.run(context.Background(), []string{"print", path, "--from", "7"})
	if err == nil || err.Error() != "document has 6 pages, but range is starting from 7" {
		t.Fatalf("err = %v", err)
	}
}
