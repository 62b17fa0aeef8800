package printing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paperjet/internal/logging"
	"paperjet/internal/native"
	"paperjet/internal/native/nativetest"
	"paperjet/internal/options"
	"paperjet/internal/printerr"
)

func newFake() *nativetest.Fake {
	return nativetest.New(
		nativetest.Printer{Name: "Zebra", Options: []native.Option{{Name: "printer-info", Value: "Label Printer"}}},
		nativetest.Printer{Name: "Office", Default: true, Options: []native.Option{{Name: "printer-info", Value: "Office Laser"}}},
		nativetest.Printer{
			Name:      "Lab",
			Supported: map[string][]string{"copies": {"*"}, "sides": {"one-sided"}},
		},
	)
}

func TestPrintersMapsDestinations(t *testing.T) {
	api := newFake()
	c := NewCUPS(api)
	printers, err := c.Printers(context.Background())
	if err != nil {
		t.Fatalf("Printers: %v", err)
	}
	if len(printers) != 3 {
		t.Fatalf("got %d printers", len(printers))
	}
	office := printers[1]
	if office.Identifier != "Office" || !office.IsDefault || office.HumanName() != "Office Laser" {
		t.Fatalf("office = %+v", office)
	}
	if printers[2].HumanName() != "Lab" {
		t.Fatalf("human name without printer-info = %q", printers[2].HumanName())
	}
	if api.Heap().Live() != 0 {
		t.Fatalf("registry leaked: %d live", api.Heap().Live())
	}
}

func TestPrintersEmptyWhenUnreachable(t *testing.T) {
	api := newFake()
	api.Unreachable = true
	printers, err := NewCUPS(api).Printers(context.Background())
	if err != nil || len(printers) != 0 {
		t.Fatalf("printers = %v, err = %v", printers, err)
	}
}

func TestSortedPutsDefaultFirst(t *testing.T) {
	printers, _ := NewCUPS(newFake()).Printers(context.Background())
	sorted := Sorted(printers)
	var ids []string
	for _, p := range sorted {
		ids = append(ids, p.Identifier)
	}
	if strings.Join(ids, ",") != "Office,Lab,Zebra" {
		t.Fatalf("sorted = %v", ids)
	}
	if printers[0].Identifier != "Zebra" {
		t.Fatal("Sorted must not reorder its input")
	}
}

func TestSortedComparesNamesByteWise(t *testing.T) {
	printers := []Printer{
		{Identifier: "alpha", Name: "alpha"},
		{Identifier: "Zed", Name: "Zed"},
		{Identifier: "Beta", Name: "Beta", IsDefault: true},
		{Identifier: "Apple/draft", Name: "Apple", Instance: "draft"},
		{Identifier: "Apple", Name: "Apple"},
	}
	var ids []string
	for _, p := range Sorted(printers) {
		ids = append(ids, p.Identifier)
	}
	if strings.Join(ids, ",") != "Beta,Apple,Apple/draft,Zed,alpha" {
		t.Fatalf("sorted = %v", ids)
	}
}

func TestFindByName(t *testing.T) {
	printers, _ := NewCUPS(newFake()).Printers(context.Background())
	for name, want := range map[string]string{
		"Lab":           "Lab",
		"Label Printer": "Zebra",
		"Office Laser":  "Office",
	} {
		p, ok := FindByName(printers, name)
		if !ok || p.Identifier != want {
			t.Fatalf("FindByName(%q) = %q, %v", name, p.Identifier, ok)
		}
	}
	for _, name := range []string{"nowhere", "lab", "office laser"} {
		if _, ok := FindByName(printers, name); ok {
			t.Fatalf("FindByName(%q) matched", name)
		}
	}
}

func TestPrinterAndDefaultLookups(t *testing.T) {
	c := NewCUPS(newFake())
	ctx := context.Background()
	if p, ok := c.DefaultPrinter(ctx); !ok || p.Identifier != "Office" {
		t.Fatalf("default = %+v, %v", p, ok)
	}
	if _, ok := c.Printer(ctx, "Lab"); !ok {
		t.Fatal("Lab not found")
	}
	if _, ok := c.Printer(ctx, "La\x00b"); ok {
		t.Fatal("a name with a NUL byte must not match")
	}
}

func TestPrintSubmitsDocumentsInOrder(t *testing.T) {
	jobLog := filepath.Join(t.TempDir(), "job_log")
	logs := &logging.Logs{Job: logging.NewRotatingFile(jobLog, 0)}
	defer logging.Install(logging.Install(logs))
	defer logs.Close()

	api := newFake()
	c := NewCUPS(api, WithJobTitle("weekly"), WithJobUser("alice"))
	ctx := context.Background()
	p, _ := c.Printer(ctx, "Office")

	docs := []io.Reader{strings.NewReader("one"), strings.NewReader("two")}
	if err := c.Print(ctx, docs, p, options.PrintOptions{Copies: options.Some(2)}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	jobs := api.Jobs()
	if len(jobs) != 1 || !jobs[0].Closed || jobs[0].Cancelled {
		t.Fatalf("jobs = %+v", jobs)
	}
	if jobs[0].Title != "weekly" || len(jobs[0].Documents) != 2 || jobs[0].Documents[1].Name != "weekly-2" {
		t.Fatalf("job = %+v", jobs[0])
	}
	if api.Heap().Live() != 0 {
		t.Fatalf("%d allocations live after Print", api.Heap().Live())
	}
	data, err := os.ReadFile(jobLog)
	if err != nil {
		t.Fatalf("read job log: %v", err)
	}
	if !strings.HasPrefix(string(data), "Office alice 1 [") || !strings.Contains(string(data), `"weekly" 2 2 6B ok`) {
		t.Fatalf("job log = %q", data)
	}
}

func TestPrintUnsupportedOptionCreatesNoJob(t *testing.T) {
	api := newFake()
	c := NewCUPS(api)
	ctx := context.Background()
	p, _ := c.Printer(ctx, "Lab")

	sides := options.TwoSidedPortrait
	err := c.Print(ctx, []io.Reader{strings.NewReader("x")}, p, options.PrintOptions{Copies: options.Some(3), SidesMode: &sides})
	name, value, ok := printerr.Option(err)
	if !ok || name != "sides mode" || value != "two-sided-portrait" {
		t.Fatalf("err = %v", err)
	}
	if api.Calls().CreateJob != 0 {
		t.Fatal("a job was created for an unsupported option")
	}
	if api.Heap().Live() != 0 {
		t.Fatalf("%d allocations live", api.Heap().Live())
	}
}

func TestPrintUnknownPrinter(t *testing.T) {
	api := nativetest.New(nativetest.NewPrinter())
	err := NewCUPS(api).Print(context.Background(), nil, Printer{Identifier: "Ghost"}, options.PrintOptions{})
	if !printerr.Is(err, printerr.KindPrinterNotFound) || err.Error() != "could not find printer: Ghost" {
		t.Fatalf("err = %v", err)
	}
	if api.Calls().CreateJob != 0 {
		t.Fatal("a job was created for an unknown printer")
	}
}

func TestPrintUploadFailureCancels(t *testing.T) {
	api := newFake()
	api.FailFinish = true
	api.ErrorMessage = "printer on fire"
	c := NewCUPS(api)
	ctx := context.Background()
	p, _ := c.Printer(ctx, "Office")

	err := c.Print(ctx, []io.Reader{strings.NewReader("x")}, p, options.PrintOptions{})
	if err == nil || err.Error() != "printer on fire" {
		t.Fatalf("err = %v", err)
	}
	var pe *printerr.Error
	if !errors.As(err, &pe) || pe.Kind != printerr.KindBackend {
		t.Fatalf("err kind = %v", err)
	}
	if calls := api.Calls(); calls.Cancel != 1 || calls.Close != 0 {
		t.Fatalf("calls = %+v", calls)
	}
	if api.Heap().Live() != 0 {
		t.Fatalf("%d allocations live", api.Heap().Live())
	}
}

func TestPrintRejectsInvalidCopies(t *testing.T) {
	printer := nativetest.NewPrinter()
	api := nativetest.New(printer)
	err := NewCUPS(api).Print(context.Background(), nil, Printer{Identifier: printer.Name}, options.PrintOptions{Copies: options.Some(0)})
	if err == nil {
		t.Fatal("expected an error for zero copies")
	}
	if api.Calls().GetNamedDest != 0 {
		t.Fatal("spooler queried for invalid options")
	}
}
