package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"paperjet/internal/native"
	"paperjet/internal/native/nativetest"
	"paperjet/internal/printing"
)

func newPlatform() printing.Platform {
	return printing.NewCUPS(nativetest.New(
		nativetest.Printer{
			Name:    "Office",
			Default: true,
			Options: []native.Option{
				{Name: "printer-state", Value: "3"},
				{Name: "printer-info", Value: "Office Laser"},
				{Name: "printer-is-accepting-jobs", Value: "true"},
				{Name: "device-uri", Value: "ipp://office.example/ipp/print"},
			},
		},
		nativetest.Printer{
			Name: "Lab",
			Options: []native.Option{
				{Name: "printer-state", Value: "5"},
				{Name: "printer-state-reasons", Value: "paused,media-empty"},
				{Name: "printer-is-accepting-jobs", Value: "false"},
				{Name: "printer-type", Value: "2"},
			},
		},
	))
}

func TestParseArgsSupportsClustersAndAttachedValues(t *testing.T) {
	opts := parseArgs([]string{"-hserver.example:8631", "-dl", "-pOffice,Lab", "-a"})
	if opts.server != "server.example:8631" {
		t.Fatalf("server = %q", opts.server)
	}
	if !opts.showDefault || !opts.longStatus || !opts.showPrinters || !opts.showAccepting {
		t.Fatalf("flags = %+v", opts)
	}
	if len(opts.printerFilter) != 2 || opts.printerFilter[1] != "Lab" {
		t.Fatalf("filter = %v", opts.printerFilter)
	}
}

func TestParseArgsListFromNextArgument(t *testing.T) {
	opts := parseArgs([]string{"-p", "Office", "-d"})
	if len(opts.printerFilter) != 1 || opts.printerFilter[0] != "Office" || !opts.showDefault {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestRunDefaultAndPrinters(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), newPlatform(), options{showDefault: true, showPrinters: true}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.HasPrefix(text, "system default destination: Office\n") {
		t.Fatalf("output = %q", text)
	}
	if !strings.Contains(text, "printer Office is idle.  enabled since \n") {
		t.Fatalf("missing idle line: %q", text)
	}
	if !strings.Contains(text, "printer Lab disabled since  -\n\treason unknown\n") {
		t.Fatalf("missing stopped line: %q", text)
	}
}

func TestRunLongStatusAndFilter(t *testing.T) {
	var out bytes.Buffer
	opts := options{showPrinters: true, longStatus: true, printerFilter: []string{"lab"}}
	if err := run(context.Background(), newPlatform(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if strings.Contains(text, "Office") {
		t.Fatalf("filter ignored: %q", text)
	}
	if !strings.Contains(text, "\tAlerts: paused media-empty\n") || !strings.Contains(text, "\tConnection: remote\n") {
		t.Fatalf("output = %q", text)
	}
}

func TestRunAcceptingAndDevices(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), newPlatform(), options{showAccepting: true, showDevices: true}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Office accepting requests since \n",
		"Lab not accepting requests since  -\n\treason unknown\n",
		"device for Office: ipp://office.example/ipp/print\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunNoDefault(t *testing.T) {
	var out bytes.Buffer
	platform := printing.NewCUPS(nativetest.New(nativetest.Printer{Name: "Lab"}))
	if err := run(context.Background(), platform, options{showDefault: true}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "no system default destination\n" {
		t.Fatalf("output = %q", out.String())
	}
}
