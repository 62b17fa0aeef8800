package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"paperjet/internal/config"
	"paperjet/internal/logging"
	"paperjet/internal/printing"
)

type options struct {
	server        string
	showDefault   bool
	showPrinters  bool
	showAccepting bool
	showDevices   bool
	showAllDests  bool
	longStatus    bool
	printerFilter []string
}

func main() {
	opts := parseArgs(os.Args[1:])

	cfg := config.Load()
	if opts.server != "" {
		cfg.Server = opts.server
	}
	closeLogs := logging.Setup(cfg)
	defer closeLogs()

	if err := run(context.Background(), printing.Default(cfg), opts, os.Stdout); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "lpstat:", err)
	os.Exit(1)
}

func run(ctx context.Context, platform printing.Platform, opts options, out io.Writer) error {
	if !opts.showDefault && !opts.showPrinters && !opts.showAccepting && !opts.showDevices && !opts.showAllDests {
		opts.showPrinters = true
	}

	if opts.showDefault {
		if p, ok := platform.DefaultPrinter(ctx); ok {
			fmt.Fprintf(out, "system default destination: %s\n", p.Identifier)
		} else {
			fmt.Fprintln(out, "no system default destination")
		}
	}

	if !opts.showPrinters && !opts.showAccepting && !opts.showDevices && !opts.showAllDests {
		return nil
	}
	printers, err := platform.Printers(ctx)
	if err != nil {
		return err
	}
	var shown []printing.Printer
	for _, p := range printers {
		if matchesFilter(opts.printerFilter, p.Identifier) {
			shown = append(shown, p)
		}
	}

	if opts.showPrinters {
		printPrinters(out, shown, opts.longStatus)
	}
	if opts.showAccepting {
		printAccepting(out, shown)
	}
	if opts.showDevices {
		printDevices(out, shown)
	}
	if opts.showAllDests {
		for _, p := range shown {
			fmt.Fprintln(out, p.Identifier)
		}
	}
	return nil
}

// parseArgs accepts clustered flags ("-dp") and attached values
// ("-pOffice", "-hserver:631").
func parseArgs(args []string) options {
	opts := options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			fail(fmt.Errorf("unexpected argument %q", arg))
		}
		for j := 1; j < len(arg); j++ {
			attached := arg[j+1:]
			list := func() []string {
				j = len(arg)
				if attached != "" {
					return parseListArg(attached)
				}
				return parseListArg(peekArg(args, &i))
			}
			switch arg[j] {
			case 'h':
				j = len(arg)
				if attached != "" {
					opts.server = attached
					break
				}
				if i+1 >= len(args) {
					fail(fmt.Errorf("missing argument for -h"))
				}
				i++
				opts.server = args[i]
			case 'd':
				opts.showDefault = true
			case 'l':
				opts.longStatus = true
			case 'p':
				opts.showPrinters = true
				opts.printerFilter = append(opts.printerFilter, list()...)
			case 'a':
				opts.showAccepting = true
				opts.printerFilter = append(opts.printerFilter, list()...)
			case 'v':
				opts.showDevices = true
				opts.printerFilter = append(opts.printerFilter, list()...)
			case 'e':
				opts.showAllDests = true
			case 's':
				opts.showDefault = true
				opts.showDevices = true
			case 't':
				opts.showDefault = true
				opts.showPrinters = true
				opts.showAccepting = true
				opts.showDevices = true
			default:
				fail(fmt.Errorf("unknown option \"-%c\"", arg[j]))
			}
		}
	}
	return opts
}

func peekArg(args []string, idx *int) string {
	if *idx+1 >= len(args) {
		return ""
	}
	next := args[*idx+1]
	if strings.HasPrefix(next, "-") {
		return ""
	}
	*idx++
	return next
}

func parseListArg(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printPrinters(out io.Writer, printers []printing.Printer, long bool) {
	for _, p := range printers {
		stateTime := formatCupsDate(option(p, "printer-state-change-time"))
		stateMsg := option(p, "printer-state-message")
		reasons := parseListArg(option(p, "printer-state-reasons"))
		switch option(p, "printer-state") {
		case "4":
			fmt.Fprintf(out, "printer %s now printing.  enabled since %s\n", p.Identifier, stateTime)
		case "5":
			fmt.Fprintf(out, "printer %s disabled since %s -\n", p.Identifier, stateTime)
			if stateMsg == "" {
				stateMsg = "reason unknown"
			}
		default:
			if containsReason(reasons, "hold-new-jobs") {
				fmt.Fprintf(out, "printer %s is holding new jobs.  enabled since %s\n", p.Identifier, stateTime)
			} else {
				fmt.Fprintf(out, "printer %s is idle.  enabled since %s\n", p.Identifier, stateTime)
			}
		}
		if stateMsg != "" {
			fmt.Fprintf(out, "\t%s\n", stateMsg)
		}
		if long {
			fmt.Fprintf(out, "\tDescription: %s\n", option(p, "printer-info"))
			if alerts := withoutNone(reasons); len(alerts) > 0 {
				fmt.Fprintf(out, "\tAlerts: %s\n", strings.Join(alerts, " "))
			}
			fmt.Fprintf(out, "\tLocation: %s\n", option(p, "printer-location"))
			if ptype, _ := strconv.Atoi(option(p, "printer-type")); ptype&0x0002 != 0 {
				fmt.Fprintln(out, "\tConnection: remote")
			} else {
				fmt.Fprintln(out, "\tConnection: direct")
			}
		}
	}
}

func printAccepting(out io.Writer, printers []printing.Printer) {
	for _, p := range printers {
		stateTime := formatCupsDate(option(p, "printer-state-change-time"))
		if strings.EqualFold(option(p, "printer-is-accepting-jobs"), "false") {
			fmt.Fprintf(out, "%s not accepting requests since %s -\n", p.Identifier, stateTime)
			if msg := option(p, "printer-state-message"); msg != "" {
				fmt.Fprintf(out, "\t%s\n", msg)
			} else {
				fmt.Fprintln(out, "\treason unknown")
			}
			continue
		}
		fmt.Fprintf(out, "%s accepting requests since %s\n", p.Identifier, stateTime)
	}
}

func printDevices(out io.Writer, printers []printing.Printer) {
	for _, p := range printers {
		if uri := option(p, "device-uri"); uri != "" {
			fmt.Fprintf(out, "device for %s: %s\n", p.Identifier, strings.TrimPrefix(uri, "file:"))
		} else if uri := option(p, "printer-uri-supported"); uri != "" {
			fmt.Fprintf(out, "device for %s: %s\n", p.Identifier, uri)
		}
	}
}

func option(p printing.Printer, name string) string {
	v, _ := p.Option(name)
	return v
}

func matchesFilter(filter []string, value string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.EqualFold(f, "all") || strings.EqualFold(f, value) {
			return true
		}
	}
	return false
}

func formatCupsDate(raw string) string {
	epoch, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if epoch <= 0 {
		return ""
	}
	return time.Unix(epoch, 0).Local().Format("Mon Jan _2 15:04:05 2006")
}

func containsReason(list []string, reason string) bool {
	for _, v := range list {
		if strings.EqualFold(v, reason) {
			return true
		}
	}
	return false
}

func withoutNone(reasons []string) []string {
	var out []string
	for _, r := range reasons {
		if !strings.EqualFold(r, "none") {
			out = append(out, r)
		}
	}
	return out
}
