package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"paperjet/internal/printing"
)

func (a *app) list(ctx context.Context) error {
	printers, err := a.sortedPrinters(ctx)
	if err != nil {
		return err
	}
	for i, p := range printers {
		line := fmt.Sprintf("%d. %s", i+1, p.HumanName())
		if p.IsDefault {
			fmt.Fprintln(a.out, a.colors.Bold(a.colors.Highlight(line+" (default)")))
		} else {
			fmt.Fprintln(a.out, a.colors.Bold(line))
		}
	}
	return nil
}

func (a *app) display(ctx context.Context, criteria string, allOptions bool) error {
	p, err := a.printerByCriteria(ctx, criteria)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n\n", a.colors.Bold(p.HumanName()))
	fmt.Fprintf(a.out, "Identifier: %s\n", p.Identifier)
	fmt.Fprintf(a.out, "Model: %s\n", optionOr(p, "printer-make-and-model", "unknown"))
	fmt.Fprintf(a.out, "Default: %t\n", p.IsDefault)
	fmt.Fprintf(a.out, "State: %s\n", printerState(p))
	if since, ok := stateChanged(p); ok {
		fmt.Fprintf(a.out, "State changed: %s\n", humanize.Time(since))
	}
	fmt.Fprintf(a.out, "Accepting jobs: %s\n", optionOr(p, "printer-is-accepting-jobs", "unknown"))
	fmt.Fprintf(a.out, "Ink level: %s\n", inkLevels(p))

	if allOptions {
		names := make([]string, 0, len(p.Options))
		for name := range p.Options {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(a.out, "\n%s\n", a.colors.Bold(fmt.Sprintf("Options (%d):", len(names))))
		for _, name := range names {
			fmt.Fprintf(a.out, "%s: %s\n", name, p.Options[name])
		}
	}
	return nil
}

func optionOr(p printing.Printer, name, fallback string) string {
	if v, ok := p.Option(name); ok && v != "" {
		return v
	}
	return fallback
}

func printerState(p printing.Printer) string {
	switch optionOr(p, "printer-state", "") {
	case "3":
		return "idle"
	case "4":
		return "printing"
	case "5":
		return "stopped"
	}
	return "unknown"
}

func stateChanged(p printing.Printer) (time.Time, bool) {
	v, ok := p.Option("printer-state-change-time")
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// inkLevels reports every marker as a percentage of its low..high range.
func inkLevels(p printing.Printer) string {
	levels := splitList(optionOr(p, "marker-levels", ""))
	if len(levels) == 0 {
		return "unknown"
	}
	lows := splitList(optionOr(p, "marker-low-levels", ""))
	highs := splitList(optionOr(p, "marker-high-levels", ""))

	out := make([]string, 0, len(levels))
	for i, raw := range levels {
		level, err := strconv.Atoi(raw)
		if err != nil || level < 0 {
			out = append(out, "unknown")
			continue
		}
		low, high := 0, 100
		if i < len(lows) {
			if n, err := strconv.Atoi(lows[i]); err == nil {
				low = n
			}
		}
		if i < len(highs) {
			if n, err := strconv.Atoi(highs[i]); err == nil {
				high = n
			}
		}
		if high <= low || level < low {
			out = append(out, "unknown")
			continue
		}
		pct := (level - low) * 100 / (high - low)
		out = append(out, strconv.Itoa(min(pct, 100))+"%")
	}
	return strings.Join(out, ", ")
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
