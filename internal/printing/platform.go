package printing

import (
	"context"
	"io"

	"paperjet/internal/options"
)

// Platform is the print system of the running OS.
type Platform interface {
	// Printers lists every printer. No printers is an empty list.
	Printers(ctx context.Context) ([]Printer, error)
	Printer(ctx context.Context, name string) (Printer, bool)
	DefaultPrinter(ctx context.Context) (Printer, bool)
	// Print submits docs as one job, one document per reader, in order.
	Print(ctx context.Context, docs []io.Reader, p Printer, o options.PrintOptions) error
}
