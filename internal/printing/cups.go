package printing

import (
	"context"
	"io"
	"log"

	"paperjet/internal/config"
	"paperjet/internal/cups"
	"paperjet/internal/logging"
	"paperjet/internal/native"
	"paperjet/internal/options"
	"paperjet/internal/printerr"
)

// CUPS is the Platform over a CUPS-style spooler.
type CUPS struct {
	api   native.Spooler
	title string
	user  string
}

type CUPSOption func(*CUPS)

// WithJobTitle sets the title of submitted jobs, which also prefixes their
// document names.
func WithJobTitle(title string) CUPSOption {
	return func(c *CUPS) {
		if title != "" {
			c.title = title
		}
	}
}

// WithJobUser sets the user recorded in the job log.
func WithJobUser(user string) CUPSOption {
	return func(c *CUPS) {
		c.user = user
	}
}

func NewCUPS(api native.Spooler, opts ...CUPSOption) *CUPS {
	c := &CUPS{api: api, title: config.DefaultJobTitle}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var _ Platform = (*CUPS)(nil)

func (c *CUPS) Printers(ctx context.Context) ([]Printer, error) {
	dests := cups.OpenDestinations(ctx, c.api)
	defer dests.Close()
	printers := make([]Printer, 0, dests.Len())
	for d := range dests.All() {
		printers = append(printers, FromDestination(d))
	}
	return printers, nil
}

func (c *CUPS) Printer(ctx context.Context, name string) (Printer, bool) {
	d, ok, err := cups.LookupDestination(ctx, c.api, name)
	if err != nil || !ok {
		return Printer{}, false
	}
	defer d.Close()
	return FromDestination(d), true
}

func (c *CUPS) DefaultPrinter(ctx context.Context) (Printer, bool) {
	d, ok := cups.DefaultDestination(ctx, c.api)
	if !ok {
		return Printer{}, false
	}
	defer d.Close()
	return FromDestination(d), true
}

// Print looks p up again by identifier, checks every option against the
// printer's capabilities, then creates the job and uploads docs. Nothing is
// submitted when an option is unsupported. A job that fails after creation
// is cancelled.
func (c *CUPS) Print(ctx context.Context, docs []io.Reader, p Printer, o options.PrintOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}
	dest, ok, err := cups.LookupDestination(ctx, c.api, p.Identifier)
	if err != nil {
		return err
	}
	if !ok {
		return printerr.PrinterNotFound(p.Identifier)
	}
	info, ok := cups.CopyDestinationInfo(ctx, dest)
	if !ok {
		dest.Close()
		return printerr.InformationMissing("destination info")
	}
	opts, err := cups.BuildOptions(ctx, dest, info, o)
	if err != nil {
		info.Close()
		dest.Close()
		return err
	}
	job, err := cups.CreateJob(ctx, c.title, dest, info, opts)
	if err != nil {
		opts.Close()
		info.Close()
		dest.Close()
		return err
	}
	defer job.Close()

	err = job.AddDocuments(ctx, docs...)
	if err == nil {
		err = job.Print(ctx)
	}
	c.logJob(job, o, err)
	return err
}

func (c *CUPS) logJob(job *cups.Job, o options.PrintOptions, err error) {
	entry := logging.JobLogEntry{
		JobID:     job.ID(),
		User:      c.user,
		Printer:   job.Destination().Identifier(),
		Title:     job.Title(),
		Documents: job.Documents(),
		Bytes:     job.BytesSent(),
	}
	if o.Copies != nil {
		entry.Copies = *o.Copies
	}
	if err != nil {
		entry.Result = "cancelled"
		log.Printf("job %d on %s failed: %v", job.ID(), entry.Printer, err)
	}
	logging.WriteJob(entry)
}
