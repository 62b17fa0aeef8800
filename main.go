// Command paperjet lists printers, shows their details and submits
// documents for printing.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"paperjet/internal/config"
	"paperjet/internal/logging"
	"paperjet/internal/printing"
	"paperjet/internal/term"
)

type app struct {
	cfg         config.Config
	newPlatform func(config.Config) printing.Platform
	platform    printing.Platform
	server      string

	in     *bufio.Reader
	out    io.Writer
	colors term.Colors
}

func main() {
	cfg := config.Load()
	closeLogs := logging.Setup(cfg)
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:         cfg,
		newPlatform: printing.Default,
		server:      printing.ServerKey(cfg),
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		colors:      term.New(os.Stdout, cfg.Color),
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fail(err, term.New(os.Stderr, cfg.Color))
	}
}

func fail(err error, colors term.Colors) {
	fmt.Fprintln(os.Stderr, colors.Red("paperjet:"), err)
	os.Exit(1)
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, err := parseArgs(args)
	if err != nil {
		return err
	}
	if cmd.name == "help" {
		fmt.Fprint(a.out, usage)
		return nil
	}
	if cmd.title != "" {
		a.cfg.JobTitle = cmd.title
	}
	if a.platform == nil {
		a.platform = a.newPlatform(a.cfg)
	}

	switch cmd.name {
	case "list":
		return a.list(ctx)
	case "display":
		return a.display(ctx, cmd.criteria, cmd.allOptions)
	case "print":
		return a.print(ctx, cmd)
	}
	return fmt.Errorf("unknown command %q", cmd.name)
}
