package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"paperjet/internal/config"
	"paperjet/internal/logging"
	"paperjet/internal/options"
	"paperjet/internal/printerr"
	"paperjet/internal/printing"
)

type lpArgs struct {
	server string
	dest   string
	copies int
	title  string
	opts   []string
	files  []string
}

var errShowHelp = errors.New("show help")

const usage = "Usage: lp [-h server] [-d destination] [-n copies] [-t title] [-o name=value ...] [file(s)]\n"

func main() {
	args, err := parseArgs(os.Args[1:])
	if errors.Is(err, errShowHelp) {
		fmt.Print(usage)
		return
	}
	if err != nil {
		fail(err)
	}

	cfg := config.Load()
	if args.server != "" {
		cfg.Server = args.server
	}
	switch {
	case args.title != "":
		cfg.JobTitle = args.title
	case len(args.files) > 0 && args.files[0] != "-":
		cfg.JobTitle = filepath.Base(args.files[0])
	default:
		cfg.JobTitle = "stdin"
	}
	closeLogs := logging.Setup(cfg)
	defer closeLogs()

	if err := submit(context.Background(), printing.Default(cfg), args, os.Stdin, os.Stdout); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "lp:", err)
	os.Exit(1)
}

// parseArgs accepts attached values ("-dOffice", "-n2") as well as separate
// ones.
func parseArgs(args []string) (lpArgs, error) {
	out := lpArgs{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--help" {
			return out, errShowHelp
		}
		if len(arg) < 2 || arg[0] != '-' {
			out.files = append(out.files, arg)
			continue
		}
		flag := arg[:2]
		value := arg[2:]
		takeValue := func() (string, error) {
			if value != "" {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing argument for %s", flag)
			}
			i++
			return args[i], nil
		}

		switch flag {
		case "-h", "-d", "-n", "-t", "-o":
		default:
			return out, fmt.Errorf("unknown option %q", arg)
		}
		v, err := takeValue()
		if err != nil {
			return out, err
		}
		switch flag {
		case "-h":
			out.server = v
		case "-d":
			out.dest = v
		case "-n":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return out, fmt.Errorf("invalid copies %q", v)
			}
			out.copies = n
		case "-t":
			out.title = v
		case "-o":
			out.opts = append(out.opts, splitOptionWords(v)...)
		}
	}
	if len(out.files) > 1 {
		for _, f := range out.files {
			if f == "-" {
				return out, fmt.Errorf("'-' can only be used for a single document")
			}
		}
	}
	return out, nil
}

// splitOptionWords splits "-o" values on spaces, keeping quoted values
// together.
func splitOptionWords(s string) []string {
	var words []string
	var cur strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

func splitOpt(opt string) (string, string) {
	name, value, _ := strings.Cut(opt, "=")
	return name, value
}

func buildOptions(args lpArgs) (options.PrintOptions, error) {
	var o options.PrintOptions
	for _, opt := range args.opts {
		name, value := splitOpt(opt)
		parsed, err := options.ParseNamed(name, value)
		if err != nil {
			return o, err
		}
		o.Set(parsed)
	}
	if args.copies > 0 {
		o.Copies = options.Some(args.copies)
	}
	return o, nil
}

func resolveDest(dest string) string {
	if dest != "" {
		return dest
	}
	for _, env := range []string{"LPDEST", "PRINTER"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

func submit(ctx context.Context, platform printing.Platform, args lpArgs, stdin io.Reader, out io.Writer) error {
	o, err := buildOptions(args)
	if err != nil {
		return err
	}

	var p printing.Printer
	var ok bool
	if dest := resolveDest(args.dest); dest != "" {
		if p, ok = platform.Printer(ctx, dest); !ok {
			return printerr.PrinterNotFound(dest)
		}
	} else if p, ok = platform.DefaultPrinter(ctx); !ok {
		return fmt.Errorf("no default destination available")
	}

	var docs []io.Reader
	if len(args.files) == 0 || args.files[0] == "-" {
		docs = append(docs, stdin)
	} else {
		for _, name := range args.files {
			f, err := os.Open(name)
			if err != nil {
				return printerr.FileOpen(name, err)
			}
			defer f.Close()
			docs = append(docs, f)
		}
	}

	if err := platform.Print(ctx, docs, p, o); err != nil {
		return err
	}
	fmt.Fprintf(out, "request queued on %s (%d file(s))\n", p.Identifier, len(docs))
	return nil
}
