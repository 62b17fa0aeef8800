package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"paperjet/internal/options"
)

const usage = `Usage:
  paperjet list
  paperjet display <id|name> [-o|--options]
  paperjet print <files...> [flags]

Devices:
  -p, --printer-id ID        printer by its position in 'paperjet list'
      --printer-name NAME    printer by name
File manipulations (PDF only):
      --duplex               print both sides by turning the pages over
      --from N, --to N       print pages N to M only
Printing options:
  -c, --copies N
  -f, --finishings LIST      bind, cover, fold, none, punch, staple, trim
  -s, --size SIZE            a4, letter, legal, ...
  -r, --source SOURCE        auto, manual
  -t, --media-type TYPE
  -u, --number-up N
  -o, --orientation MODE     portrait, landscape
  -m, --color-mode MODE      auto, monochrome, color
  -q, --quality QUALITY      draft, normal, high
  -d, --sides-mode MODE      one-sided, two-sided-portrait, two-sided-landscape
      --title TITLE          job title
`

var errUsage = errors.New("missing command")

type command struct {
	name string

	// display
	criteria   string
	allOptions bool

	// print
	files       []string
	printerID   int
	printerName string
	from        *int
	to          *int
	duplex      bool
	title       string
	opts        options.PrintOptions
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}
	cmd := command{name: args[0]}
	rest := args[1:]
	switch cmd.name {
	case "help", "-h", "--help":
		cmd.name = "help"
		return cmd, nil
	case "list":
		if len(rest) > 0 {
			return cmd, fmt.Errorf("unexpected argument %q", rest[0])
		}
		return cmd, nil
	case "display":
		return parseDisplay(cmd, rest)
	case "print":
		return parsePrint(cmd, rest)
	}
	return cmd, fmt.Errorf("unknown command %q", cmd.name)
}

func parseDisplay(cmd command, args []string) (command, error) {
	for _, arg := range args {
		switch arg {
		case "-o", "--options":
			cmd.allOptions = true
		default:
			if strings.HasPrefix(arg, "-") {
				return cmd, fmt.Errorf("unknown flag %s", arg)
			}
			if cmd.criteria != "" {
				return cmd, fmt.Errorf("unexpected argument %q", arg)
			}
			cmd.criteria = arg
		}
	}
	if cmd.criteria == "" {
		return cmd, fmt.Errorf("missing printer ID or name")
	}
	return cmd, nil
}

func parsePrint(cmd command, args []string) (command, error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			cmd.files = append(cmd.files, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			cmd.files = append(cmd.files, arg)
			continue
		}

		flag, value, attached := strings.Cut(arg, "=")
		next := func() (string, error) {
			if attached {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing argument for %s", flag)
			}
			i++
			return args[i], nil
		}

		var err error
		switch flag {
		case "--duplex":
			cmd.duplex = true
		case "-p", "--printer-id":
			var v string
			if v, err = next(); err == nil {
				cmd.printerID, err = options.ParsePositive("printer ID", v)
			}
		case "--printer-name":
			cmd.printerName, err = next()
		case "--from":
			cmd.from, err = pageArg(next)
		case "--to":
			cmd.to, err = pageArg(next)
		case "--title":
			cmd.title, err = next()
		default:
			err = parsePrintOption(&cmd.opts, flag, next)
		}
		if err != nil {
			return cmd, err
		}
	}

	if cmd.printerID != 0 && cmd.printerName != "" {
		return cmd, fmt.Errorf("--printer-id and --printer-name cannot be used together")
	}
	if len(cmd.files) == 0 {
		return cmd, fmt.Errorf("at least one file must be specified")
	}
	return cmd, nil
}

func pageArg(next func() (string, error)) (*int, error) {
	v, err := next()
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("invalid page number %q", v)
	}
	return &n, nil
}

func parsePrintOption(o *options.PrintOptions, flag string, next func() (string, error)) error {
	var parse func(string) (options.Option, error)
	switch flag {
	case "-c", "--copies":
		parse = func(v string) (options.Option, error) {
			n, err := options.ParsePositive("copies", v)
			return options.Copies(n), err
		}
	case "-f", "--finishings":
		parse = func(v string) (options.Option, error) { return options.ParseFinishings(v) }
	case "-s", "--size":
		parse = func(v string) (options.Option, error) { return options.ParseMediaSize(v) }
	case "-r", "--source":
		parse = func(v string) (options.Option, error) { return options.ParseMediaSource(v) }
	case "-t", "--media-type":
		parse = func(v string) (options.Option, error) { return options.ParseMediaType(v) }
	case "-u", "--number-up":
		parse = func(v string) (options.Option, error) {
			n, err := options.ParsePositive("number up", v)
			return options.NumberUp(n), err
		}
	case "-o", "--orientation":
		parse = func(v string) (options.Option, error) { return options.ParseOrientation(v) }
	case "-m", "--color-mode":
		parse = func(v string) (options.Option, error) { return options.ParseColorMode(v) }
	case "-q", "--quality":
		parse = func(v string) (options.Option, error) { return options.ParseQuality(v) }
	case "-d", "--sides-mode":
		parse = func(v string) (options.Option, error) { return options.ParseSidesMode(v) }
	default:
		return fmt.Errorf("unknown flag %s", flag)
	}

	v, err := next()
	if err != nil {
		return err
	}
	opt, err := parse(v)
	if err != nil {
		return err
	}
	o.Set(opt)
	return nil
}
