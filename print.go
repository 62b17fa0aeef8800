package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"paperjet/internal/options"
	"paperjet/internal/pdfdoc"
	"paperjet/internal/printerr"
	"paperjet/internal/printing"
)

func (a *app) print(ctx context.Context, cmd command) error {
	docs, err := a.readFiles(cmd.files)
	if err != nil {
		return err
	}
	if cmd.duplex {
		if err := a.checkDuplexOptions(cmd.opts); err != nil {
			return err
		}
	}
	p, err := a.selectPrinter(ctx, cmd.printerID, cmd.printerName)
	if err != nil {
		return err
	}

	docs, err = pdfdoc.Transform(docs, pdfdoc.Plan{From: cmd.from, To: cmd.to, Duplex: cmd.duplex})
	if err != nil {
		return err
	}
	if cmd.duplex {
		return a.printDuplex(ctx, docs[0], docs[1], p, cmd.opts)
	}

	if err := a.platform.Print(ctx, readers(docs...), p, cmd.opts); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Files have been submitted for printing.")
	return nil
}

func (a *app) readFiles(paths []string) ([][]byte, error) {
	docs := make([][]byte, 0, len(paths))
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(a.in)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, printerr.FileOpen(a.colors.Yellow(path), err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

func (a *app) checkDuplexOptions(o options.PrintOptions) error {
	var name string
	switch {
	case o.Copies != nil:
		name = options.Copies(0).OptionName()
	case o.NumberUp != nil:
		name = options.NumberUp(0).OptionName()
	case o.SidesMode != nil:
		name = options.SidesMode(0).OptionName()
	default:
		return nil
	}
	return fmt.Errorf("option '%s' is not supported in duplex mode", a.colors.Yellow(name))
}

// printDuplex submits the front side, waits for the user to turn the
// printed stack over, then submits the back side.
func (a *app) printDuplex(ctx context.Context, front, back []byte, p printing.Printer, o options.PrintOptions) error {
	pages, err := pdfdoc.PageCount(front)
	if err != nil {
		return err
	}
	unit := "sheets"
	if pages == 1 {
		unit = "sheet"
	}
	fmt.Fprintf(a.out, "You will need %s %s of paper.\n", a.colors.Bold(a.colors.Highlight(strconv.Itoa(pages))), unit)

	fmt.Fprintln(a.out, "\nPrinting the front side...")
	if err := a.platform.Print(ctx, readers(front), p, o); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "The front side has been submitted.")

	fmt.Fprintf(a.out, "\nOnce the printing has finished, turn the pages over and press %s: ", a.colors.Bold(a.colors.Highlight("Enter")))
	if _, err := a.in.ReadString('\n'); err != nil && err != io.EOF {
		return err
	}

	fmt.Fprintln(a.out, "\nPrinting the back side...")
	if err := a.platform.Print(ctx, readers(back), p, o); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "The back side has been submitted.")
	return nil
}

func readers(docs ...[]byte) []io.Reader {
	out := make([]io.Reader, len(docs))
	for i, d := range docs {
		out[i] = bytes.NewReader(d)
	}
	return out
}
