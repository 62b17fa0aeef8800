package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"paperjet/internal/printing"
	"paperjet/internal/snapshot"
)

// sortedPrinters enumerates printers in list order and remembers that order
// so later IDs refer to the same printers.
func (a *app) sortedPrinters(ctx context.Context) ([]printing.Printer, error) {
	printers, err := a.platform.Printers(ctx)
	if err != nil {
		return nil, err
	}
	printers = printing.Sorted(printers)
	a.withSnapshot(ctx, func(s *snapshot.Store) error {
		return s.Save(ctx, a.server, printers)
	})
	return printers, nil
}

// snapshotPrinters returns the printers of a recent listing, if any.
func (a *app) snapshotPrinters(ctx context.Context) []printing.Printer {
	var printers []printing.Printer
	a.withSnapshot(ctx, func(s *snapshot.Store) error {
		p, ok, err := s.Load(ctx, a.server)
		if ok {
			printers = p
		}
		return err
	})
	return printers
}

// withSnapshot runs fn on the snapshot store. The snapshot is a shortcut
// only, so failures are logged and otherwise ignored.
func (a *app) withSnapshot(ctx context.Context, fn func(*snapshot.Store) error) {
	if a.cfg.SnapshotPath == "" || a.cfg.SnapshotTTL <= 0 {
		return
	}
	s, err := snapshot.Open(ctx, a.cfg.SnapshotPath, a.cfg.SnapshotTTL)
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	defer s.Close()
	if err := fn(s); err != nil {
		log.Printf("snapshot: %v", err)
	}
}

// printerByID returns the printer at the 1-based position id of the list
// output. A recent snapshot answers first; the printer is then looked up
// again so the result reflects the spooler's current state.
func (a *app) printerByID(ctx context.Context, id int) (printing.Printer, bool) {
	if id < 1 {
		return printing.Printer{}, false
	}
	if snap := a.snapshotPrinters(ctx); id <= len(snap) {
		if p, ok := a.platform.Printer(ctx, snap[id-1].Identifier); ok {
			return p, true
		}
	}
	printers, err := a.sortedPrinters(ctx)
	if err != nil || id > len(printers) {
		return printing.Printer{}, false
	}
	return printers[id-1], true
}

func (a *app) printerByName(ctx context.Context, name string) (printing.Printer, bool) {
	if snap := a.snapshotPrinters(ctx); len(snap) > 0 {
		if entry, ok := printing.FindByName(snap, name); ok {
			if p, ok := a.platform.Printer(ctx, entry.Identifier); ok {
				return p, true
			}
		}
	}
	printers, err := a.platform.Printers(ctx)
	if err != nil {
		return printing.Printer{}, false
	}
	return printing.FindByName(printers, name)
}

// selectPrinter resolves an ID, then a name, falling back to the default
// printer when neither is given.
func (a *app) selectPrinter(ctx context.Context, id int, name string) (printing.Printer, error) {
	switch {
	case id != 0:
		if p, ok := a.printerByID(ctx, id); ok {
			return p, nil
		}
		return printing.Printer{}, a.notFoundByID(id)
	case name != "":
		if p, ok := a.printerByName(ctx, name); ok {
			return p, nil
		}
		return printing.Printer{}, fmt.Errorf("could not find a printer by the name: '%s'", a.colors.Yellow(name))
	}
	if p, ok := a.platform.DefaultPrinter(ctx); ok {
		return p, nil
	}
	return printing.Printer{}, fmt.Errorf("no default printer is available")
}

// printerByCriteria treats a number as a list ID and anything else as a
// name.
func (a *app) printerByCriteria(ctx context.Context, criteria string) (printing.Printer, error) {
	criteria = strings.TrimSpace(criteria)
	if id, err := strconv.Atoi(criteria); err == nil {
		if p, ok := a.printerByID(ctx, id); ok {
			return p, nil
		}
		return printing.Printer{}, a.notFoundByID(id)
	}
	return a.selectPrinter(ctx, 0, criteria)
}

func (a *app) notFoundByID(id int) error {
	return fmt.Errorf("could not find a printer by the ID: '%s'", a.colors.Yellow(strconv.Itoa(id)))
}
