// Package printing is the printer-level API: enumerate printers, look them
// up and print documents on them.
package printing

import (
	"cmp"
	"slices"
	"strings"

	"paperjet/internal/cups"
)

// Printer is a snapshot of one destination taken at enumeration time.
type Printer struct {
	// Identifier names the destination in later lookups.
	Identifier string
	Name       string
	Instance   string
	IsDefault  bool
	Options    map[string]string
}

func (p Printer) Option(name string) (string, bool) {
	v, ok := p.Options[name]
	return v, ok
}

// HumanName is printer-info when the spooler reports one, else the
// identifier.
func (p Printer) HumanName() string {
	if v, ok := p.Option("printer-info"); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return p.Identifier
}

// FromDestination copies d into a Printer.
func FromDestination(d *cups.Destination) Printer {
	opts := d.Options()
	p := Printer{
		Identifier: d.Identifier(),
		Name:       d.Name(),
		Instance:   d.Instance(),
		IsDefault:  d.IsDefault(),
		Options:    make(map[string]string, len(opts)),
	}
	for _, o := range opts {
		p.Options[o.Name] = o.Value
	}
	return p
}

// Sorted returns a copy of printers with the default first and the rest
// ordered by name, then instance, comparing bytes.
func Sorted(printers []Printer) []Printer {
	out := slices.Clone(printers)
	slices.SortStableFunc(out, func(a, b Printer) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Instance, b.Instance)
	})
	return out
}

// FindByName matches name exactly against identifiers, then names, then
// human names.
func FindByName(printers []Printer, name string) (Printer, bool) {
	for _, key := range []func(Printer) string{
		func(p Printer) string { return p.Identifier },
		func(p Printer) string { return p.Name },
		Printer.HumanName,
	} {
		for _, p := range printers {
			if key(p) == name {
				return p, true
			}
		}
	}
	return Printer{}, false
}
