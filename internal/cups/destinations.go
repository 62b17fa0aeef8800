// Package cups wraps the native spooler API in types that own their
// allocations. Every type here frees what it allocated exactly once, and
// views derived from an array never outlive it.
//
// None of the types are safe for concurrent use.
package cups

import (
	"context"
	"errors"
	"iter"
	"strings"

	"paperjet/internal/native"
	"paperjet/internal/printerr"
)

// ErrInUse is returned when releasing a registry that a job still holds a
// destination of.
var ErrInUse = errors.New("destination array is still in use by a job")

// Destinations is the array of every destination known to the spooler.
type Destinations struct {
	api    native.Spooler
	dests  native.Span[native.Dest]
	leases int
	freed  bool
}

// OpenDestinations queries the spooler once. An unreachable spooler yields
// an empty registry.
func OpenDestinations(ctx context.Context, api native.Spooler) *Destinations {
	p, n := api.GetDests(ctx)
	if n < 0 {
		n = 0
	}
	return &Destinations{api: api, dests: native.Span[native.Dest]{Ptr: p, N: n}}
}

func (d *Destinations) Len() int {
	if d == nil || d.freed {
		return 0
	}
	return d.dests.Len()
}

// Get returns a view of element i. Every i outside [0, Len) is not found.
func (d *Destinations) Get(i int) (*Destination, bool) {
	if d == nil || d.freed {
		return nil, false
	}
	rec, ok := d.dests.At(d.api.Heap(), i)
	if !ok {
		return nil, false
	}
	return &Destination{api: d.api, rec: rec, parent: d}, true
}

// All yields a view of every destination in spooler order.
func (d *Destinations) All() iter.Seq[*Destination] {
	return func(yield func(*Destination) bool) {
		for i := 0; i < d.Len(); i++ {
			dest, ok := d.Get(i)
			if !ok || !yield(dest) {
				return
			}
		}
	}
}

// Close frees the array. Closing twice, or closing an empty registry, does
// nothing. While a job holds one of its destinations Close returns
// ErrInUse and frees nothing.
func (d *Destinations) Close() error {
	if d == nil || d.freed {
		return nil
	}
	if d.leases > 0 {
		return ErrInUse
	}
	d.freed = true
	if !d.dests.IsNull() {
		d.api.FreeDests(d.dests.N, d.dests.Ptr)
	}
	d.dests = native.Span[native.Dest]{}
	return nil
}

// Destination is one native destination record. It is either a view into a
// Destinations array or the only element of its own allocation.
type Destination struct {
	api    native.Spooler
	rec    *native.Dest
	parent *Destinations
	own    native.Ptr
	closed bool
}

// LookupDestination fetches the destination with the given name. The name
// may carry an instance as "name/instance".
func LookupDestination(ctx context.Context, api native.Spooler, name string) (*Destination, bool, error) {
	if _, err := native.CString(name); err != nil {
		return nil, false, printerr.StringConversion(err)
	}
	if name == "" {
		return nil, false, nil
	}
	printer, instance, _ := strings.Cut(name, "/")
	d, ok := lookup(ctx, api, printer, instance)
	return d, ok, nil
}

// DefaultDestination fetches the default destination.
func DefaultDestination(ctx context.Context, api native.Spooler) (*Destination, bool) {
	return lookup(ctx, api, "", "")
}

func lookup(ctx context.Context, api native.Spooler, name, instance string) (*Destination, bool) {
	p := api.GetNamedDest(ctx, name, instance)
	if p.IsNull() {
		return nil, false
	}
	rec, ok := native.Span[native.Dest]{Ptr: p, N: 1}.At(api.Heap(), 0)
	if !ok {
		api.FreeDests(1, p)
		return nil, false
	}
	return &Destination{api: api, rec: rec, own: p}, true
}

func (d *Destination) native() *native.Dest {
	if d.closed || d.parent != nil && d.parent.freed {
		panic("cups: destination used after its allocation was released")
	}
	return d.rec
}

func (d *Destination) Name() string     { return d.native().Name }
func (d *Destination) Instance() string { return d.native().Instance }
func (d *Destination) IsDefault() bool  { return d.native().IsDefault }

// Identifier is the name, followed by "/instance" for instances.
func (d *Destination) Identifier() string {
	rec := d.native()
	if rec.Instance == "" {
		return rec.Name
	}
	return rec.Name + "/" + rec.Instance
}

func (d *Destination) Option(name string) (string, bool) {
	return d.native().Option(name)
}

// Options returns a copy of the destination's options.
func (d *Destination) Options() []native.Option {
	return append([]native.Option(nil), d.native().Options...)
}

func (d *Destination) SetDefault(v bool) {
	d.native().IsDefault = v
}

// SetOption sets an option on the native record in place.
func (d *Destination) SetOption(name, value string) {
	rec := d.native()
	rec.Options = native.SetOption(rec.Options, name, value)
}

// Close frees a destination that owns its allocation. For views into a
// Destinations array it does nothing.
func (d *Destination) Close() error {
	if d == nil || d.closed || d.parent != nil {
		return nil
	}
	d.closed = true
	d.api.FreeDests(1, d.own)
	d.own = native.Null
	return nil
}

func (d *Destination) acquire() {
	if d.parent != nil {
		d.parent.leases++
	}
}

func (d *Destination) release() {
	if d.parent != nil && d.parent.leases > 0 {
		d.parent.leases--
	}
}
