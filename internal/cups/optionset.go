package cups

import (
	"context"

	"paperjet/internal/native"
	"paperjet/internal/options"
	"paperjet/internal/printerr"
)

// Options is a native option array, grown only through the spooler's
// add-option call.
type Options struct {
	api  native.Spooler
	opts native.Span[native.Option]
}

func NewOptions(api native.Spooler) *Options {
	return &Options{api: api}
}

// Add appends the spooler encoding of opt, replacing an option with the
// same key.
func (o *Options) Add(opt options.Option) {
	name, value := Encode(opt)
	o.opts.N = o.api.AddOption(name, value, o.opts.N, &o.opts.Ptr)
}

// Validate reports whether d accepts both the key and the encoded value of
// opt.
func (o *Options) Validate(ctx context.Context, d *Destination, info *DestinationInfo, opt options.Option) bool {
	name, value := Encode(opt)
	return o.api.CheckDestSupported(ctx, d.native(), info.handle(), name, value)
}

func (o *Options) Len() int {
	return o.opts.Len()
}

// All returns a copy of the name/value pairs in insertion order.
func (o *Options) All() []native.Option {
	return append([]native.Option(nil), o.opts.Slice(o.api.Heap())...)
}

// Close frees the array. Further calls do nothing.
func (o *Options) Close() error {
	if o == nil || o.opts.IsNull() {
		return nil
	}
	o.api.FreeOptions(o.opts.N, o.opts.Ptr)
	o.opts = native.Span[native.Option]{}
	return nil
}

// BuildOptions validates and adds every present option of po in order. The
// first option d does not accept aborts with an UnsupportedOption error and
// nothing is left allocated.
func BuildOptions(ctx context.Context, d *Destination, info *DestinationInfo, po options.PrintOptions) (*Options, error) {
	set := NewOptions(d.api)
	for _, opt := range po.List() {
		if !set.Validate(ctx, d, info, opt) {
			set.Close()
			return nil, printerr.UnsupportedOption(opt.OptionName(), opt.String())
		}
		set.Add(opt)
	}
	return set, nil
}
