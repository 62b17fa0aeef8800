// Package options holds the print options a caller can request for a job.
package options

import (
	"errors"
	"fmt"
)

// PrintOptions is the set of options for one submission. Every field is
// independently optional; nil means the option is not sent at all.
//
// Finishings distinguishes nil (not sent) from an empty non-nil slice
// (explicitly no finishing).
type PrintOptions struct {
	Copies      *int
	Finishings  []Finishing
	MediaSize   *MediaSize
	MediaSource *MediaSource
	MediaType   *MediaType
	NumberUp    *int
	Orientation *Orientation
	ColorMode   *ColorMode
	Quality     *Quality
	SidesMode   *SidesMode
}

// Some returns a pointer to v, for filling PrintOptions fields.
func Some[T any](v T) *T {
	return &v
}

// Validate checks the numeric ranges.
func (o PrintOptions) Validate() error {
	if o.Copies != nil && *o.Copies < 1 {
		return fmt.Errorf("copies must be at least 1, got %d", *o.Copies)
	}
	if o.NumberUp != nil && *o.NumberUp < 1 {
		return fmt.Errorf("number up must be at least 1, got %d", *o.NumberUp)
	}
	return nil
}

// IsZero reports whether no option is set.
func (o PrintOptions) IsZero() bool {
	return len(o.List()) == 0
}

// List returns the present options in submission order: copies,
// finishings, media size, media source, media type, number up,
// orientation, color mode, quality, sides mode.
func (o PrintOptions) List() []Option {
	var out []Option
	if o.Copies != nil {
		out = append(out, Copies(*o.Copies))
	}
	if o.Finishings != nil {
		out = append(out, Finishings(o.Finishings))
	}
	if o.MediaSize != nil {
		out = append(out, *o.MediaSize)
	}
	if o.MediaSource != nil {
		out = append(out, *o.MediaSource)
	}
	if o.MediaType != nil {
		out = append(out, *o.MediaType)
	}
	if o.NumberUp != nil {
		out = append(out, NumberUp(*o.NumberUp))
	}
	if o.Orientation != nil {
		out = append(out, *o.Orientation)
	}
	if o.ColorMode != nil {
		out = append(out, *o.ColorMode)
	}
	if o.Quality != nil {
		out = append(out, *o.Quality)
	}
	if o.SidesMode != nil {
		out = append(out, *o.SidesMode)
	}
	return out
}

// Set stores opt in the matching field.
func (o *PrintOptions) Set(opt Option) {
	switch v := opt.(type) {
	case Copies:
		o.Copies = Some(int(v))
	case Finishings:
		o.Finishings = append([]Finishing{}, v...)
	case MediaSize:
		o.MediaSize = Some(v)
	case MediaSource:
		o.MediaSource = Some(v)
	case MediaType:
		o.MediaType = Some(v)
	case NumberUp:
		o.NumberUp = Some(int(v))
	case Orientation:
		o.Orientation = Some(v)
	case ColorMode:
		o.ColorMode = Some(v)
	case Quality:
		o.Quality = Some(v)
	case SidesMode:
		o.SidesMode = Some(v)
	}
}

var ErrUnknownOption = errors.New("unknown option")

// ParseNamed parses an option given by its spooler key, as accepted by
// "lp -o name=value". Values use the same vocabulary as the paperjet flags.
func ParseNamed(name, value string) (Option, error) {
	switch name {
	case "copies":
		n, err := ParsePositive("copies", value)
		return wrap(Copies(n), err)
	case "finishings":
		return wrap(ParseFinishings(value))
	case "media":
		return wrap(ParseMediaSize(value))
	case "media-source":
		return wrap(ParseMediaSource(value))
	case "media-type":
		return wrap(ParseMediaType(value))
	case "number-up":
		n, err := ParsePositive("number up", value)
		return wrap(NumberUp(n), err)
	case "orientation-requested":
		return wrap(ParseOrientation(value))
	case "print-color-mode":
		return wrap(ParseColorMode(value))
	case "print-quality":
		return wrap(ParseQuality(value))
	case "sides":
		return wrap(ParseSidesMode(value))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOption, name)
}

func wrap[T Option](v T, err error) (Option, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
