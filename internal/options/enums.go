package options

import (
	"fmt"
	"strconv"
	"strings"
)

// Option is one present print option. The set of implementations is closed.
type Option interface {
	// OptionName is the lowercase human name of the option, like "media size".
	OptionName() string
	// String is the value in the vocabulary of the command line flags.
	String() string
	isOption()
}

type Copies int

func (Copies) OptionName() string { return "copies" }
func (c Copies) String() string   { return strconv.Itoa(int(c)) }
func (Copies) isOption()          {}

type NumberUp int

func (NumberUp) OptionName() string { return "number up" }
func (n NumberUp) String() string   { return strconv.Itoa(int(n)) }
func (NumberUp) isOption()          {}

type Finishing int

const (
	FinishingBind Finishing = iota + 1
	FinishingCover
	FinishingFold
	FinishingPunch
	FinishingStaple
	FinishingTrim
)

var finishingNames = []string{"bind", "cover", "fold", "punch", "staple", "trim"}

func (f Finishing) String() string { return enumName(finishingNames, f) }

// Finishings is the ordered list of finishing processes. An empty list means
// no finishing.
type Finishings []Finishing

func (Finishings) OptionName() string { return "finishings" }
func (Finishings) isOption()          {}

func (f Finishings) String() string {
	if len(f) == 0 {
		return "none"
	}
	parts := make([]string, len(f))
	for i, v := range f {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

// ParseFinishings parses a comma separated list. "none" yields an empty,
// non-nil list.
func ParseFinishings(s string) (Finishings, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return Finishings{}, nil
	}
	out := Finishings{}
	for _, part := range strings.Split(s, ",") {
		f, err := parseEnum[Finishing]("finishing", finishingNames, part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

type MediaSize int

const (
	MediaA3 MediaSize = iota + 1
	MediaA3Plus
	MediaA4
	MediaA5
	MediaA6
	MediaIndex3x5
	MediaIndex4x6
	MediaIndex5x7
	MediaGovtLetter
	MediaEnvelope10
	MediaEnvelopeDL
	MediaLegal
	MediaLetter
	MediaPhoto3R
	MediaTabloid
)

var mediaSizeNames = []string{
	"a3", "a3-plus", "a4", "a5", "a6",
	"index-3x5", "index-4x6", "index-5x7", "govt-letter",
	"envelope-10", "envelope-dl", "legal", "letter", "photo-3r", "tabloid",
}

func (MediaSize) OptionName() string { return "media size" }
func (m MediaSize) String() string   { return enumName(mediaSizeNames, m) }
func (MediaSize) isOption()          {}

func ParseMediaSize(s string) (MediaSize, error) {
	return parseEnum[MediaSize]("media size", mediaSizeNames, s)
}

type MediaSource int

const (
	SourceAuto MediaSource = iota + 1
	SourceManual
)

var mediaSourceNames = []string{"auto", "manual"}

func (MediaSource) OptionName() string { return "media source" }
func (m MediaSource) String() string   { return enumName(mediaSourceNames, m) }
func (MediaSource) isOption()          {}

func ParseMediaSource(s string) (MediaSource, error) {
	return parseEnum[MediaSource]("media source", mediaSourceNames, s)
}

type MediaType int

const (
	TypeAuto MediaType = iota + 1
	TypeEnvelope
	TypeLabels
	TypeLetterhead
	TypePhoto
	TypePhotoGlossy
	TypePhotoMatte
	TypePlain
	TypeTransparent
)

var mediaTypeNames = []string{
	"auto", "envelope", "labels", "letterhead",
	"photo", "photo-glossy", "photo-matte", "plain", "transparent",
}

func (MediaType) OptionName() string { return "media type" }
func (m MediaType) String() string   { return enumName(mediaTypeNames, m) }
func (MediaType) isOption()          {}

func ParseMediaType(s string) (MediaType, error) {
	return parseEnum[MediaType]("media type", mediaTypeNames, s)
}

type Orientation int

const (
	Portrait Orientation = iota + 1
	Landscape
)

var orientationNames = []string{"portrait", "landscape"}

func (Orientation) OptionName() string { return "orientation" }
func (o Orientation) String() string   { return enumName(orientationNames, o) }
func (Orientation) isOption()          {}

func ParseOrientation(s string) (Orientation, error) {
	return parseEnum[Orientation]("orientation", orientationNames, s)
}

type ColorMode int

const (
	ColorAuto ColorMode = iota + 1
	ColorMonochrome
	ColorColor
)

var colorModeNames = []string{"auto", "monochrome", "color"}

func (ColorMode) OptionName() string { return "color mode" }
func (c ColorMode) String() string   { return enumName(colorModeNames, c) }
func (ColorMode) isOption()          {}

func ParseColorMode(s string) (ColorMode, error) {
	return parseEnum[ColorMode]("color mode", colorModeNames, s)
}

type Quality int

const (
	QualityDraft Quality = iota + 1
	QualityNormal
	QualityHigh
)

var qualityNames = []string{"draft", "normal", "high"}

func (Quality) OptionName() string { return "quality" }
func (q Quality) String() string   { return enumName(qualityNames, q) }
func (Quality) isOption()          {}

func ParseQuality(s string) (Quality, error) {
	return parseEnum[Quality]("quality", qualityNames, s)
}

type SidesMode int

const (
	OneSided SidesMode = iota + 1
	TwoSidedPortrait
	TwoSidedLandscape
)

var sidesModeNames = []string{"one-sided", "two-sided-portrait", "two-sided-landscape"}

func (SidesMode) OptionName() string { return "sides mode" }
func (s SidesMode) String() string   { return enumName(sidesModeNames, s) }
func (SidesMode) isOption()          {}

func ParseSidesMode(s string) (SidesMode, error) {
	return parseEnum[SidesMode]("sides mode", sidesModeNames, s)
}

// Values returns the accepted flag values of an enum option, for help text.
func Values(o Option) []string {
	switch o.(type) {
	case Finishings:
		return append([]string{"none"}, finishingNames...)
	case MediaSize:
		return mediaSizeNames
	case MediaSource:
		return mediaSourceNames
	case MediaType:
		return mediaTypeNames
	case Orientation:
		return orientationNames
	case ColorMode:
		return colorModeNames
	case Quality:
		return qualityNames
	case SidesMode:
		return sidesModeNames
	}
	return nil
}

func enumName[T ~int](names []string, v T) string {
	if v < 1 || int(v) > len(names) {
		return "unknown(" + strconv.Itoa(int(v)) + ")"
	}
	return names[v-1]
}

func parseEnum[T ~int](kind string, names []string, s string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return T(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}

// ParsePositive parses the value of a counting option like copies.
func ParsePositive(kind, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", kind, s, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", kind, n)
	}
	return n, nil
}
