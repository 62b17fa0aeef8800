package cups

import (
	"strconv"
	"strings"

	"paperjet/internal/options"
)

// Option keys understood by the spooler.
const (
	KeyCopies         = "copies"
	KeyFinishings     = "finishings"
	KeyMedia          = "media"
	KeyMediaSource    = "media-source"
	KeyMediaType      = "media-type"
	KeyNumberUp       = "number-up"
	KeyOrientation    = "orientation-requested"
	KeyPrintColorMode = "print-color-mode"
	KeyPrintQuality   = "print-quality"
	KeySides          = "sides"
)

const (
	FinishingsNone   = "3"
	FinishingsStaple = "4"
	FinishingsPunch  = "5"
	FinishingsCover  = "6"
	FinishingsBind   = "7"
	FinishingsFold   = "10"
	FinishingsTrim   = "11"
)

var finishingValues = map[options.Finishing]string{
	options.FinishingBind:   FinishingsBind,
	options.FinishingCover:  FinishingsCover,
	options.FinishingFold:   FinishingsFold,
	options.FinishingPunch:  FinishingsPunch,
	options.FinishingStaple: FinishingsStaple,
	options.FinishingTrim:   FinishingsTrim,
}

var mediaValues = map[options.MediaSize]string{
	options.MediaA3:         "iso_a3_297x420mm",
	options.MediaA3Plus:     "na_super-b_13x19in",
	options.MediaA4:         "iso_a4_210x297mm",
	options.MediaA5:         "iso_a5_148x210mm",
	options.MediaA6:         "iso_a6_105x148mm",
	options.MediaGovtLetter: "na_govt-letter_8x10in",
	options.MediaLetter:     "na_letter_8.5x11in",
	options.MediaLegal:      "na_legal_8.5x14in",
	options.MediaTabloid:    "na_ledger_11x17in",
	options.MediaIndex3x5:   "na_index-3x5_3x5in",
	options.MediaIndex4x6:   "na_index-4x6_4x6in",
	options.MediaIndex5x7:   "na_5x7_5x7in",
	options.MediaEnvelope10: "na_number-10_4.125x9.5in",
	options.MediaEnvelopeDL: "iso_dl_110x220mm",
	options.MediaPhoto3R:    "oe_photo-l_3.5x5in",
}

var mediaSourceValues = map[options.MediaSource]string{
	options.SourceAuto:   "auto",
	options.SourceManual: "manual",
}

var mediaTypeValues = map[options.MediaType]string{
	options.TypeAuto:        "auto",
	options.TypeEnvelope:    "envelope",
	options.TypeLabels:      "labels",
	options.TypeLetterhead:  "stationery-letterhead",
	options.TypePhoto:       "photographic",
	options.TypePhotoGlossy: "photographic-glossy",
	options.TypePhotoMatte:  "photographic-matte",
	options.TypePlain:       "stationery",
	options.TypeTransparent: "transparency",
}

var orientationValues = map[options.Orientation]string{
	options.Portrait:  "3",
	options.Landscape: "4",
}

var colorModeValues = map[options.ColorMode]string{
	options.ColorAuto:       "auto",
	options.ColorMonochrome: "monochrome",
	options.ColorColor:      "color",
}

var qualityValues = map[options.Quality]string{
	options.QualityDraft:  "3",
	options.QualityNormal: "4",
	options.QualityHigh:   "5",
}

var sidesValues = map[options.SidesMode]string{
	options.OneSided:          "one-sided",
	options.TwoSidedPortrait:  "two-sided-long-edge",
	options.TwoSidedLandscape: "two-sided-short-edge",
}

// Encode returns the spooler key and value of opt.
func Encode(opt options.Option) (name, value string) {
	switch v := opt.(type) {
	case options.Copies:
		return KeyCopies, strconv.Itoa(int(v))
	case options.Finishings:
		return KeyFinishings, encodeFinishings(v)
	case options.MediaSize:
		return KeyMedia, mediaValues[v]
	case options.MediaSource:
		return KeyMediaSource, mediaSourceValues[v]
	case options.MediaType:
		return KeyMediaType, mediaTypeValues[v]
	case options.NumberUp:
		return KeyNumberUp, strconv.Itoa(int(v))
	case options.Orientation:
		return KeyOrientation, orientationValues[v]
	case options.ColorMode:
		return KeyPrintColorMode, colorModeValues[v]
	case options.Quality:
		return KeyPrintQuality, qualityValues[v]
	case options.SidesMode:
		return KeySides, sidesValues[v]
	}
	panic("cups: unhandled option type " + opt.OptionName())
}

func encodeFinishings(f options.Finishings) string {
	if len(f) == 0 {
		return FinishingsNone
	}
	codes := make([]string, len(f))
	for i, v := range f {
		codes[i] = finishingValues[v]
	}
	return strings.Join(codes, ",")
}
