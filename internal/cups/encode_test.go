package cups

import (
	"testing"

	"paperjet/internal/options"
)

func TestEncodeFinishings(t *testing.T) {
	tests := []struct {
		in   options.Finishings
		want string
	}{
		{options.Finishings{}, "3"},
		{options.Finishings{options.FinishingStaple}, "4"},
		{options.Finishings{options.FinishingStaple, options.FinishingBind, options.FinishingPunch}, "4,7,5"},
		{options.Finishings{options.FinishingFold, options.FinishingTrim, options.FinishingCover}, "10,11,6"},
	}
	for _, tc := range tests {
		name, value := Encode(tc.in)
		if name != "finishings" || value != tc.want {
			t.Fatalf("Encode(%v) = %q=%q, want finishings=%q", tc.in, name, value, tc.want)
		}
	}
}

func TestEncodeWireValues(t *testing.T) {
	tests := []struct {
		opt   options.Option
		name  string
		value string
	}{
		{options.Copies(1), "copies", "1"},
		{options.MediaA4, "media", "iso_a4_210x297mm"},
		{options.MediaA3Plus, "media", "na_super-b_13x19in"},
		{options.MediaGovtLetter, "media", "na_govt-letter_8x10in"},
		{options.MediaTabloid, "media", "na_ledger_11x17in"},
		{options.MediaIndex5x7, "media", "na_5x7_5x7in"},
		{options.MediaEnvelope10, "media", "na_number-10_4.125x9.5in"},
		{options.MediaPhoto3R, "media", "oe_photo-l_3.5x5in"},
		{options.SourceManual, "media-source", "manual"},
		{options.TypeLetterhead, "media-type", "stationery-letterhead"},
		{options.TypePlain, "media-type", "stationery"},
		{options.TypeTransparent, "media-type", "transparency"},
		{options.NumberUp(4), "number-up", "4"},
		{options.Landscape, "orientation-requested", "4"},
		{options.ColorMonochrome, "print-color-mode", "monochrome"},
		{options.QualityDraft, "print-quality", "3"},
		{options.TwoSidedLandscape, "sides", "two-sided-short-edge"},
	}
	for _, tc := range tests {
		name, value := Encode(tc.opt)
		if name != tc.name || value != tc.value {
			t.Fatalf("Encode(%v) = %q=%q, want %q=%q", tc.opt, name, value, tc.name, tc.value)
		}
	}
}

func TestEveryEnumValueHasAWireValue(t *testing.T) {
	for v := options.MediaA3; v <= options.MediaTabloid; v++ {
		if _, value := Encode(v); value == "" {
			t.Fatalf("media size %v has no wire value", v)
		}
	}
	for v := options.TypeAuto; v <= options.TypeTransparent; v++ {
		if _, value := Encode(v); value == "" {
			t.Fatalf("media type %v has no wire value", v)
		}
	}
	for v := options.FinishingBind; v <= options.FinishingTrim; v++ {
		if _, value := Encode(options.Finishings{v}); value == "" {
			t.Fatalf("finishing %v has no wire value", v)
		}
	}
}
