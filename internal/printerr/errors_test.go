package printerr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{PrinterNotFound("Office"), "could not find printer: Office"},
		{ErrNoPrinters, "no printers available"},
		{FileRead(io.ErrUnexpectedEOF), "could not read file: unexpected EOF"},
		{FileOpen("notes.pdf", io.ErrUnexpectedEOF), "could not open file 'notes.pdf': unexpected EOF"},
		{InformationMissing("destination info"), "could not retrieve necessary information: destination info"},
		{UnsupportedOption("copies", "5"), "printer does not support option: copies = 5"},
		{Backend("client-error-not-possible"), "client-error-not-possible"},
		{Backend(""), "backend"},
	}
	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestKindMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("print: %w", UnsupportedOption("media size", "A3"))
	if !Is(err, KindUnsupportedOption) {
		t.Fatal("wrapped error lost its kind")
	}
	name, value, ok := Option(err)
	if !ok || name != "media size" || value != "A3" {
		t.Fatalf("Option = %q, %q, %v", name, value, ok)
	}
	if errors.Is(err, ErrNoPrinters) {
		t.Fatal("unsupported option should not match ErrNoPrinters")
	}
	if !errors.Is(fmt.Errorf("list: %w", ErrNoPrinters), ErrNoPrinters) {
		t.Fatal("ErrNoPrinters should match itself through wrapping")
	}
	if !errors.Is(FileRead(io.EOF), io.EOF) {
		t.Fatal("FileRead should unwrap to its cause")
	}
}
