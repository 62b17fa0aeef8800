// Package printerr defines the errors returned by the printing layers.
package printerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindPrinterNotFound    Kind = "printer not found"
	KindNoPrinters         Kind = "no printers"
	KindFileRead           Kind = "file read"
	KindStringConversion   Kind = "string conversion"
	KindInformationMissing Kind = "information missing"
	KindUnsupportedOption  Kind = "unsupported option"
	KindBackend            Kind = "backend"
	KindUnsupported        Kind = "unsupported"
)

// Error is the single error type of the printing API. Name and Value are set
// for KindPrinterNotFound (Name), KindInformationMissing (Name) and
// KindUnsupportedOption (both).
type Error struct {
	Kind  Kind
	Name  string
	Value string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindPrinterNotFound:
		return "could not find printer: " + e.Name
	case KindNoPrinters:
		return "no printers available"
	case KindFileRead:
		if e.Name != "" {
			return fmt.Sprintf("could not open file '%s': %v", e.Name, e.Err)
		}
		return fmt.Sprintf("could not read file: %v", e.Err)
	case KindStringConversion:
		return fmt.Sprintf("could not convert to C string: %v", e.Err)
	case KindInformationMissing:
		return "could not retrieve necessary information: " + e.Name
	case KindUnsupportedOption:
		return fmt.Sprintf("printer does not support option: %s = %s", e.Name, e.Value)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind, so sentinel comparisons like
// errors.Is(err, printerr.ErrNoPrinters) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrNoPrinters  error = &Error{Kind: KindNoPrinters}
	ErrUnsupported error = &Error{Kind: KindUnsupported, Msg: "printing is not supported on this platform"}
)

func PrinterNotFound(name string) error {
	return &Error{Kind: KindPrinterNotFound, Name: name}
}

func FileRead(err error) error {
	return &Error{Kind: KindFileRead, Err: err}
}

// FileOpen is FileRead for a named file.
func FileOpen(name string, err error) error {
	return &Error{Kind: KindFileRead, Name: name, Err: err}
}

func StringConversion(err error) error {
	return &Error{Kind: KindStringConversion, Err: err}
}

func InformationMissing(what string) error {
	return &Error{Kind: KindInformationMissing, Name: what}
}

func UnsupportedOption(name, value string) error {
	return &Error{Kind: KindUnsupportedOption, Name: name, Value: value}
}

// Backend wraps a message reported by the spooler. An empty message is kept
// empty.
func Backend(msg string) error {
	return &Error{Kind: KindBackend, Msg: msg}
}

func Is(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// Option returns the option name and value of an UnsupportedOption error.
func Option(err error) (name, value string, ok bool) {
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindUnsupportedOption {
		return "", "", false
	}
	return pe.Name, pe.Value, true
}
