//go:build windows

package printing

import (
	"context"
	"io"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"paperjet/internal/config"
	"paperjet/internal/options"
	"paperjet/internal/printerr"
)

var (
	modWinspool          = windows.NewLazySystemDLL("winspool.drv")
	procEnumPrinters     = modWinspool.NewProc("EnumPrintersW")
	procGetDefaultPrintW = modWinspool.NewProc("GetDefaultPrinterW")
	procOpenPrinterW     = modWinspool.NewProc("OpenPrinterW")
	procClosePrinter     = modWinspool.NewProc("ClosePrinter")
)

const (
	printerEnumLocal       = 0x00000002
	printerEnumConnections = 0x00000004
)

// printerInfo4 is PRINTER_INFO_4W.
type printerInfo4 struct {
	PrinterName *uint16
	ServerName  *uint16
	Attributes  uint32
}

// Winspool enumerates printers through the Windows spooler. It cannot print.
type Winspool struct{}

var _ Platform = Winspool{}

// Default returns the Windows spooler platform.
func Default(cfg config.Config) Platform {
	return Winspool{}
}

// ServerKey identifies the local spooler.
func ServerKey(cfg config.Config) string {
	return "winspool"
}

func (Winspool) Printers(ctx context.Context) ([]Printer, error) {
	names, err := enumPrinters()
	if err != nil {
		return nil, printerr.Backend(err.Error())
	}
	def, _ := defaultPrinterName()
	printers := make([]Printer, 0, len(names))
	for _, name := range names {
		p := newPrinter(name)
		p.IsDefault = name == def
		printers = append(printers, p)
	}
	return printers, nil
}

func (w Winspool) Printer(ctx context.Context, name string) (Printer, bool) {
	if def, ok := w.DefaultPrinter(ctx); ok && def.Identifier == name {
		return def, true
	}
	h, err := openPrinter(name)
	if err != nil {
		return Printer{}, false
	}
	closePrinter(h)
	return newPrinter(name), true
}

func (Winspool) DefaultPrinter(ctx context.Context) (Printer, bool) {
	name, ok := defaultPrinterName()
	if !ok {
		return Printer{}, false
	}
	p := newPrinter(name)
	p.IsDefault = true
	return p, true
}

func (Winspool) Print(ctx context.Context, docs []io.Reader, p Printer, o options.PrintOptions) error {
	return printerr.ErrUnsupported
}

func newPrinter(name string) Printer {
	return Printer{Identifier: name, Name: name, Options: map[string]string{}}
}

func enumPrinters() ([]string, error) {
	flags := printerEnumLocal | printerEnumConnections
	level := uint32(4)
	var needed, returned uint32
	r1, _, err := procEnumPrinters.Call(
		uintptr(flags),
		0,
		uintptr(level),
		0,
		0,
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&returned)),
	)
	if r1 == 0 && needed == 0 {
		if err == windows.ERROR_SUCCESS {
			return nil, nil
		}
		return nil, err
	}
	buf := make([]byte, needed)
	r1, _, err = procEnumPrinters.Call(
		uintptr(flags),
		0,
		uintptr(level),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(needed),
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&returned)),
	)
	if r1 == 0 {
		return nil, err
	}
	out := make([]string, 0, returned)
	entrySize := unsafe.Sizeof(printerInfo4{})
	base := uintptr(unsafe.Pointer(&buf[0]))
	for i := 0; i < int(returned); i++ {
		info := (*printerInfo4)(unsafe.Pointer(base + uintptr(i)*entrySize))
		if name := strings.TrimSpace(windows.UTF16PtrToString(info.PrinterName)); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

func defaultPrinterName() (string, bool) {
	var size uint32
	_, _, _ = procGetDefaultPrintW.Call(0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return "", false
	}
	buf := make([]uint16, size)
	r1, _, _ := procGetDefaultPrintW.Call(uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r1 == 0 {
		return "", false
	}
	return windows.UTF16ToString(buf), true
}

func openPrinter(name string) (windows.Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, printerr.StringConversion(err)
	}
	var handle windows.Handle
	r1, _, err := procOpenPrinterW.Call(uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&handle)), 0)
	if r1 == 0 {
		return 0, err
	}
	return handle, nil
}

func closePrinter(handle windows.Handle) {
	_, _, _ = procClosePrinter.Call(uintptr(handle))
}
