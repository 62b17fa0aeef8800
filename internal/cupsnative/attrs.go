package cupsnative

import (
	"strconv"
	"strings"

	goipp "github.com/OpenPrinting/goipp"

	"paperjet/internal/native"
)

// destAttributes are the printer attributes copied into destination
// options, the same set lpstat and the print dialogs read.
var destAttributes = []string{
	"printer-name",
	"printer-info",
	"printer-location",
	"printer-make-and-model",
	"printer-state",
	"printer-state-reasons",
	"printer-state-change-time",
	"printer-is-accepting-jobs",
	"printer-is-shared",
	"printer-type",
	"printer-uri-supported",
	"device-uri",
	"marker-names",
	"marker-colors",
	"marker-types",
	"marker-levels",
	"marker-low-levels",
	"marker-high-levels",
	"marker-change-time",
}

// printerGroups returns the attributes of every printer group in resp.
func printerGroups(resp *goipp.Message) []goipp.Attributes {
	var out []goipp.Attributes
	for _, g := range resp.Groups {
		if g.Tag == goipp.TagPrinterGroup {
			out = append(out, g.Attrs)
		}
	}
	if len(out) == 0 && len(resp.Printer) > 0 {
		out = append(out, resp.Printer)
	}
	return out
}

// destFromAttrs builds a destination record from one printer group. Every
// attribute becomes an option whose value joins the attribute values with
// commas.
func destFromAttrs(attrs goipp.Attributes) (native.Dest, bool) {
	dest := native.Dest{Name: findAttr(attrs, "printer-name")}
	if dest.Name == "" {
		return dest, false
	}
	for _, a := range attrs {
		if a.Name == "" || len(a.Values) == 0 {
			continue
		}
		vals := make([]string, 0, len(a.Values))
		for _, v := range a.Values {
			if _, ok := v.V.(goipp.Collection); ok {
				continue
			}
			vals = append(vals, v.V.String())
		}
		if len(vals) == 0 {
			continue
		}
		dest.Options = native.SetOption(dest.Options, a.Name, strings.Join(vals, ","))
	}
	return dest, true
}

// supported reports whether every comma-separated value is listed in the
// <option>-supported attribute. Integer values also match ranges. An empty
// value only checks that the option is supported at all.
func supported(attrs goipp.Attributes, option, value string) bool {
	var list goipp.Values
	found := false
	for _, a := range attrs {
		if a.Name == option+"-supported" {
			list, found = a.Values, true
			break
		}
	}
	if !found {
		return false
	}
	if value == "" {
		return true
	}
	for _, v := range strings.Split(value, ",") {
		if !valueListed(list, strings.TrimSpace(v)) {
			return false
		}
	}
	return true
}

func valueListed(list goipp.Values, value string) bool {
	n, numErr := strconv.Atoi(value)
	for _, v := range list {
		switch sv := v.V.(type) {
		case goipp.Range:
			if numErr == nil && n >= sv.Lower && n <= sv.Upper {
				return true
			}
		case goipp.Integer:
			if numErr == nil && int(sv) == n {
				return true
			}
		case goipp.Boolean:
			if strconv.FormatBool(bool(sv)) == strings.ToLower(value) {
				return true
			}
		default:
			if v.V.String() == value {
				return true
			}
		}
	}
	return false
}

// operationSupported reports whether op is listed in operations-supported.
func operationSupported(attrs goipp.Attributes, op goipp.Op) bool {
	for _, a := range attrs {
		if a.Name != "operations-supported" {
			continue
		}
		for _, v := range a.Values {
			if n, ok := v.V.(goipp.Integer); ok && goipp.Op(n) == op {
				return true
			}
		}
	}
	return false
}

// addJobOption adds one job template attribute typed the way the scheduler
// expects it.
func addJobOption(req *goipp.Message, key, val string) {
	switch key {
	case "copies", "job-priority", "number-up", "job-cancel-after":
		if n, err := strconv.Atoi(val); err == nil {
			req.Job.Add(goipp.MakeAttribute(key, goipp.TagInteger, goipp.Integer(n)))
		}
	case "print-quality", "orientation-requested":
		if n, err := strconv.Atoi(val); err == nil {
			req.Job.Add(goipp.MakeAttribute(key, goipp.TagEnum, goipp.Integer(n)))
		}
	case "finishings":
		var vals []goipp.Value
		for _, part := range strings.Split(val, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				vals = append(vals, goipp.Integer(n))
			}
		}
		if len(vals) > 0 {
			req.Job.Add(goipp.MakeAttr(key, goipp.TagEnum, vals[0], vals[1:]...))
		}
	default:
		req.Job.Add(goipp.MakeAttribute(key, goipp.TagKeyword, goipp.String(val)))
	}
}

func findAttr(attrs goipp.Attributes, name string) string {
	for _, a := range attrs {
		if a.Name == name && len(a.Values) > 0 {
			return a.Values[0].V.String()
		}
	}
	return ""
}

// statusMessage returns the status-message of resp, or the status name.
func statusMessage(resp *goipp.Message) string {
	if msg := findAttr(resp.Operation, "status-message"); msg != "" {
		return msg
	}
	return goipp.Status(resp.Code).String()
}
