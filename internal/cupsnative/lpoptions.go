package cupsnative

import (
	"os"
	"strings"

	"paperjet/internal/native"
)

// lpDest is one Dest or Default line of an lpoptions file.
type lpDest struct {
	name     string
	instance string
	options  []native.Option
}

// lpOptions is the merged content of the system and user lpoptions files.
type lpOptions struct {
	dests       []lpDest
	defName     string
	defInstance string
	hasDefault  bool
}

// loadLpOptions reads every path in order. Later files override the options
// and default of earlier ones. Missing files are skipped.
func loadLpOptions(paths ...string) *lpOptions {
	store := &lpOptions{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		store.parse(string(data))
	}
	return store
}

func (s *lpOptions) parse(content string) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		kind := strings.ToLower(fields[0])
		if kind != "dest" && kind != "default" {
			continue
		}
		name, instance := splitInstance(fields[1])
		if name == "" {
			continue
		}
		entry := s.entry(name, instance)
		for _, token := range fields[2:] {
			key, val := splitOpt(token)
			if key == "" {
				continue
			}
			if val == "" {
				val = "true"
			}
			entry.options = native.SetOption(entry.options, key, val)
		}
		if kind == "default" {
			s.setDefault(name, instance)
		}
	}
}

func (s *lpOptions) entry(name, instance string) *lpDest {
	for i := range s.dests {
		if strings.EqualFold(s.dests[i].name, name) && strings.EqualFold(s.dests[i].instance, instance) {
			return &s.dests[i]
		}
	}
	s.dests = append(s.dests, lpDest{name: name, instance: instance})
	return &s.dests[len(s.dests)-1]
}

func (s *lpOptions) lookup(name, instance string) (lpDest, bool) {
	for _, d := range s.dests {
		if strings.EqualFold(d.name, name) && strings.EqualFold(d.instance, instance) {
			return d, true
		}
	}
	return lpDest{}, false
}

// instances returns the instances listed for printer name.
func (s *lpOptions) instances(name string) []lpDest {
	var out []lpDest
	for _, d := range s.dests {
		if d.instance != "" && strings.EqualFold(d.name, name) {
			out = append(out, d)
		}
	}
	return out
}

func (s *lpOptions) setDefault(name, instance string) {
	s.defName, s.defInstance, s.hasDefault = name, instance, true
}

func (s *lpOptions) isDefault(name, instance string) bool {
	return s.hasDefault && strings.EqualFold(s.defName, name) && strings.EqualFold(s.defInstance, instance)
}

// apply overlays the options of name/instance on dest. An instance inherits
// the options of its base printer line first.
func (s *lpOptions) apply(dest *native.Dest) {
	if dest.Instance != "" {
		if base, ok := s.lookup(dest.Name, ""); ok {
			for _, o := range base.options {
				dest.Options = native.SetOption(dest.Options, o.Name, o.Value)
			}
		}
	}
	if own, ok := s.lookup(dest.Name, dest.Instance); ok {
		for _, o := range own.options {
			dest.Options = native.SetOption(dest.Options, o.Name, o.Value)
		}
	}
}

func splitInstance(id string) (string, string) {
	name, instance, _ := strings.Cut(id, "/")
	return strings.TrimSpace(name), strings.TrimSpace(instance)
}

func splitOpt(opt string) (string, string) {
	if strings.Contains(opt, "=") {
		parts := strings.SplitN(opt, "=", 2)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(opt), ""
}
