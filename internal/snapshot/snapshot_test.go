package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"paperjet/internal/printing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "printers.db"), 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadKeepsOrder(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	in := []printing.Printer{
		{Identifier: "Office", Name: "Office", IsDefault: true, Options: map[string]string{"printer-info": "Office Laser"}},
		{Identifier: "Lab/draft", Name: "Lab", Instance: "draft", Options: map[string]string{}},
	}
	if err := s.Save(ctx, "localhost:631", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, ok, err := s.Load(ctx, "localhost:631")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(out) != 2 || out[0].Identifier != "Office" || out[1].Instance != "draft" {
		t.Fatalf("loaded = %+v", out)
	}
	if !out[0].IsDefault || out[0].HumanName() != "Office Laser" {
		t.Fatalf("first = %+v", out[0])
	}

	if err := s.Save(ctx, "localhost:631", in[:1]); err != nil {
		t.Fatalf("resave: %v", err)
	}
	out, _, _ = s.Load(ctx, "localhost:631")
	if len(out) != 1 {
		t.Fatalf("resave kept stale rows: %+v", out)
	}
}

func TestLoadIgnoresOtherServerAndExpired(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.Save(ctx, "a:631", []printing.Printer{{Identifier: "P", Name: "P"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "b:631"); ok {
		t.Fatal("snapshot of another server was served")
	}
	s.now = func() time.Time { return now.Add(DefaultTTL - time.Second) }
	if _, ok, _ := s.Load(ctx, "a:631"); !ok {
		t.Fatal("fresh snapshot not served")
	}
	s.now = func() time.Time { return now.Add(DefaultTTL + time.Second) }
	if _, ok, _ := s.Load(ctx, "a:631"); ok {
		t.Fatal("expired snapshot served")
	}
}
