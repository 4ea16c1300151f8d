package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sample(i int, kind Kind, contract string, base time.Time) Record {
	return Record{
		ID:       fmt.Sprintf("run-%d", i),
		Kind:     kind,
		Contract: contract,
		Trips:    i,
		Status:   "ok",
		Started:  base.Add(time.Duration(i) * time.Minute),
		Elapsed:  time.Millisecond,
	}
}

func exercise(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	recs := []Record{
		sample(3, KindAssign, "031L0", base),
		sample(1, KindExtract, "031L0", base),
		sample(2, KindPack, "032M1", base),
		sample(4, KindExtract, "032M1", base),
	}
	for _, r := range recs {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 4 || all[0].ID != "run-1" || all[3].ID != "run-4" {
		t.Fatalf("unexpected order: %+v", all)
	}

	ext, _ := store.Query(ctx, Query{Kind: KindExtract})
	if len(ext) != 2 {
		t.Fatalf("expected 2 extract records, got %d", len(ext))
	}
	byContract, _ := store.Query(ctx, Query{Contract: "032M1"})
	if len(byContract) != 2 {
		t.Fatalf("expected 2 records for 032M1, got %d", len(byContract))
	}
	window, _ := store.Query(ctx, Query{Start: base.Add(2 * time.Minute), End: base.Add(3 * time.Minute)})
	if len(window) != 2 {
		t.Fatalf("expected 2 records in window, got %d", len(window))
	}
	last, _ := store.Query(ctx, Query{Limit: 1})
	if len(last) != 1 || last[0].ID != "run-4" {
		t.Fatalf("expected most recent record, got %+v", last)
	}
	if last[0].Elapsed != time.Millisecond || !last[0].Started.Equal(base.Add(4*time.Minute)) {
		t.Fatalf("record not preserved: %+v", last[0])
	}
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "sub", "journal.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exercise(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 3, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	big := Record{ID: "x", Kind: KindExtract, Error: strings.Repeat("e", 1024), Started: time.Now()}
	const n = 1500
	for i := 0; i < n; i++ {
		if err := store.Append(context.Background(), big); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, err := store.files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	out, err := store.Query(context.Background(), Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != n {
		t.Fatalf("expected %d records across files, got %d", n, len(out))
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exercise(t, store)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Config{Path: filepath.Join(dir, "j.jsonl")})
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	if _, ok := s.(*RotatingJSONLStore); !ok {
		t.Fatalf("expected rotating store, got %T", s)
	}
	_ = s.Close()

	s, err = Open(Config{Backend: "sqlite", Path: filepath.Join(dir, "j.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	_ = s.Close()

	s, err = Open(Config{Backend: "none"})
	if err != nil {
		t.Fatalf("open none: %v", err)
	}
	if _, ok := s.(NopStore); !ok {
		t.Fatalf("expected NopStore, got %T", s)
	}
	if _, err := Open(Config{Backend: "kafka"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRecord_JSON(t *testing.T) {
	data, err := json.Marshal(Record{ID: "1", Kind: KindPack, Started: time.Unix(0, 0)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "kind", "trips", "shifts", "status", "started", "elapsed"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
	if _, ok := m["error"]; ok {
		t.Errorf("empty error should be omitted")
	}
}
