package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/store"
)

type record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestCollection_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := store.NewCollection[record]("products", dir, store.StartEmptyIfAbsent, zap.NewNop())

	want := []record{
		{ID: 3, Name: "c"},
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
	}
	if err := c.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestCollection_MissingFile(t *testing.T) {
	dir := t.TempDir()

	empty := store.NewCollection[record]("cart", dir, store.StartEmptyIfAbsent, nil)
	got, err := empty.Load(context.Background())
	if err != nil {
		t.Fatalf("start-empty load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	strict := store.NewCollection[record]("inventory", dir, store.FailIfAbsent, nil)
	if _, err := strict.Load(context.Background()); err == nil {
		t.Fatalf("fail-if-absent load succeeded on missing file")
	}
}

func TestCollection_MalformedFile(t *testing.T) {
	dir := t.TempDir()

	for _, policy := range []store.InitPolicy{store.StartEmptyIfAbsent, store.FailIfAbsent} {
		c := store.NewCollection[record]("products", dir, policy, nil)
		if err := os.WriteFile(c.Path(), []byte("{not json"), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := c.Load(context.Background()); err == nil {
			t.Fatalf("policy %v: load of malformed file succeeded", policy)
		}
	}
}

func TestCollection_SaveIsAtomicAndPretty(t *testing.T) {
	dir := t.TempDir()
	c := store.NewCollection[record]("products", dir, store.StartEmptyIfAbsent, nil)

	if err := c.Save(context.Background(), []record{{ID: 1, Name: "a"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
	if len(entries) != 1 || entries[0].Name() != "products.json" {
		t.Fatalf("unexpected dir contents: %v", entries)
	}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatalf("expected indented output, got %q", data)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatalf("expected trailing newline")
	}
}

func TestCollection_SaveNilWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	c := store.NewCollection[record]("cart", dir, store.StartEmptyIfAbsent, nil)

	if err := c.Save(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty array, got %q", data)
	}
}

func TestCollection_Ping(t *testing.T) {
	dir := t.TempDir()

	ok := store.NewCollection[record]("products", dir, store.StartEmptyIfAbsent, nil)
	if err := ok.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	gone := store.NewCollection[record]("products", filepath.Join(dir, "missing"), store.StartEmptyIfAbsent, nil)
	if err := gone.Ping(context.Background()); err == nil {
		t.Fatalf("ping of missing dir succeeded")
	}
}

func TestCollection_SaveFailsWithoutDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	c := store.NewCollection[record]("cart", dir, store.StartEmptyIfAbsent, nil)

	if err := c.Save(context.Background(), []record{{ID: 1}}); err == nil {
		t.Fatalf("save into missing dir succeeded")
	}

	got, err := c.Load(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("load after failed save: got=%v err=%v", got, err)
	}
}
