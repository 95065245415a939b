package cache

import (
	"path/filepath"
	"testing"
)

func TestStoreThenLookupRoundTrips(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "peggen.db")
	c, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := Key("grammar Foo { rule main() -> i64 = n:integer -> { n } ; }", "0.1.0")

	if _, ok, err := c.Lookup(key); err != nil {
		t.Fatalf("Lookup: %v", err)
	} else if ok {
		t.Fatal("expected cache miss on empty cache")
	}

	generated := []byte("package foo\n")
	if err := c.Store(key, []byte("grammar Foo {}"), generated); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entry, ok, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit after Store")
	}
	if string(entry.Generated) != string(generated) {
		t.Errorf("Generated = %q, want %q", entry.Generated, generated)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestKeyChangesWithVersion(t *testing.T) {
	src := "grammar Foo {}"
	k1 := Key(src, "0.1.0")
	k2 := Key(src, "0.2.0")
	if k1 == k2 {
		t.Fatal("expected Key to vary with version")
	}
}

func TestStoreOverwritesExistingKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "peggen.db")
	c, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := Key("grammar Foo {}", "0.1.0")
	if err := c.Store(key, []byte("v1"), []byte("package foo\n// v1\n")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Store(key, []byte("v1"), []byte("package foo\n// v2\n")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entry, ok, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(entry.Generated) != "package foo\n// v2\n" {
		t.Errorf("Generated = %q, want the overwritten value", entry.Generated)
	}
}
