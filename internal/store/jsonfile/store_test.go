package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hay-kot/postbox/internal/core/message"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "storage", "data.json"))

		doc := message.Document{
			"2024-01-15T10:30:00.000001": {Username: "alice", Message: "hi"},
			"2024-01-15T10:30:00.000002": {Username: "", Message: ""},
		}

		if err := store.Save(ctx, doc); err != nil {
			t.Fatalf("Save: %v", err)
		}

		res := store.Load(ctx)
		if !res.OK() {
			t.Fatalf("Load: %v", res.Err)
		}

		if len(res.Document) != len(doc) {
			t.Fatalf("got %d entries, want %d", len(res.Document), len(doc))
		}
		for k, want := range doc {
			if got := res.Document[k]; got != want {
				t.Errorf("entry %s = %+v, want %+v", k, got, want)
			}
		}
	})

	t.Run("load missing file", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "nonexistent.json"))

		res := store.Load(ctx)
		if !res.OK() {
			t.Fatalf("Load: %v", res.Err)
		}
		if len(res.Document) != 0 {
			t.Errorf("got %d entries, want 0", len(res.Document))
		}
	})

	t.Run("load empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}

		res := New(path).Load(ctx)
		if !res.OK() || len(res.Document) != 0 {
			t.Errorf("Load = %+v, want empty document", res)
		}
	})

	t.Run("load null document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("null"), 0o644); err != nil {
			t.Fatal(err)
		}

		res := New(path).Load(ctx)
		if !res.OK() || res.Document == nil {
			t.Errorf("Load = %+v, want empty non-nil document", res)
		}
	})

	t.Run("load corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}

		res := New(path).Load(ctx)
		if res.OK() {
			t.Fatal("Load succeeded on corrupt file")
		}
		if !errors.Is(res.Err, message.ErrCorrupt) {
			t.Errorf("Load error = %v, want ErrCorrupt", res.Err)
		}
		if doc := res.OrEmpty(); len(doc) != 0 {
			t.Errorf("OrEmpty = %v, want empty", doc)
		}

		// The corrupt file is kept until the next successful write.
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "{not json" {
			t.Errorf("file content changed to %q", data)
		}
	})

	t.Run("save is pretty printed and leaves no temp file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		store := New(path)

		if err := store.Save(ctx, message.Document{"k": {Username: "alice", Message: "hi"}}); err != nil {
			t.Fatalf("Save: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "\n  \"k\": {\n    \"username\": \"alice\"") {
			t.Errorf("document not indented:\n%s", data)
		}

		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("temp file left behind: %v", err)
		}
	})

	t.Run("save replaces corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
			t.Fatal(err)
		}
		store := New(path)

		if err := store.Save(ctx, message.Document{"k": {Username: "bob"}}); err != nil {
			t.Fatalf("Save: %v", err)
		}

		res := store.Load(ctx)
		if !res.OK() || len(res.Document) != 1 {
			t.Errorf("Load = %+v, want one entry", res)
		}
	})
}

func TestStore_Init(t *testing.T) {
	ctx := context.Background()

	t.Run("creates empty document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage", "data.json")

		if err := New(path).Init(ctx); err != nil {
			t.Fatalf("Init: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(string(data)) != "{}" {
			t.Errorf("content = %q, want {}", data)
		}
	})

	t.Run("keeps existing document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := New(path).Init(ctx); err != nil {
			t.Fatalf("Init: %v", err)
		}

		data, _ := os.ReadFile(path)
		if string(data) != "{broken" {
			t.Errorf("Init overwrote existing document: %q", data)
		}
	})
}

func TestStore_Lock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	release, err := New(path).Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	if _, err := New(path).Lock(); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Lock error = %v, want ErrLocked", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	release, err = New(path).Lock()
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	_ = release()
}
