package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"usergate/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStorePutReplacesContent(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "keys/api-keys.json", bytes.NewReader([]byte("first")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := store.Put(ctx, "keys/api-keys.json", bytes.NewReader([]byte("second!")), core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if info.Size != 7 || info.ETag == "" || info.Metadata["k"] != "v" {
		t.Fatalf("unexpected info %+v", info)
	}
	got, rc, err := store.Get(ctx, "keys/api-keys.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "second!" || got.Size != 7 {
		t.Fatalf("unexpected content %q size %d", b, got.Size)
	}
	entries, err := os.ReadDir(store.Root() + "/keys")
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestStoreMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, _, err := store.Get(ctx, "absent.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, err := store.Delete(ctx, "absent.json"); err != nil || ok {
		t.Fatalf("delete missing: ok=%v err=%v", ok, err)
	}
	if _, err := store.Put(ctx, "present.json", bytes.NewReader([]byte("{}")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := store.Delete(ctx, "present.json"); err != nil || !ok {
		t.Fatalf("delete present: ok=%v err=%v", ok, err)
	}
}

func TestSanitizeKey(t *testing.T) {
	for _, bad := range []string{"", "  ", "../escape", "a/../../b", "/abs"} {
		if _, err := sanitizeKey(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if k, err := sanitizeKey("a//b/./c.json"); err != nil || k != "a/b/c.json" {
		t.Fatalf("unexpected clean result %q %v", k, err)
	}
	if _, err := newTempStore(t).Put(context.Background(), "../x", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatalf("expected put traversal rejection")
	}
}

func TestNewDefaultsRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Root() != "./data" || store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected store %+v", store)
	}
}
