package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	key, err := store.Save(context.Background(), []byte("payload"), "7.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if key != "7.png" {
		t.Fatalf("expected key 7.png, got %q", key)
	}

	data, err := os.ReadFile(filepath.Join(dir, "7.png"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestLocalStorageSaveSanitizesName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	key, err := store.Save(context.Background(), []byte("payload"), "../escape/7.PNG")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if key != "..escape7.png" {
		t.Fatalf("expected sanitized key, got %q", key)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); err != nil {
		t.Fatalf("expected file inside base dir: %v", err)
	}
}

func TestLocalStorageSaveRejectsEmptyPayload(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	if _, err := store.Save(context.Background(), nil, "7.png"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestLocalStorageSaveCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, []byte("payload"), "7.png"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestLocalStorageBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	if store.LocalBaseDir() != dir {
		t.Fatalf("expected base dir %q, got %q", dir, store.LocalBaseDir())
	}
}
