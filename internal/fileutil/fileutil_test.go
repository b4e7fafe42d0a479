package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	payload := []byte("audiobook bytes")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("destination content mismatch: %q", got)
	}
}

func TestReservePathAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "out", "01 Chapter 1.mp3")

	first, err := ReservePath(want)
	if err != nil {
		t.Fatalf("ReservePath: %v", err)
	}
	if first != want {
		t.Fatalf("expected %q, got %q", want, first)
	}

	second, err := ReservePath(want)
	if err != nil {
		t.Fatalf("ReservePath second: %v", err)
	}
	if second == first {
		t.Fatalf("expected a distinct reservation, got %q twice", second)
	}
	if filepath.Ext(second) != ".mp3" {
		t.Fatalf("reservation should keep the extension, got %q", second)
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("reserved file should exist: %v", err)
	}
}
