package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.txt"))
	touch(t, filepath.Join(root, "notes.pdf"))
	touch(t, filepath.Join(root, "sub", "c.PNG"))
	touch(t, filepath.Join(root, ".hidden", "d.jpg"))
	touch(t, filepath.Join(root, ".stray.png"))

	paths, stats, err := ScanDirectory(root, nil, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}

	want := map[string]bool{
		filepath.Join(root, "a.jpg"):        true,
		filepath.Join(root, "sub", "c.PNG"): true,
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %d entries", paths, len(want))
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected path %s", p)
		}
	}
	if stats.Matched != 2 {
		t.Errorf("matched = %d, want 2", stats.Matched)
	}
}

func TestScanDirectoryIncludesHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".hidden", "d.jpg"))

	paths, _, err := ScanDirectory(root, nil, false)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("paths = %v, want the hidden file when skipHidden is off", paths)
	}
}

func TestScanDirectoryCustomExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.pdf"))

	paths, _, err := ScanDirectory(root, []string{".PDF"}, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "b.pdf" {
		t.Errorf("paths = %v, want only b.pdf", paths)
	}
}

func TestScanDirectoryEmptyRoot(t *testing.T) {
	if _, _, err := ScanDirectory("  ", nil, true); err == nil {
		t.Error("expected error for blank root")
	}
}
