package items_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"oszimport/internal/items"
	"oszimport/internal/services"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func names(work []items.WorkItem) []string {
	out := make([]string, 0, len(work))
	for _, item := range work {
		out = append(out, item.Name)
	}
	return out
}

func TestListMatchesExtensionOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.osz"))
	touch(t, filepath.Join(dir, "a.osz"))
	touch(t, filepath.Join(dir, "readme.txt"))
	touch(t, filepath.Join(dir, "upper.OSZ"))
	touch(t, filepath.Join(dir, "nested", "c.osz"))
	if err := os.Mkdir(filepath.Join(dir, "folder.osz"), 0o755); err != nil {
		t.Fatal(err)
	}

	work, err := items.List(dir, ".osz", false)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if got, want := names(work), []string{"a.osz", "b.osz"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	if work[0].Path != filepath.Join(dir, "a.osz") {
		t.Fatalf("path = %q", work[0].Path)
	}
}

func TestListFollowsSymlinkedItems(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	library := t.TempDir()
	touch(t, filepath.Join(library, "1 a.osz"))
	touch(t, filepath.Join(library, "pack", "2 b.osz"))
	if err := os.Mkdir(filepath.Join(library, "dir.osz"), 0o755); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	links := map[string]string{
		"1 a.osz":        filepath.Join(library, "1 a.osz"),
		"dir.osz":        filepath.Join(library, "dir.osz"),
		"dangling.osz":   filepath.Join(library, "missing.osz"),
		"nested/2 b.osz": filepath.Join(library, "pack", "2 b.osz"),
	}
	for name, target := range links {
		link := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(target, link); err != nil {
			t.Fatalf("symlink %s: %v", name, err)
		}
	}

	work, err := items.List(dir, ".osz", false)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if got, want := names(work), []string{"1 a.osz"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("flat names = %v, want %v", got, want)
	}

	work, err = items.List(dir, ".osz", true)
	if err != nil {
		t.Fatalf("recursive List returned error: %v", err)
	}
	if got, want := names(work), []string{"1 a.osz", "nested/2 b.osz"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("recursive names = %v, want %v", got, want)
	}
}

func TestListRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.osz"))
	touch(t, filepath.Join(dir, "pack", "b.osz"))
	touch(t, filepath.Join(dir, "pack", "skip.mp3"))

	work, err := items.List(dir, ".osz", true)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if got, want := names(work), []string{"a.osz", "pack/b.osz"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestListEmptyIsNotError(t *testing.T) {
	work, err := items.List(t.TempDir(), ".osz", false)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(work) != 0 {
		t.Fatalf("expected no items, got %v", work)
	}
}

func TestListMissingDirectory(t *testing.T) {
	_, err := items.List(filepath.Join(t.TempDir(), "missing"), ".osz", false)
	if !errors.Is(err, services.ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestListFileIsNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.osz")
	touch(t, path)
	_, err := items.List(path, ".osz", false)
	if !errors.Is(err, services.ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}
