package staging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oszimport/internal/logging"
	"oszimport/internal/services"
	"oszimport/internal/staging"
	"oszimport/internal/testsupport"
)

func newResolver(t *testing.T) *staging.Resolver {
	t.Helper()
	return &staging.Resolver{
		StagingDir:        filepath.Join(t.TempDir(), "staging"),
		ArchiveExtensions: []string{".zip"},
		Logger:            logging.NewNop(),
	}
}

func TestResolveDirectoryIsAlias(t *testing.T) {
	dir := t.TempDir()
	area, err := newResolver(t).Resolve(context.Background(), dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if area.Dir != dir || area.Temporary {
		t.Fatalf("area = %+v, want non-temporary alias", area)
	}
}

func TestResolveMissingPathIsAlias(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nowhere")
	area, err := newResolver(t).Resolve(context.Background(), missing)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if area.Dir != missing || area.Temporary {
		t.Fatalf("area = %+v", area)
	}
}

func TestResolveArchiveExtracts(t *testing.T) {
	resolver := newResolver(t)
	archive := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "Pack.ZIP"), map[string]string{
		"1 a.osz":        "a",
		"2 b.osz":        "b",
		"notes/":         "",
		"notes/readme":   "hi",
		"nested/3 c.osz": "c",
	})

	area, err := resolver.Resolve(context.Background(), archive)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !area.Temporary || area.Source != archive {
		t.Fatalf("area = %+v", area)
	}
	if filepath.Dir(area.Dir) != resolver.StagingDir || !strings.HasPrefix(filepath.Base(area.Dir), staging.TempPrefix) {
		t.Fatalf("temporary dir %q not under staging dir", area.Dir)
	}
	for _, name := range []string{"1 a.osz", "2 b.osz", "notes/readme", "nested/3 c.osz"} {
		if _, err := os.Stat(filepath.Join(area.Dir, filepath.FromSlash(name))); err != nil {
			t.Fatalf("expected %s extracted: %v", name, err)
		}
	}
}

func TestResolveMissingArchive(t *testing.T) {
	resolver := newResolver(t)
	_, err := resolver.Resolve(context.Background(), filepath.Join(t.TempDir(), "gone.zip"))
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestResolveCorruptArchiveRemovesTempDir(t *testing.T) {
	resolver := newResolver(t)
	archive := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(archive, []byte("not a zip at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := resolver.Resolve(context.Background(), archive)
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
	dirs, err := staging.ListDirectories(resolver.StagingDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 0 {
		t.Fatalf("partial directories left behind: %v", dirs)
	}
}

func TestResolveRejectsZipSlip(t *testing.T) {
	resolver := newResolver(t)
	archive := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "evil.zip"), map[string]string{
		"../escape.osz": "x",
	})

	_, err := resolver.Resolve(context.Background(), archive)
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(resolver.StagingDir, "escape.osz")); !os.IsNotExist(statErr) {
		t.Fatal("entry escaped the extraction directory")
	}
	if dirs, _ := staging.ListDirectories(resolver.StagingDir); len(dirs) != 0 {
		t.Fatalf("partial directories left behind: %v", dirs)
	}
}

func TestResolveRegularNonArchiveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.osz")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := newResolver(t).Resolve(context.Background(), path)
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestResolveEmptyPath(t *testing.T) {
	_, err := newResolver(t).Resolve(context.Background(), "  ")
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestResolveCancelledExtraction(t *testing.T) {
	resolver := newResolver(t)
	archive := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "pack.zip"), map[string]string{"a.osz": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resolver.Resolve(ctx, archive)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if dirs, _ := staging.ListDirectories(resolver.StagingDir); len(dirs) != 0 {
		t.Fatalf("partial directories left behind: %v", dirs)
	}
}

func TestIsArchive(t *testing.T) {
	resolver := &staging.Resolver{ArchiveExtensions: []string{".zip"}}
	for path, want := range map[string]bool{
		"maps.zip":  true,
		"MAPS.Zip":  true,
		"maps.osz":  false,
		"zip":       false,
		"maps.zip/": false,
	} {
		if got := resolver.IsArchive(path); got != want {
			t.Errorf("IsArchive(%q) = %v, want %v", path, got, want)
		}
	}
}
