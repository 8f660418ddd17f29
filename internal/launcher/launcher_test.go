package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"oszimport/internal/logging"
	"oszimport/internal/services"
)

func writeItem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "1 song.osz")
	if err := os.WriteFile(path, []byte("PK"), 0o644); err != nil {
		t.Fatalf("write item: %v", err)
	}
	return path
}

func TestNewSelectsOpener(t *testing.T) {
	if _, ok := New(nil, nil).(*SystemOpener); !ok {
		t.Fatal("expected SystemOpener without command")
	}
	opener, ok := New([]string{"wine", "osu!.exe"}, nil).(*CommandOpener)
	if !ok {
		t.Fatal("expected CommandOpener with command")
	}
	if len(opener.Argv) != 2 || opener.Argv[1] != "osu!.exe" {
		t.Fatalf("argv = %v", opener.Argv)
	}
}

func TestCommandOpenerMissingItem(t *testing.T) {
	opener := &CommandOpener{Argv: []string{"true"}, Logger: logging.NewNop()}
	err := opener.Open(context.Background(), filepath.Join(t.TempDir(), "missing.osz"))
	if !errors.Is(err, services.ErrItemLaunch) {
		t.Fatalf("expected ErrItemLaunch, got %v", err)
	}
}

func TestCommandOpenerRejectsDirectory(t *testing.T) {
	opener := &CommandOpener{Argv: []string{"true"}, Logger: logging.NewNop()}
	err := opener.Open(context.Background(), t.TempDir())
	if !errors.Is(err, services.ErrItemLaunch) {
		t.Fatalf("expected ErrItemLaunch, got %v", err)
	}
}

func TestCommandOpenerUnknownBinary(t *testing.T) {
	opener := &CommandOpener{Argv: []string{filepath.Join(t.TempDir(), "no-such-binary")}, Logger: logging.NewNop()}
	err := opener.Open(context.Background(), writeItem(t))
	if !errors.Is(err, services.ErrItemLaunch) {
		t.Fatalf("expected ErrItemLaunch, got %v", err)
	}
}

func TestCommandOpenerEmptyCommand(t *testing.T) {
	opener := &CommandOpener{}
	err := opener.Open(context.Background(), writeItem(t))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestCommandOpenerStartsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX true binary")
	}
	opener := &CommandOpener{Argv: []string{"true"}, Logger: logging.NewNop()}
	if err := opener.Open(context.Background(), writeItem(t)); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
}

func TestOpenHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opener := &CommandOpener{Argv: []string{"true"}}
	if err := opener.Open(ctx, writeItem(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenerFunc(t *testing.T) {
	var got string
	opener := OpenerFunc(func(_ context.Context, path string) error {
		got = path
		return nil
	})
	if err := opener.Open(context.Background(), "x.osz"); err != nil || got != "x.osz" {
		t.Fatalf("got %q, err %v", got, err)
	}
}
