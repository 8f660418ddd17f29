package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"oszimport/internal/services"
)

// ExtractZip unpacks archive into dest and returns the number of files
// written. Entries that would land outside dest are rejected and symlinks are
// skipped. Cancellation is checked between entries and returned unwrapped.
func ExtractZip(ctx context.Context, archive, dest string) (int, error) {
	reader, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) {
		reader.Close()
		return 0, services.Wrap(services.ErrResolution, "staging", "extract", fmt.Sprintf("archive %q contains unsafe paths", archive), err)
	}
	if err != nil {
		return 0, services.Wrap(services.ErrResolution, "staging", "extract", fmt.Sprintf("open archive %q", archive), err)
	}
	defer reader.Close()

	written := 0
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		name := filepath.FromSlash(file.Name)
		if !filepath.IsLocal(name) {
			return written, services.Wrap(services.ErrResolution, "staging", "extract", fmt.Sprintf("entry %q escapes the extraction directory", file.Name), nil)
		}
		target := filepath.Join(dest, name)
		mode := file.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, services.Wrap(services.ErrResolution, "staging", "extract", file.Name, err)
			}
			continue
		case mode&os.ModeSymlink != 0:
			continue
		}
		if err := extractFile(file, target); err != nil {
			return written, services.Wrap(services.ErrResolution, "staging", "extract", file.Name, err)
		}
		written++
	}
	return written, nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	in, err := file.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
