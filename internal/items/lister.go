package items

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"oszimport/internal/services"
)

// WorkItem is a single importable file discovered in the staging directory.
// Name is the path relative to the search directory, slash separated.
type WorkItem struct {
	Name string
	Path string
}

// List returns the regular files in dir whose names end with ext, in directory
// enumeration order. Symlinks count when they resolve to a regular file. An
// empty result is not an error.
func List(dir, ext string, recursive bool) ([]WorkItem, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrDirectoryNotFound, "items", "list", fmt.Sprintf("directory %q not found", dir), nil)
		}
		return nil, services.Wrap(services.ErrUnexpected, "items", "list", "unreadable staging directory", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrDirectoryNotFound, "items", "list", fmt.Sprintf("%q is not a directory", dir), nil)
	}

	if recursive {
		return walk(dir, ext)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrUnexpected, "items", "list", "unreadable staging directory", err)
	}
	work := make([]WorkItem, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !strings.HasSuffix(entry.Name(), ext) || !isItemFile(path, entry) {
			continue
		}
		work = append(work, WorkItem{Name: entry.Name(), Path: path})
	}
	return work, nil
}

func walk(root, ext string) ([]WorkItem, error) {
	var work []WorkItem
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !strings.HasSuffix(entry.Name(), ext) || !isItemFile(path, entry) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		work = append(work, WorkItem{Name: filepath.ToSlash(rel), Path: path})
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrUnexpected, "items", "list", "unreadable staging directory", err)
	}
	return work, nil
}

// isItemFile accepts regular files and symlinks to regular files. Dangling
// links and links to directories are skipped.
func isItemFile(path string, entry fs.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
