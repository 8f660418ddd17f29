package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"oszimport/internal/logging"
	"oszimport/internal/services"
)

// TempPrefix names every directory a run extracts into.
const TempPrefix = "import-"

// Area is the directory an import run searches for items.
type Area struct {
	Dir string
	// Temporary areas were created by the run and must be removed by it.
	Temporary bool
	// Source is the path the user supplied.
	Source string
}

// Resolver turns a user-supplied path into an Area.
type Resolver struct {
	StagingDir string
	// ArchiveExtensions are matched case-insensitively and include the dot.
	ArchiveExtensions []string
	Logger            *slog.Logger
}

// IsArchive reports whether path names a supported archive by extension.
func (r *Resolver) IsArchive(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range r.ArchiveExtensions {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

// Resolve extracts archives into a new temporary directory and aliases
// everything else. A path that does not exist and is not an archive is
// aliased as-is so the lister can report it missing. Any partially created
// temporary directory is removed before an error is returned.
func (r *Resolver) Resolve(ctx context.Context, path string) (Area, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Area{}, services.Wrap(services.ErrResolution, "staging", "resolve", "no source path given", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "staging"))

	info, statErr := os.Stat(path)
	if statErr == nil && info.IsDir() {
		return Area{Dir: path, Source: path}, nil
	}

	if r.IsArchive(path) {
		if statErr != nil {
			return Area{}, services.Wrap(services.ErrResolution, "staging", "resolve", fmt.Sprintf("archive %q unreadable", path), statErr)
		}
		return r.extract(ctx, path, logger)
	}

	switch {
	case statErr == nil:
		return Area{}, services.Wrap(services.ErrResolution, "staging", "resolve", fmt.Sprintf("%q is neither a directory nor a supported archive", path), nil)
	case errors.Is(statErr, fs.ErrNotExist):
		return Area{Dir: path, Source: path}, nil
	default:
		return Area{}, services.Wrap(services.ErrResolution, "staging", "resolve", fmt.Sprintf("stat %q", path), statErr)
	}
}

func (r *Resolver) extract(ctx context.Context, archive string, logger *slog.Logger) (Area, error) {
	root := strings.TrimSpace(r.StagingDir)
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Area{}, services.Wrap(services.ErrResolution, "staging", "resolve", "create staging_dir", err)
	}
	dir, err := os.MkdirTemp(root, TempPrefix)
	if err != nil {
		return Area{}, services.Wrap(services.ErrResolution, "staging", "resolve", "create temporary directory", err)
	}

	logger.Info("extracting archive",
		logging.String("archive", archive),
		logging.String("dir", dir),
		logging.String(logging.FieldEventType, "archive_extract_start"),
	)
	files, err := ExtractZip(ctx, archive, dir)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logging.WarnWithContext(logger, "partial extraction left behind", "archive_extract_cleanup_failed",
				logging.String("dir", dir),
				logging.Error(rmErr),
				logging.String(logging.FieldErrorHint, "run oszimport staging clean"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
		return Area{}, err
	}
	logger.Info("archive extracted",
		logging.String("dir", dir),
		logging.Int("files", files),
		logging.String(logging.FieldEventType, "archive_extract_complete"),
	)
	return Area{Dir: dir, Temporary: true, Source: archive}, nil
}
