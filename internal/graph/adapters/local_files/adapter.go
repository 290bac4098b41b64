// Package localfiles reads a chart directory from disk into a raw
// path->content mapping, the same shape a folder drop produces.
package localfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

// DefaultMaxFileBytes bounds the size of a single file that is read.
const DefaultMaxFileBytes = 1 << 20

// Adapter implements ports.ChartSourcePort for local directories.
type Adapter struct {
	maxFileBytes int64
	logger       *slog.Logger
}

// New creates a local directory source. Files larger than maxFileBytes are
// skipped; a non-positive value uses DefaultMaxFileBytes.
func New(maxFileBytes int64, logger *slog.Logger) *Adapter {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{maxFileBytes: maxFileBytes, logger: logger}
}

// LoadFiles walks dir and returns every regular file keyed by its
// forward-slash path, prefixed with the directory's own name. .git
// directories are not descended into.
func (a *Adapter) LoadFiles(ctx context.Context, dir string) (map[string]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewNotFoundError(dir, "")
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	prefix := filepath.Base(abs)

	files := make(map[string]string)
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if fi.Size() > a.maxFileBytes {
			a.logger.Debug("skipping large file", "path", p, "size", fi.Size())
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		files[prefix+"/"+filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	a.logger.Debug("loaded chart directory", "dir", abs, "files", len(files))
	return files, nil
}
