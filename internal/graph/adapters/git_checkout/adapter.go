// Package gitcheckout serves chart files from a git clone that is kept in
// sync in the background. Each sync replaces the in-memory snapshot.
package gitcheckout

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/nathantilsley/chart-graph/internal/graph/ports"
)

// ErrNotSynced is returned until the first sync has produced a snapshot.
var ErrNotSynced = errors.New("chart repository has not been synced yet")

// Snapshot is the chart's files as of one commit.
type Snapshot struct {
	Head     string
	SyncedAt time.Time
	Files    map[string]string
}

// Adapter implements ports.ChartSourcePort over the latest snapshot.
type Adapter struct {
	loader    ports.ChartSourcePort
	chartPath string
	logger    *slog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
}

// New creates an adapter that reads chartPath (relative to the clone root)
// through loader on every sync.
func New(loader ports.ChartSourcePort, chartPath string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{loader: loader, chartPath: chartPath, logger: logger}
}

// OnSync reloads the chart from dir. It matches gitrepo.SyncFunc. A failed
// reload keeps the previous snapshot.
func (a *Adapter) OnSync(ctx context.Context, dir, head string) {
	files, err := a.loader.LoadFiles(ctx, filepath.Join(dir, a.chartPath))
	if err != nil {
		a.logger.Error("failed to reload chart after sync", "head", head, "error", err)
		return
	}

	a.mu.Lock()
	a.snapshot = &Snapshot{Head: head, SyncedAt: time.Now(), Files: files}
	a.mu.Unlock()

	a.logger.Info("chart snapshot updated", "head", head, "files", len(files))
}

// Snapshot returns the latest snapshot. The files map is shared and must
// not be modified.
func (a *Adapter) Snapshot() (Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil {
		return Snapshot{}, ErrNotSynced
	}
	return *a.snapshot, nil
}

// LoadFiles returns a copy of the latest snapshot's files. location is
// ignored; the chart path is fixed at construction.
func (a *Adapter) LoadFiles(_ context.Context, _ string) (map[string]string, error) {
	s, err := a.Snapshot()
	if err != nil {
		return nil, err
	}
	files := make(map[string]string, len(s.Files))
	for k, v := range s.Files {
		files[k] = v
	}
	return files, nil
}
