// Package gitrepo keeps a local git clone of a chart repository current:
// clone, fast-forward pull, and periodic background sync.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// SyncFunc is invoked after each successful sync with the clone's path and
// the commit it is at.
type SyncFunc func(ctx context.Context, dir, head string)

// GitRepo owns the clone/pull/sync lifecycle for a single git repository.
type GitRepo struct {
	repoURL      string
	localPath    string
	syncInterval time.Duration
	logger       *slog.Logger

	ready    atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	onSync   []SyncFunc
	mu       sync.Mutex // serializes pull + callbacks
}

// New creates a GitRepo. No I/O is performed; call Start to clone/pull.
func New(repoURL, localPath string, syncInterval time.Duration, logger *slog.Logger) *GitRepo {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &GitRepo{
		repoURL:      repoURL,
		localPath:    localPath,
		syncInterval: syncInterval,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// OnSync registers a callback run (under mu) after each successful pull.
// Register callbacks before Start.
func (r *GitRepo) OnSync(fn SyncFunc) {
	r.onSync = append(r.onSync, fn)
}

// Start performs the initial clone (or pull if already cloned), runs the
// OnSync callbacks, marks the repo ready and starts the background sync
// goroutine. A non-positive sync interval disables background sync.
func (r *GitRepo) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initRepo(ctx); err != nil {
		return fmt.Errorf("initializing repo: %w", err)
	}
	if err := r.runCallbacks(ctx); err != nil {
		return err
	}
	r.ready.Store(true)

	if r.syncInterval > 0 {
		go r.syncLoop(ctx)
	}
	r.logger.Info("gitrepo started", "repoURL", r.repoURL, "syncInterval", r.syncInterval)
	return nil
}

// Ready returns true after Start completes the initial clone and first callback cycle.
func (r *GitRepo) Ready() bool {
	return r.ready.Load()
}

// Path returns the local filesystem path of the cloned repository.
func (r *GitRepo) Path() string {
	return r.localPath
}

// Stop signals the background sync goroutine to exit. It is safe to call
// more than once.
func (r *GitRepo) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Sync pulls the latest commit and runs the callbacks.
func (r *GitRepo) Sync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.pullRepo(ctx); err != nil {
		return err
	}
	return r.runCallbacks(ctx)
}

// Head returns the commit sha the clone is at.
func (r *GitRepo) Head(ctx context.Context) (string, error) {
	//nolint:gosec // G204: localPath is from trusted config, not user input
	cmd := exec.CommandContext(ctx, "git", "-C", r.localPath, "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// initRepo clones the repository if it doesn't exist, or pulls latest if it does.
func (r *GitRepo) initRepo(ctx context.Context) error {
	gitDir := filepath.Join(r.localPath, ".git")

	if _, err := os.Stat(gitDir); err == nil {
		r.logger.Info("repository already exists, pulling latest")
		return r.pullRepo(ctx)
	}

	r.logger.Info("cloning repository", "repoURL", r.repoURL)
	//nolint:gosec // G204: repoURL is from trusted config, not user input
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", r.repoURL, r.localPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone failed: %w\noutput: %s", err, output)
	}
	return nil
}

func (r *GitRepo) pullRepo(ctx context.Context) error {
	//nolint:gosec // G204: localPath is from trusted config, not user input
	cmd := exec.CommandContext(ctx, "git", "-C", r.localPath, "pull", "--ff-only")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git pull failed: %w\noutput: %s", err, output)
	}
	return nil
}

func (r *GitRepo) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(r.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.logger.Info("syncing git repository")
			if err := r.Sync(ctx); err != nil {
				r.logger.Error("failed to sync repository", "error", err)
				continue
			}
			r.logger.Info("git repository synced successfully")
		case <-ctx.Done():
			r.logger.Info("context done, stopping gitrepo sync loop")
			return
		case <-r.stopCh:
			r.logger.Info("stopping gitrepo sync loop")
			return
		}
	}
}

// runCallbacks invokes all OnSync callbacks sequentially. Must be called under mu.
func (r *GitRepo) runCallbacks(ctx context.Context) error {
	if len(r.onSync) == 0 {
		return nil
	}
	head, err := r.Head(ctx)
	if err != nil {
		return err
	}
	for _, fn := range r.onSync {
		fn(ctx, r.localPath, head)
	}
	return nil
}
