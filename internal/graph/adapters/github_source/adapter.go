// Package githubsource loads chart files from a GitHub repository tarball.
package githubsource

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

// DefaultMaxArchiveBytes bounds the uncompressed bytes read from a tarball.
const DefaultMaxArchiveBytes = 64 << 20

// Location identifies a chart inside a GitHub repository.
type Location struct {
	Owner string
	Repo  string
	Path  string // chart directory relative to the repo root; "" for the root
	Ref   string // branch, tag or sha; "" for the default branch
}

// ParseLocation parses "owner/repo[/path][@ref]".
func ParseLocation(s string) (Location, error) {
	var loc Location
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		loc.Ref = s[i+1:]
		s = s[:i]
	}
	parts := strings.SplitN(strings.Trim(s, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Location{}, fmt.Errorf("invalid github location %q: want owner/repo[/path][@ref]", s)
	}
	loc.Owner, loc.Repo = parts[0], parts[1]
	if len(parts) == 3 {
		loc.Path = strings.Trim(path.Clean(parts[2]), "/")
		if loc.Path == "." {
			loc.Path = ""
		}
	}
	return loc, nil
}

// Adapter implements ports.ChartSourcePort by downloading a repository
// tarball and reading the chart directory from it in memory.
type Adapter struct {
	client          *gogithub.Client
	httpClient      *http.Client
	maxArchiveBytes int64
	logger          *slog.Logger
}

// New creates a GitHub source. httpClient downloads the archive itself and
// defaults to http.DefaultClient.
func New(client *gogithub.Client, httpClient *http.Client, logger *slog.Logger) *Adapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		client:          client,
		httpClient:      httpClient,
		maxArchiveBytes: DefaultMaxArchiveBytes,
		logger:          logger,
	}
}

// LoadFiles fetches the chart at location ("owner/repo[/path][@ref]"). Keys
// are prefixed with the chart directory's name, mirroring a folder drop. A
// path with no files at the ref yields a domain.NotFoundError.
func (a *Adapter) LoadFiles(ctx context.Context, location string) (map[string]string, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	archiveURL, resp, err := a.client.Repositories.GetArchiveLink(ctx, loc.Owner, loc.Repo, gogithub.Tarball,
		&gogithub.RepositoryContentGetOptions{Ref: loc.Ref}, 10)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, domain.NewNotFoundError(loc.Owner+"/"+loc.Repo, loc.Ref)
		}
		return nil, fmt.Errorf("getting archive link: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating archive request: %w", err)
	}
	dl, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading archive: %w", err)
	}
	defer dl.Body.Close()

	if dl.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status downloading archive: %d", dl.StatusCode)
	}

	prefix := loc.Path
	if prefix == "" {
		prefix = loc.Repo
	} else {
		prefix = path.Base(prefix)
	}

	files, err := readChartFromTarGz(dl.Body, loc.Path, prefix, a.maxArchiveBytes)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	if len(files) == 0 {
		return nil, domain.NewNotFoundError(loc.Path, loc.Ref)
	}

	a.logger.Debug("loaded chart from github",
		"owner", loc.Owner, "repo", loc.Repo, "path", loc.Path, "ref", loc.Ref, "files", len(files))
	return files, nil
}

// readChartFromTarGz returns the regular files under chartPath. GitHub
// tarballs wrap everything in one top-level directory, which is dropped.
func readChartFromTarGz(r io.Reader, chartPath, prefix string, maxBytes int64) (map[string]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	files := make(map[string]string)
	var total int64
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name, err := safeEntryName(header.Name)
		if err != nil {
			return nil, err
		}
		// drop the owner-repo-sha/ directory
		_, rel, ok := strings.Cut(name, "/")
		if !ok {
			continue
		}
		if chartPath != "" {
			if !strings.HasPrefix(rel, chartPath+"/") {
				continue
			}
			rel = strings.TrimPrefix(rel, chartPath+"/")
		}

		total += header.Size
		if total > maxBytes {
			return nil, fmt.Errorf("chart exceeds %d bytes", maxBytes)
		}
		content, err := io.ReadAll(io.LimitReader(tr, header.Size))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", header.Name, err)
		}
		files[prefix+"/"+rel] = string(content)
	}
	return files, nil
}

// safeEntryName rejects absolute paths and entries escaping the archive root.
func safeEntryName(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return cleaned, nil
}
