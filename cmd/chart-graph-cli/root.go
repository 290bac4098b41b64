package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	githubsource "github.com/nathantilsley/chart-graph/internal/graph/adapters/github_source"
	linediff "github.com/nathantilsley/chart-graph/internal/graph/adapters/line_diff"
	localfiles "github.com/nathantilsley/chart-graph/internal/graph/adapters/local_files"
	"github.com/nathantilsley/chart-graph/internal/graph/app"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
	"github.com/nathantilsley/chart-graph/internal/graph/ports"
	"github.com/nathantilsley/chart-graph/internal/platform/config"
	ghclient "github.com/nathantilsley/chart-graph/internal/platform/github"
	"github.com/nathantilsley/chart-graph/internal/platform/logger"
	"github.com/nathantilsley/chart-graph/internal/platform/telemetry"
)

const githubPrefix = "github:"

// RootOptions holds the flags shared by every subcommand.
type RootOptions struct {
	LogLevel     string
	MaxFileBytes int64
	Pretty       bool

	// loaders resolve a source to files; tests replace them.
	local  func(int64, *slog.Logger) ports.ChartSourcePort
	remote func(config.Config, *slog.Logger) (ports.ChartSourcePort, error)
}

func NewRootOptions() *RootOptions {
	return &RootOptions{
		local: func(maxFileBytes int64, log *slog.Logger) ports.ChartSourcePort {
			return localfiles.New(maxFileBytes, log)
		},
		remote: newGitHubSource,
	}
}

func NewRootCmd(o *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chart-graph-cli",
		Short:         "Inspect the dependency graph of a Helm chart",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error); logs go to stderr")
	cmd.PersistentFlags().Int64Var(&o.MaxFileBytes, "max-file-bytes", localfiles.DefaultMaxFileBytes, "Skip local files larger than this")
	cmd.PersistentFlags().BoolVar(&o.Pretty, "pretty", true, "Indent JSON output")

	cmd.AddCommand(
		NewAnalyzeCmd(o),
		NewStatsCmd(o),
		NewReferencesCmd(o),
		NewFilterCmd(o),
		NewDiffCmd(o),
	)
	return cmd
}

// session is what a subcommand needs to run one analysis.
type session struct {
	cfg     config.Config
	log     *slog.Logger
	service *app.AnalyzeService
	o       *RootOptions
}

func (o *RootOptions) session(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logger.NewWithWriter(o.LogLevel, os.Stderr)

	tel, err := telemetry.New(ctx, false, version)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	layoutCfg := layout.DefaultConfig()
	if cfg.LayoutVerticalSpacing > 0 {
		layoutCfg.VerticalSpacing = cfg.LayoutVerticalSpacing
	}
	if cfg.LayoutGroupPadding > 0 {
		layoutCfg.GroupPadding = layout.Float(cfg.LayoutGroupPadding)
	}

	svc, err := app.NewAnalyzeService(
		linediff.New(linediff.DefaultContext),
		log,
		tel.Meter,
		tel.Tracer,
		app.Options{CacheSize: cfg.CacheSize, Layout: layoutCfg},
	)
	if err != nil {
		return nil, fmt.Errorf("creating analyze service: %w", err)
	}
	return &session{cfg: cfg, log: log, service: svc, o: o}, nil
}

// load reads a chart from a local directory or, with the github: prefix,
// from owner/repo[/path][@ref].
func (s *session) load(ctx context.Context, source string) (map[string]string, error) {
	if loc, ok := strings.CutPrefix(source, githubPrefix); ok {
		src, err := s.o.remote(s.cfg, s.log)
		if err != nil {
			return nil, err
		}
		files, err := src.LoadFiles(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", source, err)
		}
		return files, nil
	}

	files, err := s.o.local(s.o.MaxFileBytes, s.log).LoadFiles(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	return files, nil
}

func newGitHubSource(cfg config.Config, log *slog.Logger) (ports.ChartSourcePort, error) {
	creds := ghclient.Credentials{
		Token:          cfg.GitHubToken,
		AppID:          cfg.GitHubAppID,
		InstallationID: cfg.GitHubInstallationID,
		PrivateKeyPEM:  cfg.GitHubPrivateKey,
	}
	client, httpClient, err := ghclient.NewClient(creds)
	if err != nil {
		return nil, fmt.Errorf("creating github client: %w", err)
	}
	log.Debug("github client ready", "auth", creds.Mode())
	return githubsource.New(client, httpClient, log), nil
}

func (o *RootOptions) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if o.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
