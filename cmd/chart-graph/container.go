// Package main provides the chart-graph HTTP server, which turns Helm chart
// file drops into laid-out dependency graphs.
package main

import (
	"context"
	"fmt"
	"log/slog"

	gitcheckout "github.com/nathantilsley/chart-graph/internal/graph/adapters/git_checkout"
	httpin "github.com/nathantilsley/chart-graph/internal/graph/adapters/http_in"
	linediff "github.com/nathantilsley/chart-graph/internal/graph/adapters/line_diff"
	localfiles "github.com/nathantilsley/chart-graph/internal/graph/adapters/local_files"
	"github.com/nathantilsley/chart-graph/internal/graph/app"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
	"github.com/nathantilsley/chart-graph/internal/graph/ports"
	"github.com/nathantilsley/chart-graph/internal/platform/config"
	"github.com/nathantilsley/chart-graph/internal/platform/gitrepo"
	"github.com/nathantilsley/chart-graph/internal/platform/telemetry"
)

// Container holds all application dependencies.
type Container struct {
	Config     config.Config
	Logger     *slog.Logger
	Telemetry  *telemetry.Telemetry
	Service    ports.AnalyzeUseCase
	Handler    *httpin.Handler
	GitRepo    *gitrepo.GitRepo // nil unless CHART_REPO_URL is set
	RepoCharts *gitcheckout.Adapter
}

// NewContainer builds and wires all dependencies.
func NewContainer(ctx context.Context, cfg config.Config, log *slog.Logger) (*Container, error) {
	// Platform dependencies
	tel, err := telemetry.New(ctx, cfg.OTelEnabled, version)
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

	// Domain service
	service, err := app.NewAnalyzeService(
		linediff.New(linediff.DefaultContext),
		log,
		tel.Meter,
		tel.Tracer,
		app.Options{CacheSize: cfg.CacheSize, Layout: layoutCfg},
	)
	if err != nil {
		return nil, fmt.Errorf("creating analyze service: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Logger:    log,
		Telemetry: tel,
		Service:   service,
	}

	// Optionally serve a chart from a synced git repository
	handlerOpts := httpin.Options{
		MaxBodyBytes:  cfg.MaxUploadBytes,
		MaxConcurrent: cfg.MaxConcurrentAnalyses,
		Layout:        layoutCfg,
	}
	if cfg.ChartRepoURL != "" {
		log.Info("chart repo integration enabled",
			"repo", cfg.ChartRepoURL,
			"chartPath", cfg.ChartRepoChartPath,
			"syncInterval", cfg.ChartRepoSyncInterval,
		)
		c.RepoCharts = gitcheckout.New(
			localfiles.New(localfiles.DefaultMaxFileBytes, log),
			cfg.ChartRepoChartPath,
			log,
		)
		c.GitRepo = gitrepo.New(cfg.ChartRepoURL, cfg.ChartRepoLocalPath, cfg.ChartRepoSyncInterval, log)
		c.GitRepo.OnSync(c.RepoCharts.OnSync)
		handlerOpts.Repo = c.RepoCharts
	} else {
		log.Info("chart repo not configured, serving uploads only")
	}

	c.Handler = httpin.NewHandler(service, log, handlerOpts)
	return c, nil
}
