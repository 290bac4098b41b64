package ports

import (
	"context"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
)

// AnalyzeUseCase is the driving port for running the chart pipeline over a
// path->content mapping.
type AnalyzeUseCase interface {
	// Analyze validates, parses, builds and lays out the chart. cfg overrides
	// the service's layout configuration when non-nil.
	Analyze(ctx context.Context, files map[string]string, cfg *layout.Config) (domain.Analysis, error)
	// Filter analyzes the chart and reduces the graph to one file's 1-hop neighbourhood.
	Filter(ctx context.Context, files map[string]string, filePath string) (domain.Graph, error)
	// Compare diffs the reference listings of two charts.
	Compare(ctx context.Context, base, head map[string]string) (domain.Comparison, error)
}
