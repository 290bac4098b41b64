// Package api holds the JSON request and response bodies of the chart-graph
// HTTP service.
package api

import (
	"time"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
)

// AnalyzeRequest is the body of POST /api/analyze. Files maps paths relative
// to the drop root to file contents. Layout overrides the server's layout
// settings for this request only.
type AnalyzeRequest struct {
	Files  map[string]string `json:"files"`
	Layout *layout.Config    `json:"layout,omitempty"`
}

// AnalyzeResponse is the full analysis of one chart.
type AnalyzeResponse struct {
	Fingerprint string            `json:"fingerprint"`
	Chart       domain.HelmChart  `json:"chart"`
	Graph       domain.Graph      `json:"graph"`
	Stats       domain.GraphStats `json:"stats"`
	Bounds      layout.Rect       `json:"bounds"`
}

// FilterRequest is the body of POST /api/filter.
type FilterRequest struct {
	Files map[string]string `json:"files"`
	File  string            `json:"file"`
}

// FilterResponse is the 1-hop subgraph around the requested file.
type FilterResponse struct {
	Graph domain.Graph      `json:"graph"`
	Stats domain.GraphStats `json:"stats"`
}

// DiffRequest is the body of POST /api/diff. Either side may be empty.
type DiffRequest struct {
	Base map[string]string `json:"base"`
	Head map[string]string `json:"head"`
}

// DiffResponse is the unified diff of the two charts' reference listings.
type DiffResponse struct {
	domain.Comparison
}

// RepoResponse is the analysis of the chart in the synced repository.
type RepoResponse struct {
	Head     string    `json:"head"`
	SyncedAt time.Time `json:"syncedAt"`
	AnalyzeResponse
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
