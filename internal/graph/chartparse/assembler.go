// Package chartparse assembles a HelmChart from a raw path->content mapping.
package chartparse

import (
	"log/slog"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/extract"
)

// Assembler classifies chart files, runs the extractors and builds the chart
// aggregate. Parsing never fails: malformed input degrades to empty data.
type Assembler struct {
	logger *slog.Logger
}

// New creates an Assembler. A nil logger discards log output.
func New(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assembler{logger: logger}
}

// Assemble builds a HelmChart from files keyed by raw (possibly OS-specific,
// folder-prefixed) paths.
func (a *Assembler) Assemble(files map[string]string) domain.HelmChart {
	rawPaths := domain.SortedKeys(files)
	root, rootFound := domain.DetectRoot(rawPaths)

	byPath := make(map[string]domain.HelmFile)
	for _, raw := range rawPaths {
		p := domain.NormalizePath(raw, root, rootFound)
		if !domain.IsRelevant(p) {
			a.logger.Debug("skipping irrelevant file", "path", raw)
			continue
		}
		byPath[p] = domain.HelmFile{
			Path:    p,
			Name:    path.Base(p),
			Type:    domain.ClassifyFile(p),
			Content: files[raw],
		}
	}

	chart := domain.HelmChart{
		Files:        make([]domain.HelmFile, 0, len(byPath)),
		References:   []domain.Reference{},
		Helpers:      []domain.HelperDefinition{},
		Dependencies: []domain.Dependency{},
	}

	var (
		meta     domain.ChartMetadata
		haveMeta bool
	)
	for _, p := range sortedFileKeys(byPath) {
		f := byPath[p]
		chart.Files = append(chart.Files, f)

		switch f.Type {
		case domain.FileTypeChart:
			if haveMeta {
				continue
			}
			meta = a.parseChartMetadata(f)
			haveMeta = true
		case domain.FileTypeValues:
			chart.Values = domain.NewValuesData(a.parseValues(f))
		case domain.FileTypeTemplate, domain.FileTypeNotes:
			chart.References = append(chart.References, extract.References(f.Content, f.Path)...)
		case domain.FileTypeHelper:
			chart.References = append(chart.References, extract.References(f.Content, f.Path)...)
			chart.Helpers = append(chart.Helpers, extract.Helpers(f.Content, f.Path)...)
		}
	}

	if !haveMeta {
		a.logger.Debug("no Chart.yaml ingested, using stub metadata")
		meta = domain.StubChartMetadata()
	}
	chart.ChartYAML = meta
	chart.Name = meta.Name
	if chart.Name == "" {
		chart.Name = domain.UnknownChartName
	}
	chart.Version = meta.Version
	if chart.Version == "" {
		chart.Version = domain.UnknownChartVersion
	}
	chart.Description = meta.Description
	if meta.Dependencies != nil {
		chart.Dependencies = meta.Dependencies
	}

	a.logger.Debug("chart assembled",
		"chart", chart.Name,
		"files", len(chart.Files),
		"references", len(chart.References),
		"helpers", len(chart.Helpers),
	)
	return chart
}

// parseChartMetadata decodes Chart.yaml. Malformed YAML yields empty metadata.
func (a *Assembler) parseChartMetadata(f domain.HelmFile) domain.ChartMetadata {
	var meta domain.ChartMetadata
	if err := yaml.Unmarshal([]byte(f.Content), &meta); err != nil {
		a.logger.Debug("malformed chart metadata treated as empty", "path", f.Path, "error", err)
		return domain.ChartMetadata{}
	}
	return meta
}

// parseValues decodes values.yaml into a tree. Malformed YAML and documents
// whose root is not a mapping yield an empty tree.
func (a *Assembler) parseValues(f domain.HelmFile) map[string]any {
	var raw any
	if err := yaml.Unmarshal([]byte(f.Content), &raw); err != nil {
		a.logger.Debug("malformed values treated as empty", "path", f.Path, "error", err)
		return map[string]any{}
	}
	tree, ok := domain.NormalizeTree(raw).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return tree
}

func sortedFileKeys(m map[string]domain.HelmFile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
