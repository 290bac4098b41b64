// Package builder turns an assembled HelmChart into graph nodes and edges.
// Nodes and edges are joined purely by string ids; positions are left at the
// origin for the layout engine.
package builder

import (
	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

// ReleaseLabel is the display label of the synthetic release node.
const ReleaseLabel = "Release"

// Build creates the chart's nodes and edges in a deterministic order.
func Build(chart domain.HelmChart) domain.Graph {
	refCounts := make(map[string]int)
	for _, r := range chart.References {
		refCounts[r.Source.File]++
	}

	var nodes []domain.Node
	for _, f := range chart.Files {
		switch f.Type {
		case domain.FileTypeTemplate, domain.FileTypeHelper, domain.FileTypeNotes:
			nodes = append(nodes, fileNode(f, domain.NodeTypeFile, refCounts[f.Path]))
		}
	}

	chartNodeID := ""
	if f, ok := chart.ChartFile(); ok {
		n := fileNode(f, domain.NodeTypeChart, 0)
		n.Data.Label = chart.Name
		nodes = append(nodes, n)
		chartNodeID = n.ID
	}

	nodes = append(nodes, domain.Node{
		ID:   domain.ReleaseNodeID,
		Type: domain.NodeTypeRelease,
		Data: domain.NodeData{Label: ReleaseLabel},
	})

	if f, ok := chart.ValuesFile(); ok {
		nodes = append(nodes, fileNode(f, domain.NodeTypeValues, 0))
	}

	var raw map[string]any
	if chart.Values != nil {
		raw = chart.Values.Raw
	}
	seenValues := make(map[string]bool)
	for _, r := range chart.References {
		if r.Type != domain.RefValues || seenValues[r.Target.Path] {
			continue
		}
		seenValues[r.Target.Path] = true
		nodes = append(nodes, valueNode(r.Target.Path, raw))
	}

	seenHelpers := make(map[string]bool)
	for _, h := range chart.Helpers {
		if seenHelpers[h.Name] {
			continue
		}
		seenHelpers[h.Name] = true
		nodes = append(nodes, domain.Node{
			ID:   domain.HelperNodeID(h.Name),
			Type: domain.NodeTypeHelper,
			Data: domain.NodeData{
				Label:      h.Name,
				HelperName: h.Name,
				FilePath:   h.File,
				Line:       h.Line,
			},
		})
	}

	if nodes == nil {
		nodes = []domain.Node{}
	}
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}

	edges := []domain.Edge{}
	for _, r := range chart.References {
		target, ok := edgeTarget(r, chartNodeID)
		if !ok {
			continue
		}
		source := domain.FileNodeID(r.Source.File)
		if !ids[source] || !ids[target] {
			continue
		}
		edges = append(edges, domain.Edge{
			ID:     r.ID,
			Source: source,
			Target: target,
			Label:  r.Target.Path,
			Type:   string(r.Type),
			Data: domain.EdgeData{
				ReferenceType: r.Type,
				Expression:    r.Expression,
			},
		})
	}

	return domain.Graph{Nodes: nodes, Edges: edges}
}

// edgeTarget resolves the node id a reference points at. Files and
// capabilities references have no node and yield false.
func edgeTarget(r domain.Reference, chartNodeID string) (string, bool) {
	switch r.Type {
	case domain.RefValues:
		return domain.ValueNodeID(r.Target.Path), true
	case domain.RefInclude, domain.RefTemplate:
		return domain.HelperNodeID(r.Target.Path), true
	case domain.RefChart:
		return chartNodeID, chartNodeID != ""
	case domain.RefRelease:
		return domain.ReleaseNodeID, true
	default:
		return "", false
	}
}

func fileNode(f domain.HelmFile, t domain.NodeType, refCount int) domain.Node {
	return domain.Node{
		ID:   domain.FileNodeID(f.Path),
		Type: t,
		Data: domain.NodeData{
			Label:          f.Name,
			FilePath:       f.Path,
			FileType:       f.Type,
			ReferenceCount: refCount,
		},
	}
}

func valueNode(path string, raw map[string]any) domain.Node {
	n := domain.Node{
		ID:   domain.ValueNodeID(path),
		Type: domain.NodeTypeValue,
		Data: domain.NodeData{Label: path, ValuePath: path},
	}
	if v, ok := domain.LookupPath(raw, path); ok {
		n.Data.Defined = true
		n.Data.Value = v
		n.Data.ValueType = domain.ValueType(v)
	}
	return n
}
