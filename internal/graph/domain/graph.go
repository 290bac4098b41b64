package domain

// NodeType distinguishes the kinds of graph nodes.
type NodeType string

const (
	NodeTypeFile    NodeType = "file"    // template, helper or notes file
	NodeTypeChart   NodeType = "chart"   // Chart.yaml
	NodeTypeValues  NodeType = "values"  // values.yaml
	NodeTypeRelease NodeType = "release" // synthetic release info
	NodeTypeValue   NodeType = "value"   // a referenced values path
	NodeTypeHelper  NodeType = "helper"  // a define block
)

// ReleaseNodeID is the id of the singleton release node.
const ReleaseNodeID = "release:info"

// FileNodeID returns the node id of a chart file.
func FileNodeID(path string) string { return "file:" + path }

// ValueNodeID returns the node id of a values path.
func ValueNodeID(path string) string { return "value:" + path }

// HelperNodeID returns the node id of a helper definition.
func HelperNodeID(name string) string { return "helper:" + name }

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the display payload of a node. Only the fields relevant to the
// node's type are set.
type NodeData struct {
	Label          string   `json:"label"`
	FilePath       string   `json:"filePath,omitempty"`
	FileType       FileType `json:"fileType,omitempty"`
	ValuePath      string   `json:"valuePath,omitempty"`
	Value          any      `json:"value,omitempty"`
	ValueType      string   `json:"valueType,omitempty"`
	Defined        bool     `json:"defined,omitempty"`
	HelperName     string   `json:"helperName,omitempty"`
	Line           int      `json:"line,omitempty"`
	ReferenceCount int      `json:"referenceCount,omitempty"`
}

// Node is a vertex of the chart graph.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// EdgeData carries the originating reference details.
type EdgeData struct {
	ReferenceType ReferenceType `json:"referenceType"`
	Expression    string        `json:"expression"`
}

// Edge is a directed reference from a file to its target.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Label  string   `json:"label"`
	Type   string   `json:"type"`
	Data   EdgeData `json:"data"`
}

// Graph is the node/edge structure handed to the rendering surface.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeIndex maps node ids to their position in g.Nodes.
func (g Graph) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// FilterByFile reduces g to the node of the given file, its direct
// neighbours and the edges connecting them. An unknown file yields an empty
// graph.
func FilterByFile(g Graph, filePath string) Graph {
	id := FileNodeID(filePath)
	idx := g.NodeIndex()
	if _, ok := idx[id]; !ok {
		return Graph{Nodes: []Node{}, Edges: []Edge{}}
	}

	keep := map[string]struct{}{id: {}}
	edges := []Edge{}
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			continue
		}
		_, srcOK := idx[e.Source]
		_, tgtOK := idx[e.Target]
		if !srcOK || !tgtOK {
			continue
		}
		keep[e.Source] = struct{}{}
		keep[e.Target] = struct{}{}
		edges = append(edges, e)
	}

	nodes := make([]Node, 0, len(keep))
	for _, n := range g.Nodes {
		if _, ok := keep[n.ID]; ok {
			nodes = append(nodes, n)
		}
	}
	return Graph{Nodes: nodes, Edges: edges}
}

// GraphStats summarizes a graph for display.
type GraphStats struct {
	TotalNodes  int            `json:"totalNodes"`
	TotalEdges  int            `json:"totalEdges"`
	NodesByType map[string]int `json:"nodesByType"`
	EdgesByType map[string]int `json:"edgesByType"`
}

// ComputeStats counts nodes by type and edges by reference type.
func ComputeStats(g Graph) GraphStats {
	stats := GraphStats{
		TotalNodes:  len(g.Nodes),
		TotalEdges:  len(g.Edges),
		NodesByType: make(map[string]int),
		EdgesByType: make(map[string]int),
	}
	for _, n := range g.Nodes {
		stats.NodesByType[string(n.Type)]++
	}
	for _, e := range g.Edges {
		stats.EdgesByType[string(e.Data.ReferenceType)]++
	}
	return stats
}

// Analysis is the result of running the full pipeline over one file mapping.
// Values returned from caches are shared and must be treated as read-only.
type Analysis struct {
	Fingerprint string     `json:"fingerprint"`
	Chart       HelmChart  `json:"chart"`
	Graph       Graph      `json:"graph"`
	Stats       GraphStats `json:"stats"`
}
