// Package layout positions graph nodes in four fixed columns and orders each
// column with the barycenter heuristic to reduce edge crossings.
//
// The engine is pure: Apply returns new nodes and only positions differ from
// the input. Given the same nodes in the same order and the same edges, the
// result is identical, so re-running it on its own output is a no-op.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

// Column returns the column a node type is placed in.
func Column(t domain.NodeType) int {
	switch t {
	case domain.NodeTypeChart, domain.NodeTypeValues, domain.NodeTypeRelease:
		return ColumnMeta
	case domain.NodeTypeValue:
		return ColumnValues
	case domain.NodeTypeHelper:
		return ColumnHelpers
	default:
		return ColumnFiles
	}
}

// Apply lays out nodes using edges for connectivity. Edges whose endpoints
// are not among nodes are ignored.
func Apply(nodes []domain.Node, edges []domain.Edge, cfg Config) []domain.Node {
	cfg = cfg.WithDefaults()

	out := make([]domain.Node, len(nodes))
	copy(out, nodes)
	if len(out) == 0 {
		return out
	}

	idx := make(map[string]int, len(out))
	for i, n := range out {
		idx[n.ID] = i
	}

	// neighbours holds one entry per edge end, so parallel edges weigh more.
	neighbours := make([][]int, len(out))
	for _, e := range edges {
		s, okS := idx[e.Source]
		t, okT := idx[e.Target]
		if !okS || !okT {
			continue
		}
		neighbours[s] = append(neighbours[s], t)
		neighbours[t] = append(neighbours[t], s)
	}

	var columns [numColumns][]int
	for i, n := range out {
		c := Column(n.Type)
		columns[c] = append(columns[c], i)
	}

	for c := range columns {
		col := columns[c]
		sort.SliceStable(col, func(a, b int) bool {
			return len(neighbours[col[a]]) > len(neighbours[col[b]])
		})
		for row, i := range col {
			out[i].Position = domain.Position{X: cfg.ColumnX[c], Y: float64(row) * cfg.VerticalSpacing}
		}
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		for c := 0; c < numColumns; c++ {
			reorder(out, columns[c], neighbours, cfg.VerticalSpacing)
		}
		for c := numColumns - 1; c >= 0; c-- {
			reorder(out, columns[c], neighbours, cfg.VerticalSpacing)
		}
	}

	groupValues(out, columns[ColumnValues], cfg)

	center(out, columns[:])
	return out
}

// reorder sorts one column by the mean y of each node's neighbours, using
// positions as they stand before the column moves. Nodes without neighbours
// go last in their current order.
func reorder(nodes []domain.Node, col []int, neighbours [][]int, spacing float64) {
	if len(col) == 0 {
		return
	}
	bary := make(map[int]float64, len(col))
	for _, i := range col {
		nb := neighbours[i]
		if len(nb) == 0 {
			bary[i] = math.Inf(1)
			continue
		}
		var sum float64
		for _, j := range nb {
			sum += nodes[j].Position.Y
		}
		bary[i] = sum / float64(len(nb))
	}
	sort.SliceStable(col, func(a, b int) bool {
		return bary[col[a]] < bary[col[b]]
	})
	for row, i := range col {
		nodes[i].Position.Y = float64(row) * spacing
	}
}

// groupValues re-packs the value column so paths sharing a top-level key sit
// together, with GroupPadding between groups and nested paths indented.
func groupValues(nodes []domain.Node, col []int, cfg Config) {
	if len(col) == 0 {
		return
	}
	groups := make(map[string][]int)
	for _, i := range col {
		key := domain.TopLevelKey(valuePath(nodes[i]))
		groups[key] = append(groups[key], i)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	baseX := cfg.ColumnX[ColumnValues]
	y := 0.0
	for gi, k := range keys {
		members := groups[k]
		sort.SliceStable(members, func(a, b int) bool {
			pa, pb := valuePath(nodes[members[a]]), valuePath(nodes[members[b]])
			da, db := strings.Count(pa, "."), strings.Count(pb, ".")
			if da != db {
				return da < db
			}
			return pa < pb
		})
		if gi > 0 {
			y += *cfg.GroupPadding
		}
		for _, i := range members {
			x := baseX
			if strings.Contains(valuePath(nodes[i]), ".") {
				x += *cfg.NestedIndent
			}
			nodes[i].Position = domain.Position{X: x, Y: y}
			y += cfg.VerticalSpacing
		}
	}
}

func valuePath(n domain.Node) string {
	if n.Data.ValuePath != "" {
		return n.Data.ValuePath
	}
	return strings.TrimPrefix(n.ID, "value:")
}

// center shifts every column so its vertical span is centred on the tallest
// column's span, which starts at y = 0.
func center(nodes []domain.Node, columns [][]int) {
	type span struct{ min, max float64 }
	spans := make([]span, len(columns))
	maxSpan := 0.0
	for c, col := range columns {
		if len(col) == 0 {
			continue
		}
		s := span{min: math.Inf(1), max: math.Inf(-1)}
		for _, i := range col {
			s.min = math.Min(s.min, nodes[i].Position.Y)
			s.max = math.Max(s.max, nodes[i].Position.Y)
		}
		spans[c] = s
		maxSpan = math.Max(maxSpan, s.max-s.min)
	}
	for c, col := range columns {
		if len(col) == 0 {
			continue
		}
		s := spans[c]
		shift := (maxSpan-(s.max-s.min))/2 - s.min
		for _, i := range col {
			nodes[i].Position.Y += shift
		}
	}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the box enclosing all nodes, each NodeWidth by NodeHeight.
func Bounds(nodes []domain.Node, cfg Config) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	cfg = cfg.WithDefaults()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+cfg.NodeWidth)
		maxY = math.Max(maxY, n.Position.Y+cfg.NodeHeight)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
