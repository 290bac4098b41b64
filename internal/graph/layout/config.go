package layout

import "fmt"

// Column indices, left to right.
const (
	ColumnFiles = iota
	ColumnMeta
	ColumnValues
	ColumnHelpers

	numColumns
)

// Config holds the layout constants. Zero fields fall back to DefaultConfig,
// except GroupPadding and NestedIndent, where only nil does so an explicit
// zero packs value groups flush.
type Config struct {
	NodeWidth         float64   `json:"nodeWidth,omitempty"`
	NodeHeight        float64   `json:"nodeHeight,omitempty"`
	HorizontalSpacing float64   `json:"horizontalSpacing,omitempty"`
	VerticalSpacing   float64   `json:"verticalSpacing,omitempty"`
	GroupPadding      *float64  `json:"groupPadding,omitempty"`
	ColumnX           []float64 `json:"columnX,omitempty"`
	NestedIndent      *float64  `json:"nestedIndent,omitempty"`
	Iterations        int       `json:"iterations,omitempty"`
}

// DefaultConfig returns the standard four-column layout.
func DefaultConfig() Config {
	return Config{
		NodeWidth:         250,
		NodeHeight:        60,
		HorizontalSpacing: 500,
		VerticalSpacing:   100,
		GroupPadding:      Float(40),
		ColumnX:           []float64{0, 500, 1000, 1600},
		NestedIndent:      Float(20),
		Iterations:        5,
	}
}

// Float returns a pointer to v, for the optional Config fields.
func Float(v float64) *float64 { return &v }

func negative(v *float64) bool { return v != nil && *v < 0 }

// WithDefaults fills unset fields from DefaultConfig. When HorizontalSpacing
// is set but ColumnX does not list one offset per column, columns are spaced
// evenly.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.NodeWidth == 0 {
		c.NodeWidth = d.NodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = d.NodeHeight
	}
	if c.VerticalSpacing == 0 {
		c.VerticalSpacing = d.VerticalSpacing
	}
	if c.GroupPadding == nil {
		c.GroupPadding = d.GroupPadding
	}
	if c.NestedIndent == nil {
		c.NestedIndent = d.NestedIndent
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if len(c.ColumnX) != numColumns {
		if c.HorizontalSpacing == 0 {
			c.HorizontalSpacing = d.HorizontalSpacing
			c.ColumnX = d.ColumnX
		} else {
			c.ColumnX = make([]float64, numColumns)
			for i := range c.ColumnX {
				c.ColumnX[i] = float64(i) * c.HorizontalSpacing
			}
		}
	}
	if c.HorizontalSpacing == 0 {
		c.HorizontalSpacing = d.HorizontalSpacing
	}
	return c
}

// Validate reports configurations the engine cannot lay out.
func (c Config) Validate() error {
	if c.NodeWidth < 0 || c.NodeHeight < 0 {
		return fmt.Errorf("node size must not be negative")
	}
	if c.VerticalSpacing < 0 || c.HorizontalSpacing < 0 || negative(c.GroupPadding) || negative(c.NestedIndent) {
		return fmt.Errorf("spacing must not be negative")
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	if len(c.ColumnX) != 0 && len(c.ColumnX) != numColumns {
		return fmt.Errorf("columnX must list %d offsets, got %d", numColumns, len(c.ColumnX))
	}
	return nil
}
