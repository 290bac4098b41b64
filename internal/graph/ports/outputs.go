package ports

import (
	"context"
)

// ChartSourcePort abstracts acquiring a chart's files as a raw path->content
// mapping, the same shape a folder drop produces.
type ChartSourcePort interface {
	LoadFiles(ctx context.Context, location string) (map[string]string, error)
}

// DiffPort abstracts computing a textual diff between two documents.
type DiffPort interface {
	ComputeDiff(baseName, headName string, base, head []byte) string
}
