package domain

import (
	"errors"
	"fmt"
)

// ErrNoChartFile is returned at the ingestion boundary when a drop contains
// no Chart.yaml. The core pipeline is never invoked for such input.
var ErrNoChartFile = errors.New("no Chart.yaml found: not a Helm chart")

// ErrInvalidLayout is returned when a layout override cannot be applied.
var ErrInvalidLayout = errors.New("invalid layout config")

// NotFoundError indicates that a chart path does not exist at a source ref.
type NotFoundError struct {
	Path string
	Ref  string
}

// NewNotFoundError creates a NotFoundError for the given path and ref.
func NewNotFoundError(path, ref string) *NotFoundError {
	return &NotFoundError{Path: path, Ref: ref}
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("chart path %q not found", e.Path)
	}
	return fmt.Sprintf("chart path %q not found at ref %q", e.Path, e.Ref)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
