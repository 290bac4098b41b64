// Package linediff renders unified diffs of reference listings.
package linediff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Adapter implements ports.DiffPort with a line-based unified diff.
type Adapter struct {
	context int
}

// New creates a diff adapter. A negative context falls back to DefaultContext.
func New(context int) *Adapter {
	if context < 0 {
		context = DefaultContext
	}
	return &Adapter{context: context}
}

// ComputeDiff returns the unified diff of base and head, or "" when they are
// identical.
func (a *Adapter) ComputeDiff(baseName, headName string, base, head []byte) string {
	if string(base) == string(head) {
		return ""
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(base)),
		B:        difflib.SplitLines(string(head)),
		FromFile: baseName,
		ToFile:   headName,
		Context:  a.context,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("error computing diff: %s", err)
	}
	return strings.TrimSpace(text)
}
