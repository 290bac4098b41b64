package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Comparison is the result of diffing the reference listings of two charts.
type Comparison struct {
	BaseFingerprint string `json:"baseFingerprint"`
	HeadFingerprint string `json:"headFingerprint"`
	Diff            string `json:"diff"`
	Changed         bool   `json:"changed"`
}

// ReferenceListing renders one line per reference, sorted by file then line:
// "<file>:<line>\t<type>\t<target>\t<expression>".
func ReferenceListing(refs []Reference) string {
	sorted := make([]Reference, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Source, sorted[j].Source
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})

	var sb strings.Builder
	for _, r := range sorted {
		fmt.Fprintf(&sb, "%s:%d\t%s\t%s\t%s\n", r.Source.File, r.Line, r.Type, r.Target.Path, r.Expression)
	}
	return sb.String()
}
