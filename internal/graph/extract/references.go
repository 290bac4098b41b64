package extract

import (
	"strings"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

// family is one expression family: a scanner plus the rule deriving the
// target path from a match.
type family struct {
	refType domain.ReferenceType
	scanner Scanner
	target  func(groups []string) string
}

func stripLeadingDot(groups []string) string {
	return strings.TrimPrefix(groups[0], ".")
}

func firstGroup(groups []string) string {
	return groups[0]
}

var families = []family{
	{
		refType: domain.RefValues,
		scanner: NewAccessorScanner(`\.Values((?:\.[A-Za-z_][A-Za-z0-9_]*|\[[^\]]+\])+)`),
		target:  stripLeadingDot,
	},
	{
		refType: domain.RefInclude,
		scanner: NewScanner(`\{\{-?\s*include\s+"([^"]+)"[^}]*\}\}`),
		target:  firstGroup,
	},
	{
		refType: domain.RefTemplate,
		scanner: NewScanner(`\{\{-?\s*template\s+"([^"]+)"[^}]*\}\}`),
		target:  firstGroup,
	},
	{
		refType: domain.RefChart,
		scanner: NewAccessorScanner(`\.Chart\.([A-Za-z]+)`),
		target:  firstGroup,
	},
	{
		refType: domain.RefRelease,
		scanner: NewAccessorScanner(`\.Release\.([A-Za-z]+)`),
		target:  firstGroup,
	},
	{
		refType: domain.RefFiles,
		scanner: NewAccessorScanner(`\.Files\.([A-Za-z]+)(?:\s+"([^"]*)")?`),
		target: func(groups []string) string {
			if groups[1] != "" {
				return groups[1]
			}
			return groups[0]
		},
	},
	{
		refType: domain.RefCapabilities,
		scanner: NewAccessorScanner(`\.Capabilities((?:\.[A-Za-z_][A-Za-z0-9_]*)+)`),
		target:  stripLeadingDot,
	},
}

// References scans content line by line and returns one reference per match
// of every expression family. Repeated expressions are all reported; nothing
// is merged.
func References(content, filePath string) []domain.Reference {
	var refs []domain.Reference
	for i, line := range SplitLines(content) {
		lineNum := i + 1
		for _, f := range families {
			for _, span := range f.scanner.ScanLine(line, lineNum) {
				refs = append(refs, domain.NewReference(
					f.refType,
					filePath,
					span.Line,
					span.Column,
					f.target(span.Groups),
					span.Text,
				))
			}
		}
	}
	return refs
}
