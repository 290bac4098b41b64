// Package extract finds template expressions and helper definitions in chart
// sources by lexical pattern matching. Templates are treated as flat text:
// nothing is evaluated and control flow is ignored.
package extract

import (
	"regexp"
	"strings"
)

// Span is a single pattern match within one line of text.
type Span struct {
	Line   int      // 1-based line number
	Column int      // 1-based byte column of the match start
	Text   string   // the matched text
	Groups []string // submatches; "" for groups that did not participate
}

// Scanner reports every non-overlapping match of a pattern, line by line.
type Scanner struct {
	re *regexp.Regexp
	// accessor requires the match not to be preceded by an identifier
	// character, so `.Chart` inside `.Values.Chart.Name` is not reported.
	accessor bool
}

// NewScanner compiles pattern into a Scanner.
func NewScanner(pattern string) Scanner {
	return Scanner{re: regexp.MustCompile(pattern)}
}

// NewAccessorScanner compiles pattern into a Scanner that only matches at
// accessor boundaries.
func NewAccessorScanner(pattern string) Scanner {
	return Scanner{re: regexp.MustCompile(pattern), accessor: true}
}

// Scan returns the spans of all matches in content.
func (s Scanner) Scan(content string) []Span {
	var spans []Span
	for i, line := range SplitLines(content) {
		spans = append(spans, s.ScanLine(line, i+1)...)
	}
	return spans
}

// ScanLine returns the spans of all matches in a single line.
func (s Scanner) ScanLine(line string, lineNum int) []Span {
	var spans []Span
	for _, loc := range s.re.FindAllStringSubmatchIndex(line, -1) {
		start, end := loc[0], loc[1]
		if s.accessor && start > 0 && isIdentByte(line[start-1]) {
			continue
		}
		groups := make([]string, 0, len(loc)/2-1)
		for g := 2; g < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, line[loc[g]:loc[g+1]])
		}
		spans = append(spans, Span{
			Line:   lineNum,
			Column: start + 1,
			Text:   line[start:end],
			Groups: groups,
		})
	}
	return spans
}

// SplitLines splits content on newlines, dropping the carriage return of
// CRLF line endings.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func isIdentByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
