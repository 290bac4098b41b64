package extract

import (
	"regexp"
	"strings"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

var (
	// actionRe matches a template action including optional trim markers.
	actionRe = regexp.MustCompile(`(?s)\{\{-?\s*(.*?)\s*-?\}\}`)
	defineRe = regexp.MustCompile(`^define\s+"([^"]+)"`)
)

// blockOpeners are the actions closed by a matching {{ end }}.
var blockOpeners = map[string]bool{
	"if":     true,
	"range":  true,
	"with":   true,
	"block":  true,
	"define": true,
}

type openBlock struct {
	keyword    string
	name       string // define name, if any
	start      int    // offset of the opening action
	innerStart int    // offset just past the opening action
}

// Helpers returns the define blocks of a helper file. Block actions nested in
// a define are balanced so the define's own {{ end }} closes it. A define
// opening while another is still open ends the open one as unterminated, and
// a define without a matching end is skipped.
func Helpers(content, filePath string) []domain.HelperDefinition {
	var (
		defs  []domain.HelperDefinition
		stack []openBlock
	)

	for _, loc := range actionRe.FindAllStringSubmatchIndex(content, -1) {
		body := content[loc[2]:loc[3]]
		keyword := firstWord(body)

		switch {
		case blockOpeners[keyword]:
			b := openBlock{keyword: keyword, start: loc[0], innerStart: loc[1]}
			if keyword == "define" {
				if m := defineRe.FindStringSubmatch(body); m != nil {
					b.name = m[1]
				}
				// define is top-level only, so an open define here was never closed.
				if i := outerDefine(stack); i >= 0 {
					stack = stack[:i]
				}
			}
			stack = append(stack, b)

		case keyword == "end":
			if len(stack) == 0 {
				continue
			}
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if b.keyword != "define" || b.name == "" || insideDefine(stack) {
				continue
			}
			defs = append(defs, domain.HelperDefinition{
				Name:    b.name,
				File:    filePath,
				Line:    strings.Count(content[:b.start], "\n") + 1,
				Content: strings.TrimSpace(content[b.innerStart:loc[0]]),
			})
		}
	}
	return defs
}

func insideDefine(stack []openBlock) bool {
	return outerDefine(stack) >= 0
}

// outerDefine returns the stack index of the outermost open define, or -1.
func outerDefine(stack []openBlock) int {
	for i, b := range stack {
		if b.keyword == "define" {
			return i
		}
	}
	return -1
}

func firstWord(body string) string {
	if i := strings.IndexAny(body, " \t\r\n("); i >= 0 {
		return body[:i]
	}
	return body
}
