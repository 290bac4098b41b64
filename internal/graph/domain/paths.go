package domain

import (
	"path"
	"sort"
	"strings"
)

// CleanPath converts OS separators to forward slashes and strips leading slashes.
func CleanPath(raw string) string {
	p := strings.ReplaceAll(raw, "\\", "/")
	p = strings.TrimLeft(p, "/")
	return strings.TrimPrefix(p, "./")
}

// isChartFileName matches Chart.yaml / Chart.yml exactly.
func isChartFileName(name string) bool {
	return name == "Chart.yaml" || name == "Chart.yml"
}

// DetectRoot finds the folder prefix that holds the chart's Chart.yaml among
// the given raw paths. The shallowest Chart.yaml outside any charts/ folder
// wins, ties broken lexicographically. found is false when no path names a
// Chart.yaml, in which case callers fall back to stripping one segment.
func DetectRoot(rawPaths []string) (root string, found bool) {
	best := -1
	for _, raw := range rawPaths {
		segs := strings.Split(CleanPath(raw), "/")
		if !isChartFileName(segs[len(segs)-1]) || containsSegment(segs[:len(segs)-1], "charts") {
			continue
		}
		prefix := strings.Join(segs[:len(segs)-1], "/")
		depth := len(segs) - 1
		if best < 0 || depth < best || (depth == best && prefix < root) {
			best = depth
			root = prefix
		}
	}
	return root, best >= 0
}

// NormalizePath returns raw relative to the chart root. With a detected root
// the root prefix is stripped; otherwise exactly one leading segment is.
func NormalizePath(raw, root string, rootFound bool) string {
	p := CleanPath(raw)
	if rootFound {
		if root == "" {
			return p
		}
		return strings.TrimPrefix(p, root+"/")
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ClassifyFile derives a file type from a normalized path.
func ClassifyFile(p string) FileType {
	name := path.Base(p)
	ext := strings.ToLower(path.Ext(name))
	switch {
	case isChartFileName(name):
		return FileTypeChart
	case name == "values.yaml":
		return FileTypeValues
	case ext == ".tpl":
		return FileTypeHelper
	case name == "NOTES.txt":
		return FileTypeNotes
	case (ext == ".yaml" || ext == ".yml") && containsSegment(strings.Split(path.Dir(p), "/"), "templates"):
		return FileTypeTemplate
	default:
		return FileTypeOther
	}
}

// IsRelevant reports whether a normalized path belongs to the analysed chart:
// the root Chart.yaml and values.yaml, plus yaml, tpl and NOTES.txt files
// under templates/. Hidden entries and anything under charts/ are excluded.
func IsRelevant(p string) bool {
	if p == "" {
		return false
	}
	segs := strings.Split(p, "/")
	for _, s := range segs {
		if strings.HasPrefix(s, ".") {
			return false
		}
	}
	if containsSegment(segs[:len(segs)-1], "charts") {
		return false
	}
	if len(segs) == 1 {
		return isChartFileName(p) || p == "values.yaml"
	}
	if segs[0] != "templates" {
		return false
	}
	switch ClassifyFile(p) {
	case FileTypeTemplate, FileTypeHelper, FileTypeNotes:
		return true
	default:
		return false
	}
}

// ValidateUpload checks that a set of ingested paths contains a chart
// definition. It returns ErrNoChartFile when no base name equals chart.yaml
// or chart.yml, ignoring case.
func ValidateUpload(rawPaths []string) error {
	for _, raw := range rawPaths {
		name := strings.ToLower(path.Base(CleanPath(raw)))
		if name == "chart.yaml" || name == "chart.yml" {
			return nil
		}
	}
	return ErrNoChartFile
}

// SortedKeys returns the keys of a path->content mapping in sorted order.
func SortedKeys(files map[string]string) []string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsSegment(segs []string, want string) bool {
	for _, s := range segs {
		if s == want {
			return true
		}
	}
	return false
}
