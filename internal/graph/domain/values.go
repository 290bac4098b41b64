package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValuesData holds a parsed values.yaml and its flattened key listing.
type ValuesData struct {
	Raw      map[string]any `json:"raw"`
	FlatKeys []FlatKey      `json:"flatKeys"`
}

// FlatKey is one entry of a flattened values tree. Objects and arrays get an
// entry of their own in addition to their children.
type FlatKey struct {
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
	Value    any    `json:"value"`
	Type     string `json:"type"`
}

// Value types reported in FlatKey.Type.
const (
	ValueTypeString  = "string"
	ValueTypeNumber  = "number"
	ValueTypeBoolean = "boolean"
	ValueTypeNull    = "null"
	ValueTypeArray   = "array"
	ValueTypeObject  = "object"
)

// NewValuesData flattens raw into a ValuesData. A nil tree is treated as empty.
func NewValuesData(raw map[string]any) *ValuesData {
	if raw == nil {
		raw = map[string]any{}
	}
	return &ValuesData{Raw: raw, FlatKeys: FlattenValues(raw)}
}

// FlattenValues walks the tree depth-first and returns one entry per scalar,
// array and object below the root. Map keys are visited in sorted order.
func FlattenValues(raw map[string]any) []FlatKey {
	var out []FlatKey
	flattenMap(raw, "", &out)
	return out
}

func flattenMap(m map[string]any, prefix string, out *[]FlatKey) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flattenValue(m[k], joinKey(prefix, k), out)
	}
}

func flattenValue(v any, path string, out *[]FlatKey) {
	*out = append(*out, FlatKey{
		Path:     path,
		FullPath: ".Values." + path,
		Value:    v,
		Type:     ValueType(v),
	})
	switch typed := v.(type) {
	case map[string]any:
		flattenMap(typed, path, out)
	case []any:
		for i, item := range typed {
			flattenValue(item, path+"["+strconv.Itoa(i)+"]", out)
		}
	}
}

// joinKey appends a map key to a path, quoting keys that cannot be written
// in dot notation.
func joinKey(prefix, key string) string {
	if key == "" || strings.ContainsAny(key, ".[]\"") {
		return prefix + "[" + strconv.Quote(key) + "]"
	}
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// ValueType names the type of a decoded YAML value.
func ValueType(v any) string {
	switch v.(type) {
	case nil:
		return ValueTypeNull
	case bool:
		return ValueTypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return ValueTypeNumber
	case []any:
		return ValueTypeArray
	case map[string]any:
		return ValueTypeObject
	default:
		return ValueTypeString
	}
}

// PathSegment is one accessor step: a map key or an array index.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// ParsePath splits a dot/bracket accessor such as `a.b[0]["c.d"]` into segments.
func ParsePath(path string) ([]PathSegment, error) {
	var segs []PathSegment
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated bracket in %q", path)
			}
			inner := path[i+1 : i+end]
			if strings.HasPrefix(inner, "\"") {
				// quoted keys may contain ']' so find the closing quote first
				key, rest, err := unquotePrefix(path[i+1:])
				if err != nil {
					return nil, fmt.Errorf("invalid quoted key in %q: %w", path, err)
				}
				if !strings.HasPrefix(rest, "]") {
					return nil, fmt.Errorf("expected ] after quoted key in %q", path)
				}
				segs = append(segs, PathSegment{Key: key})
				i = len(path) - len(rest) + 1
				continue
			}
			idx, err := strconv.Atoi(strings.TrimSpace(inner))
			if err != nil {
				segs = append(segs, PathSegment{Key: inner})
			} else {
				segs = append(segs, PathSegment{Index: idx, IsIndex: true})
			}
			i += end + 1
		default:
			end := strings.IndexAny(path[i:], ".[")
			if end < 0 {
				end = len(path) - i
			}
			segs = append(segs, PathSegment{Key: path[i : i+end]})
			i += end
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	return segs, nil
}

func unquotePrefix(s string) (string, string, error) {
	q, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", err
	}
	key, err := strconv.Unquote(q)
	if err != nil {
		return "", "", err
	}
	return key, s[len(q):], nil
}

// LookupPath resolves a dot/bracket accessor against a values tree.
func LookupPath(raw map[string]any, path string) (any, bool) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	var cur any = raw
	for _, seg := range segs {
		switch node := cur.(type) {
		case map[string]any:
			if seg.IsIndex {
				v, ok := node[strconv.Itoa(seg.Index)]
				if !ok {
					return nil, false
				}
				cur = v
				continue
			}
			v, ok := node[seg.Key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(node) {
				return nil, false
			}
			cur = node[seg.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// TopLevelKey returns the part of a value path before the first dot.
func TopLevelKey(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// NormalizeTree converts decoded YAML into the map[string]any / []any shape
// used by ValuesData, stringifying non-string map keys. Non-finite floats keep
// their YAML spelling since JSON cannot carry them.
func NormalizeTree(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = NormalizeTree(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[fmt.Sprint(k)] = NormalizeTree(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = NormalizeTree(val)
		}
		return out
	case float64:
		switch {
		case math.IsInf(typed, 1):
			return ".inf"
		case math.IsInf(typed, -1):
			return "-.inf"
		case math.IsNaN(typed):
			return ".nan"
		}
		return typed
	default:
		return v
	}
}
