package domain

import (
	"math"
	"reflect"
	"testing"
)

func TestFlattenValues_RoundTrip(t *testing.T) {
	raw := map[string]any{
		"replicaCount": 2,
		"image": map[string]any{
			"repository": "nginx",
			"tag":        "1.25",
			"pullPolicy": nil,
		},
		"ports": []any{80, map[string]any{"name": "https", "port": 443}},
		"odd": map[string]any{
			"dotted.key":  true,
			"with[brack]": "x",
			"":            "empty",
			`q"uote`:      1.5,
		},
		"empty": map[string]any{},
	}

	flat := FlattenValues(raw)
	if len(flat) == 0 {
		t.Fatal("expected flattened keys")
	}
	for _, k := range flat {
		got, ok := LookupPath(raw, k.Path)
		if !ok {
			t.Errorf("LookupPath(%q) not found", k.Path)
			continue
		}
		if !reflect.DeepEqual(got, k.Value) {
			t.Errorf("LookupPath(%q) = %#v, want %#v", k.Path, got, k.Value)
		}
		if k.FullPath != ".Values."+k.Path {
			t.Errorf("FullPath = %q for path %q", k.FullPath, k.Path)
		}
	}
}

func TestFlattenValues_EntriesAndOrder(t *testing.T) {
	raw := map[string]any{
		"b": []any{"x"},
		"a": map[string]any{"c": 1},
	}

	got := FlattenValues(raw)

	want := []struct {
		path string
		typ  string
	}{
		{"a", ValueTypeObject},
		{"a.c", ValueTypeNumber},
		{"b", ValueTypeArray},
		{"b[0]", ValueTypeString},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Path != w.path || got[i].Type != w.typ {
			t.Errorf("entry %d = {%q %q}, want {%q %q}", i, got[i].Path, got[i].Type, w.path, w.typ)
		}
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []PathSegment
		wantErr bool
	}{
		{
			name: "dotted",
			path: "a.b.c",
			want: []PathSegment{{Key: "a"}, {Key: "b"}, {Key: "c"}},
		},
		{
			name: "index",
			path: "ports[1].name",
			want: []PathSegment{{Key: "ports"}, {Index: 1, IsIndex: true}, {Key: "name"}},
		},
		{
			name: "quoted key with dots and brackets",
			path: `odd["a.b[c]"]`,
			want: []PathSegment{{Key: "odd"}, {Key: "a.b[c]"}},
		},
		{
			name: "leading bracket",
			path: `["my-key"].x`,
			want: []PathSegment{{Key: "my-key"}, {Key: "x"}},
		},
		{
			name: "unquoted non-numeric bracket",
			path: "a[$key]",
			want: []PathSegment{{Key: "a"}, {Key: "$key"}},
		},
		{name: "empty", path: "", wantErr: true},
		{name: "unterminated bracket", path: "a[0", wantErr: true},
		{name: "bad quote", path: `a["x]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePath(%q) = %+v, want error", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q) error: %v", tt.path, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePath(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupPath_Misses(t *testing.T) {
	raw := map[string]any{
		"list":   []any{1, 2},
		"scalar": "x",
	}

	for _, p := range []string{"missing", "list[5]", "list.name", "scalar.sub", "list[-1]"} {
		if v, ok := LookupPath(raw, p); ok {
			t.Errorf("LookupPath(%q) = %v, want miss", p, v)
		}
	}
}

func TestTopLevelKey(t *testing.T) {
	tests := map[string]string{
		"image.tag":          "image",
		"replicaCount":       "replicaCount",
		"a.b.c":              "a",
		`["my-key"]`:         `["my-key"]`,
		"ingress.hosts[0].x": "ingress",
	}
	for in, want := range tests {
		if got := TopLevelKey(in); got != want {
			t.Errorf("TopLevelKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeTree(t *testing.T) {
	in := map[string]any{
		"a": map[any]any{1: "one", "two": []any{map[any]any{true: "yes"}}},
	}

	got := NormalizeTree(in)

	want := map[string]any{
		"a": map[string]any{"1": "one", "two": []any{map[string]any{"true": "yes"}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTree = %#v, want %#v", got, want)
	}
}

func TestNormalizeTree_NonFiniteFloats(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"positive infinity", math.Inf(1), ".inf"},
		{"negative infinity", math.Inf(-1), "-.inf"},
		{"not a number", math.NaN(), ".nan"},
		{"finite", 1.5, 1.5},
		{"nested", map[string]any{"l": []any{math.Inf(1)}}, map[string]any{"l": []any{".inf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTree(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTree(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
