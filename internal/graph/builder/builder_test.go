package builder

import (
	"testing"

	"github.com/nathantilsley/chart-graph/internal/graph/chartparse"
	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

func assemble(files map[string]string) domain.HelmChart {
	return chartparse.New(nil).Assemble(files)
}

func TestBuild_EndToEndScenario(t *testing.T) {
	g := Build(assemble(map[string]string{
		"mychart/Chart.yaml":            "name: mychart\nversion: 1.0.0\napiVersion: v2",
		"mychart/values.yaml":           "replicaCount: 1",
		"mychart/templates/deploy.yaml": "replicas: {{ .Values.replicaCount }}",
	}))

	idx := g.NodeIndex()
	i, ok := idx["value:replicaCount"]
	if !ok {
		t.Fatalf("missing value:replicaCount node in %+v", g.Nodes)
	}
	if g.Nodes[i].Type != domain.NodeTypeValue {
		t.Errorf("value node type = %q", g.Nodes[i].Type)
	}
	if !g.Nodes[i].Data.Defined || g.Nodes[i].Data.Value != 1 {
		t.Errorf("value node data = %+v, want defined value 1", g.Nodes[i].Data)
	}

	if len(g.Edges) != 1 {
		t.Fatalf("got %d edges, want 1: %+v", len(g.Edges), g.Edges)
	}
	e := g.Edges[0]
	if e.Source != "file:templates/deploy.yaml" || e.Target != "value:replicaCount" {
		t.Errorf("edge = %s -> %s", e.Source, e.Target)
	}
	if e.Label != "replicaCount" || e.Type != "values" || e.Data.ReferenceType != domain.RefValues {
		t.Errorf("edge metadata = %+v", e)
	}
}

func TestBuild_NodeOrder(t *testing.T) {
	chart := assemble(map[string]string{
		"c/Chart.yaml":             "name: c",
		"c/values.yaml":            "b: 1\na: 2",
		"c/templates/NOTES.txt":    "{{ .Release.Name }}",
		"c/templates/_helpers.tpl": `{{ define "c.name" }}{{ .Values.b }}{{ end }}`,
		"c/templates/svc.yaml":     `{{ .Values.b }} {{ .Values.a }} {{ include "c.name" . }}`,
	})

	g := Build(chart)

	want := []string{
		"file:templates/NOTES.txt",
		"file:templates/_helpers.tpl",
		"file:templates/svc.yaml",
		"file:Chart.yaml",
		domain.ReleaseNodeID,
		"file:values.yaml",
		"value:b",
		"value:a",
		"helper:c.name",
	}
	if len(g.Nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d: %+v", len(g.Nodes), len(want), g.Nodes)
	}
	for i, id := range want {
		if g.Nodes[i].ID != id {
			t.Errorf("Nodes[%d] = %q, want %q", i, g.Nodes[i].ID, id)
		}
	}
	if g.Nodes[3].Type != domain.NodeTypeChart || g.Nodes[3].Data.Label != "c" {
		t.Errorf("chart node = %+v", g.Nodes[3])
	}
	if g.Nodes[5].Type != domain.NodeTypeValues {
		t.Errorf("values node type = %q", g.Nodes[5].Type)
	}
	if g.Nodes[8].Data.FilePath != "templates/_helpers.tpl" || g.Nodes[8].Data.Line != 1 {
		t.Errorf("helper node data = %+v", g.Nodes[8].Data)
	}
}

func TestBuild_EdgeResolution(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		wantEdges map[string]string // target -> reference type
	}{
		{
			name: "release edge targets singleton",
			files: map[string]string{
				"c/Chart.yaml":       "name: c",
				"c/templates/a.yaml": "{{ .Release.Name }} {{ .Release.Namespace }}",
			},
			wantEdges: map[string]string{domain.ReleaseNodeID: "release"},
		},
		{
			name: "chart edge targets Chart.yaml node",
			files: map[string]string{
				"c/Chart.yaml":       "name: c",
				"c/templates/a.yaml": "{{ .Chart.Version }}",
			},
			wantEdges: map[string]string{"file:Chart.yaml": "chart"},
		},
		{
			name: "chart edge dropped without Chart.yaml",
			files: map[string]string{
				"c/values.yaml":      "x: 1",
				"c/templates/a.yaml": "{{ .Chart.Version }}",
			},
			wantEdges: map[string]string{},
		},
		{
			name: "files and capabilities produce no edges",
			files: map[string]string{
				"c/Chart.yaml":       "name: c",
				"c/templates/a.yaml": `{{ .Files.Get "x" }} {{ .Capabilities.KubeVersion.Version }}`,
			},
			wantEdges: map[string]string{},
		},
		{
			name: "include of undefined helper dropped",
			files: map[string]string{
				"c/Chart.yaml":       "name: c",
				"c/templates/a.yaml": `{{ include "missing" . }}`,
			},
			wantEdges: map[string]string{},
		},
		{
			name: "template edge to defined helper",
			files: map[string]string{
				"c/Chart.yaml":         "name: c",
				"c/templates/_h.tpl":   `{{- define "c.full" -}}x{{- end -}}`,
				"c/templates/svc.yaml": `{{ template "c.full" . }}`,
			},
			wantEdges: map[string]string{"helper:c.full": "template"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(assemble(tt.files))
			got := make(map[string]string)
			for _, e := range g.Edges {
				got[e.Target] = e.Type
			}
			if len(got) != len(tt.wantEdges) {
				t.Fatalf("edges = %+v, want targets %v", g.Edges, tt.wantEdges)
			}
			for target, typ := range tt.wantEdges {
				if got[target] != typ {
					t.Errorf("edge to %q type = %q, want %q", target, got[target], typ)
				}
			}
		})
	}
}

func TestBuild_EdgesReferenceExistingNodes(t *testing.T) {
	g := Build(assemble(map[string]string{
		"c/Chart.yaml":         "name: c",
		"c/values.yaml":        "image:\n  tag: v1",
		"c/templates/_h.tpl":   `{{ define "c.img" }}{{ .Values.image.tag }}{{ include "c.other" . }}{{ end }}`,
		"c/templates/dep.yaml": `{{ include "c.img" . }} {{ .Values.image.repo }} {{ .Chart.Name }} {{ .Release.Name }}`,
	}))

	idx := g.NodeIndex()
	for _, e := range g.Edges {
		if _, ok := idx[e.Source]; !ok {
			t.Errorf("edge %s has missing source %s", e.ID, e.Source)
		}
		if _, ok := idx[e.Target]; !ok {
			t.Errorf("edge %s has missing target %s", e.ID, e.Target)
		}
	}
	repo := g.Nodes[idx["value:image.repo"]]
	if repo.Data.Defined {
		t.Errorf("image.repo reported as defined: %+v", repo.Data)
	}
	tag := g.Nodes[idx["value:image.tag"]]
	if !tag.Data.Defined || tag.Data.Value != "v1" || tag.Data.ValueType != domain.ValueTypeString {
		t.Errorf("image.tag data = %+v", tag.Data)
	}
	dep := g.Nodes[idx["file:templates/dep.yaml"]]
	if dep.Data.ReferenceCount != 4 {
		t.Errorf("dep.yaml reference count = %d, want 4", dep.Data.ReferenceCount)
	}
}

func TestBuild_EdgeIDsMatchReferenceIDs(t *testing.T) {
	chart := assemble(map[string]string{
		"c/Chart.yaml":       "name: c",
		"c/templates/a.yaml": "{{ .Values.a.b }}-{{ .Values.a.b }}",
	})

	g := Build(chart)

	if len(g.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(g.Edges))
	}
	if g.Edges[0].ID != chart.References[0].ID || g.Edges[1].ID != chart.References[1].ID {
		t.Errorf("edge ids %q/%q do not match reference ids", g.Edges[0].ID, g.Edges[1].ID)
	}
	if g.Edges[0].ID == g.Edges[1].ID {
		t.Error("edges from repeated same-line references share an id")
	}
}

func TestBuild_EmptyChart(t *testing.T) {
	g := Build(assemble(map[string]string{}))

	if len(g.Nodes) != 1 || g.Nodes[0].ID != domain.ReleaseNodeID {
		t.Errorf("nodes = %+v, want only the release node", g.Nodes)
	}
	if g.Edges == nil || len(g.Edges) != 0 {
		t.Errorf("edges = %#v, want empty non-nil slice", g.Edges)
	}
}
