package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

func refsOfType(refs []domain.Reference, t domain.ReferenceType) []domain.Reference {
	var out []domain.Reference
	for _, r := range refs {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

func TestReferences_Values(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantPaths []string
		wantLines []int
	}{
		{
			name:      "simple path",
			content:   "replicas: {{ .Values.replicaCount }}",
			wantPaths: []string{"replicaCount"},
			wantLines: []int{1},
		},
		{
			name:      "nested dot and bracket chain captured greedily",
			content:   "x: {{ .Values.a.b[0].c }}",
			wantPaths: []string{"a.b[0].c"},
			wantLines: []int{1},
		},
		{
			name:      "bracket segment right after Values",
			content:   `x: {{ .Values["my-key"] }}`,
			wantPaths: []string{`["my-key"]`},
			wantLines: []int{1},
		},
		{
			name:      "bare Values is not a reference",
			content:   "{{ toYaml .Values | nindent 2 }}",
			wantPaths: nil,
		},
		{
			name:      "root context accessor",
			content:   "{{ $.Values.global.image }}",
			wantPaths: []string{"global.image"},
			wantLines: []int{1},
		},
		{
			name:      "occurrences on several lines",
			content:   "a: {{ .Values.one }}\n\nb: {{ .Values.two.three }}\nc: {{ .Values.one }}",
			wantPaths: []string{"one", "two.three", "one"},
			wantLines: []int{1, 3, 4},
		},
		{
			name:      "CRLF line endings",
			content:   "a: {{ .Values.one }}\r\nb: {{ .Values.two }}\r\n",
			wantPaths: []string{"one", "two"},
			wantLines: []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := refsOfType(References(tt.content, "templates/a.yaml"), domain.RefValues)
			require.Len(t, refs, len(tt.wantPaths))
			for i, r := range refs {
				require.Equal(t, tt.wantPaths[i], r.Target.Path)
				require.Equal(t, domain.TargetValue, r.Target.Kind)
				require.Equal(t, tt.wantLines[i], r.Line)
				require.Equal(t, tt.wantLines[i], r.Source.Line)
				require.Equal(t, "templates/a.yaml", r.Source.File)
			}
		})
	}
}

func TestReferences_SameLineRepeats(t *testing.T) {
	refs := References("{{ .Values.a.b }}-{{ .Values.a.b }}", "templates/x.yaml")

	require.Len(t, refs, 2)
	require.Equal(t, "a.b", refs[0].Target.Path)
	require.Equal(t, "a.b", refs[1].Target.Path)
	require.NotEqual(t, refs[0].ID, refs[1].ID)
}

func TestReferences_Include(t *testing.T) {
	refs := References(`  labels: {{ include "app.labels" . }}`, "templates/deploy.yaml")

	require.Len(t, refs, 1)
	require.Equal(t, domain.RefInclude, refs[0].Type)
	require.Equal(t, "app.labels", refs[0].Target.Path)
	require.Equal(t, domain.TargetHelper, refs[0].Target.Kind)
	require.Equal(t, `{{ include "app.labels" . }}`, refs[0].Expression)
}

func TestReferences_IncludeTrimMarkersAndPipeline(t *testing.T) {
	refs := References(`{{- include "app.labels" . | nindent 4 -}}`, "templates/deploy.yaml")

	require.Len(t, refs, 1)
	require.Equal(t, "app.labels", refs[0].Target.Path)
	require.Equal(t, `{{- include "app.labels" . | nindent 4 -}}`, refs[0].Expression)
}

func TestReferences_Template(t *testing.T) {
	refs := References(`{{ template "app.fullname" . }}`, "templates/svc.yaml")

	require.Len(t, refs, 1)
	require.Equal(t, domain.RefTemplate, refs[0].Type)
	require.Equal(t, "app.fullname", refs[0].Target.Path)
}

func TestReferences_Accessors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType domain.ReferenceType
		wantPath string
		wantKind domain.TargetKind
	}{
		{"chart property", "{{ .Chart.Name }}", domain.RefChart, "Name", domain.TargetChart},
		{"release property", "{{ .Release.Namespace }}", domain.RefRelease, "Namespace", domain.TargetRelease},
		{"files with argument", `{{ .Files.Get "config/app.json" }}`, domain.RefFiles, "config/app.json", domain.TargetFile},
		{"files without argument", "{{ range .Files.Lines }}", domain.RefFiles, "Lines", domain.TargetFile},
		{"capabilities chain", "{{ if .Capabilities.APIVersions.Has }}", domain.RefCapabilities, "APIVersions.Has", domain.TargetCapability},
		{"capabilities kube version", "{{ .Capabilities.KubeVersion.Version }}", domain.RefCapabilities, "KubeVersion.Version", domain.TargetCapability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := References(tt.content, "templates/a.yaml")
			require.Len(t, refs, 1)
			require.Equal(t, tt.wantType, refs[0].Type)
			require.Equal(t, tt.wantPath, refs[0].Target.Path)
			require.Equal(t, tt.wantKind, refs[0].Target.Kind)
		})
	}
}

func TestReferences_ValuesKeyNamedChartIsNotChartAccessor(t *testing.T) {
	refs := References("{{ .Values.Chart.Name }}", "templates/a.yaml")

	require.Len(t, refs, 1)
	require.Equal(t, domain.RefValues, refs[0].Type)
	require.Equal(t, "Chart.Name", refs[0].Target.Path)
}

func TestReferences_MixedLine(t *testing.T) {
	content := `name: {{ include "app.fullname" . }}-{{ .Release.Name }}-{{ .Values.suffix }}`
	refs := References(content, "templates/a.yaml")

	require.Len(t, refs, 3)
	counts := map[domain.ReferenceType]int{}
	for _, r := range refs {
		counts[r.Type]++
		require.Equal(t, 1, r.Line)
	}
	require.Equal(t, 1, counts[domain.RefValues])
	require.Equal(t, 1, counts[domain.RefInclude])
	require.Equal(t, 1, counts[domain.RefRelease])
}

func TestReferences_IDsAreStableAcrossParses(t *testing.T) {
	content := "a: {{ .Values.x }}\nb: {{ .Chart.Version }}"

	first := References(content, "templates/a.yaml")
	second := References(content, "templates/a.yaml")

	require.Equal(t, first, second)
}

func TestScanner_ReportsColumns(t *testing.T) {
	s := NewScanner(`x+`)
	spans := s.Scan("axx\nbbx")

	require.Len(t, spans, 2)
	require.Equal(t, Span{Line: 1, Column: 2, Text: "xx", Groups: []string{}}, spans[0])
	require.Equal(t, Span{Line: 2, Column: 3, Text: "x", Groups: []string{}}, spans[1])
}
