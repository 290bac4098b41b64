package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nathantilsley/chart-graph/api"
	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/ports"
	"github.com/nathantilsley/chart-graph/internal/platform/config"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockSource struct {
	files map[string]string
	got   string
}

func (m *mockSource) LoadFiles(_ context.Context, location string) (map[string]string, error) {
	m.got = location
	if m.files == nil {
		return nil, domain.NewNotFoundError(location, "")
	}
	return m.files, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeChart(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "mychart")
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}

func scenarioChart(t *testing.T) string {
	return writeChart(t, map[string]string{
		"Chart.yaml":            "name: mychart\nversion: 1.0.0\napiVersion: v2",
		"values.yaml":           "replicaCount: 1",
		"templates/deploy.yaml": "replicas: {{ .Values.replicaCount }}",
	})
}

func execute(t *testing.T, o *RootOptions, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CACHE_SIZE", "")
	t.Setenv("GITHUB_APP_ID", "")
	var out bytes.Buffer
	cmd := NewRootCmd(o)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAnalyzeCmd(t *testing.T) {
	out, err := execute(t, NewRootOptions(), "analyze", scenarioChart(t))
	require.NoError(t, err)

	var resp api.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "mychart", resp.Chart.Name)
	require.Len(t, resp.Graph.Edges, 1)
	require.Equal(t, "file:templates/deploy.yaml", resp.Graph.Edges[0].Source)
	require.Equal(t, "value:replicaCount", resp.Graph.Edges[0].Target)
	require.NotEmpty(t, resp.Fingerprint)
	require.Positive(t, resp.Bounds.Width)
}

func TestAnalyzeCmd_SpacingOverride(t *testing.T) {
	out, err := execute(t, NewRootOptions(), "analyze", "--horizontal-spacing", "800", scenarioChart(t))
	require.NoError(t, err)

	var resp api.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	for _, n := range resp.Graph.Nodes {
		if n.Type == domain.NodeTypeValue {
			require.InDelta(t, 1600, n.Position.X, 0)
		}
	}
}

func TestAnalyzeCmd_NotAChart(t *testing.T) {
	dir := writeChart(t, map[string]string{"values.yaml": "a: 1"})

	_, err := execute(t, NewRootOptions(), "analyze", dir)
	require.ErrorIs(t, err, domain.ErrNoChartFile)
}

func TestStatsCmd(t *testing.T) {
	out, err := execute(t, NewRootOptions(), "stats", scenarioChart(t))
	require.NoError(t, err)

	require.Contains(t, out, "chart:      mychart 1.0.0")
	require.Contains(t, out, "references: 1")
	require.Contains(t, out, "edges:      1")
	require.Contains(t, out, "  values       1")
}

func TestReferencesCmd(t *testing.T) {
	out, err := execute(t, NewRootOptions(), "references", scenarioChart(t))
	require.NoError(t, err)
	require.Equal(t, "templates/deploy.yaml:1\tvalues\treplicaCount\t.Values.replicaCount\n", out)
}

func TestFilterCmd(t *testing.T) {
	out, err := execute(t, NewRootOptions(), "filter", scenarioChart(t), "templates/deploy.yaml")
	require.NoError(t, err)

	var resp api.FilterResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 2, resp.Stats.TotalNodes)
	require.Equal(t, 1, resp.Stats.TotalEdges)
}

func TestDiffCmd(t *testing.T) {
	base := scenarioChart(t)
	head := writeChart(t, map[string]string{
		"Chart.yaml":            "name: mychart\nversion: 1.1.0\napiVersion: v2",
		"values.yaml":           "replicaCount: 1\nimage:\n  tag: latest",
		"templates/deploy.yaml": "replicas: {{ .Values.replicaCount }}\nimage: {{ .Values.image.tag }}",
	})

	out, err := execute(t, NewRootOptions(), "diff", base, head)
	require.NoError(t, err)
	require.Contains(t, out, "+templates/deploy.yaml:2\tvalues\timage.tag\t.Values.image.tag")

	_, err = execute(t, NewRootOptions(), "diff", "--exit-code", base, head)
	require.True(t, errors.Is(err, errChanged))

	out, err = execute(t, NewRootOptions(), "diff", "--exit-code", base, base)
	require.NoError(t, err)
	require.Equal(t, "no reference changes\n", out)
}

func TestGitHubSource(t *testing.T) {
	src := &mockSource{files: map[string]string{
		"app/Chart.yaml":         "name: app\nversion: 0.1.0",
		"app/templates/svc.yaml": "name: {{ .Release.Name }}",
	}}
	o := NewRootOptions()
	o.remote = func(config.Config, *slog.Logger) (ports.ChartSourcePort, error) { return src, nil }

	out, err := execute(t, o, "references", "github:org/charts/app@v1")
	require.NoError(t, err)
	require.Equal(t, "org/charts/app@v1", src.got)
	require.True(t, strings.HasPrefix(out, "templates/svc.yaml:1\trelease\tName\t"), out)

	src.files = nil
	_, err = execute(t, o, "stats", "github:org/missing")
	require.True(t, domain.IsNotFound(err), "err = %v", err)
}

func TestArgs(t *testing.T) {
	_, err := execute(t, NewRootOptions(), "filter", "only-one-arg")
	require.Error(t, err)
}
