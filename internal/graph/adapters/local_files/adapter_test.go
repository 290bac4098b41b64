package localfiles

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathantilsley/chart-graph/internal/graph/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mychart")
	writeFile(t, filepath.Join(root, "Chart.yaml"), "name: mychart")
	writeFile(t, filepath.Join(root, "values.yaml"), "replicaCount: 1")
	writeFile(t, filepath.Join(root, "templates", "deploy.yaml"), "replicas: {{ .Values.replicaCount }}")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	writeFile(t, filepath.Join(root, "big.bin"), strings.Repeat("x", 64))

	files, err := New(32, nil).LoadFiles(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}

	want := map[string]string{
		"mychart/Chart.yaml":            "name: mychart",
		"mychart/values.yaml":           "replicaCount: 1",
		"mychart/templates/deploy.yaml": "replicas: {{ .Values.replicaCount }}",
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), domain.SortedKeys(files))
	}
	for p, c := range want {
		if files[p] != c {
			t.Errorf("files[%q] = %q, want %q", p, files[p], c)
		}
	}
	if err := domain.ValidateUpload(domain.SortedKeys(files)); err != nil {
		t.Errorf("loaded directory failed validation: %v", err)
	}
}

func TestLoadFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	writeFile(t, file, "x")

	_, err := New(0, nil).LoadFiles(context.Background(), filepath.Join(dir, "missing"))
	if !domain.IsNotFound(err) {
		t.Errorf("missing dir: err = %v, want NotFoundError", err)
	}

	if _, err := New(0, nil).LoadFiles(context.Background(), file); err == nil {
		t.Error("expected error loading a regular file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(0, nil).LoadFiles(ctx, dir); err == nil {
		t.Error("expected error for cancelled context")
	}
}
