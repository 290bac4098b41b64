package linediff

import (
	"strings"
	"testing"
)

func TestComputeDiff(t *testing.T) {
	base := "templates/a.yaml:1\tvalues\tx\t.Values.x\ntemplates/a.yaml:2\trelease\tName\t.Release.Name\n"
	head := "templates/a.yaml:1\tvalues\tx\t.Values.x\ntemplates/a.yaml:2\tvalues\ty\t.Values.y\n"

	tests := []struct {
		name       string
		base, head string
		want       []string
		wantEmpty  bool
	}{
		{
			name: "changed reference",
			base: base,
			head: head,
			want: []string{"--- base", "+++ head", "-templates/a.yaml:2\trelease", "+templates/a.yaml:2\tvalues\ty"},
		},
		{
			name: "added to empty",
			base: "",
			head: head,
			want: []string{"+templates/a.yaml:1\tvalues\tx"},
		},
		{
			name:      "identical",
			base:      base,
			head:      base,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(DefaultContext).ComputeDiff("base", "head", []byte(tt.base), []byte(tt.head))
			if tt.wantEmpty {
				if got != "" {
					t.Errorf("expected empty diff, got:\n%s", got)
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("diff missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestNew_NegativeContextUsesDefault(t *testing.T) {
	if a := New(-1); a.context != DefaultContext {
		t.Errorf("context = %d, want %d", a.context, DefaultContext)
	}
	if a := New(0); a.context != 0 {
		t.Errorf("context = %d, want 0", a.context)
	}
}
