package tisl

import (
	"strings"
	"testing"

	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/target"
	"github.com/wippyai/tisl/target/rust"
	"github.com/wippyai/tisl/target/witgen"
)

const schema = `(mod birds (fun ping () ()))
(mod trees (rec leaf (:n int)) (fun grow (:l leaf) ()))`

func TestDefaultRegistry(t *testing.T) {
	got := DefaultRegistry().Names()
	want := []string{rust.Name, witgen.Name}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		target string
		want   []string
	}{
		{rust.Name, []string{"pub mod birds {", "pub mod trees {", "pub trait TreesApi {"}},
		{witgen.Name, []string{"package tisl:birds;", "package tisl:trees;", "grow: func(l: leaf);"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var out strings.Builder
			if err := Compile(&out, "birds.tisl", schema, tt.target, nil); err != nil {
				t.Fatalf("Compile: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q", w)
				}
			}
			if strings.Index(out.String(), "birds") > strings.Index(out.String(), "trees") {
				t.Error("root modules out of order")
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		target   string
		opts     target.Options
		category errors.Category
		phase    errors.Phase
	}{
		{"syntax", "(mod m (fun", rust.Name, nil, errors.CategorySyntax, errors.PhaseParse},
		{"semantic", "(mod m (rec r (:x nope)))", rust.Name, nil, errors.CategorySemantic, errors.PhaseResolve},
		{"generation", "(mod m (rec r (:s (ref string))) (fun f (:xs (list r)) ()))", rust.Name, nil, errors.CategoryGeneration, errors.PhaseGenerate},
		{"unknown target", "(mod m)", "cobol", nil, errors.CategoryGeneration, errors.PhaseConfig},
		{"bad option", "(mod m)", rust.Name, target.Options{"abi-size": "7"}, errors.CategoryGeneration, errors.PhaseConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			err := Compile(&out, "in.tisl", tt.source, tt.target, tt.opts)
			e, ok := err.(*errors.Error)
			if !ok {
				t.Fatalf("got %T (%v), want *errors.Error", err, err)
			}
			if e.Phase != tt.phase {
				t.Errorf("phase: got %s, want %s", e.Phase, tt.phase)
			}
			if got := e.Category(); got != tt.category {
				t.Errorf("category: got %s, want %s", got, tt.category)
			}
			if tt.phase != errors.PhaseConfig && e.File != "in.tisl" {
				t.Errorf("file: got %q, want %q", e.File, "in.tisl")
			}
		})
	}
}
