package tisl

import (
	"io"
	"iter"

	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/target"
	"github.com/wippyai/tisl/target/rust"
	"github.com/wippyai/tisl/target/witgen"
)

// DefaultRegistry returns a registry holding every built-in target.
func DefaultRegistry() *target.Registry {
	return target.NewRegistry(rust.New(), witgen.New())
}

// Parse lexes, builds and resolves source. Errors carry file.
func Parse(file, source string) (*ast.Program, error) {
	return ast.Parse(file, source)
}

// Generate yields the fragments of t for every root module of prog in
// declaration order.
func Generate(prog *ast.Program, t target.Target, opts target.Options) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, mod := range prog.Roots() {
			for frag, err := range t.Generate(mod, opts) {
				if !yield(frag, err) || err != nil {
					return
				}
			}
		}
	}
}

// Compile parses source and writes the output of the named target to w as
// it is generated. Generation errors carry file.
func Compile(w io.Writer, file, source, name string, opts target.Options) error {
	t, opts, err := DefaultRegistry().Prepare(name, opts)
	if err != nil {
		return err
	}
	prog, err := Parse(file, source)
	if err != nil {
		return err
	}
	for frag, err := range Generate(prog, t, opts) {
		if err != nil {
			return withFile(err, file)
		}
		if _, err := io.WriteString(w, frag); err != nil {
			return err
		}
	}
	return nil
}

func withFile(err error, file string) error {
	switch e := err.(type) {
	case *errors.Error:
		return e.WithFile(file)
	case *errors.List:
		out := &errors.List{Errors: make([]*errors.Error, len(e.Errors))}
		for i, item := range e.Errors {
			out.Errors[i] = item.WithFile(file)
		}
		return out
	}
	return err
}
