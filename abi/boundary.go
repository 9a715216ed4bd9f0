package abi

import (
	"slices"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
)

// Param is one flat parameter of a boundary function.
type Param struct {
	Name string
	Wire Wire
}

// ImportModule is the module name a guest imports a module's functions
// from. Nested modules use their qualified name.
func ImportModule(mod *ast.Module) string {
	return Snake(mod.QualifiedName())
}

// ExportName is the name a guest imports a function under.
func ExportName(fn *ast.Function) string {
	return "__" + Snake(fn.Name)
}

// BoundaryParams returns the flat parameter list of fn: every argument
// followed by the out pointers of every return value.
func BoundaryParams(fn *ast.Function) ([]Param, error) {
	var params []Param
	for _, arg := range fn.Arguments {
		name := Snake(arg.Name)
		switch {
		case arg.IsList():
			params = append(params, Param{name, WireSize}, Param{name + "_len", WireSize})
		case arg.IsRecord():
			params = append(params, Param{name, WireSize})
		case arg.IsEnum():
			params = append(params, Param{name, WireI32})
		default:
			w, err := argumentWire(fn, arg)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{name, w})
		}
	}
	for _, ret := range fn.ReturnValues {
		name := Snake(ret.Name) + "_out"
		params = append(params, Param{name, WireSize})
		if ret.IsList() || ret.IsString() {
			params = append(params, Param{name + "_len", WireSize})
		}
	}
	return params, nil
}

func argumentWire(fn *ast.Function, arg *ast.NamedType) (Wire, error) {
	d, ok := arg.DataType()
	if !ok {
		if _, err := arg.AsRecord(); err != nil {
			return 0, err
		}
		return 0, errors.Generation([]string{fn.Name, arg.Name},
			"Failed to lookup wire type: %s", arg.TypeName())
	}
	w, ok := ArgumentWire(d)
	if !ok {
		return 0, errors.Generation([]string{fn.Name, arg.Name},
			"Failed to lookup wire type: %s", arg.TypeName())
	}
	return w, nil
}

// BoundaryResults is the result list shared by every boundary function.
func BoundaryResults() []Wire {
	return []Wire{WireSize}
}

// Signature is the core WASM type of a boundary function.
type Signature struct {
	Params      []api.ValueType
	Results     []api.ValueType
	ParamNames  []string
	ResultNames []string
}

// FunctionSignature flattens fn under cfg.
func FunctionSignature(fn *ast.Function, cfg Config) (*Signature, error) {
	params, err := BoundaryParams(fn)
	if err != nil {
		return nil, err
	}
	sig := &Signature{ResultNames: []string{"error"}}
	for _, p := range params {
		sig.Params = append(sig.Params, p.Wire.ValueType(cfg))
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}
	for _, w := range BoundaryResults() {
		sig.Results = append(sig.Results, w.ValueType(cfg))
	}
	return sig, nil
}

// Equal reports whether two signatures have the same value types.
func (s *Signature) Equal(params, results []api.ValueType) bool {
	return slices.Equal(s.Params, params) && slices.Equal(s.Results, results)
}

// String renders the signature like "(i64, i32) -> (i64)".
func (s *Signature) String() string {
	return FormatTypes(s.Params, s.Results)
}

// FormatTypes renders a core WASM function type.
func FormatTypes(params, results []api.ValueType) string {
	b := []byte{'('}
	for i, t := range params {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, api.ValueTypeName(t)...)
	}
	b = append(b, ") -> ("...)
	for i, t := range results {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, api.ValueTypeName(t)...)
	}
	return string(append(b, ')'))
}
