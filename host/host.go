package host

import (
	"context"
	"iter"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/tisl/abi"
	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/host/internal/wasmbin"
)

// Handler implements a boundary function. The stack holds the flattened
// parameters on entry; the handler stores the status word in stack[0].
type Handler func(ctx context.Context, fn *ast.Function, mod api.Module, stack []uint64)

// Unimplemented is a Handler that fails every call with status 1.
func Unimplemented(_ context.Context, _ *ast.Function, _ api.Module, stack []uint64) {
	stack[0] = 1
}

// Instantiate registers a host module for mod and for each of its nested
// modules. The returned modules are in tree order, root first.
func Instantiate(ctx context.Context, rt wazero.Runtime, mod *ast.Module, cfg abi.Config, h Handler) ([]api.Module, error) {
	if h == nil {
		h = Unimplemented
	}
	var out []api.Module
	for m := range walk(mod) {
		inst, err := instantiate(ctx, rt, m, cfg, h)
		if err != nil {
			for _, prev := range out {
				_ = prev.Close(ctx)
			}
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func instantiate(ctx context.Context, rt wazero.Runtime, mod *ast.Module, cfg abi.Config, h Handler) (api.Module, error) {
	name := abi.ImportModule(mod)
	builder := rt.NewHostModuleBuilder(name)
	for _, fn := range mod.FunctionList() {
		sig, err := abi.FunctionSignature(fn, cfg)
		if err != nil {
			return nil, err
		}
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, m api.Module, stack []uint64) {
				h(ctx, fn, m, stack)
			}), sig.Params, sig.Results).
			WithParameterNames(sig.ParamNames...).
			WithResultNames(sig.ResultNames...).
			Export(abi.ExportName(fn))
	}
	Logger().Debug("instantiating host module",
		zap.String("module", name),
		zap.Int("functions", len(mod.Functions)))

	inst, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindUnsupported).
			Path(name).
			Detail("instantiate host module %s", name).
			Cause(err).
			Build()
	}
	return inst, nil
}

// CheckGuest compiles wasm and compares every function it imports from
// the namespaces of mod's tree with the boundary table. Imports of other
// namespaces are ignored. A guest importing from the tree must export its
// memory and the allocator.
func CheckGuest(ctx context.Context, rt wazero.Runtime, wasm []byte, mod *ast.Module, cfg abi.Config) error {
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return errors.InvalidInput(errors.PhaseConfig, "compile guest: "+err.Error())
	}
	defer compiled.Close(ctx)

	namespaces := map[string]*ast.Module{}
	for m := range walk(mod) {
		namespaces[abi.ImportModule(m)] = m
	}

	errs := &errors.List{}
	used := false
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		m, ok := namespaces[module]
		if !ok {
			continue
		}
		used = true
		fn := lookupExport(m, name)
		if fn == nil {
			errs.Errors = append(errs.Errors, errors.NotFound(errors.PhaseGenerate, "function", module+"."+name))
			continue
		}
		sig, err := abi.FunctionSignature(fn, cfg)
		if err != nil {
			return err
		}
		if !sig.Equal(def.ParamTypes(), def.ResultTypes()) {
			errs.Errors = append(errs.Errors, errors.SignatureMismatch(module, name,
				sig.String(), abi.FormatTypes(def.ParamTypes(), def.ResultTypes())))
		}
	}

	if used {
		if _, ok := compiled.ExportedMemories()["memory"]; !ok {
			errs.Errors = append(errs.Errors, errors.NotFound(errors.PhaseGenerate, "guest export", "memory"))
		}
		size := cfg.SizeWire().ValueType(cfg)
		alloc, ok := compiled.ExportedFunctions()[wasmbin.AllocatorExport]
		switch {
		case !ok:
			errs.Errors = append(errs.Errors, errors.NotFound(errors.PhaseGenerate, "guest export", wasmbin.AllocatorExport))
		case !(len(alloc.ParamTypes()) == 1 && alloc.ParamTypes()[0] == size &&
			len(alloc.ResultTypes()) == 1 && alloc.ResultTypes()[0] == size):
			want := []api.ValueType{size}
			errs.Errors = append(errs.Errors, errors.SignatureMismatch("guest", wasmbin.AllocatorExport,
				abi.FormatTypes(want, want), abi.FormatTypes(alloc.ParamTypes(), alloc.ResultTypes())))
		}
	}

	Logger().Debug("checked guest imports",
		zap.String("module", mod.Name),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("problems", len(errs.Errors)))
	return errs.Err()
}

// Stub encodes a guest that imports every function of mod's tree with
// its boundary signature.
func Stub(mod *ast.Module, cfg abi.Config) ([]byte, error) {
	im := wasmbin.NewImporter(cfg.SizeWire().ValueType(cfg))
	for m := range walk(mod) {
		for _, fn := range m.FunctionList() {
			sig, err := abi.FunctionSignature(fn, cfg)
			if err != nil {
				return nil, err
			}
			im.Import(abi.ImportModule(m), abi.ExportName(fn), wasmbin.FuncType{
				Params:  sig.Params,
				Results: sig.Results,
			})
		}
	}
	return im.Encode(), nil
}

func lookupExport(mod *ast.Module, name string) *ast.Function {
	for _, fn := range mod.FunctionList() {
		if abi.ExportName(fn) == name {
			return fn
		}
	}
	return nil
}

// walk yields mod and its nested modules depth first.
func walk(mod *ast.Module) iter.Seq[*ast.Module] {
	return func(yield func(*ast.Module) bool) {
		var visit func(*ast.Module) bool
		visit = func(m *ast.Module) bool {
			if !yield(m) {
				return false
			}
			for _, sub := range m.Submodules() {
				if !visit(sub) {
					return false
				}
			}
			return true
		}
		visit(mod)
	}
}
