package host

import (
	"context"
	"slices"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/tisl/abi"
	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/host/internal/wasmbin"
)

const schema = `(mod birds
  (rec point (:x float))
  (fun spot (:name string :at point :n int) (:id int))
  (fun ping () ())
  (mod sky (fun look () (:n int))))`

func parseModule(t *testing.T) *ast.Module {
	t.Helper()
	prog, err := ast.Parse("test.tisl", schema)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog.Roots()[0]
}

func TestInstantiateLinksStub(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod := parseModule(t)

	type call struct {
		name  string
		stack []uint64
	}
	var calls []call
	h := func(_ context.Context, fn *ast.Function, _ api.Module, stack []uint64) {
		calls = append(calls, call{fn.Name, append([]uint64(nil), stack...)})
		stack[0] = 0
	}
	mods, err := Instantiate(ctx, rt, mod, abi.DefaultConfig(), h)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("host modules: got %d, want 2", len(mods))
	}
	if got := mods[1].Name(); got != "birds_sky" {
		t.Errorf("nested module name: got %q, want %q", got, "birds_sky")
	}

	stub, err := Stub(mod, abi.DefaultConfig())
	if err != nil {
		t.Fatalf("Stub: %v", err)
	}
	guest, err := rt.Instantiate(ctx, stub)
	if err != nil {
		t.Fatalf("guest should link against host modules: %v", err)
	}

	tests := []struct {
		export string
		args   []uint64
		want   string
	}{
		{"birds.__ping", nil, "ping"},
		{"birds.__spot", []uint64{100, 200, 7, 300}, "spot"},
		{"birds_sky.__look", []uint64{400}, "look"},
	}
	for _, tt := range tests {
		t.Run(tt.export, func(t *testing.T) {
			calls = nil
			fn := guest.ExportedFunction(tt.export)
			if fn == nil {
				t.Fatalf("%s not exported by stub", tt.export)
			}
			res, err := fn.Call(ctx, tt.args...)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if res[0] != 0 {
				t.Errorf("status: got %d, want 0", res[0])
			}
			if len(calls) != 1 {
				t.Fatalf("handler calls: got %d, want 1", len(calls))
			}
			if calls[0].name != tt.want {
				t.Errorf("function: got %s, want %s", calls[0].name, tt.want)
			}
			if got := calls[0].stack[:len(tt.args)]; !slices.Equal(got, tt.args) {
				t.Errorf("params: got %v, want %v", got, tt.args)
			}
		})
	}
}

func TestInstantiateRejectsOtherWidth(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod := parseModule(t)

	if _, err := Instantiate(ctx, rt, mod, abi.DefaultConfig(), nil); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	stub, err := Stub(mod, abi.Config{SizeBits: 32})
	if err != nil {
		t.Fatalf("Stub: %v", err)
	}
	if _, err := rt.Instantiate(ctx, stub); err == nil {
		t.Error("32-bit guest linked against 64-bit host")
	}
}

func TestUnimplemented(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod := parseModule(t)

	if _, err := Instantiate(ctx, rt, mod, abi.DefaultConfig(), nil); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	stub, err := Stub(mod, abi.DefaultConfig())
	if err != nil {
		t.Fatalf("Stub: %v", err)
	}
	guest, err := rt.Instantiate(ctx, stub)
	if err != nil {
		t.Fatalf("Instantiate guest: %v", err)
	}
	res, err := guest.ExportedFunction("birds_sky.__look").Call(ctx, 64)
	if err != nil {
		t.Fatalf("call __look: %v", err)
	}
	if res[0] != 1 {
		t.Errorf("status: got %d, want 1", res[0])
	}
}

func TestCheckGuest(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod := parseModule(t)

	for _, bits := range []int{32, 64} {
		cfg := abi.Config{SizeBits: bits}
		stub, err := Stub(mod, cfg)
		if err != nil {
			t.Fatalf("Stub: %v", err)
		}
		if err := CheckGuest(ctx, rt, stub, mod, cfg); err != nil {
			t.Errorf("%d-bit stub: %v", bits, err)
		}
	}
}

func TestCheckGuestMismatch(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod := parseModule(t)

	i64 := []api.ValueType{api.ValueTypeI64}
	guest := wasmbin.NewImporter(api.ValueTypeI64).
		Import("birds", "__spot", wasmbin.FuncType{Params: []api.ValueType{api.ValueTypeI32}, Results: i64}).
		Import("birds", "__fly", wasmbin.FuncType{Results: i64}).
		Import("env", "log", wasmbin.FuncType{Params: i64}).
		Import("birds", "__ping", wasmbin.FuncType{Results: i64}).
		Encode()

	err := CheckGuest(ctx, rt, guest, mod, abi.DefaultConfig())
	list, ok := err.(*errors.List)
	if !ok {
		t.Fatalf("got %T (%v), want *errors.List", err, err)
	}
	if len(list.Errors) != 2 {
		t.Fatalf("errors: got %d, want 2: %v", len(list.Errors), list)
	}
	if got := list.Errors[0].Kind; got != errors.KindSignature {
		t.Errorf("first error: got %s, want %s", got, errors.KindSignature)
	}
	if got := list.Errors[1].Kind; got != errors.KindNotFound {
		t.Errorf("second error: got %s, want %s", got, errors.KindNotFound)
	}
}

func TestCheckGuestIgnoresOtherNamespaces(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	guest := wasmbin.NewImporter(api.ValueTypeI64).
		Import("env", "log", wasmbin.FuncType{Params: []api.ValueType{api.ValueTypeI32}}).
		Encode()
	if err := CheckGuest(ctx, rt, guest, parseModule(t), abi.DefaultConfig()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckGuestInvalidBinary(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	err := CheckGuest(ctx, rt, []byte("not wasm"), parseModule(t), abi.DefaultConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	if e, ok := err.(*errors.Error); !ok || e.Kind != errors.KindInvalidInput {
		t.Errorf("got %v, want invalid input error", err)
	}
}
