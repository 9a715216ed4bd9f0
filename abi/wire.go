package abi

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/tisl/ast"
)

// Wire is the representation of a value in guest memory or on the call
// stack.
type Wire uint8

const (
	WireI32 Wire = iota
	WireI64
	WireF64
	WireU8
	// WireSize is a pointer or length; its width depends on Config.
	WireSize
)

var wireNames = [...]string{
	WireI32:  "i32",
	WireI64:  "i64",
	WireF64:  "f64",
	WireU8:   "u8",
	WireSize: "size",
}

func (w Wire) String() string {
	if int(w) < len(wireNames) {
		return wireNames[w]
	}
	return "unknown"
}

// Concrete replaces WireSize with the configured integer type.
func (w Wire) Concrete(cfg Config) Wire {
	if w == WireSize {
		return cfg.SizeWire()
	}
	return w
}

// Width is the number of bytes the wire type occupies in memory.
func (w Wire) Width(cfg Config) int {
	switch w.Concrete(cfg) {
	case WireU8:
		return 1
	case WireI32:
		return 4
	default:
		return 8
	}
}

// ValueType is the core WASM value type carrying the wire type on the
// stack. Bytes travel as i32.
func (w Wire) ValueType(cfg Config) api.ValueType {
	switch w.Concrete(cfg) {
	case WireI64:
		return api.ValueTypeI64
	case WireF64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

// ArgumentWire maps a builtin type passed as a function argument. Bytes
// has no scalar argument form: it always travels as a list.
func ArgumentWire(d ast.DataType) (Wire, bool) {
	switch d {
	case ast.Int:
		return WireI64, true
	case ast.Float:
		return WireF64, true
	case ast.Bool:
		return WireI32, true
	case ast.String:
		return WireSize, true
	}
	return 0, false
}

// FieldWire maps a builtin type stored in a record, a list element or an
// out pointer.
func FieldWire(d ast.DataType) Wire {
	switch d {
	case ast.Int:
		return WireI64
	case ast.Float:
		return WireF64
	case ast.String:
		return WireSize
	default:
		return WireU8
	}
}

// MustBorrow reports whether a function argument is handed to the
// implementation by reference rather than by value.
func MustBorrow(nt *ast.NamedType) bool {
	return nt.IsReference() || nt.IsList() || nt.IsString() || nt.IsRecord()
}

// NeedsLifetime reports whether a struct built from these fields holds a
// borrowed value, directly or through a nested record.
func NeedsLifetime(fields []*ast.NamedType) bool {
	return needsLifetime(fields, map[*ast.Record]bool{})
}

func needsLifetime(fields []*ast.NamedType, seen map[*ast.Record]bool) bool {
	for _, f := range fields {
		if f.IsReference() {
			return true
		}
		rec, _ := f.AsRecord()
		if rec == nil || seen[rec] {
			continue
		}
		seen[rec] = true
		if needsLifetime(rec.Fields, seen) {
			return true
		}
	}
	return false
}

// Snake converts a kebab-case TISL name to snake_case.
func Snake(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}
