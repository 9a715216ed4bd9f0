package ast

import (
	"slices"

	"github.com/wippyai/tisl/errors"
)

// Role tells which construct a NamedType belongs to.
type Role uint8

const (
	RoleField Role = iota
	RoleArgument
	RoleReturn
)

func (r Role) String() string {
	switch r {
	case RoleField:
		return "field"
	case RoleArgument:
		return "argument"
	case RoleReturn:
		return "return value"
	}
	return "unknown"
}

// NamedType is a record field, function argument or function return value:
// a name bound to either a builtin DataType or the name of a record or enum
// declared in the same module.
type NamedType struct {
	prog      *Program
	Name      string
	Owner     string // name of the record or function declaring it
	typeName  string
	Modifiers []Modifier
	Line      int // position of the type expression
	Column    int
	mod       ModuleID
	symbol    SymbolID
	dataType  DataType
	Role      Role
	builtin   bool
	resolved  bool
}

// Module returns the module the named type was declared in.
func (n *NamedType) Module() *Module {
	return n.prog.Module(n.mod)
}

// HasModifier reports whether m was attached to the type.
func (n *NamedType) HasModifier(m Modifier) bool {
	return slices.Contains(n.Modifiers, m)
}

// IsList reports whether the value is a sequence. Always true for bytes.
func (n *NamedType) IsList() bool {
	return n.HasModifier(List)
}

// IsReference reports whether the ref modifier was given.
func (n *NamedType) IsReference() bool {
	return n.HasModifier(Ref)
}

// IsSimpleType reports whether the type is a builtin DataType.
func (n *NamedType) IsSimpleType() bool {
	return n.builtin
}

// DataType returns the builtin type, if the type is one.
func (n *NamedType) DataType() (DataType, bool) {
	return n.dataType, n.builtin
}

// Is reports whether the type is the builtin d.
func (n *NamedType) Is(d DataType) bool {
	return n.builtin && n.dataType == d
}

// IsString reports whether the type is the builtin string, list or not.
func (n *NamedType) IsString() bool {
	return n.Is(String)
}

// IsRecord reports whether the type names a record.
func (n *NamedType) IsRecord() bool {
	rec, _ := n.AsRecord()
	return rec != nil
}

// IsEnum reports whether the type names an enum.
func (n *NamedType) IsEnum() bool {
	e, _ := n.AsEnum()
	return e != nil
}

// TypeName returns the type as written, without modifiers.
func (n *NamedType) TypeName() string {
	if n.builtin {
		return n.dataType.String()
	}
	return n.typeName
}

// AsRecord returns the record the type refers to. Builtin types and names
// of enums yield nil with no error; a name that is neither a record nor an
// enum in the owning module is an undefined type error.
func (n *NamedType) AsRecord() (*Record, error) {
	rec, _, err := n.lookup()
	return rec, err
}

// AsEnum returns the enum the type refers to, following the same rules as
// AsRecord.
func (n *NamedType) AsEnum() (*Enum, error) {
	_, e, err := n.lookup()
	return e, err
}

func (n *NamedType) lookup() (*Record, *Enum, error) {
	if n.builtin {
		return nil, nil, nil
	}
	mod := n.Module()
	if n.resolved {
		rec, e := mod.Symbol(n.symbol)
		return rec, e, nil
	}
	if id, ok := mod.lookupSymbol(n.typeName); ok {
		rec, e := mod.Symbol(id)
		return rec, e, nil
	}
	return nil, nil, n.undefined()
}

func (n *NamedType) undefined() *errors.Error {
	return errors.UndefinedType(n.typeName, n.Line, n.Column)
}

// resolve binds the symbolic type name to its SymbolID.
func (n *NamedType) resolve() *errors.Error {
	if n.builtin || n.resolved {
		return nil
	}
	id, ok := n.Module().lookupSymbol(n.typeName)
	if !ok {
		return n.undefined()
	}
	n.symbol = id
	n.resolved = true
	return nil
}

// Symbol returns the resolved symbol id of a record or enum type.
func (n *NamedType) Symbol() (SymbolID, bool) {
	return n.symbol, n.resolved
}
