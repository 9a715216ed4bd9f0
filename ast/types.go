package ast

import "strings"

// DataType is one of the builtin scalar types.
type DataType uint8

const (
	Int DataType = iota
	Float
	String
	Bool
	Bytes
)

var dataTypeNames = [...]string{
	Int:    "int",
	Float:  "float",
	String: "string",
	Bool:   "bool",
	Bytes:  "bytes",
}

func (d DataType) String() string {
	if int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return "unknown"
}

// ParseDataType returns the builtin type with the given name.
func ParseDataType(name string) (DataType, bool) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), true
		}
	}
	return 0, false
}

// DataTypes lists every builtin type in declaration order.
func DataTypes() []DataType {
	return []DataType{Int, Float, String, Bool, Bytes}
}

// Modifier is a code generation hint attached to a type. It does not change
// the type itself.
type Modifier uint8

const (
	List Modifier = iota
	Ref
)

func (m Modifier) String() string {
	switch m {
	case List:
		return "list"
	case Ref:
		return "ref"
	}
	return "unknown"
}

// ParseModifier returns the modifier with the given name.
func ParseModifier(name string) (Modifier, bool) {
	switch strings.TrimSpace(name) {
	case "list":
		return List, true
	case "ref":
		return Ref, true
	}
	return 0, false
}
