package syntax

// FormKind identifies the keyword a form was introduced with.
type FormKind int

const (
	FormModule FormKind = iota
	FormFunction
	FormRecord
	FormEnum
)

// Keywords for the member forms.
const (
	KeywordModule   = "mod"
	KeywordFunction = "fun"
	KeywordRecord   = "rec"
	KeywordEnum     = "enu"
)

func (k FormKind) String() string {
	switch k {
	case FormModule:
		return KeywordModule
	case FormFunction:
		return KeywordFunction
	case FormRecord:
		return KeywordRecord
	case FormEnum:
		return KeywordEnum
	}
	return "unknown"
}

// Ident is a name together with where it was written.
type Ident struct {
	Name   string
	Line   int
	Column int
}

// TypeKind tags a type expression.
type TypeKind int

const (
	// TypeBuiltin is one of the keyword types int, float, string, bool, bytes.
	TypeBuiltin TypeKind = iota
	// TypeRecordOrEnum is a bare identifier resolved later against the module.
	TypeRecordOrEnum
)

func (k TypeKind) String() string {
	if k == TypeBuiltin {
		return "builtin"
	}
	return "record-or-enum"
}

// Builtin type keywords.
var builtinTypes = map[string]bool{
	"int":    true,
	"float":  true,
	"string": true,
	"bool":   true,
	"bytes":  true,
}

// TypeSpec is a data type expression. Modifiers hold the raw modifier words
// of a bracketed expression such as (ref list bytes), in source order. The
// position is that of the type name itself.
type TypeSpec struct {
	Name      string
	Modifiers []string
	Kind      TypeKind
	Line      int
	Column    int
}

// Pair is a named, typed slot: a record field, function argument or return value.
type Pair struct {
	Type TypeSpec
	Name Ident
}

// Form is one bracketed module, function, record or enum definition.
// Only the slices relevant to Kind are populated.
type Form struct {
	Doc       string
	Name      Ident
	Members   []*Form
	Arguments []Pair
	Returns   []Pair
	Fields    []Pair
	Variants  []Ident
	Kind      FormKind
	Line      int // position of the opening bracket
	Column    int
}
