package ast

// NodeKind identifies the concrete type behind a Node.
type NodeKind uint8

const (
	NodeModule NodeKind = iota
	NodeFunction
	NodeRecord
	NodeEnum
)

func (k NodeKind) String() string {
	switch k {
	case NodeModule:
		return "module"
	case NodeFunction:
		return "function"
	case NodeRecord:
		return "record"
	case NodeEnum:
		return "enum"
	}
	return "unknown"
}

// Node is a module member. The set of implementations is closed:
// *Module, *Function, *Record and *Enum.
type Node interface {
	Kind() NodeKind
	NodeName() string
	Pos() (line, column int)
	node()
}

// ModuleID indexes the Program's module table.
type ModuleID int

// NoModule is the parent of a root module.
const NoModule ModuleID = -1

// SymbolID indexes a module's symbol table of records and enums.
type SymbolID int

// Module is a namespace for records, enums, functions and nested modules.
type Module struct {
	program     *Program
	Functions   map[string]*Function
	Records     map[string]*Record
	Enums       map[string]*Enum
	symbolIndex map[string]SymbolID
	Name        string
	Doc         string
	Members     []Node
	symbols     []symbol
	ID          ModuleID
	parent      ModuleID
	Line        int
	Column      int
}

func (m *Module) Kind() NodeKind          { return NodeModule }
func (m *Module) NodeName() string        { return m.Name }
func (m *Module) Pos() (line, column int) { return m.Line, m.Column }
func (m *Module) node()                   {}

// IsRoot reports whether the module is not nested inside another module.
func (m *Module) IsRoot() bool {
	return m.parent == NoModule
}

// Parent returns the enclosing module, or nil for a root module.
func (m *Module) Parent() *Module {
	if m.parent == NoModule {
		return nil
	}
	return m.program.Module(m.parent)
}

// Program returns the compilation this module belongs to.
func (m *Module) Program() *Program {
	return m.program
}

// Function returns the function with the given name, or nil.
func (m *Module) Function(name string) *Function {
	return m.Functions[name]
}

// Record returns the record with the given name, or nil.
func (m *Module) Record(name string) *Record {
	return m.Records[name]
}

// Enum returns the enum with the given name, or nil.
func (m *Module) Enum(name string) *Enum {
	return m.Enums[name]
}

// Submodules returns the nested modules in declaration order.
func (m *Module) Submodules() []*Module {
	var mods []*Module
	for _, n := range m.Members {
		if sub, ok := n.(*Module); ok {
			mods = append(mods, sub)
		}
	}
	return mods
}

// FunctionList returns the functions in declaration order.
func (m *Module) FunctionList() []*Function {
	var fns []*Function
	for _, n := range m.Members {
		if fn, ok := n.(*Function); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// RecordList returns the records in declaration order.
func (m *Module) RecordList() []*Record {
	var recs []*Record
	for _, n := range m.Members {
		if rec, ok := n.(*Record); ok {
			recs = append(recs, rec)
		}
	}
	return recs
}

// EnumList returns the enums in declaration order.
func (m *Module) EnumList() []*Enum {
	var enums []*Enum
	for _, n := range m.Members {
		if e, ok := n.(*Enum); ok {
			enums = append(enums, e)
		}
	}
	return enums
}

// QualifiedName joins the names of all enclosing modules with '-'.
func (m *Module) QualifiedName() string {
	if p := m.Parent(); p != nil {
		return p.QualifiedName() + "-" + m.Name
	}
	return m.Name
}

// Function is a function declaration with ordered arguments and return values.
type Function struct {
	argIndex     map[string]int
	retIndex     map[string]int
	Name         string
	Doc          string
	Arguments    []*NamedType
	ReturnValues []*NamedType
	Module       ModuleID
	Line         int
	Column       int
}

func (f *Function) Kind() NodeKind          { return NodeFunction }
func (f *Function) NodeName() string        { return f.Name }
func (f *Function) Pos() (line, column int) { return f.Line, f.Column }
func (f *Function) node()                   {}

// Argument returns the argument with the given name, or nil.
func (f *Function) Argument(name string) *NamedType {
	if i, ok := f.argIndex[name]; ok {
		return f.Arguments[i]
	}
	return nil
}

// ReturnValue returns the return value with the given name, or nil.
func (f *Function) ReturnValue(name string) *NamedType {
	if i, ok := f.retIndex[name]; ok {
		return f.ReturnValues[i]
	}
	return nil
}

func (f *Function) NumArguments() int { return len(f.Arguments) }
func (f *Function) NumReturns() int   { return len(f.ReturnValues) }

// HasReturnValues reports whether the function returns anything.
func (f *Function) HasReturnValues() bool { return len(f.ReturnValues) > 0 }

// IsMultiReturn reports whether the function returns more than one value.
func (f *Function) IsMultiReturn() bool { return len(f.ReturnValues) > 1 }

// FirstReturnValue returns the first return value, or nil.
func (f *Function) FirstReturnValue() *NamedType {
	if len(f.ReturnValues) == 0 {
		return nil
	}
	return f.ReturnValues[0]
}

// Record is a record declaration with ordered fields.
type Record struct {
	fieldIndex map[string]int
	Name       string
	Doc        string
	Fields     []*NamedType
	Module     ModuleID
	ID         SymbolID
	Line       int
	Column     int
}

func (r *Record) Kind() NodeKind          { return NodeRecord }
func (r *Record) NodeName() string        { return r.Name }
func (r *Record) Pos() (line, column int) { return r.Line, r.Column }
func (r *Record) node()                   {}

// Field returns the field with the given name, or nil.
func (r *Record) Field(name string) *NamedType {
	if i, ok := r.fieldIndex[name]; ok {
		return r.Fields[i]
	}
	return nil
}

// FieldsBefore returns the fields declared before the named one.
func (r *Record) FieldsBefore(name string) []*NamedType {
	i, ok := r.fieldIndex[name]
	if !ok {
		return nil
	}
	return r.Fields[:i]
}

// Position is a line and column in the source, both 1-based.
type Position struct {
	Line   int
	Column int
}

// Enum is an enumeration with ordered variant names.
type Enum struct {
	Name       string
	Doc        string
	Variants   []string
	VariantPos []Position // declaration site of each variant
	Module     ModuleID
	ID         SymbolID
	Line       int
	Column     int
}

func (e *Enum) Kind() NodeKind          { return NodeEnum }
func (e *Enum) NodeName() string        { return e.Name }
func (e *Enum) Pos() (line, column int) { return e.Line, e.Column }
func (e *Enum) node()                   {}

// Contains reports whether variant is one of the enum's variants.
func (e *Enum) Contains(variant string) bool {
	return e.Index(variant) >= 0
}

// Index returns the discriminant of a variant, or -1.
func (e *Enum) Index(variant string) int {
	for i, v := range e.Variants {
		if v == variant {
			return i
		}
	}
	return -1
}

type symbolKind uint8

const (
	symbolRecord symbolKind = iota
	symbolEnum
)

type symbol struct {
	record *Record
	enum   *Enum
	kind   symbolKind
}

func (s symbol) name() string {
	if s.kind == symbolRecord {
		return s.record.Name
	}
	return s.enum.Name
}

// Symbol returns the record or enum registered under id.
func (m *Module) Symbol(id SymbolID) (*Record, *Enum) {
	if id < 0 || int(id) >= len(m.symbols) {
		return nil, nil
	}
	s := m.symbols[id]
	return s.record, s.enum
}

func (m *Module) lookupSymbol(name string) (SymbolID, bool) {
	id, ok := m.symbolIndex[name]
	return id, ok
}

func (m *Module) addSymbol(s symbol) SymbolID {
	id := SymbolID(len(m.symbols))
	m.symbols = append(m.symbols, s)
	m.symbolIndex[s.name()] = id
	return id
}
