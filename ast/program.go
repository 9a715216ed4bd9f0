package ast

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/syntax"
)

// Program is the module table of one compilation. Every module, root or
// nested, has a slot indexed by its ModuleID.
type Program struct {
	modules []*Module
	roots   []ModuleID
}

// Module returns the module with the given id, or nil.
func (p *Program) Module(id ModuleID) *Module {
	if id < 0 || int(id) >= len(p.modules) {
		return nil
	}
	return p.modules[id]
}

// Modules returns every module in the order they were built. A module's
// index in the slice is its ModuleID.
func (p *Program) Modules() []*Module {
	return p.modules
}

// Roots returns the top-level modules in source order.
func (p *Program) Roots() []*Module {
	mods := make([]*Module, len(p.roots))
	for i, id := range p.roots {
		mods[i] = p.modules[id]
	}
	return mods
}

// Root returns the top-level module with the given name, or nil.
func (p *Program) Root(name string) *Module {
	for _, id := range p.roots {
		if p.modules[id].Name == name {
			return p.modules[id]
		}
	}
	return nil
}

// Parse lexes and builds source. The file name is attached to any error,
// and positioned errors get the offending source line.
func Parse(file, source string) (*Program, error) {
	forms, err := syntax.Lex(source)
	if err != nil {
		return nil, annotate(err, file, source)
	}
	prog, err := Build(forms)
	if err != nil {
		return nil, annotate(err, file, source)
	}
	return prog, nil
}

// Build constructs the tree for the given top-level forms and runs the
// resolution pass over it. Construction stops at the first syntax error;
// semantic errors are collected and returned together as an *errors.List
// when there is more than one.
func Build(forms []*syntax.Form) (*Program, error) {
	p := &Program{}
	for _, f := range forms {
		if f.Kind != syntax.FormModule {
			return nil, errors.Syntax(f.Line, f.Column, "",
				"Expected a module at top level, got %q", f.Kind.String())
		}
		mod, err := p.buildModule(f, NoModule)
		if err != nil {
			return nil, err
		}
		p.roots = append(p.roots, mod.ID)
	}
	Logger().Debug("built module tree",
		zap.Int("roots", len(p.roots)),
		zap.Int("modules", len(p.modules)))

	if err := p.resolve(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) buildModule(f *syntax.Form, parent ModuleID) (*Module, error) {
	mod := &Module{
		program:     p,
		ID:          ModuleID(len(p.modules)),
		parent:      parent,
		Name:        f.Name.Name,
		Doc:         f.Doc,
		Line:        f.Name.Line,
		Column:      f.Name.Column,
		Functions:   make(map[string]*Function),
		Records:     make(map[string]*Record),
		Enums:       make(map[string]*Enum),
		symbolIndex: make(map[string]SymbolID),
	}
	p.modules = append(p.modules, mod)

	for _, m := range f.Members {
		var (
			n   Node
			err error
		)
		switch m.Kind {
		case syntax.FormModule:
			n, err = p.buildModule(m, mod.ID)
		case syntax.FormFunction:
			n, err = p.buildFunction(m, mod)
		case syntax.FormRecord:
			n, err = p.buildRecord(m, mod)
		case syntax.FormEnum:
			n = buildEnum(m, mod)
		default:
			err = errors.UnknownKeyword(m.Kind.String(), m.Line, m.Column, "")
		}
		if err != nil {
			return nil, err
		}
		mod.Members = append(mod.Members, n)
	}
	mod.index()
	return mod, nil
}

// index fills the name maps and the symbol table. The first declaration of
// a name wins; later ones are reported by the resolution pass.
func (m *Module) index() {
	for _, n := range m.Members {
		switch n := n.(type) {
		case *Function:
			if _, ok := m.Functions[n.Name]; !ok {
				m.Functions[n.Name] = n
			}
		case *Record:
			if _, ok := m.symbolIndex[n.Name]; !ok {
				m.Records[n.Name] = n
				n.ID = m.addSymbol(symbol{kind: symbolRecord, record: n})
			} else {
				n.ID = -1
			}
		case *Enum:
			if _, ok := m.symbolIndex[n.Name]; !ok {
				m.Enums[n.Name] = n
				n.ID = m.addSymbol(symbol{kind: symbolEnum, enum: n})
			} else {
				n.ID = -1
			}
		}
	}
}

func (p *Program) buildFunction(f *syntax.Form, mod *Module) (*Function, error) {
	fn := &Function{
		Name:     f.Name.Name,
		Doc:      f.Doc,
		Module:   mod.ID,
		Line:     f.Name.Line,
		Column:   f.Name.Column,
		argIndex: make(map[string]int),
		retIndex: make(map[string]int),
	}
	var err error
	if fn.Arguments, err = p.namedTypes(f.Arguments, mod, fn.Name, RoleArgument, fn.argIndex); err != nil {
		return nil, err
	}
	if fn.ReturnValues, err = p.namedTypes(f.Returns, mod, fn.Name, RoleReturn, fn.retIndex); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Program) buildRecord(f *syntax.Form, mod *Module) (*Record, error) {
	rec := &Record{
		Name:       f.Name.Name,
		Doc:        f.Doc,
		Module:     mod.ID,
		Line:       f.Name.Line,
		Column:     f.Name.Column,
		fieldIndex: make(map[string]int),
	}
	var err error
	if rec.Fields, err = p.namedTypes(f.Fields, mod, rec.Name, RoleField, rec.fieldIndex); err != nil {
		return nil, err
	}
	return rec, nil
}

func buildEnum(f *syntax.Form, mod *Module) *Enum {
	e := &Enum{
		Name:   f.Name.Name,
		Doc:    f.Doc,
		Module: mod.ID,
		Line:   f.Name.Line,
		Column: f.Name.Column,
	}
	for _, v := range f.Variants {
		e.Variants = append(e.Variants, v.Name)
		e.VariantPos = append(e.VariantPos, Position{Line: v.Line, Column: v.Column})
	}
	return e
}

func (p *Program) namedTypes(pairs []syntax.Pair, mod *Module, owner string, role Role, index map[string]int) ([]*NamedType, error) {
	out := make([]*NamedType, 0, len(pairs))
	for _, pair := range pairs {
		nt, err := p.newNamedType(pair, mod, owner, role)
		if err != nil {
			return nil, err
		}
		if _, ok := index[nt.Name]; !ok {
			index[nt.Name] = len(out)
		}
		out = append(out, nt)
	}
	return out, nil
}

func (p *Program) newNamedType(pair syntax.Pair, mod *Module, owner string, role Role) (*NamedType, error) {
	ts := pair.Type
	nt := &NamedType{
		prog:   p,
		mod:    mod.ID,
		Name:   pair.Name.Name,
		Owner:  owner,
		Role:   role,
		Line:   ts.Line,
		Column: ts.Column,
	}
	switch ts.Kind {
	case syntax.TypeBuiltin:
		d, ok := ParseDataType(ts.Name)
		if !ok {
			return nil, errors.Syntax(ts.Line, ts.Column, "", "Unexpected data type %q", ts.Name)
		}
		nt.builtin = true
		nt.dataType = d
	default:
		nt.typeName = ts.Name
	}
	for _, word := range ts.Modifiers {
		m, ok := ParseModifier(word)
		if !ok {
			return nil, errors.Syntax(ts.Line, ts.Column, "", "Unexpected modifier %q", word)
		}
		nt.Modifiers = append(nt.Modifiers, m)
	}
	if nt.Is(Bytes) && !nt.IsList() {
		nt.Modifiers = append(nt.Modifiers, List)
	}
	return nt, nil
}

// annotate stamps file and source line onto structured errors.
func annotate(err error, file, source string) error {
	lines := strings.Split(source, "\n")
	fix := func(e *errors.Error) *errors.Error {
		e = e.WithFile(file)
		if e.Source == "" && e.Line > 0 && e.Line <= len(lines) {
			e.Source = strings.TrimRight(lines[e.Line-1], "\r")
		}
		return e
	}

	switch e := err.(type) {
	case *errors.Error:
		return fix(e)
	case *errors.List:
		out := &errors.List{Errors: make([]*errors.Error, len(e.Errors))}
		for i, item := range e.Errors {
			out.Errors[i] = fix(item)
		}
		return out
	}
	return err
}
