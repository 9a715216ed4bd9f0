package ast

import (
	"go.uber.org/zap"

	"github.com/wippyai/tisl/errors"
)

// resolve binds every symbolic type name and checks the semantic rules that
// need the whole tree: unique names per scope, defined types and acyclic
// record containment.
func (p *Program) resolve() error {
	errs := &errors.List{}
	for _, mod := range p.modules {
		r := resolver{mod: mod, errs: errs}
		r.checkMembers()
		r.bindTypes()
		r.checkCycles()
	}
	if len(errs.Errors) > 0 {
		Logger().Debug("resolution failed", zap.Int("errors", len(errs.Errors)))
	}
	return errs.Err()
}

type resolver struct {
	mod  *Module
	errs *errors.List
}

func (r *resolver) add(err *errors.Error) {
	r.errs.Errors = append(r.errs.Errors, err)
}

type declared struct {
	line, column int
}

// checkMembers reports names declared twice in the module and in each
// member's own scope. Records and enums share one namespace.
func (r *resolver) checkMembers() {
	types := map[string]declared{}
	funcs := map[string]declared{}
	mods := map[string]declared{}

	seen := func(scope map[string]declared, what, name string, line, col int) {
		if prev, ok := scope[name]; ok {
			r.add(errors.DuplicateName(what, name, line, col, prev.line, prev.column))
			return
		}
		scope[name] = declared{line, col}
	}

	for _, n := range r.mod.Members {
		switch n := n.(type) {
		case *Module:
			seen(mods, "module", n.Name, n.Line, n.Column)
		case *Function:
			seen(funcs, "function", n.Name, n.Line, n.Column)
			args := map[string]declared{}
			for _, a := range n.Arguments {
				seen(args, "argument", a.Name, a.Line, a.Column)
			}
			rets := map[string]declared{}
			for _, v := range n.ReturnValues {
				seen(rets, "return value", v.Name, v.Line, v.Column)
			}
		case *Record:
			seen(types, "type", n.Name, n.Line, n.Column)
			fields := map[string]declared{}
			for _, f := range n.Fields {
				seen(fields, "field", f.Name, f.Line, f.Column)
			}
		case *Enum:
			seen(types, "type", n.Name, n.Line, n.Column)
			variants := map[string]declared{}
			for i, v := range n.Variants {
				pos := n.VariantPos[i]
				seen(variants, "variant", v, pos.Line, pos.Column)
			}
		}
	}
}

// bindTypes resolves the symbolic type of every named type in the module.
func (r *resolver) bindTypes() {
	bind := func(nts []*NamedType) {
		for _, nt := range nts {
			if err := nt.resolve(); err != nil {
				r.add(err)
			}
		}
	}
	for _, n := range r.mod.Members {
		switch n := n.(type) {
		case *Function:
			bind(n.Arguments)
			bind(n.ReturnValues)
		case *Record:
			bind(n.Fields)
		}
	}
}

const (
	unvisited = iota
	visiting
	done
)

// checkCycles walks the record containment graph. A list of records is an
// edge like a by-value field, so tree-shaped records are rejected: WIT has
// no recursive types and the host readers inline every list element.
func (r *resolver) checkCycles() {
	recs := r.mod.RecordList()
	state := make(map[*Record]int, len(recs))
	var stack []*Record

	var visit func(rec *Record)
	visit = func(rec *Record) {
		state[rec] = visiting
		stack = append(stack, rec)
		for _, f := range rec.Fields {
			if _, ok := f.Symbol(); !ok {
				continue
			}
			next, _ := f.AsRecord()
			if next == nil {
				continue
			}
			switch state[next] {
			case unvisited:
				visit(next)
			case visiting:
				r.add(errors.RecursiveRecord(cyclePath(stack, next), f.Line, f.Column))
			}
		}
		stack = stack[:len(stack)-1]
		state[rec] = done
	}

	for _, rec := range recs {
		if rec.ID < 0 {
			continue
		}
		if state[rec] == unvisited {
			visit(rec)
		}
	}
}

func cyclePath(stack []*Record, to *Record) []string {
	start := 0
	for i, rec := range stack {
		if rec == to {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, rec := range stack[start:] {
		path = append(path, rec.Name)
	}
	return append(path, to.Name)
}
