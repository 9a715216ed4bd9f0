// Package ast builds the typed syntax tree of a TISL schema.
//
// A compilation produces one Program: a table of every module (root and
// nested) indexed by ModuleID. Modules own their members, and members refer
// back to their module by id rather than by pointer. Records and enums are
// entered in their module's symbol table when built, and a resolution pass
// run after the whole tree exists binds every symbolic type name to a
// SymbolID. This allows forward references inside a module and reports
// undefined types, duplicate names and record reference cycles as semantic
// errors before any code is generated. A record reaching itself through a
// list is a cycle too, so schemas cannot describe trees.
//
//	prog, err := ast.Parse("birds.tisl", source)
//	if err != nil {
//		return err
//	}
//	for _, mod := range prog.Roots() {
//		rec := mod.Record("bird")
//		...
//	}
package ast
