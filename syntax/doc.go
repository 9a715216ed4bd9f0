// Package syntax lexes TISL schema text into structural forms.
//
// TISL is a small s-expression language describing modules of records,
// enumerations and functions:
//
//	(mod birds "Birds and their habits"
//		(enu bird-type (:vulture :albatross :seagull))
//		(rec bird (:type bird-type :beak-size int :name (ref string)))
//		(fun which-bird (:description string) (:bird bird-type)))
//
// Round, square and curly brackets are interchangeable and need not match in
// kind. Comments start with ';' and run to the end of the line.
//
// Lex produces one Form per top-level module. Forms are purely structural:
// names, doc strings and type expressions are recorded with their source
// positions, but nothing is resolved or type checked. Package ast turns forms
// into the typed syntax tree.
package syntax
