package abi

import (
	"strings"

	"github.com/wippyai/tisl/ast"
)

// TermKind tags one summand of an Offset.
type TermKind uint8

const (
	// TermSizePair skips a list or string: pointer and length.
	TermSizePair TermKind = iota
	// TermSize skips one pointer or length.
	TermSize
	// TermRecord skips an inlined record.
	TermRecord
	// TermWire skips one scalar.
	TermWire
)

// Term is one summand of an Offset.
type Term struct {
	Record *ast.Record
	Kind   TermKind
	Wire   Wire
}

// Bytes evaluates the term under the layout's configuration.
func (t Term) Bytes(l *Layout) (int, error) {
	switch t.Kind {
	case TermSizePair:
		return 2 * l.cfg.SizeWidth(), nil
	case TermSize:
		return l.cfg.SizeWidth(), nil
	case TermRecord:
		return l.RecordSize(t.Record)
	default:
		return t.Wire.Width(l.cfg), nil
	}
}

func (t Term) String() string {
	switch t.Kind {
	case TermSizePair:
		return "2*size"
	case TermSize:
		return "size"
	case TermRecord:
		return "sizeof(" + t.Record.Name + ")"
	default:
		return t.Wire.String()
	}
}

// skipTerm returns the term that steps over a field in a record.
func skipTerm(f *ast.NamedType) (Term, error) {
	if f.IsList() || f.IsString() {
		return Term{Kind: TermSizePair}, nil
	}
	rec, err := f.AsRecord()
	if err != nil {
		return Term{}, err
	}
	if rec != nil {
		return Term{Kind: TermRecord, Record: rec}, nil
	}
	if f.IsEnum() {
		return Term{Kind: TermWire, Wire: WireU8}, nil
	}
	d, _ := f.DataType()
	return Term{Kind: TermWire, Wire: FieldWire(d)}, nil
}

// Offset is a symbolic guest address: a named base pointer plus a running
// sum of field widths.
type Offset struct {
	Base  string
	Terms []Term
}

// Plus returns a new offset with terms appended. The receiver is not
// modified.
func (o Offset) Plus(terms ...Term) Offset {
	out := Offset{Base: o.Base, Terms: make([]Term, 0, len(o.Terms)+len(terms))}
	out.Terms = append(out.Terms, o.Terms...)
	out.Terms = append(out.Terms, terms...)
	return out
}

// Bytes evaluates the distance from Base in bytes.
func (o Offset) Bytes(l *Layout) (int, error) {
	total := 0
	for _, t := range o.Terms {
		n, err := t.Bytes(l)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (o Offset) String() string {
	if len(o.Terms) == 0 {
		return o.Base
	}
	parts := make([]string, 0, len(o.Terms)+1)
	parts = append(parts, o.Base)
	for _, t := range o.Terms {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " + ")
}

// Source names the value a write reads from, as a path of snake_case field
// names below the implementation's result. Len selects the length of a
// list or string instead of its contents. Ref is set when the value is
// held by reference.
type Source struct {
	Path []string
	Len  bool
	Ref  bool
}

func (s Source) String() string {
	p := strings.Join(s.Path, ".")
	if p == "" {
		p = "result"
	}
	if s.Len {
		return "len(" + p + ")"
	}
	return p
}

// FieldOffsets returns the offset of every field of rec, in declaration
// order, relative to base.
func FieldOffsets(base Offset, rec *ast.Record) ([]Offset, error) {
	offs, _, err := fieldOffsets(base, rec)
	return offs, err
}

// RecordEnd returns the offset just past the last field of rec. Its terms
// alone spell out the record's size.
func RecordEnd(base Offset, rec *ast.Record) (Offset, error) {
	_, end, err := fieldOffsets(base, rec)
	return end, err
}

func fieldOffsets(base Offset, rec *ast.Record) ([]Offset, Offset, error) {
	offs := make([]Offset, len(rec.Fields))
	off := base
	for i, f := range rec.Fields {
		offs[i] = off
		skip, err := skipTerm(f)
		if err != nil {
			return nil, Offset{}, err
		}
		off = off.Plus(skip)
	}
	return offs, off, nil
}
