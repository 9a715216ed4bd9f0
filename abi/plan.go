package abi

import (
	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
)

// WriteOp stores one scalar read from Source at Target.
type WriteOp struct {
	Source Source
	Target Offset
	Wire   Wire
}

// ElementKind tags the element type of an allocated buffer.
type ElementKind uint8

const (
	ElemScalar ElementKind = iota
	// ElemString elements are pointer/length pairs to further buffers.
	ElemString
	ElemRecord
	ElemEnum
)

// Element is the element type of an allocation.
type Element struct {
	Record *ast.Record
	Enum   *ast.Enum
	Kind   ElementKind
	Wire   Wire
	Data   ast.DataType // builtin type of ElemScalar and ElemString elements
}

func (e Element) String() string {
	switch e.Kind {
	case ElemString:
		return "string"
	case ElemRecord:
		return e.Record.Name
	case ElemEnum:
		return e.Enum.Name
	}
	return e.Wire.String()
}

// AllocOp allocates a guest buffer for every element of Write.Source,
// copies or converts the elements into it and stores the buffer address at
// Write.Target.
type AllocOp struct {
	Write WriteOp
	Elem  Element
}

// Plan lists the operations that return a function's results to the guest,
// in declaration order.
type Plan struct {
	Writes []WriteOp
	Allocs []AllocOp
}

func (p *Plan) append(other *Plan) {
	p.Writes = append(p.Writes, other.Writes...)
	p.Allocs = append(p.Allocs, other.Allocs...)
}

// PlanFunction computes the plan for fn's return values. Each return value
// is written through its own out pointer. For a multi-return function the
// sources are fields of the result struct; a single value is the result
// itself.
func PlanFunction(fn *ast.Function) (*Plan, error) {
	multi := fn.IsMultiReturn()
	plan := &Plan{}
	for _, rv := range fn.ReturnValues {
		name := Snake(rv.Name)
		var src []string
		if multi {
			src = []string{name}
		}
		target := Offset{Base: name + "_out"}
		lenTarget := Offset{Base: name + "_out_len"}
		if err := planValue(plan, rv, src, target, lenTarget, []string{fn.Name, rv.Name}); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// PlanRecord computes the plan for writing rec, read from source, at base.
// Fields follow each other without padding and nested records are inlined
// at their own offset inside the enclosing region.
func PlanRecord(base Offset, source []string, rec *ast.Record) (*Plan, error) {
	return planRecord(base, source, rec, []string{rec.Name})
}

func planRecord(base Offset, source []string, rec *ast.Record, path []string) (*Plan, error) {
	offs, err := FieldOffsets(base, rec)
	if err != nil {
		return nil, err
	}
	plan := &Plan{}
	for i, f := range rec.Fields {
		src := append(source[:len(source):len(source)], Snake(f.Name))
		lenTarget := offs[i].Plus(Term{Kind: TermSize})
		if err := planValue(plan, f, src, offs[i], lenTarget, append(path[:len(path):len(path)], f.Name)); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func planValue(plan *Plan, v *ast.NamedType, src []string, target, lenTarget Offset, path []string) error {
	if v.IsList() || v.IsString() {
		elem, err := element(v, path)
		if err != nil {
			return err
		}
		plan.Allocs = append(plan.Allocs, AllocOp{
			Write: WriteOp{Source: Source{Path: src, Ref: v.IsReference()}, Target: target, Wire: WireSize},
			Elem:  elem,
		})
		plan.Writes = append(plan.Writes, WriteOp{
			Source: Source{Path: src, Len: true},
			Target: lenTarget,
			Wire:   WireSize,
		})
		return nil
	}

	rec, err := v.AsRecord()
	if err != nil {
		return err
	}
	if rec != nil {
		nested, err := planRecord(target, src, rec, path)
		if err != nil {
			return err
		}
		plan.append(nested)
		return nil
	}

	w := WireU8
	if !v.IsEnum() {
		d, ok := v.DataType()
		if !ok {
			return errors.Generation(path, "Failed to lookup wire type: %s", v.TypeName())
		}
		w = FieldWire(d)
	}
	plan.Writes = append(plan.Writes, WriteOp{
		Source: Source{Path: src, Ref: v.IsReference()},
		Target: target,
		Wire:   w,
	})
	return nil
}

// element returns the element type of a list, or u8 for a bare string's
// bytes.
func element(v *ast.NamedType, path []string) (Element, error) {
	rec, err := v.AsRecord()
	if err != nil {
		return Element{}, err
	}
	if rec != nil {
		return Element{Kind: ElemRecord, Record: rec}, nil
	}
	e, err := v.AsEnum()
	if err != nil {
		return Element{}, err
	}
	if e != nil {
		return Element{Kind: ElemEnum, Enum: e, Wire: WireU8}, nil
	}
	d, ok := v.DataType()
	if !ok {
		return Element{}, errors.Generation(path, "Failed to lookup wire type: %s", v.TypeName())
	}
	if d == ast.String {
		if v.IsList() {
			return Element{Kind: ElemString, Wire: WireSize, Data: d}, nil
		}
		return Element{Kind: ElemScalar, Wire: WireU8, Data: d}, nil
	}
	return Element{Kind: ElemScalar, Wire: FieldWire(d), Data: d}, nil
}
