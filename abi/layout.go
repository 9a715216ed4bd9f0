package abi

import (
	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
)

// Layout computes packed wire sizes of records under one Config.
type Layout struct {
	cache map[*ast.Record]int
	cfg   Config
}

// NewLayout creates a layout calculator for cfg.
func NewLayout(cfg Config) *Layout {
	return &Layout{
		cfg:   cfg,
		cache: make(map[*ast.Record]int),
	}
}

// Config returns the configuration sizes are computed under.
func (l *Layout) Config() Config {
	return l.cfg
}

// inProgress marks a record whose size is being computed.
const inProgress = -1

// FieldSize is the number of bytes a value occupies inside a record.
func (l *Layout) FieldSize(nt *ast.NamedType) (int, error) {
	if nt.IsList() || nt.IsString() {
		return 2 * l.cfg.SizeWidth(), nil
	}
	rec, err := nt.AsRecord()
	if err != nil {
		return 0, err
	}
	if rec != nil {
		return l.RecordSize(rec)
	}
	if nt.IsEnum() {
		return 1, nil
	}
	d, _ := nt.DataType()
	return FieldWire(d).Width(l.cfg), nil
}

// RecordSize is the packed size of a record: the sum of its field sizes.
func (l *Layout) RecordSize(rec *ast.Record) (int, error) {
	if size, ok := l.cache[rec]; ok {
		if size == inProgress {
			return 0, errors.New(errors.PhaseGenerate, errors.KindRecursiveRecord).
				Path(rec.Name).
				Detail("Record '%s' contains itself", rec.Name).
				Build()
		}
		return size, nil
	}
	l.cache[rec] = inProgress

	size := 0
	for _, f := range rec.Fields {
		n, err := l.FieldSize(f)
		if err != nil {
			delete(l.cache, rec)
			return 0, err
		}
		size += n
	}
	l.cache[rec] = size
	return size, nil
}

// FieldOffset is the byte offset of the named field from the record start.
func (l *Layout) FieldOffset(rec *ast.Record, name string) (int, error) {
	if rec.Field(name) == nil {
		return 0, errors.NotFound(errors.PhaseGenerate, "field", rec.Name+"."+name)
	}
	off := 0
	for _, f := range rec.FieldsBefore(name) {
		n, err := l.FieldSize(f)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// ElementSize is the stride of one element of an allocated buffer.
func (l *Layout) ElementSize(e Element) (int, error) {
	switch e.Kind {
	case ElemString:
		return 2 * l.cfg.SizeWidth(), nil
	case ElemRecord:
		return l.RecordSize(e.Record)
	case ElemEnum:
		return 1, nil
	default:
		return e.Wire.Width(l.cfg), nil
	}
}
