// Package wasmbin encodes the small core WASM modules used to exercise
// TISL import namespaces: a guest that imports a set of host functions,
// re-exports each of them and exports linear memory plus a bump allocator.
package wasmbin

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType   byte = 1
	sectionImport byte = 2
	sectionFunc   byte = 3
	sectionMemory byte = 5
	sectionGlobal byte = 6
	sectionExport byte = 7
	sectionCode   byte = 10

	funcTypeMarker byte = 0x60
	kindFunc       byte = 0x00
	kindMemory     byte = 0x02

	opLocalGet  byte = 0x20
	opGlobalGet byte = 0x23
	opGlobalSet byte = 0x24
	opI32Const  byte = 0x41
	opI64Const  byte = 0x42
	opI32Add    byte = 0x6A
	opI64Add    byte = 0x7C
	opEnd       byte = 0x0B
)

// AllocatorExport is the name of the guest allocation function.
const AllocatorExport = "allocate_wasm_mem"

// heapBase is the first address the allocator hands out.
const heapBase = 1024

// FuncType is a core function type.
type FuncType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Import is an imported function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Importer builds a guest module importing functions.
type Importer struct {
	imports []Import
	size    api.ValueType
}

// NewImporter creates an importer whose allocator uses size, i32 or i64,
// for pointers and lengths.
func NewImporter(size api.ValueType) *Importer {
	return &Importer{size: size}
}

// Import adds an imported function.
func (im *Importer) Import(module, name string, typ FuncType) *Importer {
	im.imports = append(im.imports, Import{Module: module, Name: name, Type: typ})
	return im
}

// ExportName is the name under which the guest re-exports an import.
func ExportName(module, name string) string {
	return module + "." + name
}

// Imports returns the imports added so far.
func (im *Importer) Imports() []Import {
	return im.imports
}

// Encode returns the binary module. Type indices are assigned in import
// order with the allocator's type last.
func (im *Importer) Encode() []byte {
	buf := &Buffer{}
	buf.WriteBytes([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}) // magic + version

	alloc := FuncType{Params: []api.ValueType{im.size}, Results: []api.ValueType{im.size}}
	types := make([]FuncType, 0, len(im.imports)+1)
	for _, imp := range im.imports {
		types = append(types, imp.Type)
	}
	types = append(types, alloc)

	im.encodeTypes(buf, types)
	if len(im.imports) > 0 {
		im.encodeImports(buf)
	}
	im.encodeFuncs(buf, uint32(len(types)-1))
	im.encodeMemory(buf)
	im.encodeGlobal(buf)
	im.encodeExports(buf)
	im.encodeCode(buf)
	return buf.Bytes
}

func writeSection(buf *Buffer, id byte, content *Buffer) {
	buf.AppendByte(id)
	buf.WriteU32(uint32(len(content.Bytes)))
	buf.WriteBytes(content.Bytes)
}

func (im *Importer) encodeTypes(buf *Buffer, types []FuncType) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(types)))
	for _, ft := range types {
		sec.AppendByte(funcTypeMarker)
		sec.WriteU32(uint32(len(ft.Params)))
		for _, p := range ft.Params {
			sec.AppendByte(p)
		}
		sec.WriteU32(uint32(len(ft.Results)))
		for _, r := range ft.Results {
			sec.AppendByte(r)
		}
	}
	writeSection(buf, sectionType, sec)
}

func (im *Importer) encodeImports(buf *Buffer) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(im.imports)))
	for i, imp := range im.imports {
		sec.WriteName(imp.Module)
		sec.WriteName(imp.Name)
		sec.AppendByte(kindFunc)
		sec.WriteU32(uint32(i))
	}
	writeSection(buf, sectionImport, sec)
}

func (im *Importer) encodeFuncs(buf *Buffer, allocType uint32) {
	sec := &Buffer{}
	sec.WriteU32(1)
	sec.WriteU32(allocType)
	writeSection(buf, sectionFunc, sec)
}

func (im *Importer) encodeMemory(buf *Buffer) {
	sec := &Buffer{}
	sec.WriteU32(1)
	sec.WriteLimits(1)
	writeSection(buf, sectionMemory, sec)
}

// encodeGlobal declares the mutable heap pointer.
func (im *Importer) encodeGlobal(buf *Buffer) {
	sec := &Buffer{}
	sec.WriteU32(1)
	sec.AppendByte(im.size)
	sec.AppendByte(0x01)
	if im.size == api.ValueTypeI64 {
		sec.AppendByte(opI64Const)
	} else {
		sec.AppendByte(opI32Const)
	}
	sec.WriteI64(heapBase)
	sec.AppendByte(opEnd)
	writeSection(buf, sectionGlobal, sec)
}

// encodeExports exports memory, the allocator and every import under
// ExportName, so callers can drive host functions through the guest.
func (im *Importer) encodeExports(buf *Buffer) {
	sec := &Buffer{}
	sec.WriteU32(uint32(2 + len(im.imports)))
	for i, imp := range im.imports {
		sec.WriteName(ExportName(imp.Module, imp.Name))
		sec.AppendByte(kindFunc)
		sec.WriteU32(uint32(i))
	}
	sec.WriteName("memory")
	sec.AppendByte(kindMemory)
	sec.WriteU32(0)
	sec.WriteName(AllocatorExport)
	sec.AppendByte(kindFunc)
	sec.WriteU32(uint32(len(im.imports)))
	writeSection(buf, sectionExport, sec)
}

// encodeCode emits the allocator: return the heap pointer and advance it
// by the requested amount.
func (im *Importer) encodeCode(buf *Buffer) {
	add := opI32Add
	if im.size == api.ValueTypeI64 {
		add = opI64Add
	}
	body := &Buffer{}
	body.WriteU32(0) // no locals
	body.WriteBytes([]byte{
		opGlobalGet, 0,
		opGlobalGet, 0,
		opLocalGet, 0,
		add,
		opGlobalSet, 0,
		opEnd,
	})

	sec := &Buffer{}
	sec.WriteU32(1)
	sec.WriteU32(uint32(len(body.Bytes)))
	sec.WriteBytes(body.Bytes)
	writeSection(buf, sectionCode, sec)
}
