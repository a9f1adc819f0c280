// Package wasm models a WebAssembly binary module and encodes it to the
// wire format: magic header, version 1, then the type, import, function,
// export and code sections with LEB128-encoded sizes.
package wasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ValueType is a wasm value type byte.
type ValueType byte

const (
	I32 ValueType = 0x7F
	I64 ValueType = 0x7E
	F32 ValueType = 0x7D
	F64 ValueType = 0x7C
)

func (v ValueType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	}
	return fmt.Sprintf("ValueType(0x%02X)", byte(v))
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

func (ft FuncType) equal(other FuncType) bool {
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range ft.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

// MemoryType is a linear memory limit declaration.
type MemoryType struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// Import is one imported function or memory. Func and Memory are mutually
// exclusive; Func is a type index.
type Import struct {
	Module string
	Name   string
	Func   uint32
	Memory *MemoryType
	IsFunc bool
}

// Function is one locally defined function. Locals lists the value types of
// the function's locals after its parameters, one entry per local; the
// encoder run-length compresses them. Body is raw instruction bytes without
// the trailing end opcode.
type Function struct {
	TypeIndex uint32
	Locals    []ValueType
	Body      []byte
}

// Export is one exported function. Index is in the function index space,
// which counts imported functions first.
type Export struct {
	Name  string
	Index uint32
}

// Module is a wasm module under construction.
type Module struct {
	Types     []FuncType
	Imports   []Import
	Functions []Function
	Exports   []Export
}

// AddType interns a function signature and returns its type index.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, existing := range m.Types {
		if existing.equal(ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

// ImportFunc appends a function import and returns its function index.
// Imported functions occupy the front of the function index space, so
// imports must be declared before calls into them are encoded.
func (m *Module) ImportFunc(module, name string, ft FuncType) uint32 {
	idx := uint32(0)
	for _, imp := range m.Imports {
		if imp.IsFunc {
			idx++
		}
	}
	m.Imports = append(m.Imports, Import{
		Module: module,
		Name:   name,
		Func:   m.AddType(ft),
		IsFunc: true,
	})
	return idx
}

// ImportMemory appends a linear memory import.
func (m *Module) ImportMemory(module, name string, mt MemoryType) {
	m.Imports = append(m.Imports, Import{
		Module: module,
		Name:   name,
		Memory: &mt,
	})
}

// NumImportedFuncs returns how many function indices the imports occupy.
func (m *Module) NumImportedFuncs() uint32 {
	n := uint32(0)
	for _, imp := range m.Imports {
		if imp.IsFunc {
			n++
		}
	}
	return n
}

// AddFunction appends a defined function and returns its index in the
// function index space.
func (m *Module) AddFunction(f Function) uint32 {
	m.Functions = append(m.Functions, f)
	return m.NumImportedFuncs() + uint32(len(m.Functions)-1)
}

// ExportFunc marks a function index as exported under name.
func (m *Module) ExportFunc(name string, index uint32) {
	m.Exports = append(m.Exports, Export{Name: name, Index: index})
}

// Section ids used by the encoder.
const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionExport   = 7
	sectionCode     = 10
)

// Encode serializes the module to the binary format.
func (m *Module) Encode() ([]byte, error) {
	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6D}) // \0asm
	out.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version 1

	if len(m.Types) > 0 {
		writeSection(&out, sectionType, m.encodeTypes())
	}
	if len(m.Imports) > 0 {
		writeSection(&out, sectionImport, m.encodeImports())
	}
	if len(m.Functions) > 0 {
		writeSection(&out, sectionFunction, m.encodeFuncDecls())
		// function section precedes export, code follows export
	}
	if len(m.Exports) > 0 {
		writeSection(&out, sectionExport, m.encodeExports())
	}
	if len(m.Functions) > 0 {
		writeSection(&out, sectionCode, m.encodeCode())
	}
	return out.Bytes(), nil
}

func writeSection(out *bytes.Buffer, id byte, payload []byte) {
	out.WriteByte(id)
	out.Write(AppendUleb(nil, uint64(len(payload))))
	out.Write(payload)
}

func (m *Module) encodeTypes() []byte {
	var b bytes.Buffer
	b.Write(AppendUleb(nil, uint64(len(m.Types))))
	for _, ft := range m.Types {
		b.WriteByte(0x60) // func type tag
		b.Write(AppendUleb(nil, uint64(len(ft.Params))))
		for _, p := range ft.Params {
			b.WriteByte(byte(p))
		}
		b.Write(AppendUleb(nil, uint64(len(ft.Results))))
		for _, r := range ft.Results {
			b.WriteByte(byte(r))
		}
	}
	return b.Bytes()
}

func (m *Module) encodeImports() []byte {
	var b bytes.Buffer
	b.Write(AppendUleb(nil, uint64(len(m.Imports))))
	for _, imp := range m.Imports {
		writeName(&b, imp.Module)
		writeName(&b, imp.Name)
		if imp.IsFunc {
			b.WriteByte(0x00) // func import
			b.Write(AppendUleb(nil, uint64(imp.Func)))
			continue
		}
		b.WriteByte(0x02) // memory import
		if imp.Memory.HasMax {
			b.WriteByte(0x01)
			b.Write(AppendUleb(nil, uint64(imp.Memory.Min)))
			b.Write(AppendUleb(nil, uint64(imp.Memory.Max)))
		} else {
			b.WriteByte(0x00)
			b.Write(AppendUleb(nil, uint64(imp.Memory.Min)))
		}
	}
	return b.Bytes()
}

func (m *Module) encodeFuncDecls() []byte {
	var b bytes.Buffer
	b.Write(AppendUleb(nil, uint64(len(m.Functions))))
	for _, f := range m.Functions {
		b.Write(AppendUleb(nil, uint64(f.TypeIndex)))
	}
	return b.Bytes()
}

func (m *Module) encodeExports() []byte {
	var b bytes.Buffer
	b.Write(AppendUleb(nil, uint64(len(m.Exports))))
	for _, e := range m.Exports {
		writeName(&b, e.Name)
		b.WriteByte(0x00) // func export
		b.Write(AppendUleb(nil, uint64(e.Index)))
	}
	return b.Bytes()
}

func (m *Module) encodeCode() []byte {
	var b bytes.Buffer
	b.Write(AppendUleb(nil, uint64(len(m.Functions))))
	for _, f := range m.Functions {
		body := encodeBody(f)
		b.Write(AppendUleb(nil, uint64(len(body))))
		b.Write(body)
	}
	return b.Bytes()
}

// encodeBody run-length groups the locals, then appends the instruction
// bytes and the end opcode.
func encodeBody(f Function) []byte {
	type group struct {
		count uint32
		typ   ValueType
	}
	var groups []group
	for _, l := range f.Locals {
		if len(groups) > 0 && groups[len(groups)-1].typ == l {
			groups[len(groups)-1].count++
		} else {
			groups = append(groups, group{count: 1, typ: l})
		}
	}

	var b bytes.Buffer
	b.Write(AppendUleb(nil, uint64(len(groups))))
	for _, g := range groups {
		b.Write(AppendUleb(nil, uint64(g.count)))
		b.WriteByte(byte(g.typ))
	}
	b.Write(f.Body)
	b.WriteByte(OpEnd)
	return b.Bytes()
}

func writeName(b *bytes.Buffer, name string) {
	b.Write(AppendUleb(nil, uint64(len(name))))
	b.WriteString(name)
}

// AppendUleb appends the unsigned LEB128 encoding of v to dst.
func AppendUleb(dst []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		dst = append(dst, c)
		if v == 0 {
			return dst
		}
	}
}

// AppendSleb appends the signed LEB128 encoding of v to dst.
func AppendSleb(dst []byte, v int64) []byte {
	for {
		c := byte(v & 0x7F)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		dst = append(dst, c)
		if done {
			return dst
		}
	}
}

// Instruction opcodes for the subset the backend emits.
const (
	OpUnreachable = 0x00
	OpNop         = 0x01
	OpLoop        = 0x03
	OpEnd         = 0x0B
	OpBr          = 0x0C
	OpReturn      = 0x0F
	OpCall        = 0x10
	OpDrop        = 0x1A

	OpLocalGet = 0x20
	OpLocalSet = 0x21
	OpLocalTee = 0x22

	OpF64Load = 0x2B

	OpI32Const = 0x41
	OpI64Const = 0x42
	OpF32Const = 0x43
	OpF64Const = 0x44

	OpI32Eq  = 0x46
	OpI32Ne  = 0x47
	OpI32LtS = 0x48
	OpI32GtS = 0x4A
	OpI32LeS = 0x4C
	OpI32GeS = 0x4E

	OpF64Eq = 0x61
	OpF64Ne = 0x62
	OpF64Lt = 0x63
	OpF64Gt = 0x64
	OpF64Le = 0x65
	OpF64Ge = 0x66

	OpI32Add  = 0x6A
	OpI32Sub  = 0x6B
	OpI32Mul  = 0x6C
	OpI32DivS = 0x6D
	OpI32And  = 0x71
	OpI32ShrU = 0x76

	OpF32Add = 0x92
	OpF32Sub = 0x93
	OpF32Mul = 0x94
	OpF32Div = 0x95

	OpF64Add = 0xA0
	OpF64Sub = 0xA1
	OpF64Mul = 0xA2
	OpF64Div = 0xA3

	OpF32ConvertI32S = 0xB2
	OpF32DemoteF64   = 0xB6
	OpF64ConvertI32S = 0xB7
	OpF64PromoteF32  = 0xBB

	BlockTypeEmpty = 0x40
)

// Code builds one function body's instruction stream.
type Code struct {
	buf bytes.Buffer
}

// Bytes returns the instruction bytes accumulated so far, without the
// trailing end opcode.
func (c *Code) Bytes() []byte {
	return c.buf.Bytes()
}

func (c *Code) op(b byte) *Code {
	c.buf.WriteByte(b)
	return c
}

// Raw emits a single opcode byte with no immediates.
func (c *Code) Raw(opcode byte) *Code {
	return c.op(opcode)
}

func (c *Code) I32Const(v int32) *Code {
	c.op(OpI32Const)
	c.buf.Write(AppendSleb(nil, int64(v)))
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.op(OpI64Const)
	c.buf.Write(AppendSleb(nil, v))
	return c
}

func (c *Code) F32Const(v float32) *Code {
	c.op(OpF32Const)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	c.buf.Write(tmp[:])
	return c
}

func (c *Code) F64Const(v float64) *Code {
	c.op(OpF64Const)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	c.buf.Write(tmp[:])
	return c
}

func (c *Code) LocalGet(i uint32) *Code {
	c.op(OpLocalGet)
	c.buf.Write(AppendUleb(nil, uint64(i)))
	return c
}

func (c *Code) LocalSet(i uint32) *Code {
	c.op(OpLocalSet)
	c.buf.Write(AppendUleb(nil, uint64(i)))
	return c
}

func (c *Code) Call(i uint32) *Code {
	c.op(OpCall)
	c.buf.Write(AppendUleb(nil, uint64(i)))
	return c
}

// Loop opens a loop block with an empty block type.
func (c *Code) Loop() *Code {
	c.op(OpLoop)
	return c.op(BlockTypeEmpty)
}

// Br emits a branch to the given relative label depth.
func (c *Code) Br(depth uint32) *Code {
	c.op(OpBr)
	c.buf.Write(AppendUleb(nil, uint64(depth)))
	return c
}

func (c *Code) End() *Code {
	return c.op(OpEnd)
}

func (c *Code) Return() *Code {
	return c.op(OpReturn)
}

func (c *Code) Drop() *Code {
	return c.op(OpDrop)
}

// F64Load emits a load from the imported linear memory with natural
// alignment (2^3 = 8 bytes) and the given byte offset.
func (c *Code) F64Load(offset uint32) *Code {
	c.op(OpF64Load)
	c.buf.Write(AppendUleb(nil, 3)) // alignment exponent
	c.buf.Write(AppendUleb(nil, uint64(offset)))
	return c
}
