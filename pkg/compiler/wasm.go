package compiler

import (
	"gosynth/pkg/wasm"
)

// Host import indices. The runtime links these by position, so the
// declaration order below is part of the binary contract.
const (
	importAudioInput = iota
	importAudioFFT
	importGraphicsClear
	importGraphicsPlasma
	importStreamCreate
)

const hostModule = "synthesis"

// RuntimeDependency names the host runtime every wasm artifact links
// against.
const RuntimeDependency = "synthesis-runtime"

// paletteIDs maps palette names to the integer ids the host runtime
// understands. String operands only reach code generation through drawing
// parameters.
var paletteIDs = map[string]int32{
	"neon":    0,
	"rainbow": 1,
	"mono":    2,
}

// WasmBackend lowers IR to a WebAssembly module linked against the host
// runtime imports.
type WasmBackend struct{}

func NewWasmBackend() *WasmBackend {
	return &WasmBackend{}
}

// Generate encodes ir into wasm bytecode plus artifact metadata.
func (b *WasmBackend) Generate(ir *IR, opts CompilationOptions) (*CompiledArtifact, error) {
	mod := &wasm.Module{}
	addHostImports(mod)

	for _, irMod := range ir.Modules {
		for _, fn := range irMod.Functions {
			if err := b.generateFunction(mod, fn); err != nil {
				return nil, err
			}
		}
	}

	bytecode, err := mod.Encode()
	if err != nil {
		return nil, NewError(CodeGenerationFailed, "encoding wasm module: %v", err)
	}

	meta := ArtifactMetadata{
		Target:            TargetWasm,
		EntryPoint:        ir.EntryPoint,
		ExportedFunctions: []string{ir.EntryPoint},
		Dependencies:      []string{RuntimeDependency},
	}
	for _, s := range ir.GlobalStreams {
		latency := 10.0
		if s.RealTime {
			latency = 1.0
		}
		meta.StreamInterfaces = append(meta.StreamInterfaces, StreamInterface{
			Name:       s.Name,
			InputType:  s.InputType.String(),
			OutputType: s.OutputType.String(),
			BufferSize: s.BufferSize,
			LatencyMs:  latency,
		})
	}
	return &CompiledArtifact{Bytecode: bytecode, Metadata: meta}, nil
}

func addHostImports(mod *wasm.Module) {
	mod.ImportFunc(hostModule, "audio_input", wasm.FuncType{
		Results: []wasm.ValueType{wasm.I32}, // audio buffer pointer
	})
	mod.ImportFunc(hostModule, "audio_fft", wasm.FuncType{
		Params:  []wasm.ValueType{wasm.I32, wasm.I32}, // buffer, bands
		Results: []wasm.ValueType{wasm.I32},           // magnitudes pointer
	})
	mod.ImportFunc(hostModule, "graphics_clear", wasm.FuncType{
		Params: []wasm.ValueType{wasm.F32, wasm.F32, wasm.F32}, // r, g, b
	})
	mod.ImportFunc(hostModule, "graphics_plasma", wasm.FuncType{
		Params: []wasm.ValueType{wasm.F32, wasm.I32}, // speed, palette
	})
	mod.ImportFunc(hostModule, "stream_create", wasm.FuncType{
		Params:  []wasm.ValueType{wasm.I32, wasm.I32}, // type, buffer size
		Results: []wasm.ValueType{wasm.I32},           // stream handle
	})
	mod.ImportMemory(hostModule, "memory", wasm.MemoryType{Min: 1, Max: 256, HasMax: true})
}

// mapType converts an IR type to its wasm representation. Streams and
// buffers travel as i32 host handles; Any rides in an i64 box.
func mapType(t IRType) (wasm.ValueType, error) {
	switch t.Kind {
	case IRInteger, IRBoolean:
		return wasm.I32, nil
	case IRFloat, IRAudioFrequency, IRPercentage:
		return wasm.F64, nil
	case IRAudioSample:
		return wasm.F32, nil
	case IRAudioBuffer, IRStream, IRString:
		return wasm.I32, nil
	case IRAny:
		return wasm.I64, nil
	}
	return 0, NewError(CodeGenerationFailed, "type %s has no wasm representation", t)
}

// funcEmitter tracks the register-to-local mapping for one function.
type funcEmitter struct {
	locals     []wasm.ValueType
	regIndex   map[int]uint32
	regTypes   map[int]IRType
	paramCount uint32
}

func (b *WasmBackend) generateFunction(mod *wasm.Module, fn *IRFunction) error {
	em := &funcEmitter{
		regIndex:   make(map[int]uint32),
		regTypes:   make(map[int]IRType),
		paramCount: uint32(len(fn.Params)),
	}

	var params []wasm.ValueType
	for _, p := range fn.Params {
		wt, err := mapType(p.Type)
		if err != nil {
			return err
		}
		params = append(params, wt)
	}
	var results []wasm.ValueType
	if fn.ReturnType.Kind != IRVoid {
		wt, err := mapType(fn.ReturnType)
		if err != nil {
			return err
		}
		results = []wasm.ValueType{wt}
	}

	// First pass: allocate one local per destination register.
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instrs {
			if dest, ok := destRegister(in); ok {
				if _, seen := em.regIndex[dest.ID]; seen {
					continue
				}
				wt, err := mapType(dest.Type)
				if err != nil {
					return err
				}
				em.regIndex[dest.ID] = em.paramCount + uint32(len(em.locals))
				em.regTypes[dest.ID] = dest.Type
				em.locals = append(em.locals, wt)
			}
		}
	}

	code := &wasm.Code{}
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instrs {
			if err := em.emitInstr(code, in); err != nil {
				return err
			}
		}
		if err := em.emitTerm(code, blk.Term); err != nil {
			return err
		}
	}

	idx := mod.AddFunction(wasm.Function{
		TypeIndex: mod.AddType(wasm.FuncType{Params: params, Results: results}),
		Locals:    em.locals,
		Body:      code.Bytes(),
	})
	if fn.Name == "main" {
		mod.ExportFunc(fn.Name, idx)
	}
	return nil
}

func destRegister(in Instruction) (Register, bool) {
	switch i := in.(type) {
	case *Load:
		return i.Dest, true
	case *BinOp:
		return i.Dest, true
	case *Cmp:
		return i.Dest, true
	case *StreamCreate:
		return i.Dest, true
	case *AudioAnalyzeFFT:
		return i.Dest, true
	case *AudioBeatDetect:
		return i.Dest, true
	case *ArrayGet:
		return i.Dest, true
	}
	return Register{}, false
}

func (em *funcEmitter) localOf(r Register) (uint32, error) {
	idx, ok := em.regIndex[r.ID]
	if !ok {
		return 0, NewError(CodeGenerationFailed, "register %%%d has no local slot", r.ID)
	}
	return idx, nil
}

// pushValueAs emits code leaving v on the stack as the wanted wasm type,
// inserting numeric conversions where the representation differs.
func (em *funcEmitter) pushValueAs(code *wasm.Code, v Value, want wasm.ValueType) error {
	switch val := v.(type) {
	case IntConst:
		switch want {
		case wasm.I32:
			code.I32Const(int32(val.Value))
		case wasm.I64:
			code.I64Const(val.Value)
		case wasm.F32:
			code.F32Const(float32(val.Value))
		case wasm.F64:
			code.F64Const(float64(val.Value))
		}
		return nil
	case FloatConst:
		switch want {
		case wasm.F64:
			code.F64Const(val.Value)
		case wasm.F32:
			code.F32Const(float32(val.Value))
		default:
			return NewError(CodeGenerationFailed, "float constant used where %s is required", want)
		}
		return nil
	case BoolConst:
		if want != wasm.I32 {
			return NewError(CodeGenerationFailed, "boolean constant used where %s is required", want)
		}
		if val.Value {
			code.I32Const(1)
		} else {
			code.I32Const(0)
		}
		return nil
	case StringConst:
		// Strings only reach codegen as palette selectors.
		if want != wasm.I32 {
			return NewError(CodeGenerationFailed, "string constant used where %s is required", want)
		}
		id, ok := paletteIDs[val.Value]
		if !ok {
			return NewError(CodeGenerationFailed, "unknown palette %q", val.Value)
		}
		code.I32Const(id)
		return nil
	case Register:
		idx, err := em.localOf(val)
		if err != nil {
			return err
		}
		have, err := mapType(val.Type)
		if err != nil {
			return err
		}
		code.LocalGet(idx)
		return convert(code, have, want)
	case Global:
		return NewError(CodeGenerationFailed, "global binding %q cannot be lowered", val.Name)
	}
	return NewError(CodeGenerationFailed, "unsupported operand %T", v)
}

func convert(code *wasm.Code, have, want wasm.ValueType) error {
	if have == want {
		return nil
	}
	switch {
	case have == wasm.I32 && want == wasm.F64:
		code.Raw(wasm.OpF64ConvertI32S)
	case have == wasm.I32 && want == wasm.F32:
		code.Raw(wasm.OpF32ConvertI32S)
	case have == wasm.F32 && want == wasm.F64:
		code.Raw(wasm.OpF64PromoteF32)
	case have == wasm.F64 && want == wasm.F32:
		code.Raw(wasm.OpF32DemoteF64)
	default:
		return NewError(CodeGenerationFailed, "no conversion from %s to %s", have, want)
	}
	return nil
}

func (em *funcEmitter) emitInstr(code *wasm.Code, in Instruction) error {
	switch i := in.(type) {
	case *Load:
		want, err := mapType(i.Dest.Type)
		if err != nil {
			return err
		}
		if err := em.pushValueAs(code, i.Src, want); err != nil {
			return err
		}
		return em.setLocal(code, i.Dest)

	case *BinOp:
		return em.emitBinOp(code, i)

	case *Cmp:
		return em.emitCmp(code, i)

	case *StreamCreate:
		code.I32Const(0) // stream type tag
		code.I32Const(int32(i.BufferSize))
		code.Call(importStreamCreate)
		return em.setLocal(code, i.Dest)

	case *AudioAnalyzeFFT:
		if err := em.pushValueAs(code, i.Audio, wasm.I32); err != nil {
			return err
		}
		code.I32Const(int32(i.Bands))
		code.Call(importAudioFFT)
		return em.setLocal(code, i.Dest)

	case *AudioBeatDetect:
		// No host import exists for beat detection; the deterministic
		// runtime answer is false.
		code.I32Const(0)
		return em.setLocal(code, i.Dest)

	case *ArrayGet:
		// Buffer elements are f64 magnitudes in the imported linear
		// memory, addressed handle + index*8.
		if err := em.pushValueAs(code, i.Array, wasm.I32); err != nil {
			return err
		}
		if err := em.pushValueAs(code, i.Index, wasm.I32); err != nil {
			return err
		}
		code.I32Const(8)
		code.Raw(wasm.OpI32Mul)
		code.Raw(wasm.OpI32Add)
		code.F64Load(0)
		return em.setLocal(code, i.Dest)

	case *GraphicsDraw:
		return em.emitDraw(code, i)
	}
	return NewError(CodeGenerationFailed, "instruction not yet implemented: %s", in)
}

func (em *funcEmitter) setLocal(code *wasm.Code, dest Register) error {
	idx, err := em.localOf(dest)
	if err != nil {
		return err
	}
	code.LocalSet(idx)
	return nil
}

var i32BinOps = map[TokenType]byte{
	PLUS:  wasm.OpI32Add,
	MINUS: wasm.OpI32Sub,
	STAR:  wasm.OpI32Mul,
	SLASH: wasm.OpI32DivS,
}

var f32BinOps = map[TokenType]byte{
	PLUS:  wasm.OpF32Add,
	MINUS: wasm.OpF32Sub,
	STAR:  wasm.OpF32Mul,
	SLASH: wasm.OpF32Div,
}

var f64BinOps = map[TokenType]byte{
	PLUS:  wasm.OpF64Add,
	MINUS: wasm.OpF64Sub,
	STAR:  wasm.OpF64Mul,
	SLASH: wasm.OpF64Div,
}

func (em *funcEmitter) emitBinOp(code *wasm.Code, i *BinOp) error {
	want, err := mapType(i.Dest.Type)
	if err != nil {
		return err
	}
	if err := em.pushValueAs(code, i.Left, want); err != nil {
		return err
	}
	if err := em.pushValueAs(code, i.Right, want); err != nil {
		return err
	}
	var ops map[TokenType]byte
	switch want {
	case wasm.I32:
		ops = i32BinOps
	case wasm.F32:
		ops = f32BinOps
	case wasm.F64:
		ops = f64BinOps
	default:
		return NewError(CodeGenerationFailed, "unsupported operand type %s for %q", want, binaryOpSymbols[i.Op])
	}
	code.Raw(ops[i.Op])
	return em.setLocal(code, i.Dest)
}

var i32CmpOps = map[TokenType]byte{
	EQ:  wasm.OpI32Eq,
	NEQ: wasm.OpI32Ne,
	LT:  wasm.OpI32LtS,
	LTE: wasm.OpI32LeS,
	GT:  wasm.OpI32GtS,
	GTE: wasm.OpI32GeS,
}

var f64CmpOps = map[TokenType]byte{
	EQ:  wasm.OpF64Eq,
	NEQ: wasm.OpF64Ne,
	LT:  wasm.OpF64Lt,
	LTE: wasm.OpF64Le,
	GT:  wasm.OpF64Gt,
	GTE: wasm.OpF64Ge,
}

// emitCmp compares as i32 when both operands are integers, otherwise as f64.
func (em *funcEmitter) emitCmp(code *wasm.Code, i *Cmp) error {
	lt, rt := typeOfValue(i.Left), typeOfValue(i.Right)
	asInt := lt.Kind == IRInteger && rt.Kind == IRInteger ||
		lt.Kind == IRBoolean && rt.Kind == IRBoolean

	want := wasm.ValueType(wasm.F64)
	ops := f64CmpOps
	if asInt {
		want = wasm.I32
		ops = i32CmpOps
	}
	if err := em.pushValueAs(code, i.Left, want); err != nil {
		return err
	}
	if err := em.pushValueAs(code, i.Right, want); err != nil {
		return err
	}
	code.Raw(ops[i.Op])
	return em.setLocal(code, i.Dest)
}

// emitDraw lowers a drawing primitive to its host import. A single integer
// color argument is split into r, g, b components.
func (em *funcEmitter) emitDraw(code *wasm.Code, i *GraphicsDraw) error {
	switch i.Primitive {
	case "clear":
		if len(i.Params) != 1 {
			return NewError(CodeGenerationFailed, "clear takes one color operand, got %d", len(i.Params))
		}
		if c, ok := i.Params[0].(IntConst); ok {
			rgb := uint32(c.Value)
			code.F32Const(float32((rgb>>16)&0xFF) / 255)
			code.F32Const(float32((rgb>>8)&0xFF) / 255)
			code.F32Const(float32(rgb&0xFF) / 255)
			code.Call(importGraphicsClear)
			return nil
		}
		// Runtime color: unpack the packed 0xRRGGBB i32 into normalized
		// channel floats with the same shift/mask the constant path uses.
		for _, shift := range []int32{16, 8, 0} {
			if err := em.pushValueAs(code, i.Params[0], wasm.I32); err != nil {
				return err
			}
			if shift > 0 {
				code.I32Const(shift)
				code.Raw(wasm.OpI32ShrU)
			}
			code.I32Const(0xFF)
			code.Raw(wasm.OpI32And)
			code.Raw(wasm.OpF32ConvertI32S)
			code.F32Const(255)
			code.Raw(wasm.OpF32Div)
		}
		code.Call(importGraphicsClear)
		return nil

	case "plasma":
		wants := []wasm.ValueType{wasm.F32, wasm.I32} // speed, palette
		for n, want := range wants {
			if n < len(i.Params) {
				if err := em.pushValueAs(code, i.Params[n], want); err != nil {
					return err
				}
			} else if want == wasm.F32 {
				code.F32Const(0)
			} else {
				code.I32Const(0)
			}
		}
		code.Call(importGraphicsPlasma)
		return nil
	}
	return NewError(CodeGenerationFailed, "unsupported graphics primitive: %s", i.Primitive).
		WithSuggestion("the wasm runtime implements clear and plasma")
}

func (em *funcEmitter) emitTerm(code *wasm.Code, term Terminator) error {
	switch t := term.(type) {
	case nil:
		return nil
	case *Return:
		if t.Value != nil {
			// Return type lowering follows the function signature; the
			// builder only produces void entry functions today.
			return NewError(CodeGenerationFailed, "value returns are not lowered yet")
		}
		code.Return()
		return nil
	case *Jump:
		// Blocks are emitted in execution order, so a jump to the next
		// block is a fallthrough.
		return nil
	case *Branch:
		// Structured control flow lowering is incomplete: the condition
		// is evaluated for its effects and both arms run inline.
		if err := em.pushValueAs(code, t.Cond, wasm.I32); err != nil {
			return err
		}
		code.Drop()
		return nil
	case *StreamLoop:
		code.Loop()
		code.Br(0)
		code.End()
		return nil
	}
	return NewError(CodeGenerationFailed, "terminator not yet implemented: %s", term)
}
