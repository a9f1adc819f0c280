package compiler

import (
	"strconv"
	"strings"
)

// irBuilder lowers a parsed program into typed IR. Registers are numbered
// per function; the symbol table is flat, matching the language's single
// scope.
type irBuilder struct {
	opts      CompilationOptions
	fn        *IRFunction
	cur       *BasicBlock
	nextReg   int
	nextBlock int
	symbols   map[string]Register
	streams   []StreamDef
}

// BuildIR lowers prog into an IR program with one module and a single
// entry function named "main".
func BuildIR(prog *Program, opts CompilationOptions) (*IR, error) {
	b := &irBuilder{
		opts:    opts,
		symbols: make(map[string]Register),
	}
	b.fn = &IRFunction{Name: "main", ReturnType: TypeVoid}
	b.cur = b.newBlock("entry")

	for _, item := range prog.Items {
		var err error
		switch it := item.(type) {
		case *ImportItem:
			err = b.checkImport(it)
		case *LoopItem:
			err = b.genLoop(it)
		case Stmt:
			err = b.genStmt(it)
		}
		if err != nil {
			return nil, err
		}
	}

	if b.cur.Term == nil {
		b.cur.Term = &Return{}
	}

	mod := &IRModule{Name: "main", Functions: []*IRFunction{b.fn}}
	return &IR{
		Modules:       []*IRModule{mod},
		EntryPoint:    "main",
		GlobalStreams: b.streams,
	}, nil
}

func (b *irBuilder) newBlock(prefix string) *BasicBlock {
	label := prefix
	if b.nextBlock > 0 {
		label = prefix + "_" + strconv.Itoa(b.nextBlock)
	}
	b.nextBlock++
	blk := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	return blk
}

func (b *irBuilder) newReg(name string, t IRType) Register {
	r := Register{ID: b.nextReg, Name: name, Type: t}
	b.nextReg++
	return r
}

func (b *irBuilder) emit(in Instruction) {
	b.cur.Instrs = append(b.cur.Instrs, in)
}

// checkImport validates the imported module and names against the closed
// builtin tables. Imports generate no code.
func (b *irBuilder) checkImport(it *ImportItem) error {
	available := ModuleFunctions(it.Module)
	if len(available) == 0 {
		return NewError(UnknownFunction, "unknown module %q", it.Module).
			WithSuggestion("available modules: Audio, Graphics")
	}
	for _, name := range it.Names {
		if _, ok := LookupBuiltin(it.Module, name); !ok {
			return NewError(UnknownFunction, "module %s has no function %q", it.Module, name).
				WithSuggestion("%s exports: %s", it.Module, strings.Join(available, ", "))
		}
	}
	return nil
}

// genLoop lowers `loop { ... }` into a dedicated block ending in the
// StreamLoop terminator. The host re-enters the block once per frame.
func (b *irBuilder) genLoop(it *LoopItem) error {
	loop := b.newBlock("stream_loop")
	b.cur.Term = &Jump{Target: loop.Label}
	b.cur = loop
	b.fn.IsStreamProcessor = true

	for _, s := range it.Body {
		if err := b.genStmt(s); err != nil {
			return err
		}
	}
	if b.cur.Term == nil {
		b.cur.Term = &StreamLoop{}
	}

	b.cur = b.newBlock("after_loop")
	return nil
}

func (b *irBuilder) genStmt(s Stmt) error {
	switch st := s.(type) {
	case *Assignment:
		v, err := b.genExpr(st.Value)
		if err != nil {
			return err
		}
		if v == nil {
			return NewError(TypeMismatch, "cannot assign the result of a void call to %q", st.Name)
		}
		dest := b.newReg(st.Name, typeOfValue(v))
		b.emit(&Load{Dest: dest, Src: v})
		b.symbols[st.Name] = dest
		return nil
	case *IfStmt:
		return b.genIf(st)
	case *ExprStmt:
		_, err := b.genExpr(st.Expr)
		return err
	}
	return NewError(CompilationFailed, "unsupported statement %T", s)
}

func (b *irBuilder) genIf(st *IfStmt) error {
	cond, err := b.genExpr(st.Cond)
	if err != nil {
		return err
	}
	if cond == nil {
		return NewError(TypeMismatch, "if condition must be Boolean, got void")
	}
	if t := typeOfValue(cond); t.Kind != IRBoolean && t.Kind != IRAny {
		return NewError(TypeMismatch, "if condition must be Boolean, got %s", t)
	}

	// Blocks are laid out in execution order: then, else, endif.
	thenBlk := b.newBlock("then")
	var elseBlk *BasicBlock
	if st.Else != nil {
		elseBlk = b.newBlock("else")
	}
	endBlk := b.newBlock("endif")

	falseTarget := endBlk.Label
	if elseBlk != nil {
		falseTarget = elseBlk.Label
	}
	b.cur.Term = &Branch{Cond: cond, True: thenBlk.Label, False: falseTarget}

	b.cur = thenBlk
	for _, s := range st.Then {
		if err := b.genStmt(s); err != nil {
			return err
		}
	}
	if b.cur.Term == nil {
		b.cur.Term = &Jump{Target: endBlk.Label}
	}

	if elseBlk != nil {
		b.cur = elseBlk
		for _, s := range st.Else {
			if err := b.genStmt(s); err != nil {
				return err
			}
		}
		if b.cur.Term == nil {
			b.cur.Term = &Jump{Target: endBlk.Label}
		}
	}

	b.cur = endBlk
	return nil
}

// genExpr lowers an expression and returns the operand holding its value.
// Void calls return a nil Value.
func (b *irBuilder) genExpr(e Expr) (Value, error) {
	switch ex := e.(type) {
	case *IntegerLit:
		return IntConst{Value: ex.Value}, nil
	case *FloatLit:
		return FloatConst{Value: ex.Value}, nil
	case *BoolLit:
		return BoolConst{Value: ex.Value}, nil
	case *StringLit:
		return StringConst{Value: ex.Value}, nil
	case *Identifier:
		if c, ok := LookupConstant(ex.Name); ok {
			if c.IsString {
				return StringConst{Value: c.String}, nil
			}
			return IntConst{Value: c.Integer}, nil
		}
		if reg, ok := b.symbols[ex.Name]; ok {
			return reg, nil
		}
		return nil, NewError(UndefinedVariable, "undefined variable %q", ex.Name)
	case *BinaryExpr:
		return b.genBinary(ex)
	case *IndexExpr:
		return b.genIndex(ex)
	case *CallExpr:
		return b.genCall(ex)
	case *ArrayLit:
		return nil, NewError(CodeGenerationFailed, "array literals cannot be lowered to the compiled targets yet")
	case *BlockExpr:
		return nil, NewError(CodeGenerationFailed, "block expressions are only supported as call arguments")
	}
	return nil, NewError(CompilationFailed, "unsupported expression %T", e)
}

func (b *irBuilder) genBinary(ex *BinaryExpr) (Value, error) {
	left, err := b.genExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.genExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, NewError(TypeMismatch, "void value used as an operand of %q", binaryOpSymbols[ex.Op])
	}

	switch ex.Op {
	case EQ, NEQ, LT, LTE, GT, GTE:
		dest := b.newReg("", TypeBoolean)
		b.emit(&Cmp{Op: ex.Op, Dest: dest, Left: left, Right: right})
		return dest, nil
	}

	lt, rt := typeOfValue(left), typeOfValue(right)
	result, err := promote(ex.Op, lt, rt)
	if err != nil {
		return nil, err
	}
	dest := b.newReg("", result)
	b.emit(&BinOp{Op: ex.Op, Dest: dest, Left: left, Right: right})
	return dest, nil
}

// promote applies the arithmetic typing rules: Integer op Integer stays
// Integer for + - *, any Float operand promotes the result, and division
// always yields Float.
func promote(op TokenType, lt, rt IRType) (IRType, error) {
	if !isNumeric(lt) || !isNumeric(rt) {
		return TypeVoid, NewError(TypeMismatch, "operator %q needs numeric operands, got %s and %s",
			binaryOpSymbols[op], lt, rt)
	}
	if op == SLASH {
		return TypeFloat, nil
	}
	if lt.Kind == IRInteger && rt.Kind == IRInteger {
		return TypeInteger, nil
	}
	return TypeFloat, nil
}

func isNumeric(t IRType) bool {
	switch t.Kind {
	case IRInteger, IRFloat, IRAudioSample, IRAudioFrequency, IRPercentage, IRAny:
		return true
	}
	return false
}

func (b *irBuilder) genIndex(ex *IndexExpr) (Value, error) {
	arr, err := b.genExpr(ex.Array)
	if err != nil {
		return nil, err
	}
	idx, err := b.genExpr(ex.Index)
	if err != nil {
		return nil, err
	}
	if arr == nil || idx == nil {
		return nil, NewError(TypeMismatch, "void value in index expression")
	}
	if t := typeOfValue(arr); t.Kind != IRAudioBuffer && t.Kind != IRAny {
		return nil, NewError(TypeMismatch, "cannot index into %s", t)
	}
	if t := typeOfValue(idx); t.Kind != IRInteger && t.Kind != IRAny {
		return nil, NewError(TypeMismatch, "array index must be Integer, got %s", t)
	}
	dest := b.newReg("", TypeFloat)
	b.emit(&ArrayGet{Dest: dest, Array: arr, Index: idx})
	return dest, nil
}

func (b *irBuilder) genCall(ex *CallExpr) (Value, error) {
	if ex.Module == "" {
		return nil, NewError(UnknownFunction, "unknown function %q", ex.Name).
			WithSuggestion("builtins are called through their module, e.g. Audio.%s", ex.Name)
	}
	builtin, ok := LookupBuiltin(ex.Module, ex.Name)
	if !ok {
		err := NewError(UnknownFunction, "unknown function %s.%s", ex.Module, ex.Name)
		if names := ModuleFunctions(ex.Module); len(names) > 0 {
			err = err.WithSuggestion("%s exports: %s", ex.Module, strings.Join(names, ", "))
		}
		return nil, err
	}
	min, max := builtin.Arity()
	if len(ex.Args) < min || len(ex.Args) > max {
		return nil, NewError(ArityMismatch, "%s takes %d to %d arguments, got %d",
			builtin, min, max, len(ex.Args))
	}

	switch builtin {
	case BuiltinAudioMicInput:
		dest := b.newReg("", StreamOf(IRAudioSample))
		b.emit(&StreamCreate{
			Dest:       dest,
			StreamType: StreamOf(IRAudioSample),
			BufferSize: b.opts.StreamBufferSize,
		})
		b.addStream(StreamDef{
			Name:       "microphone",
			InputType:  TypeAudioSample,
			OutputType: TypeAudioBuffer,
			BufferSize: b.opts.StreamBufferSize,
			RealTime:   b.opts.RealTimePriority,
		})
		return dest, nil

	case BuiltinAudioAnalyzeFFT:
		audio, err := b.genExpr(ex.Args[0])
		if err != nil {
			return nil, err
		}
		bands := 8
		if len(ex.Args) == 2 {
			bv, err := b.genExpr(ex.Args[1])
			if err != nil {
				return nil, err
			}
			c, ok := bv.(IntConst)
			if !ok {
				return nil, NewError(CodeGenerationFailed, "analyze_fft band count must be an integer constant")
			}
			bands = int(c.Value)
		}
		dest := b.newReg("", TypeAudioBuffer)
		b.emit(&AudioAnalyzeFFT{Dest: dest, Audio: audio, Bands: bands})
		return dest, nil

	case BuiltinAudioBeatDetect:
		audio, err := b.genExpr(ex.Args[0])
		if err != nil {
			return nil, err
		}
		dest := b.newReg("", TypeBoolean)
		b.emit(&AudioBeatDetect{Dest: dest, Audio: audio})
		return dest, nil

	case BuiltinGraphicsClear, BuiltinGraphicsPlasma, BuiltinGraphicsFlash, BuiltinGraphicsStarfield:
		params, err := b.genDrawParams(ex.Args)
		if err != nil {
			return nil, err
		}
		b.emit(&GraphicsDraw{Primitive: ex.Name, Params: params})
		return nil, nil
	}
	return nil, NewError(CompilationFailed, "unhandled builtin %s", builtin)
}

// genDrawParams flattens drawing arguments into operands. A trailing block
// argument contributes its field values in declaration order.
func (b *irBuilder) genDrawParams(args []Expr) ([]Value, error) {
	var params []Value
	for _, arg := range args {
		if block, ok := arg.(*BlockExpr); ok {
			for _, f := range block.Fields {
				v, err := b.genExpr(f.Value)
				if err != nil {
					return nil, err
				}
				if v == nil {
					return nil, NewError(TypeMismatch, "void value for drawing parameter %q", f.Name)
				}
				params = append(params, v)
			}
			continue
		}
		v, err := b.genExpr(arg)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, NewError(TypeMismatch, "void value used as a drawing parameter")
		}
		params = append(params, v)
	}
	return params, nil
}

func (b *irBuilder) addStream(def StreamDef) {
	for _, s := range b.streams {
		if s.Name == def.Name {
			return
		}
	}
	b.streams = append(b.streams, def)
}

func typeOfValue(v Value) IRType {
	switch t := v.(type) {
	case IntConst:
		return TypeInteger
	case FloatConst:
		return TypeFloat
	case BoolConst:
		return TypeBoolean
	case StringConst:
		return TypeString
	case Register:
		return t.Type
	case Global:
		return TypeAny
	}
	return TypeAny
}
