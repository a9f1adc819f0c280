package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// IRTypeKind enumerates the primitive IR types.
type IRTypeKind int

const (
	IRVoid IRTypeKind = iota
	IRInteger
	IRFloat
	IRBoolean
	IRString
	IRAudioSample
	IRAudioBuffer
	IRAudioFrequency
	IRPercentage
	IRStream
	IRAny
)

var irTypeKindNames = [...]string{
	IRVoid:           "Void",
	IRInteger:        "Integer",
	IRFloat:          "Float",
	IRBoolean:        "Boolean",
	IRString:         "String",
	IRAudioSample:    "AudioSample",
	IRAudioBuffer:    "AudioBuffer",
	IRAudioFrequency: "AudioFrequency",
	IRPercentage:     "Percentage",
	IRStream:         "Stream",
	IRAny:            "Any",
}

func (k IRTypeKind) String() string {
	if int(k) < len(irTypeKindNames) {
		return irTypeKindNames[k]
	}
	return fmt.Sprintf("IRTypeKind(%d)", int(k))
}

// IRType is a value type in the IR. Elem carries the element kind for Stream
// types and is IRVoid otherwise, so IRType values compare with ==.
type IRType struct {
	Kind IRTypeKind
	Elem IRTypeKind
}

var (
	TypeVoid        = IRType{Kind: IRVoid}
	TypeInteger     = IRType{Kind: IRInteger}
	TypeFloat       = IRType{Kind: IRFloat}
	TypeBoolean     = IRType{Kind: IRBoolean}
	TypeString      = IRType{Kind: IRString}
	TypeAudioSample = IRType{Kind: IRAudioSample}
	TypeAudioBuffer = IRType{Kind: IRAudioBuffer}
	TypeAny         = IRType{Kind: IRAny}
)

// StreamOf builds a stream type over an element kind.
func StreamOf(elem IRTypeKind) IRType {
	return IRType{Kind: IRStream, Elem: elem}
}

func (t IRType) String() string {
	if t.Kind == IRStream {
		return "Stream(" + t.Elem.String() + ")"
	}
	return t.Kind.String()
}

// Value is an instruction operand: a constant, a register, or a global.
type Value interface {
	valueNode()
	String() string
}

// IntConst is an Integer constant operand.
type IntConst struct {
	Value int64
}

func (c IntConst) valueNode() {}
func (c IntConst) String() string {
	return strconv.FormatInt(c.Value, 10)
}

// FloatConst is a Float constant operand.
type FloatConst struct {
	Value float64
}

func (c FloatConst) valueNode() {}
func (c FloatConst) String() string {
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}

// BoolConst is a Boolean constant operand.
type BoolConst struct {
	Value bool
}

func (c BoolConst) valueNode() {}
func (c BoolConst) String() string {
	return strconv.FormatBool(c.Value)
}

// StringConst is a String constant operand.
type StringConst struct {
	Value string
}

func (c StringConst) valueNode() {}
func (c StringConst) String() string {
	return strconv.Quote(c.Value)
}

// Register is a typed virtual register, unique per function.
type Register struct {
	ID   int
	Name string
	Type IRType
}

func (r Register) valueNode() {}
func (r Register) String() string {
	return fmt.Sprintf("%%%d:%s", r.ID, r.Type)
}

// Global names a module-level binding resolved by the host at load time.
type Global struct {
	Name string
}

func (g Global) valueNode() {}
func (g Global) String() string {
	return "@" + g.Name
}

// Instruction is one non-terminator operation inside a basic block.
type Instruction interface {
	instrNode()
	String() string
}

// Load copies a value into a register. Assignments lower to this.
type Load struct {
	Dest Register
	Src  Value
}

func (i *Load) instrNode() {}
func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s", i.Dest, i.Src)
}

// BinOp is an arithmetic operation. Op is PLUS, MINUS, STAR or SLASH; the
// destination register type already reflects the promotion rules.
type BinOp struct {
	Op    TokenType
	Dest  Register
	Left  Value
	Right Value
}

func (i *BinOp) instrNode() {}
func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dest, binaryOpSymbols[i.Op], i.Left, i.Right)
}

// Cmp is a comparison yielding a Boolean register. Op is EQ, NEQ, LT, LTE,
// GT or GTE.
type Cmp struct {
	Op    TokenType
	Dest  Register
	Left  Value
	Right Value
}

func (i *Cmp) instrNode() {}
func (i *Cmp) String() string {
	return fmt.Sprintf("%s = cmp %s %s, %s", i.Dest, binaryOpSymbols[i.Op], i.Left, i.Right)
}

// StreamCreate allocates a host stream handle.
type StreamCreate struct {
	Dest       Register
	StreamType IRType
	BufferSize int
}

func (i *StreamCreate) instrNode() {}
func (i *StreamCreate) String() string {
	return fmt.Sprintf("%s = stream.create %s, buffer=%d", i.Dest, i.StreamType, i.BufferSize)
}

// AudioAnalyzeFFT runs spectral analysis over an audio source, producing an
// AudioBuffer of Bands magnitudes.
type AudioAnalyzeFFT struct {
	Dest  Register
	Audio Value
	Bands int
}

func (i *AudioAnalyzeFFT) instrNode() {}
func (i *AudioAnalyzeFFT) String() string {
	return fmt.Sprintf("%s = audio.fft %s, bands=%d", i.Dest, i.Audio, i.Bands)
}

// AudioBeatDetect asks the host for a beat flag on an audio source.
type AudioBeatDetect struct {
	Dest  Register
	Audio Value
}

func (i *AudioBeatDetect) instrNode() {}
func (i *AudioBeatDetect) String() string {
	return fmt.Sprintf("%s = audio.beat %s", i.Dest, i.Audio)
}

// ArrayGet reads one element of an AudioBuffer.
type ArrayGet struct {
	Dest  Register
	Array Value
	Index Value
}

func (i *ArrayGet) instrNode() {}
func (i *ArrayGet) String() string {
	return fmt.Sprintf("%s = index %s[%s]", i.Dest, i.Array, i.Index)
}

// GraphicsDraw invokes a drawing primitive for its effect. Primitive is the
// builtin's short name ("clear", "plasma", ...).
type GraphicsDraw struct {
	Primitive string
	Params    []Value
}

func (i *GraphicsDraw) instrNode() {}
func (i *GraphicsDraw) String() string {
	parts := make([]string, len(i.Params))
	for n, p := range i.Params {
		parts[n] = p.String()
	}
	return "graphics." + i.Primitive + " " + strings.Join(parts, ", ")
}

// Terminator ends a basic block. Every block has exactly one.
type Terminator interface {
	termNode()
	String() string
}

// Return leaves the function. Value is nil for void returns.
type Return struct {
	Value Value
}

func (t *Return) termNode() {}
func (t *Return) String() string {
	if t.Value == nil {
		return "return"
	}
	return "return " + t.Value.String()
}

// Jump transfers control to another block unconditionally.
type Jump struct {
	Target string
}

func (t *Jump) termNode() {}
func (t *Jump) String() string {
	return "jump " + t.Target
}

// Branch transfers control on a Boolean condition.
type Branch struct {
	Cond  Value
	True  string
	False string
}

func (t *Branch) termNode() {}
func (t *Branch) String() string {
	return fmt.Sprintf("branch %s, %s, %s", t.Cond, t.True, t.False)
}

// StreamLoop marks a block whose body the host re-enters once per frame. It
// is the compiled form of the language's `loop` construct.
type StreamLoop struct{}

func (t *StreamLoop) termNode() {}
func (t *StreamLoop) String() string {
	return "stream.loop"
}

// BasicBlock is a labeled straight-line instruction run ending in one
// terminator.
type BasicBlock struct {
	Label  string
	Instrs []Instruction
	Term   Terminator
}

func (b *BasicBlock) String() string {
	var sb strings.Builder
	sb.WriteString(b.Label + ":\n")
	for _, in := range b.Instrs {
		sb.WriteString("  " + in.String() + "\n")
	}
	if b.Term != nil {
		sb.WriteString("  " + b.Term.String() + "\n")
	}
	return sb.String()
}

// Param is a typed function parameter.
type Param struct {
	Name string
	Type IRType
}

// IRFunction holds a function's blocks. Registers are numbered uniquely
// within one function only.
type IRFunction struct {
	Name              string
	Params            []Param
	ReturnType        IRType
	Blocks            []*BasicBlock
	IsStreamProcessor bool
}

func (f *IRFunction) String() string {
	var sb strings.Builder
	sb.WriteString("func " + f.Name + " -> " + f.ReturnType.String() + "\n")
	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}
	return sb.String()
}

// StreamDef describes one host-visible stream endpoint of the program.
type StreamDef struct {
	Name       string
	InputType  IRType
	OutputType IRType
	BufferSize int
	RealTime   bool
}

// IRModule groups the functions lowered from one source unit.
type IRModule struct {
	Name      string
	Functions []*IRFunction
}

// IR is the full lowered program handed to a backend.
type IR struct {
	Modules       []*IRModule
	EntryPoint    string
	GlobalStreams []StreamDef
}

func (ir *IR) String() string {
	var sb strings.Builder
	for _, m := range ir.Modules {
		sb.WriteString("module " + m.Name + "\n")
		for _, f := range m.Functions {
			sb.WriteString(f.String())
		}
	}
	return sb.String()
}

// EntryFunction finds the function named by EntryPoint, or nil.
func (ir *IR) EntryFunction() *IRFunction {
	for _, m := range ir.Modules {
		for _, f := range m.Functions {
			if f.Name == ir.EntryPoint {
				return f
			}
		}
	}
	return nil
}
