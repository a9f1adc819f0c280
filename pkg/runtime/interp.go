package runtime

import (
	"strings"

	"gosynth/pkg/audio"
	"gosynth/pkg/compiler"
)

// Renderer receives graphics side effects. The interpreter converts and
// validates arguments before calling it, so implementations only deal in
// concrete parameter types.
type Renderer interface {
	Clear(rgb uint32)
	Plasma(speed float64, palette string)
	Flash(rgb uint32, duration float64)
	Starfield(count int, speed float64)
}

// nullRenderer discards all drawing. Headless execution uses it.
type nullRenderer struct{}

func (nullRenderer) Clear(uint32)           {}
func (nullRenderer) Plasma(float64, string) {}
func (nullRenderer) Flash(uint32, float64)  {}
func (nullRenderer) Starfield(int, float64) {}

// Interpreter walks a parsed program and evaluates it against a flat
// environment. One Execute call runs top-level statements in order and each
// loop body exactly once; hosts drive repetition by calling Execute or
// ExecuteFrame per frame.
type Interpreter struct {
	env      *Environment
	renderer Renderer
	analyzer *audio.Analyzer
	frame    int
}

func New() *Interpreter {
	return NewWithRenderer(nullRenderer{})
}

func NewWithRenderer(r Renderer) *Interpreter {
	return &Interpreter{
		env:      NewEnvironment(),
		renderer: r,
		analyzer: audio.NewAnalyzer(audio.DefaultFFTSize),
	}
}

// Env exposes the environment for inspection after execution.
func (in *Interpreter) Env() *Environment {
	return in.env
}

// Execute runs the whole program once. Bindings persist across calls.
func (in *Interpreter) Execute(prog *compiler.Program) error {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *compiler.ImportItem:
			if err := in.checkImport(it); err != nil {
				return err
			}
		case *compiler.LoopItem:
			if err := in.execBody(it.Body); err != nil {
				return err
			}
		case compiler.Stmt:
			if err := in.execStmt(it); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExecuteFrame runs the program for the next frame: the audio feed advances
// first, so analyze_fft sees fresh samples each call.
func (in *Interpreter) ExecuteFrame(prog *compiler.Program) error {
	in.frame++
	return in.Execute(prog)
}

func (in *Interpreter) checkImport(it *compiler.ImportItem) error {
	available := compiler.ModuleFunctions(it.Module)
	if len(available) == 0 {
		return compiler.NewError(compiler.UnknownFunction, "unknown module %q", it.Module).
			WithSuggestion("available modules: Audio, Graphics")
	}
	for _, name := range it.Names {
		if _, ok := compiler.LookupBuiltin(it.Module, name); !ok {
			return compiler.NewError(compiler.UnknownFunction, "module %s has no function %q", it.Module, name).
				WithSuggestion("%s exports: %s", it.Module, strings.Join(available, ", "))
		}
	}
	return nil
}

func (in *Interpreter) execBody(body []compiler.Stmt) error {
	for _, s := range body {
		if err := in.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execStmt(s compiler.Stmt) error {
	switch st := s.(type) {
	case *compiler.Assignment:
		v, err := in.evalExpr(st.Value)
		if err != nil {
			return err
		}
		if v == nil {
			return compiler.NewError(compiler.TypeMismatch,
				"cannot assign the result of a void call to %q", st.Name)
		}
		in.env.Set(st.Name, v)
		return nil

	case *compiler.IfStmt:
		cond, err := in.evalExpr(st.Cond)
		if err != nil {
			return err
		}
		b, ok := cond.(Boolean)
		if !ok {
			return compiler.NewError(compiler.TypeMismatch,
				"if condition must be Boolean, got %s", typeNameOf(cond))
		}
		if bool(b) {
			return in.execBody(st.Then)
		}
		if st.Else != nil {
			return in.execBody(st.Else)
		}
		return nil

	case *compiler.ExprStmt:
		_, err := in.evalExpr(st.Expr)
		return err
	}
	return compiler.NewError(compiler.CompilationFailed, "unsupported statement %T", s)
}

// evalExpr evaluates an expression. Void builtin calls return a nil Value.
func (in *Interpreter) evalExpr(e compiler.Expr) (Value, error) {
	switch ex := e.(type) {
	case *compiler.IntegerLit:
		return Integer(ex.Value), nil
	case *compiler.FloatLit:
		return Float(ex.Value), nil
	case *compiler.BoolLit:
		return Boolean(ex.Value), nil
	case *compiler.StringLit:
		return String(ex.Value), nil

	case *compiler.Identifier:
		if c, ok := compiler.LookupConstant(ex.Name); ok {
			if c.IsString {
				return String(c.String), nil
			}
			return Integer(c.Integer), nil
		}
		if v, ok := in.env.Get(ex.Name); ok {
			return v, nil
		}
		return nil, compiler.NewError(compiler.UndefinedVariable, "undefined variable %q", ex.Name).
			WithSuggestion("assign it first: %s = ...", ex.Name)

	case *compiler.BinaryExpr:
		return in.evalBinary(ex)

	case *compiler.IndexExpr:
		return in.evalIndex(ex)

	case *compiler.ArrayLit:
		arr := make(Array, len(ex.Elements))
		for i, el := range ex.Elements {
			v, err := in.evalExpr(el)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, compiler.NewError(compiler.TypeMismatch, "void value in array literal")
			}
			arr[i] = v
		}
		return arr, nil

	case *compiler.BlockExpr:
		block := make(Block, len(ex.Fields))
		for i, f := range ex.Fields {
			v, err := in.evalExpr(f.Value)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, compiler.NewError(compiler.TypeMismatch, "void value for field %q", f.Name)
			}
			block[i] = BlockField{Name: f.Name, Value: v}
		}
		return block, nil

	case *compiler.CallExpr:
		return in.evalCall(ex)
	}
	return nil, compiler.NewError(compiler.CompilationFailed, "unsupported expression %T", e)
}

func (in *Interpreter) evalBinary(ex *compiler.BinaryExpr) (Value, error) {
	left, err := in.evalExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, compiler.NewError(compiler.TypeMismatch, "void value used as an operand")
	}

	switch ex.Op {
	case compiler.EQ:
		return Boolean(Equal(left, right)), nil
	case compiler.NEQ:
		return Boolean(!Equal(left, right)), nil
	case compiler.LT, compiler.LTE, compiler.GT, compiler.GTE:
		return compareOrdered(ex.Op, left, right)
	}
	return arith(ex.Op, left, right)
}

func compareOrdered(op compiler.TokenType, left, right Value) (Value, error) {
	ln, lok := asNumber(left)
	rn, rok := asNumber(right)
	if !lok || !rok {
		return nil, compiler.NewError(compiler.TypeMismatch,
			"cannot compare %s and %s", typeNameOf(left), typeNameOf(right))
	}
	switch op {
	case compiler.LT:
		return Boolean(ln < rn), nil
	case compiler.LTE:
		return Boolean(ln <= rn), nil
	case compiler.GT:
		return Boolean(ln > rn), nil
	default:
		return Boolean(ln >= rn), nil
	}
}

// arith applies the promotion rules: Integer stays Integer under + - *,
// any Float operand promotes the result, and division always yields Float.
func arith(op compiler.TokenType, left, right Value) (Value, error) {
	if op == compiler.PLUS {
		if ls, ok := left.(String); ok {
			if rs, ok := right.(String); ok {
				return ls + rs, nil
			}
		}
	}

	li, lInt := left.(Integer)
	ri, rInt := right.(Integer)
	if lInt && rInt && op != compiler.SLASH {
		switch op {
		case compiler.PLUS:
			return li + ri, nil
		case compiler.MINUS:
			return li - ri, nil
		case compiler.STAR:
			return li * ri, nil
		}
	}

	ln, lok := asNumber(left)
	rn, rok := asNumber(right)
	if !lok || !rok {
		return nil, compiler.NewError(compiler.TypeMismatch,
			"operator %q needs numeric operands, got %s and %s",
			opSymbol(op), typeNameOf(left), typeNameOf(right))
	}
	switch op {
	case compiler.PLUS:
		return Float(ln + rn), nil
	case compiler.MINUS:
		return Float(ln - rn), nil
	case compiler.STAR:
		return Float(ln * rn), nil
	case compiler.SLASH:
		if rn == 0 {
			return nil, compiler.NewError(compiler.TypeMismatch, "division by zero")
		}
		return Float(ln / rn), nil
	}
	return nil, compiler.NewError(compiler.CompilationFailed, "unsupported operator %q", opSymbol(op))
}

func (in *Interpreter) evalIndex(ex *compiler.IndexExpr) (Value, error) {
	arrVal, err := in.evalExpr(ex.Array)
	if err != nil {
		return nil, err
	}
	idxVal, err := in.evalExpr(ex.Index)
	if err != nil {
		return nil, err
	}

	arr, ok := arrVal.(Array)
	if !ok {
		return nil, compiler.NewError(compiler.TypeMismatch,
			"cannot index into %s", typeNameOf(arrVal))
	}
	idx, ok := idxVal.(Integer)
	if !ok {
		return nil, compiler.NewError(compiler.TypeMismatch,
			"array index must be Integer, got %s", typeNameOf(idxVal))
	}
	if idx < 0 || int(idx) >= len(arr) {
		return nil, compiler.NewError(compiler.IndexOutOfBounds,
			"index %d out of bounds for array of length %d", int64(idx), len(arr))
	}
	return arr[idx], nil
}

func typeNameOf(v Value) string {
	if v == nil {
		return "Void"
	}
	return v.TypeName()
}

var opSymbols = map[compiler.TokenType]string{
	compiler.PLUS:  "+",
	compiler.MINUS: "-",
	compiler.STAR:  "*",
	compiler.SLASH: "/",
	compiler.EQ:    "==",
	compiler.NEQ:   "!=",
	compiler.LT:    "<",
	compiler.LTE:   "<=",
	compiler.GT:    ">",
	compiler.GTE:   ">=",
}

func opSymbol(op compiler.TokenType) string {
	if s, ok := opSymbols[op]; ok {
		return s
	}
	return op.String()
}
