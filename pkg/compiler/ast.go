package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is the root of a parsed Synthesis source file.
type Program struct {
	Items []Item
}

func (p *Program) String() string {
	var b strings.Builder
	for _, it := range p.Items {
		b.WriteString(it.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Item is a top-level program element: an import, a statement, or a loop.
type Item interface {
	itemNode()
	String() string
}

// Stmt is a statement inside a loop or branch body. Every Stmt is also a
// valid top-level Item.
type Stmt interface {
	Item
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	exprNode()
	String() string
}

// ImportItem brings a module's builtins into scope, e.g.
// `import Audio.{mic_input, analyze_fft}`. Names may be empty for a bare
// `import Audio`.
type ImportItem struct {
	Module string
	Names  []string
}

func (i *ImportItem) itemNode() {}
func (i *ImportItem) String() string {
	if len(i.Names) == 0 {
		return "import " + i.Module
	}
	return "import " + i.Module + ".{" + strings.Join(i.Names, ", ") + "}"
}

// LoopItem is the `loop { ... }` frame block.
type LoopItem struct {
	Body []Stmt
}

func (l *LoopItem) itemNode() {}
func (l *LoopItem) String() string {
	var b strings.Builder
	b.WriteString("loop {\n")
	for _, s := range l.Body {
		b.WriteString("  " + s.String() + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// Assignment binds the value of an expression to a name.
type Assignment struct {
	Name  string
	Value Expr
}

func (a *Assignment) itemNode() {}
func (a *Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return a.Name + " = " + a.Value.String()
}

// IfStmt branches on a Boolean condition. Else may be nil.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (i *IfStmt) itemNode() {}
func (i *IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	var b strings.Builder
	b.WriteString("if " + i.Cond.String() + " {\n")
	for _, s := range i.Then {
		b.WriteString("  " + s.String() + "\n")
	}
	b.WriteString("}")
	if i.Else != nil {
		b.WriteString(" else {\n")
		for _, s := range i.Else {
			b.WriteString("  " + s.String() + "\n")
		}
		b.WriteString("}")
	}
	return b.String()
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	Expr Expr
}

func (e *ExprStmt) itemNode() {}
func (e *ExprStmt) stmtNode() {}
func (e *ExprStmt) String() string {
	return e.Expr.String()
}

// IntegerLit is a decimal integer literal.
type IntegerLit struct {
	Value int64
}

func (n *IntegerLit) exprNode() {}
func (n *IntegerLit) String() string {
	return strconv.FormatInt(n.Value, 10)
}

// FloatLit is a decimal floating-point literal.
type FloatLit struct {
	Value float64
}

func (n *FloatLit) exprNode() {}
func (n *FloatLit) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
}

func (n *StringLit) exprNode() {}
func (n *StringLit) String() string {
	return strconv.Quote(n.Value)
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

func (n *BoolLit) exprNode() {}
func (n *BoolLit) String() string {
	return strconv.FormatBool(n.Value)
}

// Identifier is a variable reference. Qualified module constants keep the
// dotted form in Name ("Graphics.black").
type Identifier struct {
	Name string
}

func (n *Identifier) exprNode() {}
func (n *Identifier) String() string {
	return n.Name
}

// BinaryExpr is a binary arithmetic or comparison expression. Op is one of
// PLUS MINUS STAR SLASH EQ NEQ LT LTE GT GTE.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

var binaryOpSymbols = map[TokenType]string{
	PLUS:  "+",
	MINUS: "-",
	STAR:  "*",
	SLASH: "/",
	EQ:    "==",
	NEQ:   "!=",
	LT:    "<",
	LTE:   "<=",
	GT:    ">",
	GTE:   ">=",
}

func (n *BinaryExpr) exprNode() {}
func (n *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), binaryOpSymbols[n.Op], n.Right.String())
}

// CallExpr invokes a builtin. Module is empty for unqualified calls. Named
// arguments at the call site are folded by the parser into one trailing
// BlockExpr argument, so Args is purely positional.
type CallExpr struct {
	Module string
	Name   string
	Args   []Expr
}

func (n *CallExpr) exprNode() {}
func (n *CallExpr) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	name := n.Name
	if n.Module != "" {
		name = n.Module + "." + n.Name
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// IndexExpr is array subscripting, `fft[0]`.
type IndexExpr struct {
	Array Expr
	Index Expr
}

func (n *IndexExpr) exprNode() {}
func (n *IndexExpr) String() string {
	return n.Array.String() + "[" + n.Index.String() + "]"
}

// ArrayLit is `[a, b, c]`.
type ArrayLit struct {
	Elements []Expr
}

func (n *ArrayLit) exprNode() {}
func (n *ArrayLit) String() string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// BlockField is one named field of a BlockExpr, in source order.
type BlockField struct {
	Name  string
	Value Expr
}

// BlockExpr is an ordered set of named fields, `{speed: 2.0, palette: "neon"}`.
// The parser also produces one to carry a call site's named arguments.
type BlockExpr struct {
	Fields []BlockField
}

func (n *BlockExpr) exprNode() {}
func (n *BlockExpr) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
