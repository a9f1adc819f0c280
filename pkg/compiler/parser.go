package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = item* EOF
//	item       = import | loop | statement
//	import     = "import" IDENTIFIER ("." "{" IDENTIFIER ("," IDENTIFIER)* "}")?
//	loop       = "loop" "{" statement* "}"
//	statement  = assignment | if | exprStmt
//	assignment = IDENTIFIER "=" expression
//	if         = "if" expression "{" statement* "}" ("else" "{" statement* "}")?
//	expression = equality
//	equality   = comparison (("=="|"!=") comparison)*
//	comparison = additive (("<"|"<="|">"|">=") additive)*
//	additive   = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = postfix (("*"|"/") postfix)*
//	postfix    = primary ("[" expression "]")*
//	primary    = literal | array | block | call | qualified | IDENTIFIER | "(" expression ")"
//	call       = IDENTIFIER ("." IDENTIFIER)? "(" args ")"
///	args       = (expression | IDENTIFIER ":" expression) ("," ...)*
//
// Named arguments are folded into a single trailing BlockExpr argument in
// source order.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// Parse is the convenience entry point: lexes and parses src in one call.
func Parse(src string) (*Program, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, src).ParseProgram()
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return &Error{
		Kind:    SyntaxError,
		Line:    tok.Line,
		Message: fmt.Sprintf("%s\n  |> %s", msg, snippet),
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// ParseProgram parses the whole token stream into a Program.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	for p.peek().Type != EOF {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
	return prog, nil
}

func (p *Parser) parseItem() (Item, error) {
	switch p.peek().Type {
	case IMPORT:
		return p.parseImport()
	case LOOP:
		return p.parseLoop()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseImport() (Item, error) {
	p.advance() // import
	mod, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	item := &ImportItem{Module: mod.Lexeme}
	if p.peek().Type != DOT {
		return item, nil
	}
	p.advance() // .
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	for p.peek().Type != RBRACE {
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		item.Names = append(item.Names, name.Lexeme)
		if p.peek().Type == COMMA {
			p.advance()
		} else if p.peek().Type != RBRACE {
			return nil, p.fmtError(p.peek(), "expected ',' or '}' in import list")
		}
	}
	p.advance() // }
	return item, nil
}

func (p *Parser) parseLoop() (Item, error) {
	p.advance() // loop
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &LoopItem{Body: body}, nil
}

// parseBody parses a braced statement list.
func (p *Parser) parseBody() ([]Stmt, error) {
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	var body []Stmt
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch {
	case p.peek().Type == IF:
		return p.parseIf()
	case p.peek().Type == IDENTIFIER && p.peekNext().Type == ASSIGN:
		name := p.advance()
		p.advance() // =
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &Assignment{Name: name.Lexeme, Value: value}, nil
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr}, nil
	}
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // if
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then}
	if p.peek().Type == ELSE {
		p.advance()
		els, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseEquality()
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == EQ || p.peek().Type == NEQ {
		op := p.advance().Type
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseComparison handles < <= > >=
func (p *Parser) parseComparison() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek().Type
		if t != LT && t != LTE && t != GT && t != GTE {
			return expr, nil
		}
		op := p.advance().Type
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.advance().Type
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseMultiplicative handles * and /
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op := p.advance().Type
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parsePostfix handles array indexing.
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == LBRACKET {
		p.advance()
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		expr = &IndexExpr{Array: expr, Index: index}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.fmtError(tok, "malformed integer literal %q", tok.Lexeme)
		}
		return &IntegerLit{Value: v}, nil
	case FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "malformed float literal %q", tok.Lexeme)
		}
		return &FloatLit{Value: v}, nil
	case STRING:
		p.advance()
		return &StringLit{Value: tok.Lexeme}, nil
	case TRUE:
		p.advance()
		return &BoolLit{Value: true}, nil
	case FALSE:
		p.advance()
		return &BoolLit{Value: false}, nil
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case LBRACKET:
		return p.parseArrayLit()
	case LBRACE:
		return p.parseBlockExpr()
	case IDENTIFIER:
		return p.parseIdentOrCall()
	}
	return nil, p.fmtError(tok, "unexpected token %s (%q) in expression", tok.Type, tok.Lexeme)
}

func (p *Parser) parseArrayLit() (Expr, error) {
	p.advance() // [
	lit := &ArrayLit{}
	for p.peek().Type != RBRACKET {
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, elem)
		if p.peek().Type == COMMA {
			p.advance()
		} else if p.peek().Type != RBRACKET {
			return nil, p.fmtError(p.peek(), "expected ',' or ']' in array literal")
		}
	}
	p.advance() // ]
	return lit, nil
}

func (p *Parser) parseBlockExpr() (Expr, error) {
	p.advance() // {
	block := &BlockExpr{}
	for p.peek().Type != RBRACE {
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		block.Fields = append(block.Fields, BlockField{Name: name.Lexeme, Value: value})
		if p.peek().Type == COMMA {
			p.advance()
		} else if p.peek().Type != RBRACE {
			return nil, p.fmtError(p.peek(), "expected ',' or '}' in block expression")
		}
	}
	p.advance() // }
	return block, nil
}

// parseIdentOrCall parses an identifier, a qualified constant reference, or
// a call. Qualification is one level deep: Module.name.
func (p *Parser) parseIdentOrCall() (Expr, error) {
	first := p.advance()
	module := ""
	name := first.Lexeme
	if p.peek().Type == DOT && p.peekNext().Type == IDENTIFIER {
		p.advance() // .
		second := p.advance()
		module = first.Lexeme
		name = second.Lexeme
	}

	if p.peek().Type != LPAREN {
		if module != "" {
			return &Identifier{Name: module + "." + name}, nil
		}
		return &Identifier{Name: name}, nil
	}

	p.advance() // (
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	return &CallExpr{Module: module, Name: name, Args: args}, nil
}

// parseArguments reads a call's argument list up to the closing paren.
// Positional arguments keep their order; named arguments are collected into
// one BlockExpr appended after the positionals.
func (p *Parser) parseArguments() ([]Expr, error) {
	var args []Expr
	var named []BlockField
	for p.peek().Type != RPAREN {
		if p.peek().Type == IDENTIFIER && p.peekNext().Type == COLON {
			name := p.advance()
			p.advance() // :
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			named = append(named, BlockField{Name: name.Lexeme, Value: value})
		} else {
			if len(named) > 0 {
				return nil, p.fmtError(p.peek(), "positional argument after named argument")
			}
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if p.peek().Type == COMMA {
			p.advance()
		} else if p.peek().Type != RPAREN {
			return nil, p.fmtError(p.peek(), "expected ',' or ')' in argument list")
		}
	}
	p.advance() // )
	if len(named) > 0 {
		args = append(args, &BlockExpr{Fields: named})
	}
	return args, nil
}
