package compiler

import (
	"unicode"
)

// Lexer scans Synthesis source text into a flat token stream.
type Lexer struct {
	src  []rune
	pos  int
	line int
}

// Lex tokenizes src, appending a final EOF token. The only error it can
// return is a SyntaxError (unexpected character, unterminated string).
func Lex(src string) ([]Token, error) {
	l := &Lexer{src: []rune(src), line: 1}
	return l.run()
}

func (l *Lexer) run() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			break
		}

		ch := l.peek()
		switch {
		case ch == '/' && l.peek2() == '/':
			l.skipLineComment()
		case unicode.IsLetter(ch) || ch == '_':
			tokens = append(tokens, l.scanIdent())
		case unicode.IsDigit(ch):
			tokens = append(tokens, l.scanNumber())
		case ch == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			tok, err := l.scanOperator()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	tokens = append(tokens, Token{Type: EOF, Lexeme: "", Line: l.line})
	return tokens, nil
}

func (l *Lexer) peek() rune {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

func (l *Lexer) peek2() rune {
	if l.pos+1 < len(l.src) {
		return l.src[l.pos+1]
	}
	return 0
}

func (l *Lexer) advance() rune {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
	}
	return ch
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	line := l.line
	for l.pos < len(l.src) && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	if kw, ok := keywords[lexeme]; ok {
		return Token{Type: kw, Lexeme: lexeme, Line: line}
	}
	return Token{Type: IDENTIFIER, Lexeme: lexeme, Line: line}
}

// scanNumber reads an integer or float literal. A '.' only continues the
// number when a digit follows, so "fft[0].length" style access still lexes
// as INTEGER DOT IDENTIFIER.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	line := l.line
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	typ := INTEGER
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		typ = FLOAT
		l.advance()
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: typ, Lexeme: string(l.src[start:l.pos]), Line: line}
}

func (l *Lexer) scanString() (Token, error) {
	line := l.line
	l.advance() // opening quote
	start := l.pos
	for l.pos < len(l.src) && l.peek() != '"' {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return Token{}, &Error{Kind: SyntaxError, Line: line, Message: "unterminated string literal"}
	}
	lexeme := string(l.src[start:l.pos])
	l.advance() // closing quote
	return Token{Type: STRING, Lexeme: lexeme, Line: line}, nil
}

func (l *Lexer) scanOperator() (Token, error) {
	line := l.line
	ch := l.advance()
	switch ch {
	case '+':
		return Token{Type: PLUS, Lexeme: "+", Line: line}, nil
	case '-':
		return Token{Type: MINUS, Lexeme: "-", Line: line}, nil
	case '*':
		return Token{Type: STAR, Lexeme: "*", Line: line}, nil
	case '/':
		return Token{Type: SLASH, Lexeme: "/", Line: line}, nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: EQ, Lexeme: "==", Line: line}, nil
		}
		return Token{Type: ASSIGN, Lexeme: "=", Line: line}, nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: NEQ, Lexeme: "!=", Line: line}, nil
		}
		return Token{}, &Error{Kind: SyntaxError, Line: line, Message: "unexpected character '!'"}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: LTE, Lexeme: "<=", Line: line}, nil
		}
		return Token{Type: LT, Lexeme: "<", Line: line}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: GTE, Lexeme: ">=", Line: line}, nil
		}
		return Token{Type: GT, Lexeme: ">", Line: line}, nil
	case '(':
		return Token{Type: LPAREN, Lexeme: "(", Line: line}, nil
	case ')':
		return Token{Type: RPAREN, Lexeme: ")", Line: line}, nil
	case '{':
		return Token{Type: LBRACE, Lexeme: "{", Line: line}, nil
	case '}':
		return Token{Type: RBRACE, Lexeme: "}", Line: line}, nil
	case '[':
		return Token{Type: LBRACKET, Lexeme: "[", Line: line}, nil
	case ']':
		return Token{Type: RBRACKET, Lexeme: "]", Line: line}, nil
	case ',':
		return Token{Type: COMMA, Lexeme: ",", Line: line}, nil
	case ':':
		return Token{Type: COLON, Lexeme: ":", Line: line}, nil
	case '.':
		return Token{Type: DOT, Lexeme: ".", Line: line}, nil
	}
	return Token{}, &Error{Kind: SyntaxError, Line: line, Message: "unexpected character '" + string(ch) + "'"}
}
