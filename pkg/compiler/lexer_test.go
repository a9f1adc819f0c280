package compiler

import (
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:  "Empty",
			input: "",
			expected: []Token{
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Basic Tokens",
			input: "+ - * / = == != < <= > >= ( ) { } [ ] , : .",
			expected: []Token{
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: MINUS, Lexeme: "-", Line: 1},
				{Type: STAR, Lexeme: "*", Line: 1},
				{Type: SLASH, Lexeme: "/", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: EQ, Lexeme: "==", Line: 1},
				{Type: NEQ, Lexeme: "!=", Line: 1},
				{Type: LT, Lexeme: "<", Line: 1},
				{Type: LTE, Lexeme: "<=", Line: 1},
				{Type: GT, Lexeme: ">", Line: 1},
				{Type: GTE, Lexeme: ">=", Line: 1},
				{Type: LPAREN, Lexeme: "(", Line: 1},
				{Type: RPAREN, Lexeme: ")", Line: 1},
				{Type: LBRACE, Lexeme: "{", Line: 1},
				{Type: RBRACE, Lexeme: "}", Line: 1},
				{Type: LBRACKET, Lexeme: "[", Line: 1},
				{Type: RBRACKET, Lexeme: "]", Line: 1},
				{Type: COMMA, Lexeme: ",", Line: 1},
				{Type: COLON, Lexeme: ":", Line: 1},
				{Type: DOT, Lexeme: ".", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Keywords and Identifiers",
			input: "import loop if else true false audio _fft bands8",
			expected: []Token{
				{Type: IMPORT, Lexeme: "import", Line: 1},
				{Type: LOOP, Lexeme: "loop", Line: 1},
				{Type: IF, Lexeme: "if", Line: 1},
				{Type: ELSE, Lexeme: "else", Line: 1},
				{Type: TRUE, Lexeme: "true", Line: 1},
				{Type: FALSE, Lexeme: "false", Line: 1},
				{Type: IDENTIFIER, Lexeme: "audio", Line: 1},
				{Type: IDENTIFIER, Lexeme: "_fft", Line: 1},
				{Type: IDENTIFIER, Lexeme: "bands8", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Numbers",
			input: "123 0 2.5 0.001",
			expected: []Token{
				{Type: INTEGER, Lexeme: "123", Line: 1},
				{Type: INTEGER, Lexeme: "0", Line: 1},
				{Type: FLOAT, Lexeme: "2.5", Line: 1},
				{Type: FLOAT, Lexeme: "0.001", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Dot After Integer Is Not A Float",
			input: "fft[0].length",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "fft", Line: 1},
				{Type: LBRACKET, Lexeme: "[", Line: 1},
				{Type: INTEGER, Lexeme: "0", Line: 1},
				{Type: RBRACKET, Lexeme: "]", Line: 1},
				{Type: DOT, Lexeme: ".", Line: 1},
				{Type: IDENTIFIER, Lexeme: "length", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Strings",
			input: `palette = "neon"`,
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "palette", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: STRING, Lexeme: "neon", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Comments and Lines",
			input: "x = 1 // trailing comment\n// whole line\ny = 2",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "x", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: INTEGER, Lexeme: "1", Line: 1},
				{Type: IDENTIFIER, Lexeme: "y", Line: 3},
				{Type: ASSIGN, Lexeme: "=", Line: 3},
				{Type: INTEGER, Lexeme: "2", Line: 3},
				{Type: EOF, Lexeme: "", Line: 3},
			},
		},
		{
			name:  "Qualified Call",
			input: "Audio.mic_input()",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "Audio", Line: 1},
				{Type: DOT, Lexeme: ".", Line: 1},
				{Type: IDENTIFIER, Lexeme: "mic_input", Line: 1},
				{Type: LPAREN, Lexeme: "(", Line: 1},
				{Type: RPAREN, Lexeme: ")", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:    "Unterminated String",
			input:   `s = "oops`,
			wantErr: true,
		},
		{
			name:    "Unexpected Character",
			input:   "x = 1 @ 2",
			wantErr: true,
		},
		{
			name:    "Bang Without Equals",
			input:   "x = !true",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Lex(%q) expected error, got %v", tt.input, tokens)
				}
				if kind, ok := KindOf(err); !ok || kind != SyntaxError {
					t.Fatalf("Lex(%q) error kind = %v, want SyntaxError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lex(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(tokens, tt.expected) {
				t.Errorf("Lex(%q)\n got: %v\nwant: %v", tt.input, tokens, tt.expected)
			}
		})
	}
}
