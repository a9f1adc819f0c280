package compiler

// TokenType identifies the kind of a lexed token.
type TokenType int

const (
	// Literals and identifiers
	IDENTIFIER TokenType = iota
	INTEGER              // 42
	FLOAT                // 0.5
	STRING               // "neon"

	// Keywords
	IMPORT
	LOOP
	IF
	ELSE
	TRUE
	FALSE

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	ASSIGN   // =
	EQ       // ==
	NEQ      // !=
	LT       // <
	LTE      // <=
	GT       // >
	GTE      // >=

	// Punctuation
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	COLON    // :
	DOT      // .

	EOF
)

var tokenNames = [...]string{
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	FLOAT:      "FLOAT",
	STRING:     "STRING",
	IMPORT:     "IMPORT",
	LOOP:       "LOOP",
	IF:         "IF",
	ELSE:       "ELSE",
	TRUE:       "TRUE",
	FALSE:      "FALSE",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	ASSIGN:     "ASSIGN",
	EQ:         "EQ",
	NEQ:        "NEQ",
	LT:         "LT",
	LTE:        "LTE",
	GT:         "GT",
	GTE:        "GTE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	COMMA:      "COMMA",
	COLON:      "COLON",
	DOT:        "DOT",
	EOF:        "EOF",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"import": IMPORT,
	"loop":   LOOP,
	"if":     IF,
	"else":   ELSE,
	"true":   TRUE,
	"false":  FALSE,
}

// Token is a single lexed token. Lexeme holds the raw source text; for STRING
// tokens the surrounding quotes are stripped.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return t.Type.String() + "(" + t.Lexeme + ")"
}
