// Package template renders format strings made of literal text and ${key}
// placeholder tokens. There are no conditionals or loops: a token is replaced
// by the value its key resolves to, everything else is copied through.
package template

import (
	"strings"
	"unicode/utf8"
)

// TokenType identifies the type of token.
type TokenType int

// TokenType constants for format string tokens.
const (
	TokenText TokenType = iota // Literal text
	TokenKey                   // Placeholder key (between ${ and })
	TokenEOF                   // End of input
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "TEXT"
	case TokenKey:
		return "KEY"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Position tracks source location for error reporting.
type Position struct {
	Offset int // byte offset into the format string
	Column int // 1-based rune column
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// Lexer tokenizes a format string.
type Lexer struct {
	input   string
	pos     int // current byte position in input
	col     int // current column number (1-based)
	lastPos int // byte position at start of current token
	lastCol int // column at start of current token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		col:   1,
	}
}

// Tokenize converts the input into a slice of tokens. Adjacent literal runs
// are merged, so an unterminated "${" simply becomes part of the text.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token

	for {
		tok := l.nextToken()
		if tok.Type == TokenText && len(tokens) > 0 && tokens[len(tokens)-1].Type == TokenText {
			tokens[len(tokens)-1].Value += tok.Value
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// nextToken returns the next token from the input.
func (l *Lexer) nextToken() Token {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.position()}
	}

	if l.matchString("${") {
		if tok, ok := l.scanKey(); ok {
			return tok
		}
		// Not a well formed placeholder; emit the "$" as text and move on.
		l.markStart()
		l.advance()
		return Token{Type: TokenText, Value: "$", Pos: l.startPosition()}
	}

	return l.scanText()
}

// scanText scans literal text until the next "${" or EOF.
func (l *Lexer) scanText() Token {
	l.markStart()
	start := l.pos

	for l.pos < len(l.input) {
		if l.matchString("${") {
			break
		}
		l.advance()
	}

	return Token{
		Type:  TokenText,
		Value: l.input[start:l.pos],
		Pos:   l.startPosition(),
	}
}

// scanKey scans a ${key} token. It reports false, leaving the lexer where it
// was, when the closing brace is missing or the key is empty.
func (l *Lexer) scanKey() (Token, bool) {
	end := strings.IndexByte(l.input[l.pos+2:], '}')
	if end <= 0 {
		return Token{}, false
	}

	l.markStart()
	key := l.input[l.pos+2 : l.pos+2+end]
	for l.pos < l.lastPos+2+end+1 {
		l.advance()
	}

	return Token{
		Type:  TokenKey,
		Value: key,
		Pos:   l.startPosition(),
	}, true
}

// advance moves to the next rune, updating position tracking.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	l.col++
}

// matchString checks if the input at current position matches s.
func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.lastPos = l.pos
	l.lastCol = l.col
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Column: l.col}
}

// startPosition returns the position where the current token started.
func (l *Lexer) startPosition() Position {
	return Position{Offset: l.lastPos, Column: l.lastCol}
}
