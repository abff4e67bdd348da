package assembler

import (
	"unicode"
)

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNewline
	TokenIdent     // Mnemonics
	TokenDirective // .rept, .endr
	TokenInt       // Decimal or 0x hex literals
	TokenChar      // 'c' literals, Value holds the decoded character
	TokenComma     // ,
	TokenRegister  // r0-r7
	TokenIllegal   // Anything the lexer does not understand
)

// String returns the string representation of a token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	case TokenIdent:
		return "IDENT"
	case TokenDirective:
		return "DIRECTIVE"
	case TokenInt:
		return "INT"
	case TokenChar:
		return "CHAR"
	case TokenComma:
		return "COMMA"
	case TokenRegister:
		return "REGISTER"
	case TokenIllegal:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer tokenizes UM assembly source code.
type Lexer struct {
	input  string
	pos    int
	line   int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		pos:    0,
		line:   1,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input and returns the tokens.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == '\n':
			l.emit(TokenNewline, "\n")
			l.line++
			l.pos++

		case ch == ';' || ch == '#':
			// Comment runs to end of line
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}

		case ch == ',':
			l.emit(TokenComma, ",")
			l.pos++

		case ch == '\'':
			l.scanChar()

		case ch == '.':
			l.pos++
			l.emit(TokenDirective, "."+l.scanWord())

		case unicode.IsDigit(rune(ch)):
			l.scanNumber()

		case unicode.IsLetter(rune(ch)) || ch == '_':
			word := l.scanWord()
			l.emit(l.classifyIdentOrRegister(word), word)

		default:
			l.emit(TokenIllegal, string(ch))
			l.pos++
		}
	}

	l.emit(TokenEOF, "")
	return l.tokens
}

func (l *Lexer) emit(t TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Line: l.line})
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
		} else {
			break
		}
	}
}

func (l *Lexer) scanWord() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' {
			l.pos++
		} else {
			break
		}
	}
	return l.input[start:l.pos]
}

func (l *Lexer) scanNumber() {
	start := l.pos
	if l.input[l.pos] == '0' && l.pos+1 < len(l.input) && (l.input[l.pos+1] == 'x' || l.input[l.pos+1] == 'X') {
		l.pos += 2
	}
	// Letters are swallowed too so that "12ab" fails as one bad literal.
	l.scanWord()
	l.emit(TokenInt, l.input[start:l.pos])
}

var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'\'': '\'',
}

func (l *Lexer) scanChar() {
	start := l.pos
	l.pos++ // Skip opening quote

	if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
		l.emit(TokenIllegal, l.input[start:l.pos])
		return
	}

	ch := l.input[l.pos]
	if ch == '\\' {
		l.pos++
		if l.pos >= len(l.input) {
			l.emit(TokenIllegal, l.input[start:l.pos])
			return
		}
		esc, ok := escapes[l.input[l.pos]]
		if !ok {
			l.pos++
			l.emit(TokenIllegal, l.input[start:l.pos])
			return
		}
		ch = esc
	}
	l.pos++

	if l.pos >= len(l.input) || l.input[l.pos] != '\'' {
		l.emit(TokenIllegal, l.input[start:l.pos])
		return
	}
	l.pos++ // Skip closing quote

	l.emit(TokenChar, string([]byte{ch}))
}

func (l *Lexer) classifyIdentOrRegister(value string) TokenType {
	if len(value) >= 2 && (value[0] == 'r' || value[0] == 'R') {
		for i := 1; i < len(value); i++ {
			if !unicode.IsDigit(rune(value[i])) {
				return TokenIdent
			}
		}
		return TokenRegister
	}
	return TokenIdent
}
