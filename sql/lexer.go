package sql

import "strings"

type Token struct {
	Type  TokenType
	Value string
}

type TokenType int

const (
	EOF TokenType = iota
	Word
	String
	Comma
	ParenOpen
	ParenClose
	Equals
	Unknown
)

func (token Token) String() string {
	switch token.Type {
	case EOF:
		return "EOF"
	case Word:
		return "Word(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Comma:
		return "Comma"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case Equals:
		return "Equals"
	default:
		return "Unknown(" + token.Value + ")"
	}
}

// Lexer splits statement fragments into words, quoted strings and
// punctuation. It does not know SQL keywords; callers compare words
// case-insensitively.
type Lexer struct {
	input string
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Rest returns the unread input.
func (lexer *Lexer) Rest() string {
	return lexer.input[lexer.pos:]
}

func (lexer *Lexer) NextToken() Token {
	lexer.skipWhitespace()
	if lexer.pos >= len(lexer.input) {
		return Token{Type: EOF}
	}

	switch c := lexer.input[lexer.pos]; c {
	case ',':
		lexer.pos++
		return Token{Type: Comma, Value: ","}
	case '(':
		lexer.pos++
		return Token{Type: ParenOpen, Value: "("}
	case ')':
		lexer.pos++
		return Token{Type: ParenClose, Value: ")"}
	case '=':
		lexer.pos++
		return Token{Type: Equals, Value: "="}
	case '\'', '"':
		return lexer.readString(c)
	case '`':
		return lexer.readQuotedIdentifier()
	default:
		return lexer.readWord()
	}
}

// Peek returns the next token without consuming it.
func (lexer *Lexer) Peek() Token {
	pos := lexer.pos
	token := lexer.NextToken()
	lexer.pos = pos
	return token
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.pos < len(lexer.input) && isSpace(lexer.input[lexer.pos]) {
		lexer.pos++
	}
}

// readString reads a quoted literal. A doubled quote or a backslash escapes
// the quote character. An unterminated literal is Unknown.
func (lexer *Lexer) readString(quote byte) Token {
	lexer.pos++
	var b strings.Builder
	for lexer.pos < len(lexer.input) {
		c := lexer.input[lexer.pos]
		switch {
		case c == '\\' && lexer.pos+1 < len(lexer.input):
			b.WriteByte(unescape(lexer.input[lexer.pos+1]))
			lexer.pos += 2
		case c == quote && lexer.pos+1 < len(lexer.input) && lexer.input[lexer.pos+1] == quote:
			b.WriteByte(quote)
			lexer.pos += 2
		case c == quote:
			lexer.pos++
			return Token{Type: String, Value: b.String()}
		default:
			b.WriteByte(c)
			lexer.pos++
		}
	}
	return Token{Type: Unknown, Value: string(quote) + b.String()}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func (lexer *Lexer) readQuotedIdentifier() Token {
	end := strings.IndexByte(lexer.input[lexer.pos+1:], '`')
	if end < 0 {
		value := lexer.input[lexer.pos:]
		lexer.pos = len(lexer.input)
		return Token{Type: Unknown, Value: value}
	}
	value := lexer.input[lexer.pos+1 : lexer.pos+1+end]
	lexer.pos += end + 2
	return Token{Type: Word, Value: value}
}

func (lexer *Lexer) readWord() Token {
	start := lexer.pos
	for lexer.pos < len(lexer.input) {
		c := lexer.input[lexer.pos]
		if isSpace(c) || strings.IndexByte(",()='\"`", c) >= 0 {
			break
		}
		lexer.pos++
	}
	return Token{Type: Word, Value: lexer.input[start:lexer.pos]}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
