package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token
	for {
		token := lexer.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF || token.Type == Unknown {
			return tokens
		}
	}
}

func TestLexer(t *testing.T) {
	assert.Equal(t, []Token{
		{Type: ParenOpen, Value: "("},
		{Type: String, Value: "O'Brien"},
		{Type: Comma, Value: ","},
		{Type: Word, Value: "42"},
		{Type: Comma, Value: ","},
		{Type: String, Value: "say \"hi\""},
		{Type: Comma, Value: ","},
		{Type: Word, Value: "my col"},
		{Type: Equals, Value: "="},
		{Type: Word, Value: "NULL"},
		{Type: ParenClose, Value: ")"},
		{Type: EOF},
	}, collect(`('O''Brien', 42, "say \"hi\"", `+"`my col`"+`=NULL)`))
}

func TestLexerUnterminated(t *testing.T) {
	tokens := collect("'abc")
	assert.Equal(t, Unknown, tokens[len(tokens)-1].Type)

	tokens = collect("`abc")
	assert.Equal(t, Unknown, tokens[len(tokens)-1].Type)
}

func TestLexerPeek(t *testing.T) {
	lexer := NewLexer("a = 1")
	assert.Equal(t, Word, lexer.Peek().Type)
	assert.Equal(t, "a", lexer.NextToken().Value)
	assert.Equal(t, Equals, lexer.NextToken().Type)
	assert.Equal(t, " 1", lexer.Rest())
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "10", Literal{Text: "10", Quoted: true}.Value())
	assert.Equal(t, int64(10), Literal{Text: "10"}.Value())
	assert.Equal(t, 2.5, Literal{Text: "2.5"}.Value())
	assert.Nil(t, Literal{Text: "null"}.Value())
	assert.Equal(t, "null", Literal{Text: "null", Quoted: true}.Value())
	assert.Equal(t, "abc", Literal{Text: "abc"}.Value())

	assert.Equal(t, int64(10), Literal{Text: "10", Quoted: true}.NumericValue())
	assert.Equal(t, 299.99, Literal{Text: "299.99", Quoted: true}.NumericValue())
	assert.Equal(t, "", Literal{Text: "", Quoted: true}.NumericValue())
	assert.Equal(t, "abc", Literal{Text: "abc", Quoted: true}.NumericValue())

	assert.Equal(t, "1e400", Literal{Text: "1e400"}.Value())
	assert.Equal(t, "-1e400", Literal{Text: "-1e400", Quoted: true}.NumericValue())
	assert.Equal(t, 1e300, Literal{Text: "1e300"}.Value())
}

func TestParseNumberOutOfRange(t *testing.T) {
	for _, text := range []string{"1e400", "-1e400", "9e999999"} {
		n, ok := ParseNumber(text)
		assert.False(t, ok, text)
		assert.Nil(t, n, text)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"3", 3, true},
		{" 42 ", 42, true},
		{"'7'", 7, true},
		{"-5", -5, true},
		{"12abc", 12, true},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
