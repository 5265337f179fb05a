package sql

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Literal is one value as written in a statement.
type Literal struct {
	Text   string
	Quoted bool
}

// Value is the cell value of an INSERT literal: quoted text stays a string,
// bare NULL is nil, bare numbers become numbers and other bare words are
// kept as text.
func (literal Literal) Value() any {
	if literal.Quoted {
		return literal.Text
	}
	if literal.Text == "" || strings.EqualFold(literal.Text, "null") {
		return nil
	}
	if n, ok := ParseNumber(literal.Text); ok {
		return n
	}
	return literal.Text
}

// NumericValue is the cell value of an UPDATE literal: anything that looks
// numeric becomes a number, quoted or not.
func (literal Literal) NumericValue() any {
	if !literal.Quoted && (literal.Text == "" || strings.EqualFold(literal.Text, "null")) {
		return nil
	}
	if n, ok := ParseNumber(literal.Text); ok {
		return n
	}
	return literal.Text
}

// ParseNumber converts numeric text to int64 when it is a whole number that
// fits, and to float64 otherwise. Text beyond the float64 range is not a
// number.
func ParseNumber(text string) (any, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	if d.IsInteger() {
		if n := d.BigInt(); n.IsInt64() {
			return n.Int64(), true
		}
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	return f, true
}

// ParseLeadingInt reads an optional sign and the leading digits of text,
// ignoring surrounding whitespace and quotes. It fails when there are no
// digits.
func ParseLeadingInt(text string) (int64, bool) {
	s := strings.Trim(strings.TrimSpace(text), "'\"")
	s = strings.TrimSpace(s)

	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	d, err := decimal.NewFromString(s[:end])
	if err != nil || !d.BigInt().IsInt64() {
		return 0, false
	}
	n := d.IntPart()
	if negative {
		n = -n
	}
	return n, true
}
