package op

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Number coerces a cell value to a decimal. Strings must hold a complete
// number after trimming; nil, empty strings and other types do not coerce.
func Number(v any) (decimal.Decimal, bool) {
	switch value := v.(type) {
	case int64:
		return decimal.NewFromInt(value), true
	case int:
		return decimal.NewFromInt(int64(value)), true
	case float64:
		return decimal.NewFromFloat(value), true
	case decimal.Decimal:
		return value, true
	case string:
		s := strings.TrimSpace(value)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// Equal is loose equality: values that both coerce to numbers compare
// numerically, everything else compares by its text. nil only equals nil.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := Number(a); ok {
		if y, ok := Number(b); ok {
			return x.Equal(y)
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Compare orders cell values. nil sorts before everything else, numbers
// compare numerically and anything else compares by its text.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := Number(a); ok {
		if y, ok := Number(b); ok {
			return x.Cmp(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
