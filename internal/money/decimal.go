// Package money keeps every price and total in arbitrary-precision decimals.
// Nothing in here is authoritative: the backend owns the real numbers, this
// package only previews and renders them, so malformed input becomes zero
// instead of an error.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimal converts strings, integers, floats and decimals. Anything that
// does not parse (including NaN and Inf) is zero.
func ToDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case Amount:
		return x.Decimal
	case *Amount:
		if x == nil {
			return decimal.Zero
		}
		return x.Decimal
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero
		}
		return d
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt32(x)
	case int64:
		return decimal.NewFromInt(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(x)
	}
	return decimal.Zero
}

// NonNegative is ToDecimal clamped at zero.
func NonNegative(v any) decimal.Decimal {
	d := ToDecimal(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LineTotal is unitPrice * quantity.
func LineTotal(unitPrice any, quantity int) decimal.Decimal {
	return ToDecimal(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
