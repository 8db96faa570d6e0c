package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal as it travels over the API. The backend sends prices
// and totals as quoted strings ("20.00"), sometimes as bare numbers; both
// decode, and anything malformed decodes as zero.
type Amount struct {
	decimal.Decimal
}

func NewAmount(v any) Amount {
	return Amount{Decimal: ToDecimal(v)}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	a.Decimal = ToDecimal(raw)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.Decimal.StringFixed(2))), nil
}

// Fixed is the two-place string form, e.g. "20.00".
func (a Amount) Fixed() string {
	return a.Decimal.StringFixed(2)
}

func (a Amount) Format() string {
	return FormatCurrency(a.Decimal)
}
