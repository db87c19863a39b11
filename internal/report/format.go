package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/adreport/internal/models"
)

// humanize converts the integer part through int64, so magnitudes from 2^63
// up go through decimal and big.Int instead.
const int64Limit = 1 << 63

// Currency renders whole units with thousands separators: -$1,234.
func (t Theme) Currency(v float64) string {
	return t.money(v, "#,###.", 0)
}

// CurrencyCents renders two decimals: $12.50.
func (t Theme) CurrencyCents(v float64) string {
	return t.money(v, "#,###.##", 2)
}

// Percent renders one decimal: 83.3%.
func (t Theme) Percent(v float64) string {
	return signed(v, "", number(math.Abs(v), "#,###.#", 1)) + "%"
}

func (t Theme) money(v float64, format string, places int32) string {
	return signed(v, t.CurrencySymbol, number(math.Abs(v), format, places))
}

// signed prefixes the minus sign, dropped when the value rounds to zero.
func signed(v float64, symbol, digits string) string {
	if v < 0 && strings.Trim(digits, "0.,") != "" {
		return "-" + symbol + digits
	}
	return symbol + digits
}

// number formats a non-negative value.
func number(v float64, format string, places int32) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return strings.TrimPrefix(strconv.FormatFloat(v, 'f', -1, 64), "+")
	case v >= int64Limit:
		// floats this large have no fractional part
		s := humanize.BigComma(decimal.NewFromFloat(v).BigInt())
		if places > 0 {
			s += "." + strings.Repeat("0", int(places))
		}
		return s
	}
	return humanize.FormatFloat(format, v)
}

// ratioText formats a defined ratio with f, or returns the placeholder.
func (t Theme) ratioText(r models.Ratio, f func(float64) string) string {
	if !r.Defined {
		return t.Placeholder
	}
	return f(r.Value)
}
