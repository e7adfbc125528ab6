package report

// currency.go renders amounts with Indian digit grouping: the rightmost
// three integer digits form one group, everything left of them is grouped in
// pairs (12,34,56,789.00). The formatter never fails a report over one bad
// cell; anything unparseable renders as the zero amount.

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyFormatter converts raw cell values into grouped, signed display
// strings. The zero value is not usable; construct with NewCurrencyFormatter.
type CurrencyFormatter struct {
	// Symbol prefixes every amount, e.g. "₹".
	Symbol string

	// SignBeforeSymbol places the negative sign ahead of the currency
	// symbol ("-₹ 5,000.00") rather than between symbol and digits
	// ("₹ -5,000.00"). Source systems disagreed on this; it is one
	// switch so the two styles cannot drift independently.
	SignBeforeSymbol bool
}

// NewCurrencyFormatter returns the formatter used for SAP budget reports:
// rupee symbol, sign before symbol.
func NewCurrencyFormatter() CurrencyFormatter {
	return CurrencyFormatter{Symbol: "₹", SignBeforeSymbol: true}
}

// Format renders a raw cell value. The second return is false when the
// value was non-numeric and the zero-amount fallback was used; empty input
// is defined as zero, not a fallback.
func (f CurrencyFormatter) Format(raw string) (string, bool) {
	cleaned := cleanAmount(raw)
	if cleaned == "" {
		return f.Zero(), true
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return f.Zero(), false
	}
	return f.FormatDecimal(d), true
}

// FormatDecimal renders an exact decimal amount. The fractional part is
// always two digits, rounded half away from zero.
func (f CurrencyFormatter) FormatDecimal(d decimal.Decimal) string {
	d = d.Round(2)
	negative := d.IsNegative()

	fixed := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	return f.compose(groupIndian(intPart)+"."+fracPart, negative)
}

// Zero is the display form for zero, empty and fallback values.
func (f CurrencyFormatter) Zero() string {
	return f.compose("0.00", false)
}

func (f CurrencyFormatter) compose(digits string, negative bool) string {
	if !negative {
		return f.Symbol + " " + digits
	}
	if f.SignBeforeSymbol {
		return "-" + f.Symbol + " " + digits
	}
	return f.Symbol + " -" + digits
}

// groupIndian inserts commas into an unsigned integer digit string: last
// three digits, then pairs leftward. The most significant group may hold
// one, two or three digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	groups := []string{digits[len(digits)-3:]}
	rest := digits[:len(digits)-3]
	for len(rest) > 2 {
		groups = append(groups, rest[len(rest)-2:])
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		groups = append(groups, rest)
	}

	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
		if i > 0 {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// cleanAmount strips the noise found in exported numeric cells: grouping
// commas, currency symbols and accounting-style parentheses for negatives.
func cleanAmount(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{",", "₹", "$", "€", "£"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if negative && s != "" && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}
