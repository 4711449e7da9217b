// Package currency converts transfer prices between the host site's
// currencies using a fixed cross-rate table.
package currency

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/trainhist/internal/domain/model"
)

// Pivot is the unit every rate is expressed in.
const Pivot = "SEK"

// NotApplicable is shown for prices without an amount.
const NotApplicable = "N/A"

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64) //nolint:gochecknoglobals // bound
	minAmount = decimal.NewFromInt(math.MinInt64) //nolint:gochecknoglobals // bound
)

func fitsInt64(d decimal.Decimal) bool {
	return d.LessThanOrEqual(maxAmount) && d.GreaterThanOrEqual(minAmount)
}

// rates holds the value of one unit of each currency in Pivot units.
var rates = map[string]decimal.Decimal{ //nolint:gochecknoglobals // fixed lookup table
	"R$":  decimal.RequireFromString("2.62589"),
	"EUR": decimal.RequireFromString("9.1775"),
	"USD": decimal.RequireFromString("7.4234"),
	"点":   decimal.RequireFromString("1"),
	"SEK": decimal.RequireFromString("1"),
	"NOK": decimal.RequireFromString("1.07245"),
	"DKK": decimal.RequireFromString("1.23522"),
	"GBP": decimal.RequireFromString("13.35247"),
	"CHF": decimal.RequireFromString("5.86737"),
	"RUB": decimal.RequireFromString("0.26313"),
	"CAD": decimal.RequireFromString("5.70899"),
	"AUD": decimal.RequireFromString("5.66999"),
	"MZ":  decimal.RequireFromString("1"),
	"MM":  decimal.RequireFromString("1"),
	"PLN": decimal.RequireFromString("1.95278"),
	"ILS": decimal.RequireFromString("1.6953"),
	"INR": decimal.RequireFromString("0.17"),
	"THB": decimal.RequireFromString("0.17079"),
	"ZAR": decimal.RequireFromString("1.23733"),
	"SKK": decimal.RequireFromString("0.24946"),
	"BGN": decimal.RequireFromString("4.70738"),
	"MXN": decimal.RequireFromString("0.68576"),
	"ARS": decimal.RequireFromString("2.64445"),
	"BOB": decimal.RequireFromString("0.939"),
	"UYU": decimal.RequireFromString("0.256963"),
	"PYG": decimal.RequireFromString("0.001309"),
	"ISK": decimal.RequireFromString("0.10433"),
	"SIT": decimal.RequireFromString("0.03896"),
	"JPY": decimal.RequireFromString("0.06"),
}

// Known reports whether code is in the rate table.
func Known(code string) bool {
	_, ok := rates[code]
	return ok
}

// Rate returns the value of one unit of code in Pivot units.
func Rate(code string) (decimal.Decimal, bool) {
	r, ok := rates[code]
	return r, ok
}

// Codes lists every supported code in sorted order.
func Codes() []string {
	out := make([]string, 0, len(rates))
	for c := range rates {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Convert expresses amount of from in to, rounded to the nearest whole unit.
// When either code is unknown, or the result does not fit in an int64, the
// input is returned unchanged with ok=false.
func Convert(amount int64, from, to string) (converted int64, code string, ok bool) {
	src, okFrom := rates[from]
	dst, okTo := rates[to]
	if !okFrom || !okTo {
		return amount, from, false
	}
	if from == to {
		return amount, to, true
	}
	v := decimal.NewFromInt(amount).Mul(src).Div(dst).Round(0)
	if !fitsInt64(v) {
		return amount, from, false
	}
	return v.IntPart(), to, true
}

// Reprice converts a parsed price. A zero price stays zero in the target code.
func Reprice(p model.Price, to string) (model.Price, bool) {
	if p.IsZero() {
		return model.Price{Currency: to}, Known(to)
	}
	amount, code, ok := Convert(p.Amount, p.Currency, to)
	return model.Price{Amount: amount, Currency: code}, ok
}

var pricePattern = regexp.MustCompile(`(\d[\d\s\x{00A0}\x{202F},.']*?)[\s\x{00A0}\x{202F}]*(R\$|点|[A-Za-z$]+)`)

// IsNotApplicable reports whether text is one of the "no price" markers.
func IsNotApplicable(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t == "-" || strings.EqualFold(t, NotApplicable)
}

// ParsePrice extracts a leading amount and a currency token from free text.
// Grouping separators (space, comma, dot, apostrophe) are ignored; a final
// separator followed by one or two digits is read as a decimal point.
// "Not applicable" markers and unparsable text yield a zero price and ok=false.
func ParsePrice(text string) (model.Price, bool) {
	if IsNotApplicable(text) {
		return model.Price{}, false
	}
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return model.Price{}, false
	}
	amount, ok := parseAmount(m[1])
	if !ok {
		return model.Price{}, false
	}
	return model.Price{Amount: amount, Currency: m[2]}, true
}

func parseAmount(raw string) (int64, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		}
	}
	s := strings.TrimRight(b.String(), ",.")
	intPart, frac := s, ""
	if i := strings.LastIndexAny(s, ",."); i >= 0 {
		if n := len(s) - i - 1; n >= 1 && n <= 2 {
			intPart, frac = s[:i], s[i+1:]
		}
	}
	intPart = strings.NewReplacer(",", "", ".", "").Replace(intPart)
	if intPart == "" {
		return 0, false
	}
	num := intPart
	if frac != "" {
		num += "." + frac
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0, false
	}
	d = d.Round(0)
	if !fitsInt64(d) {
		return 0, false
	}
	return d.IntPart(), true
}

// Format renders a price with locale digit grouping, or NotApplicable for a zero price.
func Format(p model.Price, tag language.Tag) string {
	if p.IsZero() {
		return NotApplicable
	}
	return message.NewPrinter(tag).Sprintf("%d %s", p.Amount, p.Currency)
}
