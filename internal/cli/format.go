// Package cli renders wedding budget simulations for the terminal.
package cli

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats a currency amount with thousands separators and
// cents only when present, e.g. 505000 -> "505,000", -5000.5 -> "-5,000.50".
func FormatAmount(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole := d.Truncate(0)
	cents := d.Sub(whole)

	out := sign + groupThousands(whole.String())
	if !cents.IsZero() {
		out += "." + d.StringFixed(2)[len(whole.String())+1:]
	}
	return out
}

// FormatPercent formats a percentage with at most two decimals.
func FormatPercent(pct float64) string {
	return strconv.FormatFloat(decimal.NewFromFloat(pct).Round(2).InexactFloat64(), 'f', -1, 64) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
