package models

import (
	"fmt"
	"math"
	"strings"
)

// FormatPrice renders an amount using the currency's separators and format
// template. The template uses %1$s for the symbol and %2$s for the number.
func FormatPrice(c Currency, amount float64) string {
	decimals := c.Decimals
	if decimals < 0 {
		decimals = 2
	}

	decSep := c.DecimalSeparator
	if decSep == "" {
		decSep = "."
	}
	thousandSep := c.ThousandSeparator
	if thousandSep == "" {
		thousandSep = ","
	}
	format := c.Format
	if format == "" {
		format = "%1$s%2$s"
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	fixed := fmt.Sprintf("%.*f", decimals, amount)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	integer := fixed
	decimal := ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		integer = fixed[:idx]
		decimal = decSep + fixed[idx+1:]
	}

	number := groupThousands(integer, thousandSep) + decimal
	if negative {
		number = "-" + number
	}

	out := strings.ReplaceAll(format, "%1$s", c.Symbol)
	out = strings.ReplaceAll(out, "%2$s", number)
	return out
}

func groupThousands(digits, sep string) string {
	n := len(digits)
	if n <= 3 || sep == "" {
		return digits
	}

	var b strings.Builder
	first := n % 3
	if first > 0 {
		b.WriteString(digits[:first])
	}
	for i := first; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
