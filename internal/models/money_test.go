package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func usd() Currency {
	return Currency{
		Symbol:            "$",
		Decimals:          2,
		DecimalSeparator:  ".",
		ThousandSeparator: ",",
		Format:            "%1$s%2$s",
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$2,100.00", FormatPrice(usd(), 2100))
	assert.Equal(t, "$0.00", FormatPrice(usd(), 0))
	assert.Equal(t, "$1,234,567.89", FormatPrice(usd(), 1234567.891))
}

func TestFormatPriceNoDecimals(t *testing.T) {
	c := Currency{Symbol: "¥", Decimals: 0, ThousandSeparator: ",", Format: "%1$s%2$s"}
	assert.Equal(t, "¥1,900", FormatPrice(c, 1900))
	assert.Equal(t, "¥2,100", FormatPrice(c, 2100.4))
}

func TestFormatPriceEuropeanStyle(t *testing.T) {
	c := Currency{
		Symbol:            "€",
		Decimals:          2,
		DecimalSeparator:  ",",
		ThousandSeparator: ".",
		Format:            "%2$s %1$s",
	}
	assert.Equal(t, "1.900,00 €", FormatPrice(c, 1900))
}

func TestFormatPriceDefaults(t *testing.T) {
	// zero-value currency falls back to sensible separators
	assert.Equal(t, "1,900.00", FormatPrice(Currency{Decimals: 2}, 1900))
}
