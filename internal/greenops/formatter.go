package greenops

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
// Uses English locale for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// Round rounds f half away from zero to the given number of decimals using
// decimal arithmetic, so 1.005 rounds to 1.01 rather than 1.00.
func Round(f float64, precision int) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	r, _ := decimal.NewFromFloat(f).Round(int32(precision)).Float64() //nolint:gosec // precision is small.
	return r
}

// Round2 rounds to two decimals, the precision of every displayed total.
func Round2(f float64) float64 {
	return Round(f, DisplayPrecision)
}

// FormatFloat formats a float with the specified precision and thousand separators.
// Example: FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}
	d := decimal.NewFromFloat(f).Round(int32(precision)) //nolint:gosec // precision is small.

	if precision <= 0 {
		return FormatNumber(d.IntPart())
	}

	fixed := d.StringFixed(int32(precision)) //nolint:gosec // precision is small.
	intPart := d.Truncate(0).IntPart()
	frac := fixed[len(fixed)-precision:]

	sign := ""
	if d.IsNegative() && intPart == 0 {
		sign = "-"
	}
	return sign + FormatNumber(intPart) + "." + frac
}

// FormatTCO2e renders a total as "1,234.57 tCO2e".
func FormatTCO2e(f float64) string {
	return FormatFloat(f, DisplayPrecision) + " " + UnitTCO2e
}

// FormatPercent renders a percentage with one decimal, e.g. "42.5%".
func FormatPercent(p float64) string {
	return FormatFloat(p, 1) + "%"
}

// FormatLarge formats large numbers with abbreviated notation.
//
// Values below LargeNumberThreshold (1 million) use comma-separated format.
// Values at or above LargeNumberThreshold use "~X.X million" format.
// Values at or above BillionThreshold use "~X.X billion" format.
func FormatLarge(n float64) string {
	if n >= BillionThreshold {
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	}

	if n >= LargeNumberThreshold {
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	}

	return FormatNumber(int64(math.Round(n)))
}
