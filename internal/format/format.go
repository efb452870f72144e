// Package format renders decimal-scaled amounts the way the gateway's downstream
// stream messages and holdings responses display them: thousands-grouped, two
// fractional digits, rounded half-away-from-zero.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Token renders a plain decimal amount, e.g. 123456789.1234 -> "123,456,789.12".
func Token(value float64) string {
	return ccy(value, "")
}

// USD renders a USD amount, e.g. 123456789.1234 -> "$123,456,789.12".
func USD(value float64) string {
	return ccy(value, "$")
}

func ccy(value float64, symbol string) string {
	rounded := roundHalfAwayFromZero(value*100) / 100
	return symbol + printer.Sprintf("%.2f", rounded)
}

// roundHalfAwayFromZero matches the original implementation's rounding rule, which
// differs from Go's math.Round only in that it is explicit about the tie-break
// direction for negative values (math.Round already rounds half away from zero).
func roundHalfAwayFromZero(v float64) float64 {
	return math.Round(v)
}
