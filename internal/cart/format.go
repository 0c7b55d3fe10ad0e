package cart

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders a whole-rupee amount with the locale's digit grouping,
// e.g. 250000 -> "₹2,50,000".
func FormatINR(amount int) string {
	return inr.Sprintf("₹%d", amount)
}
