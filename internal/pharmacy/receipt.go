package pharmacy

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var receiptPrinter = message.NewPrinter(language.English)

// FormatCents renders a cent amount as a grouped decimal string, e.g.
// 123456789 -> "1,234,567.89".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return receiptPrinter.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
