package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.Korean)

// FormatPrice renders a price in won with thousands separators, e.g. ₩1,000.
func FormatPrice(price int) string {
	return pricePrinter.Sprintf("₩%d", price)
}
