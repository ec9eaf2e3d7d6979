package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders cents as whole US dollars with grouping, e.g. "$18,900".
func FormatUSD(cents int64) string {
	dollars := roundHalfUp(cents, 100)
	if dollars < 0 {
		return "-" + usdPrinter.Sprintf("$%d", -dollars)
	}
	return usdPrinter.Sprintf("$%d", dollars)
}
