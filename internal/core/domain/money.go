package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatVND renders an amount in đồng with Vietnamese digit grouping,
// e.g. 100000 -> "100.000 ₫".
func FormatVND(amount int64) string {
	return message.NewPrinter(language.Vietnamese).Sprintf("%d ₫", amount)
}
