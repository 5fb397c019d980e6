package tui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// formatMoney renders an amount as US dollars with grouped thousands.
func formatMoney(v float64) string {
	if v < 0 {
		return "-" + printer.Sprintf("$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

func formatDays(v float64) string {
	return printer.Sprintf("%.1f", v)
}

func formatPercent(v float64) string {
	return printer.Sprintf("%.0f%%", v)
}

// formatWholeMoney drops the cents, for catalog rates and template totals.
func formatWholeMoney(v float64) string {
	if v < 0 {
		return "-" + printer.Sprintf("$%.0f", -v)
	}
	return printer.Sprintf("$%.0f", v)
}
