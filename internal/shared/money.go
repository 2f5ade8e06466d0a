package shared

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter renders amounts with locale-aware digit grouping and zero
// decimal places. The currency unit is a user setting and purely cosmetic.
type MoneyFormatter struct {
	printer *message.Printer
	unit    string
}

// NewMoneyFormatter builds a formatter for the given BCP 47 locale and
// currency unit. Unknown locales fall back to English grouping.
func NewMoneyFormatter(locale, unit string) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &MoneyFormatter{printer: message.NewPrinter(tag), unit: unit}
}

// Format renders the amount rounded to a whole number.
func (f *MoneyFormatter) Format(amount float64) string {
	rounded := math.Round(amount)
	s := f.printer.Sprint(number.Decimal(rounded, number.MaxFractionDigits(0)))
	if f.unit == "" {
		return s
	}
	return s + " " + f.unit
}
