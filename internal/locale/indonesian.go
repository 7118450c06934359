// Package locale renders amounts and dates the way Indonesian invoices
// print them.
package locale

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var printer = message.NewPrinter(language.Indonesian)

// MonthName returns the Indonesian name for m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// FormatAmount renders an invoice amount with Indonesian digit grouping
// ("." thousands separator) and no decimal places, e.g. 150000 -> "150.000".
func FormatAmount(v float64) string {
	return printer.Sprintf("%v", number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
}

// FormatDate renders t as "<day> <month> <year>", e.g. "15 Januari 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), MonthName(t.Month()), t.Year())
}

// FormatMonthYear renders t as "<month> <year>", e.g. "Januari 2025".
func FormatMonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
}
