// Package export renders report data as CSV and PDF documents.
package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders money, dates and labels for human-readable reports.
// CSV money columns are written unformatted so spreadsheets can sum them.
type Formatter struct {
	printer  *message.Printer
	caser    cases.Caser
	currency string
}

// NewFormatter creates a formatter for a BCP 47 locale such as "en" or
// "de-DE" and a currency label such as "ksh" or "EUR". Unknown locales
// fall back to English.
func NewFormatter(locale, currency string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		caser:    cases.Title(tag),
		currency: strings.TrimSpace(currency),
	}
}

// Money formats an amount with grouping and two decimals
func (f *Formatter) Money(d decimal.Decimal) string {
	amount := f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
	if f.currency == "" {
		return amount
	}
	return f.currency + " " + amount
}

// Integer formats a count with grouping
func (f *Formatter) Integer(n int64) string {
	return f.printer.Sprint(number.Decimal(n))
}

// Date formats a timestamp as a calendar date
func (f *Formatter) Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateTime formats a timestamp to the minute
func (f *Formatter) DateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// Label turns an enum value such as "PRODUCT" into "Product"
func (f *Formatter) Label(s string) string {
	return f.caser.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}
