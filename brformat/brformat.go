// Package brformat formats and parses values the way Brazilian documents write
// them: R$ 1.234,56, 123.456.789-00, 64000-000, 28 de janeiro de 2025.
package brformat

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrInvalidNumber = errors.New("brformat: invalid number")
	ErrInvalidDate   = errors.New("brformat: invalid date")
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Number formats v with decimals fraction digits and pt-BR separators.
func Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return printer.Sprintf("%."+strconv.Itoa(decimals)+"f", v)
}

// Currency formats v as R$ 1.234,56, rounding to the cent.
func Currency(v float64) string {
	v = RoundCents(v)
	if v < 0 {
		return "-R$ " + Number(-v, 2)
	}
	return "R$ " + Number(v, 2)
}

// Percent formats v as 15,50%.
func Percent(v float64, decimals int) string {
	return Number(v, decimals) + "%"
}

// RoundCents rounds v to two fraction digits.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseCurrency reads amounts written as "R$ 1.234,56", "1234,56" or
// "1234.56". The result is rounded to the cent.
func ParseCurrency(s string) (float64, error) {
	v, err := ParseNumber(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if err != nil {
		return 0, err
	}
	return RoundCents(v), nil
}

// ParseNumber reads a decimal number in pt-BR or plain notation. When a comma
// is present it is the decimal separator and dots group thousands; without a
// comma a single dot is a decimal point.
func ParseNumber(s string) (float64, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	clean = strings.TrimSuffix(clean, "%")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}
	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// CPF formats an 11-digit taxpayer number. Anything else is returned unchanged.
func CPF(s string) string {
	d := digits(s)
	if len(d) != 11 {
		return s
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// CNPJ formats a 14-digit company number. Anything else is returned unchanged.
func CNPJ(s string) string {
	d := digits(s)
	if len(d) != 14 {
		return s
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

// CEP formats an 8-digit postal code. Anything else is returned unchanged.
func CEP(s string) string {
	d := digits(s)
	if len(d) != 8 {
		return s
	}
	return d[:5] + "-" + d[5:]
}

// MonthName returns the lower-case Portuguese name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return months[m-1]
}

// LongDate spells t as "05 de março de 2025".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), MonthName(t.Month()), t.Year())
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"02/01/2006",
	"2/1/2006",
}

// ParseDate reads ISO dates and date-times and dd/mm/yyyy.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// SpellDate turns a date field into its long form. A value that is already
// spelled out ("5 de março de 2025") is returned as is.
func SpellDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if isSpelled(s) {
		return s, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return LongDate(t), nil
}

func isSpelled(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range months {
		if strings.Contains(lower, " de "+m+" de ") {
			return true
		}
	}
	return false
}
