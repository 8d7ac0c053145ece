// Package numwords spells numbers and currency amounts in Brazilian Portuguese,
// the way values are written out in full on contracts.
package numwords

import (
	"errors"
	"math"
	"strings"
)

var (
	// ErrNegative is returned for amounts below zero.
	ErrNegative = errors.New("numwords: negative amount")
	// ErrNotFinite is returned for NaN and infinities.
	ErrNotFinite = errors.New("numwords: amount is not finite")
	// ErrTooLarge is returned when the amount in cents overflows int64.
	ErrTooLarge = errors.New("numwords: amount too large")
)

var units = [...]string{
	"", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove",
	"dez", "onze", "doze", "treze", "quatorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove",
}

var tens = [...]string{
	"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa",
}

var hundreds = [...]string{
	"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos",
	"seiscentos", "setecentos", "oitocentos", "novecentos",
}

// scales are the names of the thousand-groups above the units, singular and plural.
var scales = [...][2]string{
	{"", ""},
	{"mil", "mil"},
	{"milhão", "milhões"},
	{"bilhão", "bilhões"},
	{"trilhão", "trilhões"},
	{"quatrilhão", "quatrilhões"},
	{"quintilhão", "quintilhões"},
}

// Amount spells v as reais and centavos. v is rounded to the cent first.
//
//	Amount(1001)    // "mil e um reais"
//	Amount(1500.5)  // "mil e quinhentos reais e cinquenta centavos"
//	Amount(0.5)     // "cinquenta centavos"
//	Amount(0)       // "zero reais"
func Amount(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrNotFinite
	}
	if v < 0 {
		return "", ErrNegative
	}
	if v >= math.MaxInt64/100 {
		return "", ErrTooLarge
	}
	cents := int64(math.Round(v * 100))
	whole, frac := cents/100, cents%100
	if whole == 0 && frac == 0 {
		return "zero reais", nil
	}

	var parts []string
	if whole > 0 {
		parts = append(parts, Cardinal(whole)+" "+currencyName(whole))
	}
	if frac > 0 {
		name := "centavos"
		if frac == 1 {
			name = "centavo"
		}
		parts = append(parts, group(int(frac))+" "+name)
	}
	return strings.Join(parts, " e "), nil
}

func currencyName(whole int64) string {
	switch {
	case whole == 1:
		return "real"
	case whole >= 1_000_000 && whole%1_000_000 == 0:
		return "de reais"
	default:
		return "reais"
	}
}

// Cardinal spells n as a masculine cardinal number.
func Cardinal(n int64) string {
	if n == 0 {
		return "zero"
	}
	if n < 0 {
		return "menos " + cardinal(uint64(-(n + 1))+1)
	}
	return cardinal(uint64(n))
}

func cardinal(n uint64) string {
	var groups []int
	for n > 0 {
		groups = append(groups, int(n%1000))
		n /= 1000
	}

	var terms []string
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			continue
		}
		terms = append(terms, term(g, i))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	// "e" joins only the last two non-zero terms.
	head := strings.Join(terms[:len(terms)-1], " ")
	return head + " e " + terms[len(terms)-1]
}

// term renders one non-zero group at scale index i.
func term(g, i int) string {
	switch {
	case i == 0:
		return group(g)
	case i == 1 && g == 1:
		return "mil"
	case g == 1:
		return "um " + scales[i][0]
	default:
		return group(g) + " " + scales[i][1]
	}
}

// group spells 1..999.
func group(n int) string {
	if n == 100 {
		return "cem"
	}
	var words []string
	if h := n / 100; h > 0 {
		words = append(words, hundreds[h])
	}
	rest := n % 100
	switch {
	case rest == 0:
	case rest < 20:
		words = append(words, units[rest])
	default:
		words = append(words, tens[rest/10])
		if u := rest % 10; u > 0 {
			words = append(words, units[u])
		}
	}
	return strings.Join(words, " e ")
}
