// backend/scraper/amount_parser.go
package scraper

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// BCN tables publish amounts in thousands of pesos.
var amountScale = decimal.NewFromInt(1000)

// Longest leading numeric prefix, the way a lenient float parser reads "1234abc" as 1234.
var numericPrefixRegex = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseAmount converts a locale-formatted amount cell into pesos.
//
//	"1.234.567"    -> 1234567000  (dot as thousands separator)
//	"1,234,567"    -> 1234567000  (comma as thousands separator)
//	"1.234.567,89" -> 1234567890  (dot thousands, comma decimals)
//
// Unparseable input yields 0.
func ParseAmount(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if cleaned == "" {
		return 0
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")
	switch {
	case hasDot && hasComma:
		cleaned = strings.Replace(strings.ReplaceAll(cleaned, ".", ""), ",", ".", 1)
	case hasDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	value, ok := parseDecimalPrefix(cleaned)
	if !ok {
		return 0
	}
	return value.Mul(amountScale).Round(0).InexactFloat64()
}

// ParsePercentage converts cells like "85,5%" or "85.5 %" into 85.5. Unparseable input yields 0.
func ParsePercentage(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == '%' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	value, ok := parseDecimalPrefix(cleaned)
	if !ok {
		return 0
	}
	return value.InexactFloat64()
}

func parseDecimalPrefix(s string) (decimal.Decimal, bool) {
	prefix := numericPrefixRegex.FindString(s)
	if prefix == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(strings.TrimSuffix(prefix, "."))
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
