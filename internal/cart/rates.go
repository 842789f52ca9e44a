package cart

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rates are the per-category discount and tax applied to a line item.
type Rates struct {
	Discount float64
	Tax      float64
}

const (
	categoryFood       = "food"
	categoryTechnology = "technology"
)

var (
	foodRates    = Rates{Discount: 0.10, Tax: 0.03}
	techRates    = Rates{Discount: 0.05, Tax: 0.13}
	defaultRates = Rates{Discount: 0, Tax: 0.08}
)

// CategoryRates resolves the rate table for a free-form category string.
// Matching is case-insensitive and accent-insensitive; unknown or empty
// categories fall back to the default rates.
func CategoryRates(category string) Rates {
	switch foldCategory(category) {
	case categoryFood:
		return foodRates
	case categoryTechnology:
		return techRates
	default:
		return defaultRates
	}
}

// foldCategory lowercases and strips diacritics.
func foldCategory(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
