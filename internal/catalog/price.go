// Package catalog orders normalized products and derives the published views.
package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"feedsync/internal/models"
)

// Upper bounds (exclusive) of the price bands.
const (
	BudgetLimit   = 500.0
	StandardLimit = 2000.0
	PremiumLimit  = 5000.0
)

var (
	nonPriceChars = regexp.MustCompile(`[^0-9.,]`)
	// leadingNumber mirrors a lenient float parser: the longest decimal prefix wins.
	leadingNumber = regexp.MustCompile(`^(?:[0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// ParsePrice extracts a numeric price from free-form text such as "1 299,00 CZK".
// Everything except digits, commas and periods is dropped, the first comma
// becomes a decimal point and the leading decimal literal is parsed.
// ok is false when no number can be read.
func ParsePrice(raw string) (value float64, ok bool) {
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	literal := leadingNumber.FindString(cleaned)
	if literal == "" {
		return math.NaN(), false
	}

	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return math.NaN(), false
	}

	return value, true
}

// Category returns the bucket name for a raw price string.
func Category(price string) string {
	value, ok := ParsePrice(price)

	switch {
	case !ok:
		return models.CategoryOther
	case value < BudgetLimit:
		return models.CategoryBudget
	case value < StandardLimit:
		return models.CategoryStandard
	case value < PremiumLimit:
		return models.CategoryPremium
	default:
		return models.CategoryLuxury
	}
}
