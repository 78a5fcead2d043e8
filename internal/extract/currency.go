package extract

import (
	"regexp"

	"github.com/claimspipe/billamounts/constants"
)

// Marker patterns per currency. Detection walks constants.DetectionOrder and
// the first currency whose marker appears anywhere in the text wins.
var currencyPatterns = map[constants.CurrencyCode]*regexp.Regexp{
	constants.INR: regexp.MustCompile(`(?i)₹|\brs\b\.?|\binr\b|\brupees?\b|\bpaise\b`),
	constants.USD: regexp.MustCompile(`(?i)\$|\busd\b|\bdollars?\b`),
	constants.EUR: regexp.MustCompile(`(?i)€|\beur\b|\beuros?\b`),
	constants.GBP: regexp.MustCompile(`(?i)£|\bgbp\b|\bpounds?\b`),
}

// DetectCurrency scans text for currency markers in fixed priority order and
// falls back to def (or the package default) when none match. A run always
// yields exactly one currency.
func DetectCurrency(text string, def constants.CurrencyCode) constants.CurrencyCode {
	for _, code := range constants.DetectionOrder {
		if currencyPatterns[code].MatchString(text) {
			return code
		}
	}
	if def == "" {
		return constants.DefaultCurrency
	}
	return def
}
