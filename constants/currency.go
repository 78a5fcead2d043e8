package constants

// CurrencyCode is one of the currencies the extractor can detect.
type CurrencyCode string

const (
	INR CurrencyCode = "INR"
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
)

// DefaultCurrency is the deployment's common case; detection falls back to it
// when no marker is found in the text.
const DefaultCurrency = INR

// DetectionOrder is the fixed priority for currency detection. The first
// currency whose marker appears in the text wins.
var DetectionOrder = []CurrencyCode{INR, USD, EUR, GBP}

// ParseCurrency maps a string to a known currency code.
func ParseCurrency(s string) (CurrencyCode, bool) {
	switch CurrencyCode(s) {
	case INR, USD, EUR, GBP:
		return CurrencyCode(s), true
	}
	return "", false
}
