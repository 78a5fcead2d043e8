// Package extract turns raw bill text into ordered, deduplicated numeric
// token strings plus a currency guess. Tokens may still carry OCR confusion
// characters (l200, 2OO); repairing those is the normalizer's job.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/claimspipe/billamounts/constants"
)

// Result is the extractor's output: token order follows first occurrence in
// the text, which keeps runs deterministic and testable.
type Result struct {
	Tokens   []string
	Currency constants.CurrencyCode
}

// confusable covers digits plus the OCR misreads the normalizer knows how to
// repair; excluding them here would drop garbled amounts before repair.
const confusable = `0-9OoIlSsBZTG`

// fallbackThreshold: the bare-number pass only runs when the anchored passes
// found fewer tokens than this.
const fallbackThreshold = 3

var (
	// pass 1: amounts anchored by a money keyword, optionally followed by a
	// currency marker.
	reKeywordAmount = regexp.MustCompile(`(?i)\b(?:total|paid|due|balance|amount|mrp|discount|tax|subtotal|net|gross)\b\s*[:\-]?\s*(?:₹|\$|€|£|rs\b\.?|inr|usd|eur|gbp)?\s*([` + confusable + `][` + confusable + `,.]*%?)`)

	// pass 2: currency-prefixed numbers anywhere in the text.
	reCurrencyAmount = regexp.MustCompile(`(?i)(?:₹|\$|€|£|\brs\b\.?|\binr\b|\busd\b|\beur\b|\bgbp\b)\s*([` + confusable + `][` + confusable + `,.]*%?)`)

	// pass 3: bare numbers with exactly two decimal places. OCR rarely
	// fabricates a decimal point, so these are money with high confidence.
	reTwoDecimal = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\.\d{2}\b|\b\d+\.\d{2}\b`)

	// pass 4 fallback: plain 2-6 digit integers/decimals, bounded below to
	// avoid dates, phone fragments and IDs.
	reBareNumber = regexp.MustCompile(`\b\d{2,6}(?:\.\d{1,2})?\b`)

	reLeadingCurrency = regexp.MustCompile(`(?i)^(?:₹|\$|€|£|rs\.?|inr|usd|eur|gbp)\s*`)
	reDigit           = regexp.MustCompile(`\d`)
	reSpace           = regexp.MustCompile(`\s+`)
)

// Extract runs the layered token passes and currency detection over text.
// defaultCurrency is returned when no marker is found; empty means INR.
func Extract(text string, defaultCurrency constants.CurrencyCode) Result {
	return Result{
		Tokens:   collectTokens(text),
		Currency: DetectCurrency(text, defaultCurrency),
	}
}

func collectTokens(text string) []string {
	var tokens []string
	seen := map[string]struct{}{}

	add := func(tok string) {
		if tok == "" || !reDigit.MatchString(tok) {
			return
		}
		if _, dup := seen[tok]; dup {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for _, m := range reKeywordAmount.FindAllStringSubmatch(text, -1) {
		add(CleanToken(m[1]))
	}
	for _, m := range reCurrencyAmount.FindAllStringSubmatch(text, -1) {
		add(CleanToken(m[1]))
	}
	for _, m := range reTwoDecimal.FindAllString(text, -1) {
		add(CleanToken(m))
	}

	if len(tokens) < fallbackThreshold {
		for _, m := range reBareNumber.FindAllString(text, -1) {
			tok := CleanToken(m)
			if !plausibleBareAmount(tok) {
				continue
			}
			add(tok)
		}
	}

	return tokens
}

// CleanToken strips currency markers, internal whitespace and thousands
// separators from a captured group.
func CleanToken(raw string) string {
	tok := strings.TrimSpace(raw)
	tok = reLeadingCurrency.ReplaceAllString(tok, "")
	tok = reSpace.ReplaceAllString(tok, "")
	tok = strings.ReplaceAll(tok, ",", "")
	tok = strings.Trim(tok, ".")
	return tok
}

// plausibleBareAmount bounds fallback candidates: values that look like day
// numbers, years or long IDs are rejected by magnitude and length.
func plausibleBareAmount(tok string) bool {
	if len(tok) > 8 {
		return false
	}
	v, err := strconv.ParseFloat(tok, 64)
	return err == nil && v >= 10
}
