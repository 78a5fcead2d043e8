package ocr

import (
	"regexp"
	"strings"
)

var (
	reBillKeyword = regexp.MustCompile(`\b(total|paid|due|balance|amount|bill|invoice|receipt)\b`)
	reCurr        = regexp.MustCompile(`\b(usd|eur|gbp|inr|rs)\b|[$£€₹]`)
	reAmount      = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
)

func hasBillKeyword(s string) bool     { return reBillKeyword.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float64 {
	// boost if we see common bill artifacts (money keywords, currency markers,
	// decimal amounts); each adds a fixed increment over a low base.
	txtL := strings.ToLower(txt)
	score := 0.2 // base
	if hasBillKeyword(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
