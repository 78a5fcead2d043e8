// Package normalize repairs OCR character-confusion errors in raw tokens and
// parses them into clean non-negative amounts.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Result carries the surviving amounts plus the parse success ratio. A batch
// that mostly fails to parse signals unreliable OCR input upstream.
type Result struct {
	Amounts    []float64
	Confidence float64
}

// confusions maps visually similar OCR misreads to the digit they usually
// stand for. Substitution applies only under the digit-adjacent guard in
// Repair; unconditional replacement would corrupt tokens that are legitimate
// words rather than garbled numbers.
var confusions = map[rune]rune{
	'l': '1',
	'I': '1',
	'O': '0',
	'o': '0',
	'S': '5',
	's': '5',
	'B': '8',
	'Z': '2',
	'T': '7',
	'G': '6',
}

var (
	reLeadingCurrency = regexp.MustCompile(`(?i)^(?:₹|\$|€|£|rs\.?|inr|usd|eur|gbp)\s*`)
	reNonNumeric      = regexp.MustCompile(`[^0-9.,]`)
)

// Normalize converts each token into a two-decimal amount, dropping tokens
// that fail to parse. Percentage tokens are skipped outright: they are
// extracted for context but never carried forward as monetary amounts.
func Normalize(tokens []string) Result {
	var amounts []float64
	attempted := 0
	for _, tok := range tokens {
		if strings.Contains(tok, "%") {
			continue
		}
		attempted++
		if v, ok := normalizeToken(tok); ok {
			amounts = append(amounts, v)
		}
	}
	conf := 0.0
	if attempted > 0 {
		conf = round2(float64(len(amounts)) / float64(attempted))
	}
	return Result{Amounts: amounts, Confidence: conf}
}

func normalizeToken(tok string) (float64, bool) {
	tok = reLeadingCurrency.ReplaceAllString(strings.TrimSpace(tok), "")
	tok = Repair(tok)
	tok = reNonNumeric.ReplaceAllString(tok, "")
	tok = strings.ReplaceAll(tok, ",", "")
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v < 0 || math.IsNaN(v) {
		return 0, false
	}
	return round2(v), true
}

// Repair applies the confusion table wherever a confusable character touches
// a digit. Repairs cascade: once "2OO" fixes its first O to 0, the second O
// now touches a digit too, so passes repeat until a fixpoint.
func Repair(tok string) string {
	rs := []rune(tok)
	for changed := true; changed; {
		changed = false
		for i, r := range rs {
			d, ok := confusions[r]
			if !ok {
				continue
			}
			if digitAdjacent(rs, i) {
				rs[i] = d
				changed = true
			}
		}
	}
	return string(rs)
}

// digitAdjacent is the positional guard: position i qualifies when either
// neighbor is a digit. A character at a string boundary has only one neighbor,
// which is exactly the boundary case the guard must admit.
func digitAdjacent(rs []rune, i int) bool {
	if i > 0 && unicode.IsDigit(rs[i-1]) {
		return true
	}
	if i < len(rs)-1 && unicode.IsDigit(rs[i+1]) {
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
