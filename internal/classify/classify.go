// Package classify assigns each normalized amount the best-matching semantic
// category by keyword proximity in the raw text.
package classify

import (
	"math"
	"strconv"
	"strings"

	"github.com/claimspipe/billamounts/constants"
)

// ClassifiedAmount pairs a value with its category verdict and the text it
// was derived from.
type ClassifiedAmount struct {
	Category   constants.AmountCategory `json:"type"`
	Value      float64                  `json:"value"`
	Confidence float64                  `json:"confidence"`
	Source     string                   `json:"source"`
}

// Result is a classification batch with the mean per-amount confidence.
type Result struct {
	Amounts    []ClassifiedAmount
	Confidence float64
}

const (
	fallbackConfidence = 0.5
	noContextSource    = "(context not found)"

	// valueEpsilon admits only captured values that round to the same cent
	// as the normalized amount; normalization rounds to two decimals, so a
	// strictly-equal comparison would reject an amount's own context line.
	valueEpsilon = 0.005
)

// Classify assigns every amount a category independently. The classifier
// always produces a verdict: amounts without keyword context fall to "other".
func (rs *RuleSet) Classify(amounts []float64, rawText string) Result {
	out := make([]ClassifiedAmount, 0, len(amounts))
	var sum float64
	for _, v := range amounts {
		ca := rs.classifyOne(v, rawText)
		out = append(out, ca)
		sum += ca.Confidence
	}
	conf := 0.0
	if len(out) > 0 {
		conf = round2(sum / float64(len(out)))
	}
	return Result{Amounts: out, Confidence: conf}
}

// classifyOne walks the table in order; a strictly higher weight displaces the
// current best, so ties at equal weight resolve to the earlier rule.
func (rs *RuleSet) classifyOne(v float64, rawText string) ClassifiedAmount {
	bestWeight := 0.0
	var bestCat constants.AmountCategory
	bestMatch := ""
	for _, rule := range rs.rules {
		if rule.weight <= bestWeight {
			continue
		}
		if m, ok := rule.findValue(rawText, v); ok {
			bestWeight = rule.weight
			bestCat = rule.category
			bestMatch = m
		}
	}
	if bestWeight == 0 {
		return ClassifiedAmount{
			Category:   constants.Other,
			Value:      v,
			Confidence: fallbackConfidence,
			Source:     noContextSource,
		}
	}
	return ClassifiedAmount{
		Category:   bestCat,
		Value:      v,
		Confidence: bestWeight,
		Source:     sourceSnippet(rawText, v, bestMatch),
	}
}

// findValue reports whether any of the rule's patterns captures a numeric
// group equal (to the cent) to v, and returns the matched substring.
func (r compiledRule) findValue(text string, v float64) (string, bool) {
	for _, re := range r.patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			gv, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			if math.Abs(gv-v) < valueEpsilon {
				return m[0], true
			}
		}
	}
	return "", false
}

// sourceSnippet prefers the full line containing the literal decimal string of
// the amount, then the regex match substring, then a fixed placeholder.
func sourceSnippet(rawText string, v float64, matchText string) string {
	literals := []string{
		strconv.FormatFloat(v, 'f', -1, 64),
		strconv.FormatFloat(v, 'f', 2, 64),
	}
	for _, line := range strings.Split(rawText, "\n") {
		for _, lit := range literals {
			if strings.Contains(line, lit) {
				return strings.TrimSpace(line)
			}
		}
	}
	if matchText != "" {
		return strings.TrimSpace(matchText)
	}
	return noContextSource
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
