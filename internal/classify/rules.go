package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/claimspipe/billamounts/constants"
)

// Rule is one entry of the ordered category table. Patterns are regular
// expressions with exactly one capture group for the numeric value; the token
// %CUR% expands to an optional currency marker at compile time.
type Rule struct {
	Category constants.AmountCategory `yaml:"category"`
	Patterns []string                 `yaml:"patterns"`
	Weight   float64                  `yaml:"weight"`
}

// currencyMarker is substituted for %CUR% when patterns are compiled.
const currencyMarker = `(?:₹|\$|€|£|rs\.?|inr|usd|eur|gbp)?`

const numGroup = `([\d,]+(?:\.\d+)?)`

// defaultRules is the built-in table, ordered by descending confidence
// weight. Order within equal weight is the deterministic tie-break.
var defaultRules = []Rule{
	{Category: constants.TotalBill, Weight: 0.90, Patterns: []string{
		`(?i)\b(?:grand\s+total|total(?:\s+(?:bill|amount|payable))?|net\s+(?:amount|payable)|bill\s+amount|amount\s+payable)\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.Paid, Weight: 0.90, Patterns: []string{
		`(?i)\b(?:amount\s+paid|paid|payment\s+(?:received|made)|advance)\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.Due, Weight: 0.90, Patterns: []string{
		`(?i)\b(?:amount\s+due|balance\s+due|due|balance|outstanding|payable)\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.Discount, Weight: 0.85, Patterns: []string{
		`(?i)\b(?:discount|concession|less)\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.Tax, Weight: 0.85, Patterns: []string{
		`(?i)\b(?:tax|gst|cgst|sgst|vat)\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.ConsultationFee, Weight: 0.80, Patterns: []string{
		`(?i)\b(?:consultation(?:\s+fees?)?|consult\s+fees?|doctor(?:'s)?\s+fees?|opd\s+fees?)\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.MedicineCost, Weight: 0.80, Patterns: []string{
		`(?i)\b(?:medicines?|pharmacy|drugs?)(?:\s+(?:charges?|cost))?\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.LabTestCost, Weight: 0.80, Patterns: []string{
		`(?i)\b(?:lab(?:oratory)?(?:\s+tests?)?|pathology|diagnostics?|tests?)(?:\s+(?:charges?|cost))?\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.RoomCharges, Weight: 0.80, Patterns: []string{
		`(?i)\b(?:room|bed|ward)(?:\s+(?:charges?|rent))?\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
	{Category: constants.Subtotal, Weight: 0.75, Patterns: []string{
		`(?i)\bsub\s*total\b[\s:\-]*%CUR%\s*` + numGroup,
	}},
}

type compiledRule struct {
	category constants.AmountCategory
	weight   float64
	patterns []*regexp.Regexp
}

// RuleSet is a compiled, ordered rule table.
type RuleSet struct {
	rules []compiledRule
}

// DefaultRules returns the built-in table.
func DefaultRules() *RuleSet {
	rs, err := Compile(defaultRules)
	if err != nil {
		// built-in patterns are literals; a compile failure is a programming error
		panic(err)
	}
	return rs
}

// Compile validates and compiles a rule table, preserving order.
func Compile(rules []Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("empty rule table")
	}
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		cat, ok := constants.Canonicalize(string(r.Category))
		if !ok {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
		if r.Weight <= 0 || r.Weight > 1 {
			return nil, fmt.Errorf("rule %d (%s): weight %v out of (0,1]", i, cat, r.Weight)
		}
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no patterns", i, cat)
		}
		cr := compiledRule{category: cat, weight: r.Weight}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(strings.ReplaceAll(p, "%CUR%", currencyMarker))
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, cat, err)
			}
			if re.NumSubexp() < 1 {
				return nil, fmt.Errorf("rule %d (%s): pattern %q has no capture group for the amount", i, cat, p)
			}
			cr.patterns = append(cr.patterns, re)
		}
		out = append(out, cr)
	}
	return &RuleSet{rules: out}, nil
}

// LoadRules reads a YAML rule table so deployments can extend keyword
// synonyms without a rebuild.
func LoadRules(path string) (*RuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(b, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return Compile(rules)
}
