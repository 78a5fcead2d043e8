package normalize

import (
	"errors"
	"fmt"
)

// DefaultCeiling guards against OCR producing a spuriously huge number by
// token concatenation.
const DefaultCeiling = 10_000_000

// Validate applies batch-level plausibility rules to the normalized set. A
// non-nil error means the whole batch should be rejected, not individual
// amounts trimmed.
func Validate(amounts []float64, ceiling float64) error {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if len(amounts) == 0 {
		return errors.New("no valid amounts after normalization")
	}
	zeros := 0
	for _, v := range amounts {
		if v > ceiling {
			return fmt.Errorf("amount %.2f exceeds plausibility ceiling %.0f", v, ceiling)
		}
		if v == 0 {
			zeros++
		}
	}
	// a predominance of zeros signals a systematic misread, not genuine
	// zero balances
	if zeros*2 > len(amounts) {
		return fmt.Errorf("%d of %d amounts are zero", zeros, len(amounts))
	}
	return nil
}
