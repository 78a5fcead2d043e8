package classify

import (
	"fmt"
	"math"

	"github.com/claimspipe/billamounts/constants"
)

// reconcileTolerance allows one currency unit of rounding drift between the
// stated total and paid+due.
const reconcileTolerance = 1.0

// CheckConsistency cross-checks the classified set for bookkeeping
// plausibility. Warnings are advisory: callers log them for operators and
// never alter the returned data.
func CheckConsistency(amounts []ClassifiedAmount) []string {
	var total, paid, due *float64
	for i := range amounts {
		v := amounts[i].Value
		switch amounts[i].Category {
		case constants.TotalBill:
			if total == nil {
				total = &v
			}
		case constants.Paid:
			if paid == nil {
				paid = &v
			}
		case constants.Due:
			if due == nil {
				due = &v
			}
		}
	}

	var warnings []string
	if total != nil && paid != nil && due != nil {
		if diff := math.Abs(*total - (*paid + *due)); diff > reconcileTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"total %.2f does not reconcile with paid %.2f + due %.2f (diff %.2f)",
				*total, *paid, *due, diff))
		}
	}
	if total != nil && due != nil && *due > *total {
		warnings = append(warnings, fmt.Sprintf("due %.2f exceeds total %.2f", *due, *total))
	}
	if total != nil && paid != nil && *paid > *total {
		warnings = append(warnings, fmt.Sprintf("paid %.2f exceeds total %.2f", *paid, *total))
	}
	return warnings
}
