package constants

import (
	"strings"
)

// AmountCategory is the semantic role of an extracted amount.
type AmountCategory string

const (
	TotalBill       AmountCategory = "total_bill"
	Paid            AmountCategory = "paid"
	Due             AmountCategory = "due"
	Discount        AmountCategory = "discount"
	Tax             AmountCategory = "tax"
	ConsultationFee AmountCategory = "consultation_fee"
	MedicineCost    AmountCategory = "medicine_cost"
	LabTestCost     AmountCategory = "lab_test_cost"
	RoomCharges     AmountCategory = "room_charges"
	Subtotal        AmountCategory = "subtotal"
	Other           AmountCategory = "other"
)

var allCategories = []AmountCategory{
	TotalBill,
	Paid,
	Due,
	Discount,
	Tax,
	ConsultationFee,
	MedicineCost,
	LabTestCost,
	RoomCharges,
	Subtotal,
	Other,
}

// outputCategories is the allow-list for the external contract. The remaining
// categories are computed for consistency checks but never returned to callers.
var outputCategories = map[AmountCategory]struct{}{
	TotalBill: {},
	Paid:      {},
	Due:       {},
}

// IsOutputCategory reports whether the category is part of the external result.
func IsOutputCategory(cat AmountCategory) bool {
	_, ok := outputCategories[cat]
	return ok
}

func Canonicalize(input string) (AmountCategory, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]AmountCategory{
		"total":        TotalBill,
		"grand total":  TotalBill,
		"bill amount":  TotalBill,
		"net payable":  TotalBill,
		"amount paid":  Paid,
		"payment":      Paid,
		"balance":      Due,
		"balance due":  Due,
		"outstanding":  Due,
		"gst":          Tax,
		"vat":          Tax,
		"consultation": ConsultationFee,
		"doctor fee":   ConsultationFee,
		"pharmacy":     MedicineCost,
		"medicines":    MedicineCost,
		"lab":          LabTestCost,
		"pathology":    LabTestCost,
		"diagnostics":  LabTestCost,
		"room rent":    RoomCharges,
		"bed charges":  RoomCharges,
		"sub total":    Subtotal,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
