package classify

import (
	"strings"
	"testing"

	"github.com/claimspipe/billamounts/constants"
)

func TestClassifyKeywordContext(t *testing.T) {
	text := "Total: INR 1200 | Paid: 1000 | Due: 200"
	rs := DefaultRules()
	got := rs.Classify([]float64{1200, 1000, 200}, text)

	if len(got.Amounts) != 3 {
		t.Fatalf("got %d amounts, want 3", len(got.Amounts))
	}
	wantCats := []constants.AmountCategory{constants.TotalBill, constants.Paid, constants.Due}
	for i, want := range wantCats {
		if got.Amounts[i].Category != want {
			t.Errorf("amount %d category = %s, want %s", i, got.Amounts[i].Category, want)
		}
		if got.Amounts[i].Confidence != 0.90 {
			t.Errorf("amount %d confidence = %v, want 0.90", i, got.Amounts[i].Confidence)
		}
		if !strings.Contains(got.Amounts[i].Source, "Total") {
			t.Errorf("amount %d source %q should be the context line", i, got.Amounts[i].Source)
		}
	}
	if got.Confidence != 0.90 {
		t.Errorf("overall confidence = %v, want 0.90", got.Confidence)
	}
}

func TestClassifyRequiresExactValue(t *testing.T) {
	// 1199 appears next to the keyword, 1200 does not: the keyword context
	// must not leak onto a different value.
	rs := DefaultRules()
	got := rs.Classify([]float64{1200}, "Consultation: 1199")

	if got.Amounts[0].Category != constants.Other {
		t.Errorf("category = %s, want other", got.Amounts[0].Category)
	}
	if got.Amounts[0].Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", got.Amounts[0].Confidence)
	}
	if got.Amounts[0].Source != "(context not found)" {
		t.Errorf("source = %q, want placeholder", got.Amounts[0].Source)
	}
}

func TestClassifyValueEpsilon(t *testing.T) {
	rs := DefaultRules()
	got := rs.Classify([]float64{1200}, "Total: 1200.004")
	if got.Amounts[0].Category != constants.TotalBill {
		t.Errorf("category = %s, want total_bill (within epsilon)", got.Amounts[0].Category)
	}
}

func TestClassifyFallback(t *testing.T) {
	rs := DefaultRules()
	got := rs.Classify([]float64{500}, "some unrelated 500 text")
	if got.Amounts[0].Category != constants.Other {
		t.Errorf("category = %s, want other", got.Amounts[0].Category)
	}
	if got.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", got.Confidence)
	}
}

func TestClassifyEqualWeightTieBreak(t *testing.T) {
	// discount and tax share a weight; discount precedes tax in the table,
	// so a value matching both resolves to discount.
	rs := DefaultRules()
	got := rs.Classify([]float64{500}, "Discount: 500\nTax: 500")
	if got.Amounts[0].Category != constants.Discount {
		t.Errorf("category = %s, want discount (earlier rule wins ties)", got.Amounts[0].Category)
	}
}

func TestClassifyHigherWeightWins(t *testing.T) {
	// both subtotal (0.75) and total (0.90) match the same value
	rs := DefaultRules()
	got := rs.Classify([]float64{900}, "Subtotal: 900\nTotal: 900")
	if got.Amounts[0].Category != constants.TotalBill {
		t.Errorf("category = %s, want total_bill", got.Amounts[0].Category)
	}
}

func TestClassifyEmpty(t *testing.T) {
	rs := DefaultRules()
	got := rs.Classify(nil, "Total: 100")
	if len(got.Amounts) != 0 {
		t.Errorf("got %d amounts, want 0", len(got.Amounts))
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
}

func TestCheckConsistency(t *testing.T) {
	mk := func(cat constants.AmountCategory, v float64) ClassifiedAmount {
		return ClassifiedAmount{Category: cat, Value: v, Confidence: 0.9, Source: "x"}
	}

	tests := []struct {
		name     string
		amounts  []ClassifiedAmount
		wantLen  int
		wantFrag string
	}{
		{
			"reconciles",
			[]ClassifiedAmount{mk(constants.TotalBill, 1200), mk(constants.Paid, 1000), mk(constants.Due, 200)},
			0, "",
		},
		{
			"sum mismatch",
			[]ClassifiedAmount{mk(constants.TotalBill, 1200), mk(constants.Paid, 1000), mk(constants.Due, 300)},
			1, "does not reconcile",
		},
		{
			"due exceeds total",
			[]ClassifiedAmount{mk(constants.TotalBill, 1000), mk(constants.Due, 1500)},
			1, "due 1500.00 exceeds total",
		},
		{
			"paid exceeds total",
			[]ClassifiedAmount{mk(constants.TotalBill, 1000), mk(constants.Paid, 1500)},
			1, "paid 1500.00 exceeds total",
		},
		{
			"rounding drift tolerated",
			[]ClassifiedAmount{mk(constants.TotalBill, 1200.5), mk(constants.Paid, 1000), mk(constants.Due, 200)},
			0, "",
		},
		{
			"incomplete set",
			[]ClassifiedAmount{mk(constants.TotalBill, 1200)},
			0, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckConsistency(tt.amounts)
			if len(got) != tt.wantLen {
				t.Fatalf("got %d warnings %v, want %d", len(got), got, tt.wantLen)
			}
			if tt.wantFrag != "" && !strings.Contains(got[0], tt.wantFrag) {
				t.Errorf("warning %q should contain %q", got[0], tt.wantFrag)
			}
		})
	}
}
