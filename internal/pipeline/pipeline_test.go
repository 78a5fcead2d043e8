package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/claimspipe/billamounts/constants"
	"github.com/claimspipe/billamounts/internal/common"
	"github.com/claimspipe/billamounts/internal/ocr"
)

// fakeEngine returns canned recognition output without shelling out.
type fakeEngine struct {
	text string
	conf float64
	err  error
}

func (f *fakeEngine) Recognize(_ context.Context, _ []byte) (ocr.RecognitionResult, error) {
	if f.err != nil {
		return ocr.RecognitionResult{}, f.err
	}
	return ocr.RecognitionResult{Text: f.text, Confidence: f.conf, Duration: time.Millisecond}, nil
}

func newTestRunner(engine ocr.Engine) *Runner {
	return New(Config{}, engine, nil, nil)
}

func TestRunTextInput(t *testing.T) {
	r := newTestRunner(nil)
	res, err := r.Run(context.Background(), Input{Text: "Total: INR 1200 | Paid: 1000 | Due: 200"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Status != constants.StatusOK {
		t.Fatalf("status = %s, want ok (reason %q)", res.Status, res.Reason)
	}
	if res.Currency != "INR" {
		t.Errorf("currency = %s, want INR", res.Currency)
	}
	want := []struct {
		typ string
		val float64
	}{
		{"total_bill", 1200},
		{"paid", 1000},
		{"due", 200},
	}
	if len(res.Amounts) != len(want) {
		t.Fatalf("got %d amounts %v, want %d", len(res.Amounts), res.Amounts, len(want))
	}
	for i, w := range want {
		if res.Amounts[i].Type != w.typ || res.Amounts[i].Value != w.val {
			t.Errorf("amount %d = %s/%v, want %s/%v", i, res.Amounts[i].Type, res.Amounts[i].Value, w.typ, w.val)
		}
		if res.Amounts[i].Source == "" {
			t.Errorf("amount %d has empty source", i)
		}
	}
	if res.Confidence != 0.90 {
		t.Errorf("confidence = %v, want 0.90", res.Confidence)
	}
}

func TestRunIdempotent(t *testing.T) {
	r := newTestRunner(nil)
	in := Input{Text: "Total: ₹1,234.50\nPaid: 1000\nDue: 234.50"}

	a, err := r.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := r.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ across runs:\n%+v\n%+v", a, b)
	}
}

func TestRunGarbledOCRText(t *testing.T) {
	r := newTestRunner(nil)
	res, err := r.Run(context.Background(), Input{Text: "Total: l200\nPaid: 1200"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != constants.StatusOK {
		t.Fatalf("status = %s, want ok (reason %q)", res.Status, res.Reason)
	}
	found := false
	for _, a := range res.Amounts {
		if a.Value == 1200 {
			found = true
		}
	}
	if !found {
		t.Errorf("amounts = %v, expected repaired 1200", res.Amounts)
	}
}

func TestRunNoAmountsFound(t *testing.T) {
	r := newTestRunner(nil)
	res, err := r.Run(context.Background(), Input{Text: "Hello World"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != constants.StatusNoAmountsFound {
		t.Errorf("status = %s, want no_amounts_found", res.Status)
	}
	if res.Reason == "" {
		t.Error("degenerate status must carry a reason")
	}
	if len(res.Amounts) != 0 {
		t.Errorf("amounts = %v, want none", res.Amounts)
	}
}

func TestRunInvalidInput(t *testing.T) {
	r := newTestRunner(nil)
	for _, in := range []Input{
		{},
		{Text: "Total: 100", Image: []byte{1, 2, 3}},
	} {
		_, err := r.Run(context.Background(), in)
		if err == nil {
			t.Errorf("Run(%+v) should fail", in)
			continue
		}
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("error %v should unwrap to ErrInvalidInput", err)
		}
	}
}

func TestRunImageOK(t *testing.T) {
	r := newTestRunner(&fakeEngine{text: "Total: 1200\nPaid: 1200", conf: 0.92})
	res, err := r.Run(context.Background(), Input{Image: []byte("img")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != constants.StatusOK {
		t.Errorf("status = %s, want ok (reason %q)", res.Status, res.Reason)
	}
}

func TestRunImageLowConfidence(t *testing.T) {
	r := newTestRunner(&fakeEngine{text: "Total: 1200", conf: 0.2})
	res, err := r.Run(context.Background(), Input{Image: []byte("img")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != constants.StatusLowConfidence {
		t.Errorf("status = %s, want low_confidence", res.Status)
	}
	if res.Confidence != 0.2 {
		t.Errorf("confidence = %v, want 0.2", res.Confidence)
	}
	if len(res.Amounts) != 0 {
		t.Errorf("amounts = %v, want none on low confidence", res.Amounts)
	}
}

func TestRunImageEmptyText(t *testing.T) {
	r := newTestRunner(&fakeEngine{text: "   ", conf: 0.9})
	res, err := r.Run(context.Background(), Input{Image: []byte("img")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != constants.StatusNoAmountsFound {
		t.Errorf("status = %s, want no_amounts_found", res.Status)
	}
}

func TestRunImageEngineFailure(t *testing.T) {
	r := newTestRunner(&fakeEngine{err: errors.New("boom")})
	if _, err := r.Run(context.Background(), Input{Image: []byte("img")}); err == nil {
		t.Error("expected error when engine fails")
	}
}

func TestRunImageNoEngine(t *testing.T) {
	r := newTestRunner(nil)
	_, err := r.Run(context.Background(), Input{Image: []byte("img")})
	if err == nil {
		t.Fatal("expected error without an engine")
	}
	if !errors.Is(err, common.ErrOCR) {
		t.Errorf("error %v should unwrap to ErrOCR", err)
	}
}

func TestRunInvalidAmounts(t *testing.T) {
	r := newTestRunner(nil)
	res, err := r.Run(context.Background(), Input{Text: "Total: 99999999"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != constants.StatusInvalidAmounts {
		t.Errorf("status = %s, want invalid_amounts (reason %q)", res.Status, res.Reason)
	}
	if len(res.Amounts) != 0 {
		t.Errorf("amounts = %v, want none", res.Amounts)
	}
}

func TestRunSchemaValidation(t *testing.T) {
	r := New(Config{ValidateSchema: true}, nil, nil, nil)
	res, err := r.Run(context.Background(), Input{Text: "Total: INR 1200 | Paid: 1000 | Due: 200"})
	if err != nil {
		t.Fatalf("Run with schema validation: %v", err)
	}
	if res.Status != constants.StatusOK {
		t.Errorf("status = %s, want ok", res.Status)
	}
}

func TestValidateResult(t *testing.T) {
	ok := Result{
		Currency:   "INR",
		Amounts:    []Amount{{Type: "total_bill", Value: 1200, Source: "Total: 1200"}},
		Status:     constants.StatusOK,
		Confidence: 0.9,
	}
	if err := ValidateResult(ok); err != nil {
		t.Errorf("valid result rejected: %v", err)
	}

	bad := Result{Status: "bogus"}
	if err := ValidateResult(bad); err == nil {
		t.Error("unknown status should fail schema validation")
	}
}
