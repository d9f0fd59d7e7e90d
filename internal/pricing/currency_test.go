package pricing

import (
	"errors"
	"math"
	"testing"
)

func testRates(t *testing.T) Rates {
	t.Helper()
	r, err := NewRates(0.65, 655.957)
	if err != nil {
		t.Fatalf("building rates: %v", err)
	}
	return r
}

// minorUnitIn expresses one minor unit of currency c in units of currency in
func minorUnitIn(r Rates, c, in Currency) float64 {
	unit := 1.0
	if c == CurrencyEUR {
		unit = 0.01
	}
	v, _ := r.Convert(unit, c, in)
	return math.Abs(v)
}

func TestConvert_RoundTripAllPairs(t *testing.T) {
	r := testRates(t)
	currencies := []Currency{CurrencyXOF, CurrencyKRW, CurrencyEUR}
	amounts := []float64{1, 250, 36_078_750, 999_999}

	for _, from := range currencies {
		for _, to := range currencies {
			if from == to {
				continue
			}
			for _, x := range amounts {
				mid, err := r.Convert(x, from, to)
				if err != nil {
					t.Fatalf("%s->%s: %v", from, to, err)
				}
				back, err := r.Convert(mid, to, from)
				if err != nil {
					t.Fatalf("%s->%s: %v", to, from, err)
				}
				// Rounding in the intermediate currency may cost up to one of
				// its minor units, plus one minor unit of the origin.
				tol := minorUnitIn(r, to, from) + 1
				if math.Abs(back-x) > tol {
					t.Errorf("%s->%s->%s: %v came back as %v (tolerance %v)", from, to, from, x, back, tol)
				}
			}
		}
	}
}

func TestConvert_Composes(t *testing.T) {
	r := testRates(t)
	x := 5_000_000.0 // KRW

	viaXOF, err := r.Convert(x, CurrencyKRW, CurrencyXOF)
	if err != nil {
		t.Fatalf("KRW->XOF: %v", err)
	}
	indirect, err := r.Convert(viaXOF, CurrencyXOF, CurrencyEUR)
	if err != nil {
		t.Fatalf("XOF->EUR: %v", err)
	}
	direct, err := r.Convert(x, CurrencyKRW, CurrencyEUR)
	if err != nil {
		t.Fatalf("KRW->EUR: %v", err)
	}

	if math.Abs(indirect-direct) > 0.02 {
		t.Errorf("KRW->XOF->EUR %v differs from KRW->EUR %v beyond rounding", indirect, direct)
	}
}

func TestConvert_Idempotent(t *testing.T) {
	r := testRates(t)
	a, err := r.Convert(123_456, CurrencyKRW, CurrencyXOF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.Convert(123_456, CurrencyKRW, CurrencyXOF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("same conversion produced %v then %v", a, b)
	}
}

func TestConvert_RejectsUnknownCurrency(t *testing.T) {
	r := testRates(t)
	if _, err := r.Convert(100, Currency("USD"), CurrencyXOF); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput for unsupported source currency", err)
	}
	if _, err := r.Convert(100, CurrencyXOF, Currency("GBP")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput for unsupported target currency", err)
	}
}

func TestNewRates_RejectsNonPositiveRates(t *testing.T) {
	if _, err := NewRates(0, 655.957); !errors.Is(err, ErrMisconfiguredRates) {
		t.Errorf("got %v, want ErrMisconfiguredRates for zero KRW rate", err)
	}
	if _, err := NewRates(0.65, -1); !errors.Is(err, ErrMisconfiguredRates) {
		t.Errorf("got %v, want ErrMisconfiguredRates for negative EUR rate", err)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		amount float64
		code   Currency
		want   string
	}{
		{36_078_750, CurrencyXOF, "36,078,750 FCFA"},
		{950, CurrencyXOF, "950 FCFA"},
		{35_000_000, CurrencyKRW, "₩35,000,000"},
		{1234.5, CurrencyEUR, "€1,234.50"},
		{0.99, CurrencyEUR, "€0.99"},
	}

	for _, tc := range cases {
		got, err := Format(tc.amount, tc.code)
		if err != nil {
			t.Fatalf("Format(%v, %s): %v", tc.amount, tc.code, err)
		}
		if got != tc.want {
			t.Errorf("Format(%v, %s): got %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}

	if _, err := Format(10, Currency("USD")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput for unsupported currency", err)
	}
}
