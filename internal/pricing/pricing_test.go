package pricing

import (
	"errors"
	"testing"
)

func validSettings() Settings {
	return Settings{
		ExchangeRate:   0.65,
		TransportBase:  50000,
		TransportPerKg: 1000,
		CustomsRate:    0.10,
		MarginRate:     0.35,
	}
}

func TestComputeLandedPrice_VehicleQuote(t *testing.T) {
	// Hyundai Tucson: 35,000,000 KRW, 1650 kg, single unit
	b, err := ComputeLandedPrice(35_000_000, 1, 1650, validSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.SupplierCost != 22_750_000 {
		t.Errorf("supplier cost: got %d, want 22750000", b.SupplierCost)
	}
	if b.TransportCost != 1_700_000 {
		t.Errorf("transport cost: got %d, want 1700000", b.TransportCost)
	}
	if b.CustomsCost != 2_275_000 {
		t.Errorf("customs cost: got %d, want 2275000", b.CustomsCost)
	}
	if b.Margin != 9_353_750 {
		t.Errorf("margin: got %d, want 9353750", b.Margin)
	}
	if b.Total != 36_078_750 {
		t.Errorf("total: got %d, want 36078750", b.Total)
	}
}

func TestComputeLandedPrice_BreakdownSumsToTotal(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		quantity int
		weight   float64
	}{
		{"small electronics", 450_000, 3, 2.4},
		{"appliance", 1_200_000, 1, 85},
		{"bulk parts", 38_000, 40, 0.6},
		{"zero weight", 90_000, 2, 0},
	}

	for _, tc := range cases {
		b, err := ComputeLandedPrice(tc.price, tc.quantity, tc.weight, validSettings())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		sum := b.SupplierCost + b.TransportCost + b.CustomsCost + b.Margin
		if b.Total != sum {
			t.Errorf("%s: total %d != component sum %d", tc.name, b.Total, sum)
		}
	}
}

func TestComputeLandedPrice_MonotonicInQuantity(t *testing.T) {
	var prev int64
	for qty := 1; qty <= 25; qty++ {
		b, err := ComputeLandedPrice(150_000, qty, 3.5, validSettings())
		if err != nil {
			t.Fatalf("quantity %d: unexpected error: %v", qty, err)
		}
		if b.Total < prev {
			t.Fatalf("total decreased from %d to %d at quantity %d", prev, b.Total, qty)
		}
		prev = b.Total
	}
}

func TestComputeLandedPrice_ZeroWeightStillPaysBaseTransport(t *testing.T) {
	b, err := ComputeLandedPrice(100_000, 1, 0, validSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TransportCost != 50_000 {
		t.Errorf("transport cost floor: got %d, want 50000", b.TransportCost)
	}
}

func TestComputeLandedPrice_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		quantity int
		weight   float64
	}{
		{"zero price", 0, 1, 10},
		{"negative price", -500, 1, 10},
		{"zero quantity", 100_000, 0, 10},
		{"negative quantity", 100_000, -2, 10},
		{"negative weight", 100_000, 1, -1},
	}

	for _, tc := range cases {
		_, err := ComputeLandedPrice(tc.price, tc.quantity, tc.weight, validSettings())
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: got %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestComputeLandedPrice_RejectsMisconfiguredRates(t *testing.T) {
	zero := func(mutate func(*Settings)) Settings {
		s := validSettings()
		mutate(&s)
		return s
	}

	cases := []struct {
		name     string
		settings Settings
	}{
		{"zero exchange rate", zero(func(s *Settings) { s.ExchangeRate = 0 })},
		{"zero transport base", zero(func(s *Settings) { s.TransportBase = 0 })},
		{"zero transport per kg", zero(func(s *Settings) { s.TransportPerKg = 0 })},
		{"zero customs rate", zero(func(s *Settings) { s.CustomsRate = 0 })},
		{"negative margin rate", zero(func(s *Settings) { s.MarginRate = -0.1 })},
	}

	for _, tc := range cases {
		_, err := ComputeLandedPrice(100_000, 1, 5, tc.settings)
		if !errors.Is(err, ErrMisconfiguredRates) {
			t.Errorf("%s: got %v, want ErrMisconfiguredRates", tc.name, err)
		}
	}
}
