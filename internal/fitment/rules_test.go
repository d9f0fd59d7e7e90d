package fitment

import (
	"testing"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

func testVehicles(n int, engine string) []models.Vehicle {
	vehicles := make([]models.Vehicle, n)
	for i := range vehicles {
		vehicles[i] = models.Vehicle{
			ID:        i + 1,
			Make:      "Hyundai",
			Model:     "Tucson",
			YearStart: 2016,
			YearEnd:   2021,
			Engine:    engine,
		}
	}
	return vehicles
}

func TestBuildSeedPlan_CommonPartMatchesAllVehicles(t *testing.T) {
	parts := []models.Part{
		{ID: 10, PartNumber: "OF-1042", Category: models.PartCategoryFilters},
	}
	vehicles := testVehicles(10, "2.5L GDI")

	plan := BuildSeedPlan(parts, vehicles, DefaultRules)

	if len(plan) != 10 {
		t.Fatalf("expected 10 fitment pairs, got %d", len(plan))
	}
	seen := make(map[Pair]bool)
	for _, p := range plan {
		if p.PartID != 10 {
			t.Errorf("unexpected part id %d in plan", p.PartID)
		}
		if seen[p] {
			t.Errorf("duplicate pair %+v in plan", p)
		}
		seen[p] = true
	}
}

func TestBuildSeedPlan_OverlappingRulesDoNotDuplicate(t *testing.T) {
	// The filter part matches both the 2.0L and 2.5L rules for a vehicle
	// whose engine descriptor mentions both displacements.
	parts := []models.Part{
		{ID: 7, PartNumber: "OF-7", Category: models.PartCategoryFilters},
	}
	vehicles := []models.Vehicle{
		{ID: 1, Make: "Kia", Model: "Sportage", Engine: "2.0L/2.5L GDI family"},
	}

	plan := BuildSeedPlan(parts, vehicles, DefaultRules)

	if len(plan) != 1 {
		t.Fatalf("expected single deduplicated pair, got %d", len(plan))
	}
}

func TestBuildSeedPlan_Deterministic(t *testing.T) {
	parts := []models.Part{
		{ID: 3, PartNumber: "BR-HY300", Category: models.PartCategoryBraking},
		{ID: 1, PartNumber: "OF-100", Category: models.PartCategoryFilters},
	}
	vehicles := []models.Vehicle{
		{ID: 2, Make: "Hyundai", Model: "Elantra", Engine: "2.0L MPI"},
		{ID: 1, Make: "Hyundai", Model: "Tucson", Engine: "2.5L GDI"},
	}

	first := BuildSeedPlan(parts, vehicles, DefaultRules)
	second := BuildSeedPlan(parts, vehicles, DefaultRules)

	if len(first) == 0 {
		t.Fatal("expected a non-empty plan")
	}
	if len(first) != len(second) {
		t.Fatalf("plan size changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("plan order changed at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if cur.PartID < prev.PartID || (cur.PartID == prev.PartID && cur.VehicleID <= prev.VehicleID) {
			t.Fatalf("plan not ordered at %d: %+v before %+v", i, prev, cur)
		}
	}
}

func TestRuleMatchesPart(t *testing.T) {
	rule := Rule{PartNumberPrefix: "BR-HY", PartCategory: models.PartCategoryBraking}

	if !rule.MatchesPart(models.Part{PartNumber: "br-hy4410", Category: models.PartCategoryBraking}) {
		t.Error("prefix match should be case-insensitive")
	}
	if rule.MatchesPart(models.Part{PartNumber: "BR-KI200", Category: models.PartCategoryBraking}) {
		t.Error("wrong prefix should not match")
	}
	if rule.MatchesPart(models.Part{PartNumber: "BR-HY4410", Category: models.PartCategoryFilters}) {
		t.Error("wrong category should not match")
	}
}

func TestVehicleSelector_YearOverlap(t *testing.T) {
	sel := VehicleSelector{YearFrom: 2015, YearTo: 2018}

	if !sel.MatchesVehicle(models.Vehicle{YearStart: 2012, YearEnd: 2016}) {
		t.Error("overlapping range should match")
	}
	if sel.MatchesVehicle(models.Vehicle{YearStart: 2008, YearEnd: 2014}) {
		t.Error("range ending before YearFrom should not match")
	}
	if sel.MatchesVehicle(models.Vehicle{YearStart: 2019, YearEnd: 2024}) {
		t.Error("range starting after YearTo should not match")
	}
}

func TestVehicleSelector_EngineContains(t *testing.T) {
	sel := VehicleSelector{EngineContains: "2.5l"}

	if !sel.MatchesVehicle(models.Vehicle{Engine: "2.5L GDI"}) {
		t.Error("engine substring match should be case-insensitive")
	}
	if sel.MatchesVehicle(models.Vehicle{Engine: "1.6L T-GDI"}) {
		t.Error("non-matching engine should not match")
	}
}
