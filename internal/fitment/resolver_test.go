package fitment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// fakeStore is an in-memory Store for resolver tests
type fakeStore struct {
	vehicles map[int]models.Vehicle
	parts    map[int]models.Part
	fitments map[Pair]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles: make(map[int]models.Vehicle),
		parts:    make(map[int]models.Part),
		fitments: make(map[Pair]bool),
	}
}

func (s *fakeStore) link(partID, vehicleID int) {
	s.fitments[Pair{PartID: partID, VehicleID: vehicleID}] = true
}

func (s *fakeStore) VehicleExists(_ context.Context, vehicleID int) (bool, error) {
	_, ok := s.vehicles[vehicleID]
	return ok, nil
}

func (s *fakeStore) GetPart(_ context.Context, partID int) (*models.Part, error) {
	p, ok := s.parts[partID]
	if !ok {
		return nil, fmt.Errorf("part %d: %w", partID, ErrNotFound)
	}
	return &p, nil
}

func (s *fakeStore) FitmentExists(_ context.Context, partID, vehicleID int) (bool, error) {
	return s.fitments[Pair{PartID: partID, VehicleID: vehicleID}], nil
}

func (s *fakeStore) ListPartsForVehicle(_ context.Context, vehicleID int, q ListPartsQuery) (models.PartListResult, error) {
	var matched []models.Part
	for pair := range s.fitments {
		if pair.VehicleID != vehicleID {
			continue
		}
		p := s.parts[pair.PartID]
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.PartNumber), needle) &&
				!strings.Contains(strings.ToLower(p.OEMNumber), needle) {
				continue
			}
		}
		matched = append(matched, p)
	}

	total := len(matched)
	if q.Offset > len(matched) {
		matched = nil
	} else {
		matched = matched[q.Offset:]
	}
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return models.PartListResult{Parts: matched, Total: total}, nil
}

func (s *fakeStore) ListCompatiblePartsByCategory(_ context.Context, vehicleID int, category models.PartCategory, limit int) ([]models.Part, error) {
	var out []models.Part
	for pair := range s.fitments {
		if pair.VehicleID != vehicleID {
			continue
		}
		p := s.parts[pair.PartID]
		if p.Category != category {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func seededStore() *fakeStore {
	s := newFakeStore()
	s.vehicles[1] = models.Vehicle{ID: 1, Make: "Hyundai", Model: "Tucson", Engine: "2.5L GDI"}
	s.parts[10] = models.Part{ID: 10, Name: "Oil filter", PartNumber: "OF-100", OEMNumber: "26300-35505", Category: models.PartCategoryFilters, StockQuantity: intPtr(12)}
	s.parts[11] = models.Part{ID: 11, Name: "Air filter", PartNumber: "AF-210", OEMNumber: "28113-D3300", Category: models.PartCategoryFilters, StockQuantity: intPtr(4)}
	s.parts[20] = models.Part{ID: 20, Name: "Front brake pads", PartNumber: "BR-HY300", Category: models.PartCategoryBraking}
	s.link(10, 1)
	s.link(11, 1)
	return s
}

func TestCheckCompatibility_LinkedPair(t *testing.T) {
	r := NewResolver(seededStore())

	res, err := r.CheckCompatibility(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsCompatible {
		t.Errorf("expected compatible, got reason %q", res.Reason)
	}
}

func TestCheckCompatibility_UnlinkedPairSuggestsAlternatives(t *testing.T) {
	r := NewResolver(seededStore())

	// Part 20 (braking) is not linked to vehicle 1; the two linked filter
	// parts are the wrong category, so there must be no alternatives.
	res, err := r.CheckCompatibility(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsCompatible {
		t.Fatal("expected incompatible result")
	}
	if res.Reason == "" {
		t.Error("incompatible result must carry a reason")
	}
	if len(res.Alternatives) != 0 {
		t.Errorf("expected no alternatives outside the part's category, got %d", len(res.Alternatives))
	}

	// An unlinked filter part must pick up the linked filters as alternatives.
	s := seededStore()
	s.parts[12] = models.Part{ID: 12, Name: "Cabin filter", PartNumber: "CF-900", Category: models.PartCategoryFilters}
	r = NewResolver(s)

	res, err = r.CheckCompatibility(context.Background(), 1, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsCompatible {
		t.Fatal("expected incompatible result")
	}
	if len(res.Alternatives) == 0 {
		t.Fatal("expected same-category alternatives for the vehicle")
	}
	for _, alt := range res.Alternatives {
		if alt.ID == 12 {
			t.Error("the queried part must not appear among its own alternatives")
		}
		if alt.Category != models.PartCategoryFilters {
			t.Errorf("alternative %d has category %s, want filters", alt.ID, alt.Category)
		}
	}
}

func TestCheckCompatibility_DistinguishesNotFound(t *testing.T) {
	r := NewResolver(seededStore())

	res, err := r.CheckCompatibility(context.Background(), 99, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsCompatible || !strings.Contains(res.Reason, "vehicle 99 not found") {
		t.Errorf("unknown vehicle: got %+v, want not-found reason", res)
	}

	res, err = r.CheckCompatibility(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsCompatible || !strings.Contains(res.Reason, "part 99 not found") {
		t.Errorf("unknown part: got %+v, want not-found reason", res)
	}
}

func TestGetPartsForVehicle_FiltersAndPaginates(t *testing.T) {
	r := NewResolver(seededStore())

	res, err := r.GetPartsForVehicle(context.Background(), 1, ListPartsQuery{Category: models.PartCategoryFilters, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total must count the filtered, unpaginated set: got %d, want 2", res.Total)
	}
	if len(res.Parts) != 1 {
		t.Errorf("page size: got %d parts, want 1", len(res.Parts))
	}

	res, err = r.GetPartsForVehicle(context.Background(), 1, ListPartsQuery{Search: "of-100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || len(res.Parts) != 1 || res.Parts[0].ID != 10 {
		t.Errorf("search by part number: got %+v", res)
	}
}

func TestGetPartsForVehicle_UnknownVehicle(t *testing.T) {
	r := NewResolver(seededStore())

	_, err := r.GetPartsForVehicle(context.Background(), 42, ListPartsQuery{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestValidateStock(t *testing.T) {
	r := NewResolver(seededStore())

	ok, err := r.ValidateStock(context.Background(), 10, 12)
	if err != nil || !ok {
		t.Errorf("exact stock should validate: ok=%v err=%v", ok, err)
	}
	ok, err = r.ValidateStock(context.Background(), 10, 13)
	if err != nil || ok {
		t.Errorf("over-stock request should fail: ok=%v err=%v", ok, err)
	}
	// NULL stock fails closed
	ok, err = r.ValidateStock(context.Background(), 20, 1)
	if err != nil || ok {
		t.Errorf("nil stock should fail closed: ok=%v err=%v", ok, err)
	}
	if _, err = r.ValidateStock(context.Background(), 99, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown part: got %v, want ErrNotFound", err)
	}
}
