// Package fitment resolves which auto parts are compatible with which
// vehicles. Compatibility is an explicit many-to-many relation, not an
// attribute of the part, and the resolver only reads it.
package fitment

import (
	"context"
	"errors"
	"fmt"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// ErrNotFound marks a vehicle or part id that does not exist. Callers must be
// able to tell "no such part" from "part does not fit".
var ErrNotFound = errors.New("not found")

// maxAlternatives caps the suggestion list attached to a negative
// compatibility answer.
const maxAlternatives = 5

// ListPartsQuery narrows a parts-for-vehicle lookup
type ListPartsQuery struct {
	Search   string
	Category models.PartCategory
	Limit    int
	Offset   int
}

// Store is the slice of the relational store the resolver needs. The
// database layer implements it; tests use an in-memory fake.
type Store interface {
	VehicleExists(ctx context.Context, vehicleID int) (bool, error)
	GetPart(ctx context.Context, partID int) (*models.Part, error)
	FitmentExists(ctx context.Context, partID, vehicleID int) (bool, error)
	ListPartsForVehicle(ctx context.Context, vehicleID int, q ListPartsQuery) (models.PartListResult, error)
	ListCompatiblePartsByCategory(ctx context.Context, vehicleID int, category models.PartCategory, limit int) ([]models.Part, error)
}

// Resolver answers fitment and stock questions against a Store snapshot. It
// holds no state of its own and is safe for concurrent use.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver backed by the given store
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// GetPartsForVehicle returns the parts linked to a vehicle through the
// fitment relation, narrowed by the query. The result total counts the
// filtered set before pagination. An unknown vehicle yields ErrNotFound,
// never an empty page.
func (r *Resolver) GetPartsForVehicle(ctx context.Context, vehicleID int, q ListPartsQuery) (models.PartListResult, error) {
	exists, err := r.store.VehicleExists(ctx, vehicleID)
	if err != nil {
		return models.PartListResult{}, fmt.Errorf("checking vehicle %d: %w", vehicleID, err)
	}
	if !exists {
		return models.PartListResult{}, fmt.Errorf("vehicle %d: %w", vehicleID, ErrNotFound)
	}

	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	res, err := r.store.ListPartsForVehicle(ctx, vehicleID, q)
	if err != nil {
		return models.PartListResult{}, fmt.Errorf("listing parts for vehicle %d: %w", vehicleID, err)
	}
	if res.Parts == nil {
		res.Parts = []models.Part{}
	}
	return res, nil
}

// CheckCompatibility answers whether a single part fits a single vehicle.
// Missing ids produce distinct not-found reasons; an unlinked pair produces a
// negative answer with alternative parts of the same category that do fit.
func (r *Resolver) CheckCompatibility(ctx context.Context, vehicleID, partID int) (models.CompatibilityResult, error) {
	vehicleOK, err := r.store.VehicleExists(ctx, vehicleID)
	if err != nil {
		return models.CompatibilityResult{}, fmt.Errorf("checking vehicle %d: %w", vehicleID, err)
	}
	if !vehicleOK {
		return models.CompatibilityResult{
			IsCompatible: false,
			Reason:       fmt.Sprintf("vehicle %d not found", vehicleID),
		}, nil
	}

	part, err := r.store.GetPart(ctx, partID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.CompatibilityResult{
				IsCompatible: false,
				Reason:       fmt.Sprintf("part %d not found", partID),
			}, nil
		}
		return models.CompatibilityResult{}, fmt.Errorf("loading part %d: %w", partID, err)
	}

	linked, err := r.store.FitmentExists(ctx, partID, vehicleID)
	if err != nil {
		return models.CompatibilityResult{}, fmt.Errorf("checking fitment (%d,%d): %w", partID, vehicleID, err)
	}
	if linked {
		return models.CompatibilityResult{IsCompatible: true}, nil
	}

	result := models.CompatibilityResult{
		IsCompatible: false,
		Reason:       fmt.Sprintf("part %s is not compatible with this vehicle", part.PartNumber),
	}

	// Best effort: suggest same-category parts that do fit. A suggestion
	// failure must not mask the compatibility answer.
	alternatives, err := r.store.ListCompatiblePartsByCategory(ctx, vehicleID, part.Category, maxAlternatives)
	if err == nil {
		for _, alt := range alternatives {
			if alt.ID != partID {
				result.Alternatives = append(result.Alternatives, alt)
			}
		}
	}
	return result, nil
}

// ValidateStock reports whether a part can cover the requested quantity.
// NULL stock counts as zero.
func (r *Resolver) ValidateStock(ctx context.Context, partID, requestedQty int) (bool, error) {
	if requestedQty <= 0 {
		return false, fmt.Errorf("requested quantity %d must be positive", requestedQty)
	}
	part, err := r.store.GetPart(ctx, partID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, fmt.Errorf("part %d: %w", partID, ErrNotFound)
		}
		return false, fmt.Errorf("loading part %d: %w", partID, err)
	}
	return part.AvailableStock() >= requestedQty, nil
}
