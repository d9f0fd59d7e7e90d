package fitment

import (
	"sort"
	"strings"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// Rule declares which vehicles a family of parts fits. Rules replace per-part
// conditional branches in import scripts: adding a compatibility family means
// adding a row here, not code.
type Rule struct {
	// Name labels the rule in seeding logs
	Name string

	// PartNumberPrefix selects parts whose part number starts with the
	// prefix (case-insensitive). Empty matches any part number.
	PartNumberPrefix string

	// PartCategory selects parts of this category. Empty matches any.
	PartCategory models.PartCategory

	// Selector picks the vehicles the matched parts fit
	Selector VehicleSelector
}

// VehicleSelector is a conjunction of vehicle predicates. Zero-valued fields
// do not constrain.
type VehicleSelector struct {
	MakeEquals     string // case-insensitive make match
	ModelEquals    string // case-insensitive model match
	EngineContains string // case-insensitive substring of the engine descriptor
	YearFrom       int    // vehicle range must overlap [YearFrom, YearTo]
	YearTo         int
}

// MatchesPart reports whether the rule's part side selects the given part
func (r Rule) MatchesPart(p models.Part) bool {
	if r.PartNumberPrefix != "" && !strings.HasPrefix(strings.ToUpper(p.PartNumber), strings.ToUpper(r.PartNumberPrefix)) {
		return false
	}
	if r.PartCategory != "" && p.Category != r.PartCategory {
		return false
	}
	return true
}

// MatchesVehicle reports whether the selector picks the given vehicle
func (s VehicleSelector) MatchesVehicle(v models.Vehicle) bool {
	if s.MakeEquals != "" && !strings.EqualFold(s.MakeEquals, v.Make) {
		return false
	}
	if s.ModelEquals != "" && !strings.EqualFold(s.ModelEquals, v.Model) {
		return false
	}
	if s.EngineContains != "" && !strings.Contains(strings.ToLower(v.Engine), strings.ToLower(s.EngineContains)) {
		return false
	}
	if s.YearFrom != 0 && v.YearEnd != 0 && v.YearEnd < s.YearFrom {
		return false
	}
	if s.YearTo != 0 && v.YearStart != 0 && v.YearStart > s.YearTo {
		return false
	}
	return true
}

// Pair is one (part, vehicle) fitment link in a seed plan
type Pair struct {
	PartID    int
	VehicleID int
}

// BuildSeedPlan evaluates the rule set over the part and vehicle catalogs and
// returns the deduplicated cross-product of matching pairs, ordered by part
// then vehicle id. Two rules selecting the same pair contribute it once, so
// persisting the plan can never violate the relation's uniqueness invariant.
func BuildSeedPlan(parts []models.Part, vehicles []models.Vehicle, rules []Rule) []Pair {
	seen := make(map[Pair]struct{})
	var plan []Pair

	for _, rule := range rules {
		for _, part := range parts {
			if !rule.MatchesPart(part) {
				continue
			}
			for _, vehicle := range vehicles {
				if !rule.Selector.MatchesVehicle(vehicle) {
					continue
				}
				pair := Pair{PartID: part.ID, VehicleID: vehicle.ID}
				if _, dup := seen[pair]; dup {
					continue
				}
				seen[pair] = struct{}{}
				plan = append(plan, pair)
			}
		}
	}

	sort.Slice(plan, func(i, j int) bool {
		if plan[i].PartID != plan[j].PartID {
			return plan[i].PartID < plan[j].PartID
		}
		return plan[i].VehicleID < plan[j].VehicleID
	})
	return plan
}

// DefaultRules is the compatibility rule table applied by the seeding tool.
// Part numbers follow the supplier convention: the prefix encodes the range.
var DefaultRules = []Rule{
	{
		Name:             "universal oil filters fit all 2.0L engines",
		PartNumberPrefix: "OF-",
		PartCategory:     models.PartCategoryFilters,
		Selector:         VehicleSelector{EngineContains: "2.0L"},
	},
	{
		Name:             "universal oil filters fit all 2.5L engines",
		PartNumberPrefix: "OF-",
		PartCategory:     models.PartCategoryFilters,
		Selector:         VehicleSelector{EngineContains: "2.5L"},
	},
	{
		Name:             "Hyundai brake range",
		PartNumberPrefix: "BR-HY",
		PartCategory:     models.PartCategoryBraking,
		Selector:         VehicleSelector{MakeEquals: "Hyundai"},
	},
	{
		Name:             "Kia brake range",
		PartNumberPrefix: "BR-KI",
		PartCategory:     models.PartCategoryBraking,
		Selector:         VehicleSelector{MakeEquals: "Kia"},
	},
	{
		Name:         "ignition parts for petrol engines",
		PartCategory: models.PartCategoryIgnition,
		Selector:     VehicleSelector{EngineContains: "GDI"},
	},
	{
		Name:             "modern suspension range (2015+)",
		PartNumberPrefix: "SU-",
		PartCategory:     models.PartCategorySuspension,
		Selector:         VehicleSelector{YearFrom: 2015},
	},
}
