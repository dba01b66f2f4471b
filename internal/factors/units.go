package factors

import (
	"slices"

	"github.com/rshade/ghgledger/internal/emissions"
)

// AllowedUnits returns the unit selectors offered for a stationary fuel.
// Natural gas is the only fuel measured by volume of gas; solid fuels and
// biomass are mass-only.
func AllowedUnits(fuelType, fuelName string) []emissions.Unit {
	if fold(fuelName) == "natural gas" {
		return []emissions.Unit{emissions.UnitKg, emissions.UnitTonnes, emissions.UnitCubicMetre}
	}
	switch fold(fuelType) {
	case "solid fossil", "biomass", "gaseous fossil":
		return []emissions.Unit{emissions.UnitKg, emissions.UnitTonnes}
	case "liquid fossil":
		return []emissions.Unit{emissions.UnitKg, emissions.UnitTonnes, emissions.UnitLitre}
	}
	return []emissions.Unit{emissions.UnitKg, emissions.UnitTonnes, emissions.UnitLitre, emissions.UnitCubicMetre}
}

// IsUnitAllowed reports whether unit is offered for the fuel.
func IsUnitAllowed(fuelType, fuelName string, unit emissions.Unit) bool {
	return slices.Contains(AllowedUnits(fuelType, fuelName), unit)
}

// FuelTypes returns the distinct stationary fuel types in sorted order.
func (t *Table) FuelTypes() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range t.Stationary {
		if _, ok := seen[f.FuelType]; ok {
			continue
		}
		seen[f.FuelType] = struct{}{}
		out = append(out, f.FuelType)
	}
	slices.Sort(out)
	return out
}

// Fuels returns the fuel names for a fuel type in sorted order.
func (t *Table) Fuels(fuelType string) []string {
	var out []string
	for _, f := range t.Stationary {
		if fold(f.FuelType) == fold(fuelType) {
			out = append(out, f.FuelName)
		}
	}
	slices.Sort(out)
	return out
}

// RefrigerantNames returns gas names in table order.
func (t *Table) RefrigerantNames() []string {
	out := make([]string, 0, len(t.Refrigerants))
	for _, g := range t.Refrigerants {
		out = append(out, g.Name)
	}
	return out
}
