package emissions

import "strings"

// Unit is the unit selector on an activity record.
type Unit string

// Units recognised by the factor resolver. Any other value is treated as an
// energy unit.
const (
	UnitKg         Unit = "kg"
	UnitTonnes     Unit = "Tonnes"
	UnitLitre      Unit = "Litre"
	UnitCubicMetre Unit = "m³"
	UnitKWh        Unit = "kWh"
)

// UnitClass selects the factor variant a unit reads from the reference table.
type UnitClass int

const (
	// UnitClassEnergy is the fallback variant.
	UnitClassEnergy UnitClass = iota
	UnitClassMass
	UnitClassLiquid
	UnitClassGas
)

// String returns the variant name used by factor-table columns.
func (c UnitClass) String() string {
	switch c {
	case UnitClassMass:
		return "mass"
	case UnitClassLiquid:
		return "liquid"
	case UnitClassGas:
		return "gas"
	case UnitClassEnergy:
		return "energy"
	default:
		return "energy"
	}
}

// ParseUnit normalises common spellings ("tonnes", "m3", "litres") to the
// canonical unit. Unknown strings are returned trimmed and unchanged.
func ParseUnit(s string) Unit {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "kg", "kgs", "kilogram", "kilograms":
		return UnitKg
	case "tonnes", "tonne", "t", "tons":
		return UnitTonnes
	case "litre", "litres", "liter", "liters", "l":
		return UnitLitre
	case "m³", "m3", "cubic metre", "cubic meter":
		return UnitCubicMetre
	case "kwh":
		return UnitKWh
	}
	return Unit(trimmed)
}

// Class returns the factor variant for the unit.
func (u Unit) Class() UnitClass {
	switch u {
	case UnitKg, UnitTonnes:
		return UnitClassMass
	case UnitLitre:
		return UnitClassLiquid
	case UnitCubicMetre:
		return UnitClassGas
	case UnitKWh:
		return UnitClassEnergy
	default:
		return UnitClassEnergy
	}
}

// IsKg reports whether quantities in this unit must be divided by 1000 to
// obtain tonnes.
func (u Unit) IsKg() bool {
	return u == UnitKg
}
