package greenops

import (
	"math"
	"strings"
)

// getUnitFactor returns the conversion factor to tonnes for the provided
// mass unit and whether the unit is recognized. Matching is case-insensitive.
func getUnitFactor(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "gco2e":
		return GramsToTonnes, true
	case "kg", "kgco2e":
		return KgToTonnes, true
	case "t", "tonnes", "tonne", "tco2e":
		return TonnesToTonnes, true
	case "lb", "lbco2e":
		return PoundsToTonnes, true
	default:
		return 0, false
	}
}

// NormalizeToTonnes converts a mass in any recognized unit to tonnes.
//
// Recognized units: g, kg, t, Tonnes, lb and their CO2e suffixed forms.
// Negative values are converted arithmetically; record-level validation is
// not this package's concern.
//
// Returns ErrInvalidUnit if the unit is not recognized and
// ErrCalculationOverflow for Inf/NaN input or an overflowing result.
func NormalizeToTonnes(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}

	factor, ok := getUnitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}

	return result, nil
}

// MassScale returns the multiplier that brings a quantity in the given
// record unit to tonnes: 0.001 for kg and 1 otherwise.
func MassScale(isKg bool) float64 {
	if isKg {
		return KgToTonnes
	}
	return TonnesToTonnes
}

// IsRecognizedUnit reports whether unit is a supported mass unit.
func IsRecognizedUnit(unit string) bool {
	_, ok := getUnitFactor(unit)
	return ok
}
