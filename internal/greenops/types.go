// Package greenops holds the emissions arithmetic shared by every
// calculator: the fixed-GWP compositor, mass normalisation to tonnes,
// tCO2e number formatting and rounding, and relatable equivalencies for
// summary output.
package greenops

import "fmt"

// EquivalencyType represents a category of carbon emission equivalency.
type EquivalencyType int

const (
	// EquivalencyMilesDriven converts CO2e to miles driven in an average passenger vehicle.
	EquivalencyMilesDriven EquivalencyType = iota

	// EquivalencyHomeDays converts CO2e to days of average US home electricity use.
	EquivalencyHomeDays

	// EquivalencyTreeSeedlings converts CO2e to tree seedlings grown for 10 years.
	EquivalencyTreeSeedlings
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencyHomeDays:
		return "HomeDays"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// CarbonInput is an emissions mass for equivalency calculation.
type CarbonInput struct {
	// Value is the numeric amount.
	Value float64 `json:"value"`

	// Unit is the mass unit (g, kg, t, Tonnes, tCO2e, lb).
	Unit string `json:"unit"`
}

// EquivalencyResult represents a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput contains all equivalency results for display.
type EquivalencyOutput struct {
	// InputTonnes is the normalized input in tonnes CO2e.
	InputTonnes float64 `json:"input_tonnes"`

	// Results contains calculated equivalencies in priority order.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the full prose format for CLI/TUI output.
	// Example: "Equivalent to driving ~5,208 miles or powering a home for ~55 days"
	DisplayText string `json:"display_text"`

	IsEmpty bool `json:"is_empty"`
}
