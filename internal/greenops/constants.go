package greenops

// Global warming potentials applied by the compositor. They are fixed
// system constants; factor tables that already embed a GWP-weighted value
// bypass Compose entirely.
const (
	// GWPCO2 is the CO2 weight.
	GWPCO2 = 1.0

	// GWPCH4 is the 100-year GWP of methane (IPCC AR4).
	GWPCH4 = 25.0

	// GWPN2O is the 100-year GWP of nitrous oxide (IPCC AR4).
	GWPN2O = 298.0
)

// Mass conversion constants for normalising emissions to tonnes.
const (
	// KgToTonnes converts kilograms to tonnes.
	KgToTonnes = 0.001

	// GramsToTonnes converts grams to tonnes.
	GramsToTonnes = 0.000001

	// TonnesToTonnes is the identity conversion.
	TonnesToTonnes = 1.0

	// PoundsToTonnes converts pounds to tonnes.
	PoundsToTonnes = 0.000453592

	// TonnesToKg converts tonnes to kilograms.
	TonnesToKg = 1000.0
)

// EPA Formula Constants (2024 Edition)
// Source: https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
//
//	equivalency = kg_CO2e / factor
const (
	// EPAMilesDrivenFactor is kg CO2e per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPAHomeDayFactor is kg CO2e per day of average US home electricity.
	EPAHomeDayFactor = 18.3

	// EPATreeSeedlingFactor is kg CO2e absorbed per tree seedling over 10 years.
	EPATreeSeedlingFactor = 60.0
)

// Display thresholds.
const (
	// MinEquivalencyThresholdTonnes is the smallest total for which
	// equivalencies are shown.
	MinEquivalencyThresholdTonnes = 0.001

	// LargeNumberThreshold switches to "~X.X million" format.
	LargeNumberThreshold = 1_000_000

	// BillionThreshold switches to "~X.X billion" format.
	BillionThreshold = 1_000_000_000

	// DisplayPrecision is the number of decimals shown for tCO2e totals.
	DisplayPrecision = 2
)

// UnitTCO2e is the display unit for every emissions total.
const UnitTCO2e = "tCO2e"
