package greenops

import (
	"fmt"
	"math"
)

// Calculate computes equivalencies for an emissions total.
//
// The input is normalised to tonnes, then converted to kg for the EPA
// formulas. Totals below MinEquivalencyThresholdTonnes return an empty
// output with no error. Negative totals return ErrNegativeValue.
//
// Example:
//
//	output, err := Calculate(CarbonInput{Value: 1.0, Unit: "tCO2e"})
//	// output.DisplayText == "Equivalent to driving ~5,208 miles or powering a home for ~55 days"
func Calculate(input CarbonInput) (EquivalencyOutput, error) {
	tonnes, err := NormalizeToTonnes(input.Value, input.Unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}
	if tonnes < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}

	if tonnes < MinEquivalencyThresholdTonnes {
		return EquivalencyOutput{InputTonnes: tonnes, IsEmpty: true}, nil
	}

	kg := tonnes * TonnesToKg
	miles := kg / EPAMilesDrivenFactor
	homeDays := kg / EPAHomeDayFactor
	seedlings := kg / EPATreeSeedlingFactor

	if math.IsInf(miles, 0) || math.IsNaN(miles) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	milesFormatted := formatEquivalencyValue(miles)
	homeFormatted := formatEquivalencyValue(homeDays)

	results := []EquivalencyResult{
		{
			Type:           EquivalencyMilesDriven,
			Value:          miles,
			FormattedValue: milesFormatted,
			Label:          "miles driven",
		},
		{
			Type:           EquivalencyHomeDays,
			Value:          homeDays,
			FormattedValue: homeFormatted,
			Label:          "days of home electricity",
		},
		{
			Type:           EquivalencyTreeSeedlings,
			Value:          seedlings,
			FormattedValue: formatEquivalencyValue(seedlings),
			Label:          "tree seedlings grown for 10 years",
		},
	}

	return EquivalencyOutput{
		InputTonnes: tonnes,
		Results:     results,
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or powering a home for ~%s days",
			milesFormatted, homeFormatted),
	}, nil
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
