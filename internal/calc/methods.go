package calc

import (
	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/greenops"
)

// Result is the outcome of one methodology formula. Masses are zero for
// methods that multiply a pre-weighted factor directly.
type Result struct {
	Masses  greenops.ComponentMasses
	Total   float64
	Balance *emissions.FugitiveBalance
	Reason  error
}

// Computable reports whether the formula produced a value.
func (r Result) Computable() bool {
	return r.Reason == nil
}

func notComputable(reason error) Result {
	return Result{Reason: reason}
}

// composed multiplies quantity by each component factor and composes the
// total with the fixed GWP weights.
func composed(quantity float64, fs emissions.FactorSet) Result {
	m := greenops.ComponentMasses{CO2: fs.CO2, CH4: fs.CH4, N2O: fs.N2O}.Scale(quantity)
	return Result{Masses: m, Total: m.Total()}
}

// Stationary applies e_x = activity * ef_x * scale, where scale is 0.001 for
// kg, 1 for tonnes, litres and cubic metres, and energy activity is divided
// by 1000. The result is zero unless activity and ef_co2 are positive and a
// unit is selected.
func Stationary(in emissions.StationaryInput, fs emissions.FactorSet) Result {
	if in.ActivityData <= 0 || in.Unit == "" {
		return notComputable(emissions.ErrMissingInput)
	}
	if fs.CO2 <= 0 {
		return notComputable(emissions.ErrFactorNotFound)
	}

	var scale float64
	switch in.Unit.Class() {
	case emissions.UnitClassMass:
		scale = greenops.MassScale(in.Unit.IsKg())
	case emissions.UnitClassLiquid, emissions.UnitClassGas:
		scale = 1
	case emissions.UnitClassEnergy:
		scale = greenops.KgToTonnes
	}
	return composed(in.ActivityData*scale, fs)
}

// MobileFuel applies e_x = fuel_used * ef_x.
func MobileFuel(in emissions.MobileFuelInput, fs emissions.FactorSet) Result {
	if in.FuelUsed <= 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	if fs.CO2 <= 0 {
		return notComputable(emissions.ErrFactorNotFound)
	}
	return composed(in.FuelUsed, fs)
}

// MobileDistance applies e_x = (distance / avgTransport) * ef_x.
func MobileDistance(in emissions.MobileDistanceInput, fs emissions.FactorSet, avgTransport float64) Result {
	if in.Distance <= 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	if fs.CO2 <= 0 {
		return notComputable(emissions.ErrFactorNotFound)
	}
	if avgTransport <= 0 {
		return notComputable(emissions.ErrDivisionGuard)
	}
	return composed(in.Distance/avgTransport, fs)
}

// Balance computes the refrigerant mass balance for a scale-base record.
// It is independent of factor resolution so intermediates are available
// even when the gas is unknown.
func Balance(in emissions.FugitiveScaleBaseInput) emissions.FugitiveBalance {
	decreased := in.InventoryStart - in.InventoryClose
	totalIn := in.Purchase + in.ReturnedUser + in.ReturnedRecycling
	totalOut := in.ChargedEquipment + in.DeliveredUser + in.ReturnedProducer + in.SentOffsite + in.SentDestruction
	emission := decreased + totalIn - totalOut
	return emissions.FugitiveBalance{
		Decreased:           decreased,
		TotalIn:             totalIn,
		TotalOut:            totalOut,
		RefrigerantEmission: emission,
		Converted:           emission * greenops.MassScale(in.Unit.IsKg()),
	}
}

// FugitiveScaleBase multiplies the converted mass balance by the gas GWP
// carried in fs.Direct. A negative balance (net inventory build-up) is
// returned arithmetically.
func FugitiveScaleBase(in emissions.FugitiveScaleBaseInput, fs emissions.FactorSet) Result {
	b := Balance(in)
	return Result{Total: b.Converted * fs.Direct, Balance: &b}
}

// FugitiveScreening applies gwp * units * original_charge * assembly_ef,
// divided by 1000 for kg.
func FugitiveScreening(in emissions.FugitiveScreeningInput, fs emissions.FactorSet) Result {
	if in.Units == 0 || in.OriginalCharge == 0 || in.AssemblyFactor == 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	total := fs.Direct * in.Units * in.OriginalCharge * in.AssemblyFactor
	return Result{Total: total * greenops.MassScale(in.Unit.IsKg())}
}

// FugitiveSimple applies amount_purchased * gwp, divided by 1000 for kg.
func FugitiveSimple(in emissions.FugitiveSimpleInput, fs emissions.FactorSet) Result {
	if in.AmountPurchased == 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	return Result{Total: in.AmountPurchased * fs.Direct * greenops.MassScale(in.Unit.IsKg())}
}

// Electricity applies kWh * grid factor.
func Electricity(in emissions.ElectricityInput, fs emissions.FactorSet) Result {
	if in.ActivityData == 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	return Result{Total: in.ActivityData * fs.Direct}
}

// TravelFuel applies fuel_consumed * emission_factor.
func TravelFuel(in emissions.TravelFuelInput, fs emissions.FactorSet) Result {
	if in.FuelConsumed == 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	return Result{Total: in.FuelConsumed * fs.Direct}
}

// TravelDistance applies distance_traveled * emission_factor.
func TravelDistance(in emissions.TravelDistanceInput, fs emissions.FactorSet) Result {
	if in.Distance == 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	return Result{Total: in.Distance * fs.Direct}
}

// TravelSpend applies amount_spent * eeio_factor.
func TravelSpend(in emissions.TravelSpendInput, fs emissions.FactorSet) Result {
	if in.AmountSpent == 0 {
		return notComputable(emissions.ErrMissingInput)
	}
	return Result{Total: in.AmountSpent * fs.Direct}
}
