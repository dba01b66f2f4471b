package calc

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/factors"
)

const eps = 1e-9

func newDefaultCalculator() *Calculator {
	return New(factors.NewResolver(factors.Default()))
}

func TestStationary_UnitScaling(t *testing.T) {
	fs := emissions.FactorSet{CO2: 2, CH4: 0.1, N2O: 0.01}

	tests := []struct {
		name    string
		unit    emissions.Unit
		wantCO2 float64
	}{
		{name: "kg scales by 0.001", unit: emissions.UnitKg, wantCO2: 500 * 2 * 0.001},
		{name: "tonnes unscaled", unit: emissions.UnitTonnes, wantCO2: 500 * 2},
		{name: "litre unscaled", unit: emissions.UnitLitre, wantCO2: 500 * 2},
		{name: "cubic metre unscaled", unit: emissions.UnitCubicMetre, wantCO2: 500 * 2},
		{name: "energy divided by 1000", unit: "GJ", wantCO2: 500 * 2 / 1000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Stationary(emissions.StationaryInput{ActivityData: 500, Unit: tt.unit}, fs)
			require.True(t, res.Computable())
			assert.InDelta(t, tt.wantCO2, res.Masses.CO2, eps)
			k := tt.wantCO2 / 2
			assert.InDelta(t, k*0.1, res.Masses.CH4, eps)
			assert.InDelta(t, k*0.01, res.Masses.N2O, eps)
			assert.InDelta(t, res.Masses.CO2+res.Masses.CH4*25+res.Masses.N2O*298, res.Total, eps)
		})
	}
}

func TestStationary_Guards(t *testing.T) {
	fs := emissions.FactorSet{CO2: 2}

	res := Stationary(emissions.StationaryInput{ActivityData: 0, Unit: emissions.UnitKg}, fs)
	assert.ErrorIs(t, res.Reason, emissions.ErrMissingInput)
	assert.Zero(t, res.Total)

	res = Stationary(emissions.StationaryInput{ActivityData: -5, Unit: emissions.UnitKg}, fs)
	assert.ErrorIs(t, res.Reason, emissions.ErrMissingInput)
	assert.Zero(t, res.Total)

	res = Stationary(emissions.StationaryInput{ActivityData: 5, Unit: emissions.UnitKg}, emissions.FactorSet{CH4: 1})
	assert.ErrorIs(t, res.Reason, emissions.ErrFactorNotFound)
	assert.Zero(t, res.Total)

	res = Stationary(emissions.StationaryInput{ActivityData: 1000}, fs)
	assert.ErrorIs(t, res.Reason, emissions.ErrMissingInput)
	assert.Zero(t, res.Total)
}

func TestCompute_UnitDefaults(t *testing.T) {
	c := newDefaultCalculator()

	tests := []struct {
		name       string
		method     emissions.Method
		fields     emissions.Fields
		computable bool
		wantTotal  float64
	}{
		{
			name:   "stationary without unit is not computed",
			method: emissions.MethodStationary,
			fields: emissions.Fields{
				"fuel_type": "Liquid fossil", "fuel_selection": "Diesel", "activity_data": 1000,
			},
		},
		{
			name:       "fugitive simple defaults to kg",
			method:     emissions.MethodFugitiveSimple,
			fields:     emissions.Fields{"type_refrigeration": "R-410A", "amount_purchased": 1000, "gwp": 10},
			computable: true,
			wantTotal:  10,
		},
		{
			name:       "fugitive simple in tonnes",
			method:     emissions.MethodFugitiveSimple,
			fields:     emissions.Fields{"amount_purchased": 1000, "gwp": 10, "unit_selection": "Tonnes"},
			computable: true,
			wantTotal:  10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := emissions.DecodeRecord(tt.method, tt.fields)
			require.NoError(t, err)

			got := c.Compute(rec)
			assert.Equal(t, tt.computable, got.Computable)
			assert.InDelta(t, tt.wantTotal, got.TotalCO2e, eps)
			if !tt.computable {
				assert.ErrorIs(t, got.Reason, emissions.ErrMissingInput)
			}
		})
	}
}

func TestMobile(t *testing.T) {
	fs := emissions.FactorSet{CO2: 0.0027, CH4: 0.0000001, N2O: 0.0000001}

	res := MobileFuel(emissions.MobileFuelInput{FuelUsed: 1000}, fs)
	require.True(t, res.Computable())
	assert.InDelta(t, 2.7, res.Masses.CO2, eps)
	assert.InDelta(t, 2.7+0.0001*25+0.0001*298, res.Total, eps)

	res = MobileDistance(emissions.MobileDistanceInput{Distance: 1000}, fs, 10)
	require.True(t, res.Computable())
	assert.InDelta(t, 100*0.0027, res.Masses.CO2, eps)

	res = MobileDistance(emissions.MobileDistanceInput{Distance: 1000}, fs, 0)
	assert.ErrorIs(t, res.Reason, emissions.ErrDivisionGuard)

	res = MobileFuel(emissions.MobileFuelInput{FuelUsed: 0}, fs)
	assert.ErrorIs(t, res.Reason, emissions.ErrMissingInput)
	assert.Zero(t, res.Total)
}

func TestFugitiveScaleBase_RoundTrip(t *testing.T) {
	in := emissions.FugitiveScaleBaseInput{
		GasType:          "R134a",
		Unit:             emissions.UnitTonnes,
		InventoryStart:   100,
		InventoryClose:   80,
		Purchase:         10,
		ChargedEquipment: 5,
	}
	const gwp = 1530.0

	res := FugitiveScaleBase(in, emissions.FactorSet{Direct: gwp})
	require.True(t, res.Computable())
	require.NotNil(t, res.Balance)
	assert.InDelta(t, 20, res.Balance.Decreased, eps)
	assert.InDelta(t, 10, res.Balance.TotalIn, eps)
	assert.InDelta(t, 5, res.Balance.TotalOut, eps)
	assert.InDelta(t, 25, res.Balance.RefrigerantEmission, eps)
	assert.InDelta(t, 25, res.Balance.Converted, eps)
	assert.InDelta(t, 25*gwp, res.Total, eps)

	in.Unit = emissions.UnitKg
	res = FugitiveScaleBase(in, emissions.FactorSet{Direct: gwp})
	assert.InDelta(t, 0.025, res.Balance.Converted, eps)
	assert.InDelta(t, 0.025*gwp, res.Total, eps)
}

func TestFugitiveScaleBase_AllFieldsParticipate(t *testing.T) {
	b := Balance(emissions.FugitiveScaleBaseInput{
		InventoryStart:    50,
		InventoryClose:    10,
		Purchase:          1,
		ReturnedUser:      2,
		ReturnedRecycling: 3,
		ChargedEquipment:  4,
		DeliveredUser:     5,
		ReturnedProducer:  6,
		SentOffsite:       7,
		SentDestruction:   8,
	})
	assert.InDelta(t, 40, b.Decreased, eps)
	assert.InDelta(t, 6, b.TotalIn, eps)
	assert.InDelta(t, 30, b.TotalOut, eps)
	assert.InDelta(t, 16, b.RefrigerantEmission, eps)
}

func TestFugitiveScreeningAndSimple(t *testing.T) {
	res := FugitiveScreening(emissions.FugitiveScreeningInput{
		Units: 4, OriginalCharge: 2.5, AssemblyFactor: 0.01, Unit: emissions.UnitKg,
	}, emissions.FactorSet{Direct: 2000})
	require.True(t, res.Computable())
	assert.InDelta(t, 2000*4*2.5*0.01/1000, res.Total, eps)

	res = FugitiveScreening(emissions.FugitiveScreeningInput{
		Units: 4, OriginalCharge: 2.5, AssemblyFactor: 0.01, Unit: emissions.UnitTonnes,
	}, emissions.FactorSet{Direct: 2000})
	assert.InDelta(t, 2000*4*2.5*0.01, res.Total, eps)

	res = FugitiveScreening(emissions.FugitiveScreeningInput{Units: 0, OriginalCharge: 1, AssemblyFactor: 1}, emissions.FactorSet{Direct: 10})
	assert.ErrorIs(t, res.Reason, emissions.ErrMissingInput)

	res = FugitiveSimple(emissions.FugitiveSimpleInput{AmountPurchased: 12, Unit: emissions.UnitKg}, emissions.FactorSet{Direct: 1430})
	assert.InDelta(t, 12*1430/1000.0, res.Total, eps)

	res = FugitiveSimple(emissions.FugitiveSimpleInput{AmountPurchased: 12, Unit: emissions.UnitTonnes}, emissions.FactorSet{Direct: 1430})
	assert.InDelta(t, 12*1430.0, res.Total, eps)
}

func TestElectricity(t *testing.T) {
	res := Electricity(emissions.ElectricityInput{ActivityData: 1000, Unit: emissions.UnitKWh}, emissions.FactorSet{Direct: 0.757})
	require.True(t, res.Computable())
	assert.InDelta(t, 757.0, res.Total, eps)
}

func TestTravel(t *testing.T) {
	fs := emissions.FactorSet{Direct: 0.5}
	assert.InDelta(t, 5.0, TravelFuel(emissions.TravelFuelInput{FuelConsumed: 10}, fs).Total, eps)
	assert.InDelta(t, 50.0, TravelDistance(emissions.TravelDistanceInput{Distance: 100}, fs).Total, eps)
	assert.InDelta(t, 500.0, TravelSpend(emissions.TravelSpendInput{AmountSpent: 1000}, fs).Total, eps)
}

func TestCalculator_Compute(t *testing.T) {
	c := newDefaultCalculator()
	date := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	t.Run("stationary diesel tonnes", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			ID:     "s1",
			Date:   date,
			Method: emissions.MethodStationary,
			Input: emissions.StationaryInput{
				FuelType: "Liquid fossil", FuelName: "Diesel", ActivityData: 2, Unit: emissions.UnitTonnes,
			},
		})
		require.True(t, got.Computable)
		assert.Equal(t, "s1", got.RecordID)
		assert.Equal(t, date, got.Date)
		assert.Equal(t, emissions.Scope1, got.Scope())
		assert.InDelta(t, 2*3.186, got.CO2, eps)
		assert.InDelta(t, got.CO2+got.CH4*25+got.N2O*298, got.TotalCO2e, eps)
	})

	t.Run("electricity uses grid factor", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			ID:    "e1",
			Input: emissions.ElectricityInput{ActivityData: 1000, Unit: emissions.UnitKWh},
		})
		require.True(t, got.Computable)
		assert.Equal(t, emissions.MethodElectricity, got.Method, "method is taken from the input")
		assert.InDelta(t, 757.0, got.TotalCO2e, eps)
		assert.Zero(t, got.CO2, "pre-weighted methods bypass the compositor")
	})

	t.Run("scale-base resolves gas GWP", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.FugitiveScaleBaseInput{
				GasType: "R134a", Unit: emissions.UnitTonnes,
				InventoryStart: 100, InventoryClose: 80, Purchase: 10, ChargedEquipment: 5,
			},
		})
		require.True(t, got.Computable)
		assert.InDelta(t, 25*1530.0, got.TotalCO2e, eps)
		assert.InDelta(t, 1530.0, got.Factors.Direct, eps)
	})

	t.Run("unknown gas degrades to zero but keeps balance", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.FugitiveScaleBaseInput{GasType: "Mystery", Unit: emissions.UnitTonnes, InventoryStart: 3},
		})
		assert.False(t, got.Computable)
		assert.ErrorIs(t, got.Reason, emissions.ErrFactorNotFound)
		assert.Zero(t, got.TotalCO2e)
		require.NotNil(t, got.Balance)
		assert.InDelta(t, 3, got.Balance.RefrigerantEmission, eps)
	})

	t.Run("record GWP overrides table", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.FugitiveSimpleInput{GasType: "R134a", AmountPurchased: 1, GWP: 10, Unit: emissions.UnitTonnes},
		})
		assert.InDelta(t, 10.0, got.TotalCO2e, eps)
	})

	t.Run("simple falls back to table GWP", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.FugitiveSimpleInput{GasType: "R410A", AmountPurchased: 1000, Unit: emissions.UnitKg},
		})
		assert.InDelta(t, 2256.0, got.TotalCO2e, eps)
	})

	t.Run("travel with record factor", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.TravelDistanceInput{TransportMode: "Air", Distance: 100, EmissionFactor: 0.2},
		})
		assert.InDelta(t, 20.0, got.TotalCO2e, eps)
		assert.Equal(t, emissions.Scope3, got.Scope())
	})

	t.Run("travel spend falls back to default EEIO row", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.TravelSpendInput{AmountSpent: 1000, Currency: "EUR"},
		})
		require.True(t, got.Computable)
		assert.InDelta(t, 0.41, got.TotalCO2e, eps)
	})

	t.Run("unresolved stationary fuel", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{
			Input: emissions.StationaryInput{FuelType: "Liquid fossil", FuelName: "Whale oil", ActivityData: 5, Unit: emissions.UnitKg},
		})
		assert.ErrorIs(t, got.Reason, emissions.ErrFactorNotFound)
		assert.Zero(t, got.TotalCO2e)
		assert.Zero(t, got.CO2)
	})

	t.Run("nil input", func(t *testing.T) {
		got := c.Compute(emissions.ActivityRecord{ID: "x", Method: emissions.MethodStationary})
		assert.False(t, got.Computable)
		assert.ErrorIs(t, got.Reason, emissions.ErrMissingInput)
	})
}

func TestCalculator_ZeroActivityYieldsZero(t *testing.T) {
	c := newDefaultCalculator()
	inputs := []emissions.Input{
		emissions.StationaryInput{FuelType: "Liquid fossil", FuelName: "Diesel", Unit: emissions.UnitKg},
		emissions.MobileFuelInput{FuelType: "Diesel"},
		emissions.MobileDistanceInput{VehicleCategory: "Passenger car"},
		emissions.FugitiveScaleBaseInput{GasType: "R134a"},
		emissions.FugitiveScreeningInput{GasType: "R134a", GWP: 1000},
		emissions.FugitiveSimpleInput{GasType: "R134a"},
		emissions.ElectricityInput{},
		emissions.TravelFuelInput{FuelType: "Diesel"},
		emissions.TravelDistanceInput{TransportMode: "Air"},
		emissions.TravelSpendInput{},
	}
	for _, in := range inputs {
		t.Run(in.Method().String(), func(t *testing.T) {
			got := c.Compute(emissions.ActivityRecord{Input: in})
			assert.Zero(t, got.TotalCO2e)
			assert.False(t, math.IsNaN(got.TotalCO2e))
		})
	}
}

func TestCalculator_NegativeInputsDoNotPanic(t *testing.T) {
	c := newDefaultCalculator()
	assert.NotPanics(t, func() {
		got := c.Compute(emissions.ActivityRecord{Input: emissions.ElectricityInput{ActivityData: -100}})
		assert.InDelta(t, -75.7, got.TotalCO2e, eps)
	})
}

func TestCalculator_AvgTransportOption(t *testing.T) {
	c := New(factors.NewResolver(factors.Default()), WithAvgTransportConstant(5))
	got := c.Compute(emissions.ActivityRecord{
		Input: emissions.MobileDistanceInput{VehicleCategory: "Passenger car", Distance: 100},
	})
	require.True(t, got.Computable)
	assert.InDelta(t, 20*0.002296, got.CO2, eps)
}

func TestCalculator_NilResolver(t *testing.T) {
	c := New(nil)
	got := c.Compute(emissions.ActivityRecord{Input: emissions.ElectricityInput{ActivityData: 10}})
	assert.ErrorIs(t, got.Reason, emissions.ErrFactorNotFound)

	got = c.Compute(emissions.ActivityRecord{Input: emissions.TravelSpendInput{AmountSpent: 10, EEIOFactor: 2}})
	assert.InDelta(t, 20.0, got.TotalCO2e, eps)
}

func TestComputeAll(t *testing.T) {
	c := newDefaultCalculator()
	assert.Nil(t, c.ComputeAll(nil))

	got := c.ComputeAll([]emissions.ActivityRecord{
		{ID: "a", Input: emissions.ElectricityInput{ActivityData: 1}},
		{ID: "b", Input: emissions.ElectricityInput{ActivityData: 2}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RecordID)
	assert.InDelta(t, 1.514, got[1].TotalCO2e, eps)
}

func BenchmarkCompute(b *testing.B) {
	c := newDefaultCalculator()
	rec := emissions.ActivityRecord{
		Input: emissions.StationaryInput{FuelType: "Liquid fossil", FuelName: "Diesel", ActivityData: 1200, Unit: emissions.UnitLitre},
	}
	for b.Loop() {
		_ = c.Compute(rec)
	}
}
