// Package calc turns activity records into computed emissions.
//
// Each calculation method has one pure formula in methods.go. Calculator
// resolves the factor set a record needs and dispatches to the formula with
// a single exhaustive switch over the record's input type. Calculators never
// fail: a record that cannot be computed yields an all-zero result whose
// Reason explains why.
package calc

import (
	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/factors"
)

// FactorResolver looks factor sets up by key. *factors.Resolver satisfies it.
type FactorResolver interface {
	Resolve(key factors.Key) (emissions.FactorSet, bool)
}

// Calculator computes emissions against a factor resolver.
type Calculator struct {
	resolver     FactorResolver
	avgTransport float64
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithAvgTransportConstant overrides the distance divisor used by
// distance-based mobile combustion.
func WithAvgTransportConstant(v float64) Option {
	return func(c *Calculator) {
		if v > 0 {
			c.avgTransport = v
		}
	}
}

// New returns a Calculator. A *factors.Resolver argument also supplies its
// table's average transport constant unless an option overrides it.
func New(resolver FactorResolver, opts ...Option) *Calculator {
	c := &Calculator{
		resolver:     resolver,
		avgTransport: factors.DefaultAvgTransportConstant,
	}
	if fr, ok := resolver.(*factors.Resolver); ok && fr != nil {
		c.avgTransport = fr.AvgTransportConstant()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KeyFor returns the factor key a record resolves against.
func KeyFor(in emissions.Input) factors.Key {
	switch v := in.(type) {
	case emissions.StationaryInput:
		return factors.Key{Method: v.Method(), Category: v.FuelType, SubCategory: v.FuelName, Unit: v.Unit}
	case emissions.MobileFuelInput:
		return factors.Key{Method: v.Method(), Category: v.FuelType, Unit: v.Unit}
	case emissions.MobileDistanceInput:
		return factors.Key{Method: v.Method(), Category: v.VehicleCategory, Unit: v.Unit}
	case emissions.FugitiveScaleBaseInput:
		return factors.Key{Method: v.Method(), Category: v.GasType, Unit: v.Unit}
	case emissions.FugitiveScreeningInput:
		return factors.Key{Method: v.Method(), Category: v.GasType, SubCategory: v.Equipment, Unit: v.Unit}
	case emissions.FugitiveSimpleInput:
		return factors.Key{Method: v.Method(), Category: v.GasType, Unit: v.Unit}
	case emissions.ElectricityInput:
		return factors.Key{Method: v.Method(), Category: v.ActivityType, Unit: v.Unit}
	case emissions.TravelFuelInput:
		return factors.Key{Method: v.Method(), Category: v.FuelType}
	case emissions.TravelDistanceInput:
		return factors.Key{Method: v.Method(), Category: v.TransportMode}
	case emissions.TravelSpendInput:
		return factors.Key{Method: v.Method(), Category: v.Currency}
	default:
		return factors.Key{}
	}
}

// resolve returns the factor set for in. Screening and simple fugitive
// records carry their own GWP, and travel records their own factor; a
// positive record value takes precedence over the table.
func (c *Calculator) resolve(in emissions.Input) (emissions.FactorSet, bool) {
	var own float64
	switch v := in.(type) {
	case emissions.FugitiveScreeningInput:
		own = v.GWP
	case emissions.FugitiveSimpleInput:
		own = v.GWP
	case emissions.TravelFuelInput:
		own = v.EmissionFactor
	case emissions.TravelDistanceInput:
		own = v.EmissionFactor
	case emissions.TravelSpendInput:
		own = v.EEIOFactor
	}
	if own > 0 {
		return emissions.FactorSet{Name: "record", Direct: own}, true
	}
	if c.resolver == nil {
		return emissions.FactorSet{}, false
	}
	fs, ok := c.resolver.Resolve(KeyFor(in))
	if !ok && in.Method() == emissions.MethodTravelSpend {
		// Currency-specific EEIO rows are optional; fall back to the default row.
		fs, ok = c.resolver.Resolve(factors.Key{Method: emissions.MethodTravelSpend})
	}
	return fs, ok
}

// Compute applies the record's methodology. The record's input type is
// authoritative for the method.
func (c *Calculator) Compute(rec emissions.ActivityRecord) emissions.ComputedEmission {
	out := emissions.ComputedEmission{
		RecordID: rec.ID,
		Company:  rec.Company,
		Date:     rec.Date,
		Method:   rec.Method,
	}
	if rec.Input == nil {
		out.Reason = emissions.ErrMissingInput
		return out
	}
	out.Method = rec.Input.Method()

	fs, found := c.resolve(rec.Input)
	out.Factors = fs

	var res Result
	switch in := rec.Input.(type) {
	case emissions.StationaryInput:
		res = guarded(found, func() Result { return Stationary(in, fs) })
	case emissions.MobileFuelInput:
		res = guarded(found, func() Result { return MobileFuel(in, fs) })
	case emissions.MobileDistanceInput:
		res = guarded(found, func() Result { return MobileDistance(in, fs, c.avgTransport) })
	case emissions.FugitiveScaleBaseInput:
		res = guarded(found, func() Result { return FugitiveScaleBase(in, fs) })
		if res.Balance == nil {
			b := Balance(in)
			res.Balance = &b
		}
	case emissions.FugitiveScreeningInput:
		res = guarded(found, func() Result { return FugitiveScreening(in, fs) })
	case emissions.FugitiveSimpleInput:
		res = guarded(found, func() Result { return FugitiveSimple(in, fs) })
	case emissions.ElectricityInput:
		res = guarded(found, func() Result { return Electricity(in, fs) })
	case emissions.TravelFuelInput:
		res = guarded(found, func() Result { return TravelFuel(in, fs) })
	case emissions.TravelDistanceInput:
		res = guarded(found, func() Result { return TravelDistance(in, fs) })
	case emissions.TravelSpendInput:
		res = guarded(found, func() Result { return TravelSpend(in, fs) })
	default:
		res = notComputable(emissions.ErrUnknownMethod)
	}

	out.Balance = res.Balance
	out.Reason = res.Reason
	out.Computable = res.Reason == nil
	if !out.Computable {
		return out
	}
	out.CO2 = res.Masses.CO2
	out.CH4 = res.Masses.CH4
	out.N2O = res.Masses.N2O
	out.TotalCO2e = res.Total
	return out
}

// ComputeAll computes every record in order. A nil slice yields nil.
func (c *Calculator) ComputeAll(records []emissions.ActivityRecord) []emissions.ComputedEmission {
	if records == nil {
		return nil
	}
	out := make([]emissions.ComputedEmission, len(records))
	for i, rec := range records {
		out[i] = c.Compute(rec)
	}
	return out
}

func guarded(found bool, fn func() Result) Result {
	if !found {
		return notComputable(emissions.ErrFactorNotFound)
	}
	return fn()
}
