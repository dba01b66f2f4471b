package factors

import (
	"strings"

	"github.com/rshade/ghgledger/internal/emissions"
)

// Key identifies the factor set a record needs. Category and SubCategory
// are interpreted per method:
//
//	stationary        Category=fuel type, SubCategory=fuel name, Unit selects the variant
//	mobile_fuel       Category=fuel type
//	mobile_distance   Category=vehicle category
//	fugitive_*        Category=gas name
//	electricity       Category=grid name (empty for the default grid)
//	travel_fuel       Category=fuel type
//	travel_distance   Category=transport mode
//	travel_spend      Category ignored
type Key struct {
	Method      emissions.Method
	Category    string
	SubCategory string
	Unit        emissions.Unit
}

// Resolver looks factor sets up in a Table. It is safe for concurrent use
// and every lookup is a pure function of the key.
type Resolver struct {
	table      *Table
	stationary map[string]StationaryFactor
	gases      map[string]Refrigerant
	grids      map[string]GridFactor
	travel     map[string]TravelFactor
}

// NewResolver indexes t for lookup. A nil table resolves nothing.
func NewResolver(t *Table) *Resolver {
	if t == nil {
		t = &Table{}
	}
	r := &Resolver{
		table:      t,
		stationary: make(map[string]StationaryFactor, len(t.Stationary)),
		gases:      make(map[string]Refrigerant, len(t.Refrigerants)),
		grids:      make(map[string]GridFactor, len(t.Electricity)),
		travel:     make(map[string]TravelFactor, len(t.Travel)),
	}
	for _, f := range t.Stationary {
		k := fold(f.FuelType) + "\x00" + fold(f.FuelName)
		if _, dup := r.stationary[k]; !dup {
			r.stationary[k] = f
		}
	}
	for _, g := range t.Refrigerants {
		if _, dup := r.gases[fold(g.Name)]; !dup {
			r.gases[fold(g.Name)] = g
		}
	}
	for _, g := range t.Electricity {
		if _, dup := r.grids[fold(g.Name)]; !dup {
			r.grids[fold(g.Name)] = g
		}
	}
	for _, tf := range t.Travel {
		k := fold(tf.Method) + "\x00" + fold(tf.Key)
		if _, dup := r.travel[k]; !dup {
			r.travel[k] = tf
		}
	}
	return r
}

// Table returns the table backing the resolver.
func (r *Resolver) Table() *Table {
	return r.table
}

// AvgTransportConstant returns the distance divisor for distance-based
// mobile combustion.
func (r *Resolver) AvgTransportConstant() float64 {
	if c := r.table.Constants.AvgTransportConstant; c > 0 {
		return c
	}
	return DefaultAvgTransportConstant
}

// Resolve returns the factor set for key. The boolean is false when the
// reference table has no matching row; callers treat that as zero factors.
func (r *Resolver) Resolve(key Key) (emissions.FactorSet, bool) {
	switch key.Method {
	case emissions.MethodStationary:
		return r.stationaryFactors(key.Category, key.SubCategory, key.Unit)
	case emissions.MethodMobileFuel:
		return r.mobileFactors(MobileFuelBased, key.Category)
	case emissions.MethodMobileDistance:
		return r.mobileFactors(MobileDistanceBased, key.Category)
	case emissions.MethodFugitiveScaleBase, emissions.MethodFugitiveScreening, emissions.MethodFugitiveSimple:
		return r.refrigerantGWP(key.Category)
	case emissions.MethodElectricity:
		return r.gridFactor(key.Category)
	case emissions.MethodTravelFuel:
		return r.travelFactor(TravelFuel, key.Category)
	case emissions.MethodTravelDistance:
		return r.travelFactor(TravelDistance, key.Category)
	case emissions.MethodTravelSpend:
		return r.travelFactor(TravelSpend, key.Category)
	case emissions.MethodUnknown:
		return emissions.FactorSet{}, false
	default:
		return emissions.FactorSet{}, false
	}
}

func (r *Resolver) stationaryFactors(fuelType, fuelName string, unit emissions.Unit) (emissions.FactorSet, bool) {
	row, ok := r.stationary[fold(fuelType)+"\x00"+fold(fuelName)]
	if !ok {
		return emissions.FactorSet{}, false
	}

	var t Triple
	switch unit.Class() {
	case emissions.UnitClassMass:
		t = row.Mass
	case emissions.UnitClassLiquid:
		t = row.Liquid
	case emissions.UnitClassGas:
		t = row.Gas
	case emissions.UnitClassEnergy:
		t = row.Energy
	}

	return emissions.FactorSet{
		Name: row.FuelType + "/" + row.FuelName + "/" + unit.Class().String(),
		CO2:  t.CO2,
		CH4:  t.CH4,
		N2O:  t.N2O,
	}, true
}

// mobileFactors scans rows in table order; the first match wins.
func (r *Resolver) mobileFactors(method, key string) (emissions.FactorSet, bool) {
	want := fold(key)
	for _, row := range r.table.Mobile {
		if fold(row.CalculationMethod) != fold(method) {
			continue
		}
		var candidate string
		if method == MobileFuelBased {
			candidate = row.FuelType
		} else {
			candidate = row.VehicleCategory
		}
		if fold(candidate) != want {
			continue
		}
		return emissions.FactorSet{
			Name: row.Name,
			CO2:  row.CO2,
			CH4:  row.CH4,
			N2O:  row.N2O,
		}, true
	}
	return emissions.FactorSet{}, false
}

// refrigerantGWP prefers the AR6 value, then the legacy GWP column, then
// the table default. An explicit zero is honoured.
func (r *Resolver) refrigerantGWP(gas string) (emissions.FactorSet, bool) {
	row, ok := r.gases[fold(gas)]
	if !ok {
		return emissions.FactorSet{}, false
	}
	gwp := r.table.Constants.DefaultRefrigerantGWP
	if gwp <= 0 {
		gwp = DefaultRefrigerantGWP
	}
	switch {
	case row.GWPAR6 != nil:
		gwp = *row.GWPAR6
	case row.GWP != nil:
		gwp = *row.GWP
	}
	return emissions.FactorSet{Name: row.Name, Direct: gwp}, true
}

func (r *Resolver) gridFactor(name string) (emissions.FactorSet, bool) {
	if name != "" {
		if g, ok := r.grids[fold(name)]; ok {
			return emissions.FactorSet{Name: g.Name, Direct: g.Factor}, true
		}
	}
	f := r.table.Constants.GridFactor
	if f <= 0 {
		f = DefaultGridFactor
	}
	return emissions.FactorSet{Name: "default grid", Direct: f}, true
}

func (r *Resolver) travelFactor(method, key string) (emissions.FactorSet, bool) {
	if method == TravelSpend && key == "" {
		key = "default"
	}
	tf, ok := r.travel[fold(method)+"\x00"+fold(key)]
	if !ok {
		return emissions.FactorSet{}, false
	}
	return emissions.FactorSet{Name: tf.Method + "/" + tf.Key, Direct: tf.Factor}, true
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
