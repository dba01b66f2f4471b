package greenops

// Compose combines component masses into a CO2-equivalent mass using the
// fixed weights CO2=1, CH4=25, N2O=298. Inputs and output share a unit; no
// conversion happens here.
func Compose(co2, ch4, n2o float64) float64 {
	return co2*GWPCO2 + ch4*GWPCH4 + n2o*GWPN2O
}

// ComponentMasses holds per-gas masses before composition.
type ComponentMasses struct {
	CO2 float64
	CH4 float64
	N2O float64
}

// Scale multiplies every component by k.
func (m ComponentMasses) Scale(k float64) ComponentMasses {
	return ComponentMasses{CO2: m.CO2 * k, CH4: m.CH4 * k, N2O: m.N2O * k}
}

// Total returns the composed CO2-equivalent mass.
func (m ComponentMasses) Total() float64 {
	return Compose(m.CO2, m.CH4, m.N2O)
}
