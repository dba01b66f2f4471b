// Package factors holds the emission-factor reference tables and the
// resolver that looks factor sets up by category, sub-category and unit.
//
// Tables are read-only once loaded. A built-in default table is embedded in
// the binary; a custom table can be loaded from YAML as long as its
// schema_version is compatible with SupportedSchema.
package factors

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedSchema is the semver constraint a table's schema_version must
// satisfy to be loaded.
const SupportedSchema = "^1.0"

// Calculation methods used by mobile-combustion factor rows.
const (
	MobileFuelBased     = "Fuel-Based"
	MobileDistanceBased = "Distance-Based"
)

// Travel factor methods.
const (
	TravelFuel     = "fuel"
	TravelDistance = "distance"
	TravelSpend    = "spend"
)

// Errors returned by table loading.
var (
	ErrSchemaVersion = errors.New("unsupported factor table schema version")
	ErrEmptyTable    = errors.New("factor table has no rows")
)

//go:embed defaults.yaml
var defaultTableYAML []byte

// Triple is one {CO2, CH4, N2O} factor variant.
type Triple struct {
	CO2 float64 `yaml:"ef_co2" json:"ef_co2"`
	CH4 float64 `yaml:"ef_ch4" json:"ef_ch4"`
	N2O float64 `yaml:"ef_n2o" json:"ef_n2o"`
}

// StationaryFactor is one fuel row with per-unit-class variants. Mass
// variants are tonnes of gas per tonne of fuel, liquid per litre, gas per
// cubic metre, and energy in kg per unit of energy.
type StationaryFactor struct {
	FuelType string `yaml:"fuel_type" json:"fuel_type"`
	FuelName string `yaml:"fuel_name" json:"fuel_name"`
	Energy   Triple `yaml:"energy" json:"energy"`
	Mass     Triple `yaml:"mass" json:"mass"`
	Liquid   Triple `yaml:"liquid" json:"liquid"`
	Gas      Triple `yaml:"gas" json:"gas"`
}

// MobileFactor is one row of the mobile combustion master table.
type MobileFactor struct {
	Name              string  `yaml:"name" json:"name"`
	CalculationMethod string  `yaml:"calculation_method" json:"calculation_method"`
	Region            string  `yaml:"region,omitempty" json:"region,omitempty"`
	VehicleCategory   string  `yaml:"vehicle_category" json:"vehicle_category"`
	FuelType          string  `yaml:"fuel_type" json:"fuel_type"`
	CO2               float64 `yaml:"ef_co2" json:"ef_co2"`
	CH4               float64 `yaml:"ef_ch4" json:"ef_ch4"`
	N2O               float64 `yaml:"ef_n2o" json:"ef_n2o"`
	Unit              string  `yaml:"ef_unit,omitempty" json:"ef_unit,omitempty"`
}

// Refrigerant is one row of the GWP chemical table. A nil value means the
// column was absent, which is distinct from an explicit zero.
type Refrigerant struct {
	Name   string   `yaml:"name" json:"name"`
	GWPAR6 *float64 `yaml:"gwp_ar6,omitempty" json:"gwp_ar6,omitempty"`
	GWP    *float64 `yaml:"gwp,omitempty" json:"gwp,omitempty"`
}

// GridFactor is a purchased-electricity factor in tCO2e per kWh.
type GridFactor struct {
	Name   string  `yaml:"name" json:"name"`
	Factor float64 `yaml:"factor" json:"factor"`
}

// TravelFactor is a business-travel factor keyed by method and mode/fuel.
type TravelFactor struct {
	Method string  `yaml:"method" json:"method"`
	Key    string  `yaml:"key" json:"key"`
	Factor float64 `yaml:"factor" json:"factor"`
	Unit   string  `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// Constants are system constants published alongside the tables.
type Constants struct {
	// AvgTransportConstant divides distance before applying a per-litre
	// factor in distance-based mobile combustion.
	AvgTransportConstant float64 `yaml:"avg_transport_constant" json:"avg_transport_constant"`

	// DefaultRefrigerantGWP applies when a gas row carries no GWP column.
	DefaultRefrigerantGWP float64 `yaml:"default_refrigerant_gwp" json:"default_refrigerant_gwp"`

	// GridFactor is the fallback electricity factor (tCO2e per kWh).
	GridFactor float64 `yaml:"grid_factor" json:"grid_factor"`
}

// Table is a complete set of reference tables.
type Table struct {
	SchemaVersion string             `yaml:"schema_version" json:"schema_version"`
	Source        string             `yaml:"source,omitempty" json:"source,omitempty"`
	Constants     Constants          `yaml:"constants" json:"constants"`
	Stationary    []StationaryFactor `yaml:"stationary" json:"stationary"`
	Mobile        []MobileFactor     `yaml:"mobile" json:"mobile"`
	Refrigerants  []Refrigerant      `yaml:"refrigerants" json:"refrigerants"`
	Electricity   []GridFactor       `yaml:"electricity" json:"electricity"`
	Travel        []TravelFactor     `yaml:"travel" json:"travel"`
}

// Default returns the embedded reference table. It panics only if the
// embedded file is malformed, which the package tests guard against.
func Default() *Table {
	t, err := Parse(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded factor table: %v", err))
	}
	return t
}

// Load reads and validates a YAML factor table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading factor table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading factor table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML factor table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing factor table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.applyConstantDefaults()
	return &t, nil
}

// Validate checks the schema version gate and that the table is non-empty.
func (t *Table) Validate() error {
	v, err := semver.NewVersion(t.SchemaVersion)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrSchemaVersion, t.SchemaVersion, err)
	}
	c, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrSchemaVersion, v, SupportedSchema)
	}
	if len(t.Stationary) == 0 && len(t.Mobile) == 0 && len(t.Refrigerants) == 0 &&
		len(t.Electricity) == 0 && len(t.Travel) == 0 {
		return ErrEmptyTable
	}
	return nil
}

func (t *Table) applyConstantDefaults() {
	if t.Constants.AvgTransportConstant <= 0 {
		t.Constants.AvgTransportConstant = DefaultAvgTransportConstant
	}
	if t.Constants.DefaultRefrigerantGWP <= 0 {
		t.Constants.DefaultRefrigerantGWP = DefaultRefrigerantGWP
	}
	if t.Constants.GridFactor <= 0 {
		t.Constants.GridFactor = DefaultGridFactor
	}
}

// System constants used when a table omits them.
const (
	DefaultAvgTransportConstant = 10.0
	DefaultRefrigerantGWP       = 10.0
	DefaultGridFactor           = 0.757
)
