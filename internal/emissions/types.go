// Package emissions defines the domain model shared by the calculation,
// aggregation and rollup packages: activity records, emission factor sets,
// computed emissions, GHG Protocol scopes and the calculation methods.
//
// Everything in this package is a plain value. Records are immutable once
// computed; a ComputedEmission is a pure projection of an ActivityRecord and
// the FactorSet resolved for it.
package emissions

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Scope is a GHG Protocol emission scope.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver; String/MarshalJSON use value receivers.
type Scope int

const (
	// ScopeUnknown is the zero value and never produced by a valid Method.
	ScopeUnknown Scope = iota
	// Scope1 covers direct emissions from owned or controlled sources.
	Scope1
	// Scope2 covers indirect emissions from purchased energy.
	Scope2
	// Scope3 covers value-chain emissions.
	Scope3
)

// Scopes lists the reportable scopes in display order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var Scopes = []Scope{Scope1, Scope2, Scope3}

// String returns "Scope 1", "Scope 2" or "Scope 3".
func (s Scope) String() string {
	switch s {
	case Scope1, Scope2, Scope3:
		return fmt.Sprintf("Scope %d", int(s))
	case ScopeUnknown:
		return "Scope ?"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// MarshalJSON encodes the scope as its number.
func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}

// UnmarshalJSON decodes a scope number, rejecting values outside 1..3.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parsing scope: %w", err)
	}
	if n < int(Scope1) || n > int(Scope3) {
		return fmt.Errorf("scope out of range: %d", n)
	}
	*s = Scope(n)
	return nil
}

// Category groups methods into the sub-categories reported on summary cards.
type Category string

const (
	// CategoryStationary is scope 1 stationary combustion.
	CategoryStationary Category = "stationary"
	// CategoryMobile is scope 1 mobile combustion.
	CategoryMobile Category = "mobile"
	// CategoryFugitive is scope 1 refrigerant and other fugitive releases.
	CategoryFugitive Category = "fugitive"
	// CategoryElectricity is scope 2 purchased electricity.
	CategoryElectricity Category = "electricity"
	// CategoryBusinessTravel is scope 3 business travel.
	CategoryBusinessTravel Category = "business_travel"
)

// Categories lists every category in display order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var Categories = []Category{
	CategoryStationary,
	CategoryMobile,
	CategoryFugitive,
	CategoryElectricity,
	CategoryBusinessTravel,
}

// Scope returns the scope a category reports under.
func (c Category) Scope() Scope {
	switch c {
	case CategoryStationary, CategoryMobile, CategoryFugitive:
		return Scope1
	case CategoryElectricity:
		return Scope2
	case CategoryBusinessTravel:
		return Scope3
	default:
		return ScopeUnknown
	}
}

// Label returns a human-readable category name.
func (c Category) Label() string {
	switch c {
	case CategoryStationary:
		return "Stationary"
	case CategoryMobile:
		return "Mobile"
	case CategoryFugitive:
		return "Fugitive"
	case CategoryElectricity:
		return "Electricity"
	case CategoryBusinessTravel:
		return "Business Travel"
	default:
		return string(c)
	}
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// FactorSet is a resolved emission factor triple. Methods that multiply a
// pre-weighted factor directly (refrigerant GWP, grid factor, travel and EEIO
// factors) read Direct instead of the component factors.
type FactorSet struct {
	// Name identifies the reference-table row the factors came from.
	Name string `json:"name,omitempty"`

	CO2 float64 `json:"ef_co2"`
	CH4 float64 `json:"ef_ch4"`
	N2O float64 `json:"ef_n2o"`

	// Direct is a single GWP-adjusted factor.
	Direct float64 `json:"direct,omitempty"`
}

// IsZero reports whether every factor is zero.
func (f FactorSet) IsZero() bool {
	return f.CO2 == 0 && f.CH4 == 0 && f.N2O == 0 && f.Direct == 0
}

// ActivityRecord is one user-entered activity event.
//
// Date is the zero time when the source value was missing or unparsable;
// such records are excluded from time bucketing but still counted in rollups.
type ActivityRecord struct {
	ID      string    `json:"id"`
	Company string    `json:"company,omitempty"`
	Date    time.Time `json:"date"`
	Method  Method    `json:"method"`
	Input   Input     `json:"-"`
}

// HasDate reports whether the record carries a usable date.
func (r ActivityRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// FugitiveBalance holds the mass-balance intermediates of the scale-base
// method, all in the record's unit except Converted which is in tonnes.
type FugitiveBalance struct {
	Decreased           float64 `json:"decreased_inventory"`
	TotalIn             float64 `json:"total_returned"`
	TotalOut            float64 `json:"total_distributed"`
	RefrigerantEmission float64 `json:"refrigerant_emission"`
	Converted           float64 `json:"converted_tonnes"`
}

// ComputedEmission is the result of applying a methodology to a record.
// Every mass is in tonnes (tCO2e for TotalCO2e).
type ComputedEmission struct {
	RecordID string    `json:"record_id"`
	Company  string    `json:"company,omitempty"`
	Date     time.Time `json:"date"`
	Method   Method    `json:"method"`

	CO2       float64 `json:"e_co2"`
	CH4       float64 `json:"e_ch4"`
	N2O       float64 `json:"e_n2o"`
	TotalCO2e float64 `json:"e_total_co2e"`

	Factors FactorSet        `json:"factors"`
	Balance *FugitiveBalance `json:"balance,omitempty"`

	// Computable is false when the calculator zeroed the result; Reason says why.
	Computable bool  `json:"computable"`
	Reason     error `json:"-"`
}

// Scope returns the scope of the emission's method.
func (c ComputedEmission) Scope() Scope {
	return c.Method.Category().Scope()
}

// Category returns the category of the emission's method.
func (c ComputedEmission) Category() Category {
	return c.Method.Category()
}

// HasDate reports whether the emission can be placed on a time axis.
func (c ComputedEmission) HasDate() bool {
	return !c.Date.IsZero()
}
