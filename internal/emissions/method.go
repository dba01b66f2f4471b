package emissions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Method is the calculation methodology tag carried by every activity record.
//
//nolint:recvcheck // UnmarshalJSON/UnmarshalYAML require pointer receivers.
type Method int

const (
	// MethodUnknown is the zero value; records carrying it are not computable.
	MethodUnknown Method = iota
	MethodStationary
	MethodMobileFuel
	MethodMobileDistance
	MethodFugitiveScaleBase
	MethodFugitiveScreening
	MethodFugitiveSimple
	MethodElectricity
	MethodTravelFuel
	MethodTravelDistance
	MethodTravelSpend
)

//nolint:gochecknoglobals // Read-only lookup table.
var methodNames = map[Method]string{
	MethodStationary:        "stationary",
	MethodMobileFuel:        "mobile_fuel",
	MethodMobileDistance:    "mobile_distance",
	MethodFugitiveScaleBase: "fugitive_scale_base",
	MethodFugitiveScreening: "fugitive_screening",
	MethodFugitiveSimple:    "fugitive_simple",
	MethodElectricity:       "electricity",
	MethodTravelFuel:        "travel_fuel",
	MethodTravelDistance:    "travel_distance",
	MethodTravelSpend:       "travel_spend",
}

// AllMethods returns every known method in declaration order.
func AllMethods() []Method {
	return []Method{
		MethodStationary,
		MethodMobileFuel,
		MethodMobileDistance,
		MethodFugitiveScaleBase,
		MethodFugitiveScreening,
		MethodFugitiveSimple,
		MethodElectricity,
		MethodTravelFuel,
		MethodTravelDistance,
		MethodTravelSpend,
	}
}

// String returns the snake_case method name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMethod parses a method name. Hyphens and case are ignored so that
// "Fugitive-Scale-Base" and "fugitive_scale_base" are equivalent.
func ParseMethod(s string) (Method, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for m, name := range methodNames {
		if name == norm {
			return m, nil
		}
	}
	return MethodUnknown, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Category returns the sub-category the method reports under.
func (m Method) Category() Category {
	switch m {
	case MethodStationary:
		return CategoryStationary
	case MethodMobileFuel, MethodMobileDistance:
		return CategoryMobile
	case MethodFugitiveScaleBase, MethodFugitiveScreening, MethodFugitiveSimple:
		return CategoryFugitive
	case MethodElectricity:
		return CategoryElectricity
	case MethodTravelFuel, MethodTravelDistance, MethodTravelSpend:
		return CategoryBusinessTravel
	case MethodUnknown:
		return ""
	default:
		return ""
	}
}

// Scope returns the GHG Protocol scope of the method.
func (m Method) Scope() Scope {
	return m.Category().Scope()
}

// UsesCompositor reports whether the method produces component masses that
// are combined with fixed GWP weights. The remaining methods multiply a
// pre-weighted factor and pass their total through unchanged.
func (m Method) UsesCompositor() bool {
	switch m {
	case MethodStationary, MethodMobileFuel, MethodMobileDistance:
		return true
	case MethodUnknown,
		MethodFugitiveScaleBase, MethodFugitiveScreening, MethodFugitiveSimple,
		MethodElectricity,
		MethodTravelFuel, MethodTravelDistance, MethodTravelSpend:
		return false
	default:
		return false
	}
}

// MarshalJSON encodes the method by name.
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a method name.
func (m *Method) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing method: %w", err)
	}
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML encodes the method by name.
func (m Method) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML decodes a method name.
func (m *Method) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("parsing method: %w", err)
	}
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
