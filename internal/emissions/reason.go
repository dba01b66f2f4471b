package emissions

import (
	"encoding/json"
	"errors"
)

// Reason codes used when a ComputedEmission crosses a serialisation boundary.
const (
	ReasonFactorNotFound = "factor_not_found"
	ReasonInvalidDate    = "invalid_date"
	ReasonDivisionGuard  = "division_guard"
	ReasonMissingInput   = "missing_input"
	ReasonUnknownMethod  = "unknown_method"
	reasonOther          = "other"
)

//nolint:gochecknoglobals // Read-only lookup table.
var reasonCodes = []struct {
	code string
	err  error
}{
	{ReasonFactorNotFound, ErrFactorNotFound},
	{ReasonInvalidDate, ErrInvalidDate},
	{ReasonDivisionGuard, ErrDivisionGuard},
	{ReasonMissingInput, ErrMissingInput},
	{ReasonUnknownMethod, ErrUnknownMethod},
}

// ReasonCode maps a reason error to its stable code, or "" for nil.
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return reasonOther
}

// ReasonFromCode is the inverse of ReasonCode. Unknown non-empty codes map to
// an error carrying the code as its message.
func ReasonFromCode(code string) error {
	if code == "" {
		return nil
	}
	for _, rc := range reasonCodes {
		if rc.code == code {
			return rc.err
		}
	}
	return errors.New(code)
}

type computedEmissionJSON ComputedEmission

// MarshalJSON encodes the emission with Reason as a stable code.
func (c ComputedEmission) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		computedEmissionJSON

		Reason string `json:"reason,omitempty"`
	}{computedEmissionJSON(c), ReasonCode(c.Reason)})
}

// UnmarshalJSON restores Reason from its code.
func (c *ComputedEmission) UnmarshalJSON(data []byte) error {
	var aux struct {
		computedEmissionJSON

		Reason string `json:"reason,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = ComputedEmission(aux.computedEmissionJSON)
	c.Reason = ReasonFromCode(aux.Reason)
	return nil
}
