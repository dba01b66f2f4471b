package emissions

import "errors"

// Reasons a computation degraded to zero or a record was excluded from
// time bucketing. They are carried as values on results and never returned
// from calculators.
var (
	// ErrFactorNotFound indicates the reference table has no row for the key.
	ErrFactorNotFound = errors.New("emission factor not found")

	// ErrInvalidDate indicates a record date was missing or unparsable.
	ErrInvalidDate = errors.New("invalid or missing record date")

	// ErrDivisionGuard indicates a ratio whose denominator was zero.
	ErrDivisionGuard = errors.New("division by zero guarded")

	// ErrMissingInput indicates a required quantity was zero or negative.
	ErrMissingInput = errors.New("required activity input missing")

	// ErrUnknownMethod indicates an unrecognised calculation method.
	ErrUnknownMethod = errors.New("unknown calculation method")
)
