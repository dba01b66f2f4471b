package greenops

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors that can be compared with errors.Is().
var (
	// ErrInvalidUnit indicates an unrecognized emissions mass unit.
	ErrInvalidUnit = constError("invalid emissions unit")

	// ErrNegativeValue indicates a negative emissions value where only
	// non-negative values are meaningful (equivalencies).
	ErrNegativeValue = constError("negative emissions value")

	// ErrCalculationOverflow indicates a value too large to calculate safely.
	ErrCalculationOverflow = constError("calculation overflow")
)
