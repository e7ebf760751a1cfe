package pricing

import "errors"

var (
	// ErrInvalidFeeConfig is returned when combined fee rates reach 100%.
	ErrInvalidFeeConfig = errors.New("pricing: invalid fee config")
	// ErrMarginCorrectionBound is returned when the margin correction loop
	// exceeds its iteration bound.
	ErrMarginCorrectionBound = errors.New("pricing: margin correction bound exceeded")
	// ErrNegativeHostNet is returned when a negative host net amount is provided.
	ErrNegativeHostNet = errors.New("pricing: negative host net amount")
	// ErrNonPositiveHostNet is returned when the host net nightly rate is
	// zero or below.
	ErrNonPositiveHostNet = errors.New("pricing: host net nightly rate must be positive")
	// ErrInvalidNights is returned when nights is below 1.
	ErrInvalidNights = errors.New("pricing: invalid nights")
	// ErrEmptySchedule is returned when a fee schedule has no tiers.
	ErrEmptySchedule = errors.New("pricing: empty fee schedule")
)
