package identity

import "errors"

var (
	// ErrInvalidName is returned when a full name has fewer than two
	// tokens or a one-letter surname.
	ErrInvalidName = errors.New("full name must have at least first and last name")

	// ErrInvalidInput is returned when a key component is empty after
	// normalization.
	ErrInvalidInput = errors.New("identity input is empty after normalization")
)
