package access

import "github.com/rotisserie/eris"

var (
	// ErrInvalidDistance is returned by Observe for zero, negative or
	// non-finite distances, which the weighting rule cannot divide by.
	ErrInvalidDistance = eris.New("access: invalid distance")

	// ErrUnknownKey is returned when reading a category, year, area or
	// business that was never observed.
	ErrUnknownKey = eris.New("access: unknown key")
)
