package planner

import "errors"

// Input error kinds. Callers match them with errors.Is; messages carry the
// offending value.
var (
	ErrInvalidRace         = errors.New("invalid race")
	ErrInvalidSlot         = errors.New("invalid slot")
	ErrInvalidTier         = errors.New("invalid tier")
	ErrInvalidCurrentShape = errors.New("invalid current levels")
)

// IsInputError reports whether err is one of the user-input kinds above.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidRace) ||
		errors.Is(err, ErrInvalidSlot) ||
		errors.Is(err, ErrInvalidTier) ||
		errors.Is(err, ErrInvalidCurrentShape)
}
