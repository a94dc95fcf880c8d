package protocol

import (
	"errors"
	"net/http"

	"fdv.tools/internal/planner"
)

const (
	// Request validation.
	ErrBadRequest       = "E_BAD_REQUEST"
	ErrMethodNotAllowed = "E_METHOD_NOT_ALLOWED"
	ErrNotFound         = "E_NOT_FOUND"

	// Lookup inputs.
	ErrInvalidRace    = "E_INVALID_RACE"
	ErrInvalidSlot    = "E_INVALID_SLOT"
	ErrInvalidTier    = "E_INVALID_TIER"
	ErrInvalidCurrent = "E_INVALID_CURRENT"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]int{
	ErrBadRequest:       http.StatusBadRequest,
	ErrMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrNotFound:         http.StatusNotFound,
	ErrInvalidRace:      http.StatusBadRequest,
	ErrInvalidSlot:      http.StatusBadRequest,
	ErrInvalidTier:      http.StatusBadRequest,
	ErrInvalidCurrent:   http.StatusBadRequest,
	ErrInternal:         http.StatusInternalServerError,
}

// ErrInvalidBody marks a request body that is not JSON or fails its schema.
var ErrInvalidBody = errors.New("invalid request body")

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeFor maps an error returned by a query to its wire code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, planner.ErrInvalidRace):
		return ErrInvalidRace
	case errors.Is(err, planner.ErrInvalidSlot):
		return ErrInvalidSlot
	case errors.Is(err, planner.ErrInvalidTier):
		return ErrInvalidTier
	case errors.Is(err, planner.ErrInvalidCurrentShape):
		return ErrInvalidCurrent
	case errors.Is(err, ErrInvalidBody):
		return ErrBadRequest
	default:
		return ErrInternal
	}
}

// HTTPStatus returns the status for a code; unknown codes are internal.
func HTTPStatus(code string) int {
	if s, ok := knownCodes[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
