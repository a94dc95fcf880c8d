package protocol

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fdv.tools/internal/planner"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrBadRequest,
		ErrMethodNotAllowed,
		ErrNotFound,
		ErrInvalidRace,
		ErrInvalidSlot,
		ErrInvalidTier,
		ErrInvalidCurrent,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{fmt.Errorf("%w: x", planner.ErrInvalidRace), ErrInvalidRace, http.StatusBadRequest},
		{fmt.Errorf("%w: x", planner.ErrInvalidSlot), ErrInvalidSlot, http.StatusBadRequest},
		{fmt.Errorf("%w: x", planner.ErrInvalidTier), ErrInvalidTier, http.StatusBadRequest},
		{fmt.Errorf("%w: x", planner.ErrInvalidCurrentShape), ErrInvalidCurrent, http.StatusBadRequest},
		{fmt.Errorf("%w: x", ErrInvalidBody), ErrBadRequest, http.StatusBadRequest},
		{errors.New("disk on fire"), ErrInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		got := CodeFor(c.err)
		if got != c.code {
			t.Fatalf("CodeFor(%v)=%q want %q", c.err, got, c.code)
		}
		if s := HTTPStatus(got); s != c.status {
			t.Fatalf("HTTPStatus(%q)=%d want %d", got, s, c.status)
		}
	}
	if CodeFor(nil) != "" {
		t.Fatalf("nil error should map to empty code")
	}
}
