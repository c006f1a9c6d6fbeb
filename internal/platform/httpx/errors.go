package httpx

import (
	"errors"
	"net/http"

	"github.com/FusherTm/kimerav1/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unexpected errors surface as a bare 500; the atomic unit that produced
// them has already been rolled back, so no detail is leaked.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusBadRequest, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrInvariant):
		Problem(w, http.StatusBadRequest, "Invariant Violation", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
