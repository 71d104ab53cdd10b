package httpx

import (
	"errors"
	"net/http"

	"github.com/medira-his/medira/internal/shared"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses. Internal detail is
// never leaked on the wire; unknown errors collapse to a bare 500 envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrTokenRevoked):
		Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, shared.ErrForbidden):
		Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound), errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
