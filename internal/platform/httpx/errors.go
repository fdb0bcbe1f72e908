package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/membership/internal/shared"
)

// ErrMalformedBody marks request bodies that are not valid JSON.
var ErrMalformedBody = errors.New("malformed JSON body")

// UnauthenticatedMessage is returned on 401 for bearer-protected routes.
const UnauthenticatedMessage = "Unauthenticated."

// RespondError maps common errors to HTTP responses. Handlers with
// resource-specific bodies handle those cases before falling back here.
func RespondError(w http.ResponseWriter, err error) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		Validation(w, verr)
	case errors.Is(err, ErrMalformedBody):
		Message(w, http.StatusBadRequest, "Malformed JSON payload.")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, shared.ErrUnauthenticated):
		Message(w, http.StatusUnauthorized, UnauthenticatedMessage)
	case errors.Is(err, shared.ErrForbidden):
		Message(w, http.StatusForbidden, "Forbidden.")
	default:
		Error(w, http.StatusInternalServerError, "Internal server error.")
	}
}
