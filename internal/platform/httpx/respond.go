// Package httpx provides JSON response utilities shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/odyssey-erp/membership/internal/shared"
)

// MaxBodyBytes bounds decoded request bodies.
const MaxBodyBytes = 1 << 20

// ValidationMessage is the top-level message of a 422 response.
const ValidationMessage = "The given data was invalid."

// MessageBody is the {"message": ...} response shape.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is the {"error": ...} response shape.
type ErrorBody struct {
	Error string `json:"error"`
}

// ValidationBody is the 422 response shape.
type ValidationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message sends {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// Error sends {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Validation sends a 422 with field-keyed messages.
func Validation(w http.ResponseWriter, verr *shared.ValidationError) {
	fields := map[string][]string{}
	if verr != nil && verr.Fields != nil {
		fields = verr.Fields
	}
	JSON(w, http.StatusUnprocessableEntity, ValidationBody{Message: ValidationMessage, Errors: fields})
}

// DecodeJSON decodes the request body into target. Type mismatches on a known
// field come back as a *shared.ValidationError keyed by the JSON field name.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return shared.NewValidationError(typeErr.Field, typeMismatchMessage(typeErr))
	}
	return errors.Join(ErrMalformedBody, err)
}

func typeMismatchMessage(err *json.UnmarshalTypeError) string {
	switch err.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "The " + shared.Attribute(err.Field) + " field must be an integer."
	default:
		return "The " + shared.Attribute(err.Field) + " field must be a string."
	}
}
