package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/membership/internal/shared"
)

type payload struct {
	Name string `json:"name"`
	Umur *int   `json:"umur"`
}

func TestDecodeJSONReportsTypeMismatchAsValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","umur":"ten"}`))
	var dst payload
	err := DecodeJSON(httptest.NewRecorder(), req, &dst)

	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"The umur field must be an integer."}, verr.Fields["umur"])
}

func TestDecodeJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	var dst payload
	err := DecodeJSON(httptest.NewRecorder(), req, &dst)
	assert.ErrorIs(t, err, ErrMalformedBody)

	rr := httptest.NewRecorder()
	RespondError(rr, err)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var dst payload
	assert.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
}

func TestValidationBodyShape(t *testing.T) {
	rr := httptest.NewRecorder()
	Validation(rr, shared.NewValidationError("email", "The email has already been taken."))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body ValidationBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, ValidationMessage, body.Message)
	assert.Equal(t, []string{"The email has already been taken."}, body.Errors["email"])
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrUnauthenticated, http.StatusUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
	}
}
