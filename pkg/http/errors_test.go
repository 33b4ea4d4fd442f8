package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteError_SetsStatusAndEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, 418, "teapot", "short and stout")

	assert.Equal(t, 418, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeError(t, rec)
	assert.Equal(t, "teapot", resp.Error)
	assert.Equal(t, "short and stout", resp.Message)
	assert.Empty(t, resp.Fields)
}

func TestWriteValidationError_ListsFields(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteValidationError(rec, "validation failed", []string{"email", "password"})

	assert.Equal(t, 400, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "invalid_property", resp.Error)
	assert.Equal(t, []string{"email", "password"}, resp.Fields)
}

func TestCommonWriters_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		write  func(rec *httptest.ResponseRecorder)
		status int
		code   string
	}{
		{"unauthorized", func(r *httptest.ResponseRecorder) { WriteUnauthorized(r, "m") }, 401, "unauthorized"},
		{"forbidden", func(r *httptest.ResponseRecorder) { WriteForbidden(r, "m") }, 403, "forbidden"},
		{"not found", func(r *httptest.ResponseRecorder) { WriteNotFound(r, "m") }, 404, "not_found"},
		{"conflict", func(r *httptest.ResponseRecorder) { WriteConflict(r, "m") }, 409, "conflict"},
		{"rate limited", func(r *httptest.ResponseRecorder) { WriteTooManyRequests(r, "m") }, 429, "rate_limit_exceeded"},
		{"upstream", func(r *httptest.ResponseRecorder) { WriteServiceUnavailable(r, "m") }, 503, "upstream_unavailable"},
		{"internal", func(r *httptest.ResponseRecorder) { WriteInternalError(r, "m") }, 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Error)
		})
	}
}
