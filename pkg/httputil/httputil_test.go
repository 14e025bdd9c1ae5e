package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONWithMeta(rec, http.StatusOK, []string{"a"}, &Meta{Total: 1, Counts: map[string]int{"New Lead": 1}})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Counts["New Lead"])
}

func TestError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, fmt.Errorf("wrapped: %w", errors.Validation(map[string]string{"status": "must be one of: x"})))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "must be one of: x", resp.Error.Details["status"])
	})

	t.Run("plain error hides details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, fmt.Errorf("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq")
	})
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Status string `json:"status"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"Approved"}`))
	require.NoError(t, DecodeJSON(req, &body))
	assert.Equal(t, "Approved", body.Status)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	err := DecodeJSON(req, &body)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	type input struct {
		BankStatementURL string `json:"bank_statement_url" validate:"required,url"`
	}

	err := Validate(input{})
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "this field is required", appErr.Details["bank_statement_url"])

	err = Validate(input{BankStatementURL: "not a url"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "must be a valid URL", appErr.Details["bank_statement_url"])

	assert.NoError(t, Validate(input{BankStatementURL: "https://utfs.io/f/abc.png"}))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode(t, rec).Error.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"), "other clients keep their own budget")
}
