package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{Validation("x"), http.StatusUnprocessableEntity},
		{NotFound("x"), http.StatusNotFound},
		{RateLimit("x"), http.StatusTooManyRequests},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
		{Internal("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode, tt.err.Code)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := InternalWrap(cause, "cannot save")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: disk full")
}

func TestDataValidationError(t *testing.T) {
	err := &DataValidationError{Line: 4, Field: "Quantity", Value: "-2", Reason: "must not be negative"}
	assert.Equal(t, `line 4: Quantity "-2": must not be negative`, err.Error())

	noValue := &DataValidationError{Line: 2, Field: "Total", Reason: "missing column"}
	assert.Equal(t, "line 2: Total: missing column", noValue.Error())
}

func TestAsAppError(t *testing.T) {
	t.Run("app error passes through", func(t *testing.T) {
		original := NotFound("gone")
		assert.Same(t, original, AsAppError(fmt.Errorf("wrapped: %w", original)))
	})

	t.Run("dataset error becomes validation", func(t *testing.T) {
		dataErr := &DataValidationError{Line: 3, Field: "Date", Value: "13/1/2019", Reason: "unparseable"}
		appErr := AsAppError(fmt.Errorf("load: %w", dataErr))

		assert.Equal(t, CodeValidation, appErr.Code)
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
		assert.Equal(t, dataErr.Error(), appErr.Details)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		appErr := AsAppError(stderrors.New("boom"))
		assert.Equal(t, CodeInternal, appErr.Code)
	})
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()

	WriteError(w, logger, BadRequest("bad month"), "req-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, string(CodeBadRequest), body.Error.Code)
	assert.Equal(t, "bad month", body.Error.Message)
	assert.Equal(t, "req-1", body.Error.RequestID)
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"orders": 2}, map[string]string{"Cache-Control": "public, max-age=300"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"success":true,"data":{"orders":2}}`, w.Body.String())
}
