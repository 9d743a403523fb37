package errs_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/go-bookmarks/internal/errs"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   errs.Kind
		wantStatus int
	}{
		{"unauthorized", errs.NewUnauthorized(errors.New("bad token")), errs.KindUnauthorized, http.StatusUnauthorized},
		{"validation", errs.NewValidation(nil), errs.KindValidation, http.StatusBadRequest},
		{"malformed", errs.NewMalformed(http.StatusUnsupportedMediaType, "nope"), errs.KindValidation, http.StatusUnsupportedMediaType},
		{"not found", errs.NewNotFound("42"), errs.KindNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("update: %w", errs.NewNotFound("42")), errs.KindNotFound, http.StatusNotFound},
		{"plain error", errors.New("connection refused"), errs.KindStore, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := errs.From(tt.err)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantStatus, e.Status)
			assert.Equal(t, tt.wantKind, errs.KindOf(tt.err))
		})
	}
}

func TestStoreKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := errs.NewStore(cause)

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "connection refused")
}

func TestWrite(t *testing.T) {
	t.Run("not found carries id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		errs.Write(rec, errs.NewNotFound("abc"))

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Bookmark not found.", body["err"]["error"])
		assert.Equal(t, "abc", body["err"]["id"])
		assert.Equal(t, float64(404), body["err"]["status"])
		assert.Equal(t, "NOT_FOUND", body["err"]["code"])
	})

	t.Run("store error hides cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		errs.Write(rec, errors.New("pq: password authentication failed"))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
		assert.JSONEq(t, `{"err":{"code":"STORE_ERROR","status":500,"error":"Internal Server Error"}}`, rec.Body.String())
	})

	t.Run("validation lists fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		errs.Write(rec, errs.NewValidation([]errs.FieldError{{Field: "title", Error: "Must not be empty"}}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t,
			`{"err":{"code":"VALIDATION_FAILED","status":400,"error":"Validation failed","fields":[{"field":"title","error":"Must not be empty"}]}}`,
			rec.Body.String())
	})
}
