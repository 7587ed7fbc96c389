// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/respond"
)

func TestOK_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.OK(recorder, "Fetched", map[string]string{"name": "Ana"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, float64(200), body["statusCode"])
	assert.Equal(t, "Fetched", body["message"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Ana", body["data"].(map[string]any)["name"])
}

func TestError_Envelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantErrors int
	}{
		{"unauthorized", apperr.Unauthorized("Invalid email or password"), http.StatusUnauthorized, apperr.CodeUnauthorized, 0},
		{"validation", apperr.ValidationError("bad", apperr.FieldError{Field: "email", Message: "bad"}), http.StatusBadRequest, apperr.CodeValidation, 1},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperr.CodeInternal, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, float64(tt.wantStatus), body["statusCode"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body, "data")
			assert.Nil(t, body["data"])
			assert.Len(t, body["errors"], tt.wantErrors)
		})
	}
}

func TestError_HidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: password authentication failed"))

	assert.NotContains(t, recorder.Body.String(), "password authentication")
}
