package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrUserDataNotFound, http.StatusNotFound},
		{model.ErrInvalidPayload, http.StatusBadRequest},
		{model.ErrMissingUserID, http.StatusBadRequest},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrEmailExists, http.StatusConflict},
		{auth.ErrLinkExpired, http.StatusGone},
		{fmt.Errorf("wrapped: %w", auth.ErrInvalidLink), http.StatusBadRequest},
		{NewForbiddenError("nope"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestWriteErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, model.ErrUserDataNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User not found", body.Error)
	assert.Equal(t, CodeUserNotFound, body.Code)
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("redis: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}
