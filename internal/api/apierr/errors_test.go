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

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/auth"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", model.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthorized},
		{"wrapped unauthenticated", fmt.Errorf("%w: bad sig", model.ErrUnauthenticated), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"team not found", model.ErrTeamNotFound, http.StatusNotFound, CodeTeamNotFound},
		{"challenge not found", model.ErrChallengeNotFound, http.StatusNotFound, CodeChallengeNotFound},
		{"duplicate name", model.ErrDuplicateName, http.StatusBadRequest, CodeDuplicateName},
		{"validation", model.NewValidationError("name", "required"), http.StatusBadRequest, CodeValidationFailed},
		{"email exists", model.ErrEmailExists, http.StatusConflict, CodeEmailExists},
		{"store", fmt.Errorf("%w: insert: %w", model.ErrStoreUnavailable, errors.New("eof")), http.StatusInternalServerError, CodeStoreUnavailable},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"token", auth.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized},
		{"invalid request", NewInvalidRequestError("bad json"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, model.NewValidationError("points", "points cannot be negative"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "points", resp.Error.Field)
	assert.Equal(t, "points cannot be negative", resp.Error.Message)
}
