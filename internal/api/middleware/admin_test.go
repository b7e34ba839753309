package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/teamboard/internal/model"
)

type stubAuthorizer struct {
	err  error
	seen string
}

func (s *stubAuthorizer) Authorize(_ context.Context, credential string) (model.Identity, error) {
	s.seen = credential
	return model.Identity{}, s.err
}

func TestRequireAdminRejectsBeforeHandler(t *testing.T) {
	authz := &stubAuthorizer{err: model.ErrForbidden}
	called := false
	h := Credential(RequireAdmin(authz)(func(http.ResponseWriter, *http.Request) { called = true }))

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bad":`))
	r.Header.Set("Authorization", "Bearer user-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	assert.False(t, called)
	assert.Equal(t, "user-token", authz.seen)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireAdminPassesAuthorized(t *testing.T) {
	authz := &stubAuthorizer{}
	called := false
	h := RequireAdmin(authz)(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
