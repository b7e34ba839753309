package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/teamboard/internal/api/apierr"
	"github.com/mcoot/teamboard/internal/model"
)

// AdminAuthorizer decides whether a credential may mutate the scoreboard
type AdminAuthorizer interface {
	Authorize(ctx context.Context, credential string) (model.Identity, error)
}

// RequireAdmin wraps a mutating handler so the credential is checked before the request body is touched
func RequireAdmin(authorizer AdminAuthorizer) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, err := authorizer.Authorize(r.Context(), GetCredential(r.Context())); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next(w, r)
		}
	}
}
