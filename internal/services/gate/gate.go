// Package gate decides whether a caller may perform an operation.
package gate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/teamboard/internal/model"
)

// Resolver turns a bearer credential into an Identity
type Resolver interface {
	Resolve(ctx context.Context, credential string) (model.Identity, error)
}

// Gate checks a credential against a required role.
// It never renews or revokes credentials.
type Gate struct {
	resolver Resolver
	logger   *slog.Logger
}

// New creates a Gate backed by resolver
func New(resolver Resolver, logger *slog.Logger) *Gate {
	return &Gate{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "gate")),
	}
}

// Authorize resolves credential and checks it meets required.
//
// With required == model.RoleNone it never fails: a missing or unresolvable credential yields
// model.Anonymous. Otherwise a missing or unresolvable credential fails model.ErrUnauthenticated and a
// role below required fails model.ErrForbidden.
func (g *Gate) Authorize(ctx context.Context, credential string, required model.Role) (model.Identity, error) {
	if credential == "" {
		if required == model.RoleNone {
			return model.Anonymous, nil
		}
		return model.Anonymous, model.ErrUnauthenticated
	}

	identity, err := g.resolver.Resolve(ctx, credential)
	if err != nil {
		if required == model.RoleNone {
			return model.Anonymous, nil
		}
		g.logger.Debug("credential rejected", slog.String("error", err.Error()))
		return model.Anonymous, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}

	if !identity.Role.Satisfies(required) {
		g.logger.Info("insufficient role",
			slog.String("user_id", string(identity.UserID)),
			slog.String("role", string(identity.Role)),
			slog.String("required", string(required)),
		)
		return identity, model.ErrForbidden
	}

	return identity, nil
}
