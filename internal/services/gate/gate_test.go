package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/testutil"
)

// stubResolver maps fixed tokens to identities
type stubResolver struct {
	identities map[string]model.Identity
	calls      int
}

func (r *stubResolver) Resolve(_ context.Context, credential string) (model.Identity, error) {
	r.calls++
	identity, ok := r.identities[credential]
	if !ok {
		return model.Identity{}, errors.New("bad token")
	}
	return identity, nil
}

type GateSuite struct {
	suite.Suite
	resolver *stubResolver
	gate     *Gate
	ctx      context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.resolver = &stubResolver{identities: map[string]model.Identity{
		"admin-token": {UserID: "u1", Username: "admin", Role: model.RoleAdmin},
		"user-token":  {UserID: "u2", Username: "user1", Role: model.RoleUser},
	}}
	s.gate = New(s.resolver, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *GateSuite) TestAdminPassesAdminCheck() {
	identity, err := s.gate.Authorize(s.ctx, "admin-token", model.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), identity.UserID)
	s.Equal(model.RoleAdmin, identity.Role)
}

func (s *GateSuite) TestUserForbiddenFromAdminCheck() {
	identity, err := s.gate.Authorize(s.ctx, "user-token", model.RoleAdmin)
	s.ErrorIs(err, model.ErrForbidden)
	s.Equal(model.UserID("u2"), identity.UserID)
}

func (s *GateSuite) TestMissingCredentialUnauthenticated() {
	_, err := s.gate.Authorize(s.ctx, "", model.RoleAdmin)
	s.ErrorIs(err, model.ErrUnauthenticated)
	s.Zero(s.resolver.calls)
}

func (s *GateSuite) TestUnresolvableCredentialUnauthenticated() {
	_, err := s.gate.Authorize(s.ctx, "garbage", model.RoleAdmin)
	s.ErrorIs(err, model.ErrUnauthenticated)
	s.NotErrorIs(err, model.ErrForbidden)
}

func (s *GateSuite) TestRoleNoneNeverFails() {
	for _, cred := range []string{"", "garbage"} {
		identity, err := s.gate.Authorize(s.ctx, cred, model.RoleNone)
		s.Require().NoError(err)
		s.True(identity.IsAnonymous())
	}

	identity, err := s.gate.Authorize(s.ctx, "user-token", model.RoleNone)
	s.Require().NoError(err)
	s.Equal("user1", identity.Username)
}

func (s *GateSuite) TestUserPassesUserCheck() {
	_, err := s.gate.Authorize(s.ctx, "user-token", model.RoleUser)
	s.NoError(err)
}
