package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/teamboard/internal/dependencies/mocks"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/auth"
	"github.com/mcoot/teamboard/internal/storage/memory"
	"github.com/mcoot/teamboard/internal/testutil"
)

// TestSecret signs tokens issued by a TestApp
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(TestSecret)
	authCfg.BcryptCost = bcrypt.MinCost

	app, err := newWithDependencies(store, mockClock, mockIDs, authCfg, testutil.NopLogger())
	if err != nil {
		panic(err) // Only fails on an empty secret
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

// TokenFor creates an account with role and returns a bearer token for it
func (t *TestApp) TokenFor(ctx context.Context, username string, role model.Role) (string, error) {
	email := username + "@example.com"
	if _, err := t.AuthService.CreateUser(ctx, username, email, "password123", role); err != nil {
		return "", err
	}
	session, err := t.AuthService.Login(ctx, email, "password123")
	if err != nil {
		return "", err
	}
	return session.Token, nil
}
