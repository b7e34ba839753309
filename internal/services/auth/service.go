package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/teamboard/internal/dependencies/clock"
	"github.com/mcoot/teamboard/internal/dependencies/ids"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
)

// Session is an issued bearer token and the account it belongs to
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Claims are the JWT claims carried by a bearer token
type Claims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs and verifies tokens (HS256)
	Secret []byte
	// TokenTTL is how long an issued token stays valid
	TokenTTL time.Duration
	// BcryptCost is the password hashing cost
	BcryptCost int
	// Issuer is written to and checked against the iss claim
	Issuer string
}

// DefaultConfig returns default auth configuration. Secret must still be set.
func DefaultConfig() Config {
	return Config{
		TokenTTL:   24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
		Issuer:     "teamboard",
	}
}

// Service handles accounts and bearer tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	cfg     Config
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, cfg Config, logger *slog.Logger) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	defaults := DefaultConfig()
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "auth")),
	}, nil
}

// Register creates a user-role account and issues a token for it
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	user, err := s.CreateUser(ctx, username, email, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateUser validates and stores a new account with the given role
func (s *Service) CreateUser(ctx context.Context, username, email, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateAccount(username, email, password, role); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           model.UserID(s.ids.NewID()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.InsertUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("user_id", string(user.ID)),
		slog.String("role", string(role)),
	)
	return user, nil
}

// Login checks an email and password and issues a token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.storage.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", slog.String("user_id", string(user.ID)))
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Verify checks a token and returns the account it names
func (s *Service) Verify(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.storage.GetUser(ctx, model.UserID(claims.Subject))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// TokenTTL reports how long issued tokens stay valid
func (s *Service) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

// Resolve implements gate.Resolver from the token claims alone
func (s *Service) Resolve(_ context.Context, credential string) (model.Identity, error) {
	claims, err := s.parse(credential)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{
		UserID:   model.UserID(claims.Subject),
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

func (s *Service) issue(user *model.User) (*Session, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validateAccount(username, email, password string, role model.Role) error {
	if n := len([]rune(username)); n < MinUsernameLength || n > MaxUsernameLength {
		return model.NewValidationError("username",
			fmt.Sprintf("must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return model.NewValidationError("email", "must be a valid email address")
	}
	if len(password) < MinPasswordLength {
		return model.NewValidationError("password",
			fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if !role.Valid() {
		return model.NewValidationError("role", "must be admin or user")
	}
	return nil
}
