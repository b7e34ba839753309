// Package postgres provides a PostgreSQL-backed scoreboard storage implementation.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

// Config holds PostgreSQL connection settings
type Config struct {
	URL            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// DefaultConfig returns sensible defaults for PostgreSQL configuration
func DefaultConfig() Config {
	return Config{
		MaxConns:       10,
		ConnectTimeout: 10 * time.Second,
	}
}

// Store persists scoreboard state in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

var _ storage.Storage = (*Store)(nil)

// Team operations

const teamColumns = `id, name, points, status, color, created_at, updated_at`

func scanTeam(row pgx.Row) (*model.Team, error) {
	var (
		t      model.Team
		id     string
		status string
	)
	if err := row.Scan(&id, &t.Name, &t.Points, &status, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = model.TeamID(id)
	t.Status = model.TeamStatus(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []*model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	model.SortTeams(teams)
	return teams, nil
}

func (s *Store) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (s *Store) InsertTeam(ctx context.Context, team *model.Team) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO teams (`+teamColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(team.ID), team.Name, team.Points, string(team.Status), team.Color,
		team.CreatedAt.UTC(), team.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateName
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (s *Store) UpdateTeam(ctx context.Context, team *model.Team) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE teams SET name = $1, points = $2, status = $3, color = $4, created_at = $5, updated_at = $6 WHERE id = $7`,
		team.Name, team.Points, string(team.Status), team.Color,
		team.CreatedAt.UTC(), team.UpdatedAt.UTC(), string(team.ID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateName
		}
		return fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTeamNotFound
	}
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx, `DELETE FROM teams WHERE id = $1 RETURNING `+teamColumns, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, fmt.Errorf("delete team: %w", err)
	}
	return t, nil
}

func (s *Store) DeleteAllTeams(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM teams`); err != nil {
		return fmt.Errorf("delete teams: %w", err)
	}
	return nil
}

// Challenge operations

const challengeColumns = `id, title, description, points, status, created_at, updated_at`

func scanChallenge(row pgx.Row) (*model.Challenge, error) {
	var (
		c      model.Challenge
		id     string
		status string
	)
	if err := row.Scan(&id, &c.Title, &c.Description, &c.Points, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = model.ChallengeID(id)
	c.Status = model.ChallengeStatus(status)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (s *Store) ListChallenges(ctx context.Context) ([]*model.Challenge, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+challengeColumns+` FROM challenges`)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []*model.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenges: %w", err)
	}
	model.SortChallenges(challenges)
	return challenges, nil
}

func (s *Store) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	c, err := scanChallenge(s.pool.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

func (s *Store) InsertChallenge(ctx context.Context, challenge *model.Challenge) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO challenges (`+challengeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(challenge.ID), challenge.Title, challenge.Description, challenge.Points,
		string(challenge.Status), challenge.CreatedAt.UTC(), challenge.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *Store) UpdateChallenge(ctx context.Context, challenge *model.Challenge) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE challenges SET title = $1, description = $2, points = $3, status = $4, created_at = $5, updated_at = $6 WHERE id = $7`,
		challenge.Title, challenge.Description, challenge.Points, string(challenge.Status),
		challenge.CreatedAt.UTC(), challenge.UpdatedAt.UTC(), string(challenge.ID),
	)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChallengeNotFound
	}
	return nil
}

func (s *Store) DeleteChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	c, err := scanChallenge(s.pool.QueryRow(ctx, `DELETE FROM challenges WHERE id = $1 RETURNING `+challengeColumns, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("delete challenge: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteAllChallenges(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM challenges`); err != nil {
		return fmt.Errorf("delete challenges: %w", err)
	}
	return nil
}

// User operations

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		id   string
		role string
	)
	if err := row.Scan(&id, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = model.UserID(id)
	u.Role = model.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, user *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(user.ID), user.Username, strings.ToLower(user.Email), user.PasswordHash,
		string(user.Role), user.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) DeleteAllUsers(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
