// Package sqlite provides a SQLite-backed scoreboard storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists scoreboard state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	return open(dsn)
}

// OpenMemory opens a private in-memory database. Used by tests and the seed dry run.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps :memory: databases shared and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var _ storage.Storage = (*Store)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

// Team operations

const teamColumns = `id, name, points, status, color, created_at, updated_at`

func scanTeam(row rowScanner) (*model.Team, error) {
	var (
		t         model.Team
		status    string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Points, &status, &t.Color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Status = model.TeamStatus(status)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams`)
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
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, string(id))
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (s *Store) InsertTeam(ctx context.Context, team *model.Team) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO teams (`+teamColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(team.ID), team.Name, team.Points, string(team.Status), team.Color,
		toMillis(team.CreatedAt), toMillis(team.UpdatedAt),
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
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE teams SET name = ?, points = ?, status = ?, color = ?, created_at = ?, updated_at = ? WHERE id = ?`,
		team.Name, team.Points, string(team.Status), team.Color,
		toMillis(team.CreatedAt), toMillis(team.UpdatedAt), string(team.ID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateName
		}
		return fmt.Errorf("update team: %w", err)
	}
	return requireAffected(res, model.ErrTeamNotFound)
}

func (s *Store) DeleteTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	row := s.sqlDB.QueryRowContext(ctx, `DELETE FROM teams WHERE id = ? RETURNING `+teamColumns, string(id))
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, fmt.Errorf("delete team: %w", err)
	}
	return t, nil
}

func (s *Store) DeleteAllTeams(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM teams`); err != nil {
		return fmt.Errorf("delete teams: %w", err)
	}
	return nil
}

// Challenge operations

const challengeColumns = `id, title, description, points, status, created_at, updated_at`

func scanChallenge(row rowScanner) (*model.Challenge, error) {
	var (
		c         model.Challenge
		status    string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Points, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Status = model.ChallengeStatus(status)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

func (s *Store) ListChallenges(ctx context.Context) ([]*model.Challenge, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+challengeColumns+` FROM challenges`)
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
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, string(id))
	c, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

func (s *Store) InsertChallenge(ctx context.Context, challenge *model.Challenge) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO challenges (`+challengeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(challenge.ID), challenge.Title, challenge.Description, challenge.Points,
		string(challenge.Status), toMillis(challenge.CreatedAt), toMillis(challenge.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *Store) UpdateChallenge(ctx context.Context, challenge *model.Challenge) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE challenges SET title = ?, description = ?, points = ?, status = ?, created_at = ?, updated_at = ? WHERE id = ?`,
		challenge.Title, challenge.Description, challenge.Points, string(challenge.Status),
		toMillis(challenge.CreatedAt), toMillis(challenge.UpdatedAt), string(challenge.ID),
	)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	return requireAffected(res, model.ErrChallengeNotFound)
}

func (s *Store) DeleteChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	row := s.sqlDB.QueryRowContext(ctx, `DELETE FROM challenges WHERE id = ? RETURNING `+challengeColumns, string(id))
	c, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("delete challenge: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteAllChallenges(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM challenges`); err != nil {
		return fmt.Errorf("delete challenges: %w", err)
	}
	return nil
}

// User operations

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u         model.User
		role      string
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, user *model.User) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		string(user.ID), user.Username, strings.ToLower(user.Email), user.PasswordHash,
		string(user.Role), toMillis(user.CreatedAt),
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
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, string(id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	u, err := scanUser(s.sqlDB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) DeleteAllUsers(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
