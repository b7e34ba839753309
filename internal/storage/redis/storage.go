package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Each record is a JSON string key. Unique fields are claimed with SETNX on an index key before the
// record is written, so two writers racing for the same name cannot both succeed.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying client so the broadcast relay can share the connection pool
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Team operations

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := listAll[model.Team](ctx, s.client, teamsIndexKey())
	if err != nil {
		return nil, err
	}
	model.SortTeams(teams)
	return teams, nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	var team model.Team
	if err := s.getJSON(ctx, teamKey(id), &team, model.ErrTeamNotFound); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Storage) InsertTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, teamNameIndexKey(team.Name), string(team.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicateName
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, teamKey(team.ID), data, 0)
	pipe.SAdd(ctx, teamsIndexKey(), string(team.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the name so a retry is possible
		_ = s.client.Del(ctx, teamNameIndexKey(team.Name)).Err()
		return err
	}
	return nil
}

func (s *Storage) UpdateTeam(ctx context.Context, team *model.Team) error {
	existing, err := s.GetTeam(ctx, team.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(team)
	if err != nil {
		return err
	}

	renamed := existing.Name != team.Name
	if renamed {
		claimed, err := s.client.SetNX(ctx, teamNameIndexKey(team.Name), string(team.ID), 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrDuplicateName
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, teamKey(team.ID), data, 0)
	if renamed {
		pipe.Del(ctx, teamNameIndexKey(existing.Name))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		if renamed {
			_ = s.client.Del(ctx, teamNameIndexKey(team.Name)).Err()
		}
		return err
	}
	return nil
}

func (s *Storage) DeleteTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, teamKey(id))
	pipe.Del(ctx, teamNameIndexKey(team.Name))
	pipe.SRem(ctx, teamsIndexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *Storage) DeleteAllTeams(ctx context.Context) error {
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, t := range teams {
		pipe.Del(ctx, teamKey(t.ID))
		pipe.Del(ctx, teamNameIndexKey(t.Name))
	}
	pipe.Del(ctx, teamsIndexKey())
	_, err = pipe.Exec(ctx)
	return err
}

// Challenge operations

func (s *Storage) ListChallenges(ctx context.Context) ([]*model.Challenge, error) {
	challenges, err := listAll[model.Challenge](ctx, s.client, challengesIndexKey())
	if err != nil {
		return nil, err
	}
	model.SortChallenges(challenges)
	return challenges, nil
}

func (s *Storage) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	var challenge model.Challenge
	if err := s.getJSON(ctx, challengeKey(id), &challenge, model.ErrChallengeNotFound); err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (s *Storage) InsertChallenge(ctx context.Context, challenge *model.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, challengeKey(challenge.ID), data, 0)
	pipe.SAdd(ctx, challengesIndexKey(), string(challenge.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateChallenge(ctx context.Context, challenge *model.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	// SET XX only writes when the key already exists
	ok, err := s.client.SetXX(ctx, challengeKey(challenge.ID), data, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrChallengeNotFound
	}
	return nil
}

func (s *Storage) DeleteChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	challenge, err := s.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, challengeKey(id))
	pipe.SRem(ctx, challengesIndexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *Storage) DeleteAllChallenges(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, challengesIndexKey()).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, challengeKey(model.ChallengeID(id)))
	}
	pipe.Del(ctx, challengesIndexKey())
	_, err = pipe.Exec(ctx)
	return err
}

// User operations

func (s *Storage) InsertUser(ctx context.Context, user *model.User) error {
	u := *user
	u.Email = strings.ToLower(u.Email)

	data, err := json.Marshal(&u)
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, userEmailIndexKey(u.Email), string(u.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailExists
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(u.ID), data, 0)
	pipe.SAdd(ctx, usersIndexKey(), string(u.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var user model.User
	if err := s.getJSON(ctx, userKey(id), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, userEmailIndexKey(strings.ToLower(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) DeleteAllUsers(ctx context.Context) error {
	users, err := listAll[model.User](ctx, s.client, usersIndexKey())
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, u := range users {
		pipe.Del(ctx, userKey(u.ID))
		pipe.Del(ctx, userEmailIndexKey(u.Email))
	}
	pipe.Del(ctx, usersIndexKey())
	_, err = pipe.Exec(ctx)
	return err
}

// getJSON loads a JSON record, mapping a missing key to notFound
func (s *Storage) getJSON(ctx context.Context, key string, dest any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// listAll loads every record whose id is a member of the index set.
// The record key is rebuilt from the id by the caller's key scheme, so ids are stored as record keys.
func listAll[T any](ctx context.Context, client *redis.Client, indexKey string) ([]*T, error) {
	ids, err := client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(indexKey, id)
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between SMEMBERS and MGET
		}
		var record T
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

// recordKey maps an index set and member id to the record key
func recordKey(indexKey, id string) string {
	switch indexKey {
	case teamsIndexKey():
		return teamKey(model.TeamID(id))
	case challengesIndexKey():
		return challengeKey(model.ChallengeID(id))
	default:
		return userKey(model.UserID(id))
	}
}
