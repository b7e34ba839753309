// Package scoreboard is the mutation pipeline: every write is authorized, applied to the store and,
// once persisted, signalled to subscribers.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/teamboard/internal/dependencies/clock"
	"github.com/mcoot/teamboard/internal/dependencies/ids"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/ledger"
	"github.com/mcoot/teamboard/internal/storage"
)

// Authorizer checks a credential against a required role
type Authorizer interface {
	Authorize(ctx context.Context, credential string, required model.Role) (model.Identity, error)
}

// Publisher signals that a topic changed
type Publisher interface {
	Publish(topic model.Topic)
}

// Controller runs reads and mutations against the store.
// Team mutations hold a per-team lock from read to broadcast, so concurrent writers to one team
// never lose an update. The lock is process-local.
type Controller struct {
	storage   storage.Storage
	gate      Authorizer
	publisher Publisher
	clock     clock.Clock
	ids       ids.Generator
	locks     *keyLock
	logger    *slog.Logger
}

// NewController creates a new scoreboard Controller
func NewController(
	storage storage.Storage,
	gate Authorizer,
	publisher Publisher,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		gate:      gate,
		publisher: publisher,
		clock:     clock,
		ids:       ids,
		locks:     newKeyLock(),
		logger:    logger.With(slog.String("component", "scoreboard")),
	}
}

// Reads

// ListTeams returns all teams, points descending then name ascending
func (c *Controller) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := c.storage.ListTeams(ctx)
	if err != nil {
		return nil, c.storeError("list teams", err)
	}
	return teams, nil
}

// GetTeam returns one team
func (c *Controller) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	team, err := c.storage.GetTeam(ctx, id)
	if err != nil {
		return nil, c.storeError("get team", err)
	}
	return team, nil
}

// ListChallenges returns all challenges, newest first
func (c *Controller) ListChallenges(ctx context.Context) ([]*model.Challenge, error) {
	challenges, err := c.storage.ListChallenges(ctx)
	if err != nil {
		return nil, c.storeError("list challenges", err)
	}
	return challenges, nil
}

// GetChallenge returns one challenge
func (c *Controller) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	challenge, err := c.storage.GetChallenge(ctx, id)
	if err != nil {
		return nil, c.storeError("get challenge", err)
	}
	return challenge, nil
}

// Team mutations

// CreateTeam validates and inserts a new team
func (c *Controller) CreateTeam(ctx context.Context, credential string, input model.TeamInput) (*model.Team, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	team := &model.Team{
		ID:        model.TeamID(c.ids.NewID()),
		Name:      strings.TrimSpace(input.Name),
		Status:    input.Status,
		Color:     strings.TrimSpace(input.Color),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Points != nil {
		team.Points = *input.Points
	}
	if team.Status == "" {
		team.Status = model.TeamStatusActive
	}
	if team.Color == "" {
		team.Color = model.DefaultTeamColor
	}
	if err := team.Validate(); err != nil {
		return nil, err
	}

	if err := c.storage.InsertTeam(ctx, team); err != nil {
		return nil, c.storeError("insert team", err)
	}

	c.logger.Info("team created",
		slog.String("team_id", string(team.ID)),
		slog.String("name", team.Name),
		slog.String("by", string(identity.UserID)))
	c.publish(model.TeamTopics...)
	return team, nil
}

// UpdateTeam applies patch to an existing team
func (c *Controller) UpdateTeam(ctx context.Context, credential string, id model.TeamID, patch model.TeamPatch) (*model.Team, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(string(id))
	defer unlock()

	team, err := c.storage.GetTeam(ctx, id)
	if err != nil {
		return nil, c.storeError("get team", err)
	}

	patch.Apply(team)
	if err := team.Validate(); err != nil {
		return nil, err
	}
	team.UpdatedAt = c.clock.Now()

	if err := c.storage.UpdateTeam(ctx, team); err != nil {
		return nil, c.storeError("update team", err)
	}

	c.logger.Info("team updated",
		slog.String("team_id", string(team.ID)),
		slog.String("by", string(identity.UserID)))
	c.publish(model.TeamTopics...)
	return team, nil
}

// UpdatePoints reads the team's current points, applies the ledger operation and persists the result
func (c *Controller) UpdatePoints(ctx context.Context, credential string, id model.TeamID, op ledger.Operation, amount int64) (*model.Team, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	if amount < 0 && op != ledger.OpSet {
		return nil, model.NewValidationError("points", "amount cannot be negative for "+string(op))
	}

	unlock := c.locks.lock(string(id))
	defer unlock()

	team, err := c.storage.GetTeam(ctx, id)
	if err != nil {
		return nil, c.storeError("get team", err)
	}

	previous := team.Points
	team.Points = ledger.ApplyDelta(previous, op, amount)
	team.UpdatedAt = c.clock.Now()

	if err := c.storage.UpdateTeam(ctx, team); err != nil {
		return nil, c.storeError("update team points", err)
	}

	c.logger.Info("team points updated",
		slog.String("team_id", string(team.ID)),
		slog.String("operation", string(op)),
		slog.Int64("amount", amount),
		slog.Int64("previous", previous),
		slog.Int64("points", team.Points),
		slog.String("by", string(identity.UserID)))
	c.publish(model.TeamTopics...)
	return team, nil
}

// DeleteTeam removes a team and returns it
func (c *Controller) DeleteTeam(ctx context.Context, credential string, id model.TeamID) (*model.Team, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(string(id))
	defer unlock()

	team, err := c.storage.DeleteTeam(ctx, id)
	if err != nil {
		return nil, c.storeError("delete team", err)
	}

	c.logger.Info("team deleted",
		slog.String("team_id", string(team.ID)),
		slog.String("by", string(identity.UserID)))
	c.publish(model.TeamTopics...)
	return team, nil
}

// Challenge mutations

// CreateChallenge validates and inserts a new challenge
func (c *Controller) CreateChallenge(ctx context.Context, credential string, input model.ChallengeInput) (*model.Challenge, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	if input.Points == nil {
		return nil, model.NewValidationError("points", "challenge points are required")
	}

	now := c.clock.Now()
	challenge := &model.Challenge{
		ID:          model.ChallengeID(c.ids.NewID()),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Points:      *input.Points,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if challenge.Status == "" {
		challenge.Status = model.ChallengeStatusActive
	}
	if err := challenge.Validate(); err != nil {
		return nil, err
	}

	if err := c.storage.InsertChallenge(ctx, challenge); err != nil {
		return nil, c.storeError("insert challenge", err)
	}

	c.logger.Info("challenge created",
		slog.String("challenge_id", string(challenge.ID)),
		slog.String("by", string(identity.UserID)))
	c.publish(model.ChallengeTopics...)
	return challenge, nil
}

// UpdateChallenge applies patch to an existing challenge
func (c *Controller) UpdateChallenge(ctx context.Context, credential string, id model.ChallengeID, patch model.ChallengePatch) (*model.Challenge, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock("challenge:" + string(id))
	defer unlock()

	challenge, err := c.storage.GetChallenge(ctx, id)
	if err != nil {
		return nil, c.storeError("get challenge", err)
	}

	patch.Apply(challenge)
	if err := challenge.Validate(); err != nil {
		return nil, err
	}
	challenge.UpdatedAt = c.clock.Now()

	if err := c.storage.UpdateChallenge(ctx, challenge); err != nil {
		return nil, c.storeError("update challenge", err)
	}

	c.logger.Info("challenge updated",
		slog.String("challenge_id", string(challenge.ID)),
		slog.String("by", string(identity.UserID)))
	c.publish(model.ChallengeTopics...)
	return challenge, nil
}

// DeleteChallenge removes a challenge and returns it
func (c *Controller) DeleteChallenge(ctx context.Context, credential string, id model.ChallengeID) (*model.Challenge, error) {
	identity, err := c.authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	challenge, err := c.storage.DeleteChallenge(ctx, id)
	if err != nil {
		return nil, c.storeError("delete challenge", err)
	}

	c.logger.Info("challenge deleted",
		slog.String("challenge_id", string(challenge.ID)),
		slog.String("by", string(identity.UserID)))
	c.publish(model.ChallengeTopics...)
	return challenge, nil
}

// Authorize checks that credential may mutate the scoreboard
func (c *Controller) Authorize(ctx context.Context, credential string) (model.Identity, error) {
	return c.authorize(ctx, credential)
}

// authorize requires an admin credential for every mutation
func (c *Controller) authorize(ctx context.Context, credential string) (model.Identity, error) {
	identity, err := c.gate.Authorize(ctx, credential, model.RoleAdmin)
	if err != nil {
		c.logger.Debug("mutation denied", slog.String("error", err.Error()))
		return identity, err
	}
	return identity, nil
}

func (c *Controller) publish(topics ...model.Topic) {
	for _, topic := range topics {
		c.publisher.Publish(topic)
	}
}

// storeError passes domain errors through and wraps anything else as ErrStoreUnavailable
func (c *Controller) storeError(op string, err error) error {
	switch {
	case errors.Is(err, model.ErrTeamNotFound),
		errors.Is(err, model.ErrChallengeNotFound),
		errors.Is(err, model.ErrDuplicateName),
		errors.Is(err, context.Canceled),
		model.IsValidation(err):
		c.logger.Debug("store rejected operation", slog.String("op", op), slog.String("error", err.Error()))
		return err
	}

	c.logger.Error("store failure", slog.String("op", op), slog.String("error", err.Error()))
	return fmt.Errorf("%w: %s: %w", model.ErrStoreUnavailable, op, err)
}

// SetPublisher replaces the publisher. Call before serving requests.
func (c *Controller) SetPublisher(p Publisher) {
	c.publisher = p
}
