package scoreboard

import (
	"context"

	"github.com/mcoot/teamboard/internal/model"
)

// Standing is one leaderboard row
type Standing struct {
	Rank int
	Team *model.Team
}

// Leaderboard returns teams in ranking order with competition ranks: teams on equal points share a
// rank and the next rank skips accordingly (1, 1, 3).
func (c *Controller) Leaderboard(ctx context.Context) ([]Standing, error) {
	teams, err := c.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	return rank(teams), nil
}

func rank(teams []*model.Team) []Standing {
	standings := make([]Standing, len(teams))
	for i, t := range teams {
		r := i + 1
		if i > 0 && t.Points == teams[i-1].Points {
			r = standings[i-1].Rank
		}
		standings[i] = Standing{Rank: r, Team: t}
	}
	return standings
}
