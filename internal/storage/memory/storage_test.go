package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
	"github.com/mcoot/teamboard/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return New() },
	})
}

func TestConcurrentInsertSameNameOnlyOneWins(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.InsertTeam(ctx, &model.Team{
				ID:     model.TeamID(string(rune('a' + i))),
				Name:   "Alpha",
				Status: model.TeamStatusActive,
			})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrDuplicateName)
	}
	assert.Equal(t, 1, succeeded)

	teams, err := s.ListTeams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}
