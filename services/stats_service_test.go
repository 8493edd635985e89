package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenko/club-system/live"
	"github.com/avdeenko/club-system/metrics"
	"github.com/avdeenko/club-system/models"
)

type statsFixture struct {
	service    StatsService
	matchRepo  *fakeMatchRepo
	rosterRepo *fakeRosterRepo
}

func newStatsFixture(t *testing.T, match *models.Match, entries ...*models.RosterEntry) *statsFixture {
	t.Helper()
	matchRepo := newFakeMatchRepo(match)
	rosterRepo := newFakeRosterRepo()
	require.NoError(t, rosterRepo.CreateBatch(context.Background(), nil, entries))

	service := NewStatsService(
		fakeTxManager{}, matchRepo, rosterRepo,
		live.NoopPublisher{}, metrics.Noop{}, testLogger(),
	)
	service.(*statsService).now = func() time.Time {
		return time.Date(2026, 3, 7, 21, 0, 0, 0, time.UTC)
	}
	return &statsFixture{service: service, matchRepo: matchRepo, rosterRepo: rosterRepo}
}

func TestRecordStatisticsFinalizesMatch(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t, scheduledMatch(1, 10),
		&models.RosterEntry{MatchID: 1, UserID: 10, TeamID: 1},
		&models.RosterEntry{MatchID: 1, UserID: 11, TeamID: 1},
		&models.RosterEntry{MatchID: 1, UserID: 12, TeamID: 2},
	)

	match, err := f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 1, Goals: 2, Assists: 1},
		{RosterEntryID: 2, Goals: 1, Assists: 0},
		{RosterEntryID: 3, Goals: 1, Assists: 2},
	})
	require.NoError(t, err)

	// Score is the sum of goals per side.
	require.NotNil(t, match.TeamAScore)
	require.NotNil(t, match.TeamBScore)
	assert.Equal(t, 3, *match.TeamAScore)
	assert.Equal(t, 1, *match.TeamBScore)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.PlayedAt)
	assert.Equal(t, time.Date(2026, 3, 7, 21, 0, 0, 0, time.UTC), *match.PlayedAt)

	stored, err := f.matchRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, stored.Status)
}

func TestRecordStatisticsUnreportedPlayersKeepZeros(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t, scheduledMatch(1, 10),
		&models.RosterEntry{MatchID: 1, UserID: 10, TeamID: 1},
		&models.RosterEntry{MatchID: 1, UserID: 11, TeamID: 2},
	)

	match, err := f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 1, Goals: 2, Assists: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, *match.TeamAScore)
	assert.Equal(t, 0, *match.TeamBScore)
}

func TestRecordStatisticsRejectsNegativeValues(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t, scheduledMatch(1, 10),
		&models.RosterEntry{MatchID: 1, UserID: 10, TeamID: 1},
	)

	_, err := f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 1, Goals: -1, Assists: 0},
	})
	assert.ErrorIs(t, err, ErrStatsNegativeValue)

	stored, err := f.matchRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, stored.Status)
}

func TestRecordStatisticsRejectsForeignRosterEntry(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t, scheduledMatch(1, 10),
		&models.RosterEntry{MatchID: 1, UserID: 10, TeamID: 1},
	)
	// Entry 2 belongs to another match.
	require.NoError(t, f.rosterRepo.CreateBatch(ctx, nil, []*models.RosterEntry{
		{MatchID: 2, UserID: 11, TeamID: 1},
	}))

	_, err := f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 2, Goals: 1, Assists: 0},
	})
	assert.ErrorIs(t, err, ErrRosterEntryNotFound)
}

func TestRecordStatisticsCompletionIsIrreversible(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t, scheduledMatch(1, 10),
		&models.RosterEntry{MatchID: 1, UserID: 10, TeamID: 1},
		&models.RosterEntry{MatchID: 1, UserID: 11, TeamID: 2},
	)

	_, err := f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 1, Goals: 1, Assists: 0},
	})
	require.NoError(t, err)

	_, err = f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 1, Goals: 5, Assists: 0},
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	// The first finalization stands.
	stored, err := f.matchRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, *stored.TeamAScore)
}

func TestRecordStatisticsRejectsCancelledMatch(t *testing.T) {
	ctx := context.Background()
	match := scheduledMatch(1, 10)
	match.Status = models.MatchStatusCancelled
	f := newStatsFixture(t, match,
		&models.RosterEntry{MatchID: 1, UserID: 10, TeamID: 1},
	)

	_, err := f.service.RecordStatistics(ctx, 1, []PlayerStatInput{
		{RosterEntryID: 1, Goals: 1, Assists: 0},
	})
	assert.ErrorIs(t, err, ErrMatchNotOpen)
}
