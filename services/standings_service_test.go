package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenko/club-system/metrics"
	"github.com/avdeenko/club-system/models"
)

func completedMatch(id, teamAScore, teamBScore int) *models.Match {
	m := scheduledMatch(id, 10)
	m.Status = models.MatchStatusCompleted
	m.TeamAScore = &teamAScore
	m.TeamBScore = &teamBScore
	return m
}

func standingsFor(t *testing.T, entries []*models.RosterEntry, userIDs ...int) []models.StandingsRow {
	t.Helper()
	rosterRepo := newFakeRosterRepo()
	rosterRepo.entries = entries
	service := NewStandingsService(rosterRepo, newFakeUserRepo(userIDs...), metrics.Noop{})

	rows, err := service.ComputeStandings(context.Background())
	require.NoError(t, err)
	return rows
}

func rowByUser(t *testing.T, rows []models.StandingsRow, userID int) models.StandingsRow {
	t.Helper()
	for _, row := range rows {
		if row.UserID == userID {
			return row
		}
	}
	t.Fatalf("no standings row for user %d", userID)
	return models.StandingsRow{}
}

func TestComputeStandingsAggregatesResults(t *testing.T) {
	match := completedMatch(1, 3, 1)
	rows := standingsFor(t, []*models.RosterEntry{
		{ID: 1, MatchID: 1, UserID: 10, TeamID: 1, Goals: 2, Assists: 1, Match: match},
		{ID: 2, MatchID: 1, UserID: 11, TeamID: 1, Goals: 1, Assists: 0, Match: match},
		{ID: 3, MatchID: 1, UserID: 12, TeamID: 2, Goals: 1, Assists: 0, Match: match},
	}, 10, 11, 12)
	require.Len(t, rows, 3)

	winner := rowByUser(t, rows, 10)
	assert.Equal(t, 1, winner.MatchesPlayed)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 3, winner.GoalsFor)
	assert.Equal(t, 1, winner.GoalsAgainst)
	assert.Equal(t, 2, winner.GoalDifference)
	assert.Equal(t, 2, winner.TotalGoals)
	assert.Equal(t, 1, winner.TotalAssists)
	assert.Equal(t, 3, winner.Points)
	assert.Equal(t, 100.0, winner.WinRate)

	// Side B sees the same score mirrored.
	loser := rowByUser(t, rows, 12)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 1, loser.GoalsFor)
	assert.Equal(t, 3, loser.GoalsAgainst)
	assert.Equal(t, -2, loser.GoalDifference)
	assert.Equal(t, 0, loser.Points)
	assert.Equal(t, 0.0, loser.WinRate)
}

func TestComputeStandingsTotalsIncludeUnfinishedMatches(t *testing.T) {
	completed := completedMatch(1, 1, 0)
	scheduled := scheduledMatch(2, 10)

	rows := standingsFor(t, []*models.RosterEntry{
		{ID: 1, MatchID: 1, UserID: 10, TeamID: 1, Goals: 1, Match: completed},
		{ID: 2, MatchID: 2, UserID: 10, TeamID: 1, Goals: 2, Assists: 1, Match: scheduled},
	}, 10)

	row := rowByUser(t, rows, 10)
	// Goal and assist totals cover every roster entry; results only
	// count completed matches.
	assert.Equal(t, 3, row.TotalGoals)
	assert.Equal(t, 1, row.TotalAssists)
	assert.Equal(t, 1, row.MatchesPlayed)
	assert.Equal(t, 1, row.Wins)
}

func TestComputeStandingsDrawAndWinRateRounding(t *testing.T) {
	draw := completedMatch(1, 2, 2)
	win := completedMatch(2, 1, 0)
	loss := completedMatch(3, 0, 1)

	rows := standingsFor(t, []*models.RosterEntry{
		{ID: 1, MatchID: 1, UserID: 10, TeamID: 1, Match: draw},
		{ID: 2, MatchID: 2, UserID: 10, TeamID: 1, Match: win},
		{ID: 3, MatchID: 3, UserID: 10, TeamID: 1, Match: loss},
	}, 10)

	row := rowByUser(t, rows, 10)
	assert.Equal(t, 1, row.Wins)
	assert.Equal(t, 1, row.Draws)
	assert.Equal(t, 1, row.Losses)
	assert.Equal(t, 4, row.Points)
	// 4 of 9 possible points, rounded to one decimal.
	assert.Equal(t, 44.4, row.WinRate)
}

func TestComputeStandingsPlayerWithoutCompletedMatches(t *testing.T) {
	scheduled := scheduledMatch(1, 10)
	rows := standingsFor(t, []*models.RosterEntry{
		{ID: 1, MatchID: 1, UserID: 10, TeamID: 1, Match: scheduled},
	}, 10)

	row := rowByUser(t, rows, 10)
	assert.Zero(t, row.MatchesPlayed)
	assert.Zero(t, row.Points)
	assert.Zero(t, row.WinRate)
}

func TestSortStandingsTieBreakOrder(t *testing.T) {
	rows := []models.StandingsRow{
		{UserID: 1, Points: 6, Wins: 1, GoalDifference: 5},
		{UserID: 2, Points: 7, Wins: 2, GoalDifference: -1},
		{UserID: 3, Points: 6, Wins: 2, GoalDifference: 1},
		{UserID: 4, Points: 6, Wins: 2, GoalDifference: 3},
	}

	sortStandings(rows)

	// Points first, then wins, then goal difference: user 3 outranks
	// user 1 on wins even though user 1 has the better difference.
	got := make([]int, 0, len(rows))
	for _, row := range rows {
		got = append(got, row.UserID)
	}
	assert.Equal(t, []int{2, 4, 3, 1}, got)
}
