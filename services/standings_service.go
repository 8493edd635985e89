package services

import (
	"context"
	"math"
	"sort"

	"github.com/avdeenko/club-system/metrics"
	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
	"golang.org/x/sync/errgroup"
)

// StandingsService computes the league table across all players. Nothing
// is persisted; every request recomputes the table from the roster
// entries on record.
type StandingsService interface {
	ComputeStandings(ctx context.Context) ([]models.StandingsRow, error)
}

type standingsService struct {
	rosterRepo repositories.RosterRepository
	userRepo   repositories.UserRepository
	metrics    metrics.Metrics
}

func NewStandingsService(
	rosterRepo repositories.RosterRepository,
	userRepo repositories.UserRepository,
	m metrics.Metrics,
) StandingsService {
	return &standingsService{
		rosterRepo: rosterRepo,
		userRepo:   userRepo,
		metrics:    m,
	}
}

func (s *standingsService) ComputeStandings(ctx context.Context) ([]models.StandingsRow, error) {
	var (
		entries []*models.RosterEntry
		users   []*models.User
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.rosterRepo.ListAllWithMatches(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.userRepo.List(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName()
	}

	index := make(map[int]*models.StandingsRow)
	order := make([]int, 0)
	rowFor := func(userID int) *models.StandingsRow {
		row, ok := index[userID]
		if !ok {
			row = &models.StandingsRow{UserID: userID, PlayerName: names[userID]}
			index[userID] = row
			order = append(order, userID)
		}
		return row
	}

	// Goal and assist totals span every roster entry, finalized or not.
	// Results below only count completed matches; the asymmetry matches
	// the club's historical numbers and is kept deliberately.
	for _, entry := range entries {
		row := rowFor(entry.UserID)
		row.TotalGoals += entry.Goals
		row.TotalAssists += entry.Assists
	}

	for _, entry := range entries {
		match := entry.Match
		if match.Status != models.MatchStatusCompleted || match.TeamAScore == nil || match.TeamBScore == nil {
			continue
		}

		teamScore, opponentScore := *match.TeamAScore, *match.TeamBScore
		if entry.TeamID != match.TeamAID {
			teamScore, opponentScore = opponentScore, teamScore
		}

		row := rowFor(entry.UserID)
		row.MatchesPlayed++
		row.GoalsFor += teamScore
		row.GoalsAgainst += opponentScore

		switch {
		case teamScore > opponentScore:
			row.Wins++
		case teamScore == opponentScore:
			row.Draws++
		default:
			row.Losses++
		}
	}

	rows := make([]models.StandingsRow, 0, len(order))
	for _, userID := range order {
		row := index[userID]
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		row.Points = 3*row.Wins + row.Draws
		if row.MatchesPlayed > 0 {
			rate := float64(row.Points) / float64(row.MatchesPlayed*3) * 100
			row.WinRate = math.Round(rate*10) / 10
		}
		rows = append(rows, *row)
	}

	sortStandings(rows)
	s.metrics.IncStandingsRequest()
	return rows, nil
}

// sortStandings orders the table with three chained stable sorts: goal
// difference, then wins, then points, each descending. The last-applied
// key wins, so the net ordering is points, wins, goal difference. Three
// passes are kept instead of one composite comparator to reproduce the
// established tie-breaking structure exactly.
func sortStandings(rows []models.StandingsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].GoalDifference > rows[j].GoalDifference
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Wins > rows[j].Wins
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})
}
