package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
)

// RosterService partitions the confirmed set into the two sides. The
// assignment is one-shot: once any roster entry exists for a match, both
// AssignTeams and DrawTeams are rejected without side effects.
type RosterService interface {
	AssignTeams(ctx context.Context, matchID int, teamAPlayers, teamBPlayers []int) error
	// DrawTeams shuffles the confirmed set and splits it into two halves
	// whose sizes differ by at most one.
	DrawTeams(ctx context.Context, matchID int) error
}

type rosterService struct {
	txm              repositories.TxManager
	matchRepo        repositories.MatchRepository
	rosterRepo       repositories.RosterRepository
	confirmationRepo repositories.ConfirmationRepository
	logger           *slog.Logger

	// shuffle is swappable for deterministic tests.
	shuffle func(n int, swap func(i, j int))
}

func NewRosterService(
	txm repositories.TxManager,
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	confirmationRepo repositories.ConfirmationRepository,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		txm:              txm,
		matchRepo:        matchRepo,
		rosterRepo:       rosterRepo,
		confirmationRepo: confirmationRepo,
		logger:           logger,
		shuffle:          rand.Shuffle,
	}
}

func (s *rosterService) AssignTeams(ctx context.Context, matchID int, teamAPlayers, teamBPlayers []int) error {
	if len(teamAPlayers) == 0 || len(teamBPlayers) == 0 {
		return ErrRosterSideEmpty
	}
	seen := make(map[int]bool, len(teamAPlayers)+len(teamBPlayers))
	for _, userID := range append(append([]int{}, teamAPlayers...), teamBPlayers...) {
		if seen[userID] {
			return ErrRosterDuplicateUser
		}
		seen[userID] = true
	}

	return s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockAssignableMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		entries := make([]*models.RosterEntry, 0, len(teamAPlayers)+len(teamBPlayers))
		for _, userID := range teamAPlayers {
			entries = append(entries, &models.RosterEntry{MatchID: matchID, UserID: userID, TeamID: match.TeamAID})
		}
		for _, userID := range teamBPlayers {
			entries = append(entries, &models.RosterEntry{MatchID: matchID, UserID: userID, TeamID: match.TeamBID})
		}

		if err := s.rosterRepo.CreateBatch(ctx, exec, entries); err != nil {
			if errors.Is(err, repositories.ErrRosterUserInvalid) {
				return ErrUserNotFound
			}
			return err
		}

		s.logger.Info("teams assigned",
			slog.Int("match_id", matchID),
			slog.Int("team_a_size", len(teamAPlayers)),
			slog.Int("team_b_size", len(teamBPlayers)),
		)
		return nil
	})
}

func (s *rosterService) DrawTeams(ctx context.Context, matchID int) error {
	confirmed, err := s.confirmedUserIDs(ctx, matchID)
	if err != nil {
		return err
	}
	if len(confirmed) < 2 {
		return ErrNotEnoughConfirmed
	}

	s.shuffle(len(confirmed), func(i, j int) {
		confirmed[i], confirmed[j] = confirmed[j], confirmed[i]
	})

	// First half / remainder: odd counts leave the extra player on side B.
	half := len(confirmed) / 2
	return s.AssignTeams(ctx, matchID, confirmed[:half], confirmed[half:])
}

func (s *rosterService) confirmedUserIDs(ctx context.Context, matchID int) ([]int, error) {
	records, err := s.confirmationRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed players for match %d: %w", matchID, err)
	}
	ids := make([]int, 0, len(records))
	for _, record := range records {
		if record.Status == models.ConfirmationConfirmed {
			ids = append(ids, record.UserID)
		}
	}
	return ids, nil
}

func (s *rosterService) lockAssignableMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status != models.MatchStatusScheduled {
		return nil, ErrMatchNotOpen
	}

	existing, err := s.rosterRepo.CountByMatch(ctx, exec, matchID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrTeamsAlreadyAssigned
	}
	return match, nil
}
