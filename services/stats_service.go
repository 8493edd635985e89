package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avdeenko/club-system/live"
	"github.com/avdeenko/club-system/metrics"
	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
)

// PlayerStatInput carries one player's final numbers for a match.
type PlayerStatInput struct {
	RosterEntryID int `json:"id"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
}

// StatsService records per-player statistics, derives the final score
// and flips the match to completed. This is the only path out of
// scheduled besides cancellation, and it is irreversible.
type StatsService interface {
	RecordStatistics(ctx context.Context, matchID int, stats []PlayerStatInput) (*models.Match, error)
}

type statsService struct {
	txm        repositories.TxManager
	matchRepo  repositories.MatchRepository
	rosterRepo repositories.RosterRepository
	publisher  live.Publisher
	metrics    metrics.Metrics
	logger     *slog.Logger

	now func() time.Time
}

func NewStatsService(
	txm repositories.TxManager,
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	publisher live.Publisher,
	m metrics.Metrics,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		txm:        txm,
		matchRepo:  matchRepo,
		rosterRepo: rosterRepo,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *statsService) RecordStatistics(ctx context.Context, matchID int, stats []PlayerStatInput) (*models.Match, error) {
	for _, stat := range stats {
		if stat.Goals < 0 || stat.Assists < 0 {
			return nil, ErrStatsNegativeValue
		}
	}

	var match *models.Match

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		switch match.Status {
		case models.MatchStatusCompleted:
			return ErrMatchAlreadyCompleted
		case models.MatchStatusCancelled:
			return ErrMatchNotOpen
		}

		for _, stat := range stats {
			err := s.rosterRepo.UpdateStats(ctx, exec, stat.RosterEntryID, matchID, stat.Goals, stat.Assists)
			if err != nil {
				if errors.Is(err, repositories.ErrRosterEntryNotFound) {
					return ErrRosterEntryNotFound
				}
				return err
			}
		}

		entries, err := s.rosterRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		teamAScore, teamBScore := 0, 0
		for _, entry := range entries {
			if entry.TeamID == match.TeamAID {
				teamAScore += entry.Goals
			} else {
				teamBScore += entry.Goals
			}
		}

		playedAt := s.now()
		if err := s.matchRepo.Finalize(ctx, exec, matchID, teamAScore, teamBScore, playedAt); err != nil {
			return err
		}

		match.TeamAScore = &teamAScore
		match.TeamBScore = &teamBScore
		match.Status = models.MatchStatusCompleted
		match.PlayedAt = &playedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMatchFinalized()
	s.logger.Info("match finalized",
		slog.Int("match_id", matchID),
		slog.Int("team_a_score", *match.TeamAScore),
		slog.Int("team_b_score", *match.TeamBScore),
	)
	s.publisher.PublishMatchEvent(matchID, live.EventMatchFinalized, match)
	return match, nil
}
