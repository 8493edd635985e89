package services

import (
	"context"
	"errors"
	"time"

	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
)

type CreateMatchInput struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	TeamAID     int       `json:"team_a_id"`
	TeamBID     int       `json:"team_b_id"`
	Capacity    int       `json:"capacity"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, statusFilter *models.MatchStatus) ([]*models.Match, error)
	// CancelMatch moves a scheduled match to cancelled. Completed matches
	// never transition back.
	CancelMatch(ctx context.Context, id int) error
}

type matchService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository

	now func() time.Time
}

func NewMatchService(matchRepo repositories.MatchRepository, teamRepo repositories.TeamRepository) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		now:       time.Now,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.Capacity < models.MinMatchCapacity {
		return nil, ErrMatchInvalidCapacity
	}
	if input.TeamAID == 0 || input.TeamBID == 0 || input.TeamAID == input.TeamBID {
		return nil, ErrMatchInvalidTeams
	}
	if input.ScheduledAt.Before(s.now()) {
		return nil, ErrMatchInvalidSchedule
	}
	for _, teamID := range []int{input.TeamAID, input.TeamBID} {
		if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
	}

	match := &models.Match{
		ScheduledAt: input.ScheduledAt,
		TeamAID:     input.TeamAID,
		TeamBID:     input.TeamBID,
		Status:      models.MatchStatusScheduled,
		Capacity:    input.Capacity,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, statusFilter)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *matchService) CancelMatch(ctx context.Context, id int) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	if match.Status != models.MatchStatusScheduled {
		return ErrMatchNotCancellable
	}
	return s.matchRepo.UpdateStatus(ctx, id, models.MatchStatusCancelled)
}
