package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
	"github.com/avdeenko/club-system/storage"
)

type TeamService interface {
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	UploadCrest(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		uploader: uploader,
	}
}

func (s *teamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populateCrestURL(team)
	}
	return teams, nil
}

var crestExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

func (s *teamService) UploadCrest(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrCrestUploadsDisabled
	}
	ext, ok := crestExtensions[contentType]
	if !ok {
		return nil, ErrCrestContentTypeInvalid
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/crest%s", teamID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload crest for team %d: %w", teamID, err)
	}

	if err := s.teamRepo.UpdateCrestKey(ctx, teamID, &result.Key); err != nil {
		return nil, err
	}
	team.CrestKey = &result.Key
	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) populateCrestURL(team *models.Team) {
	if s.uploader == nil || team.CrestKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.CrestKey)
	team.CrestURL = &url
}
