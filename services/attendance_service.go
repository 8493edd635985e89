package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avdeenko/club-system/live"
	"github.com/avdeenko/club-system/metrics"
	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
)

// AttendanceService is the confirmation ledger and its waitlist. Every
// mutation runs inside one transaction holding the match row lock, so
// the count-then-decide capacity check cannot race and a freed slot is
// promoted atomically with the decline that freed it.
type AttendanceService interface {
	// SetAttendance is the player-initiated path. When the player is
	// already confirmed or waiting and asks to play again, the current
	// record is returned together with ErrAlreadyRegistered; callers
	// treat that as an informational no-op, not a failure.
	SetAttendance(ctx context.Context, matchID, userID int, wantsToPlay bool) (*models.ConfirmationRecord, error)
	// ToggleByAdmin force-confirms (ignoring capacity) or hard-deletes a
	// record. The returned record is nil after a removal.
	ToggleByAdmin(ctx context.Context, matchID, userID int, confirmed bool) (*models.ConfirmationRecord, error)
	Summary(ctx context.Context, matchID int) (*models.AttendanceSummary, error)
}

type attendanceService struct {
	txm              repositories.TxManager
	matchRepo        repositories.MatchRepository
	confirmationRepo repositories.ConfirmationRepository
	userRepo         repositories.UserRepository
	publisher        live.Publisher
	metrics          metrics.Metrics
	logger           *slog.Logger
}

func NewAttendanceService(
	txm repositories.TxManager,
	matchRepo repositories.MatchRepository,
	confirmationRepo repositories.ConfirmationRepository,
	userRepo repositories.UserRepository,
	publisher live.Publisher,
	m metrics.Metrics,
	logger *slog.Logger,
) AttendanceService {
	return &attendanceService{
		txm:              txm,
		matchRepo:        matchRepo,
		confirmationRepo: confirmationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		metrics:          m,
		logger:           logger,
	}
}

func (s *attendanceService) SetAttendance(ctx context.Context, matchID, userID int, wantsToPlay bool) (*models.ConfirmationRecord, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user %d: %w", userID, err)
	}

	var (
		record   *models.ConfirmationRecord
		promoted *models.ConfirmationRecord
	)

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockOpenMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		existing, err := s.confirmationRepo.FindByMatchAndUser(ctx, exec, matchID, userID)
		if err != nil && !errors.Is(err, repositories.ErrConfirmationNotFound) {
			return err
		}

		if wantsToPlay {
			record, err = s.confirm(ctx, exec, match, existing, userID)
			return err
		}

		record, promoted, err = s.decline(ctx, exec, match, existing, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return record, ErrAlreadyRegistered
		}
		return nil, err
	}

	s.metrics.IncConfirmation(string(record.Status))
	s.publishAttendance(ctx, matchID, record)
	if promoted != nil {
		s.afterPromotion(matchID, promoted)
	}
	return record, nil
}

// confirm applies the wantsToPlay=true rules under the match lock:
// idempotent for confirmed/waiting, capacity decides confirmed vs
// waiting, a declined record is reused in place.
func (s *attendanceService) confirm(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, existing *models.ConfirmationRecord, userID int) (*models.ConfirmationRecord, error) {
	if existing != nil && (existing.Status == models.ConfirmationConfirmed || existing.Status == models.ConfirmationWaiting) {
		return existing, ErrAlreadyRegistered
	}

	confirmedCount, err := s.confirmationRepo.CountConfirmedByMatch(ctx, exec, match.ID)
	if err != nil {
		return nil, err
	}

	target := models.ConfirmationConfirmed
	if confirmedCount >= match.Capacity {
		target = models.ConfirmationWaiting
	}
	isConfirmed := target == models.ConfirmationConfirmed

	if existing != nil {
		if err := s.confirmationRepo.UpdateState(ctx, exec, existing.ID, target, isConfirmed, models.OriginPlayer); err != nil {
			return nil, err
		}
		existing.Status = target
		existing.IsConfirmed = isConfirmed
		existing.Origin = models.OriginPlayer
		return existing, nil
	}

	record := &models.ConfirmationRecord{
		MatchID:     match.ID,
		UserID:      userID,
		IsConfirmed: isConfirmed,
		Status:      target,
		Origin:      models.OriginPlayer,
	}
	if err := s.confirmationRepo.Create(ctx, exec, record); err != nil {
		return nil, err
	}
	return record, nil
}

// decline applies the wantsToPlay=false rules. Promotion happens only
// when the prior status was confirmed: a waiting player leaving frees no
// slot.
func (s *attendanceService) decline(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, existing *models.ConfirmationRecord, userID int) (*models.ConfirmationRecord, *models.ConfirmationRecord, error) {
	if existing == nil {
		record := &models.ConfirmationRecord{
			MatchID:     match.ID,
			UserID:      userID,
			IsConfirmed: false,
			Status:      models.ConfirmationDeclined,
			Origin:      models.OriginPlayer,
		}
		if err := s.confirmationRepo.Create(ctx, exec, record); err != nil {
			return nil, nil, err
		}
		return record, nil, nil
	}

	priorStatus := existing.Status
	if err := s.confirmationRepo.UpdateState(ctx, exec, existing.ID, models.ConfirmationDeclined, false, models.OriginPlayer); err != nil {
		return nil, nil, err
	}
	existing.Status = models.ConfirmationDeclined
	existing.IsConfirmed = false
	existing.Origin = models.OriginPlayer

	var promoted *models.ConfirmationRecord
	if priorStatus == models.ConfirmationConfirmed {
		var err error
		promoted, err = s.promoteNext(ctx, exec, match.ID)
		if err != nil {
			return nil, nil, err
		}
	}
	return existing, promoted, nil
}

func (s *attendanceService) ToggleByAdmin(ctx context.Context, matchID, userID int, confirmed bool) (*models.ConfirmationRecord, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user %d: %w", userID, err)
	}

	var (
		record   *models.ConfirmationRecord
		promoted *models.ConfirmationRecord
		removed  bool
	)

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.lockOpenMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		existing, err := s.confirmationRepo.FindByMatchAndUser(ctx, exec, matchID, userID)
		if err != nil && !errors.Is(err, repositories.ErrConfirmationNotFound) {
			return err
		}

		if confirmed {
			// Admins override capacity: no confirmed-count check here.
			if existing != nil {
				if existing.Status == models.ConfirmationConfirmed {
					record = existing
					return nil
				}
				if err := s.confirmationRepo.UpdateState(ctx, exec, existing.ID, models.ConfirmationConfirmed, true, models.OriginAdmin); err != nil {
					return err
				}
				existing.Status = models.ConfirmationConfirmed
				existing.IsConfirmed = true
				existing.Origin = models.OriginAdmin
				record = existing
				return nil
			}
			record = &models.ConfirmationRecord{
				MatchID:     match.ID,
				UserID:      userID,
				IsConfirmed: true,
				Status:      models.ConfirmationConfirmed,
				Origin:      models.OriginAdmin,
			}
			return s.confirmationRepo.Create(ctx, exec, record)
		}

		// Admin removal is a hard delete, unlike the player decline path.
		if existing == nil {
			return ErrNotFound
		}
		if err := s.confirmationRepo.Delete(ctx, exec, existing.ID); err != nil {
			return err
		}
		removed = true
		if existing.Status == models.ConfirmationConfirmed {
			promoted, err = s.promoteNext(ctx, exec, match.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.publishAttendance(ctx, matchID, nil)
	} else {
		s.metrics.IncConfirmation(string(record.Status))
		s.publishAttendance(ctx, matchID, record)
	}
	if promoted != nil {
		s.afterPromotion(matchID, promoted)
	}
	return record, nil
}

// promoteNext moves the earliest-queued waiting record to confirmed.
// Exactly one promotion per call; callers invoke it once per freed slot.
func (s *attendanceService) promoteNext(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.ConfirmationRecord, error) {
	next, err := s.confirmationRepo.FirstWaiting(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrConfirmationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.confirmationRepo.UpdateState(ctx, exec, next.ID, models.ConfirmationConfirmed, true, next.Origin); err != nil {
		return nil, err
	}
	next.Status = models.ConfirmationConfirmed
	next.IsConfirmed = true
	return next, nil
}

func (s *attendanceService) afterPromotion(matchID int, promoted *models.ConfirmationRecord) {
	s.metrics.IncPromotion()
	s.logger.Info("promoted waiting player",
		slog.Int("match_id", matchID),
		slog.Int("user_id", promoted.UserID),
		slog.Int("confirmation_id", promoted.ID),
	)
	s.publisher.PublishMatchEvent(matchID, live.EventPlayerPromoted, promoted)
}

func (s *attendanceService) publishAttendance(ctx context.Context, matchID int, record *models.ConfirmationRecord) {
	summary, err := s.Summary(ctx, matchID)
	if err != nil {
		s.logger.Error("failed to build attendance summary for broadcast",
			slog.Int("match_id", matchID), slog.Any("error", err))
		return
	}
	s.publisher.PublishMatchEvent(matchID, live.EventAttendanceUpdated, map[string]interface{}{
		"record":  record,
		"summary": summary,
	})
}

func (s *attendanceService) lockOpenMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
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
	return match, nil
}

func (s *attendanceService) Summary(ctx context.Context, matchID int) (*models.AttendanceSummary, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	records, err := s.confirmationRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	summary := &models.AttendanceSummary{
		Confirmed: make([]*models.ConfirmationRecord, 0),
		Waiting:   make([]*models.ConfirmationRecord, 0),
		Declined:  make([]*models.ConfirmationRecord, 0),
	}
	for _, record := range records {
		switch record.Status {
		case models.ConfirmationConfirmed:
			summary.Confirmed = append(summary.Confirmed, record)
		case models.ConfirmationWaiting:
			summary.Waiting = append(summary.Waiting, record)
		case models.ConfirmationDeclined:
			summary.Declined = append(summary.Declined, record)
		}
	}

	available := match.Capacity - len(summary.Confirmed)
	if available < 0 {
		available = 0
	}
	summary.AvailableSlots = available
	summary.IsFull = available == 0
	return summary, nil
}
