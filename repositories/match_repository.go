package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avdeenko/club-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate locks the match row for the duration of the
	// surrounding transaction, serializing per-match attendance and
	// roster writes.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, statusFilter *models.MatchStatus) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	Finalize(ctx context.Context, exec SQLExecutor, id int, teamAScore, teamBScore int, playedAt time.Time) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (scheduled_at, team_a_id, team_b_id, status, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.ScheduledAt,
		match.TeamAID,
		match.TeamBID,
		match.Status,
		match.Capacity,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "matches_team_a_id_fkey", "matches_team_b_id_fkey":
					return ErrMatchTeamInvalid
				}
			}
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.ScheduledAt, &m.PlayedAt,
		&m.TeamAID, &m.TeamBID, &m.TeamAScore, &m.TeamBScore,
		&m.Status, &m.Capacity, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

const selectMatchFieldsSQL = `
	SELECT id, scheduled_at, played_at, team_a_id, team_b_id, team_a_score, team_b_score, status, capacity, created_at
	FROM matches`

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := selectMatchFieldsSQL + ` WHERE id = $1`
	m, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := selectMatchFieldsSQL + ` WHERE id = $1 FOR UPDATE`
	m, err := r.scanMatch(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	query := selectMatchFieldsSQL
	args := []interface{}{}
	if statusFilter != nil {
		query += ` WHERE status = $1`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY scheduled_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", errScan)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Finalize(ctx context.Context, exec SQLExecutor, id int, teamAScore, teamBScore int, playedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET team_a_score = $1, team_b_score = $2, status = $3, played_at = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, teamAScore, teamBScore, models.MatchStatusCompleted, playedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finalize match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
