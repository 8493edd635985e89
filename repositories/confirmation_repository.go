package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeenko/club-system/models"
	"github.com/lib/pq"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation record not found")
	// ErrConfirmationConflict surfaces the unique (match_id, user_id)
	// index; the ledger never holds two records for the same pair.
	ErrConfirmationConflict    = errors.New("confirmation record already exists for this match and user")
	ErrConfirmationUserInvalid = errors.New("confirmation user conflict or invalid")
)

type ConfirmationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.ConfirmationRecord) error
	FindByMatchAndUser(ctx context.Context, exec SQLExecutor, matchID, userID int) (*models.ConfirmationRecord, error)
	CountConfirmedByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
	UpdateState(ctx context.Context, exec SQLExecutor, id int, status models.ConfirmationStatus, isConfirmed bool, origin models.ConfirmationOrigin) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// FirstWaiting returns the earliest-queued waiting record for the
	// match: created_at ascending, ties broken by lowest id.
	FirstWaiting(ctx context.Context, exec SQLExecutor, matchID int) (*models.ConfirmationRecord, error)
	ListByMatch(ctx context.Context, matchID int) ([]*models.ConfirmationRecord, error)
}

type postgresConfirmationRepository struct {
	db *sql.DB
}

func NewPostgresConfirmationRepository(db *sql.DB) ConfirmationRepository {
	return &postgresConfirmationRepository{db: db}
}

func (r *postgresConfirmationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresConfirmationRepository) Create(ctx context.Context, exec SQLExecutor, record *models.ConfirmationRecord) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO confirmations (match_id, user_id, is_confirmed, status, origin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		record.MatchID,
		record.UserID,
		record.IsConfirmed,
		record.Status,
		record.Origin,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "confirmations_match_id_user_id_key" {
					return ErrConfirmationConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "confirmations_user_id_fkey":
					return ErrConfirmationUserInvalid
				case "confirmations_match_id_fkey":
					return ErrMatchNotFound
				}
			}
		}
		return fmt.Errorf("failed to create confirmation record: %w", err)
	}
	return nil
}

func (r *postgresConfirmationRepository) scanRecord(rowScanner interface{ Scan(...interface{}) error }) (*models.ConfirmationRecord, error) {
	var c models.ConfirmationRecord
	err := rowScanner.Scan(&c.ID, &c.MatchID, &c.UserID, &c.IsConfirmed, &c.Status, &c.Origin, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	return &c, nil
}

const selectConfirmationFieldsSQL = `
	SELECT id, match_id, user_id, is_confirmed, status, origin, created_at
	FROM confirmations`

func (r *postgresConfirmationRepository) FindByMatchAndUser(ctx context.Context, exec SQLExecutor, matchID, userID int) (*models.ConfirmationRecord, error) {
	executor := r.getExecutor(exec)
	query := selectConfirmationFieldsSQL + ` WHERE match_id = $1 AND user_id = $2`
	c, err := r.scanRecord(executor.QueryRowContext(ctx, query, matchID, userID))
	if err != nil {
		if errors.Is(err, ErrConfirmationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find confirmation for match %d user %d: %w", matchID, userID, err)
	}
	return c, nil
}

func (r *postgresConfirmationRepository) CountConfirmedByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM confirmations WHERE match_id = $1 AND status = $2`
	var count int
	err := executor.QueryRowContext(ctx, query, matchID, models.ConfirmationConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed players for match %d: %w", matchID, err)
	}
	return count, nil
}

func (r *postgresConfirmationRepository) UpdateState(ctx context.Context, exec SQLExecutor, id int, status models.ConfirmationStatus, isConfirmed bool, origin models.ConfirmationOrigin) error {
	executor := r.getExecutor(exec)
	query := `UPDATE confirmations SET status = $1, is_confirmed = $2, origin = $3 WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, status, isConfirmed, origin, id)
	if err != nil {
		return fmt.Errorf("failed to update confirmation %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrConfirmationNotFound)
}

func (r *postgresConfirmationRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM confirmations WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete confirmation %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrConfirmationNotFound)
}

func (r *postgresConfirmationRepository) FirstWaiting(ctx context.Context, exec SQLExecutor, matchID int) (*models.ConfirmationRecord, error) {
	executor := r.getExecutor(exec)
	query := selectConfirmationFieldsSQL + `
		WHERE match_id = $1 AND status = $2
		ORDER BY created_at ASC, id ASC
		LIMIT 1`
	c, err := r.scanRecord(executor.QueryRowContext(ctx, query, matchID, models.ConfirmationWaiting))
	if err != nil {
		if errors.Is(err, ErrConfirmationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find first waiting record for match %d: %w", matchID, err)
	}
	return c, nil
}

func (r *postgresConfirmationRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.ConfirmationRecord, error) {
	query := `
		SELECT c.id, c.match_id, c.user_id, c.is_confirmed, c.status, c.origin, c.created_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.role, u.email, u.created_at
		FROM confirmations c
		JOIN users u ON c.user_id = u.id
		WHERE c.match_id = $1
		ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations for match %d: %w", matchID, err)
	}
	defer rows.Close()

	records := make([]*models.ConfirmationRecord, 0)
	for rows.Next() {
		var c models.ConfirmationRecord
		var u models.User
		if err := rows.Scan(
			&c.ID, &c.MatchID, &c.UserID, &c.IsConfirmed, &c.Status, &c.Origin, &c.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Role, &u.Email, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan confirmation row: %w", err)
		}
		c.User = &u
		records = append(records, &c)
	}
	return records, rows.Err()
}
