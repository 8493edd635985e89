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
	ErrRosterEntryNotFound = errors.New("roster entry not found")
	ErrRosterEntryConflict = errors.New("roster entry already exists for this match and user")
	ErrRosterUserInvalid   = errors.New("roster user conflict or invalid")
	ErrRosterTeamInvalid   = errors.New("roster team conflict or invalid")
)

type RosterRepository interface {
	CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
	CreateBatch(ctx context.Context, exec SQLExecutor, entries []*models.RosterEntry) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.RosterEntry, error)
	UpdateStats(ctx context.Context, exec SQLExecutor, id, matchID, goals, assists int) error
	// ListAllWithMatches returns every roster entry across all matches
	// with the owning match populated, for standings aggregation.
	ListAllWithMatches(ctx context.Context) ([]*models.RosterEntry, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM roster_entries WHERE match_id = $1`
	var count int
	err := executor.QueryRowContext(ctx, query, matchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count roster entries for match %d: %w", matchID, err)
	}
	return count, nil
}

func (r *postgresRosterRepository) CreateBatch(ctx context.Context, exec SQLExecutor, entries []*models.RosterEntry) error {
	executor := r.getExecutor(exec)
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO roster_entries (match_id, user_id, team_id, goals, assists)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for _, entry := range entries {
		err := executor.QueryRowContext(ctx, query,
			entry.MatchID, entry.UserID, entry.TeamID, entry.Goals, entry.Assists,
		).Scan(&entry.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				switch pqErr.Code {
				case "23505": // unique_violation
					if pqErr.Constraint == "roster_entries_match_id_user_id_key" {
						return ErrRosterEntryConflict
					}
				case "23503": // foreign_key_violation
					switch pqErr.Constraint {
					case "roster_entries_user_id_fkey":
						return ErrRosterUserInvalid
					case "roster_entries_team_id_fkey":
						return ErrRosterTeamInvalid
					case "roster_entries_match_id_fkey":
						return ErrMatchNotFound
					}
				}
			}
			return fmt.Errorf("CreateBatch failed for match %d user %d: %w", entry.MatchID, entry.UserID, err)
		}
	}
	return nil
}

func (r *postgresRosterRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.RosterEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, user_id, team_id, goals, assists
		FROM roster_entries
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries for match %d: %w", matchID, err)
	}
	defer rows.Close()

	entries := make([]*models.RosterEntry, 0)
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.ID, &e.MatchID, &e.UserID, &e.TeamID, &e.Goals, &e.Assists); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *postgresRosterRepository) UpdateStats(ctx context.Context, exec SQLExecutor, id, matchID, goals, assists int) error {
	executor := r.getExecutor(exec)
	// match_id in the predicate rejects entry ids belonging to another match
	query := `UPDATE roster_entries SET goals = $1, assists = $2 WHERE id = $3 AND match_id = $4`
	result, err := executor.ExecContext(ctx, query, goals, assists, id, matchID)
	if err != nil {
		return fmt.Errorf("failed to update stats for roster entry %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}

func (r *postgresRosterRepository) ListAllWithMatches(ctx context.Context) ([]*models.RosterEntry, error) {
	query := `
		SELECT re.id, re.match_id, re.user_id, re.team_id, re.goals, re.assists,
		       m.id, m.scheduled_at, m.played_at, m.team_a_id, m.team_b_id,
		       m.team_a_score, m.team_b_score, m.status, m.capacity, m.created_at
		FROM roster_entries re
		JOIN matches m ON re.match_id = m.id
		ORDER BY m.scheduled_at ASC, re.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries with matches: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.RosterEntry, 0)
	for rows.Next() {
		var e models.RosterEntry
		var m models.Match
		if err := rows.Scan(
			&e.ID, &e.MatchID, &e.UserID, &e.TeamID, &e.Goals, &e.Assists,
			&m.ID, &m.ScheduledAt, &m.PlayedAt, &m.TeamAID, &m.TeamBID,
			&m.TeamAScore, &m.TeamBScore, &m.Status, &m.Capacity, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry with match: %w", err)
		}
		e.Match = &m
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
