package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// MinMatchCapacity is the lowest allowed cap on confirmed players.
const MinMatchCapacity = 2

type Match struct {
	ID          int         `json:"id" db:"id"`
	ScheduledAt time.Time   `json:"scheduled_at" db:"scheduled_at"`
	PlayedAt    *time.Time  `json:"played_at,omitempty" db:"played_at"`
	TeamAID     int         `json:"team_a_id" db:"team_a_id"`
	TeamBID     int         `json:"team_b_id" db:"team_b_id"`
	TeamAScore  *int        `json:"team_a_score,omitempty" db:"team_a_score"`
	TeamBScore  *int        `json:"team_b_score,omitempty" db:"team_b_score"`
	Status      MatchStatus `json:"status" db:"status"`
	Capacity    int         `json:"capacity" db:"capacity"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	TeamA *Team `json:"team_a,omitempty" db:"-"`
	TeamB *Team `json:"team_b,omitempty" db:"-"`
}

// AttendanceSummary is the derived per-match view of the confirmation ledger.
type AttendanceSummary struct {
	Confirmed      []*ConfirmationRecord `json:"confirmed"`
	Waiting        []*ConfirmationRecord `json:"waiting"`
	Declined       []*ConfirmationRecord `json:"declined"`
	AvailableSlots int                   `json:"available_slots"`
	IsFull         bool                  `json:"is_full"`
}
