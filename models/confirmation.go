package models

import "time"

type ConfirmationStatus string

const (
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationWaiting   ConfirmationStatus = "waiting"
	ConfirmationDeclined  ConfirmationStatus = "declined"
)

type ConfirmationOrigin string

const (
	OriginPlayer ConfirmationOrigin = "player"
	OriginAdmin  ConfirmationOrigin = "admin"
)

// ConfirmationRecord is a player's declared intent to attend a match.
// There is at most one record per (match, user); a player changing their
// mind mutates the record in place instead of creating a new one.
// CreatedAt doubles as the waitlist queue position.
type ConfirmationRecord struct {
	ID          int                `json:"id" db:"id"`
	MatchID     int                `json:"match_id" db:"match_id"`
	UserID      int                `json:"user_id" db:"user_id"`
	IsConfirmed bool               `json:"is_confirmed" db:"is_confirmed"`
	Status      ConfirmationStatus `json:"status" db:"status"`
	Origin      ConfirmationOrigin `json:"origin" db:"origin"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
