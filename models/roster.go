package models

// RosterEntry assigns a player to one of the two sides for a specific
// match and carries their per-match statistics. At most one entry per
// (match, user); created in bulk when teams are assigned.
type RosterEntry struct {
	ID      int `json:"id" db:"id"`
	MatchID int `json:"match_id" db:"match_id"`
	UserID  int `json:"user_id" db:"user_id"`
	TeamID  int `json:"team_id" db:"team_id"`
	Goals   int `json:"goals" db:"goals"`
	Assists int `json:"assists" db:"assists"`

	User  *User  `json:"user,omitempty" db:"-"`
	Match *Match `json:"-" db:"-"`
}
