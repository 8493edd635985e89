package models

import "time"

type UserRole string

const (
	RolePlayer        UserRole = "player"
	RolePresident     UserRole = "president"
	RoleVicePresident UserRole = "vice_president"
)

// IsAdministrator reports whether the role may perform club-management
// actions (scheduling, attendance toggles, team assignment, statistics).
func (r UserRole) IsAdministrator() bool {
	return r == RolePresident || r == RoleVicePresident
}

func (r UserRole) Valid() bool {
	switch r {
	case RolePlayer, RolePresident, RoleVicePresident:
		return true
	}
	return false
}

type User struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Role      UserRole  `json:"role" db:"role"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
