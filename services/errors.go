package services

import "errors"

// Errors shared across services and mapped to HTTP statuses by handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrMatchInvalidCapacity    = errors.New("match capacity must be at least 2")
	ErrMatchInvalidTeams       = errors.New("match requires two distinct teams")
	ErrMatchInvalidSchedule    = errors.New("match scheduled time must not be in the past")
	ErrMatchNotOpen            = errors.New("match is not open for attendance changes")
	ErrMatchNotCancellable     = errors.New("only scheduled matches can be cancelled")
	ErrMatchAlreadyCompleted   = errors.New("match statistics have already been finalized")
	ErrRosterSideEmpty         = errors.New("both team rosters must be non-empty")
	ErrRosterDuplicateUser     = errors.New("a player appears more than once in the rosters")
	ErrStatsNegativeValue      = errors.New("goals and assists must not be negative")
	ErrNotEnoughConfirmed      = errors.New("not enough confirmed players to draw teams")
	ErrCrestContentTypeInvalid = errors.New("crest must be a png or jpeg image")
	ErrCrestUploadsDisabled    = errors.New("crest uploads are not configured on this deployment")

	// Conflicts
	ErrTeamsAlreadyAssigned = errors.New("teams have already been assigned for this match")

	// Informational no-op: the player is already confirmed or waiting.
	// Not a failure; handlers return the current record.
	ErrAlreadyRegistered = errors.New("player is already registered for this match")

	// Entity-specific not-found (more context than the generic ErrNotFound)
	ErrUserNotFound        = errors.New("user not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrRosterEntryNotFound = errors.New("roster entry not found")
)
