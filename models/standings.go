package models

// StandingsRow is one line of the league table. It is derived on every
// standings request and never persisted.
type StandingsRow struct {
	UserID         int     `json:"user_id"`
	PlayerName     string  `json:"player_name"`
	MatchesPlayed  int     `json:"matches_played"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	GoalDifference int     `json:"goal_difference"`
	TotalGoals     int     `json:"total_goals"`
	TotalAssists   int     `json:"total_assists"`
	Points         int     `json:"points"`
	WinRate        float64 `json:"win_rate"`
}
