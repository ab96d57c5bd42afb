package season

// PlayerStats is a player's rolling season aggregate. Rows are append-only
// in effect: every finalized week folds its deltas in exactly once and
// nothing ever rewrites history.
type PlayerStats struct {
	LeagueID          string  `json:"league_id"`
	PlayerID          string  `json:"player_id"`
	WeeksPlayed       int     `json:"weeks_played"`
	WeeksAbsent       int     `json:"weeks_absent"`
	WeeksAsSubstitute int     `json:"weeks_as_substitute"`
	MatchesPlayed     int     `json:"matches_played"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	PointsFor         int     `json:"points_for"`
	PointsAgainst     int     `json:"points_against"`
	WinPercentage     float64 `json:"win_percentage"`
	CurrentBox        int     `json:"current_box"`
	HighestBox        int     `json:"highest_box"`
	Promotions        int     `json:"promotions"`
	Relegations       int     `json:"relegations"`
	NoShows           int     `json:"no_shows"`
	CheckInRate       float64 `json:"check_in_rate"`
}
