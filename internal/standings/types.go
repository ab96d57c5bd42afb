package standings

import (
	"time"

	"github.com/courtflow/boxleague/internal/config"
)

// Movement is a player's end-of-week box movement.
type Movement string

const (
	MovementPromotion  Movement = "promotion"
	MovementRelegation Movement = "relegation"
	MovementStayed     Movement = "stayed"
	MovementFrozen     Movement = "frozen"
)

// BoxStanding is one player's derived line in a box table. It is never
// hand-edited: the whole table is recomputed whenever requested.
type BoxStanding struct {
	PlayerID      string   `json:"player_id"`
	BoxNumber     int      `json:"box_number"`
	PositionInBox int      `json:"position_in_box"`
	MatchesPlayed int      `json:"matches_played"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	PointsFor     int      `json:"points_for"`
	PointsAgainst int      `json:"points_against"`
	PointsDiff    int      `json:"points_diff"`
	Movement      Movement `json:"movement"`
	WasAbsent     bool     `json:"was_absent"`
	IsSubstitute  bool     `json:"is_substitute,omitempty"`
	SubstituteID  string   `json:"substitute_id,omitempty"`
}

// PlayerMovement records a promotion or relegation between adjacent boxes.
// It is produced at finalization and consumed when the next week's box
// assignments are generated.
type PlayerMovement struct {
	PlayerID string   `json:"player_id"`
	FromBox  int      `json:"from_box"`
	ToBox    int      `json:"to_box"`
	Reason   Movement `json:"reason"`
}

// Snapshot is a computed standings table with a staleness watermark.
type Snapshot struct {
	CalculatedAt    time.Time     `json:"calculated_at"`
	SourceWatermark time.Time     `json:"source_watermark"`
	Standings       []BoxStanding `json:"standings"`
}

// SeasonAverage is a player's per-week season history, used by the
// average_points absence policy.
type SeasonAverage struct {
	WeeksPlayed      int     `json:"weeks_played"`
	AvgMatches       float64 `json:"avg_matches"`
	WinRate          float64 `json:"win_rate"`
	AvgPointsFor     float64 `json:"avg_points_for"`
	AvgPointsAgainst float64 `json:"avg_points_against"`
}

// AbsenceInfo is the slice of an absence record the calculator needs.
type AbsenceInfo struct {
	PlayerID      string
	Policy        config.AbsencePolicy
	IsNoShow      bool
	SubstituteID  string
	SeasonAverage *SeasonAverage
}

// BoxInput is everything needed to compute one box's standings.
type BoxInput struct {
	BoxNumber int
	// PlayerIDs is the box's current ordered roster, substitutes included.
	PlayerIDs []string
	// Absences lists players removed from the roster for this week.
	Absences []AbsenceInfo
	// Matches are the completed matches for this box.
	Matches []CompletedMatch
	// IsTopBox and IsBottomBox clamp promotion and relegation.
	IsTopBox    bool
	IsBottomBox bool
	// MovementFrozen freezes the whole box regardless of results.
	MovementFrozen bool
}

// CompletedMatch is the result data the calculator folds in. The engine
// never decides how a score became final; it only consumes results.
type CompletedMatch struct {
	TeamAPlayerIDs []string
	TeamBPlayerIDs []string
	PointsA        int
	PointsB        int
	UpdatedAt      time.Time
}
