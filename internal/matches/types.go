package matches

import (
	"database/sql"
	"sync"
	"time"
)

// Status is the lifecycle of a match as seen by the engine. How a score
// becomes final is the score-verification subsystem's concern; the engine
// only distinguishes matches it may still expect results for from matches
// whose results are final.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusVoid      Status = "void"
)

// Side identifies the winning side of a match.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Match is one round of doubles inside a box.
type Match struct {
	ID             string    `json:"id"`
	LeagueID       string    `json:"league_id"`
	WeekNumber     int       `json:"week_number"`
	BoxNumber      int       `json:"box_number"`
	RoundNumber    int       `json:"round_number"`
	TeamAPlayerIDs []string  `json:"team_a_player_ids"`
	TeamBPlayerIDs []string  `json:"team_b_player_ids"`
	Status         Status    `json:"status"`
	PointsA        int       `json:"points_a"`
	PointsB        int       `json:"points_b"`
	WinnerSide     Side      `json:"winner_side,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// store handles database operations for matches.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
