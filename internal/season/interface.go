package season

import (
	"github.com/courtflow/boxleague/internal/standings"
	"github.com/courtflow/boxleague/internal/week"
)

// SeasonService folds finalized weeks into rolling per-player aggregates
// and serves season-wide reads.
type SeasonService interface {
	// UpdateStatsAfterWeek applies one finalized week's standings exactly
	// once. It reports false with a nil error when the week was already
	// applied, so replayed finalizations are a safe no-op.
	UpdateStatsAfterWeek(w week.Week, table []standings.BoxStanding, movements []standings.PlayerMovement) (bool, error)

	// Leaderboard returns every player's season aggregate ordered by win
	// percentage, wins and points difference.
	Leaderboard(leagueID string) ([]PlayerStats, error)

	// PlayerStats returns one player's aggregate, or nil when the player
	// has no season history yet.
	PlayerStats(leagueID, playerID string) (*PlayerStats, error)

	// SeasonAverage derives the per-week averages the average_points
	// absence policy consumes. Nil when the player has no played weeks.
	SeasonAverage(leagueID, playerID string) (*standings.SeasonAverage, error)
}
