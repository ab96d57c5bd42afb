package season

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtflow/boxleague/internal/standings"
	"github.com/courtflow/boxleague/internal/week"
)

// statsDelta is one player's contribution from a single finalized week,
// aggregated in memory before the upsert.
type statsDelta struct {
	weeksPlayed       int
	weeksAbsent       int
	weeksAsSubstitute int
	matchesPlayed     int
	wins              int
	losses            int
	pointsFor         int
	pointsAgainst     int
	currentBox        int
	bestBox           int
	promotions        int
	relegations       int
	noShows           int
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new season stats store.
func NewStore(db *sql.DB) SeasonService {
	return &store{db: db}
}

// UpdateStatsAfterWeek folds one finalized week into the season aggregates.
// The week_stats_applied guard row and the upserts share one transaction,
// so a replayed finalization either sees the guard and no-ops or the whole
// application happens again atomically.
func (s *store) UpdateStatsAfterWeek(w week.Week, table []standings.BoxStanding, movements []standings.PlayerMovement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT OR IGNORE INTO week_stats_applied (league_id, week_number, applied_at)
		VALUES (?, ?, ?)
	`, w.LeagueID, w.WeekNumber, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to record stats application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		log.Debug("Season stats already applied", "week", w.Key().String())
		return false, nil
	}

	deltas := buildDeltas(w, table, movements)
	for playerID, delta := range deltas {
		if err := upsertPlayer(tx, w.LeagueID, playerID, delta); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit stats transaction: %w", err)
	}
	log.Info("Applied season stats", "week", w.Key().String(), "players", len(deltas))
	return true, nil
}

func buildDeltas(w week.Week, table []standings.BoxStanding, movements []standings.PlayerMovement) map[string]*statsDelta {
	deltas := make(map[string]*statsDelta)
	get := func(playerID string) *statsDelta {
		if _, ok := deltas[playerID]; !ok {
			deltas[playerID] = &statsDelta{}
		}
		return deltas[playerID]
	}

	for _, row := range table {
		d := get(row.PlayerID)
		d.matchesPlayed += row.MatchesPlayed
		d.wins += row.Wins
		d.losses += row.Losses
		d.pointsFor += row.PointsFor
		d.pointsAgainst += row.PointsAgainst
		d.currentBox = row.BoxNumber
		d.bestBox = row.BoxNumber
		if row.WasAbsent {
			d.weeksAbsent++
		} else {
			d.weeksPlayed++
		}
		if row.IsSubstitute {
			d.weeksAsSubstitute++
		}
	}

	for _, absence := range w.Absences {
		if absence.IsNoShow {
			get(absence.PlayerID).noShows++
		}
	}

	// A movement supersedes the box the player stood in: next week's seat
	// is where the season tracks them, and a promotion may set a new best.
	// A relegation keeps bestBox at the box that was played.
	for _, movement := range movements {
		d := get(movement.PlayerID)
		d.currentBox = movement.ToBox
		if movement.ToBox > 0 && (d.bestBox == 0 || movement.ToBox < d.bestBox) {
			d.bestBox = movement.ToBox
		}
		switch movement.Reason {
		case standings.MovementPromotion:
			d.promotions++
		case standings.MovementRelegation:
			d.relegations++
		}
	}
	return deltas
}

// upsertPlayer adds the delta to the player's row. Derived columns
// (win_percentage, check_in_rate, highest_box) are recomputed in SQL from
// the pre-update row plus the excluded values, so concurrent readers never
// see a partially derived state.
func upsertPlayer(tx *sql.Tx, leagueID, playerID string, d *statsDelta) error {
	winPct := 0.0
	if d.matchesPlayed > 0 {
		winPct = float64(d.wins) / float64(d.matchesPlayed)
	}
	checkIn := 0.0
	if d.weeksPlayed+d.weeksAbsent > 0 {
		checkIn = float64(d.weeksPlayed) / float64(d.weeksPlayed+d.weeksAbsent)
	}

	_, err := tx.Exec(`
		INSERT INTO season_player_stats (
			league_id, player_id, weeks_played, weeks_absent, weeks_as_substitute,
			matches_played, wins, losses, points_for, points_against,
			win_percentage, current_box, highest_box, promotions, relegations,
			no_shows, check_in_rate
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(league_id, player_id) DO UPDATE SET
			weeks_played = weeks_played + excluded.weeks_played,
			weeks_absent = weeks_absent + excluded.weeks_absent,
			weeks_as_substitute = weeks_as_substitute + excluded.weeks_as_substitute,
			matches_played = matches_played + excluded.matches_played,
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			points_for = points_for + excluded.points_for,
			points_against = points_against + excluded.points_against,
			win_percentage = CASE
				WHEN matches_played + excluded.matches_played > 0
				THEN CAST(wins + excluded.wins AS REAL) / (matches_played + excluded.matches_played)
				ELSE 0 END,
			current_box = CASE
				WHEN excluded.current_box > 0 THEN excluded.current_box
				ELSE current_box END,
			highest_box = CASE
				WHEN excluded.highest_box > 0 AND (highest_box = 0 OR excluded.highest_box < highest_box)
				THEN excluded.highest_box
				ELSE highest_box END,
			promotions = promotions + excluded.promotions,
			relegations = relegations + excluded.relegations,
			no_shows = no_shows + excluded.no_shows,
			check_in_rate = CASE
				WHEN weeks_played + excluded.weeks_played + weeks_absent + excluded.weeks_absent > 0
				THEN CAST(weeks_played + excluded.weeks_played AS REAL)
					/ (weeks_played + excluded.weeks_played + weeks_absent + excluded.weeks_absent)
				ELSE 0 END
	`, leagueID, playerID, d.weeksPlayed, d.weeksAbsent, d.weeksAsSubstitute,
		d.matchesPlayed, d.wins, d.losses, d.pointsFor, d.pointsAgainst,
		winPct, d.currentBox, d.bestBox, d.promotions, d.relegations,
		d.noShows, checkIn)
	if err != nil {
		return fmt.Errorf("failed to upsert stats for player %s: %w", playerID, err)
	}
	return nil
}

const playerStatsColumns = `
	league_id, player_id, weeks_played, weeks_absent, weeks_as_substitute,
	matches_played, wins, losses, points_for, points_against,
	win_percentage, current_box, highest_box, promotions, relegations,
	no_shows, check_in_rate
`

func scanPlayerStats(scanner interface{ Scan(...any) error }) (PlayerStats, error) {
	var p PlayerStats
	err := scanner.Scan(
		&p.LeagueID, &p.PlayerID, &p.WeeksPlayed, &p.WeeksAbsent, &p.WeeksAsSubstitute,
		&p.MatchesPlayed, &p.Wins, &p.Losses, &p.PointsFor, &p.PointsAgainst,
		&p.WinPercentage, &p.CurrentBox, &p.HighestBox, &p.Promotions, &p.Relegations,
		&p.NoShows, &p.CheckInRate,
	)
	return p, err
}

func (s *store) Leaderboard(leagueID string) ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+playerStatsColumns+`
		FROM season_player_stats
		WHERE league_id = ?
		ORDER BY win_percentage DESC, wins DESC, points_for - points_against DESC, player_id ASC
	`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var leaderboard []PlayerStats
	for rows.Next() {
		p, err := scanPlayerStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		leaderboard = append(leaderboard, p)
	}
	return leaderboard, rows.Err()
}

func (s *store) PlayerStats(leagueID, playerID string) (*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT `+playerStatsColumns+`
		FROM season_player_stats
		WHERE league_id = ? AND player_id = ?
	`, leagueID, playerID)
	p, err := scanPlayerStats(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for player %s: %w", playerID, err)
	}
	return &p, nil
}

// SeasonAverage derives the per-week averages used by the average_points
// absence policy from the stored aggregate.
func (s *store) SeasonAverage(leagueID, playerID string) (*standings.SeasonAverage, error) {
	stats, err := s.PlayerStats(leagueID, playerID)
	if err != nil {
		return nil, err
	}
	if stats == nil || stats.WeeksPlayed == 0 {
		return nil, nil
	}

	avg := &standings.SeasonAverage{
		WeeksPlayed:      stats.WeeksPlayed,
		AvgMatches:       float64(stats.MatchesPlayed) / float64(stats.WeeksPlayed),
		AvgPointsFor:     float64(stats.PointsFor) / float64(stats.WeeksPlayed),
		AvgPointsAgainst: float64(stats.PointsAgainst) / float64(stats.WeeksPlayed),
	}
	if stats.MatchesPlayed > 0 {
		avg.WinRate = float64(stats.Wins) / float64(stats.MatchesPlayed)
	}
	return avg, nil
}
