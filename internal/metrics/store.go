package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// Well-known durable counter keys.
const (
	KeyWeeksFinalized      = "weeks_finalized"
	KeyWeeksActivated      = "weeks_activated"
	KeyAbsencesDeclared    = "absences_declared"
	KeySubstitutesAssigned = "substitutes_assigned"
)

// store handles metric-related database operations.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new metrics Store.
func New(db *sql.DB) MetricsStore {
	return &store{
		db: db,
	}
}

// Increment upserts a per-league counter key and increments its value by one.
func (s *store) Increment(leagueID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metrics (league_id, key, value) VALUES (?, ?, 1)
		ON CONFLICT(league_id, key) DO UPDATE SET value = value + 1;
	`, leagueID, key)
	if err != nil {
		log.Error("Failed to increment metric", "error", err, "key", key)
	} else {
		log.Debug("Incremented metric", "league_id", leagueID, "key", key)
	}
}

// GetAll returns all durable counters for a league.
func (s *store) GetAll(leagueID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM metrics WHERE league_id = ?", leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metrics[key] = value
	}
	return metrics, nil
}
