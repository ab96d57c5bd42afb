package week

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// maxUpdateRetries bounds the optimistic-concurrency retry loop.
const maxUpdateRetries = 5

// store persists the week aggregate as one versioned row per (league, week).
type store struct {
	db *sql.DB
}

// NewStore creates a new week store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Get(key Key) (Week, bool, error) {
	return s.get(key)
}

func (s *store) get(key Key) (Week, bool, error) {
	query := `
		SELECT state, revision, updated_at, payload
		FROM weeks
		WHERE league_id = ? AND week_number = ?
	`
	var state string
	var revision int64
	var updatedAt int64
	var payload string
	err := s.db.QueryRow(query, key.LeagueID, key.WeekNumber).Scan(&state, &revision, &updatedAt, &payload)
	if err == sql.ErrNoRows {
		return Week{}, false, nil
	}
	if err != nil {
		return Week{}, false, fmt.Errorf("failed to get week %s: %w", key, err)
	}

	var w Week
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Week{}, false, fmt.Errorf("failed to unmarshal week %s: %w", key, err)
	}
	// The columns are authoritative for the fields they duplicate.
	w.LeagueID = key.LeagueID
	w.WeekNumber = key.WeekNumber
	w.State = State(state)
	w.Revision = revision
	w.UpdatedAt = time.Unix(updatedAt, 0)
	return w, true, nil
}

func (s *store) Put(w Week) error {
	w.Revision = 1
	w.UpdatedAt = time.Now()
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal week %s: %w", w.Key(), err)
	}

	query := `
		INSERT INTO weeks (league_id, week_number, state, revision, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, w.LeagueID, w.WeekNumber, string(w.State), w.Revision, w.UpdatedAt.Unix(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to create week %s: %w", w.Key(), err)
	}
	log.Info("Created week", "week", w.Key().String(), "boxes", len(w.BoxAssignments))
	return nil
}

// TransactionalUpdate implements optimistic concurrency: read, apply fn,
// then compare-and-swap on the revision column. A lost race re-reads and
// re-applies fn against the fresh state.
func (s *store) TransactionalUpdate(key Key, fn func(*Week) error) (Week, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		w, exists, err := s.get(key)
		if err != nil {
			return Week{}, err
		}
		if !exists {
			return Week{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		previousRevision := w.Revision
		if err := fn(&w); err != nil {
			// Validation failures abort with no write.
			return Week{}, err
		}

		w.Revision = previousRevision + 1
		w.UpdatedAt = time.Now()
		payload, err := json.Marshal(w)
		if err != nil {
			return Week{}, fmt.Errorf("failed to marshal week %s: %w", key, err)
		}

		query := `
			UPDATE weeks
			SET state = ?, revision = ?, updated_at = ?, payload = ?
			WHERE league_id = ? AND week_number = ? AND revision = ?
		`
		result, err := s.db.Exec(query,
			string(w.State), w.Revision, w.UpdatedAt.Unix(), string(payload),
			key.LeagueID, key.WeekNumber, previousRevision,
		)
		if err != nil {
			return Week{}, fmt.Errorf("failed to update week %s: %w", key, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return Week{}, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 1 {
			return w, nil
		}
		log.Debug("Week update lost a race, retrying from fresh read", "week", key.String(), "attempt", attempt+1)
	}
	return Week{}, fmt.Errorf("%w: %s", ErrConflict, key)
}

func (s *store) CurrentWeek(leagueID string) (Week, bool, error) {
	// Lowest non-finalized week number first; when the season has fully
	// finalized, the highest week number overall.
	var weekNumber int
	err := s.db.QueryRow(`
		SELECT week_number FROM weeks
		WHERE league_id = ? AND state != ?
		ORDER BY week_number ASC LIMIT 1
	`, leagueID, string(StateFinalized)).Scan(&weekNumber)
	if err == sql.ErrNoRows {
		err = s.db.QueryRow(`
			SELECT week_number FROM weeks
			WHERE league_id = ?
			ORDER BY week_number DESC LIMIT 1
		`, leagueID).Scan(&weekNumber)
		if err == sql.ErrNoRows {
			return Week{}, false, nil
		}
	}
	if err != nil {
		return Week{}, false, fmt.Errorf("failed to find current week: %w", err)
	}
	return s.get(Key{LeagueID: leagueID, WeekNumber: weekNumber})
}

func (s *store) ListWeeks(leagueID string) ([]Week, error) {
	rows, err := s.db.Query(`
		SELECT week_number FROM weeks
		WHERE league_id = ?
		ORDER BY week_number ASC
	`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan week number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	weeks := make([]Week, 0, len(numbers))
	for _, n := range numbers {
		w, exists, err := s.get(Key{LeagueID: leagueID, WeekNumber: n})
		if err != nil {
			return nil, err
		}
		if exists {
			weeks = append(weeks, w)
		}
	}
	return weeks, nil
}
