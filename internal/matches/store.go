package matches

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/courtflow/boxleague/internal/rotation"
)

// matchNamespace seeds deterministic match identity. The same
// (league, week, box, round, rotation-version) tuple always yields the same
// match id, so a retried activation is a no-op.
var matchNamespace = uuid.MustParse("9c1a5f52-7f6e-4be1-93b1-2a54f1c1b6a0")

// NewStore creates a new match store.
func NewStore(db *sql.DB) MatchService {
	return &store{db: db}
}

// MatchID derives the deterministic identity for one round of a box.
func MatchID(leagueID string, weekNumber, boxNumber, roundNumber int) string {
	name := fmt.Sprintf("%s|%d|%d|%d|%s", leagueID, weekNumber, boxNumber, roundNumber, rotation.Version)
	return uuid.NewSHA1(matchNamespace, []byte(name)).String()
}

func (s *store) CreateForWeek(leagueID string, weekNumber int, boxPairings []BoxPairings) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO matches (
			id, league_id, week_number, box_number, round_number,
			team_a_json, team_b_json, status, points_a, points_b, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?)
	`

	now := time.Now()
	created := 0
	for _, box := range boxPairings {
		for _, pairing := range box.Pairings {
			teamA, err := json.Marshal(pairing.TeamAPlayerIDs)
			if err != nil {
				return 0, fmt.Errorf("failed to marshal team A: %w", err)
			}
			teamB, err := json.Marshal(pairing.TeamBPlayerIDs)
			if err != nil {
				return 0, fmt.Errorf("failed to marshal team B: %w", err)
			}
			result, err := tx.Exec(query,
				MatchID(leagueID, weekNumber, box.BoxNumber, pairing.RoundNumber),
				leagueID, weekNumber, box.BoxNumber, pairing.RoundNumber,
				string(teamA), string(teamB), string(StatusScheduled), now.Unix(),
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert match for box %d round %d: %w", box.BoxNumber, pairing.RoundNumber, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return 0, fmt.Errorf("failed to get rows affected: %w", err)
			}
			created += int(affected)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit match creation: %w", err)
	}
	log.Info("Created matches for week", "league", leagueID, "week", weekNumber, "created", created)
	return created, nil
}

func (s *store) CompletedForBox(leagueID string, weekNumber, boxNumber int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, league_id, week_number, box_number, round_number,
			   team_a_json, team_b_json, status, points_a, points_b, winner_side, updated_at
		FROM matches
		WHERE league_id = ? AND week_number = ? AND box_number = ? AND status = ?
		ORDER BY round_number ASC
	`
	rows, err := s.db.Query(query, leagueID, weekNumber, boxNumber, string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query completed matches: %w", err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

func (s *store) ForWeek(leagueID string, weekNumber int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, league_id, week_number, box_number, round_number,
			   team_a_json, team_b_json, status, points_a, points_b, winner_side, updated_at
		FROM matches
		WHERE league_id = ? AND week_number = ?
		ORDER BY box_number ASC, round_number ASC
	`
	rows, err := s.db.Query(query, leagueID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

func (s *store) RecordResult(matchID string, pointsA, pointsB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner := SideA
	if pointsB > pointsA {
		winner = SideB
	}

	query := `
		UPDATE matches
		SET status = ?, points_a = ?, points_b = ?, winner_side = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.Exec(query, string(StatusCompleted), pointsA, pointsB, string(winner), time.Now().Unix(), matchID)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match not found: %s", matchID)
	}
	log.Debug("Recorded match result", "matchID", matchID, "pointsA", pointsA, "pointsB", pointsB)
	return nil
}

// VoidForWeek marks every scheduled match of a week void. Used when a week
// is reset to draft and its assignments regenerated.
func (s *store) VoidForWeek(leagueID string, weekNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `UPDATE matches SET status = ?, updated_at = ? WHERE league_id = ? AND week_number = ? AND status = ?`
	_, err := s.db.Exec(query, string(StatusVoid), time.Now().Unix(), leagueID, weekNumber, string(StatusScheduled))
	if err != nil {
		return fmt.Errorf("failed to void matches: %w", err)
	}
	return nil
}

func scanMatches(rows *sql.Rows) ([]Match, error) {
	var result []Match
	for rows.Next() {
		var m Match
		var teamA, teamB string
		var winner sql.NullString
		var updatedAt int64
		var status string
		err := rows.Scan(
			&m.ID, &m.LeagueID, &m.WeekNumber, &m.BoxNumber, &m.RoundNumber,
			&teamA, &teamB, &status, &m.PointsA, &m.PointsB, &winner, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		if err := json.Unmarshal([]byte(teamA), &m.TeamAPlayerIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team A: %w", err)
		}
		if err := json.Unmarshal([]byte(teamB), &m.TeamBPlayerIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team B: %w", err)
		}
		m.Status = Status(status)
		if winner.Valid {
			m.WinnerSide = Side(winner.String)
		}
		m.UpdatedAt = time.Unix(updatedAt, 0)
		result = append(result, m)
	}
	return result, rows.Err()
}
