package league

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new member store.
func NewStore(db *sql.DB) MemberStore {
	return &store{db: db}
}

func (s *store) UpsertMembers(leagueID string, members []Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for member upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO members (id, league_id, name, rating, is_member, rating_link_id, sub_consent, subs_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(league_id, id) DO UPDATE SET
			name = excluded.name,
			rating = excluded.rating,
			is_member = excluded.is_member,
			rating_link_id = excluded.rating_link_id,
			sub_consent = excluded.sub_consent
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare member upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range members {
		var ratingLink any
		if m.RatingLinkID != "" {
			ratingLink = m.RatingLinkID
		}
		if _, err := stmt.Exec(m.ID, leagueID, m.Name, m.Rating, m.IsMember, ratingLink, m.SubConsent); err != nil {
			return fmt.Errorf("failed to upsert member %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member upsert: %w", err)
	}
	log.Info("Upserted members", "league_id", leagueID, "count", len(members))
	return nil
}

func scanMember(scanner interface{ Scan(...any) error }) (Member, error) {
	var m Member
	var ratingLink sql.NullString
	err := scanner.Scan(&m.ID, &m.Name, &m.Rating, &m.IsMember, &ratingLink, &m.SubConsent, &m.SubsUsed)
	m.RatingLinkID = ratingLink.String
	return m, err
}

const memberColumns = "id, name, rating, is_member, rating_link_id, sub_consent, subs_used"

func (s *store) GetMember(leagueID, playerID string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT `+memberColumns+` FROM members
		WHERE league_id = ? AND id = ?
	`, leagueID, playerID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", playerID, err)
	}
	return &m, nil
}

func (s *store) ListMembers(leagueID string) ([]Member, error) {
	return s.queryMembers(`
		SELECT `+memberColumns+` FROM members
		WHERE league_id = ?
		ORDER BY name ASC
	`, leagueID)
}

func (s *store) MembersByRating(leagueID string) ([]Member, error) {
	return s.queryMembers(`
		SELECT `+memberColumns+` FROM members
		WHERE league_id = ? AND is_member = 1
		ORDER BY rating DESC, id ASC
	`, leagueID)
}

func (s *store) queryMembers(query string, args ...any) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			log.Error("Failed to scan member row", "error", err)
			continue
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *store) IncrementSubsUsed(leagueID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`
		UPDATE members SET subs_used = subs_used + 1
		WHERE league_id = ? AND id = ?
	`, leagueID, playerID)
	if err != nil {
		return fmt.Errorf("failed to increment subs used for %s: %w", playerID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("unknown member %s in league %s", playerID, leagueID)
	}
	return nil
}
