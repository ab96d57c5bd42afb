package matches

import "github.com/courtflow/boxleague/internal/rotation"

// BoxPairings bundles a box number with its generated rotation.
type BoxPairings struct {
	BoxNumber int
	Pairings  []rotation.GeneratedPairing
}

// MatchService is the narrow collaborator interface the engine uses to
// create matches for an activated week and read completed results back.
type MatchService interface {
	// CreateForWeek creates one match per (box, round) pairing. Match
	// identity is deterministic, so a retried activation never
	// double-creates; the returned count is the number of newly inserted
	// matches.
	CreateForWeek(leagueID string, weekNumber int, boxPairings []BoxPairings) (int, error)
	CompletedForBox(leagueID string, weekNumber, boxNumber int) ([]Match, error)
	ForWeek(leagueID string, weekNumber int) ([]Match, error)
	RecordResult(matchID string, pointsA, pointsB int) error
	VoidForWeek(leagueID string, weekNumber int) error
}
