package rotation

import (
	"fmt"
)

// Version identifies the rotation table generation. It participates in
// deterministic match identity so a retried activation always maps a
// (box, round) pair to the same match.
const Version = "rotation-v1"

// GeneratedPairing is one round of doubles inside a box. Boxes rotate
// through a single court, so every round has exactly one match; players not
// on either team sit the round out.
type GeneratedPairing struct {
	RoundNumber    int      `json:"round_number"`
	TeamAPlayerIDs []string `json:"team_a_player_ids"`
	TeamBPlayerIDs []string `json:"team_b_player_ids"`
	ByePlayerIDs   []string `json:"bye_player_ids,omitempty"`
}

// seat indices are 0-based positions into the ordered player list.
type roundSpec struct {
	teamA [2]int
	teamB [2]int
	byes  []int
}

// Fixed balanced tables per box size. The 4-player table partners every
// unordered pair exactly once. The 5-player table is the cyclic whist
// design: the bye rotates through all five seats and every pair partners
// exactly once. The 6-player table sits two players per round, giving each
// player four played rounds and two byes with no repeated partner pair.
var tables = map[int][]roundSpec{
	4: {
		{teamA: [2]int{0, 1}, teamB: [2]int{2, 3}},
		{teamA: [2]int{0, 2}, teamB: [2]int{1, 3}},
		{teamA: [2]int{0, 3}, teamB: [2]int{1, 2}},
	},
	5: {
		{teamA: [2]int{1, 4}, teamB: [2]int{2, 3}, byes: []int{0}},
		{teamA: [2]int{2, 0}, teamB: [2]int{3, 4}, byes: []int{1}},
		{teamA: [2]int{3, 1}, teamB: [2]int{4, 0}, byes: []int{2}},
		{teamA: [2]int{4, 2}, teamB: [2]int{0, 1}, byes: []int{3}},
		{teamA: [2]int{0, 3}, teamB: [2]int{1, 2}, byes: []int{4}},
	},
	6: {
		{teamA: [2]int{0, 1}, teamB: [2]int{2, 3}, byes: []int{4, 5}},
		{teamA: [2]int{0, 4}, teamB: [2]int{1, 5}, byes: []int{2, 3}},
		{teamA: [2]int{2, 4}, teamB: [2]int{3, 5}, byes: []int{0, 1}},
		{teamA: [2]int{0, 2}, teamB: [2]int{1, 4}, byes: []int{3, 5}},
		{teamA: [2]int{0, 3}, teamB: [2]int{2, 5}, byes: []int{1, 4}},
		{teamA: [2]int{1, 3}, teamB: [2]int{4, 5}, byes: []int{0, 2}},
	},
}

// GeneratePairings produces the full doubles rotation for an ordered box of
// 4-6 players. The same input order always yields the same schedule.
func GeneratePairings(orderedPlayerIDs []string) ([]GeneratedPairing, error) {
	table, ok := tables[len(orderedPlayerIDs)]
	if !ok {
		return nil, fmt.Errorf("no rotation table for a box of %d players; legal sizes are 4-6", len(orderedPlayerIDs))
	}
	seen := make(map[string]struct{}, len(orderedPlayerIDs))
	for _, id := range orderedPlayerIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate player %s in box", id)
		}
		seen[id] = struct{}{}
	}

	pairings := make([]GeneratedPairing, 0, len(table))
	for i, spec := range table {
		pairing := GeneratedPairing{
			RoundNumber:    i + 1,
			TeamAPlayerIDs: []string{orderedPlayerIDs[spec.teamA[0]], orderedPlayerIDs[spec.teamA[1]]},
			TeamBPlayerIDs: []string{orderedPlayerIDs[spec.teamB[0]], orderedPlayerIDs[spec.teamB[1]]},
		}
		for _, seat := range spec.byes {
			pairing.ByePlayerIDs = append(pairing.ByePlayerIDs, orderedPlayerIDs[seat])
		}
		pairings = append(pairings, pairing)
	}
	return pairings, nil
}

// RoundCount returns the number of rounds a box of the given size plays.
func RoundCount(boxSize int) int {
	return len(tables[boxSize])
}
