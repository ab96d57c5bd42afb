package boxes

import (
	"errors"
	"fmt"
)

// MinBoxSize and MaxBoxSize bound the legal box sizes for a week.
const (
	MinBoxSize = 4
	MaxBoxSize = 6
)

// ErrTooFewPlayers is returned when the roster cannot fill a single box.
var ErrTooFewPlayers = errors.New("at least 4 players are required to form a box")

// UnpackableError reports a roster size that cannot be partitioned into
// boxes of 4, 5 or 6 players.
type UnpackableError struct {
	PlayerCount int
}

func (e *UnpackableError) Error() string {
	return fmt.Sprintf("%d players cannot be split into boxes of 4-6; add or remove players", e.PlayerCount)
}

// Distribution counts how many boxes of each legal size a packing uses.
type Distribution struct {
	Fives int `json:"fives"`
	Fours int `json:"fours"`
	Sixes int `json:"sixes"`
}

// PackingResult is the outcome of partitioning a roster into box sizes.
type PackingResult struct {
	BoxSizes     []int        `json:"box_sizes"`
	Distribution Distribution `json:"distribution"`
}

// BoxDistribution assigns a slice of the ordered roster to one box.
type BoxDistribution struct {
	BoxNumber int      `json:"box_number"`
	PlayerIDs []string `json:"player_ids"`
}

// Pack partitions playerCount into legal box sizes. The search maximizes the
// number of 5-player boxes, fills the remainder with 4-player boxes, and only
// introduces 6-player boxes when the leftover is an exact multiple of 6. The
// first combination found in that priority order wins, so the result is
// deterministic for a given count.
func Pack(playerCount int) (PackingResult, error) {
	if playerCount < MinBoxSize {
		return PackingResult{}, ErrTooFewPlayers
	}

	for fives := playerCount / 5; fives >= 0; fives-- {
		remainder := playerCount - fives*5
		for fours := remainder / 4; fours >= 0; fours-- {
			leftover := remainder - fours*4
			if leftover != 0 && leftover%6 != 0 {
				continue
			}
			sixes := leftover / 6
			return PackingResult{
				BoxSizes: buildSizes(fives, fours, sixes),
				Distribution: Distribution{
					Fives: fives,
					Fours: fours,
					Sixes: sixes,
				},
			}, nil
		}
	}
	return PackingResult{}, &UnpackableError{PlayerCount: playerCount}
}

func buildSizes(fives, fours, sixes int) []int {
	sizes := make([]int, 0, fives+fours+sixes)
	for i := 0; i < fives; i++ {
		sizes = append(sizes, 5)
	}
	for i := 0; i < fours; i++ {
		sizes = append(sizes, 4)
	}
	for i := 0; i < sixes; i++ {
		sizes = append(sizes, 6)
	}
	return sizes
}

// Distribute slices the ordered roster into boxes sequentially: box 1
// receives the first BoxSizes[0] players and so on. The roster order is
// rank-semantic, so callers should pass players sorted best first.
func Distribute(orderedPlayerIDs []string, result PackingResult) ([]BoxDistribution, error) {
	total := 0
	for _, size := range result.BoxSizes {
		total += size
	}
	if len(orderedPlayerIDs) != total {
		return nil, fmt.Errorf("roster has %d players but packing expects %d", len(orderedPlayerIDs), total)
	}

	distributions := make([]BoxDistribution, 0, len(result.BoxSizes))
	offset := 0
	for i, size := range result.BoxSizes {
		players := make([]string, size)
		copy(players, orderedPlayerIDs[offset:offset+size])
		distributions = append(distributions, BoxDistribution{
			BoxNumber: i + 1,
			PlayerIDs: players,
		})
		offset += size
	}
	return distributions, nil
}

// IsPackable reports whether a roster of n players can be partitioned.
func IsPackable(n int) bool {
	_, err := Pack(n)
	return err == nil
}

// PackableRange enumerates packable and unpackable counts in [lo, hi].
func PackableRange(lo, hi int) (packable, unpackable []int) {
	for n := lo; n <= hi; n++ {
		if IsPackable(n) {
			packable = append(packable, n)
		} else {
			unpackable = append(unpackable, n)
		}
	}
	return packable, unpackable
}

// Suggestion recommends the smallest roster change that makes an unpackable
// count packable. A zero delta means no fix was found in that direction
// within three players.
type Suggestion struct {
	AddDelta    int    `json:"add_delta"`
	RemoveDelta int    `json:"remove_delta"`
	Message     string `json:"message"`
}

// SuggestAdjustment finds the smallest add/remove delta (1-3 players) that
// turns an unpackable count into a packable one, trying "add" before
// "remove" at each delta size.
func SuggestAdjustment(playerCount int) (Suggestion, error) {
	if IsPackable(playerCount) {
		return Suggestion{}, fmt.Errorf("%d players is already packable", playerCount)
	}

	var s Suggestion
	for delta := 1; delta <= 3; delta++ {
		if s.AddDelta == 0 && IsPackable(playerCount+delta) {
			s.AddDelta = delta
		}
		if s.RemoveDelta == 0 && playerCount-delta >= MinBoxSize && IsPackable(playerCount-delta) {
			s.RemoveDelta = delta
		}
	}
	if s.AddDelta == 0 && s.RemoveDelta == 0 {
		return Suggestion{}, fmt.Errorf("no packable count within 3 players of %d", playerCount)
	}

	switch {
	case s.AddDelta > 0 && s.RemoveDelta > 0:
		s.Message = fmt.Sprintf("add %d or remove %d players to reach a legal box split", s.AddDelta, s.RemoveDelta)
	case s.AddDelta > 0:
		s.Message = fmt.Sprintf("add %d players to reach a legal box split", s.AddDelta)
	default:
		s.Message = fmt.Sprintf("remove %d players to reach a legal box split", s.RemoveDelta)
	}
	return s, nil
}

// RebalanceCheck compares the current box-size distribution against the
// ideal packing for the same total roster.
type RebalanceCheck struct {
	NeedsRebalance bool         `json:"needs_rebalance"`
	Current        Distribution `json:"current"`
	Ideal          Distribution `json:"ideal"`
	Remediation    string       `json:"remediation,omitempty"`
}

// CheckRebalance flags a week whose box sizes have drifted from the ideal
// packing, typically after mid-season roster changes.
func CheckRebalance(currentSizes []int) RebalanceCheck {
	var current Distribution
	total := 0
	for _, size := range currentSizes {
		total += size
		switch size {
		case 4:
			current.Fours++
		case 5:
			current.Fives++
		case 6:
			current.Sixes++
		}
	}

	ideal, err := Pack(total)
	if err != nil {
		return RebalanceCheck{
			NeedsRebalance: true,
			Current:        current,
			Remediation:    err.Error(),
		}
	}
	if current == ideal.Distribution {
		return RebalanceCheck{Current: current, Ideal: ideal.Distribution}
	}
	return RebalanceCheck{
		NeedsRebalance: true,
		Current:        current,
		Ideal:          ideal.Distribution,
		Remediation: fmt.Sprintf("current split (%d fives, %d fours, %d sixes) differs from ideal (%d fives, %d fours, %d sixes)",
			current.Fives, current.Fours, current.Sixes,
			ideal.Distribution.Fives, ideal.Distribution.Fours, ideal.Distribution.Sixes),
	}
}
