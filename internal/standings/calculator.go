package standings

import (
	"math"
	"sort"
	"time"

	"github.com/courtflow/boxleague/internal/config"
)

// snapshotFastPath skips the staleness scan for snapshots computed recently.
const snapshotFastPath = 5 * time.Minute

type row struct {
	BoxStanding
	h2hWins map[string]int
}

// Calculate derives a box's standings from its roster, absences and
// completed matches. It is pure and idempotent: the table is recomputed
// wholesale on every call, never patched.
func Calculate(input BoxInput, rules config.RulesTemplate) []BoxStanding {
	substitutes := make(map[string]string) // substituteID -> absent playerID
	for _, a := range input.Absences {
		if a.SubstituteID != "" {
			substitutes[a.SubstituteID] = a.PlayerID
		}
	}

	rows := make([]*row, 0, len(input.PlayerIDs)+len(input.Absences))
	index := make(map[string]*row)
	addRow := func(playerID string) *row {
		r := &row{
			BoxStanding: BoxStanding{
				PlayerID:  playerID,
				BoxNumber: input.BoxNumber,
				Movement:  MovementStayed,
			},
			h2hWins: make(map[string]int),
		}
		rows = append(rows, r)
		index[playerID] = r
		return r
	}

	for _, id := range input.PlayerIDs {
		r := addRow(id)
		if _, isSub := substitutes[id]; isSub {
			r.IsSubstitute = true
		}
	}
	for _, a := range input.Absences {
		r := addRow(a.PlayerID)
		r.WasAbsent = true
		r.SubstituteID = a.SubstituteID
	}

	// Fold in completed matches. Substitutes accumulate their own numbers
	// here, but they are excluded from movement below: a ghost player's
	// results never move anyone between boxes.
	for _, m := range input.Matches {
		aWon := m.PointsA > m.PointsB
		for _, id := range m.TeamAPlayerIDs {
			r, ok := index[id]
			if !ok {
				continue
			}
			foldSide(r, m.PointsA, m.PointsB, aWon)
			recordHeadToHead(r, m.TeamBPlayerIDs, aWon)
		}
		for _, id := range m.TeamBPlayerIDs {
			r, ok := index[id]
			if !ok {
				continue
			}
			foldSide(r, m.PointsB, m.PointsA, !aWon)
			recordHeadToHead(r, m.TeamAPlayerIDs, !aWon)
		}
	}

	// Synthetic contributions for absent players. The box size for the
	// expected match count includes seats left empty by uncovered
	// absences; a substitute already occupies a roster slot.
	boxSize := len(input.PlayerIDs)
	for _, a := range input.Absences {
		if a.SubstituteID == "" {
			boxSize++
		}
	}
	overrides := make(map[string]Movement)
	for _, a := range input.Absences {
		contribution := ApplyAbsencePolicy(a.Policy, a.SeasonAverage, expectedMatches(boxSize))
		r := index[a.PlayerID]
		r.MatchesPlayed = contribution.MatchesPlayed
		r.Wins = contribution.Wins
		r.Losses = contribution.Losses
		r.PointsFor = contribution.PointsFor
		r.PointsAgainst = contribution.PointsAgainst
		if contribution.MovementOverride != nil {
			overrides[a.PlayerID] = *contribution.MovementOverride
		}
	}

	for _, r := range rows {
		r.PointsDiff = r.PointsFor - r.PointsAgainst
	}

	sortRows(rows, rules.Tiebreakers)
	for i, r := range rows {
		r.PositionInBox = i + 1
	}

	assignMovement(rows, input, rules, overrides)

	result := make([]BoxStanding, len(rows))
	for i, r := range rows {
		result[i] = r.BoxStanding
	}
	return result
}

func foldSide(r *row, pointsFor, pointsAgainst int, won bool) {
	r.MatchesPlayed++
	r.PointsFor += pointsFor
	r.PointsAgainst += pointsAgainst
	if won {
		r.Wins++
	} else {
		r.Losses++
	}
}

func recordHeadToHead(r *row, opponents []string, won bool) {
	if !won {
		return
	}
	for _, opponent := range opponents {
		r.h2hWins[opponent]++
	}
}

// expectedMatches is the number of rounds one player plays in a full
// rotation for the given box size.
func expectedMatches(boxSize int) int {
	switch boxSize {
	case 4:
		return 3
	case 5, 6:
		return 4
	default:
		return 0
	}
}

// sortRows orders rows by the configured tiebreaker chain, evaluated
// left-to-right until one discriminates. The final fallback on player id
// makes the order a strict weak ordering: any permutation of the same
// players yields the same table.
func sortRows(rows []*row, tiebreakers []string) {
	groups := [][]*row{rows}
	for _, criterion := range tiebreakers {
		groups = refine(groups, criterion)
	}
	flat := make([]*row, 0, len(rows))
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].PlayerID < g[j].PlayerID })
		flat = append(flat, g...)
	}
	copy(rows, flat)
}

func refine(groups [][]*row, criterion string) [][]*row {
	switch criterion {
	case "wins":
		return refineByKey(groups, func(r *row) int { return r.Wins }, true)
	case "points_diff":
		return refineByKey(groups, func(r *row) int { return r.PointsDiff }, true)
	case "points_for":
		return refineByKey(groups, func(r *row) int { return r.PointsFor }, true)
	case "points_against":
		return refineByKey(groups, func(r *row) int { return r.PointsAgainst }, false)
	case "head_to_head":
		return refineHeadToHead(groups)
	default:
		// Unknown tiebreaker keys are no-ops.
		return groups
	}
}

func refineByKey(groups [][]*row, key func(*row) int, descending bool) [][]*row {
	var out [][]*row
	for _, g := range groups {
		if len(g) < 2 {
			out = append(out, g)
			continue
		}
		sorted := append([]*row{}, g...)
		sort.Slice(sorted, func(i, j int) bool {
			ki, kj := key(sorted[i]), key(sorted[j])
			if ki != kj {
				if descending {
					return ki > kj
				}
				return ki < kj
			}
			return sorted[i].PlayerID < sorted[j].PlayerID
		})
		start := 0
		for start < len(sorted) {
			end := start + 1
			for end < len(sorted) && key(sorted[end]) == key(sorted[start]) {
				end++
			}
			out = append(out, sorted[start:end])
			start = end
		}
	}
	return out
}

// refineHeadToHead only discriminates a two-way tie where the pair actually
// played each other; three-way or larger ties pass through untouched.
func refineHeadToHead(groups [][]*row) [][]*row {
	var out [][]*row
	for _, g := range groups {
		if len(g) != 2 {
			out = append(out, g)
			continue
		}
		a, b := g[0], g[1]
		aWins, bWins := a.h2hWins[b.PlayerID], b.h2hWins[a.PlayerID]
		switch {
		case aWins > bWins:
			out = append(out, []*row{a}, []*row{b})
		case bWins > aWins:
			out = append(out, []*row{b}, []*row{a})
		default:
			out = append(out, g)
		}
	}
	return out
}

func assignMovement(rows []*row, input BoxInput, rules config.RulesTemplate, overrides map[string]Movement) {
	frozen := input.MovementFrozen || len(input.Matches) < rules.MinRoundsForMovement

	// Substitutes never move between boxes; everyone else gets the
	// position-based rule unless the box is frozen.
	eligible := make([]*row, 0, len(rows))
	for _, r := range rows {
		if r.IsSubstitute {
			r.Movement = MovementStayed
			continue
		}
		eligible = append(eligible, r)
	}

	for i, r := range eligible {
		switch {
		case frozen:
			r.Movement = MovementFrozen
		case i < rules.PromotionCount && !input.IsTopBox:
			r.Movement = MovementPromotion
		case i >= len(eligible)-rules.RelegationCount && !input.IsBottomBox:
			r.Movement = MovementRelegation
		default:
			r.Movement = MovementStayed
		}
	}

	// Absence-policy overrides win over the position-based rule. An
	// auto-relegated player already in the bottom box clamps to stayed:
	// there is no lower box to move to.
	for playerID, movement := range overrides {
		r, ok := findRow(rows, playerID)
		if !ok {
			continue
		}
		if movement == MovementRelegation && input.IsBottomBox {
			r.Movement = MovementStayed
			continue
		}
		r.Movement = movement
	}
}

func findRow(rows []*row, playerID string) (*row, bool) {
	for _, r := range rows {
		if r.PlayerID == playerID {
			return r, true
		}
	}
	return nil, false
}

// PolicyContribution is the synthetic standing an absent player receives.
type PolicyContribution struct {
	MatchesPlayed    int
	Wins             int
	Losses           int
	PointsFor        int
	PointsAgainst    int
	MovementOverride *Movement
}

// ApplyAbsencePolicy computes an absent player's synthetic contribution.
// freeze contributes nothing and pins movement; ghost_score contributes
// nothing under ordinary movement rules; average_points synthesizes a line
// from season history, falling back to ghost behavior without history;
// auto_relegate forces relegation.
func ApplyAbsencePolicy(policy config.AbsencePolicy, avg *SeasonAverage, expectedMatches int) PolicyContribution {
	switch policy {
	case config.PolicyFreeze:
		frozen := MovementFrozen
		return PolicyContribution{MovementOverride: &frozen}
	case config.PolicyAveragePoints:
		if avg == nil || avg.WeeksPlayed == 0 {
			return PolicyContribution{}
		}
		played := expectedMatches
		wins := int(math.Round(avg.WinRate * float64(played)))
		if wins > played {
			wins = played
		}
		return PolicyContribution{
			MatchesPlayed: played,
			Wins:          wins,
			Losses:        played - wins,
			PointsFor:     int(math.Round(avg.AvgPointsFor * float64(played))),
			PointsAgainst: int(math.Round(avg.AvgPointsAgainst * float64(played))),
		}
	case config.PolicyAutoRelegate:
		relegated := MovementRelegation
		return PolicyContribution{MovementOverride: &relegated}
	default: // ghost_score
		return PolicyContribution{}
	}
}

// Movements extracts the promotion/relegation list from a full week of
// standings. Promotions move to the adjacent better box, relegations to the
// adjacent worse one.
func Movements(weekStandings []BoxStanding) []PlayerMovement {
	var movements []PlayerMovement
	for _, s := range weekStandings {
		switch s.Movement {
		case MovementPromotion:
			movements = append(movements, PlayerMovement{
				PlayerID: s.PlayerID,
				FromBox:  s.BoxNumber,
				ToBox:    s.BoxNumber - 1,
				Reason:   MovementPromotion,
			})
		case MovementRelegation:
			movements = append(movements, PlayerMovement{
				PlayerID: s.PlayerID,
				FromBox:  s.BoxNumber,
				ToBox:    s.BoxNumber + 1,
				Reason:   MovementRelegation,
			})
		}
	}
	return movements
}

// NewSnapshot records a computed table with the maximum source-match
// updatedAt as its staleness watermark.
func NewSnapshot(table []BoxStanding, sources []CompletedMatch, now time.Time) Snapshot {
	var watermark time.Time
	for _, m := range sources {
		if m.UpdatedAt.After(watermark) {
			watermark = m.UpdatedAt
		}
	}
	return Snapshot{CalculatedAt: now, SourceWatermark: watermark, Standings: table}
}

// IsStale reports whether any contributing match changed after the
// snapshot's watermark. Snapshots computed within the last five minutes are
// trusted without scanning.
func (s *Snapshot) IsStale(sources []CompletedMatch, now time.Time) bool {
	if now.Sub(s.CalculatedAt) < snapshotFastPath {
		return false
	}
	for _, m := range sources {
		if m.UpdatedAt.After(s.SourceWatermark) {
			return true
		}
	}
	return false
}
