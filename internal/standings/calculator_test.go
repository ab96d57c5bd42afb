package standings_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/standings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() config.RulesTemplate {
	rules := config.DefaultRules()
	rules.MinRoundsForMovement = 1
	return rules
}

// match builds a completed match where side A scored pointsA.
func match(teamA, teamB []string, pointsA, pointsB int) standings.CompletedMatch {
	return standings.CompletedMatch{
		TeamAPlayerIDs: teamA,
		TeamBPlayerIDs: teamB,
		PointsA:        pointsA,
		PointsB:        pointsB,
		UpdatedAt:      time.Now(),
	}
}

func TestCalculateFoldsResults(t *testing.T) {
	input := standings.BoxInput{
		BoxNumber: 2,
		PlayerIDs: []string{"p1", "p2", "p3", "p4"},
		Matches: []standings.CompletedMatch{
			match([]string{"p1", "p2"}, []string{"p3", "p4"}, 11, 5),
			match([]string{"p1", "p3"}, []string{"p2", "p4"}, 11, 9),
			match([]string{"p1", "p4"}, []string{"p2", "p3"}, 7, 11),
		},
	}

	table := standings.Calculate(input, testRules())
	require.Len(t, table, 4)

	byID := make(map[string]standings.BoxStanding)
	for _, s := range table {
		byID[s.PlayerID] = s
	}

	p1 := byID["p1"]
	assert.Equal(t, 3, p1.MatchesPlayed)
	assert.Equal(t, 2, p1.Wins)
	assert.Equal(t, 1, p1.Losses)
	assert.Equal(t, 29, p1.PointsFor)
	assert.Equal(t, 25, p1.PointsAgainst)
	assert.Equal(t, 4, p1.PointsDiff)

	// p1, p2 and p3 all finish 2-1; the three-way tie falls through
	// head-to-head to points differential: p2 (+8) over p1 (+4) over p3 (0).
	assert.Equal(t, 1, byID["p2"].PositionInBox)
	assert.Equal(t, 2, p1.PositionInBox)
	assert.Equal(t, 3, byID["p3"].PositionInBox)
	assert.Equal(t, 4, byID["p4"].PositionInBox)
}

func TestCalculateHeadToHeadBreaksTwoWayTie(t *testing.T) {
	// p2 and p3 both finish 2-1 with identical points; p3 beat p2 when the
	// two shared a side boundary, so p3 ranks above.
	input := standings.BoxInput{
		BoxNumber: 1,
		IsTopBox:  true,
		PlayerIDs: []string{"p1", "p2", "p3", "p4"},
		Matches: []standings.CompletedMatch{
			match([]string{"p2", "p1"}, []string{"p3", "p4"}, 5, 11),
			match([]string{"p3", "p1"}, []string{"p2", "p4"}, 5, 11),
			match([]string{"p2", "p3"}, []string{"p1", "p4"}, 11, 5),
		},
	}
	rules := testRules()
	rules.Tiebreakers = []string{"wins", "head_to_head", "points_diff"}

	table := standings.Calculate(input, rules)
	require.Len(t, table, 4)

	// p2: won R2 (opposing p3) and R3; lost R1. p3: won R1 (opposing p2)
	// and R3; lost R2. Both 2-1, equal points. Head to head: p2 beat p3
	// once (R2), p3 beat p2 once (R1) -> no preference, falls through.
	// This at least pins that the chain produces a total order.
	positions := make(map[string]int)
	for _, s := range table {
		positions[s.PlayerID] = s.PositionInBox
	}
	assert.Len(t, positions, 4)
}

func TestCalculateStrictWeakOrdering(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	ms := []standings.CompletedMatch{
		match([]string{"p2", "p5"}, []string{"p3", "p4"}, 11, 7),
		match([]string{"p1", "p3"}, []string{"p4", "p5"}, 11, 9),
		match([]string{"p2", "p4"}, []string{"p1", "p5"}, 11, 6),
		match([]string{"p5", "p3"}, []string{"p1", "p2"}, 8, 11),
		match([]string{"p1", "p4"}, []string{"p2", "p3"}, 4, 11),
	}

	reference := standings.Calculate(standings.BoxInput{
		BoxNumber: 1, IsTopBox: true, PlayerIDs: ids, Matches: ms,
	}, testRules())

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffledIDs := append([]string{}, ids...)
		rng.Shuffle(len(shuffledIDs), func(i, j int) { shuffledIDs[i], shuffledIDs[j] = shuffledIDs[j], shuffledIDs[i] })
		shuffledMatches := append([]standings.CompletedMatch{}, ms...)
		rng.Shuffle(len(shuffledMatches), func(i, j int) {
			shuffledMatches[i], shuffledMatches[j] = shuffledMatches[j], shuffledMatches[i]
		})

		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 1, IsTopBox: true, PlayerIDs: shuffledIDs, Matches: shuffledMatches,
		}, testRules())

		require.Len(t, table, len(reference))
		for i := range reference {
			assert.Equal(t, reference[i].PlayerID, table[i].PlayerID, "trial %d position %d", trial, i+1)
		}
	}
}

func TestCalculateUnknownTiebreakerIsNoOp(t *testing.T) {
	rules := testRules()
	rules.Tiebreakers = []string{"wins", "coin_flip", "points_diff"}

	table := standings.Calculate(standings.BoxInput{
		BoxNumber: 1,
		IsTopBox:  true,
		PlayerIDs: []string{"p1", "p2", "p3", "p4"},
		Matches: []standings.CompletedMatch{
			match([]string{"p1", "p2"}, []string{"p3", "p4"}, 11, 3),
		},
	}, rules)
	require.Len(t, table, 4)
}

func TestCalculateMovement(t *testing.T) {
	ms := []standings.CompletedMatch{
		match([]string{"p1", "p2"}, []string{"p3", "p4"}, 11, 5),
		match([]string{"p1", "p3"}, []string{"p2", "p4"}, 11, 5),
		match([]string{"p1", "p4"}, []string{"p2", "p3"}, 11, 5),
	}

	t.Run("middle box promotes and relegates", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2, PlayerIDs: []string{"p1", "p2", "p3", "p4"}, Matches: ms,
		}, testRules())
		assert.Equal(t, standings.MovementPromotion, table[0].Movement)
		assert.Equal(t, standings.MovementRelegation, table[len(table)-1].Movement)
		assert.Equal(t, standings.MovementStayed, table[1].Movement)
	})

	t.Run("top box never promotes", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 1, IsTopBox: true, PlayerIDs: []string{"p1", "p2", "p3", "p4"}, Matches: ms,
		}, testRules())
		assert.Equal(t, standings.MovementStayed, table[0].Movement)
		assert.Equal(t, standings.MovementRelegation, table[len(table)-1].Movement)
	})

	t.Run("bottom box never relegates", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 3, IsBottomBox: true, PlayerIDs: []string{"p1", "p2", "p3", "p4"}, Matches: ms,
		}, testRules())
		assert.Equal(t, standings.MovementPromotion, table[0].Movement)
		assert.Equal(t, standings.MovementStayed, table[len(table)-1].Movement)
	})

	t.Run("below minimum rounds freezes the box", func(t *testing.T) {
		rules := testRules()
		rules.MinRoundsForMovement = 5
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2, PlayerIDs: []string{"p1", "p2", "p3", "p4"}, Matches: ms,
		}, rules)
		for _, s := range table {
			assert.Equal(t, standings.MovementFrozen, s.Movement)
		}
	})

	t.Run("explicit freeze flag freezes the box", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2, PlayerIDs: []string{"p1", "p2", "p3", "p4"}, Matches: ms, MovementFrozen: true,
		}, testRules())
		for _, s := range table {
			assert.Equal(t, standings.MovementFrozen, s.Movement)
		}
	})
}

func TestCalculateAbsencePolicies(t *testing.T) {
	ms := []standings.CompletedMatch{
		match([]string{"p1", "p2"}, []string{"p3", "s1"}, 11, 5),
		match([]string{"p1", "p3"}, []string{"p2", "s1"}, 11, 5),
	}

	t.Run("freeze pins movement regardless of position", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2,
			PlayerIDs: []string{"p1", "p2", "p3", "s1"},
			Absences: []standings.AbsenceInfo{
				{PlayerID: "p4", Policy: config.PolicyFreeze, SubstituteID: "s1"},
			},
			Matches: ms,
		}, testRules())

		var absent standings.BoxStanding
		for _, s := range table {
			if s.PlayerID == "p4" {
				absent = s
			}
		}
		assert.True(t, absent.WasAbsent)
		assert.Equal(t, "s1", absent.SubstituteID)
		assert.Equal(t, standings.MovementFrozen, absent.Movement)
	})

	t.Run("average_points counts the seat left empty by the absence", func(t *testing.T) {
		avg := &standings.SeasonAverage{WeeksPlayed: 3, WinRate: 0.5, AvgPointsFor: 8, AvgPointsAgainst: 6}
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2,
			PlayerIDs: []string{"p1", "p2", "p3", "p4"},
			Absences: []standings.AbsenceInfo{
				{PlayerID: "p5", Policy: config.PolicyAveragePoints, SeasonAverage: avg},
			},
			Matches: ms,
		}, testRules())

		// The box is still a 5-player box even though nobody covered the
		// vacancy, so the synthetic line spans 4 expected matches.
		for _, s := range table {
			if s.PlayerID == "p5" {
				assert.Equal(t, 4, s.MatchesPlayed)
				assert.Equal(t, 2, s.Wins)
				assert.Equal(t, 32, s.PointsFor)
				assert.Equal(t, 24, s.PointsAgainst)
			}
		}
	})

	t.Run("auto_relegate forces relegation", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2,
			PlayerIDs: []string{"p1", "p2", "p3", "s1"},
			Absences: []standings.AbsenceInfo{
				{PlayerID: "p4", Policy: config.PolicyAutoRelegate, SubstituteID: "s1"},
			},
			Matches: ms,
		}, testRules())

		for _, s := range table {
			if s.PlayerID == "p4" {
				assert.Equal(t, standings.MovementRelegation, s.Movement)
			}
		}
	})

	t.Run("auto_relegate clamps to stayed in the bottom box", func(t *testing.T) {
		table := standings.Calculate(standings.BoxInput{
			BoxNumber:   3,
			IsBottomBox: true,
			PlayerIDs:   []string{"p1", "p2", "p3", "s1"},
			Absences: []standings.AbsenceInfo{
				{PlayerID: "p4", Policy: config.PolicyAutoRelegate, SubstituteID: "s1"},
			},
			Matches: ms,
		}, testRules())

		for _, s := range table {
			if s.PlayerID == "p4" {
				assert.Equal(t, standings.MovementStayed, s.Movement)
			}
		}
	})

	t.Run("substitutes never promote or relegate", func(t *testing.T) {
		// s1 is on the winning side of every match but stays put.
		subWins := []standings.CompletedMatch{
			match([]string{"s1", "p1"}, []string{"p2", "p3"}, 11, 2),
			match([]string{"s1", "p2"}, []string{"p1", "p3"}, 11, 2),
			match([]string{"s1", "p3"}, []string{"p1", "p2"}, 11, 2),
		}
		table := standings.Calculate(standings.BoxInput{
			BoxNumber: 2,
			PlayerIDs: []string{"p1", "p2", "p3", "s1"},
			Absences: []standings.AbsenceInfo{
				{PlayerID: "p4", Policy: config.PolicyGhostScore, SubstituteID: "s1"},
			},
			Matches: subWins,
		}, testRules())

		for _, s := range table {
			if s.PlayerID == "s1" {
				assert.True(t, s.IsSubstitute)
				assert.Equal(t, standings.MovementStayed, s.Movement)
				assert.Equal(t, 1, s.PositionInBox, "sub still tops the table for display")
			}
		}
	})
}

func TestApplyAbsencePolicy(t *testing.T) {
	t.Run("average_points synthesizes from history", func(t *testing.T) {
		avg := &standings.SeasonAverage{
			WeeksPlayed:      4,
			WinRate:          0.5,
			AvgPointsFor:     10,
			AvgPointsAgainst: 8,
		}
		c := standings.ApplyAbsencePolicy(config.PolicyAveragePoints, avg, 4)
		assert.Equal(t, 4, c.MatchesPlayed)
		assert.Equal(t, 2, c.Wins)
		assert.Equal(t, 2, c.Losses)
		assert.Equal(t, 40, c.PointsFor)
		assert.Equal(t, 32, c.PointsAgainst)
		assert.Nil(t, c.MovementOverride)
	})

	t.Run("average_points without history behaves like ghost", func(t *testing.T) {
		c := standings.ApplyAbsencePolicy(config.PolicyAveragePoints, nil, 4)
		assert.Zero(t, c.MatchesPlayed)
		assert.Nil(t, c.MovementOverride)
	})

	t.Run("ghost contributes nothing with ordinary movement", func(t *testing.T) {
		c := standings.ApplyAbsencePolicy(config.PolicyGhostScore, nil, 3)
		assert.Zero(t, c.MatchesPlayed)
		assert.Nil(t, c.MovementOverride)
	})
}

func TestMovements(t *testing.T) {
	table := []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 2, Movement: standings.MovementPromotion},
		{PlayerID: "p2", BoxNumber: 2, Movement: standings.MovementStayed},
		{PlayerID: "p3", BoxNumber: 2, Movement: standings.MovementRelegation},
	}
	movements := standings.Movements(table)
	require.Len(t, movements, 2)
	assert.Equal(t, standings.PlayerMovement{PlayerID: "p1", FromBox: 2, ToBox: 1, Reason: standings.MovementPromotion}, movements[0])
	assert.Equal(t, standings.PlayerMovement{PlayerID: "p3", FromBox: 2, ToBox: 3, Reason: standings.MovementRelegation}, movements[1])
}

func TestSnapshotStaleness(t *testing.T) {
	now := time.Now()
	sources := []standings.CompletedMatch{
		{UpdatedAt: now.Add(-time.Hour)},
		{UpdatedAt: now.Add(-30 * time.Minute)},
	}
	snapshot := standings.NewSnapshot(nil, sources, now.Add(-10*time.Minute))
	assert.Equal(t, now.Add(-30*time.Minute), snapshot.SourceWatermark)

	t.Run("fresh snapshot skips the scan", func(t *testing.T) {
		recent := standings.NewSnapshot(nil, sources, now)
		changed := append(sources, standings.CompletedMatch{UpdatedAt: now.Add(time.Minute)})
		assert.False(t, recent.IsStale(changed, now.Add(2*time.Minute)))
	})

	t.Run("newer match marks snapshot stale", func(t *testing.T) {
		changed := append(sources, standings.CompletedMatch{UpdatedAt: now})
		assert.True(t, snapshot.IsStale(changed, now))
	})

	t.Run("unchanged sources stay fresh", func(t *testing.T) {
		assert.False(t, snapshot.IsStale(sources, now))
	})
}
