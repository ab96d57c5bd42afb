package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/boxleague/internal/database"
	"github.com/courtflow/boxleague/internal/standings"
	"github.com/courtflow/boxleague/internal/week"
)

func setupStore(t *testing.T) SeasonService {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return NewStore(db)
}

func finalizedWeek(weekNumber int) week.Week {
	return week.Week{
		LeagueID:   "league-1",
		WeekNumber: weekNumber,
		State:      week.StateFinalized,
		BoxAssignments: []week.BoxAssignment{
			{BoxNumber: 1, PlayerIDs: []string{"p1", "p2", "p3", "p4"}},
		},
	}
}

func weekOneTable() []standings.BoxStanding {
	return []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 1, PositionInBox: 1, MatchesPlayed: 3, Wins: 3, Losses: 0, PointsFor: 33, PointsAgainst: 15, Movement: standings.MovementStayed},
		{PlayerID: "p2", BoxNumber: 1, PositionInBox: 2, MatchesPlayed: 3, Wins: 2, Losses: 1, PointsFor: 28, PointsAgainst: 22, Movement: standings.MovementStayed},
		{PlayerID: "p3", BoxNumber: 1, PositionInBox: 3, MatchesPlayed: 3, Wins: 1, Losses: 2, PointsFor: 22, PointsAgainst: 28, Movement: standings.MovementRelegation},
		{PlayerID: "p4", BoxNumber: 1, PositionInBox: 4, MatchesPlayed: 0, Wins: 0, Losses: 0, Movement: standings.MovementStayed, WasAbsent: true},
	}
}

func TestUpdateStatsAfterWeekFoldsStandings(t *testing.T) {
	store := setupStore(t)

	applied, err := store.UpdateStatsAfterWeek(finalizedWeek(1), weekOneTable(), []standings.PlayerMovement{
		{PlayerID: "p3", FromBox: 1, ToBox: 2, Reason: standings.MovementRelegation},
	})
	require.NoError(t, err)
	assert.True(t, applied)

	p1, err := store.PlayerStats("league-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, 1, p1.WeeksPlayed)
	assert.Equal(t, 3, p1.MatchesPlayed)
	assert.Equal(t, 3, p1.Wins)
	assert.InDelta(t, 1.0, p1.WinPercentage, 0.0001)
	assert.Equal(t, 1, p1.CurrentBox)
	assert.Equal(t, 1, p1.HighestBox)
	assert.InDelta(t, 1.0, p1.CheckInRate, 0.0001)

	p3, err := store.PlayerStats("league-1", "p3")
	require.NoError(t, err)
	require.NotNil(t, p3)
	assert.Equal(t, 1, p3.Relegations)

	p4, err := store.PlayerStats("league-1", "p4")
	require.NoError(t, err)
	require.NotNil(t, p4)
	assert.Equal(t, 0, p4.WeeksPlayed)
	assert.Equal(t, 1, p4.WeeksAbsent)
	assert.InDelta(t, 0.0, p4.CheckInRate, 0.0001)
}

func TestUpdateStatsAfterWeekIsExactlyOnce(t *testing.T) {
	store := setupStore(t)
	w := finalizedWeek(1)

	applied, err := store.UpdateStatsAfterWeek(w, weekOneTable(), nil)
	require.NoError(t, err)
	assert.True(t, applied)

	// A replayed finalization must not double-count anything.
	applied, err = store.UpdateStatsAfterWeek(w, weekOneTable(), nil)
	require.NoError(t, err)
	assert.False(t, applied)

	p1, err := store.PlayerStats("league-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, 1, p1.WeeksPlayed)
	assert.Equal(t, 3, p1.MatchesPlayed)
}

func TestUpdateStatsAccumulatesAcrossWeeks(t *testing.T) {
	store := setupStore(t)

	_, err := store.UpdateStatsAfterWeek(finalizedWeek(1), weekOneTable(), nil)
	require.NoError(t, err)

	weekTwo := []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 1, PositionInBox: 3, MatchesPlayed: 3, Wins: 1, Losses: 2, PointsFor: 20, PointsAgainst: 30},
	}
	_, err = store.UpdateStatsAfterWeek(finalizedWeek(2), weekTwo, nil)
	require.NoError(t, err)

	p1, err := store.PlayerStats("league-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, 2, p1.WeeksPlayed)
	assert.Equal(t, 6, p1.MatchesPlayed)
	assert.Equal(t, 4, p1.Wins)
	assert.Equal(t, 2, p1.Losses)
	assert.Equal(t, 53, p1.PointsFor)
	assert.InDelta(t, 4.0/6.0, p1.WinPercentage, 0.0001)
}

func TestHighestBoxTracksBestBoxReached(t *testing.T) {
	store := setupStore(t)

	_, err := store.UpdateStatsAfterWeek(finalizedWeek(1), []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 3, MatchesPlayed: 3, Wins: 3},
	}, nil)
	require.NoError(t, err)

	_, err = store.UpdateStatsAfterWeek(finalizedWeek(2), []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 2, MatchesPlayed: 3, Wins: 3},
	}, nil)
	require.NoError(t, err)

	_, err = store.UpdateStatsAfterWeek(finalizedWeek(3), []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 3, MatchesPlayed: 3, Wins: 0},
	}, nil)
	require.NoError(t, err)

	p1, err := store.PlayerStats("league-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, 3, p1.CurrentBox)
	assert.Equal(t, 2, p1.HighestBox)
}

func TestMovementsDriveCurrentAndHighestBox(t *testing.T) {
	store := setupStore(t)

	// p1 played box 2 and was promoted into box 1; the season tracks the
	// box the movement put them in, not the box they played in.
	_, err := store.UpdateStatsAfterWeek(finalizedWeek(1), []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 2, MatchesPlayed: 3, Wins: 3, Movement: standings.MovementPromotion},
		{PlayerID: "p2", BoxNumber: 1, MatchesPlayed: 3, Wins: 0, Movement: standings.MovementRelegation},
	}, []standings.PlayerMovement{
		{PlayerID: "p1", FromBox: 2, ToBox: 1, Reason: standings.MovementPromotion},
		{PlayerID: "p2", FromBox: 1, ToBox: 2, Reason: standings.MovementRelegation},
	})
	require.NoError(t, err)

	p1, err := store.PlayerStats("league-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, 1, p1.CurrentBox)
	assert.Equal(t, 1, p1.HighestBox)
	assert.Equal(t, 1, p1.Promotions)

	p2, err := store.PlayerStats("league-1", "p2")
	require.NoError(t, err)
	require.NotNil(t, p2)
	assert.Equal(t, 2, p2.CurrentBox)
	assert.Equal(t, 1, p2.HighestBox)
	assert.Equal(t, 1, p2.Relegations)
}

func TestNoShowsAndSubstituteWeeksCounted(t *testing.T) {
	store := setupStore(t)
	w := finalizedWeek(1)
	w.Absences = []week.Absence{
		{PlayerID: "p4", BoxNumber: 1, PositionInBox: 3, IsNoShow: true, DeclaredAt: time.Now(), SubstituteID: "sub-a"},
	}

	table := []standings.BoxStanding{
		{PlayerID: "sub-a", BoxNumber: 1, MatchesPlayed: 3, Wins: 2, Losses: 1, IsSubstitute: true},
		{PlayerID: "p4", BoxNumber: 1, WasAbsent: true},
	}
	_, err := store.UpdateStatsAfterWeek(w, table, nil)
	require.NoError(t, err)

	p4, err := store.PlayerStats("league-1", "p4")
	require.NoError(t, err)
	require.NotNil(t, p4)
	assert.Equal(t, 1, p4.NoShows)
	assert.Equal(t, 1, p4.WeeksAbsent)

	sub, err := store.PlayerStats("league-1", "sub-a")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, 1, sub.WeeksAsSubstitute)
	assert.Equal(t, 1, sub.WeeksPlayed)
}

func TestLeaderboardOrdering(t *testing.T) {
	store := setupStore(t)

	table := []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 1, MatchesPlayed: 3, Wins: 1, Losses: 2, PointsFor: 20, PointsAgainst: 25},
		{PlayerID: "p2", BoxNumber: 1, MatchesPlayed: 3, Wins: 3, Losses: 0, PointsFor: 33, PointsAgainst: 10},
		{PlayerID: "p3", BoxNumber: 1, MatchesPlayed: 3, Wins: 2, Losses: 1, PointsFor: 28, PointsAgainst: 20},
	}
	_, err := store.UpdateStatsAfterWeek(finalizedWeek(1), table, nil)
	require.NoError(t, err)

	leaderboard, err := store.Leaderboard("league-1")
	require.NoError(t, err)
	require.Len(t, leaderboard, 3)
	assert.Equal(t, "p2", leaderboard[0].PlayerID)
	assert.Equal(t, "p3", leaderboard[1].PlayerID)
	assert.Equal(t, "p1", leaderboard[2].PlayerID)
}

func TestPlayerStatsMissingPlayer(t *testing.T) {
	store := setupStore(t)

	stats, err := store.PlayerStats("league-1", "nobody")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestSeasonAverageDerivation(t *testing.T) {
	store := setupStore(t)

	_, err := store.UpdateStatsAfterWeek(finalizedWeek(1), []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 1, MatchesPlayed: 3, Wins: 2, Losses: 1, PointsFor: 30, PointsAgainst: 24},
	}, nil)
	require.NoError(t, err)
	_, err = store.UpdateStatsAfterWeek(finalizedWeek(2), []standings.BoxStanding{
		{PlayerID: "p1", BoxNumber: 1, MatchesPlayed: 4, Wins: 2, Losses: 2, PointsFor: 40, PointsAgainst: 36},
	}, nil)
	require.NoError(t, err)

	avg, err := store.SeasonAverage("league-1", "p1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 2, avg.WeeksPlayed)
	assert.InDelta(t, 3.5, avg.AvgMatches, 0.0001)
	assert.InDelta(t, 4.0/7.0, avg.WinRate, 0.0001)
	assert.InDelta(t, 35.0, avg.AvgPointsFor, 0.0001)
	assert.InDelta(t, 30.0, avg.AvgPointsAgainst, 0.0001)

	missing, err := store.SeasonAverage("league-1", "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
