package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/database"
	"github.com/courtflow/boxleague/internal/engine"
	"github.com/courtflow/boxleague/internal/league"
	"github.com/courtflow/boxleague/internal/matches"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/pubsub"
	"github.com/courtflow/boxleague/internal/season"
	"github.com/courtflow/boxleague/internal/week"
)

const testLeagueID = "league-1"

// setupTestServer wires a full server against an in-memory database with a
// mock pubsub client.
func setupTestServer(t *testing.T) (*Server, *pubsub.MockPubSubClient) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	memberStore := league.NewStore(db)
	weekStore := week.NewStore(db)
	matchStore := matches.NewStore(db)
	seasonStore := season.NewStore(db)
	counters := metrics.New(db)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")

	rules := config.DefaultRules()
	eng := engine.New(weekStore, memberStore, matchStore, seasonStore, metricsSvc, counters, ps, rules)
	manager := week.NewManager(weekStore, memberStore)

	cfg := config.Config{LeagueID: testLeagueID}
	server := NewServer(eng, manager, weekStore, memberStore, matchStore, seasonStore, metricsSvc, counters, metricsHandler, cfg)

	var members []league.Member
	for i := 1; i <= 10; i++ {
		members = append(members, league.Member{
			ID:         fmt.Sprintf("p%02d", i),
			Name:       fmt.Sprintf("Player %02d", i),
			Rating:     5.0 - float64(i)*0.1,
			IsMember:   true,
			SubConsent: true,
		})
	}
	require.NoError(t, memberStore.UpsertMembers(testLeagueID, members))

	return server, ps
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := get(t, server, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestCreateWeekAndCurrent(t *testing.T) {
	server, ps := setupTestServer(t)

	rec := postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created week.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, week.StateDraft, created.State)
	assert.Len(t, created.BoxAssignments, 2)

	rec = get(t, server, "/weeks/current")
	require.Equal(t, http.StatusOK, rec.Code)
	var current week.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, 1, current.WeekNumber)

	require.Len(t, ps.SendMessageCalls, 1)
	assert.Equal(t, pubsub.EventWeekCreated, ps.SendMessageCalls[0].Topic)
}

func TestCreateWeekDryRun(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := postJSON(t, server, "/create-week?dry_run=true", map[string]any{"week_number": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, server, "/weeks/current")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordNoShowDryRun(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})

	rec := postJSON(t, server, "/record-no-show?dry_run=true", map[string]any{
		"week_number": 1,
		"player_id":   "p02",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	w, exists, err := server.WeekStore.Get(week.Key{LeagueID: testLeagueID, WeekNumber: 1})
	require.NoError(t, err)
	require.True(t, exists)
	assert.Empty(t, w.Absences)
}

func TestActivateAndListMatches(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})

	rec := postJSON(t, server, "/activate", map[string]any{"week_number": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, server, "/matches?week_number=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var matchList []matches.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matchList))
	// Two 5-player boxes with five rounds each.
	assert.Len(t, matchList, 10)
}

func TestAbsenceLifecycleOverHTTP(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})

	rec := postJSON(t, server, "/declare-absence", map[string]any{
		"week_number": 1,
		"player_id":   "p03",
		"player_name": "Player 03",
		"declared_by": "p03",
		"reason":      "travelling",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated week.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Len(t, updated.Absences, 1)
	// The week's snapshotted default policy applies when none is given.
	assert.Equal(t, config.DefaultRules().DefaultAbsencePolicy, updated.Absences[0].PolicyApplied)

	rec = postJSON(t, server, "/assign-substitute", map[string]any{
		"week_number":      1,
		"absent_player_id": "p03",
		"substitute_id":    "sub-1",
		"substitute_name":  "Standby",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "sub-1", updated.Absences[0].SubstituteID)
	assert.Contains(t, updated.Box(1).PlayerIDs, "sub-1")

	rec = postJSON(t, server, "/cancel-absence", map[string]any{
		"week_number": 1,
		"player_id":   "p03",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Empty(t, updated.Absences)
	assert.Equal(t, []string{"p01", "p02", "p03", "p04", "p05"}, updated.Box(1).PlayerIDs)
}

func TestDeclareAbsenceRejectsUnknownPolicy(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})

	rec := postJSON(t, server, "/declare-absence", map[string]any{
		"week_number": 1,
		"player_id":   "p03",
		"policy":      "vacation",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateConflictOnNonDraft(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	postJSON(t, server, "/activate", map[string]any{"week_number": 1})
	postJSON(t, server, "/start-closing", map[string]any{"week_number": 1})

	rec := postJSON(t, server, "/declare-absence", map[string]any{
		"week_number": 1,
		"player_id":   "p03",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFullWeekOverHTTP(t *testing.T) {
	server, ps := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	postJSON(t, server, "/activate", map[string]any{"week_number": 1})

	rec := get(t, server, "/matches?week_number=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var matchList []matches.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matchList))
	for _, m := range matchList {
		rec = postJSON(t, server, "/record-result", map[string]any{
			"match_id": m.ID,
			"points_a": 11,
			"points_b": 7,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = postJSON(t, server, "/start-closing", map[string]any{"week_number": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postJSON(t, server, "/finalize", map[string]any{"week_number": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	var finalized week.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &finalized))
	assert.Equal(t, week.StateFinalized, finalized.State)
	require.NotNil(t, finalized.Standings)
	assert.Len(t, finalized.Standings.Standings, 10)
	assert.Len(t, finalized.Movements, 2)

	// The rollover makes week 2 the new current week.
	rec = get(t, server, "/weeks/current")
	require.Equal(t, http.StatusOK, rec.Code)
	var current week.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, 2, current.WeekNumber)
	assert.Equal(t, week.StateDraft, current.State)

	// Leaderboard now carries season stats for all ten players.
	rec = get(t, server, "/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	var leaderboard []season.PlayerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leaderboard))
	assert.Len(t, leaderboard, 10)

	var finalizedEvents int
	for _, call := range ps.SendMessageCalls {
		if call.Topic == pubsub.EventWeekFinalized {
			finalizedEvents++
		}
	}
	assert.Equal(t, 1, finalizedEvents)

	// Durable counters recorded the lifecycle.
	rec = get(t, server, "/counters")
	require.Equal(t, http.StatusOK, rec.Code)
	var counters map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counters))
	assert.Equal(t, 1, counters[metrics.KeyWeeksActivated])
	assert.Equal(t, 1, counters[metrics.KeyWeeksFinalized])
}

func TestStandingsLiveView(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	postJSON(t, server, "/activate", map[string]any{"week_number": 1})

	rec := get(t, server, "/standings?week_number=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		WeekNumber int `json:"week_number"`
		Snapshot   struct {
			Standings []json.RawMessage `json:"standings"`
		} `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.WeekNumber)
	assert.Len(t, resp.Snapshot.Standings, 10)
}

func TestPackPreview(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := get(t, server, "/pack-preview?count=13")
	require.Equal(t, http.StatusOK, rec.Code)
	var packable struct {
		Packable bool `json:"packable"`
		Packing  struct {
			BoxSizes []int `json:"box_sizes"`
		} `json:"packing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &packable))
	assert.True(t, packable.Packable)
	assert.Equal(t, []int{5, 4, 4}, packable.Packing.BoxSizes)

	rec = get(t, server, "/pack-preview?count=7")
	require.Equal(t, http.StatusOK, rec.Code)
	var unpackable struct {
		Packable   bool `json:"packable"`
		Suggestion struct {
			AddDelta    int `json:"add_delta"`
			RemoveDelta int `json:"remove_delta"`
		} `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unpackable))
	assert.False(t, unpackable.Packable)
	assert.Equal(t, 1, unpackable.Suggestion.AddDelta)
}

func TestSubstituteCandidates(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	postJSON(t, server, "/declare-absence", map[string]any{
		"week_number": 1,
		"player_id":   "p03",
	})

	rec := get(t, server, "/substitute-candidates?week_number=1&box_number=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []SubstituteCandidateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 10)

	byID := map[string]SubstituteCandidateView{}
	for _, v := range views {
		byID[v.PlayerID] = v
	}
	// Everyone already in a box is blocked; the absent player is free again.
	assert.False(t, byID["p01"].Eligible)
	assert.Equal(t, "already playing this week", byID["p01"].Reason)
	assert.True(t, byID["p03"].Eligible)
}

func TestSubstituteCandidatesBoxRestriction(t *testing.T) {
	server, _ := setupTestServer(t)
	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	postJSON(t, server, "/declare-absence", map[string]any{
		"week_number": 1,
		"player_id":   "p03",
	})

	// p03 vacated a box 1 seat; under same_or_lower they cannot drop into
	// a box 2 vacancy.
	rec := get(t, server, "/substitute-candidates?week_number=1&box_number=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var views []SubstituteCandidateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	byID := map[string]SubstituteCandidateView{}
	for _, v := range views {
		byID[v.PlayerID] = v
	}
	assert.False(t, byID["p03"].Eligible)
	assert.Equal(t, "must come from the same or a lower box", byID["p03"].Reason)

	// Week 2 omits p01 and p03. p01 held a box 1 seat last week, so the
	// restriction still tracks them; p03 was absent last week and carries
	// no originating box at all.
	w2 := week.Week{
		LeagueID:   testLeagueID,
		WeekNumber: 2,
		State:      week.StateDraft,
		BoxAssignments: []week.BoxAssignment{
			{BoxNumber: 1, PlayerIDs: []string{"p02", "p04", "p05", "p06"}},
			{BoxNumber: 2, PlayerIDs: []string{"p07", "p08", "p09", "p10"}},
		},
		RulesSnapshot: config.DefaultRules(),
	}
	require.NoError(t, server.WeekStore.Put(w2))

	rec = get(t, server, "/substitute-candidates?week_number=2&box_number=2")
	require.Equal(t, http.StatusOK, rec.Code)
	views = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	byID = map[string]SubstituteCandidateView{}
	for _, v := range views {
		byID[v.PlayerID] = v
	}
	assert.False(t, byID["p01"].Eligible)
	assert.Equal(t, "must come from the same or a lower box", byID["p01"].Reason)
	assert.True(t, byID["p03"].Eligible)
}

func TestWeeksListAndNotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := get(t, server, "/weeks/current")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	postJSON(t, server, "/create-week", map[string]any{"week_number": 1})
	rec = get(t, server, "/weeks")
	require.Equal(t, http.StatusOK, rec.Code)
	var weeks []week.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weeks))
	assert.Len(t, weeks, 1)
}
