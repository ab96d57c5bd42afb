package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/courtflow/boxleague/internal/boxes"
	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/week"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// leagueID resolves the league for a request, defaulting to the configured
// one.
func (s *Server) leagueID(r *http.Request) string {
	if id := r.URL.Query().Get("league_id"); id != "" {
		return id
	}
	return s.Cfg.LeagueID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeDomainError maps the typed domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var transitionErr *week.TransitionError
	var sizeErr *week.BoxSizeError
	var unpackableErr *boxes.UnpackableError

	switch {
	case errors.Is(err, week.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, week.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &transitionErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &sizeErr),
		errors.As(err, &unpackableErr),
		errors.Is(err, boxes.ErrTooFewPlayers),
		errors.Is(err, week.ErrPlayerNotAssigned),
		errors.Is(err, week.ErrDuplicateAbsence),
		errors.Is(err, week.ErrNoAbsence),
		errors.Is(err, week.ErrSubstituteAssigned),
		errors.Is(err, week.ErrNoSubstitute),
		errors.Is(err, week.ErrSubstituteAlreadyPlaying):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) weekKeyFromQuery(r *http.Request) (week.Key, error) {
	weekStr := r.URL.Query().Get("week_number")
	if weekStr == "" {
		current, exists, err := s.WeekStore.CurrentWeek(s.leagueID(r))
		if err != nil {
			return week.Key{}, err
		}
		if !exists {
			return week.Key{}, fmt.Errorf("%w: no weeks in league %s", week.ErrNotFound, s.leagueID(r))
		}
		return current.Key(), nil
	}
	weekNumber, err := strconv.Atoi(weekStr)
	if err != nil {
		return week.Key{}, fmt.Errorf("invalid week_number %q", weekStr)
	}
	return week.Key{LeagueID: s.leagueID(r), WeekNumber: weekNumber}, nil
}

func (s *Server) ListWeeksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weeks, err := s.WeekStore.ListWeeks(s.leagueID(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, weeks)
	}
}

func (s *Server) CurrentWeekHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, exists, err := s.WeekStore.CurrentWeek(s.leagueID(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !exists {
			http.Error(w, "no weeks in league", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, current)
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := s.weekKeyFromQuery(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		snapshot, movements, err := s.Engine.ComputeStandings(key)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"week_number": key.WeekNumber,
			"snapshot":    snapshot,
			"movements":   movements,
		})
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaderboard, err := s.Season.Leaderboard(s.leagueID(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leaderboard)
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			http.Error(w, "player_id is required", http.StatusBadRequest)
			return
		}
		stats, err := s.Season.PlayerStats(s.leagueID(r), playerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if stats == nil {
			http.Error(w, "no stats for player", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) PackPreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countStr := r.URL.Query().Get("count")
		count, err := strconv.Atoi(countStr)
		if err != nil {
			http.Error(w, "count is required", http.StatusBadRequest)
			return
		}

		packing, err := boxes.Pack(count)
		if err != nil {
			suggestion, suggestErr := boxes.SuggestAdjustment(count)
			if suggestErr != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"packable":   false,
				"error":      err.Error(),
				"suggestion": suggestion,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"packable": true,
			"packing":  packing,
		})
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := s.Members.ListMembers(s.leagueID(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := s.weekKeyFromQuery(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		matchList, err := s.Matches.ForWeek(key.LeagueID, key.WeekNumber)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchList)
	}
}

func (s *Server) CountersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Counters.GetAll(s.leagueID(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, counters)
	}
}

type weekRequest struct {
	WeekNumber int `json:"week_number"`
}

func (s *Server) CreateWeekHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have created draft week", "week_number", req.WeekNumber)
			writeJSON(w, http.StatusOK, map[string]any{"dry_run": true})
			return
		}
		created, err := s.Engine.CreateDraftWeek(s.leagueID(r), req.WeekNumber)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) ActivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have activated week", "week_number", req.WeekNumber)
			writeJSON(w, http.StatusOK, map[string]any{"dry_run": true})
			return
		}
		activated, err := s.Engine.Activate(week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activated)
	}
}

func (s *Server) StartClosingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		updated, err := s.Engine.StartClosing(week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) FinalizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have finalized week", "week_number", req.WeekNumber)
			writeJSON(w, http.StatusOK, map[string]any{"dry_run": true})
			return
		}
		finalized, err := s.Engine.Finalize(week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, finalized)
	}
}

func (s *Server) ResetWeekHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		reset, err := s.Engine.ResetToDraft(week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reset)
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MatchID string `json:"match_id"`
			PointsA int    `json:"points_a"`
			PointsB int    `json:"points_b"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.MatchID == "" {
			http.Error(w, "match_id is required", http.StatusBadRequest)
			return
		}
		if err := s.Matches.RecordResult(req.MatchID, req.PointsA, req.PointsB); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recorded": true})
	}
}

type absenceRequest struct {
	WeekNumber int                  `json:"week_number"`
	PlayerID   string               `json:"player_id"`
	PlayerName string               `json:"player_name"`
	DeclaredBy string               `json:"declared_by"`
	Reason     string               `json:"reason"`
	Policy     config.AbsencePolicy `json:"policy"`
}

// resolvePolicy falls back to the week's snapshotted default when no
// explicit policy was given. Validation happens at the handler boundary.
func (s *Server) resolvePolicy(key week.Key, policy config.AbsencePolicy) (config.AbsencePolicy, error) {
	if policy != "" {
		return policy, nil
	}
	w, exists, err := s.WeekStore.Get(key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", week.ErrNotFound, key)
	}
	return w.RulesSnapshot.DefaultAbsencePolicy, nil
}

func (s *Server) DeclareAbsenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req absenceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Policy != "" && !config.ValidPolicy(req.Policy) {
			http.Error(w, fmt.Sprintf("unknown absence policy %q", req.Policy), http.StatusBadRequest)
			return
		}
		key := week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber}
		policy, err := s.resolvePolicy(key, req.Policy)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have declared absence", "week", key.String(), "player_id", req.PlayerID)
			writeJSON(w, http.StatusOK, map[string]any{"dry_run": true})
			return
		}
		updated, err := s.Weeks.DeclareAbsence(key, req.PlayerID, req.PlayerName, req.DeclaredBy, req.Reason, policy)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.Metrics.IncAbsencesDeclared()
		s.Counters.Increment(key.LeagueID, metrics.KeyAbsencesDeclared)
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) RecordNoShowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req absenceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Policy != "" && !config.ValidPolicy(req.Policy) {
			http.Error(w, fmt.Sprintf("unknown absence policy %q", req.Policy), http.StatusBadRequest)
			return
		}
		key := week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber}
		policy, err := s.resolvePolicy(key, req.Policy)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have recorded no-show", "week", key.String(), "player_id", req.PlayerID)
			writeJSON(w, http.StatusOK, map[string]any{"dry_run": true})
			return
		}
		updated, err := s.Weeks.RecordNoShow(key, req.PlayerID, req.PlayerName, req.DeclaredBy, policy)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.Metrics.IncAbsencesDeclared()
		s.Counters.Increment(key.LeagueID, metrics.KeyAbsencesDeclared)
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) CancelAbsenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WeekNumber  int    `json:"week_number"`
			PlayerID    string `json:"player_id"`
			ByOrganizer bool   `json:"by_organizer"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		key := week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber}
		updated, err := s.Weeks.CancelAbsence(key, req.PlayerID, req.ByOrganizer)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) AssignSubstituteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WeekNumber     int    `json:"week_number"`
			AbsentPlayerID string `json:"absent_player_id"`
			SubstituteID   string `json:"substitute_id"`
			SubstituteName string `json:"substitute_name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		key := week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have assigned substitute", "week", key.String(), "substitute_id", req.SubstituteID)
			writeJSON(w, http.StatusOK, map[string]any{"dry_run": true})
			return
		}
		updated, err := s.Weeks.AssignSubstitute(key, req.AbsentPlayerID, req.SubstituteID, req.SubstituteName)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.Metrics.IncSubstitutesAssigned()
		s.Counters.Increment(key.LeagueID, metrics.KeySubstitutesAssigned)
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) RemoveSubstituteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WeekNumber     int    `json:"week_number"`
			AbsentPlayerID string `json:"absent_player_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		key := week.Key{LeagueID: s.leagueID(r), WeekNumber: req.WeekNumber}
		updated, err := s.Weeks.RemoveSubstitute(key, req.AbsentPlayerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// SubstituteCandidateView is one roster member's eligibility verdict for a
// specific vacancy.
type SubstituteCandidateView struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

func (s *Server) SubstituteCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := s.weekKeyFromQuery(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		boxNumber, err := strconv.Atoi(r.URL.Query().Get("box_number"))
		if err != nil {
			http.Error(w, "box_number is required", http.StatusBadRequest)
			return
		}

		wk, exists, err := s.WeekStore.Get(key)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !exists {
			http.Error(w, "week not found", http.StatusNotFound)
			return
		}
		members, err := s.Members.ListMembers(key.LeagueID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// A candidate not playing this week still has an originating box
		// for the box restriction: the seat they vacated through an
		// absence, or the box they held last week.
		var prev *week.Week
		if key.WeekNumber > 1 {
			p, ok, err := s.WeekStore.Get(week.Key{LeagueID: key.LeagueID, WeekNumber: key.WeekNumber - 1})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if ok {
				prev = &p
			}
		}
		originBox := func(playerID string) int {
			if a := wk.AbsenceFor(playerID); a != nil {
				return a.BoxNumber
			}
			if prev != nil {
				if box, _, found := prev.FindPlayer(playerID); found {
					return box
				}
			}
			return 0
		}

		views := make([]SubstituteCandidateView, 0, len(members))
		for _, m := range members {
			currentBox, _, playing := wk.FindPlayer(m.ID)
			if !playing {
				currentBox = originBox(m.ID)
			}
			candidate := week.Candidate{
				ID:             m.ID,
				Name:           m.Name,
				AlreadyPlaying: playing,
				IsMember:       m.IsMember,
				CurrentBox:     currentBox,
				RatingID:       m.RatingLinkID,
				HasConsent:     m.SubConsent,
			}
			eligible, reason := week.CanBeSubstitute(candidate, boxNumber, wk.RulesSnapshot.Substitute)
			views = append(views, SubstituteCandidateView{
				PlayerID: m.ID,
				Name:     m.Name,
				Eligible: eligible,
				Reason:   reason,
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}
