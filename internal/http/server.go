package http

import (
	"net/http"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/engine"
	"github.com/courtflow/boxleague/internal/league"
	"github.com/courtflow/boxleague/internal/matches"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/season"
	"github.com/courtflow/boxleague/internal/week"
)

func NewServer(
	eng *engine.Engine,
	weekManager *week.Manager,
	weekStore week.Store,
	members league.MemberStore,
	matchSvc matches.MatchService,
	seasonSvc season.SeasonService,
	metricsSvc metrics.Metrics,
	counters metrics.MetricsStore,
	metricsHandler http.Handler,
	cfg config.Config,
) *Server {
	server := &Server{
		Engine:         eng,
		Weeks:          weekManager,
		WeekStore:      weekStore,
		Members:        members,
		Matches:        matchSvc,
		Season:         seasonSvc,
		Metrics:        metricsSvc,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/weeks", Chain(s.ListWeeksHandler(), paramsMiddleware))
	s.Router.Handle("/weeks/current", Chain(s.CurrentWeekHandler(), paramsMiddleware))
	s.Router.Handle("/standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/player-stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/pack-preview", Chain(s.PackPreviewHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/counters", Chain(s.CountersHandler(), paramsMiddleware))
	s.Router.Handle("/create-week", Chain(s.CreateWeekHandler(), paramsMiddleware))
	s.Router.Handle("/activate", Chain(s.ActivateHandler(), paramsMiddleware))
	s.Router.Handle("/start-closing", Chain(s.StartClosingHandler(), paramsMiddleware))
	s.Router.Handle("/finalize", Chain(s.FinalizeHandler(), paramsMiddleware))
	s.Router.Handle("/reset-week", Chain(s.ResetWeekHandler(), paramsMiddleware))
	s.Router.Handle("/record-result", Chain(s.RecordResultHandler(), paramsMiddleware))
	s.Router.Handle("/declare-absence", Chain(s.DeclareAbsenceHandler(), paramsMiddleware))
	s.Router.Handle("/record-no-show", Chain(s.RecordNoShowHandler(), paramsMiddleware))
	s.Router.Handle("/cancel-absence", Chain(s.CancelAbsenceHandler(), paramsMiddleware))
	s.Router.Handle("/assign-substitute", Chain(s.AssignSubstituteHandler(), paramsMiddleware))
	s.Router.Handle("/remove-substitute", Chain(s.RemoveSubstituteHandler(), paramsMiddleware))
	s.Router.Handle("/substitute-candidates", Chain(s.SubstituteCandidatesHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
