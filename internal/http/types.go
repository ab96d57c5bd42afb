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

type Server struct {
	Engine         *engine.Engine
	Weeks          *week.Manager
	WeekStore      week.Store
	Members        league.MemberStore
	Matches        matches.MatchService
	Season         season.SeasonService
	Metrics        metrics.Metrics
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}
