package engine

import (
	"time"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/league"
	"github.com/courtflow/boxleague/internal/matches"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/pubsub"
	"github.com/courtflow/boxleague/internal/season"
	"github.com/courtflow/boxleague/internal/week"
)

// Engine orchestrates the week lifecycle across the collaborating stores:
// draft creation, activation with match generation, closing, finalization
// with standings, movements, season stats and next-week rollover.
type Engine struct {
	weeks    week.Store
	members  league.MemberStore
	matches  matches.MatchService
	season   season.SeasonService
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	pubsub   pubsub.PubSubClient
	rules    config.RulesTemplate
	now      func() time.Time
}

// New creates a new Engine.
func New(
	weeks week.Store,
	members league.MemberStore,
	matchSvc matches.MatchService,
	seasonSvc season.SeasonService,
	m metrics.Metrics,
	counters metrics.MetricsStore,
	ps pubsub.PubSubClient,
	rules config.RulesTemplate,
) *Engine {
	return &Engine{
		weeks:    weeks,
		members:  members,
		matches:  matchSvc,
		season:   seasonSvc,
		metrics:  m,
		counters: counters,
		pubsub:   ps,
		rules:    rules,
		now:      time.Now,
	}
}
