package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		WeeksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxleague_weeks_created_total",
			Help: "The total number of draft weeks created.",
		}),
		WeeksFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxleague_weeks_finalized_total",
			Help: "The total number of weeks finalized.",
		}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxleague_matches_created_total",
			Help: "The total number of matches created at week activation.",
		}),
		AbsencesDeclared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxleague_absences_declared_total",
			Help: "The total number of absences declared, no-shows included.",
		}),
		SubstitutesAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxleague_substitutes_assigned_total",
			Help: "The total number of substitute assignments.",
		}),
		StandingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "boxleague_standings_calculation_duration_seconds",
			Help:    "The duration of full-week standings calculations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boxleague_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.WeeksCreated,
		s.WeeksFinalized,
		s.MatchesCreated,
		s.AbsencesDeclared,
		s.SubstitutesAssigned,
		s.StandingsDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncWeeksCreated() {
	s.WeeksCreated.Inc()
}

func (s *Service) IncWeeksFinalized() {
	s.WeeksFinalized.Inc()
}

func (s *Service) AddMatchesCreated(count int) {
	s.MatchesCreated.Add(float64(count))
}

func (s *Service) IncAbsencesDeclared() {
	s.AbsencesDeclared.Inc()
}

func (s *Service) IncSubstitutesAssigned() {
	s.SubstitutesAssigned.Inc()
}

func (s *Service) ObserveStandingsDuration(duration float64) {
	s.StandingsDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
