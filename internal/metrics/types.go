package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	WeeksCreated        prometheus.Counter
	WeeksFinalized      prometheus.Counter
	MatchesCreated      prometheus.Counter
	AbsencesDeclared    prometheus.Counter
	SubstitutesAssigned prometheus.Counter
	StandingsDuration   prometheus.Histogram
	StartupTimeSeconds  prometheus.Gauge
}
