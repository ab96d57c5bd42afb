package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncWeeksCreated()
	IncWeeksFinalized()
	AddMatchesCreated(count int)
	IncAbsencesDeclared()
	IncSubstitutesAssigned()
	ObserveStandingsDuration(duration float64)
	SetStartupTime(duration float64)
}

// MetricsStore persists coarse per-league counters in the database so they
// survive process restarts, unlike the in-process Prometheus registry.
type MetricsStore interface {
	Increment(leagueID, key string)
	GetAll(leagueID string) (map[string]int, error)
}
