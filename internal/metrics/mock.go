package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	weeksCreated        int
	weeksFinalized      int
	matchesCreated      int
	absencesDeclared    int
	substitutesAssigned int
	standingsDurations  []float64
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		standingsDurations: make([]float64, 0),
	}
}

func (m *Mock) IncWeeksCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weeksCreated++
}

func (m *Mock) IncWeeksFinalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weeksFinalized++
}

func (m *Mock) AddMatchesCreated(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated += count
}

func (m *Mock) IncAbsencesDeclared() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.absencesDeclared++
}

func (m *Mock) IncSubstitutesAssigned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.substitutesAssigned++
}

func (m *Mock) ObserveStandingsDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsDurations = append(m.standingsDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// WeeksCreated returns the number of times IncWeeksCreated was called.
func (m *Mock) WeeksCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weeksCreated
}

// WeeksFinalized returns the number of times IncWeeksFinalized was called.
func (m *Mock) WeeksFinalized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weeksFinalized
}

// MatchesCreated returns the accumulated match creation count.
func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// AbsencesDeclared returns the number of times IncAbsencesDeclared was called.
func (m *Mock) AbsencesDeclared() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.absencesDeclared
}

// SubstitutesAssigned returns the number of times IncSubstitutesAssigned was called.
func (m *Mock) SubstitutesAssigned() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.substitutesAssigned
}

// StandingsDurations returns the observed calculation durations.
func (m *Mock) StandingsDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.standingsDurations...)
}
