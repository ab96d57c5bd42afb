package season

import (
	"sync"

	"github.com/courtflow/boxleague/internal/standings"
	"github.com/courtflow/boxleague/internal/week"
)

// MockSeasonService is a mock implementation of SeasonService for testing.
// It is safe for concurrent use.
type MockSeasonService struct {
	mu sync.Mutex

	// Spies for method calls
	UpdateStatsAfterWeekFunc func(w week.Week, table []standings.BoxStanding, movements []standings.PlayerMovement) (bool, error)
	LeaderboardFunc          func(leagueID string) ([]PlayerStats, error)
	PlayerStatsFunc          func(leagueID, playerID string) (*PlayerStats, error)
	SeasonAverageFunc        func(leagueID, playerID string) (*standings.SeasonAverage, error)

	// Call records
	UpdateStatsCalls []week.Key
}

// NewMock creates a new mock instance.
func NewMock() *MockSeasonService {
	return &MockSeasonService{}
}

func (m *MockSeasonService) UpdateStatsAfterWeek(w week.Week, table []standings.BoxStanding, movements []standings.PlayerMovement) (bool, error) {
	m.mu.Lock()
	m.UpdateStatsCalls = append(m.UpdateStatsCalls, w.Key())
	m.mu.Unlock()
	if m.UpdateStatsAfterWeekFunc != nil {
		return m.UpdateStatsAfterWeekFunc(w, table, movements)
	}
	return true, nil
}

func (m *MockSeasonService) Leaderboard(leagueID string) ([]PlayerStats, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(leagueID)
	}
	return nil, nil
}

func (m *MockSeasonService) PlayerStats(leagueID, playerID string) (*PlayerStats, error) {
	if m.PlayerStatsFunc != nil {
		return m.PlayerStatsFunc(leagueID, playerID)
	}
	return nil, nil
}

func (m *MockSeasonService) SeasonAverage(leagueID, playerID string) (*standings.SeasonAverage, error) {
	if m.SeasonAverageFunc != nil {
		return m.SeasonAverageFunc(leagueID, playerID)
	}
	return nil, nil
}
