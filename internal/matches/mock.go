package matches

import (
	"fmt"
	"sync"
	"time"
)

// MockMatchService is an in-memory MatchService for testing.
// It is safe for concurrent use.
type MockMatchService struct {
	mu      sync.Mutex
	Matches map[string]*Match

	CreateForWeekCalls int
}

// NewMock creates a new mock match service.
func NewMock() *MockMatchService {
	return &MockMatchService{Matches: make(map[string]*Match)}
}

func (m *MockMatchService) CreateForWeek(leagueID string, weekNumber int, boxPairings []BoxPairings) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateForWeekCalls++

	created := 0
	for _, box := range boxPairings {
		for _, pairing := range box.Pairings {
			id := MatchID(leagueID, weekNumber, box.BoxNumber, pairing.RoundNumber)
			if _, exists := m.Matches[id]; exists {
				continue
			}
			m.Matches[id] = &Match{
				ID:             id,
				LeagueID:       leagueID,
				WeekNumber:     weekNumber,
				BoxNumber:      box.BoxNumber,
				RoundNumber:    pairing.RoundNumber,
				TeamAPlayerIDs: append([]string{}, pairing.TeamAPlayerIDs...),
				TeamBPlayerIDs: append([]string{}, pairing.TeamBPlayerIDs...),
				Status:         StatusScheduled,
				UpdatedAt:      time.Now(),
			}
			created++
		}
	}
	return created, nil
}

func (m *MockMatchService) CompletedForBox(leagueID string, weekNumber, boxNumber int) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Match
	for _, match := range m.Matches {
		if match.LeagueID == leagueID && match.WeekNumber == weekNumber &&
			match.BoxNumber == boxNumber && match.Status == StatusCompleted {
			result = append(result, *match)
		}
	}
	return result, nil
}

func (m *MockMatchService) ForWeek(leagueID string, weekNumber int) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Match
	for _, match := range m.Matches {
		if match.LeagueID == leagueID && match.WeekNumber == weekNumber {
			result = append(result, *match)
		}
	}
	return result, nil
}

func (m *MockMatchService) RecordResult(matchID string, pointsA, pointsB int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, ok := m.Matches[matchID]
	if !ok {
		return fmt.Errorf("match not found: %s", matchID)
	}
	match.Status = StatusCompleted
	match.PointsA = pointsA
	match.PointsB = pointsB
	match.WinnerSide = SideA
	if pointsB > pointsA {
		match.WinnerSide = SideB
	}
	match.UpdatedAt = time.Now()
	return nil
}

func (m *MockMatchService) VoidForWeek(leagueID string, weekNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, match := range m.Matches {
		if match.LeagueID == leagueID && match.WeekNumber == weekNumber && match.Status == StatusScheduled {
			match.Status = StatusVoid
		}
	}
	return nil
}
