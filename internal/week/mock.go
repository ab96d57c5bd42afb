package week

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu    sync.Mutex
	weeks map[Key]Week

	// ConflictsBeforeSuccess makes the next N TransactionalUpdate CAS
	// attempts lose the race, to exercise retry behaviour.
	ConflictsBeforeSuccess int

	PutCalls    int
	UpdateCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{weeks: make(map[Key]Week)}
}

func (m *MockStore) Get(key Key) (Week, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.weeks[key]
	return w, ok, nil
}

func (m *MockStore) Put(w Week) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if _, exists := m.weeks[w.Key()]; exists {
		return fmt.Errorf("week %s already exists", w.Key())
	}
	w.Revision = 1
	w.UpdatedAt = time.Now()
	m.weeks[w.Key()] = w
	return nil
}

func (m *MockStore) TransactionalUpdate(key Key, fn func(*Week) error) (Week, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		stored, ok := m.weeks[key]
		if !ok {
			return Week{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		// Deep-copy via a JSON round-trip, mirroring the real store, so a
		// failed attempt leaves the persisted aggregate untouched.
		payload, err := json.Marshal(stored)
		if err != nil {
			return Week{}, err
		}
		var w Week
		if err := json.Unmarshal(payload, &w); err != nil {
			return Week{}, err
		}
		if err := fn(&w); err != nil {
			return Week{}, err
		}
		if m.ConflictsBeforeSuccess > 0 {
			m.ConflictsBeforeSuccess--
			continue
		}
		w.Revision++
		w.UpdatedAt = time.Now()
		m.weeks[key] = w
		return w, nil
	}
	return Week{}, fmt.Errorf("%w: %s", ErrConflict, key)
}

func (m *MockStore) CurrentWeek(leagueID string) (Week, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var numbers []int
	for key := range m.weeks {
		if key.LeagueID == leagueID {
			numbers = append(numbers, key.WeekNumber)
		}
	}
	if len(numbers) == 0 {
		return Week{}, false, nil
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		w := m.weeks[Key{LeagueID: leagueID, WeekNumber: n}]
		if w.State != StateFinalized {
			return w, true, nil
		}
	}
	w := m.weeks[Key{LeagueID: leagueID, WeekNumber: numbers[len(numbers)-1]}]
	return w, true, nil
}

func (m *MockStore) ListWeeks(leagueID string) ([]Week, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var numbers []int
	for key := range m.weeks {
		if key.LeagueID == leagueID {
			numbers = append(numbers, key.WeekNumber)
		}
	}
	sort.Ints(numbers)

	weeks := make([]Week, 0, len(numbers))
	for _, n := range numbers {
		weeks = append(weeks, m.weeks[Key{LeagueID: leagueID, WeekNumber: n}])
	}
	return weeks, nil
}

// MockSubsCounter records substitute usage increments for testing.
type MockSubsCounter struct {
	mu         sync.Mutex
	Increments []string
	Err        error
}

func (m *MockSubsCounter) IncrementSubsUsed(leagueID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Increments = append(m.Increments, playerID)
	return nil
}
