package league

import "sync"

// MockMemberStore is a mock implementation of MemberStore for testing.
// It is safe for concurrent use.
type MockMemberStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertMembersFunc     func(leagueID string, members []Member) error
	GetMemberFunc         func(leagueID, playerID string) (*Member, error)
	ListMembersFunc       func(leagueID string) ([]Member, error)
	MembersByRatingFunc   func(leagueID string) ([]Member, error)
	IncrementSubsUsedFunc func(leagueID, playerID string) error

	// Call records
	IncrementSubsUsedCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockMemberStore {
	return &MockMemberStore{}
}

func (m *MockMemberStore) UpsertMembers(leagueID string, members []Member) error {
	if m.UpsertMembersFunc != nil {
		return m.UpsertMembersFunc(leagueID, members)
	}
	return nil
}

func (m *MockMemberStore) GetMember(leagueID, playerID string) (*Member, error) {
	if m.GetMemberFunc != nil {
		return m.GetMemberFunc(leagueID, playerID)
	}
	return nil, nil
}

func (m *MockMemberStore) ListMembers(leagueID string) ([]Member, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(leagueID)
	}
	return nil, nil
}

func (m *MockMemberStore) MembersByRating(leagueID string) ([]Member, error) {
	if m.MembersByRatingFunc != nil {
		return m.MembersByRatingFunc(leagueID)
	}
	return nil, nil
}

func (m *MockMemberStore) IncrementSubsUsed(leagueID, playerID string) error {
	m.mu.Lock()
	m.IncrementSubsUsedCalls = append(m.IncrementSubsUsedCalls, playerID)
	m.mu.Unlock()
	if m.IncrementSubsUsedFunc != nil {
		return m.IncrementSubsUsedFunc(leagueID, playerID)
	}
	return nil
}
