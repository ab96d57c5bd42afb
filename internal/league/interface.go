package league

// MemberStore defines the interface for roster persistence.
type MemberStore interface {
	UpsertMembers(leagueID string, members []Member) error
	GetMember(leagueID, playerID string) (*Member, error)
	ListMembers(leagueID string) ([]Member, error)
	// MembersByRating returns active members ordered by rating descending,
	// the seeding order for a fresh week draft.
	MembersByRating(leagueID string) ([]Member, error)
	IncrementSubsUsed(leagueID, playerID string) error
}
