package week

// Store is the persistence contract for the week aggregate: a single
// versioned record per (league, week) with an atomic read-modify-write
// primitive. Any store offering compare-and-swap on one record satisfies it.
type Store interface {
	Get(key Key) (Week, bool, error)
	// Put creates the aggregate record; it fails if one already exists.
	Put(w Week) error
	// TransactionalUpdate reads the current aggregate, applies fn and
	// writes the result back with revision+1. A conflicting concurrent
	// write triggers a retry from a fresh read; an error from fn aborts
	// with no write. The returned Week is the persisted state.
	TransactionalUpdate(key Key, fn func(*Week) error) (Week, error)
	// CurrentWeek returns the lowest-numbered non-finalized week, or when
	// every week is finalized, the highest-numbered week overall.
	CurrentWeek(leagueID string) (Week, bool, error)
	ListWeeks(leagueID string) ([]Week, error)
}

// SubsCounter tracks per-member substitute usage. The bump happens outside
// the aggregate transaction and tolerates eventual consistency.
type SubsCounter interface {
	IncrementSubsUsed(leagueID, playerID string) error
}
