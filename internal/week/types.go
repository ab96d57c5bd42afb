package week

import (
	"fmt"
	"time"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/standings"
)

// State is the lifecycle state of a week.
type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StateClosing   State = "closing"
	StateFinalized State = "finalized"
)

// Key identifies the week aggregate record for a league.
type Key struct {
	LeagueID   string
	WeekNumber int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/week-%d", k.LeagueID, k.WeekNumber)
}

// BoxAssignment is an ordered list of players in one box. Order is
// rank-semantic: it encodes seed position and is the basis for restoring a
// player after a cancelled absence.
type BoxAssignment struct {
	BoxNumber int      `json:"box_number"`
	PlayerIDs []string `json:"player_ids"`
}

// CourtAssignment maps a box to its court and time slot for the week.
type CourtAssignment struct {
	BoxNumber int    `json:"box_number"`
	CourtName string `json:"court_name"`
	TimeSlot  string `json:"time_slot,omitempty"`
}

// Absence records a player removed from their box for the week. The freed
// position is kept so a cancelled absence restores the original ordering.
type Absence struct {
	PlayerID         string               `json:"player_id"`
	PlayerName       string               `json:"player_name,omitempty"`
	BoxNumber        int                  `json:"box_number"`
	PositionInBox    int                  `json:"position_in_box"`
	DeclaredAt       time.Time            `json:"declared_at"`
	DeclaredByUserID string               `json:"declared_by_user_id"`
	PolicyApplied    config.AbsencePolicy `json:"policy_applied"`
	IsNoShow         bool                 `json:"is_no_show"`
	Reason           string               `json:"reason,omitempty"`
	SubstituteID     string               `json:"substitute_id,omitempty"`
	SubstituteName   string               `json:"substitute_name,omitempty"`
}

// Week is the central aggregate: one versioned record per week number
// holding box assignments, absences, court assignments and lifecycle state.
// Every mutation is an atomic read-modify-write of this single record.
type Week struct {
	LeagueID         string                     `json:"league_id"`
	WeekNumber       int                        `json:"week_number"`
	State            State                      `json:"state"`
	BoxAssignments   []BoxAssignment            `json:"box_assignments"`
	Absences         []Absence                  `json:"absences"`
	CourtAssignments []CourtAssignment          `json:"court_assignments"`
	RulesSnapshot    config.RulesTemplate       `json:"rules_snapshot"`
	MovementFrozen   bool                       `json:"movement_frozen,omitempty"`
	Revision         int64                      `json:"revision"`
	UpdatedAt        time.Time                  `json:"updated_at"`
	Standings        *standings.Snapshot        `json:"standings,omitempty"`
	Movements        []standings.PlayerMovement `json:"movements,omitempty"`
}

// Key returns the aggregate key for this week.
func (w *Week) Key() Key {
	return Key{LeagueID: w.LeagueID, WeekNumber: w.WeekNumber}
}

// Box returns the assignment for the given box number, or nil.
func (w *Week) Box(boxNumber int) *BoxAssignment {
	for i := range w.BoxAssignments {
		if w.BoxAssignments[i].BoxNumber == boxNumber {
			return &w.BoxAssignments[i]
		}
	}
	return nil
}

// FindPlayer locates a player's current box number and ordinal position.
func (w *Week) FindPlayer(playerID string) (boxNumber, position int, found bool) {
	for _, box := range w.BoxAssignments {
		for pos, id := range box.PlayerIDs {
			if id == playerID {
				return box.BoxNumber, pos, true
			}
		}
	}
	return 0, 0, false
}

// AbsenceFor returns the absence record for a player, or nil.
func (w *Week) AbsenceFor(playerID string) *Absence {
	for i := range w.Absences {
		if w.Absences[i].PlayerID == playerID {
			return &w.Absences[i]
		}
	}
	return nil
}

// BottomBox returns the highest box number, which is the lowest-ranked box.
func (w *Week) BottomBox() int {
	bottom := 0
	for _, box := range w.BoxAssignments {
		if box.BoxNumber > bottom {
			bottom = box.BoxNumber
		}
	}
	return bottom
}
