package week

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the week aggregate record is missing.
	ErrNotFound = errors.New("week not found")
	// ErrConflict is returned when optimistic retries on a concurrent
	// write are exhausted.
	ErrConflict = errors.New("concurrent modification of week, retries exhausted")
	// ErrPlayerNotAssigned is returned when a player is not in any box.
	ErrPlayerNotAssigned = errors.New("player is not assigned to a box this week")
	// ErrDuplicateAbsence is returned when an absence already exists.
	ErrDuplicateAbsence = errors.New("an absence is already recorded for this player")
	// ErrNoAbsence is returned when no absence exists for the player.
	ErrNoAbsence = errors.New("no absence is recorded for this player")
	// ErrSubstituteAssigned is returned when the absence already has a
	// substitute.
	ErrSubstituteAssigned = errors.New("a substitute is already assigned for this absence")
	// ErrNoSubstitute is returned when the absence has no substitute.
	ErrNoSubstitute = errors.New("no substitute is assigned for this absence")
	// ErrSubstituteAlreadyPlaying is returned when the candidate already
	// appears in a box this week.
	ErrSubstituteAlreadyPlaying = errors.New("substitute is already playing in a box this week")
)

// TransitionError is returned for an illegal state transition or an
// operation attempted in the wrong state.
type TransitionError struct {
	From State
	To   State
	Op   string
}

func (e *TransitionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s is not allowed while week is %s", e.Op, e.From)
	}
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// BoxSizeViolation reports one box outside the legal 4-6 range, and by how
// much.
type BoxSizeViolation struct {
	BoxNumber int `json:"box_number"`
	Size      int `json:"size"`
	// Delta is negative when the box is short of players and positive when
	// it has too many.
	Delta int `json:"delta"`
}

// BoxSizeError aggregates every out-of-range box so the caller can react to
// all of them at once.
type BoxSizeError struct {
	Violations []BoxSizeViolation
}

func (e *BoxSizeError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Delta < 0 {
			parts[i] = fmt.Sprintf("box %d has %d players (%d short)", v.BoxNumber, v.Size, -v.Delta)
		} else {
			parts[i] = fmt.Sprintf("box %d has %d players (%d over)", v.BoxNumber, v.Size, v.Delta)
		}
	}
	return "cannot activate week: " + strings.Join(parts, "; ")
}
