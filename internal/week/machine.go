package week

import "github.com/courtflow/boxleague/internal/boxes"

// transitions lists the single legal successor of each state. Nothing skips
// a state and nothing moves backward; ResetToDraft is the one exception and
// only rewrites a week that is still in draft.
var transitions = map[State]State{
	StateDraft:   StateActive,
	StateActive:  StateClosing,
	StateClosing: StateFinalized,
}

// CanTransition reports whether moving to the target state is legal.
func (w *Week) CanTransition(to State) bool {
	return transitions[w.State] == to
}

// ValidateActivation checks that every box holds 4-6 active players. Box
// sizes are deliberately unchecked during draft so organizers can shuffle
// freely; this is the strict gate at activation time.
func (w *Week) ValidateActivation() error {
	var violations []BoxSizeViolation
	for _, box := range w.BoxAssignments {
		size := len(box.PlayerIDs)
		switch {
		case size < boxes.MinBoxSize:
			violations = append(violations, BoxSizeViolation{BoxNumber: box.BoxNumber, Size: size, Delta: size - boxes.MinBoxSize})
		case size > boxes.MaxBoxSize:
			violations = append(violations, BoxSizeViolation{BoxNumber: box.BoxNumber, Size: size, Delta: size - boxes.MaxBoxSize})
		}
	}
	if len(violations) > 0 {
		return &BoxSizeError{Violations: violations}
	}
	return nil
}

// Activate moves a draft week to active after validating box sizes.
func (w *Week) Activate() error {
	if w.State != StateDraft {
		return &TransitionError{From: w.State, To: StateActive}
	}
	if err := w.ValidateActivation(); err != nil {
		return err
	}
	w.State = StateActive
	return nil
}

// StartClosing is a one-way gate signalling no new results should be
// entered; absence and substitute edits freeze from this point.
func (w *Week) StartClosing() error {
	if w.State != StateActive {
		return &TransitionError{From: w.State, To: StateClosing}
	}
	w.State = StateClosing
	return nil
}

// Finalize moves a closing week to finalized. Standings, movements and
// stats are the engine's concern; the aggregate only guards the gate.
func (w *Week) Finalize() error {
	if w.State != StateClosing {
		return &TransitionError{From: w.State, To: StateFinalized}
	}
	w.State = StateFinalized
	return nil
}

// ResetToDraft regenerates the box assignments of a week that never left
// draft, dropping any absences and court assignments recorded against the
// old layout.
func (w *Week) ResetToDraft(assignments []BoxAssignment) error {
	if w.State != StateDraft {
		return &TransitionError{From: w.State, To: StateDraft, Op: "reset to draft"}
	}
	w.BoxAssignments = assignments
	w.Absences = nil
	w.CourtAssignments = nil
	return nil
}
