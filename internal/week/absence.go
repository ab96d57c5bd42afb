package week

import (
	"time"

	"github.com/courtflow/boxleague/internal/config"
)

// DeclareAbsence removes the player from their box and records the freed
// ordinal position so a later cancellation restores the exact ordering.
// Players may only declare while the week is still in draft.
func (w *Week) DeclareAbsence(playerID, playerName, declaredBy, reason string, policy config.AbsencePolicy, now time.Time) error {
	if w.State != StateDraft {
		return &TransitionError{From: w.State, Op: "declare absence"}
	}
	return w.recordAbsence(playerID, playerName, declaredBy, reason, policy, false, now)
}

// RecordNoShow records an organizer-marked absence for a player who failed
// to appear. Legal in draft or active; the permission check itself is the
// caller's concern.
func (w *Week) RecordNoShow(playerID, playerName, markedBy string, policy config.AbsencePolicy, now time.Time) error {
	if w.State != StateDraft && w.State != StateActive {
		return &TransitionError{From: w.State, Op: "record no-show"}
	}
	return w.recordAbsence(playerID, playerName, markedBy, "", policy, true, now)
}

func (w *Week) recordAbsence(playerID, playerName, declaredBy, reason string, policy config.AbsencePolicy, isNoShow bool, now time.Time) error {
	if w.AbsenceFor(playerID) != nil {
		return ErrDuplicateAbsence
	}
	boxNumber, position, found := w.FindPlayer(playerID)
	if !found {
		return ErrPlayerNotAssigned
	}

	box := w.Box(boxNumber)
	box.PlayerIDs = append(box.PlayerIDs[:position], box.PlayerIDs[position+1:]...)

	w.Absences = append(w.Absences, Absence{
		PlayerID:         playerID,
		PlayerName:       playerName,
		BoxNumber:        boxNumber,
		PositionInBox:    position,
		DeclaredAt:       now,
		DeclaredByUserID: declaredBy,
		PolicyApplied:    policy,
		IsNoShow:         isNoShow,
		Reason:           reason,
	})
	return nil
}

// CancelAbsence restores the player at their recorded position, removing
// only the substitute linked to this specific absence. Legal in draft
// always, in active only for organizers, and never once closing.
func (w *Week) CancelAbsence(playerID string, isOrganizer bool) error {
	switch w.State {
	case StateDraft:
	case StateActive:
		if !isOrganizer {
			return &TransitionError{From: w.State, Op: "cancel absence (players)"}
		}
	default:
		return &TransitionError{From: w.State, Op: "cancel absence"}
	}

	absence := w.AbsenceFor(playerID)
	if absence == nil {
		return ErrNoAbsence
	}

	box := w.Box(absence.BoxNumber)
	if absence.SubstituteID != "" {
		removeFromBox(box, absence.SubstituteID)
	}
	insertIntoBox(box, playerID, absence.PositionInBox)
	w.deleteAbsence(playerID)
	return nil
}

// AssignSubstitute inserts a stand-in at the absent player's freed position.
// The substitute must not already appear anywhere in the week.
func (w *Week) AssignSubstitute(absentPlayerID, substituteID, substituteName string) error {
	if w.State == StateClosing || w.State == StateFinalized {
		return &TransitionError{From: w.State, Op: "assign substitute"}
	}

	absence := w.AbsenceFor(absentPlayerID)
	if absence == nil {
		return ErrNoAbsence
	}
	if absence.SubstituteID != "" {
		return ErrSubstituteAssigned
	}
	if _, _, playing := w.FindPlayer(substituteID); playing {
		return ErrSubstituteAlreadyPlaying
	}

	box := w.Box(absence.BoxNumber)
	insertIntoBox(box, substituteID, absence.PositionInBox)
	absence.SubstituteID = substituteID
	absence.SubstituteName = substituteName
	return nil
}

// RemoveSubstitute takes the stand-in back out, leaving the absence itself
// intact. Only legal while the week is still in draft.
func (w *Week) RemoveSubstitute(absentPlayerID string) error {
	if w.State != StateDraft {
		return &TransitionError{From: w.State, Op: "remove substitute"}
	}

	absence := w.AbsenceFor(absentPlayerID)
	if absence == nil {
		return ErrNoAbsence
	}
	if absence.SubstituteID == "" {
		return ErrNoSubstitute
	}

	removeFromBox(w.Box(absence.BoxNumber), absence.SubstituteID)
	absence.SubstituteID = ""
	absence.SubstituteName = ""
	return nil
}

func (w *Week) deleteAbsence(playerID string) {
	for i := range w.Absences {
		if w.Absences[i].PlayerID == playerID {
			w.Absences = append(w.Absences[:i], w.Absences[i+1:]...)
			return
		}
	}
}

func removeFromBox(box *BoxAssignment, playerID string) {
	for i, id := range box.PlayerIDs {
		if id == playerID {
			box.PlayerIDs = append(box.PlayerIDs[:i], box.PlayerIDs[i+1:]...)
			return
		}
	}
}

// insertIntoBox places a player at the given ordinal position, clamped to
// the current box length in case the box shrank in the meantime.
func insertIntoBox(box *BoxAssignment, playerID string, position int) {
	if position > len(box.PlayerIDs) {
		position = len(box.PlayerIDs)
	}
	box.PlayerIDs = append(box.PlayerIDs, "")
	copy(box.PlayerIDs[position+1:], box.PlayerIDs[position:])
	box.PlayerIDs[position] = playerID
}
