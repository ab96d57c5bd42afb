package week

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtflow/boxleague/internal/config"
)

// Manager applies absence and substitute operations through the store's
// optimistic-concurrency boundary.
type Manager struct {
	store Store
	subs  SubsCounter
	now   func() time.Time
}

func NewManager(store Store, subs SubsCounter) *Manager {
	return &Manager{store: store, subs: subs, now: time.Now}
}

func (m *Manager) DeclareAbsence(key Key, playerID, playerName, declaredBy, reason string, policy config.AbsencePolicy) (Week, error) {
	return m.store.TransactionalUpdate(key, func(w *Week) error {
		return w.DeclareAbsence(playerID, playerName, declaredBy, reason, policy, m.now())
	})
}

func (m *Manager) RecordNoShow(key Key, playerID, playerName, markedBy string, policy config.AbsencePolicy) (Week, error) {
	return m.store.TransactionalUpdate(key, func(w *Week) error {
		return w.RecordNoShow(playerID, playerName, markedBy, policy, m.now())
	})
}

func (m *Manager) CancelAbsence(key Key, playerID string, byOrganizer bool) (Week, error) {
	return m.store.TransactionalUpdate(key, func(w *Week) error {
		return w.CancelAbsence(playerID, byOrganizer)
	})
}

// AssignSubstitute links a substitute to an existing absence. The league
// subs-used counter is bumped after the transaction commits; a counter
// failure is logged but does not unwind the assignment.
func (m *Manager) AssignSubstitute(key Key, absentPlayerID, substituteID, substituteName string) (Week, error) {
	updated, err := m.store.TransactionalUpdate(key, func(w *Week) error {
		return w.AssignSubstitute(absentPlayerID, substituteID, substituteName)
	})
	if err != nil {
		return Week{}, err
	}
	if m.subs != nil {
		if err := m.subs.IncrementSubsUsed(key.LeagueID, substituteID); err != nil {
			log.Error("Failed to increment subs-used counter", "player_id", substituteID, "error", err)
		}
	}
	return updated, nil
}

func (m *Manager) RemoveSubstitute(key Key, absentPlayerID string) (Week, error) {
	return m.store.TransactionalUpdate(key, func(w *Week) error {
		return w.RemoveSubstitute(absentPlayerID)
	})
}

// AssignCourts records the court plan for a draft or active week.
func (m *Manager) AssignCourts(key Key, courts []CourtAssignment) (Week, error) {
	return m.store.TransactionalUpdate(key, func(w *Week) error {
		if w.State == StateClosing || w.State == StateFinalized {
			return &TransitionError{From: w.State, To: w.State, Op: "assign courts"}
		}
		w.CourtAssignments = courts
		return nil
	})
}

func (m *Manager) SetMovementFrozen(key Key, frozen bool) (Week, error) {
	return m.store.TransactionalUpdate(key, func(w *Week) error {
		if w.State == StateFinalized {
			return &TransitionError{From: w.State, To: w.State, Op: "freeze movement"}
		}
		w.MovementFrozen = frozen
		return nil
	})
}
