package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/pubsub"
	"github.com/courtflow/boxleague/internal/standings"
	"github.com/courtflow/boxleague/internal/week"
)

// Finalize computes every box's standings, persists the snapshot and
// movements into the week, applies season stats exactly once, publishes the
// week-finalized event and rolls the league over into next week's draft.
// Finalizing an already finalized week replays only the idempotent tail, so
// a crash between the state transition and the downstream effects heals on
// retry.
func (e *Engine) Finalize(key week.Key) (week.Week, error) {
	w, exists, err := e.weeks.Get(key)
	if err != nil {
		return week.Week{}, err
	}
	if !exists {
		return week.Week{}, fmt.Errorf("%w: %s", week.ErrNotFound, key)
	}

	if w.State != week.StateFinalized {
		start := time.Now()
		snapshot, movements, err := e.computeStandings(w)
		if err != nil {
			return week.Week{}, err
		}
		e.metrics.ObserveStandingsDuration(time.Since(start).Seconds())

		w, err = e.weeks.TransactionalUpdate(key, func(wk *week.Week) error {
			if err := wk.Finalize(); err != nil {
				return err
			}
			wk.Standings = &snapshot
			wk.Movements = movements
			return nil
		})
		if err != nil {
			return week.Week{}, err
		}
		e.metrics.IncWeeksFinalized()
		e.counters.Increment(key.LeagueID, metrics.KeyWeeksFinalized)
		log.Info("Finalized week", "week", key.String(), "movements", len(movements))
	}

	if w.Standings != nil {
		applied, err := e.season.UpdateStatsAfterWeek(w, w.Standings.Standings, w.Movements)
		if err != nil {
			return week.Week{}, fmt.Errorf("failed to apply season stats: %w", err)
		}
		if applied {
			e.publishFinalized(w)
		}
	}

	if err := e.rolloverNextWeek(w); err != nil {
		log.Error("Failed to create next week's draft", "week", key.String(), "error", err)
	}
	return w, nil
}

func (e *Engine) publishFinalized(w week.Week) {
	var promotions, relegations int
	for _, m := range w.Movements {
		switch m.Reason {
		case standings.MovementPromotion:
			promotions++
		case standings.MovementRelegation:
			relegations++
		}
	}
	if err := e.pubsub.SendMessage(pubsub.EventWeekFinalized, pubsub.WeekEvent{
		LeagueID:    w.LeagueID,
		WeekNumber:  w.WeekNumber,
		State:       string(week.StateFinalized),
		Promotions:  promotions,
		Relegations: relegations,
	}); err != nil {
		log.Error("Failed to publish week-finalized event", "error", err)
	}
}

// ComputeStandings returns a standings view of any week: the persisted
// snapshot for finalized weeks, a live calculation otherwise.
func (e *Engine) ComputeStandings(key week.Key) (standings.Snapshot, []standings.PlayerMovement, error) {
	w, exists, err := e.weeks.Get(key)
	if err != nil {
		return standings.Snapshot{}, nil, err
	}
	if !exists {
		return standings.Snapshot{}, nil, fmt.Errorf("%w: %s", week.ErrNotFound, key)
	}
	if w.State == week.StateFinalized && w.Standings != nil {
		return *w.Standings, w.Movements, nil
	}
	return e.computeStandings(w)
}

// computeStandings runs the calculator over every box and bundles the
// results into one snapshot plus the derived movements.
func (e *Engine) computeStandings(w week.Week) (standings.Snapshot, []standings.PlayerMovement, error) {
	bottomBox := w.BottomBox()
	var table []standings.BoxStanding
	var sources []standings.CompletedMatch

	for _, box := range w.BoxAssignments {
		completed, err := e.matches.CompletedForBox(w.LeagueID, w.WeekNumber, box.BoxNumber)
		if err != nil {
			return standings.Snapshot{}, nil, fmt.Errorf("box %d: %w", box.BoxNumber, err)
		}
		boxMatches := make([]standings.CompletedMatch, len(completed))
		for i, m := range completed {
			boxMatches[i] = standings.CompletedMatch{
				TeamAPlayerIDs: m.TeamAPlayerIDs,
				TeamBPlayerIDs: m.TeamBPlayerIDs,
				PointsA:        m.PointsA,
				PointsB:        m.PointsB,
				UpdatedAt:      m.UpdatedAt,
			}
		}

		input := standings.BoxInput{
			BoxNumber:      box.BoxNumber,
			PlayerIDs:      box.PlayerIDs,
			Absences:       e.boxAbsences(w, box.BoxNumber),
			Matches:        boxMatches,
			IsTopBox:       box.BoxNumber == 1,
			IsBottomBox:    box.BoxNumber == bottomBox,
			MovementFrozen: w.MovementFrozen,
		}
		table = append(table, standings.Calculate(input, w.RulesSnapshot)...)
		sources = append(sources, boxMatches...)
	}

	return standings.NewSnapshot(table, sources, e.now()), standings.Movements(table), nil
}

func (e *Engine) boxAbsences(w week.Week, boxNumber int) []standings.AbsenceInfo {
	var infos []standings.AbsenceInfo
	for _, a := range w.Absences {
		if a.BoxNumber != boxNumber {
			continue
		}
		info := standings.AbsenceInfo{
			PlayerID:     a.PlayerID,
			Policy:       a.PolicyApplied,
			IsNoShow:     a.IsNoShow,
			SubstituteID: a.SubstituteID,
		}
		if a.PolicyApplied == config.PolicyAveragePoints {
			avg, err := e.season.SeasonAverage(w.LeagueID, a.PlayerID)
			if err != nil {
				log.Error("Failed to load season average, falling back to ghost score", "player_id", a.PlayerID, "error", err)
			} else {
				info.SeasonAverage = avg
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// rolloverNextWeek creates next week's draft from the finalized layout:
// absent players restored at their recorded positions, substitutes dropped,
// promoted players entering the bottom of the box above and relegated
// players the top of the box below. A no-op when the next week exists.
func (e *Engine) rolloverNextWeek(w week.Week) error {
	nextKey := week.Key{LeagueID: w.LeagueID, WeekNumber: w.WeekNumber + 1}
	_, exists, err := e.weeks.Get(nextKey)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	assignments := nextAssignments(w)
	_, err = e.createDraft(nextKey.LeagueID, nextKey.WeekNumber, assignments)
	return err
}

func nextAssignments(w week.Week) []week.BoxAssignment {
	// Deep copy so movement application never mutates the finalized week.
	byBox := make(map[int][]string, len(w.BoxAssignments))
	order := make([]int, 0, len(w.BoxAssignments))
	for _, box := range w.BoxAssignments {
		byBox[box.BoxNumber] = append([]string(nil), box.PlayerIDs...)
		order = append(order, box.BoxNumber)
	}

	// Substitutes out, absentees back at their recorded positions.
	for _, a := range w.Absences {
		ids := byBox[a.BoxNumber]
		if a.SubstituteID != "" {
			ids = removeID(ids, a.SubstituteID)
		}
		pos := a.PositionInBox
		if pos > len(ids) {
			pos = len(ids)
		}
		ids = append(ids, "")
		copy(ids[pos+1:], ids[pos:])
		ids[pos] = a.PlayerID
		byBox[a.BoxNumber] = ids
	}

	// Promotions append to the bottom of the box above, relegations insert
	// at the top of the box below.
	for _, m := range w.Movements {
		byBox[m.FromBox] = removeID(byBox[m.FromBox], m.PlayerID)
		switch m.Reason {
		case standings.MovementPromotion:
			byBox[m.ToBox] = append(byBox[m.ToBox], m.PlayerID)
		case standings.MovementRelegation:
			byBox[m.ToBox] = append([]string{m.PlayerID}, byBox[m.ToBox]...)
		}
	}

	assignments := make([]week.BoxAssignment, 0, len(order))
	for _, boxNumber := range order {
		assignments = append(assignments, week.BoxAssignment{
			BoxNumber: boxNumber,
			PlayerIDs: byBox[boxNumber],
		})
	}
	return assignments
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AutoFinalizeDue finalizes the league's current week when it has been
// moved into closing. Invoked by the scheduler; a week still collecting
// results is left alone.
func (e *Engine) AutoFinalizeDue(leagueID string) error {
	current, exists, err := e.weeks.CurrentWeek(leagueID)
	if err != nil {
		return err
	}
	if !exists || current.State != week.StateClosing {
		return nil
	}
	log.Info("Auto-finalizing closing week", "week", current.Key().String())
	_, err = e.Finalize(current.Key())
	return err
}
