package engine

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/courtflow/boxleague/internal/boxes"
	"github.com/courtflow/boxleague/internal/matches"
	"github.com/courtflow/boxleague/internal/metrics"
	"github.com/courtflow/boxleague/internal/pubsub"
	"github.com/courtflow/boxleague/internal/rotation"
	"github.com/courtflow/boxleague/internal/week"
)

// CreateDraftWeek seeds a new draft from the current roster: members ordered
// by rating descending, packed into boxes (fives maximized), box 1 taking
// the top players. The active rules template is snapshotted into the week.
func (e *Engine) CreateDraftWeek(leagueID string, weekNumber int) (week.Week, error) {
	roster, err := e.members.MembersByRating(leagueID)
	if err != nil {
		return week.Week{}, fmt.Errorf("failed to load roster: %w", err)
	}
	playerIDs := make([]string, len(roster))
	for i, m := range roster {
		playerIDs[i] = m.ID
	}

	assignments, err := assignBoxes(playerIDs)
	if err != nil {
		return week.Week{}, err
	}
	return e.createDraft(leagueID, weekNumber, assignments)
}

func (e *Engine) createDraft(leagueID string, weekNumber int, assignments []week.BoxAssignment) (week.Week, error) {
	w := week.Week{
		LeagueID:       leagueID,
		WeekNumber:     weekNumber,
		State:          week.StateDraft,
		BoxAssignments: assignments,
		RulesSnapshot:  e.rules,
	}
	if err := e.weeks.Put(w); err != nil {
		return week.Week{}, err
	}
	e.metrics.IncWeeksCreated()
	if err := e.pubsub.SendMessage(pubsub.EventWeekCreated, pubsub.WeekEvent{
		LeagueID:   leagueID,
		WeekNumber: weekNumber,
		State:      string(week.StateDraft),
	}); err != nil {
		log.Error("Failed to publish week-created event", "error", err)
	}
	created, _, err := e.weeks.Get(w.Key())
	if err != nil {
		return week.Week{}, err
	}
	return created, nil
}

func assignBoxes(orderedPlayerIDs []string) ([]week.BoxAssignment, error) {
	packing, err := boxes.Pack(len(orderedPlayerIDs))
	if err != nil {
		return nil, err
	}
	distributions, err := boxes.Distribute(orderedPlayerIDs, packing)
	if err != nil {
		return nil, err
	}
	assignments := make([]week.BoxAssignment, len(distributions))
	for i, d := range distributions {
		assignments[i] = week.BoxAssignment{BoxNumber: d.BoxNumber, PlayerIDs: d.PlayerIDs}
	}
	return assignments, nil
}

// Activate validates box sizes, creates the week's matches and moves the
// week to active. Match identity is deterministic, so a partially failed
// activation can be retried without double-creating matches. Activating an
// already active week is a success no-op.
func (e *Engine) Activate(key week.Key) (week.Week, error) {
	w, exists, err := e.weeks.Get(key)
	if err != nil {
		return week.Week{}, err
	}
	if !exists {
		return week.Week{}, fmt.Errorf("%w: %s", week.ErrNotFound, key)
	}
	if w.State == week.StateActive {
		return w, nil
	}
	if err := w.ValidateActivation(); err != nil {
		return week.Week{}, err
	}

	boxPairings, err := buildPairings(w)
	if err != nil {
		return week.Week{}, err
	}
	created, err := e.matches.CreateForWeek(key.LeagueID, key.WeekNumber, boxPairings)
	if err != nil {
		return week.Week{}, fmt.Errorf("failed to create matches: %w", err)
	}
	e.metrics.AddMatchesCreated(created)
	e.counters.Increment(key.LeagueID, metrics.KeyWeeksActivated)

	updated, err := e.weeks.TransactionalUpdate(key, func(wk *week.Week) error {
		return wk.Activate()
	})
	if err != nil {
		return week.Week{}, err
	}
	log.Info("Activated week", "week", key.String(), "matches_created", created)

	if err := e.pubsub.SendMessage(pubsub.EventWeekActivated, pubsub.WeekEvent{
		LeagueID:   key.LeagueID,
		WeekNumber: key.WeekNumber,
		State:      string(week.StateActive),
	}); err != nil {
		log.Error("Failed to publish week-activated event", "error", err)
	}
	return updated, nil
}

func buildPairings(w week.Week) ([]matches.BoxPairings, error) {
	boxPairings := make([]matches.BoxPairings, 0, len(w.BoxAssignments))
	for _, box := range w.BoxAssignments {
		pairings, err := rotation.GeneratePairings(box.PlayerIDs)
		if err != nil {
			return nil, fmt.Errorf("box %d: %w", box.BoxNumber, err)
		}
		boxPairings = append(boxPairings, matches.BoxPairings{
			BoxNumber: box.BoxNumber,
			Pairings:  pairings,
		})
	}
	return boxPairings, nil
}

// StartClosing moves an active week into its collect-the-last-results phase.
func (e *Engine) StartClosing(key week.Key) (week.Week, error) {
	return e.weeks.TransactionalUpdate(key, func(wk *week.Week) error {
		return wk.StartClosing()
	})
}

// ResetToDraft regenerates a draft week's boxes from the current roster and
// voids any matches left over from a previous layout.
func (e *Engine) ResetToDraft(key week.Key) (week.Week, error) {
	roster, err := e.members.MembersByRating(key.LeagueID)
	if err != nil {
		return week.Week{}, fmt.Errorf("failed to load roster: %w", err)
	}
	playerIDs := make([]string, len(roster))
	for i, m := range roster {
		playerIDs[i] = m.ID
	}
	assignments, err := assignBoxes(playerIDs)
	if err != nil {
		return week.Week{}, err
	}

	updated, err := e.weeks.TransactionalUpdate(key, func(wk *week.Week) error {
		return wk.ResetToDraft(assignments)
	})
	if err != nil {
		return week.Week{}, err
	}
	if err := e.matches.VoidForWeek(key.LeagueID, key.WeekNumber); err != nil {
		log.Error("Failed to void matches after reset", "week", key.String(), "error", err)
	}
	return updated, nil
}

// CurrentWeek returns the league's focal week: the lowest non-finalized
// week, falling back to the latest finalized one.
func (e *Engine) CurrentWeek(leagueID string) (week.Week, bool, error) {
	return e.weeks.CurrentWeek(leagueID)
}

// ListWeeks returns all of the league's weeks in week-number order.
func (e *Engine) ListWeeks(leagueID string) ([]week.Week, error) {
	return e.weeks.ListWeeks(leagueID)
}
