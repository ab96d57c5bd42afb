package week

import "github.com/courtflow/boxleague/internal/config"

// Candidate is everything about a potential substitute the eligibility
// filter needs. Membership, rating link and consent come from the identity
// collaborator; AlreadyPlaying reflects this week's boxes.
type Candidate struct {
	ID             string
	Name           string
	AlreadyPlaying bool
	IsMember       bool
	// CurrentBox is the candidate's own box this week; zero if they are
	// not assigned to one.
	CurrentBox int
	RatingID   string
	HasConsent bool
}

// CanBeSubstitute is a pure predicate, independent of the transactional
// mutators, so callers can pre-filter large candidate pools before
// attempting an assignment. It returns the first failing reason.
func CanBeSubstitute(c Candidate, vacancyBox int, settings config.SubstituteSettings) (bool, string) {
	if c.AlreadyPlaying {
		return false, "already playing this week"
	}
	if settings.RequireMembership && !c.IsMember {
		return false, "not a league member"
	}
	if settings.RequireRatingID && c.RatingID == "" {
		return false, "no linked rating id"
	}
	if settings.RequireConsent && !c.HasConsent {
		return false, "no substitute consent on file"
	}

	// A candidate without a box of their own passes any box restriction.
	if c.CurrentBox > 0 {
		switch settings.BoxRestriction {
		case config.BoxRestrictionSameOnly:
			if c.CurrentBox != vacancyBox {
				return false, "must come from the same box"
			}
		case config.BoxRestrictionSameOrLower:
			// Lower-ranked boxes carry higher numbers.
			if c.CurrentBox < vacancyBox {
				return false, "must come from the same or a lower box"
			}
		}
	}
	return true, ""
}
