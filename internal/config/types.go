package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	LeagueID      string
	RulesPath     string
	Turso         TursoConfig
	ProjectID     string
	AutoFinalize  bool
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// AbsencePolicy determines the synthetic standing an absent player receives.
type AbsencePolicy string

const (
	PolicyFreeze        AbsencePolicy = "freeze"
	PolicyGhostScore    AbsencePolicy = "ghost_score"
	PolicyAveragePoints AbsencePolicy = "average_points"
	PolicyAutoRelegate  AbsencePolicy = "auto_relegate"
)

// ValidPolicy reports whether p is one of the known absence policies.
func ValidPolicy(p AbsencePolicy) bool {
	switch p {
	case PolicyFreeze, PolicyGhostScore, PolicyAveragePoints, PolicyAutoRelegate:
		return true
	}
	return false
}

// BoxRestriction limits which box a substitute may come from relative to the
// vacancy they fill.
type BoxRestriction string

const (
	BoxRestrictionAny         BoxRestriction = "any"
	BoxRestrictionSameOnly    BoxRestriction = "same_only"
	BoxRestrictionSameOrLower BoxRestriction = "same_or_lower"
)

// SubstituteSettings gate who may stand in for an absent player.
type SubstituteSettings struct {
	RequireMembership bool           `yaml:"require_membership" json:"require_membership"`
	BoxRestriction    BoxRestriction `yaml:"box_restriction" json:"box_restriction"`
	RequireRatingID   bool           `yaml:"require_rating_id" json:"require_rating_id"`
	RequireConsent    bool           `yaml:"require_consent" json:"require_consent"`
}

// RulesTemplate is the season rules template. It is snapshotted verbatim
// into each week at draft creation, so mid-season edits never retroactively
// alter a week already in progress.
type RulesTemplate struct {
	Tiebreakers          []string           `yaml:"tiebreakers" json:"tiebreakers"`
	PromotionCount       int                `yaml:"promotion_count" json:"promotion_count"`
	RelegationCount      int                `yaml:"relegation_count" json:"relegation_count"`
	MinRoundsForMovement int                `yaml:"min_rounds_for_movement" json:"min_rounds_for_movement"`
	DefaultAbsencePolicy AbsencePolicy      `yaml:"default_absence_policy" json:"default_absence_policy"`
	Substitute           SubstituteSettings `yaml:"substitute" json:"substitute"`
}
