package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// DefaultRules returns the rules template used when no rules file exists.
func DefaultRules() RulesTemplate {
	return RulesTemplate{
		Tiebreakers:          []string{"wins", "head_to_head", "points_diff", "points_for", "points_against"},
		PromotionCount:       1,
		RelegationCount:      1,
		MinRoundsForMovement: 2,
		DefaultAbsencePolicy: PolicyGhostScore,
		Substitute: SubstituteSettings{
			RequireMembership: true,
			BoxRestriction:    BoxRestrictionSameOrLower,
		},
	}
}

// LoadRules reads the season rules template from a YAML file, falling back
// to the defaults when the file is absent.
func LoadRules(path string) (RulesTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("No rules file found, using default rules template", "path", path)
			return DefaultRules(), nil
		}
		return RulesTemplate{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesTemplate{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := validateRules(rules); err != nil {
		return RulesTemplate{}, err
	}
	return rules, nil
}

func validateRules(rules RulesTemplate) error {
	if rules.PromotionCount < 0 || rules.RelegationCount < 0 {
		return fmt.Errorf("promotion and relegation counts must not be negative")
	}
	if rules.MinRoundsForMovement < 0 {
		return fmt.Errorf("min_rounds_for_movement must not be negative")
	}
	if !ValidPolicy(rules.DefaultAbsencePolicy) {
		return fmt.Errorf("unknown default absence policy %q", rules.DefaultAbsencePolicy)
	}
	switch rules.Substitute.BoxRestriction {
	case "", BoxRestrictionAny, BoxRestrictionSameOnly, BoxRestrictionSameOrLower:
	default:
		return fmt.Errorf("unknown box restriction %q", rules.Substitute.BoxRestriction)
	}
	return nil
}
