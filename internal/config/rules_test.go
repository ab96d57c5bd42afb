package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/courtflow/boxleague/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules(t *testing.T) {
	t.Run("falls back to defaults when file is missing", func(t *testing.T) {
		rules, err := config.LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.DefaultRules(), rules)
	})

	t.Run("parses overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := `
tiebreakers: [wins, points_diff]
promotion_count: 2
relegation_count: 2
min_rounds_for_movement: 3
default_absence_policy: freeze
substitute:
  require_membership: false
  box_restriction: same_only
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rules, err := config.LoadRules(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"wins", "points_diff"}, rules.Tiebreakers)
		assert.Equal(t, 2, rules.PromotionCount)
		assert.Equal(t, config.PolicyFreeze, rules.DefaultAbsencePolicy)
		assert.Equal(t, config.BoxRestrictionSameOnly, rules.Substitute.BoxRestriction)
	})

	t.Run("rejects unknown policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default_absence_policy: vanish\n"), 0o644))
		_, err := config.LoadRules(path)
		assert.Error(t, err)
	})
}

func TestValidPolicy(t *testing.T) {
	assert.True(t, config.ValidPolicy(config.PolicyFreeze))
	assert.True(t, config.ValidPolicy(config.PolicyAutoRelegate))
	assert.False(t, config.ValidPolicy("vanish"))
}
