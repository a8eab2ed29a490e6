package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/claims-triage/internal/scoring"
)

// LoadScoringWeights reads the scoring.* keys over the default weights.
func LoadScoringWeights() (scoring.Weights, error) {
	w := scoring.DefaultWeights()

	if viper.IsSet("scoring.charges_divisor") {
		w.ChargesDivisor = viper.GetFloat64("scoring.charges_divisor")
	}
	if viper.IsSet("scoring.age_multiplier") {
		w.AgeMultiplier = viper.GetFloat64("scoring.age_multiplier")
	}
	if viper.IsSet("scoring.deny_bonus") {
		w.DenyBonus = viper.GetInt("scoring.deny_bonus")
	}
	if v := viper.GetString("scoring.deny_status"); v != "" {
		w.DenyStatus = v
	}

	if err := w.Validate(); err != nil {
		return scoring.Weights{}, fmt.Errorf("scoring: %w", err)
	}
	return w, nil
}
