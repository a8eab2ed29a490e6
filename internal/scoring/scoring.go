// Package scoring computes work-queue priority for actionable claims.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/mapping"
	"github.com/Veraticus/claims-triage/internal/model"
)

// Weights controls how charges, age and status contribute to a score.
type Weights struct {
	DenyStatus     string
	ChargesDivisor float64
	AgeMultiplier  float64
	DenyBonus      int
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		ChargesDivisor: 500,
		AgeMultiplier:  1.5,
		DenyBonus:      100,
		DenyStatus:     "DENY",
	}
}

// Validate checks that the weights can produce a finite score.
func (w Weights) Validate() error {
	if w.ChargesDivisor <= 0 || math.IsNaN(w.ChargesDivisor) || math.IsInf(w.ChargesDivisor, 0) {
		return fmt.Errorf("%w: charges divisor must be positive, got %v", common.ErrInvalidConfig, w.ChargesDivisor)
	}
	if math.IsNaN(w.AgeMultiplier) || math.IsInf(w.AgeMultiplier, 0) {
		return fmt.Errorf("%w: age multiplier must be finite", common.ErrInvalidConfig)
	}
	return nil
}

// Score returns round(totalCharges/divisor + age*multiplier), plus the deny
// bonus when the status equals the deny status. Missing or unparseable
// inputs count as zero.
func (w Weights) Score(row model.RawRow, m model.ColumnMapping) int {
	charges := mapping.FloatOr(row, model.FieldTotalCharges, m)
	age := mapping.Int(row, model.FieldAge, m)
	status := mapping.Upper(row, model.FieldStatus, m, "")
	return w.compute(charges, age, status)
}

func (w Weights) compute(charges float64, age int, status string) int {
	score := charges/w.ChargesDivisor + float64(age)*w.AgeMultiplier
	if status != "" && status == strings.ToUpper(w.DenyStatus) {
		score += float64(w.DenyBonus)
	}
	return roundHalfUp(score)
}

// Score scores row with DefaultWeights.
func Score(row model.RawRow, m model.ColumnMapping) int {
	return DefaultWeights().Score(row, m)
}

// roundHalfUp rounds .5 toward positive infinity. Results beyond the int
// range saturate so oversized claims still sort first.
func roundHalfUp(x float64) int {
	return mapping.ClampInt(math.Floor(x + 0.5))
}
