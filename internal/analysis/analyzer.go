// Package analysis turns raw spreadsheet rows into processed, prioritized claims.
package analysis

import (
	"log/slog"

	"github.com/Veraticus/claims-triage/internal/classification"
	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/mapping"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/scoring"
)

// Result holds the processed claims in input order and the dataset metrics.
type Result struct {
	Metrics model.Metrics          `json:"metrics"`
	Claims  []model.ProcessedClaim `json:"claims"`
}

// Analyzer classifies and scores claim batches.
type Analyzer struct {
	logger  *slog.Logger
	weights scoring.Weights
}

// New creates an Analyzer. A nil logger uses slog.Default.
func New(weights scoring.Weights, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		weights: weights,
		logger:  common.OrDefault(logger),
	}
}

// Analyze processes rows with the default scoring weights.
func Analyze(rows []model.RawRow, m model.ColumnMapping, rs model.RuleSet) Result {
	return New(scoring.DefaultWeights(), nil).Analyze(rows, m, rs)
}

// Analyze maps, classifies and scores every row. It never fails: malformed
// cells fall back to defaults and the output has exactly one claim per row.
func (a *Analyzer) Analyze(rows []model.RawRow, m model.ColumnMapping, rs model.RuleSet) Result {
	classifier := classification.New(rs, a.logger)

	result := Result{
		Claims: make([]model.ProcessedClaim, 0, len(rows)),
		Metrics: model.Metrics{
			ClaimsByStatus: make(map[string]int),
		},
	}

	for _, row := range rows {
		claim := a.process(row, m, classifier)

		result.Metrics.TotalClaims++
		result.Metrics.TotalNetPayment += claim.NetPayment
		result.Metrics.ClaimsByStatus[claim.Status]++

		result.Claims = append(result.Claims, claim)
	}

	a.logger.Debug("analyzed claims",
		"claims", result.Metrics.TotalClaims,
		"edit_rules", classifier.EditRuleCount(),
		"note_rules", classifier.NoteRuleCount())

	return result
}

func (a *Analyzer) process(row model.RawRow, m model.ColumnMapping, c *classification.Classifier) model.ProcessedClaim {
	claim := model.ProcessedClaim{
		ClaimID:      mapping.String(row, model.FieldClaimID, m, model.NotApplicable),
		State:        mapping.Upper(row, model.FieldState, m, model.UnknownValue),
		Status:       mapping.Upper(row, model.FieldStatus, m, model.UnknownValue),
		Age:          mapping.Int(row, model.FieldAge, m),
		NetPayment:   mapping.FloatOr(row, model.FieldNetPayment, m),
		ProviderName: mapping.String(row, model.FieldProviderName, m, model.UnknownProvider),
		Original:     row,
	}

	claim.IsActionable = model.IsActionableState(claim.State)
	if !claim.IsActionable {
		claim.Category = model.NotApplicable
		claim.TeamName = model.NotApplicable
		claim.CategorySource = model.SourceNotApplicable
		claim.PriorityScore = model.NonActionableScore
		return claim
	}

	res := c.Classify(row, m)
	claim.Category = res.Category
	claim.TeamName = res.TeamName
	claim.CategorySource = res.Source
	claim.CategoryID = res.CategoryID
	claim.SendToL1Monitor = res.SendToL1Monitor
	claim.PriorityScore = a.weights.Score(row, m)

	return claim
}
