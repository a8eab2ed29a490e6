package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
)

var scoreMapping = model.ColumnMapping{
	model.FieldTotalCharges: "CHARGES",
	model.FieldAge:          "AGE",
	model.FieldStatus:       "STATUS",
}

func TestScore(t *testing.T) {
	tests := []struct {
		row  model.RawRow
		name string
		want int
	}{
		{name: "charges and age", row: model.RawRow{"CHARGES": 1000, "AGE": 10, "STATUS": "OPEN"}, want: 17},
		{name: "string inputs", row: model.RawRow{"CHARGES": "$1,000.00", "AGE": "10", "STATUS": "OPEN"}, want: 17},
		{name: "deny with nothing else", row: model.RawRow{"CHARGES": 0, "AGE": 0, "STATUS": "DENY"}, want: 100},
		{name: "deny is case insensitive after normalization", row: model.RawRow{"STATUS": " deny "}, want: 100},
		{name: "denied is not deny", row: model.RawRow{"STATUS": "DENIED"}, want: 0},
		{name: "empty row", row: model.RawRow{}, want: 0},
		{name: "unparseable charges", row: model.RawRow{"CHARGES": "n/a", "AGE": 2}, want: 3},
		{name: "half rounds up", row: model.RawRow{"CHARGES": 250}, want: 1},
		{name: "below half rounds down", row: model.RawRow{"CHARGES": 249}, want: 0},
		{name: "age only", row: model.RawRow{"AGE": 3}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.row, scoreMapping))
		})
	}
}

func TestScore_SaturatesOnHugeInputs(t *testing.T) {
	tests := []struct {
		row  model.RawRow
		name string
		want int
	}{
		{name: "huge charges text", row: model.RawRow{"CHARGES": "1e30"}, want: math.MaxInt},
		{name: "huge numeric charges and age", row: model.RawRow{"CHARGES": 1e300, "AGE": 1e300}, want: math.MaxInt},
		{name: "huge charges plus deny", row: model.RawRow{"CHARGES": 1e30, "STATUS": "DENY"}, want: math.MaxInt},
		{name: "huge negative charges", row: model.RawRow{"CHARGES": "-1e30"}, want: math.MinInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.row, scoreMapping))
		})
	}

	// A saturated score still outranks an ordinary one.
	assert.Greater(t, Score(model.RawRow{"CHARGES": "1e30", "AGE": 5}, scoreMapping),
		Score(model.RawRow{"CHARGES": 1000, "AGE": 10}, scoreMapping))
}

func TestScore_UnmappedColumns(t *testing.T) {
	row := model.RawRow{"CHARGES": 1000, "AGE": 10, "STATUS": "DENY"}
	assert.Equal(t, 0, Score(row, model.ColumnMapping{}))
}

func TestWeights_Custom(t *testing.T) {
	w := Weights{ChargesDivisor: 100, AgeMultiplier: 2, DenyBonus: 50, DenyStatus: "deny"}
	require.NoError(t, w.Validate())

	row := model.RawRow{"CHARGES": 1000, "AGE": 5, "STATUS": "DENY"}
	assert.Equal(t, 70, w.Score(row, scoreMapping))
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.ChargesDivisor = 0
	assert.ErrorIs(t, w.Validate(), common.ErrInvalidConfig)

	w.ChargesDivisor = -5
	assert.ErrorIs(t, w.Validate(), common.ErrInvalidConfig)
}
