package mapping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/model"
)

func TestValue(t *testing.T) {
	m := model.ColumnMapping{
		model.FieldState: "STATE",
		model.FieldNotes: "NOTES",
		model.FieldEdit:  "",
	}
	row := model.RawRow{"STATE": "pend", "NOTES": nil, "OTHER": "x"}

	v, ok := Value(row, model.FieldState, m)
	assert.True(t, ok)
	assert.Equal(t, "pend", v)

	_, ok = Value(row, model.FieldNotes, m)
	assert.False(t, ok, "nil cell is treated as absent")

	_, ok = Value(row, model.FieldEdit, m)
	assert.False(t, ok, "empty header is treated as unmapped")

	_, ok = Value(row, model.FieldAge, m)
	assert.False(t, ok, "unmapped key")

	_, ok = Value(model.RawRow{}, model.FieldState, m)
	assert.False(t, ok, "row without the mapped header")
}

func TestString(t *testing.T) {
	m := model.ColumnMapping{model.FieldClaimID: "ID", model.FieldState: "STATE"}

	tests := []struct {
		row  model.RawRow
		name string
		want string
	}{
		{name: "text", row: model.RawRow{"ID": "  C-1 "}, want: "C-1"},
		{name: "number", row: model.RawRow{"ID": float64(1001)}, want: "1001"},
		{name: "int", row: model.RawRow{"ID": 7}, want: "7"},
		{name: "blank falls back", row: model.RawRow{"ID": "   "}, want: "N/A"},
		{name: "missing falls back", row: model.RawRow{}, want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.row, model.FieldClaimID, m, "N/A"))
		})
	}

	assert.Equal(t, "ONHOLD", Upper(model.RawRow{"STATE": " onHold "}, model.FieldState, m, "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", Upper(model.RawRow{}, model.FieldState, m, "UNKNOWN"))
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in     any
		name   string
		want   float64
		wantOK bool
	}{
		{name: "plain", in: "1000", want: 1000, wantOK: true},
		{name: "decimal", in: " 12.75 ", want: 12.75, wantOK: true},
		{name: "currency", in: "$1,234.50", want: 1234.5, wantOK: true},
		{name: "negative currency", in: "-$20", want: -20, wantOK: true},
		{name: "accounting negative", in: "(12.50)", want: -12.5, wantOK: true},
		{name: "numeric prefix", in: "10 days", want: 10, wantOK: true},
		{name: "float value", in: 99.5, want: 99.5, wantOK: true},
		{name: "int value", in: 42, want: 42, wantOK: true},
		{name: "garbage", in: "abc", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "nan text", in: "NaN", wantOK: false},
		{name: "infinity text", in: "Inf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIntAndFloat(t *testing.T) {
	m := model.ColumnMapping{model.FieldAge: "AGE", model.FieldNetPayment: "PAID"}

	assert.Equal(t, 10, Int(model.RawRow{"AGE": "10"}, model.FieldAge, m))
	assert.Equal(t, 10, Int(model.RawRow{"AGE": "10.9"}, model.FieldAge, m))
	assert.Equal(t, 0, Int(model.RawRow{"AGE": "n/a"}, model.FieldAge, m))
	assert.Equal(t, 0, Int(model.RawRow{}, model.FieldAge, m))
	assert.Equal(t, 1, Int(model.RawRow{"AGE": "1e2"}, model.FieldAge, m))
	assert.Equal(t, 30, Int(model.RawRow{"AGE": " 30 days"}, model.FieldAge, m))
	assert.Equal(t, -4, Int(model.RawRow{"AGE": "-4"}, model.FieldAge, m))
	assert.Equal(t, 12, Int(model.RawRow{"AGE": 12.9}, model.FieldAge, m))
	assert.Equal(t, math.MaxInt, Int(model.RawRow{"AGE": "99999999999999999999999"}, model.FieldAge, m))
	assert.Equal(t, math.MinInt, Int(model.RawRow{"AGE": "-99999999999999999999999"}, model.FieldAge, m))
	assert.Equal(t, math.MaxInt, Int(model.RawRow{"AGE": 1e300}, model.FieldAge, m))

	_, ok := Float(model.RawRow{"PAID": "pending"}, model.FieldNetPayment, m)
	assert.False(t, ok)
	assert.Zero(t, FloatOr(model.RawRow{"PAID": "pending"}, model.FieldNetPayment, m))
	assert.InDelta(t, 250.25, FloatOr(model.RawRow{"PAID": "250.25"}, model.FieldNetPayment, m), 1e-9)
}

func TestSupports(t *testing.T) {
	m := model.ColumnMapping{model.FieldEdit: "EDIT", model.FieldNotes: " "}
	assert.True(t, Supports(m, model.FieldEdit))
	assert.False(t, Supports(m, model.FieldEdit, model.FieldNotes))
	assert.True(t, Supports(m))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(model.ColumnMapping{model.FieldEdit: "EDIT", model.FieldState: "State"}))

	err := Validate(model.ColumnMapping{"bogus": "X", model.FieldAge: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "bogus"`)
	assert.Contains(t, err.Error(), `field "age" has an empty header`)
}
