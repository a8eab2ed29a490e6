// Package mapping resolves logical claim fields out of loosely typed spreadsheet rows.
//
// Rows arrive as header -> cell maps whose values may be strings, numbers or nil depending on the
// source. Everything is normalized here so later stages only ever see plain Go values; nothing in
// this package returns an error for bad cell content.
package mapping

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/Veraticus/claims-triage/internal/model"
)

var (
	leadingNumber  = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
	leadingInteger = regexp.MustCompile(`^[-+]?\d+`)
)

// Value returns the cell mapped to key. The boolean is false when the key is unmapped, the row
// lacks the mapped header, or the cell is nil.
func Value(row model.RawRow, key string, m model.ColumnMapping) (any, bool) {
	header, ok := m[key]
	if !ok || header == "" {
		return nil, false
	}
	v, ok := row[header]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the trimmed text of the mapped cell, or def when it is missing or blank.
func String(row model.RawRow, key string, m model.ColumnMapping, def string) string {
	v, ok := Value(row, key, m)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// Upper returns String upper-cased.
func Upper(row model.RawRow, key string, m model.ColumnMapping, def string) string {
	return strings.ToUpper(String(row, key, m, def))
}

// Float returns the mapped cell as a number. Currency symbols, thousands separators and
// accounting-style negatives are accepted; anything else unparseable reports false.
func Float(row model.RawRow, key string, m model.ColumnMapping) (float64, bool) {
	v, ok := Value(row, key, m)
	if !ok {
		return 0, false
	}
	return ParseFloat(v)
}

// FloatOr returns Float, falling back to 0 for unparseable cells.
func FloatOr(row model.RawRow, key string, m model.ColumnMapping) float64 {
	f, ok := Float(row, key, m)
	if !ok {
		return 0
	}
	return f
}

// Int returns the leading integer of a text cell ("30 days" -> 30, "1e2" -> 1)
// or a numeric cell truncated toward zero. Non-numeric cells give 0; values
// beyond the int range saturate at math.MaxInt / math.MinInt.
func Int(row model.RawRow, key string, m model.ColumnMapping) int {
	v, ok := Value(row, key, m)
	if !ok {
		return 0
	}
	if s, isString := v.(string); isString {
		digits := leadingInteger.FindString(strings.TrimSpace(s))
		if digits == "" {
			return 0
		}
		n, err := strconv.ParseInt(digits, 10, 0)
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(digits, "-") {
				return math.MinInt
			}
			return math.MaxInt
		}
		if err != nil {
			return 0
		}
		return int(n)
	}
	f, ok := ParseFloat(v)
	if !ok {
		return 0
	}
	return ClampInt(math.Trunc(f))
}

// ClampInt converts f to int, saturating outside the int range.
func ClampInt(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

// ParseFloat converts a loosely typed cell value into a finite float64.
func ParseFloat(v any) (float64, bool) {
	s, isString := v.(string)
	if !isString {
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.TrimPrefix(s, "$")
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	}
	s = strings.ReplaceAll(s, ",", "")

	f, err := cast.ToFloat64E(s)
	if err != nil {
		prefix := leadingNumber.FindString(s)
		if prefix == "" {
			return 0, false
		}
		if f, err = cast.ToFloat64E(prefix); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// Supports reports whether every key is mapped to a non-empty header.
func Supports(m model.ColumnMapping, keys ...string) bool {
	for _, k := range keys {
		if strings.TrimSpace(m[k]) == "" {
			return false
		}
	}
	return true
}

// Validate checks a mapping for unknown logical keys and blank headers.
func Validate(m model.ColumnMapping) error {
	known := make(map[string]struct{}, len(model.LogicalFields))
	for _, f := range model.LogicalFields {
		known[f] = struct{}{}
	}

	var problems []string
	for k, header := range m {
		if _, ok := known[k]; !ok {
			problems = append(problems, fmt.Sprintf("unknown field %q", k))
			continue
		}
		if strings.TrimSpace(header) == "" {
			problems = append(problems, fmt.Sprintf("field %q has an empty header", k))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.New(strings.Join(problems, "; "))
}
