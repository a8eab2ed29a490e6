package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/claims-triage/internal/mapping"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrEmptySlice      = errors.New("slice cannot be empty")
	ErrInvalidID       = errors.New("id must be a positive integer")
	ErrInvalidRuleType = errors.New("rule type must be edit or note")
	ErrNameTooShort    = errors.New("name is too short")
	ErrInvalidMapping  = errors.New("invalid column mapping")
	ErrReferenced      = errors.New("record is still referenced")
)

// MinTeamNameLength is the shortest accepted team name.
const MinTeamNameLength = 2

// IsValidationError reports whether err was caused by bad caller input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyString, ErrEmptySlice, ErrInvalidID, ErrInvalidRuleType, ErrNameTooShort, ErrInvalidMapping,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// ValidateString ensures a string parameter is not empty.
func ValidateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// ValidateID ensures id is a positive database identifier.
func ValidateID(id int, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// ValidateRuleType rejects anything but edit and note.
func ValidateRuleType(t model.RuleType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRuleType, t)
	}
	return nil
}

// ValidateTeamName enforces the minimum team name length.
func ValidateTeamName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinTeamNameLength {
		return fmt.Errorf("%w: team name must be at least %d characters", ErrNameTooShort, MinTeamNameLength)
	}
	return nil
}

// ValidateMapping checks a client column mapping before it is stored.
func ValidateMapping(m model.ColumnMapping) error {
	if err := mapping.Validate(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	return nil
}

// ValidateAssignments checks a batch of rules before it is persisted.
func ValidateAssignments(items []service.RuleAssignment) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: rules", ErrEmptySlice)
	}
	for i, it := range items {
		if it.Text == "" {
			return fmt.Errorf("rule at index %d: %w: text", i, ErrEmptyString)
		}
		if it.CategoryID <= 0 {
			return fmt.Errorf("rule at index %d: %w: category_id=%d", i, ErrInvalidID, it.CategoryID)
		}
	}
	return nil
}
