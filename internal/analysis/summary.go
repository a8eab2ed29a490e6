package analysis

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/claims-triage/internal/model"
)

// CategoryCount is the number of actionable claims in one category.
type CategoryCount struct {
	Category        string `json:"category"`
	TeamName        string `json:"team_name"`
	Claims          int    `json:"claims"`
	TopPriority     int    `json:"top_priority"`
	SendToL1Monitor bool   `json:"send_to_l1_monitor"`
}

// Summary condenses a Result for display and export.
type Summary struct {
	GeneratedAt   time.Time                    `json:"generated_at"`
	BySource      map[model.CategorySource]int `json:"by_source"`
	RunID         string                       `json:"run_id"`
	Categories    []CategoryCount              `json:"categories"`
	Metrics       model.Metrics                `json:"metrics"`
	Actionable    int                          `json:"actionable"`
	NonActionable int                          `json:"non_actionable"`
}

// Summarize counts actionable claims per category and per rule source.
// Categories are ordered by claim count, then name.
func Summarize(r Result) Summary {
	s := Summary{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now(),
		Metrics:     r.Metrics,
		BySource:    make(map[model.CategorySource]int),
	}

	index := make(map[string]int)
	for _, c := range r.Claims {
		if !c.IsActionable {
			s.NonActionable++
			continue
		}
		s.Actionable++
		s.BySource[c.CategorySource]++

		i, ok := index[c.Category]
		if !ok {
			i = len(s.Categories)
			index[c.Category] = i
			s.Categories = append(s.Categories, CategoryCount{
				Category:        c.Category,
				TeamName:        c.TeamName,
				SendToL1Monitor: c.SendToL1Monitor,
				TopPriority:     c.PriorityScore,
			})
		}
		s.Categories[i].Claims++
		s.Categories[i].TopPriority = max(s.Categories[i].TopPriority, c.PriorityScore)
	}

	slices.SortStableFunc(s.Categories, func(a, b CategoryCount) int {
		if a.Claims != b.Claims {
			return b.Claims - a.Claims
		}
		if a.Category < b.Category {
			return -1
		}
		if a.Category > b.Category {
			return 1
		}
		return 0
	})

	return s
}
