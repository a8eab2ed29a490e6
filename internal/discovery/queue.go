package discovery

import (
	"fmt"

	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// Queue tracks category assignments for one list of discovered items.
type Queue struct {
	ruleType model.RuleType
	items    []model.UncategorizedItem
}

// NewQueue copies items into a triage queue for the given rule type.
func NewQueue(ruleType model.RuleType, items []model.UncategorizedItem) *Queue {
	return &Queue{
		ruleType: ruleType,
		items:    append([]model.UncategorizedItem(nil), items...),
	}
}

// RuleType is the kind of rule the queue will produce.
func (q *Queue) RuleType() model.RuleType { return q.ruleType }

// Len returns the number of items.
func (q *Queue) Len() int { return len(q.items) }

// Item returns the i-th item.
func (q *Queue) Item(i int) model.UncategorizedItem { return q.items[i] }

// Items returns a copy of all items with their current assignments.
func (q *Queue) Items() []model.UncategorizedItem {
	return append([]model.UncategorizedItem(nil), q.items...)
}

// Assign proposes categoryID for item i.
func (q *Queue) Assign(i, categoryID int) error {
	if i < 0 || i >= len(q.items) {
		return fmt.Errorf("item %d out of range [0,%d)", i, len(q.items))
	}
	if categoryID <= 0 {
		return fmt.Errorf("invalid category id %d", categoryID)
	}
	id := categoryID
	q.items[i].ProposedCategoryID = &id
	return nil
}

// Clear removes the proposal for item i.
func (q *Queue) Clear(i int) error {
	if i < 0 || i >= len(q.items) {
		return fmt.Errorf("item %d out of range [0,%d)", i, len(q.items))
	}
	q.items[i].ProposedCategoryID = nil
	return nil
}

// Pending returns how many items still have no category.
func (q *Queue) Pending() int {
	n := 0
	for _, it := range q.items {
		if it.ProposedCategoryID == nil {
			n++
		}
	}
	return n
}

// Assignments returns the assigned items in queue order, ready to persist.
func (q *Queue) Assignments() []service.RuleAssignment {
	var out []service.RuleAssignment
	for _, it := range q.items {
		if it.ProposedCategoryID == nil {
			continue
		}
		out = append(out, service.RuleAssignment{Text: it.Text, CategoryID: *it.ProposedCategoryID})
	}
	return out
}
