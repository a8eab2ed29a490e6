package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/claims-triage/internal/model"
)

// SortKey names a work-queue column.
type SortKey string

// Sort keys accepted by WorkQueue.
const (
	SortByPriority   SortKey = "priorityScore"
	SortByCategory   SortKey = "category"
	SortByTeam       SortKey = "team_name"
	SortByClaimID    SortKey = "claimId"
	SortByAge        SortKey = "age"
	SortByNetPayment SortKey = "netPayment"
	SortByProvider   SortKey = "providerName"
)

// SortKeys lists the supported sort keys.
var SortKeys = []SortKey{
	SortByPriority, SortByCategory, SortByTeam, SortByClaimID, SortByAge, SortByNetPayment, SortByProvider,
}

// ParseSortKey accepts a sort key name; the empty string selects priority.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortByPriority, nil
	}
	for _, k := range SortKeys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// QueueOptions filters and orders a work queue.
type QueueOptions struct {
	Category  string
	SortKey   SortKey
	Ascending bool
}

// WorkQueue returns the actionable claims, optionally limited to one
// category, ordered descending by the chosen column (priority when unset)
// unless Ascending is set. Equal keys keep input order.
func WorkQueue(claims []model.ProcessedClaim, opts QueueOptions) []model.ProcessedClaim {
	queue := make([]model.ProcessedClaim, 0, len(claims))
	for _, c := range claims {
		if !c.IsActionable {
			continue
		}
		if opts.Category != "" && c.Category != opts.Category {
			continue
		}
		queue = append(queue, c)
	}

	key := opts.SortKey
	if key == "" {
		key = SortByPriority
	}
	compare := comparator(key)

	slices.SortStableFunc(queue, func(a, b model.ProcessedClaim) int {
		if opts.Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})

	return queue
}

func comparator(key SortKey) func(a, b model.ProcessedClaim) int {
	switch key {
	case SortByCategory:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.Category, b.Category) }
	case SortByTeam:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.TeamName, b.TeamName) }
	case SortByClaimID:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.ClaimID, b.ClaimID) }
	case SortByAge:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.Age, b.Age) }
	case SortByNetPayment:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.NetPayment, b.NetPayment) }
	case SortByProvider:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.ProviderName, b.ProviderName) }
	default:
		return func(a, b model.ProcessedClaim) int { return cmp.Compare(a.PriorityScore, b.PriorityScore) }
	}
}

// Categories lists the distinct categories of actionable claims, sorted.
func Categories(claims []model.ProcessedClaim) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range claims {
		if !c.IsActionable {
			continue
		}
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	slices.Sort(out)
	return out
}
