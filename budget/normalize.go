package budget

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Normalize repairs a budget that came from outside the Selection store so
// that its selections hold the same rules mutations enforce:
//   - a template appears at most once per array category (first item wins)
//   - an assignment links only to a selected activity
//   - an activity is served by at most one assignment (first one wins)
//
// Each repair is logged and returned as a message. Prices are not
// recomputed; callers re-quote afterwards.
func Normalize(b *Budget) []string {
	var repairs []string
	for _, c := range []Category{CategoryMeals, CategoryActivities, CategoryTransport} {
		list := categoryItems(b, c)
		if list == nil {
			continue
		}
		kept, dropped := dedupeItems(*list)
		for _, it := range dropped {
			repairs = append(repairs, fmt.Sprintf("dropped %s item %s: template %s already selected", c, it.ID, it.TemplateID))
		}
		if len(dropped) > 0 {
			*list = kept
		}
	}

	activities := make(map[string]bool, len(b.SelectedActivities))
	for _, a := range b.SelectedActivities {
		activities[a.ID] = true
	}
	claimed := make(map[string]string)
	for i := range b.TransportAssignments {
		ta := &b.TransportAssignments[i]
		if !ta.IsLinked() {
			continue
		}
		switch owner, taken := claimed[ta.ActivityID]; {
		case !activities[ta.ActivityID]:
			repairs = append(repairs, fmt.Sprintf("unlinked transport %s: activity %s is not selected", ta.ID, ta.ActivityID))
			ta.ActivityID = ""
		case taken:
			repairs = append(repairs, fmt.Sprintf("unlinked transport %s: activity %s already served by %s", ta.ID, ta.ActivityID, owner))
			ta.ActivityID = ""
		default:
			claimed[ta.ActivityID] = ta.ID
		}
	}

	logger := log.WithField("budget_id", b.ID)
	for _, r := range repairs {
		logger.Warn(r)
	}
	return repairs
}

func categoryItems(b *Budget, c Category) *[]BudgetItem {
	switch c {
	case CategoryMeals:
		return &b.SelectedMeals
	case CategoryActivities:
		return &b.SelectedActivities
	case CategoryTransport:
		return &b.SelectedTransport
	}
	return nil
}

func dedupeItems(items []BudgetItem) (kept, dropped []BudgetItem) {
	seen := make(map[string]bool, len(items))
	kept = make([]BudgetItem, 0, len(items))
	for _, it := range items {
		if seen[it.TemplateID] {
			dropped = append(dropped, it)
			continue
		}
		seen[it.TemplateID] = true
		kept = append(kept, it)
	}
	return kept, dropped
}
