package budget

import (
	"fmt"
	"time"
)

// =============================================================================
// FINDINGS
// =============================================================================

// Severity grades a finding. Errors block close, warnings never do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Section groups findings the way the editor groups its tabs.
type Section string

const (
	SectionBasic      Section = "basic"
	SectionMeals      Section = "meals"
	SectionActivities Section = "activities"
	SectionTransport  Section = "transport"
	SectionGeneral    Section = "general"
)

// Finding is one validation result.
type Finding struct {
	Section  Section  `json:"section"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// HasErrors reports whether any finding is blocking.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATE
// =============================================================================

// Validate checks a budget as of now. The result is ordered: basic fields
// first, then per-section advice, then the empty-budget warning.
func Validate(b Budget, now time.Time) []Finding {
	var findings []Finding
	add := func(section Section, severity Severity, format string, args ...any) {
		findings = append(findings, Finding{
			Section:  section,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	if b.ClientName == "" {
		add(SectionBasic, SeverityError, "Client name is required")
	}

	if b.EventDate.IsZero() {
		add(SectionBasic, SeverityError, "Event date is required")
	} else if startOfDay(b.EventDate).Before(startOfDay(now.In(b.EventDate.Location()))) {
		add(SectionBasic, SeverityWarning, "Event date is in the past")
	}

	if b.GuestCount <= 0 {
		add(SectionBasic, SeverityError, "Guest count must be greater than zero")
	}

	hasTransport := b.HasTransport()
	for _, act := range b.SelectedActivities {
		if act.Template.RequiresTransport() && !act.IncludeTransport && !hasTransport {
			add(SectionActivities, SeverityWarning,
				"Activity %q requires transport; consider adding a transport option", act.Template.Name)
		}
	}

	if b.GuestCount > 0 {
		for _, meal := range b.SelectedMeals {
			m := meal.Template.Menu
			if meal.Template.Kind != KindMenu || m == nil {
				continue
			}
			if (m.MinPeople > 0 && b.GuestCount < m.MinPeople) || (m.MaxPeople > 0 && b.GuestCount > m.MaxPeople) {
				add(SectionMeals, SeverityWarning,
					"Menu %q is designed for %s guests, budget has %d",
					meal.Template.Name, guestRange(m.MinPeople, m.MaxPeople), b.GuestCount)
			}
		}
	}

	for _, a := range b.TransportAssignments {
		if a.Transport.Transport == nil {
			continue
		}
		if c := a.Transport.Transport.Capacity; c > 0 && a.GuestCount > c {
			add(SectionTransport, SeverityWarning,
				"Transport %q seats %d but carries %d guests", a.Transport.Name, c, a.GuestCount)
		}
	}

	if b.ItemCount() == 0 {
		add(SectionGeneral, SeverityWarning, "Budget has no selected items")
	}

	return findings
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func guestRange(lo, hi int) string {
	switch {
	case lo > 0 && hi > 0:
		return fmt.Sprintf("%d to %d", lo, hi)
	case lo > 0:
		return fmt.Sprintf("at least %d", lo)
	default:
		return fmt.Sprintf("at most %d", hi)
	}
}
