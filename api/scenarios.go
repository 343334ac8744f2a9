/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built drafts assembled from the default catalog. Each
	scenario shows one part of the quote engine: linked transport, room
	counting, warnings, blocking findings.

AVAILABLE SCENARIOS:

	weekend-classic: BBQ menu, paintball with a linked party bus, villa
	budget-night:    Tapas, escape room, hostel, standalone minivan
	needs-transport: Karting without any transport (warning only)
	incomplete:      No client name or guests (close is blocked)

HOW SCENARIOS WORK:
 1. Start a new draft
 2. Set the basic fields, event date one month ahead
 3. Select templates from the catalog
 4. Book and link transport

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "weekend-classic"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create a builder function: buildXxx(sel, cat)
 3. Register it in scenarioBuilders

SEE ALSO:
  - handlers.go: Draft handlers
  - catalog/presets.go: Template ids used below
*/
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ErrUnknownScenario is returned for scenario ids not listed below.
var ErrUnknownScenario = errors.New("unknown scenario")

var scenarios = []ScenarioDTO{
	{
		ID:          "weekend-classic",
		Name:        "Weekend Classic",
		Description: "10 guests: BBQ menu, paintball with a linked party bus, villa for 2 nights",
	},
	{
		ID:          "budget-night",
		Name:        "Budget Night",
		Description: "6 guests: tapas, escape room, hostel rooms and a minivan shuttle",
	},
	{
		ID:          "needs-transport",
		Name:        "Needs Transport",
		Description: "Karting selected without transport: closable, with a warning",
	},
	{
		ID:          "incomplete",
		Name:        "Incomplete",
		Description: "Menu only, no client name or guests: close is blocked",
	},
}

type scenarioBuilder func(sel *budget.Selection, cat *catalog.Catalog, now time.Time) error

var scenarioBuilders = map[string]scenarioBuilder{
	"weekend-classic": buildWeekendClassic,
	"budget-night":    buildBudgetNight,
	"needs-transport": buildNeedsTransport,
	"incomplete":      buildIncomplete,
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario builds a demo draft.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sel, err := BuildScenario(req.ScenarioID, h.Catalog, budget.WithClock(h.Clock))
	if err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			writeError(w, http.StatusNotFound, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.Drafts.Put(sel, h.Clock.Now())
	h.currentScenario = req.ScenarioID
	log.WithFields(log.Fields{"scenario": req.ScenarioID, "budget_id": sel.ID()}).Info("scenario loaded")
	writeJSON(w, http.StatusCreated, toDraftDTO(sel))
}

// BuildScenario assembles the named demo draft from the catalog.
func BuildScenario(id string, cat *catalog.Catalog, opts ...budget.Option) (*budget.Selection, error) {
	build, ok := scenarioBuilders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}
	sel := budget.NewSelection(opts...)
	if err := build(sel, cat, sel.Snapshot().CreatedAt); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", id, err)
	}
	return sel, nil
}

// =============================================================================
// BUILDERS
// =============================================================================

// scenarioSteps applies steps in order and stops at the first error.
func scenarioSteps(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func basics(sel *budget.Selection, client string, eventDate time.Time, guests int) func() error {
	return func() error {
		return scenarioSteps(
			func() error { return sel.UpdateField(budget.FieldClientName, client) },
			func() error { return sel.UpdateField(budget.FieldEventDate, eventDate) },
			func() error { return sel.UpdateField(budget.FieldGuestCount, guests) },
		)
	}
}

func selectTemplate(sel *budget.Selection, cat *catalog.Catalog, category budget.Category, templateID string, item *budget.BudgetItem) func() error {
	return func() error {
		tpl, err := cat.Lookup(templateID)
		if err != nil {
			return err
		}
		added, err := sel.AddItem(category, tpl)
		if err != nil {
			return err
		}
		if item != nil {
			*item = added
		}
		return nil
	}
}

func buildWeekendClassic(sel *budget.Selection, cat *catalog.Catalog, now time.Time) error {
	var paintball, villa budget.BudgetItem
	return scenarioSteps(
		basics(sel, "Alex Martin", now.AddDate(0, 1, 0), 10),
		selectTemplate(sel, cat, budget.CategoryMeals, "menu-bbq", nil),
		selectTemplate(sel, cat, budget.CategoryActivities, "act-paintball", &paintball),
		selectTemplate(sel, cat, budget.CategoryStay, "stay-villa", &villa),
		func() error {
			return sel.UpdateItem(budget.CategoryStay, villa.ID, budget.ItemUpdate{
				Customizations: &budget.Customizations{Nights: 2},
			})
		},
		func() error {
			bus, err := cat.Lookup("tr-partybus")
			if err != nil {
				return err
			}
			_, err = sel.AddAssignment(budget.AssignmentInput{
				Transport:  bus,
				ActivityID: paintball.ID,
				GuestCount: 10,
				Duration:   decimal.NewFromInt(3),
				Pickup:     "Villa",
				Dropoff:    "Paintball field",
			})
			return err
		},
	)
}

func buildBudgetNight(sel *budget.Selection, cat *catalog.Catalog, now time.Time) error {
	return scenarioSteps(
		basics(sel, "Sam Lee", now.AddDate(0, 1, 7), 6),
		selectTemplate(sel, cat, budget.CategoryMeals, "menu-tapas", nil),
		selectTemplate(sel, cat, budget.CategoryActivities, "act-escape", nil),
		selectTemplate(sel, cat, budget.CategoryStay, "stay-hostel", nil),
		func() error {
			van, err := cat.Lookup("tr-minivan")
			if err != nil {
				return err
			}
			_, err = sel.AddAssignment(budget.AssignmentInput{Transport: van, GuestCount: 6})
			return err
		},
	)
}

func buildNeedsTransport(sel *budget.Selection, cat *catalog.Catalog, now time.Time) error {
	var karting budget.BudgetItem
	noTransport := false
	return scenarioSteps(
		basics(sel, "Jordan Diaz", now.AddDate(0, 2, 0), 8),
		selectTemplate(sel, cat, budget.CategoryMeals, "menu-gourmet", nil),
		selectTemplate(sel, cat, budget.CategoryActivities, "act-karting", &karting),
		func() error {
			return sel.UpdateItem(budget.CategoryActivities, karting.ID, budget.ItemUpdate{
				IncludeTransport: &noTransport,
			})
		},
	)
}

func buildIncomplete(sel *budget.Selection, cat *catalog.Catalog, _ time.Time) error {
	return selectTemplate(sel, cat, budget.CategoryMeals, "menu-bbq", nil)()
}
