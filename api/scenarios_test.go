/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario builds the expected draft:
	- Selections are made from the default catalog
	- Transport is booked and linked where expected
	- Totals and findings match the description

These tests double as integration tests of catalog + pricing + validation.
*/
package api

import (
	"net/http"
	"testing"

	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
	"github.com/warp/party-budget/internal/clock"
)

func buildTestScenario(t *testing.T, id string) *budget.Selection {
	t.Helper()
	sel, err := BuildScenario(id, catalog.Default(), budget.WithClock(&clock.MockClock{FixedNow: testNow}))
	if err != nil {
		t.Fatalf("Failed to build %s: %v", id, err)
	}
	return sel
}

func TestScenario_WeekendClassic(t *testing.T) {
	// GIVEN: Weekend classic scenario
	// WHEN: Building it
	// THEN: 850 menu + 80 paintball + 135 bus + 900 villa

	sel := buildTestScenario(t, "weekend-classic")
	b := sel.Snapshot()

	if got := b.TotalAmount.StringFixed(2); got != "1965.00" {
		t.Errorf("Expected total 1965.00, got %s", got)
	}
	if len(b.TransportAssignments) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(b.TransportAssignments))
	}
	if b.TransportAssignments[0].ActivityID != b.SelectedActivities[0].ID {
		t.Error("Expected the bus to serve paintball")
	}
	if findings := sel.Validate(); len(findings) != 0 {
		t.Errorf("Expected no findings, got %+v", findings)
	}
}

func TestScenario_BudgetNight(t *testing.T) {
	sel := buildTestScenario(t, "budget-night")
	b := sel.Snapshot()

	// 270 tapas + 30 escape + 105 hostel (3 rooms) + 72 minivan
	if got := b.TotalAmount.StringFixed(2); got != "477.00" {
		t.Errorf("Expected total 477.00, got %s", got)
	}
	if b.TransportAssignments[0].IsLinked() {
		t.Error("Expected a standalone shuttle")
	}
}

func TestScenario_NeedsTransport(t *testing.T) {
	sel := buildTestScenario(t, "needs-transport")

	findings := sel.Validate()
	if len(findings) != 1 || findings[0].Section != budget.SectionActivities {
		t.Fatalf("Expected one activity warning, got %+v", findings)
	}
	if budget.HasErrors(findings) {
		t.Error("Expected the draft to stay closable")
	}
	if got := sel.Quote().TotalAmount.StringFixed(2); got != "1055.00" {
		t.Errorf("Expected total 1055.00, got %s", got)
	}
}

func TestScenario_Incomplete(t *testing.T) {
	sel := buildTestScenario(t, "incomplete")

	if !budget.HasErrors(sel.Validate()) {
		t.Error("Expected blocking findings")
	}
	if _, err := sel.Close(nil); err == nil {
		t.Error("Expected close to be refused")
	}
}

func TestScenario_EveryListedScenarioBuilds(t *testing.T) {
	for _, s := range scenarios {
		if _, ok := scenarioBuilders[s.ID]; !ok {
			t.Errorf("Scenario %s has no builder", s.ID)
			continue
		}
		buildTestScenario(t, s.ID)
	}
}

func TestScenario_Unknown(t *testing.T) {
	if _, err := BuildScenario("nope", catalog.Default()); err == nil {
		t.Fatal("Expected an error for an unknown scenario")
	}
}

func TestScenario_LoadOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/scenarios/current", nil)
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); body != "null\n" {
		t.Errorf("Expected no current scenario, got %s", body)
	}

	rec = ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "weekend-classic"})
	expectStatus(t, rec, http.StatusCreated)
	draft := decode[DraftDTO](t, rec)
	if draft.Quote.TotalAmount != "1965.00" {
		t.Errorf("Expected total 1965.00, got %s", draft.Quote.TotalAmount)
	}
	expectStatus(t, ts.do(t, http.MethodGet, "/api/drafts/"+draft.Budget.ID, nil), http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/scenarios/current", nil)
	if got := decode[ScenarioDTO](t, rec); got.ID != "weekend-classic" {
		t.Errorf("Expected current scenario weekend-classic, got %q", got.ID)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}), http.StatusNotFound)

	rec = ts.do(t, http.MethodGet, "/api/scenarios", nil)
	if n := len(decode[[]ScenarioDTO](t, rec)); n != len(scenarios) {
		t.Errorf("Expected %d scenarios, got %d", len(scenarios), n)
	}
}
