package budget_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/internal/clock"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

func money(v float64) decimal.Decimal { return budget.NewMoney(v) }

// assertMoney compares numerically, so 850 and 850.00 are equal.
func assertMoney(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, expected, actual.StringFixed(2), msgAndArgs...)
}

func menu(id string, ppp float64) budget.Template {
	return budget.Template{
		ID:   id,
		Kind: budget.KindMenu,
		Name: "Menu " + id,
		Menu: &budget.MenuDetails{PricePerPerson: money(ppp)},
	}
}

func meal(id string, ppp float64) budget.Template {
	return budget.Template{
		ID:   id,
		Kind: budget.KindMeal,
		Name: "Meal " + id,
		Meal: &budget.MealDetails{PricePerPerson: money(ppp)},
	}
}

func activity(id string, base float64, transportCost float64) budget.Template {
	return budget.Template{
		ID:   id,
		Kind: budget.KindActivity,
		Name: "Activity " + id,
		Activity: &budget.ActivityDetails{
			BasePrice:         money(base),
			TransportRequired: transportCost > 0,
			TransportCost:     money(transportCost),
		},
	}
}

func hourlyVehicle(id string, pph float64, capacity int) budget.Template {
	return budget.Template{
		ID:   id,
		Kind: budget.KindTransport,
		Name: "Vehicle " + id,
		Transport: &budget.TransportDetails{
			Basis:        budget.BasisPerHour,
			PricePerHour: money(pph),
			Capacity:     capacity,
		},
	}
}

func seatVehicle(id string, ppg float64, capacity int) budget.Template {
	return budget.Template{
		ID:   id,
		Kind: budget.KindTransport,
		Name: "Shuttle " + id,
		Transport: &budget.TransportDetails{
			Basis:         budget.BasisPerGuest,
			PricePerGuest: money(ppg),
			Capacity:      capacity,
		},
	}
}

func accommodation(id string, ppn float64, roomCapacity int) budget.Template {
	return budget.Template{
		ID:   id,
		Kind: budget.KindAccommodation,
		Name: "Stay " + id,
		Accommodation: &budget.AccommodationDetails{
			PricePerNight: money(ppn),
			MaxCapacity:   roomCapacity,
		},
	}
}

// sequentialIDs returns a generator producing id-1, id-2, ...
func sequentialIDs() budget.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestSelection(t *testing.T) (*budget.Selection, *clock.MockClock) {
	t.Helper()
	clk := &clock.MockClock{FixedNow: testNow}
	sel := budget.NewSelection(budget.WithClock(clk), budget.WithIDGenerator(sequentialIDs()))
	return sel, clk
}

// readySelection has every basic field set so it validates cleanly.
func readySelection(t *testing.T, guests int) (*budget.Selection, *clock.MockClock) {
	t.Helper()
	sel, clk := newTestSelection(t)
	if err := sel.UpdateField(budget.FieldClientName, "Robin"); err != nil {
		t.Fatal(err)
	}
	if err := sel.UpdateField(budget.FieldEventDate, "2026-06-20"); err != nil {
		t.Fatal(err)
	}
	if err := sel.UpdateField(budget.FieldGuestCount, guests); err != nil {
		t.Fatal(err)
	}
	return sel, clk
}

func intPtr(v int) *int { return &v }
