package budget_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/party-budget/budget"
)

func item(tpl budget.Template) budget.BudgetItem {
	return budget.BudgetItem{ID: "item-" + tpl.ID, TemplateID: tpl.ID, Template: tpl, Quantity: 1}
}

// =============================================================================
// PER-CATEGORY EXAMPLES
// =============================================================================

func TestCalculate_MenuPerPerson(t *testing.T) {
	// GIVEN: A menu at 85 per person and 10 guests
	// WHEN: Pricing
	// THEN: Meals cost 850.00

	r := budget.Calculate(budget.Input{
		Meals:      []budget.BudgetItem{item(menu("bbq", 85))},
		GuestCount: 10,
	})

	assertMoney(t, "850.00", r.Breakdown.Meals)
	assertMoney(t, "850.00", r.TotalAmount)
}

func TestCalculate_MenuCalculatedPriceOverrides(t *testing.T) {
	// GIVEN: A menu with an explicit calculated price
	it := item(menu("bbq", 85))
	override := money(500)
	it.CalculatedPrice = &override
	it.Quantity = 2

	r := budget.Calculate(budget.Input{Meals: []budget.BudgetItem{it}, GuestCount: 10})

	// THEN: The override replaces ppp x guests, then quantity applies
	assertMoney(t, "1000.00", r.Breakdown.Meals)
}

func TestCalculate_LegacyMealIgnoresCalculatedPrice(t *testing.T) {
	it := item(meal("brunch", 25))
	override := money(1)
	it.CalculatedPrice = &override

	r := budget.Calculate(budget.Input{Meals: []budget.BudgetItem{it}, GuestCount: 4})

	assertMoney(t, "100.00", r.Breakdown.Meals)
}

func TestCalculate_ActivityTransportCostNotFolded(t *testing.T) {
	// GIVEN: Paintball at 80 requiring transport costing 25, no assignment
	// WHEN: Pricing
	// THEN: Activities cost exactly 80.00 and transport nothing

	r := budget.Calculate(budget.Input{
		Activities: []budget.BudgetItem{item(activity("paintball", 80, 25))},
		GuestCount: 10,
	})

	assertMoney(t, "80.00", r.Breakdown.Activities)
	assertMoney(t, "0.00", r.Breakdown.Transport)
	assertMoney(t, "80.00", r.TotalAmount)
}

func TestCalculate_ActivityQuantity(t *testing.T) {
	it := item(activity("karting", 95, 0))
	it.Quantity = 3

	r := budget.Calculate(budget.Input{Activities: []budget.BudgetItem{it}, GuestCount: 1})

	assertMoney(t, "285.00", r.Breakdown.Activities)
}

func TestCalculate_StayRooms(t *testing.T) {
	// GIVEN: 150 per night, 4 per room, 10 guests, 2 nights
	// WHEN: Pricing
	// THEN: ceil(10/4) = 3 rooms, 150 x 2 x 3 = 900.00

	stay := item(accommodation("villa", 150, 4))
	stay.Customizations.Nights = 2

	r := budget.Calculate(budget.Input{Stay: &stay, GuestCount: 10})

	assertMoney(t, "900.00", r.Breakdown.Stay)
}

func TestCalculate_StayDefaults(t *testing.T) {
	// GIVEN: No capacity and no nights set
	stay := item(accommodation("hostel", 35, 0))

	r := budget.Calculate(budget.Input{Stay: &stay, GuestCount: 5})

	// THEN: Occupancy 2 gives 3 rooms for one night
	assertMoney(t, "105.00", r.Breakdown.Stay)
}

func TestCalculate_TransportSumsAssignmentsAndLegacy(t *testing.T) {
	// GIVEN: One assignment priced at 135 and one legacy item at 45/h
	legacy := item(hourlyVehicle("bus", 45, 20))
	fiveHours := decimal.NewFromInt(5)
	limo := item(hourlyVehicle("limo", 100, 8))
	limo.Customizations.Duration = &fiveHours

	r := budget.Calculate(budget.Input{
		Transport:   []budget.BudgetItem{legacy, limo},
		Assignments: []budget.TransportAssignment{{ID: "a1", CalculatedPrice: money(135)}},
		GuestCount:  10,
	})

	// THEN: 135 + 45 x 2 (default hours) + 100 x 5
	assertMoney(t, "725.00", r.Breakdown.Transport)
}

func TestRoomsNeeded(t *testing.T) {
	assert.Equal(t, 3, budget.RoomsNeeded(10, 4))
	assert.Equal(t, 1, budget.RoomsNeeded(1, 4))
	assert.Equal(t, 2, budget.RoomsNeeded(4, 0))
	assert.Equal(t, 0, budget.RoomsNeeded(0, 4))
}

func TestQuoteTransport(t *testing.T) {
	assertMoney(t, "135.00", budget.QuoteTransport(hourlyVehicle("bus", 45, 20), 10, decimal.NewFromInt(3)))
	assertMoney(t, "72.00", budget.QuoteTransport(seatVehicle("van", 12, 9), 6, decimal.Zero))
	assertMoney(t, "0.00", budget.QuoteTransport(hourlyVehicle("bus", 45, 20), 10, decimal.NewFromInt(-2)))
	assertMoney(t, "0.00", budget.QuoteTransport(menu("bbq", 85), 10, decimal.NewFromInt(3)))
}

// =============================================================================
// GUARDS AND ROUNDING
// =============================================================================

func TestCalculate_ZeroGuestGuard(t *testing.T) {
	stay := item(accommodation("villa", 150, 4))
	in := budget.Input{
		Meals:       []budget.BudgetItem{item(menu("bbq", 85))},
		Activities:  []budget.BudgetItem{item(activity("paintball", 80, 25))},
		Assignments: []budget.TransportAssignment{{ID: "a1", CalculatedPrice: money(135)}},
		Stay:        &stay,
		Extras:      money(40),
	}

	for _, guests := range []int{0, -3} {
		in.GuestCount = guests
		r := budget.Calculate(in)

		assertMoney(t, "0.00", r.Breakdown.Meals)
		assertMoney(t, "0.00", r.Breakdown.Activities)
		assertMoney(t, "0.00", r.Breakdown.Transport)
		assertMoney(t, "0.00", r.Breakdown.Stay)
		assertMoney(t, "40.00", r.Breakdown.Extras)
		assertMoney(t, "40.00", r.TotalAmount, "guests=%d", guests)
	}
}

func TestCalculate_NegativeExtrasClamped(t *testing.T) {
	// GIVEN: The same selection with extras -50 and extras 0
	in := budget.Input{Meals: []budget.BudgetItem{item(menu("bbq", 85))}, GuestCount: 10}

	in.Extras = money(-50)
	negative := budget.Calculate(in)
	in.Extras = decimal.Zero
	zero := budget.Calculate(in)

	// THEN: Negative extras never lower the total
	assertMoney(t, "0.00", negative.Breakdown.Extras)
	assert.True(t, negative.TotalAmount.Equal(zero.TotalAmount))
}

func TestCalculate_RoundsOnce(t *testing.T) {
	// GIVEN: 33.3333 per person for 10 guests
	r := budget.Calculate(budget.Input{
		Meals:      []budget.BudgetItem{item(menu("m", 33.3333))},
		GuestCount: 10,
	})
	assertMoney(t, "333.33", r.Breakdown.Meals)
	assert.Equal(t, "333.33", r.Breakdown.Meals.String())

	r = budget.Calculate(budget.Input{
		Meals:      []budget.BudgetItem{item(menu("m", 3.3333))},
		GuestCount: 10,
	})
	assert.Equal(t, "33.33", r.Breakdown.Meals.String())
}

func TestCalculate_RoundingDoesNotCompound(t *testing.T) {
	// GIVEN: A draft priced once
	sel, _ := readySelection(t, 10)
	_, err := sel.AddItem(budget.CategoryMeals, menu("m", 33.3333))
	require.NoError(t, err)
	first := sel.Quote()

	// WHEN: Recomputing many times through unrelated mutations
	for i := 0; i < 5; i++ {
		require.NoError(t, sel.UpdateField(budget.FieldClientName, "Robin"))
	}

	// THEN: Nothing drifts
	assert.True(t, first.Breakdown.Equal(sel.Quote().Breakdown))
	assertMoney(t, "333.33", sel.Quote().TotalAmount)
}

func TestCalculate_TotalMatchesBreakdown(t *testing.T) {
	stay := item(accommodation("villa", 99.995, 3))
	r := budget.Calculate(budget.Input{
		Meals:       []budget.BudgetItem{item(menu("a", 10.005)), item(meal("b", 0.333))},
		Activities:  []budget.BudgetItem{item(activity("c", 19.999, 0))},
		Assignments: []budget.TransportAssignment{{ID: "t", CalculatedPrice: money(12.345)}},
		Stay:        &stay,
		GuestCount:  7,
		Extras:      money(0.015),
	})

	assert.True(t, r.TotalAmount.Equal(r.Breakdown.Sum()))
}

func TestCalculate_Idempotent(t *testing.T) {
	stay := item(accommodation("villa", 150, 4))
	in := budget.Input{
		Meals:      []budget.BudgetItem{item(menu("bbq", 85))},
		Activities: []budget.BudgetItem{item(activity("paintball", 80, 25))},
		Stay:       &stay,
		GuestCount: 10,
		Extras:     money(12.5),
	}

	a := budget.Calculate(in)
	b := budget.Calculate(in)

	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
	assert.True(t, a.Breakdown.Equal(b.Breakdown))
}

func TestCalculate_MissingDetailsCountAsZero(t *testing.T) {
	broken := budget.BudgetItem{ID: "x", TemplateID: "x", Template: budget.Template{ID: "x", Kind: budget.KindMenu}}
	stay := budget.BudgetItem{ID: "s", TemplateID: "s", Template: budget.Template{ID: "s", Kind: budget.KindAccommodation}}

	r := budget.Calculate(budget.Input{
		Meals:      []budget.BudgetItem{broken},
		Activities: []budget.BudgetItem{{ID: "a", Template: budget.Template{ID: "a", Kind: budget.KindActivity}}},
		Stay:       &stay,
		GuestCount: 5,
	})

	assertMoney(t, "0.00", r.TotalAmount)
}
