/*
pricing.go - The pricing engine

PURPOSE:
  Pure projection from a budget snapshot plus guest count to a cost
  breakdown and a grand total. Calling it twice with identical input
  yields identical output. It never mutates its input and never fails:
  missing prices count as zero.

ALGORITHM (per category):
  meals:       menu -> CalculatedPrice if set, else PricePerPerson x guests;
               legacy meal -> PricePerPerson x guests; then x quantity
  activities:  BasePrice x quantity (transport surcharges are NOT added,
               they come in through transport assignments only)
  transport:   sum of assignment CalculatedPrice
               + legacy items PricePerHour x hours (default 2) x quantity
  stay:        PricePerNight x nights (default 1) x ceil(guests / occupancy)
               with occupancy defaulting to 2
  extras:      max(0, extras)

ZERO-GUEST GUARD:
  guests <= 0 prices nothing but extras. This is not an error.

ROUNDING:
  Each category is rounded to the cent once, after its own accumulation.
  The grand total is the sum of the rounded categories, so the breakdown
  always adds up to the total.

SEE ALSO:
  - selection.go: Calls Calculate after every mutation
*/
package budget

import (
	"github.com/shopspring/decimal"
)

const (
	// DefaultTransportHours is the estimate for legacy transport items.
	DefaultTransportHours = 2
	// DefaultRoomOccupancy applies when an accommodation has no capacity.
	DefaultRoomOccupancy = 2
	// DefaultNights applies when a stay has no nights customization.
	DefaultNights = 1
)

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input is everything the pricing engine looks at.
type Input struct {
	Meals       []BudgetItem
	Activities  []BudgetItem
	Transport   []BudgetItem // legacy
	Assignments []TransportAssignment
	Stay        *BudgetItem
	GuestCount  int
	Extras      decimal.Decimal
}

// Breakdown holds the per-category subtotals.
type Breakdown struct {
	Meals      decimal.Decimal `json:"meals"`
	Activities decimal.Decimal `json:"activities"`
	Transport  decimal.Decimal `json:"transport"`
	Stay       decimal.Decimal `json:"stay"`
	Extras     decimal.Decimal `json:"extras"`
}

// Sum adds the categories.
func (b Breakdown) Sum() decimal.Decimal {
	return b.Meals.Add(b.Activities).Add(b.Transport).Add(b.Stay).Add(b.Extras)
}

// Equal compares numerically, ignoring decimal exponent.
func (b Breakdown) Equal(o Breakdown) bool {
	return b.Meals.Equal(o.Meals) && b.Activities.Equal(o.Activities) &&
		b.Transport.Equal(o.Transport) && b.Stay.Equal(o.Stay) && b.Extras.Equal(o.Extras)
}

// Result is the priced projection.
type Result struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Breakdown   Breakdown       `json:"breakdown"`
}

// InputFromBudget extracts the pricing input of a budget.
func InputFromBudget(b Budget) Input {
	return Input{
		Meals:       b.SelectedMeals,
		Activities:  b.SelectedActivities,
		Transport:   b.SelectedTransport,
		Assignments: b.TransportAssignments,
		Stay:        b.SelectedStay,
		GuestCount:  b.GuestCount,
		Extras:      b.Extras,
	}
}

// =============================================================================
// CALCULATE
// =============================================================================

// Calculate prices the input.
func Calculate(in Input) Result {
	extras := RoundCents(clampZero(in.Extras))

	if in.GuestCount <= 0 {
		return Result{
			TotalAmount: extras,
			Breakdown: Breakdown{
				Meals:      decimal.Zero,
				Activities: decimal.Zero,
				Transport:  decimal.Zero,
				Stay:       decimal.Zero,
				Extras:     extras,
			},
		}
	}

	guests := decimal.NewFromInt(int64(in.GuestCount))

	bd := Breakdown{
		Meals:      RoundCents(mealsCost(in.Meals, guests)),
		Activities: RoundCents(activitiesCost(in.Activities)),
		Transport:  RoundCents(transportCost(in.Transport, in.Assignments)),
		Stay:       RoundCents(stayCost(in.Stay, in.GuestCount)),
		Extras:     extras,
	}

	return Result{TotalAmount: RoundCents(bd.Sum()), Breakdown: bd}
}

func mealsCost(items []BudgetItem, guests decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(mealPrice(it, guests).Mul(it.quantity()))
	}
	return total
}

func mealPrice(it BudgetItem, guests decimal.Decimal) decimal.Decimal {
	switch it.Template.Kind {
	case KindMenu:
		if it.CalculatedPrice != nil {
			return *it.CalculatedPrice
		}
		if it.Template.Menu == nil {
			return decimal.Zero
		}
		return it.Template.Menu.PricePerPerson.Mul(guests)
	case KindMeal:
		if it.Template.Meal == nil {
			return decimal.Zero
		}
		return it.Template.Meal.PricePerPerson.Mul(guests)
	}
	return decimal.Zero
}

func activitiesCost(items []BudgetItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Template.Activity == nil {
			continue
		}
		total = total.Add(it.Template.Activity.BasePrice.Mul(it.quantity()))
	}
	return total
}

func transportCost(legacy []BudgetItem, assignments []TransportAssignment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assignments {
		total = total.Add(a.CalculatedPrice)
	}
	for _, it := range legacy {
		if it.Template.Transport == nil {
			continue
		}
		hours := decimal.NewFromInt(DefaultTransportHours)
		if d := it.Customizations.Duration; d != nil && d.IsPositive() {
			hours = *d
		}
		total = total.Add(it.Template.Transport.PricePerHour.Mul(hours).Mul(it.quantity()))
	}
	return total
}

func stayCost(stay *BudgetItem, guestCount int) decimal.Decimal {
	if stay == nil || stay.Template.Accommodation == nil {
		return decimal.Zero
	}
	acc := stay.Template.Accommodation

	nights := stay.Customizations.Nights
	if nights <= 0 {
		nights = DefaultNights
	}

	rooms := RoomsNeeded(guestCount, acc.MaxCapacity)
	return acc.PricePerNight.
		Mul(decimal.NewFromInt(int64(nights))).
		Mul(decimal.NewFromInt(int64(rooms)))
}

// RoomsNeeded is ceil(guests / occupancy), occupancy defaulting to 2.
func RoomsNeeded(guestCount, occupancy int) int {
	if guestCount <= 0 {
		return 0
	}
	if occupancy <= 0 {
		occupancy = DefaultRoomOccupancy
	}
	return (guestCount + occupancy - 1) / occupancy
}

// =============================================================================
// TRANSPORT QUOTE - Used once, when an assignment is created
// =============================================================================

// QuoteTransport prices a vehicle for a trip. Per-hour vehicles cost
// PricePerHour x duration, per-guest vehicles PricePerGuest x guests.
// A template with no basis falls back to per hour.
func QuoteTransport(t Template, guestCount int, duration decimal.Decimal) decimal.Decimal {
	if t.Transport == nil {
		return decimal.Zero
	}
	var price decimal.Decimal
	switch t.Transport.Basis {
	case BasisPerGuest:
		price = t.Transport.PricePerGuest.Mul(decimal.NewFromInt(int64(guestCount)))
	default:
		price = t.Transport.PricePerHour.Mul(clampZero(duration))
	}
	return RoundCents(clampZero(price))
}
