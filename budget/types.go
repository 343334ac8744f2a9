/*
Package budget provides the party quote engine.

PURPOSE:
  This package contains the data model, the pricing engine and the
  selection workflow used to assemble a price quote ("budget") for a
  bachelor/bachelorette party. An operator picks menus, activities,
  transport and accommodation from catalog templates, customizes them,
  and the engine derives a per-category breakdown and a grand total.

KEY CONCEPTS IN THIS FILE (types.go):
  - Template: Immutable catalog entry, a tagged union over five kinds
  - Kind: Explicit discriminant the pricing engine dispatches on
  - Category: Which selection slot an item lives in (meals, activities, ...)
  - Money helpers: decimal based, rounded once at the cent

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64, for prices
  2. Isolation: Selected templates are deep clones of catalog entries
  3. Explicit tags: No structural duck-typing to tell a menu from a meal

USAGE:
  tpl := budget.Template{
      ID:   "menu-bbq",
      Kind: budget.KindMenu,
      Name: "BBQ Night",
      Menu: &budget.MenuDetails{PricePerPerson: budget.NewMoney(85)},
  }

SEE ALSO:
  - budget.go: BudgetItem, TransportAssignment and Budget aggregate
  - pricing.go: Calculate, the pure pricing projection
  - selection.go: Selection, the mutable draft
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// NewMoney builds a decimal amount from a float literal.
func NewMoney(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// RoundCents rounds half away from zero at the cent.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// clampZero returns d, or zero when d is negative.
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// CATEGORIES
// =============================================================================

// Category names a selection slot of the budget.
type Category string

const (
	CategoryMeals      Category = "meals"
	CategoryActivities Category = "activities"
	CategoryTransport  Category = "transport"
	CategoryStay       Category = "stay"
)

// ParseCategory maps a string onto a known category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryMeals, CategoryActivities, CategoryTransport, CategoryStay:
		return c, nil
	}
	return "", &CategoryError{Category: Category(s)}
}

// Accepts reports whether templates of kind k may be selected in c.
func (c Category) Accepts(k Kind) bool {
	switch c {
	case CategoryMeals:
		return k == KindMenu || k == KindMeal
	case CategoryActivities:
		return k == KindActivity
	case CategoryTransport:
		return k == KindTransport
	case CategoryStay:
		return k == KindAccommodation
	}
	return false
}

// =============================================================================
// TEMPLATE - Tagged union over the catalog kinds
// =============================================================================

// Kind is the discriminant of Template.
type Kind string

const (
	KindMenu          Kind = "menu"
	KindMeal          Kind = "meal" // legacy meal template, no sub-items
	KindActivity      Kind = "activity"
	KindTransport     Kind = "transport"
	KindAccommodation Kind = "accommodation"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMenu, KindMeal, KindActivity, KindTransport, KindAccommodation:
		return true
	}
	return false
}

// Template is an immutable catalog entry. Exactly one of the detail
// pointers is set, the one matching Kind.
type Template struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Menu          *MenuDetails          `json:"menu,omitempty"`
	Meal          *MealDetails          `json:"meal,omitempty"`
	Activity      *ActivityDetails      `json:"activity,omitempty"`
	Transport     *TransportDetails     `json:"transport,omitempty"`
	Accommodation *AccommodationDetails `json:"accommodation,omitempty"`
}

// MenuDetails prices a catering menu per person. Items are display only.
type MenuDetails struct {
	PricePerPerson decimal.Decimal `json:"price_per_person"`
	MinPeople      int             `json:"min_people,omitempty"`
	MaxPeople      int             `json:"max_people,omitempty"`
	Items          []MenuItem      `json:"items,omitempty"`
}

// MenuItem is one dish of a menu.
type MenuItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
}

// MealDetails is the legacy per-person meal template.
type MealDetails struct {
	PricePerPerson decimal.Decimal `json:"price_per_person"`
}

// ActivityDetails prices an activity as a flat fee. TransportCost is
// informative: it is never folded into the activity price.
type ActivityDetails struct {
	BasePrice         decimal.Decimal `json:"base_price"`
	TransportRequired bool            `json:"transport_required,omitempty"`
	TransportCost     decimal.Decimal `json:"transport_cost,omitempty"`
	DurationHours     decimal.Decimal `json:"duration_hours,omitempty"`
	Location          string          `json:"location,omitempty"`
}

// TransportBasis tells how a vehicle is billed.
type TransportBasis string

const (
	BasisPerHour  TransportBasis = "per_hour"
	BasisPerGuest TransportBasis = "per_guest"
)

// TransportDetails describes a vehicle. Capacity is a hard passenger limit.
type TransportDetails struct {
	Basis         TransportBasis  `json:"basis"`
	PricePerHour  decimal.Decimal `json:"price_per_hour,omitempty"`
	PricePerGuest decimal.Decimal `json:"price_per_guest,omitempty"`
	Capacity      int             `json:"capacity"`
}

// AccommodationDetails prices rooms per night. MaxCapacity is the
// occupancy of a single room.
type AccommodationDetails struct {
	PricePerNight decimal.Decimal `json:"price_per_night"`
	MaxCapacity   int             `json:"max_capacity"`
	Location      string          `json:"location,omitempty"`
}

// Clone returns a deep copy. Editing the copy never reaches the original.
func (t Template) Clone() Template {
	c := t
	if t.Menu != nil {
		m := *t.Menu
		if t.Menu.Items != nil {
			m.Items = make([]MenuItem, len(t.Menu.Items))
			copy(m.Items, t.Menu.Items)
		}
		c.Menu = &m
	}
	if t.Meal != nil {
		m := *t.Meal
		c.Meal = &m
	}
	if t.Activity != nil {
		a := *t.Activity
		c.Activity = &a
	}
	if t.Transport != nil {
		tr := *t.Transport
		c.Transport = &tr
	}
	if t.Accommodation != nil {
		a := *t.Accommodation
		c.Accommodation = &a
	}
	return c
}

// RequiresTransport reports whether an activity template asks for transport.
func (t Template) RequiresTransport() bool {
	return t.Kind == KindActivity && t.Activity != nil && t.Activity.TransportRequired
}
