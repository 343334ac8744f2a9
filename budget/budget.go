package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BUDGET ITEM - One selected template
// =============================================================================

// Customizations are per-item overrides set by the operator.
type Customizations struct {
	GuestCount *int              `json:"guest_count,omitempty"`
	Duration   *decimal.Decimal  `json:"duration,omitempty"` // hours
	Nights     int               `json:"nights,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
}

func (c Customizations) clone() Customizations {
	out := c
	if c.GuestCount != nil {
		v := *c.GuestCount
		out.GuestCount = &v
	}
	if c.Duration != nil {
		v := *c.Duration
		out.Duration = &v
	}
	if c.Options != nil {
		out.Options = make(map[string]string, len(c.Options))
		for k, v := range c.Options {
			out.Options[k] = v
		}
	}
	return out
}

// BudgetItem wraps a selected template. ID is unique per selection and
// distinct from TemplateID.
type BudgetItem struct {
	ID               string           `json:"id"`
	TemplateID       string           `json:"template_id"`
	Template         Template         `json:"template"`
	Customizations   Customizations   `json:"customizations"`
	Quantity         int              `json:"quantity"`
	IncludeTransport bool             `json:"include_transport,omitempty"`
	CalculatedPrice  *decimal.Decimal `json:"calculated_price,omitempty"`
	GuestCount       *int             `json:"guest_count,omitempty"`
}

// Clone returns a deep copy of the item.
func (i BudgetItem) Clone() BudgetItem {
	c := i
	c.Template = i.Template.Clone()
	c.Customizations = i.Customizations.clone()
	if i.CalculatedPrice != nil {
		v := *i.CalculatedPrice
		c.CalculatedPrice = &v
	}
	if i.GuestCount != nil {
		v := *i.GuestCount
		c.GuestCount = &v
	}
	return c
}

// quantity returns the multiplier, treating unset as 1.
func (i BudgetItem) quantity() decimal.Decimal {
	if i.Quantity <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(i.Quantity))
}

func cloneItems(items []BudgetItem) []BudgetItem {
	if items == nil {
		return nil
	}
	out := make([]BudgetItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// =============================================================================
// TRANSPORT ASSIGNMENT - Standalone or activity-linked booking
// =============================================================================

// TransportAssignment is a transport booking. CalculatedPrice is fixed when
// the assignment is created and is not re-derived from later changes.
type TransportAssignment struct {
	ID              string           `json:"id"`
	TransportID     string           `json:"transport_id"`
	Transport       Template         `json:"transport"`
	ActivityID      string           `json:"activity_id,omitempty"`
	GuestCount      int              `json:"guest_count"`
	Duration        decimal.Decimal  `json:"duration"` // hours
	Distance        *decimal.Decimal `json:"distance,omitempty"`
	CalculatedPrice decimal.Decimal  `json:"calculated_price"`
	Pickup          string           `json:"pickup,omitempty"`
	Dropoff         string           `json:"dropoff,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// IsLinked reports whether the assignment serves an activity.
func (a TransportAssignment) IsLinked() bool { return a.ActivityID != "" }

// Clone returns a deep copy of the assignment.
func (a TransportAssignment) Clone() TransportAssignment {
	c := a
	c.Transport = a.Transport.Clone()
	if a.Distance != nil {
		v := *a.Distance
		c.Distance = &v
	}
	return c
}

// =============================================================================
// BUDGET - Aggregate root
// =============================================================================

// PaymentDetails is the opaque confirmation attached at close time.
type PaymentDetails map[string]any

// Budget is a client quote. TotalAmount and Breakdown are always derived.
type Budget struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	EventDate  time.Time `json:"event_date"`
	GuestCount int       `json:"guest_count"`

	SelectedMeals        []BudgetItem          `json:"selected_meals"`
	SelectedActivities   []BudgetItem          `json:"selected_activities"`
	SelectedTransport    []BudgetItem          `json:"selected_transport,omitempty"` // legacy
	TransportAssignments []TransportAssignment `json:"transport_assignments"`
	SelectedStay         *BudgetItem           `json:"selected_stay,omitempty"`

	Extras decimal.Decimal `json:"extras"`

	TotalAmount decimal.Decimal `json:"total_amount"`
	Breakdown   Breakdown       `json:"breakdown"`

	IsClosed       bool           `json:"is_closed"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`
	PaymentDetails PaymentDetails `json:"payment_details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. PaymentDetails is copied shallowly since its
// contents are opaque.
func (b Budget) Clone() Budget {
	c := b
	c.SelectedMeals = cloneItems(b.SelectedMeals)
	c.SelectedActivities = cloneItems(b.SelectedActivities)
	c.SelectedTransport = cloneItems(b.SelectedTransport)
	if b.TransportAssignments != nil {
		c.TransportAssignments = make([]TransportAssignment, len(b.TransportAssignments))
		for i, a := range b.TransportAssignments {
			c.TransportAssignments[i] = a.Clone()
		}
	}
	if b.SelectedStay != nil {
		s := b.SelectedStay.Clone()
		c.SelectedStay = &s
	}
	if b.ClosedAt != nil {
		t := *b.ClosedAt
		c.ClosedAt = &t
	}
	if b.PaymentDetails != nil {
		c.PaymentDetails = make(PaymentDetails, len(b.PaymentDetails))
		for k, v := range b.PaymentDetails {
			c.PaymentDetails[k] = v
		}
	}
	return c
}

// ItemCount counts selections across every category, assignments included.
func (b Budget) ItemCount() int {
	n := len(b.SelectedMeals) + len(b.SelectedActivities) +
		len(b.SelectedTransport) + len(b.TransportAssignments)
	if b.SelectedStay != nil {
		n++
	}
	return n
}

// HasTransport reports whether any transport is booked at all.
func (b Budget) HasTransport() bool {
	return len(b.SelectedTransport) > 0 || len(b.TransportAssignments) > 0
}

// Quote prices the budget as it stands.
func (b Budget) Quote() Result {
	return Calculate(InputFromBudget(b))
}
