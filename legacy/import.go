/*
Package legacy reads budgets saved by the previous editor.

PURPOSE:
  Older saved budgets are camelCase JSON whose templates carry no kind
  tag. The kind is recovered once, here, from the fields present, and
  the result is a regular budget.Budget with explicit kinds:

    items                          -> menu
    pricePerPerson (no items)      -> meal
    basePrice                      -> activity
    pricePerHour | pricePerGuest   -> transport
    pricePerNight                  -> accommodation

  Nothing downstream of Import ever inspects field presence again.

SEE ALSO:
  - budget/types.go: Kind
  - api/handlers.go: POST /api/budgets/import
*/
package legacy

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/warp/party-budget/budget"
)

var (
	// ErrInvalidDocument is returned when the input is not a JSON object.
	ErrInvalidDocument = errors.New("legacy budget is not a JSON object")

	// ErrUnknownTemplate is returned when no kind can be recovered.
	ErrUnknownTemplate = errors.New("cannot tell template kind")
)

// Import converts a legacy saved budget. Totals are recomputed; stored
// totals in the document are ignored.
func Import(data []byte) (budget.Budget, error) {
	if !gjson.ValidBytes(data) {
		return budget.Budget{}, ErrInvalidDocument
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return budget.Budget{}, ErrInvalidDocument
	}

	b := budget.Budget{
		ID:                   doc.Get("id").String(),
		ClientName:           doc.Get("clientName").String(),
		GuestCount:           int(doc.Get("guestCount").Int()),
		Extras:               money(doc.Get("extras")),
		SelectedMeals:        []budget.BudgetItem{},
		SelectedActivities:   []budget.BudgetItem{},
		TransportAssignments: []budget.TransportAssignment{},
		IsClosed:             doc.Get("isClosed").Bool(),
	}
	if t, ok := parseTime(doc.Get("eventDate")); ok {
		b.EventDate = t
	}
	if t, ok := parseTime(doc.Get("createdAt")); ok {
		b.CreatedAt = t
	}
	if t, ok := parseTime(doc.Get("updatedAt")); ok {
		b.UpdatedAt = t
	}
	if t, ok := parseTime(doc.Get("closedAt")); ok {
		b.ClosedAt = &t
	}
	if pd := doc.Get("paymentDetails"); pd.IsObject() {
		if m, ok := pd.Value().(map[string]interface{}); ok {
			b.PaymentDetails = budget.PaymentDetails(m)
		}
	}

	var err error
	if b.SelectedMeals, err = items(doc.Get("selectedMeals")); err != nil {
		return budget.Budget{}, fmt.Errorf("selectedMeals: %w", err)
	}
	if b.SelectedActivities, err = items(doc.Get("selectedActivities")); err != nil {
		return budget.Budget{}, fmt.Errorf("selectedActivities: %w", err)
	}
	if tr := doc.Get("selectedTransport"); tr.IsArray() {
		if b.SelectedTransport, err = items(tr); err != nil {
			return budget.Budget{}, fmt.Errorf("selectedTransport: %w", err)
		}
	}
	if st := doc.Get("selectedStay"); st.IsObject() {
		item, err := item(st)
		if err != nil {
			return budget.Budget{}, fmt.Errorf("selectedStay: %w", err)
		}
		b.SelectedStay = &item
	}
	for i, a := range doc.Get("transportAssignments").Array() {
		ta, err := assignment(a)
		if err != nil {
			return budget.Budget{}, fmt.Errorf("transportAssignments[%d]: %w", i, err)
		}
		b.TransportAssignments = append(b.TransportAssignments, ta)
	}

	budget.Normalize(&b)
	q := b.Quote()
	if stored := doc.Get("totalAmount"); stored.Exists() && !money(stored).Equal(q.TotalAmount) {
		log.WithField("budget_id", b.ID).Infof("legacy total %s recomputed as %s", stored.String(), q.TotalAmount.StringFixed(2))
	}
	b.TotalAmount = q.TotalAmount
	b.Breakdown = q.Breakdown
	return b, nil
}

// =============================================================================
// ITEMS
// =============================================================================

func items(arr gjson.Result) ([]budget.BudgetItem, error) {
	out := []budget.BudgetItem{}
	for i, r := range arr.Array() {
		it, err := item(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, it)
	}
	return out, nil
}

func item(r gjson.Result) (budget.BudgetItem, error) {
	tpl, err := Template(r.Get("template"))
	if err != nil {
		return budget.BudgetItem{}, err
	}
	it := budget.BudgetItem{
		ID:               r.Get("id").String(),
		TemplateID:       r.Get("templateId").String(),
		Template:         tpl,
		Quantity:         int(r.Get("quantity").Int()),
		IncludeTransport: r.Get("includeTransport").Bool(),
	}
	if it.TemplateID == "" {
		it.TemplateID = tpl.ID
	}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	if p := r.Get("calculatedPrice"); p.Exists() && p.Type == gjson.Number {
		v := money(p)
		it.CalculatedPrice = &v
	}
	if g := r.Get("guestCount"); g.Exists() && g.Type == gjson.Number {
		v := int(g.Int())
		it.GuestCount = &v
	}

	c := r.Get("customizations")
	if g := c.Get("guestCount"); g.Type == gjson.Number {
		v := int(g.Int())
		it.Customizations.GuestCount = &v
	}
	if d := c.Get("duration"); d.Type == gjson.Number {
		v := decimal.NewFromFloat(d.Float())
		it.Customizations.Duration = &v
	}
	it.Customizations.Nights = int(c.Get("nights").Int())
	it.Customizations.Notes = c.Get("notes").String()
	return it, nil
}

func assignment(r gjson.Result) (budget.TransportAssignment, error) {
	tpl, err := Template(r.Get("transport"))
	if err != nil {
		return budget.TransportAssignment{}, err
	}
	if tpl.Kind != budget.KindTransport {
		return budget.TransportAssignment{}, fmt.Errorf("%w: assignment carries a %s", ErrUnknownTemplate, tpl.Kind)
	}
	a := budget.TransportAssignment{
		ID:              r.Get("id").String(),
		TransportID:     r.Get("transportId").String(),
		Transport:       tpl,
		ActivityID:      r.Get("activityId").String(),
		GuestCount:      int(r.Get("guestCount").Int()),
		Duration:        decimal.NewFromFloat(r.Get("duration").Float()),
		CalculatedPrice: money(r.Get("calculatedPrice")),
		Pickup:          r.Get("pickupLocation").String(),
		Dropoff:         r.Get("dropoffLocation").String(),
		Notes:           r.Get("notes").String(),
	}
	if a.TransportID == "" {
		a.TransportID = tpl.ID
	}
	if d := r.Get("distance"); d.Type == gjson.Number {
		v := decimal.NewFromFloat(d.Float())
		a.Distance = &v
	}
	return a, nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

// Template recovers a tagged template from an untagged legacy object. An
// explicit "kind" field wins when present.
func Template(r gjson.Result) (budget.Template, error) {
	if !r.IsObject() {
		return budget.Template{}, fmt.Errorf("%w: template missing", ErrUnknownTemplate)
	}
	tpl := budget.Template{
		ID:          r.Get("id").String(),
		Name:        r.Get("name").String(),
		Description: r.Get("description").String(),
		Kind:        budget.Kind(r.Get("kind").String()),
	}
	if !tpl.Kind.Valid() {
		tpl.Kind = detectKind(r)
	}

	switch tpl.Kind {
	case budget.KindMenu:
		m := &budget.MenuDetails{
			PricePerPerson: money(r.Get("pricePerPerson")),
			MinPeople:      int(r.Get("minPeople").Int()),
			MaxPeople:      int(r.Get("maxPeople").Int()),
		}
		for _, d := range r.Get("items").Array() {
			m.Items = append(m.Items, budget.MenuItem{
				Name:     d.Get("name").String(),
				Price:    money(d.Get("price")),
				Category: d.Get("category").String(),
			})
		}
		tpl.Menu = m
	case budget.KindMeal:
		tpl.Meal = &budget.MealDetails{PricePerPerson: money(r.Get("pricePerPerson"))}
	case budget.KindActivity:
		tpl.Activity = &budget.ActivityDetails{
			BasePrice:         money(r.Get("basePrice")),
			TransportRequired: r.Get("transportRequired").Bool(),
			TransportCost:     money(r.Get("transportCost")),
			DurationHours:     decimal.NewFromFloat(r.Get("duration").Float()),
			Location:          r.Get("location").String(),
		}
	case budget.KindTransport:
		t := &budget.TransportDetails{
			PricePerHour:  money(r.Get("pricePerHour")),
			PricePerGuest: money(r.Get("pricePerGuest")),
			Capacity:      int(r.Get("capacity").Int()),
			Basis:         budget.BasisPerHour,
		}
		if !r.Get("pricePerHour").Exists() && r.Get("pricePerGuest").Exists() {
			t.Basis = budget.BasisPerGuest
		}
		tpl.Transport = t
	case budget.KindAccommodation:
		capacity := r.Get("maxCapacity")
		if !capacity.Exists() {
			capacity = r.Get("maxOccupancy")
		}
		tpl.Accommodation = &budget.AccommodationDetails{
			PricePerNight: money(r.Get("pricePerNight")),
			MaxCapacity:   int(capacity.Int()),
			Location:      r.Get("location").String(),
		}
	default:
		return budget.Template{}, fmt.Errorf("%w: template %q", ErrUnknownTemplate, tpl.ID)
	}
	return tpl, nil
}

func detectKind(r gjson.Result) budget.Kind {
	switch {
	case r.Get("items").IsArray():
		return budget.KindMenu
	case r.Get("pricePerNight").Exists():
		return budget.KindAccommodation
	case r.Get("pricePerHour").Exists(), r.Get("pricePerGuest").Exists():
		return budget.KindTransport
	case r.Get("basePrice").Exists():
		return budget.KindActivity
	case r.Get("pricePerPerson").Exists():
		return budget.KindMeal
	}
	return ""
}

// =============================================================================
// VALUES
// =============================================================================

// money reads a number or numeric string. Anything else is zero.
func money(r gjson.Result) decimal.Decimal {
	switch r.Type {
	case gjson.Number:
		if d, err := decimal.NewFromString(r.Raw); err == nil {
			return d
		}
		return decimal.NewFromFloat(r.Float())
	case gjson.String:
		if d, err := decimal.NewFromString(r.Str); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func parseTime(r gjson.Result) (time.Time, bool) {
	if r.Type != gjson.String || r.Str == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, r.Str); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
