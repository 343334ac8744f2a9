/*
Package catalog holds the templates operators pick from.

PURPOSE:
  Converts JSON template definitions into budget.Template values and
  keeps them in a lookup table. Catalog entries can be configured
  without code changes: a JSON file, the database, or the presets in
  presets.go.

JSON SCHEMA (flat, one object per template):
  {
    "id": "menu-bbq",
    "kind": "menu",
    "name": "BBQ Night",
    "price_per_person": 85,
    "min_people": 8,
    "max_people": 30,
    "items": [{"name": "Ribs", "price": 18, "category": "main"}]
  }

  activity:      base_price, transport_required, transport_cost,
                 duration_hours, location
  transport:     basis (per_hour | per_guest), price_per_hour,
                 price_per_guest, capacity
  accommodation: price_per_night, max_capacity, location
  meal:          price_per_person

USAGE:
  tpl, err := catalog.ParseTemplate(catalog.MenuJSON("menu-bbq", "BBQ Night", 85, 8, 30))

SEE ALSO:
  - presets.go: Builders for preset JSON and the default catalog
  - catalog.go: Catalog lookup table
  - budget/types.go: Template definition
*/
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/party-budget/budget"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TemplateJSON is the JSON representation of a template. Amounts are
// decimals and accept JSON numbers or strings.
type TemplateJSON struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// menu, meal
	PricePerPerson decimal.Decimal `json:"price_per_person,omitzero"`
	MinPeople      int             `json:"min_people,omitempty"`
	MaxPeople      int             `json:"max_people,omitempty"`
	Items          []MenuItemJSON  `json:"items,omitempty"`

	// activity
	BasePrice         decimal.Decimal `json:"base_price,omitzero"`
	TransportRequired bool            `json:"transport_required,omitempty"`
	TransportCost     decimal.Decimal `json:"transport_cost,omitzero"`
	DurationHours     decimal.Decimal `json:"duration_hours,omitzero"`

	// transport
	Basis         string          `json:"basis,omitempty"`
	PricePerHour  decimal.Decimal `json:"price_per_hour,omitzero"`
	PricePerGuest decimal.Decimal `json:"price_per_guest,omitzero"`
	Capacity      int             `json:"capacity,omitempty"`

	// accommodation
	PricePerNight decimal.Decimal `json:"price_per_night,omitzero"`
	MaxCapacity   int             `json:"max_capacity,omitempty"`

	// activity, accommodation
	Location string `json:"location,omitempty"`
}

// MenuItemJSON is one dish of a menu.
type MenuItemJSON struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseTemplate parses a JSON string into a template.
func ParseTemplate(jsonStr string) (budget.Template, error) {
	var tj TemplateJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return budget.Template{}, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	return FromJSON(tj)
}

// ParseTemplates parses a JSON array of templates.
func ParseTemplates(data []byte) ([]budget.Template, error) {
	var list []TemplateJSON
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	out := make([]budget.Template, 0, len(list))
	for i, tj := range list {
		tpl, err := FromJSON(tj)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		out = append(out, tpl)
	}
	return out, nil
}

// FromJSON converts TemplateJSON to a budget.Template.
func FromJSON(tj TemplateJSON) (budget.Template, error) {
	if tj.ID == "" {
		return budget.Template{}, budget.ErrMissingTemplateID
	}
	kind := budget.Kind(tj.Kind)
	if !kind.Valid() {
		return budget.Template{}, fmt.Errorf("%w: unknown kind %q for template %s", budget.ErrInvalidFieldValue, tj.Kind, tj.ID)
	}

	tpl := budget.Template{
		ID:          tj.ID,
		Kind:        kind,
		Name:        tj.Name,
		Description: tj.Description,
	}

	switch kind {
	case budget.KindMenu:
		m := &budget.MenuDetails{
			PricePerPerson: tj.PricePerPerson,
			MinPeople:      tj.MinPeople,
			MaxPeople:      tj.MaxPeople,
		}
		for _, it := range tj.Items {
			m.Items = append(m.Items, budget.MenuItem{
				Name:     it.Name,
				Price:    it.Price,
				Category: it.Category,
			})
		}
		tpl.Menu = m

	case budget.KindMeal:
		tpl.Meal = &budget.MealDetails{PricePerPerson: tj.PricePerPerson}

	case budget.KindActivity:
		tpl.Activity = &budget.ActivityDetails{
			BasePrice:         tj.BasePrice,
			TransportRequired: tj.TransportRequired,
			TransportCost:     tj.TransportCost,
			DurationHours:     tj.DurationHours,
			Location:          tj.Location,
		}

	case budget.KindTransport:
		basis, err := parseBasis(tj)
		if err != nil {
			return budget.Template{}, err
		}
		tpl.Transport = &budget.TransportDetails{
			Basis:         basis,
			PricePerHour:  tj.PricePerHour,
			PricePerGuest: tj.PricePerGuest,
			Capacity:      tj.Capacity,
		}

	case budget.KindAccommodation:
		tpl.Accommodation = &budget.AccommodationDetails{
			PricePerNight: tj.PricePerNight,
			MaxCapacity:   tj.MaxCapacity,
			Location:      tj.Location,
		}
	}

	return tpl, nil
}

// parseBasis defaults to per_hour, or per_guest when only that price is set.
func parseBasis(tj TemplateJSON) (budget.TransportBasis, error) {
	switch budget.TransportBasis(tj.Basis) {
	case budget.BasisPerHour:
		return budget.BasisPerHour, nil
	case budget.BasisPerGuest:
		return budget.BasisPerGuest, nil
	case "":
		if tj.PricePerHour.IsZero() && tj.PricePerGuest.IsPositive() {
			return budget.BasisPerGuest, nil
		}
		return budget.BasisPerHour, nil
	}
	return "", fmt.Errorf("%w: unknown transport basis %q for template %s", budget.ErrInvalidFieldValue, tj.Basis, tj.ID)
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// ToJSON converts a template back to its JSON representation.
func ToJSON(t budget.Template) TemplateJSON {
	tj := TemplateJSON{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Name:        t.Name,
		Description: t.Description,
	}
	if m := t.Menu; m != nil {
		tj.PricePerPerson = m.PricePerPerson
		tj.MinPeople = m.MinPeople
		tj.MaxPeople = m.MaxPeople
		for _, it := range m.Items {
			tj.Items = append(tj.Items, MenuItemJSON{
				Name:     it.Name,
				Price:    it.Price,
				Category: it.Category,
			})
		}
	}
	if m := t.Meal; m != nil {
		tj.PricePerPerson = m.PricePerPerson
	}
	if a := t.Activity; a != nil {
		tj.BasePrice = a.BasePrice
		tj.TransportRequired = a.TransportRequired
		tj.TransportCost = a.TransportCost
		tj.DurationHours = a.DurationHours
		tj.Location = a.Location
	}
	if tr := t.Transport; tr != nil {
		tj.Basis = string(tr.Basis)
		tj.PricePerHour = tr.PricePerHour
		tj.PricePerGuest = tr.PricePerGuest
		tj.Capacity = tr.Capacity
	}
	if a := t.Accommodation; a != nil {
		tj.PricePerNight = a.PricePerNight
		tj.MaxCapacity = a.MaxCapacity
		tj.Location = a.Location
	}
	return tj
}

// MarshalTemplate renders a template as a JSON string.
func MarshalTemplate(t budget.Template) (string, error) {
	b, err := json.Marshal(ToJSON(t))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
