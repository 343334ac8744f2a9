package catalog

import (
	"encoding/json"

	"github.com/warp/party-budget/budget"
)

// =============================================================================
// PRESET JSON BUILDERS
// =============================================================================

// MenuJSON returns JSON for a catering menu priced per person.
func MenuJSON(id, name string, pricePerPerson float64, minPeople, maxPeople int) string {
	return marshalPreset(map[string]interface{}{
		"id":               id,
		"kind":             "menu",
		"name":             name,
		"price_per_person": pricePerPerson,
		"min_people":       minPeople,
		"max_people":       maxPeople,
	})
}

// MealJSON returns JSON for a legacy meal template.
func MealJSON(id, name string, pricePerPerson float64) string {
	return marshalPreset(map[string]interface{}{
		"id":               id,
		"kind":             "meal",
		"name":             name,
		"price_per_person": pricePerPerson,
	})
}

// ActivityJSON returns JSON for a flat-fee activity. A positive
// transportCost marks the activity as requiring transport.
func ActivityJSON(id, name string, basePrice, transportCost, hours float64) string {
	return marshalPreset(map[string]interface{}{
		"id":                 id,
		"kind":               "activity",
		"name":               name,
		"base_price":         basePrice,
		"transport_required": transportCost > 0,
		"transport_cost":     transportCost,
		"duration_hours":     hours,
	})
}

// HourlyTransportJSON returns JSON for a vehicle billed per hour.
func HourlyTransportJSON(id, name string, pricePerHour float64, capacity int) string {
	return marshalPreset(map[string]interface{}{
		"id":             id,
		"kind":           "transport",
		"name":           name,
		"basis":          "per_hour",
		"price_per_hour": pricePerHour,
		"capacity":       capacity,
	})
}

// SeatTransportJSON returns JSON for a vehicle billed per passenger.
func SeatTransportJSON(id, name string, pricePerGuest float64, capacity int) string {
	return marshalPreset(map[string]interface{}{
		"id":              id,
		"kind":            "transport",
		"name":            name,
		"basis":           "per_guest",
		"price_per_guest": pricePerGuest,
		"capacity":        capacity,
	})
}

// AccommodationJSON returns JSON for rooms priced per night.
func AccommodationJSON(id, name string, pricePerNight float64, roomCapacity int) string {
	return marshalPreset(map[string]interface{}{
		"id":              id,
		"kind":            "accommodation",
		"name":            name,
		"price_per_night": pricePerNight,
		"max_capacity":    roomCapacity,
	})
}

func marshalPreset(v map[string]interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// =============================================================================
// DEFAULT CATALOG
// =============================================================================

// DefaultJSON lists the templates shipped with the service.
func DefaultJSON() []string {
	return []string{
		MenuJSON("menu-bbq", "BBQ Night", 85, 8, 30),
		MenuJSON("menu-tapas", "Tapas Evening", 45, 6, 40),
		MenuJSON("menu-gourmet", "Gourmet Dinner", 120, 4, 16),
		MealJSON("meal-brunch", "Hangover Brunch", 25),

		ActivityJSON("act-paintball", "Paintball", 80, 25, 3),
		ActivityJSON("act-karting", "Karting", 95, 30, 2),
		ActivityJSON("act-cocktail", "Cocktail Workshop", 40, 0, 2),
		ActivityJSON("act-boat", "Boat Party", 150, 40, 4),
		ActivityJSON("act-escape", "Escape Room", 30, 0, 1),

		HourlyTransportJSON("tr-partybus", "Party Bus", 45, 20),
		HourlyTransportJSON("tr-limo", "Limousine", 120, 8),
		SeatTransportJSON("tr-minivan", "Minivan Shuttle", 12, 9),

		AccommodationJSON("stay-villa", "Villa", 150, 4),
		AccommodationJSON("stay-hostel", "Hostel", 35, 2),
		AccommodationJSON("stay-hotel", "City Hotel", 90, 2),
	}
}

// DefaultTemplates parses DefaultJSON. The presets are static so a parse
// failure is a programming error.
func DefaultTemplates() []budget.Template {
	presets := DefaultJSON()
	out := make([]budget.Template, 0, len(presets))
	for _, js := range presets {
		tpl, err := ParseTemplate(js)
		if err != nil {
			panic(err)
		}
		out = append(out, tpl)
	}
	return out
}

// Default returns a catalog loaded with the shipped templates.
func Default() *Catalog {
	c, err := New(DefaultTemplates()...)
	if err != nil {
		panic(err)
	}
	return c
}
