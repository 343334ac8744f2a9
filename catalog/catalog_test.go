package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseTemplate_Menu(t *testing.T) {
	tpl, err := catalog.ParseTemplate(`{
		"id": "menu-bbq", "kind": "menu", "name": "BBQ Night",
		"price_per_person": 85, "min_people": 8, "max_people": 30,
		"items": [{"name": "Ribs", "price": 18.5, "category": "main"}]
	}`)
	require.NoError(t, err)

	assert.Equal(t, budget.KindMenu, tpl.Kind)
	require.NotNil(t, tpl.Menu)
	assert.Equal(t, "85.00", tpl.Menu.PricePerPerson.StringFixed(2))
	assert.Equal(t, 8, tpl.Menu.MinPeople)
	assert.Equal(t, 30, tpl.Menu.MaxPeople)
	require.Len(t, tpl.Menu.Items, 1)
	assert.Equal(t, "18.50", tpl.Menu.Items[0].Price.StringFixed(2))
	assert.Nil(t, tpl.Activity)
}

func TestParseTemplate_TransportBasis(t *testing.T) {
	hourly, err := catalog.ParseTemplate(catalog.HourlyTransportJSON("bus", "Party Bus", 45, 20))
	require.NoError(t, err)
	assert.Equal(t, budget.BasisPerHour, hourly.Transport.Basis)
	assert.Equal(t, 20, hourly.Transport.Capacity)

	// Only a seat price set: the basis follows it
	seat, err := catalog.ParseTemplate(`{"id": "van", "kind": "transport", "price_per_guest": 12}`)
	require.NoError(t, err)
	assert.Equal(t, budget.BasisPerGuest, seat.Transport.Basis)

	_, err = catalog.ParseTemplate(`{"id": "van", "kind": "transport", "basis": "per_mile"}`)
	assert.ErrorIs(t, err, budget.ErrInvalidFieldValue)
}

func TestParseTemplate_Activity(t *testing.T) {
	tpl, err := catalog.ParseTemplate(catalog.ActivityJSON("act-paintball", "Paintball", 80, 25, 3))
	require.NoError(t, err)

	assert.True(t, tpl.RequiresTransport())
	assert.Equal(t, "25.00", tpl.Activity.TransportCost.StringFixed(2))

	free, err := catalog.ParseTemplate(catalog.ActivityJSON("act-cocktail", "Cocktails", 40, 0, 2))
	require.NoError(t, err)
	assert.False(t, free.RequiresTransport())
}

func TestParseTemplate_Errors(t *testing.T) {
	_, err := catalog.ParseTemplate(`{"kind": "menu"}`)
	assert.ErrorIs(t, err, budget.ErrMissingTemplateID)

	_, err = catalog.ParseTemplate(`{"id": "x", "kind": "spa"}`)
	assert.ErrorIs(t, err, budget.ErrInvalidFieldValue)

	_, err = catalog.ParseTemplate(`not json`)
	assert.Error(t, err)
}

func TestParseTemplates_Array(t *testing.T) {
	data := []byte(`[` + catalog.MealJSON("brunch", "Brunch", 25) + `,` +
		catalog.AccommodationJSON("villa", "Villa", 150, 4) + `]`)

	templates, err := catalog.ParseTemplates(data)
	require.NoError(t, err)

	require.Len(t, templates, 2)
	assert.Equal(t, budget.KindMeal, templates[0].Kind)
	assert.Equal(t, 4, templates[1].Accommodation.MaxCapacity)
}

func TestDefaultTemplates_SurviveRoundTrip(t *testing.T) {
	for _, tpl := range catalog.DefaultTemplates() {
		raw, err := catalog.MarshalTemplate(tpl)
		require.NoError(t, err)

		back, err := catalog.ParseTemplate(raw)
		require.NoError(t, err, tpl.ID)

		assert.Equal(t, tpl.Kind, back.Kind, tpl.ID)
		assert.True(t, budget.QuoteTransport(tpl, 6, budget.NewMoney(3)).
			Equal(budget.QuoteTransport(back, 6, budget.NewMoney(3))), tpl.ID)
	}
}

// =============================================================================
// CATALOG
// =============================================================================

func TestDefault_CoversEveryKind(t *testing.T) {
	c := catalog.Default()

	for _, k := range []budget.Kind{
		budget.KindMenu, budget.KindMeal, budget.KindActivity,
		budget.KindTransport, budget.KindAccommodation,
	} {
		assert.NotEmpty(t, c.List(k), k)
	}
	assert.Equal(t, c.Len(), len(c.All()))
}

func TestCatalog_ListSortedByID(t *testing.T) {
	c := catalog.Default()

	list := c.List(budget.KindTransport)

	require.Len(t, list, 3)
	assert.Equal(t, "tr-limo", list[0].ID)
	assert.Equal(t, "tr-minivan", list[1].ID)
	assert.Equal(t, "tr-partybus", list[2].ID)
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	// GIVEN: A template looked up and edited by the caller
	c := catalog.Default()
	tpl, err := c.Lookup("menu-bbq")
	require.NoError(t, err)
	tpl.Menu.PricePerPerson = budget.NewMoney(1)

	// WHEN: Looking it up again
	again, err := c.Lookup("menu-bbq")
	require.NoError(t, err)

	// THEN: The catalog is unchanged
	assert.Equal(t, "85.00", again.Menu.PricePerPerson.StringFixed(2))
}

func TestCatalog_LookupMissing(t *testing.T) {
	_, err := catalog.Default().Lookup("menu-nope")
	assert.ErrorIs(t, err, budget.ErrTemplateNotFound)
}

func TestNew_RejectsDuplicatesAndMissingIDs(t *testing.T) {
	tpl, err := catalog.ParseTemplate(catalog.MealJSON("brunch", "Brunch", 25))
	require.NoError(t, err)

	_, err = catalog.New(tpl, tpl)
	assert.ErrorIs(t, err, budget.ErrInvalidFieldValue)

	_, err = catalog.New(budget.Template{Kind: budget.KindMeal})
	assert.ErrorIs(t, err, budget.ErrMissingTemplateID)
}

func TestCatalog_Put(t *testing.T) {
	c, err := catalog.New()
	require.NoError(t, err)

	assert.ErrorIs(t, c.Put(budget.Template{ID: "x", Kind: "spa"}), budget.ErrInvalidFieldValue)

	tpl, err := catalog.ParseTemplate(catalog.MealJSON("brunch", "Brunch", 25))
	require.NoError(t, err)
	require.NoError(t, c.Put(tpl))
	assert.Equal(t, 1, c.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[` + catalog.MenuJSON("menu-a", "A", 10, 0, 0) + `]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := catalog.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTemplateJSON_KeepsDecimalPrecision(t *testing.T) {
	// GIVEN: Prices that have no exact float representation
	tpl, err := catalog.ParseTemplate(`{
		"id": "menu-fine", "kind": "menu", "name": "Fine",
		"price_per_person": "19.99999999999999999",
		"items": [{"name": "Oyster", "price": 0.1}]
	}`)
	require.NoError(t, err)

	// WHEN: Going through JSON twice
	for i := 0; i < 2; i++ {
		raw, err := catalog.MarshalTemplate(tpl)
		require.NoError(t, err)
		tpl, err = catalog.ParseTemplate(raw)
		require.NoError(t, err)
	}

	// THEN: The amounts are exactly what was written
	assert.Equal(t, "19.99999999999999999", tpl.Menu.PricePerPerson.String())
	assert.Equal(t, "0.1", tpl.Menu.Items[0].Price.String())
}
