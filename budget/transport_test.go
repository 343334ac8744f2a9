package budget_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/party-budget/budget"
)

func bookBus(t *testing.T, sel *budget.Selection, activityID string, guests int) budget.TransportAssignment {
	t.Helper()
	a, err := sel.AddAssignment(budget.AssignmentInput{
		Transport:  hourlyVehicle("bus", 45, 20),
		ActivityID: activityID,
		GuestCount: guests,
		Duration:   decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	return a
}

// =============================================================================
// PRICING OF BOOKINGS
// =============================================================================

func TestAssignment_PriceFixedAtCreation(t *testing.T) {
	// GIVEN: A bus at 45/h booked for 3 hours for paintball
	sel, _ := readySelection(t, 10)
	act, err := sel.AddItem(budget.CategoryActivities, activity("paintball", 80, 25))
	require.NoError(t, err)
	a := bookBus(t, sel, act.ID, 10)
	assertMoney(t, "135.00", a.CalculatedPrice)
	assert.True(t, a.IsLinked())

	// WHEN: The party grows
	require.NoError(t, sel.UpdateField(budget.FieldGuestCount, 12))

	// THEN: The booking keeps its price
	b := sel.Snapshot()
	assertMoney(t, "135.00", b.TransportAssignments[0].CalculatedPrice)
	assertMoney(t, "135.00", b.Breakdown.Transport)
	assertMoney(t, "215.00", b.TotalAmount)
}

func TestAssignment_RepriceOnRequest(t *testing.T) {
	// GIVEN: A shuttle at 12 per seat for 6 guests
	sel, _ := readySelection(t, 6)
	a, err := sel.AddAssignment(budget.AssignmentInput{Transport: seatVehicle("van", 12, 9), GuestCount: 6})
	require.NoError(t, err)
	assertMoney(t, "72.00", a.CalculatedPrice)
	assert.False(t, a.IsLinked())

	// WHEN: Guests change without repricing
	require.NoError(t, sel.UpdateAssignment(a.ID, budget.AssignmentUpdate{GuestCount: intPtr(8)}))

	// THEN: The price stays
	assertMoney(t, "72.00", sel.Quote().Breakdown.Transport)

	// WHEN: Repricing
	require.NoError(t, sel.UpdateAssignment(a.ID, budget.AssignmentUpdate{Reprice: true}))

	// THEN: 12 x 8
	assertMoney(t, "96.00", sel.Quote().Breakdown.Transport)
	assert.Equal(t, 8, sel.Snapshot().TransportAssignments[0].GuestCount)
}

func TestAssignment_CapacityIsHardLimit(t *testing.T) {
	sel, _ := readySelection(t, 10)

	_, err := sel.AddAssignment(budget.AssignmentInput{Transport: hourlyVehicle("limo", 120, 8), GuestCount: 10})

	require.ErrorIs(t, err, budget.ErrCapacityExceeded)
	var ce *budget.CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 8, ce.Capacity)
	assert.Equal(t, 10, ce.Requested)
	assert.Empty(t, sel.Snapshot().TransportAssignments)
}

func TestAssignment_UpdateOverCapacityRefused(t *testing.T) {
	sel, _ := readySelection(t, 6)
	a, err := sel.AddAssignment(budget.AssignmentInput{Transport: seatVehicle("van", 12, 9), GuestCount: 6})
	require.NoError(t, err)

	err = sel.UpdateAssignment(a.ID, budget.AssignmentUpdate{GuestCount: intPtr(12), Reprice: true})

	assert.ErrorIs(t, err, budget.ErrCapacityExceeded)
	assert.Equal(t, 6, sel.Snapshot().TransportAssignments[0].GuestCount)
}

func TestAssignment_WrongKindRefused(t *testing.T) {
	sel, _ := readySelection(t, 6)

	_, err := sel.AddAssignment(budget.AssignmentInput{Transport: menu("bbq", 85), GuestCount: 6})

	assert.ErrorIs(t, err, budget.ErrTemplateKindMismatch)
}

func TestAssignment_Remove(t *testing.T) {
	sel, _ := readySelection(t, 10)
	a := bookBus(t, sel, "", 10)

	require.NoError(t, sel.RemoveAssignment(a.ID))

	assert.Empty(t, sel.Snapshot().TransportAssignments)
	assertMoney(t, "0.00", sel.Quote().Breakdown.Transport)
	assert.ErrorIs(t, sel.RemoveAssignment(a.ID), budget.ErrAssignmentNotFound)
}

// =============================================================================
// LINKING
// =============================================================================

func TestLink_ActivityServedOnce(t *testing.T) {
	// GIVEN: Paintball served by a bus
	sel, _ := readySelection(t, 10)
	act, err := sel.AddItem(budget.CategoryActivities, activity("paintball", 80, 25))
	require.NoError(t, err)
	first := bookBus(t, sel, act.ID, 10)

	// WHEN: A second booking tries to serve the same activity
	second, err := sel.AddAssignment(budget.AssignmentInput{Transport: seatVehicle("van", 12, 9), GuestCount: 6})
	require.NoError(t, err)
	err = sel.LinkToActivity(second.ID, act.ID, 6)

	// THEN: It is refused and names the existing booking
	require.ErrorIs(t, err, budget.ErrActivityAlreadyLinked)
	var le *budget.LinkError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, first.ID, le.AssignmentID)
	assert.False(t, sel.Snapshot().TransportAssignments[1].IsLinked())
}

func TestLink_AddLinkedToTakenActivity(t *testing.T) {
	sel, _ := readySelection(t, 10)
	act, err := sel.AddItem(budget.CategoryActivities, activity("paintball", 80, 25))
	require.NoError(t, err)
	bookBus(t, sel, act.ID, 10)

	_, err = sel.AddAssignment(budget.AssignmentInput{Transport: seatVehicle("van", 12, 9), ActivityID: act.ID, GuestCount: 6})

	assert.ErrorIs(t, err, budget.ErrActivityAlreadyLinked)
	assert.Len(t, sel.Snapshot().TransportAssignments, 1)
}

func TestLink_RelinkSameAssignment(t *testing.T) {
	sel, _ := readySelection(t, 10)
	act, err := sel.AddItem(budget.CategoryActivities, activity("paintball", 80, 25))
	require.NoError(t, err)
	a := bookBus(t, sel, act.ID, 10)

	require.NoError(t, sel.LinkToActivity(a.ID, act.ID, 12))

	got := sel.Snapshot().TransportAssignments[0]
	assert.Equal(t, act.ID, got.ActivityID)
	assert.Equal(t, 12, got.GuestCount)
	assertMoney(t, "135.00", got.CalculatedPrice)
}

func TestLink_ActivityMustBeSelected(t *testing.T) {
	sel, _ := readySelection(t, 10)
	a := bookBus(t, sel, "", 10)

	assert.ErrorIs(t, sel.LinkToActivity(a.ID, "ghost", 10), budget.ErrActivityNotFound)
	assert.ErrorIs(t, sel.LinkToActivity(a.ID, "", 10), budget.ErrMissingItemID)
	assert.ErrorIs(t, sel.LinkToActivity("nope", "ghost", 10), budget.ErrAssignmentNotFound)
}

func TestLink_UnlinkAndCandidates(t *testing.T) {
	// GIVEN: Two activities, one served
	sel, _ := readySelection(t, 10)
	paintball, err := sel.AddItem(budget.CategoryActivities, activity("paintball", 80, 25))
	require.NoError(t, err)
	karting, err := sel.AddItem(budget.CategoryActivities, activity("karting", 95, 30))
	require.NoError(t, err)
	a := bookBus(t, sel, paintball.ID, 10)

	// THEN: Only karting is a candidate
	candidates := sel.UnlinkedActivities()
	require.Len(t, candidates, 1)
	assert.Equal(t, karting.ID, candidates[0].ID)

	// WHEN: Unlinking
	require.NoError(t, sel.UnlinkFromActivity(a.ID))

	// THEN: Both are candidates and the booking stays standalone
	assert.Len(t, sel.UnlinkedActivities(), 2)
	require.Len(t, sel.Snapshot().TransportAssignments, 1)
	assertMoney(t, "135.00", sel.Quote().Breakdown.Transport)
}

func TestLink_RemovingActivityUnlinks(t *testing.T) {
	// GIVEN: A bus serving paintball
	sel, _ := readySelection(t, 10)
	act, err := sel.AddItem(budget.CategoryActivities, activity("paintball", 80, 25))
	require.NoError(t, err)
	bookBus(t, sel, act.ID, 10)

	// WHEN: Paintball is dropped
	require.NoError(t, sel.RemoveItem(budget.CategoryActivities, act.ID))

	// THEN: The bus is kept as a standalone booking
	b := sel.Snapshot()
	require.Len(t, b.TransportAssignments, 1)
	assert.False(t, b.TransportAssignments[0].IsLinked())
	assertMoney(t, "135.00", b.TotalAmount)
}
