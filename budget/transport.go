package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSPORT ASSIGNMENTS
// =============================================================================
//
// Assignments are bookings of a vehicle, either on their own or serving one
// activity. Their price is quoted once, at creation, and stays fixed after:
// changing the party size later does not re-price a booked vehicle.
//
// Linking rules held here rather than in the editor:
//   - a linked activity must be selected
//   - an activity is served by at most one assignment

// AssignmentInput describes a new booking.
type AssignmentInput struct {
	Transport  Template
	ActivityID string
	GuestCount int
	Duration   decimal.Decimal // hours
	Distance   *decimal.Decimal
	Pickup     string
	Dropoff    string
	Notes      string
}

// AssignmentUpdate is a partial update. Nil fields are left alone. The
// stored price is only re-quoted when Reprice is set.
type AssignmentUpdate struct {
	GuestCount *int
	Duration   *decimal.Decimal
	Distance   *decimal.Decimal
	Pickup     *string
	Dropoff    *string
	Notes      *string
	Reprice    bool
}

// AddAssignment books a vehicle and fixes its price.
func (s *Selection) AddAssignment(in AssignmentInput) (TransportAssignment, error) {
	if err := s.ensureOpen("add transport"); err != nil {
		return TransportAssignment{}, err
	}
	if in.Transport.ID == "" {
		s.logger().Warn("add transport refused: template has no id")
		return TransportAssignment{}, ErrMissingTemplateID
	}
	if in.Transport.Kind != KindTransport {
		s.logger().Warnf("add transport refused: %s template %s", in.Transport.Kind, in.Transport.ID)
		return TransportAssignment{}, fmt.Errorf("%w: %s in %s", ErrTemplateKindMismatch, in.Transport.Kind, CategoryTransport)
	}
	if err := s.checkCapacity(in.Transport, in.GuestCount); err != nil {
		return TransportAssignment{}, err
	}
	if in.ActivityID != "" {
		if err := s.checkLinkable(in.ActivityID, ""); err != nil {
			return TransportAssignment{}, err
		}
	}

	a := TransportAssignment{
		ID:              s.newID(),
		TransportID:     in.Transport.ID,
		Transport:       in.Transport.Clone(),
		ActivityID:      in.ActivityID,
		GuestCount:      in.GuestCount,
		Duration:        in.Duration,
		CalculatedPrice: QuoteTransport(in.Transport, in.GuestCount, in.Duration),
		Pickup:          in.Pickup,
		Dropoff:         in.Dropoff,
		Notes:           in.Notes,
	}
	if in.Distance != nil {
		d := *in.Distance
		a.Distance = &d
	}

	s.budget.TransportAssignments = append(s.budget.TransportAssignments, a)
	s.touch()
	s.logger().Debugf("booked transport %s as %s for %s", a.TransportID, a.ID, a.CalculatedPrice.StringFixed(2))
	return a.Clone(), nil
}

// UpdateAssignment merges an update into a booking.
func (s *Selection) UpdateAssignment(id string, upd AssignmentUpdate) error {
	if err := s.ensureOpen("update transport"); err != nil {
		return err
	}
	a, err := s.assignment(id)
	if err != nil {
		return err
	}

	guests := a.GuestCount
	if upd.GuestCount != nil {
		guests = *upd.GuestCount
	}
	if err := s.checkCapacity(a.Transport, guests); err != nil {
		return err
	}

	a.GuestCount = guests
	if upd.Duration != nil {
		a.Duration = *upd.Duration
	}
	if upd.Distance != nil {
		d := *upd.Distance
		a.Distance = &d
	}
	if upd.Pickup != nil {
		a.Pickup = *upd.Pickup
	}
	if upd.Dropoff != nil {
		a.Dropoff = *upd.Dropoff
	}
	if upd.Notes != nil {
		a.Notes = *upd.Notes
	}
	if upd.Reprice {
		a.CalculatedPrice = QuoteTransport(a.Transport, a.GuestCount, a.Duration)
	}

	s.touch()
	return nil
}

// RemoveAssignment cancels a booking.
func (s *Selection) RemoveAssignment(id string) error {
	if err := s.ensureOpen("remove transport"); err != nil {
		return err
	}
	if _, err := s.assignment(id); err != nil {
		return err
	}

	kept := make([]TransportAssignment, 0, len(s.budget.TransportAssignments))
	for _, a := range s.budget.TransportAssignments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.budget.TransportAssignments = kept
	s.touch()
	return nil
}

// LinkToActivity makes a booking serve an activity with the given party size.
func (s *Selection) LinkToActivity(transportID, activityID string, guestCount int) error {
	if err := s.ensureOpen("link transport"); err != nil {
		return err
	}
	if activityID == "" {
		s.logger().Errorf("link transport %s refused: no activity id", transportID)
		return ErrMissingItemID
	}
	a, err := s.assignment(transportID)
	if err != nil {
		return err
	}
	if err := s.checkLinkable(activityID, a.ID); err != nil {
		return err
	}
	if err := s.checkCapacity(a.Transport, guestCount); err != nil {
		return err
	}

	a.ActivityID = activityID
	a.GuestCount = guestCount
	s.touch()
	s.logger().Debugf("transport %s linked to activity %s", transportID, activityID)
	return nil
}

// UnlinkFromActivity turns a linked booking back into a standalone one.
func (s *Selection) UnlinkFromActivity(transportID string) error {
	if err := s.ensureOpen("unlink transport"); err != nil {
		return err
	}
	a, err := s.assignment(transportID)
	if err != nil {
		return err
	}
	a.ActivityID = ""
	s.touch()
	return nil
}

// UnlinkedActivities lists selected activities no booking serves yet,
// the candidates for LinkToActivity.
func (s *Selection) UnlinkedActivities() []BudgetItem {
	linked := make(map[string]bool, len(s.budget.TransportAssignments))
	for _, a := range s.budget.TransportAssignments {
		if a.ActivityID != "" {
			linked[a.ActivityID] = true
		}
	}
	var out []BudgetItem
	for _, act := range s.budget.SelectedActivities {
		if !linked[act.ID] {
			out = append(out, act.Clone())
		}
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Selection) assignment(id string) (*TransportAssignment, error) {
	if id == "" {
		s.logger().Error("transport operation refused: no assignment id")
		return nil, ErrMissingItemID
	}
	for i := range s.budget.TransportAssignments {
		if s.budget.TransportAssignments[i].ID == id {
			return &s.budget.TransportAssignments[i], nil
		}
	}
	s.logger().Warnf("transport operation refused: assignment %s not found", id)
	return nil, ErrAssignmentNotFound
}

// checkLinkable verifies the activity is selected and free. self is the
// assignment being linked, which may already hold the link.
func (s *Selection) checkLinkable(activityID, self string) error {
	found := false
	for _, act := range s.budget.SelectedActivities {
		if act.ID == activityID {
			found = true
			break
		}
	}
	if !found {
		s.logger().Warnf("link refused: activity %s not selected", activityID)
		return ErrActivityNotFound
	}
	for _, a := range s.budget.TransportAssignments {
		if a.ActivityID == activityID && a.ID != self {
			s.logger().Warnf("link refused: activity %s already served by %s", activityID, a.ID)
			return &LinkError{ActivityID: activityID, AssignmentID: a.ID}
		}
	}
	return nil
}

func (s *Selection) checkCapacity(t Template, guests int) error {
	if guests < 0 {
		s.logger().Warnf("transport %s refused: %d guests", t.ID, guests)
		return fmt.Errorf("%w: guest count %d", ErrInvalidFieldValue, guests)
	}
	if t.Transport == nil || t.Transport.Capacity <= 0 {
		return nil
	}
	if guests > t.Transport.Capacity {
		s.logger().Warnf("transport %s refused: %d guests for %d seats", t.ID, guests, t.Transport.Capacity)
		return &CapacityError{TransportID: t.ID, Capacity: t.Transport.Capacity, Requested: guests}
	}
	return nil
}
