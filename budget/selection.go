/*
selection.go - The selection store

PURPOSE:
  Selection owns the draft budget an operator edits and exposes the only
  ways to change it. Every mutation is atomic with respect to pricing:
  the draft is changed, then Calculate runs, then the result is stored.
  Nobody ever observes a half-applied mutation.

STATE MACHINE:
  Empty -> Editing (any mutation) -> Valid | Invalid (per Validate)
  Valid -> Closed (Close). Closed is terminal: every mutation afterwards
  returns ErrBudgetClosed.

BAD INPUT:
  Invalid requests (empty ids, duplicates, unknown items) are logged and
  refused. The draft is left exactly as it was.

CONCURRENCY:
  A Selection is not safe for concurrent use. Callers serving several
  goroutines (the HTTP API) serialise access themselves.

SEE ALSO:
  - transport.go: Transport assignment operations on the same Selection
  - pricing.go: Calculate
  - validation.go: Validate
*/
package budget

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/warp/party-budget/internal/clock"
)

// =============================================================================
// IDS
// =============================================================================

// IDGenerator produces unique ids for items, assignments and budgets.
type IDGenerator func() string

// NewID returns a UUIDv7: a millisecond timestamp followed by random bits.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// =============================================================================
// SELECTION
// =============================================================================

// Selection is the mutable draft of a budget.
type Selection struct {
	budget Budget
	dirty  bool

	clock clock.Clock
	newID IDGenerator
}

// Option configures a Selection.
type Option func(*Selection)

// WithClock sets the clock used for timestamps and date validation.
func WithClock(c clock.Clock) Option {
	return func(s *Selection) { s.clock = c }
}

// WithIDGenerator sets the id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Selection) { s.newID = g }
}

// NewSelection starts an empty draft: no selections, zero guests.
func NewSelection(opts ...Option) *Selection {
	s := newSelection(opts)
	now := s.clock.Now()
	s.budget = Budget{
		ID:                   s.newID(),
		SelectedMeals:        []BudgetItem{},
		SelectedActivities:   []BudgetItem{},
		TransportAssignments: []TransportAssignment{},
		Extras:               decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.recalculate()
	return s
}

// LoadSelection resumes editing an existing budget. The budget is copied
// and normalized, so duplicate templates and broken links are repaired.
func LoadSelection(b Budget, opts ...Option) *Selection {
	s := newSelection(opts)
	s.budget = b.Clone()
	if s.budget.ID == "" {
		s.budget.ID = s.newID()
	}
	Normalize(&s.budget)
	if s.budget.CreatedAt.IsZero() {
		s.budget.CreatedAt = s.clock.Now()
	}
	s.recalculate()
	return s
}

func newSelection(opts []Option) *Selection {
	s := &Selection{clock: clock.SystemClock{}, newID: NewID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the budget id.
func (s *Selection) ID() string { return s.budget.ID }

// IsClosed reports whether the budget has been closed.
func (s *Selection) IsClosed() bool { return s.budget.IsClosed }

// IsDirty reports whether the draft changed since the last MarkClean.
func (s *Selection) IsDirty() bool { return s.dirty }

// MarkClean clears the dirty flag, typically after a save.
func (s *Selection) MarkClean() { s.dirty = false }

// Snapshot returns a deep copy of the priced draft.
func (s *Selection) Snapshot() Budget { return s.budget.Clone() }

// Quote returns the current total and breakdown.
func (s *Selection) Quote() Result {
	return Result{TotalAmount: s.budget.TotalAmount, Breakdown: s.budget.Breakdown}
}

// Validate checks the draft.
func (s *Selection) Validate() []Finding {
	return Validate(s.budget, s.clock.Now())
}

func (s *Selection) logger() *log.Entry {
	return log.WithField("budget_id", s.budget.ID)
}

// recalculate prices the draft and stores the result on it.
func (s *Selection) recalculate() {
	r := Calculate(InputFromBudget(s.budget))
	s.budget.TotalAmount = r.TotalAmount
	s.budget.Breakdown = r.Breakdown
}

// touch marks a successful mutation.
func (s *Selection) touch() {
	s.recalculate()
	s.budget.UpdatedAt = s.clock.Now()
	s.dirty = true
}

func (s *Selection) ensureOpen(op string) error {
	if s.budget.IsClosed {
		s.logger().Warnf("%s refused: budget is closed", op)
		return ErrBudgetClosed
	}
	return nil
}

// items returns a pointer to the array backing an array category.
func (s *Selection) items(c Category) *[]BudgetItem {
	return categoryItems(&s.budget, c)
}

// =============================================================================
// ITEM OPERATIONS
// =============================================================================

// AddItem selects a template in a category. A stay replaces the current
// one; the other categories refuse a template that is already selected.
func (s *Selection) AddItem(category Category, tpl Template) (BudgetItem, error) {
	if err := s.ensureOpen("add item"); err != nil {
		return BudgetItem{}, err
	}
	if tpl.ID == "" {
		s.logger().Warnf("add item to %s refused: template has no id", category)
		return BudgetItem{}, ErrMissingTemplateID
	}
	if _, err := ParseCategory(string(category)); err != nil {
		s.logger().Warnf("add item refused: %v", err)
		return BudgetItem{}, err
	}
	if !category.Accepts(tpl.Kind) {
		s.logger().Warnf("add item refused: %s template %s does not fit %s", tpl.Kind, tpl.ID, category)
		return BudgetItem{}, fmt.Errorf("%w: %s in %s", ErrTemplateKindMismatch, tpl.Kind, category)
	}

	item := BudgetItem{
		ID:             s.newID(),
		TemplateID:     tpl.ID,
		Template:       tpl.Clone(),
		Customizations: Customizations{},
		Quantity:       1,
	}
	if category == CategoryActivities {
		item.IncludeTransport = tpl.RequiresTransport()
	}

	if category == CategoryStay {
		s.budget.SelectedStay = &item
		s.touch()
		s.logger().Debugf("stay set to %s", tpl.ID)
		return item.Clone(), nil
	}

	list := s.items(category)
	for _, existing := range *list {
		if existing.TemplateID == tpl.ID {
			s.logger().Warnf("add item refused: template %s already selected in %s", tpl.ID, category)
			return BudgetItem{}, &DuplicateTemplateError{Category: category, TemplateID: tpl.ID, ItemID: existing.ID}
		}
	}
	*list = append(*list, item)
	s.touch()
	s.logger().Debugf("added %s to %s as %s", tpl.ID, category, item.ID)
	return item.Clone(), nil
}

// RemoveItem drops an item by its own id. For the stay the slot is
// cleared whatever the id. Assignments linked to a removed activity
// become standalone bookings.
func (s *Selection) RemoveItem(category Category, itemID string) error {
	if err := s.ensureOpen("remove item"); err != nil {
		return err
	}
	if itemID == "" {
		s.logger().Errorf("remove item from %s refused: no item id", category)
		return ErrMissingItemID
	}
	if _, err := ParseCategory(string(category)); err != nil {
		s.logger().Warnf("remove item refused: %v", err)
		return err
	}

	if category == CategoryStay {
		s.budget.SelectedStay = nil
		s.touch()
		return nil
	}

	list := s.items(category)
	kept := make([]BudgetItem, 0, len(*list))
	found := false
	for _, it := range *list {
		if it.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		s.logger().Warnf("remove item refused: %s not found in %s", itemID, category)
		return ErrItemNotFound
	}
	*list = kept

	if category == CategoryActivities {
		for i := range s.budget.TransportAssignments {
			if s.budget.TransportAssignments[i].ActivityID == itemID {
				s.budget.TransportAssignments[i].ActivityID = ""
				s.logger().Infof("transport %s unlinked from removed activity %s",
					s.budget.TransportAssignments[i].ID, itemID)
			}
		}
	}

	s.touch()
	return nil
}

// ItemUpdate is a partial update. Nil fields are left alone.
type ItemUpdate struct {
	Quantity         *int
	Customizations   *Customizations
	IncludeTransport *bool
	CalculatedPrice  *decimal.Decimal
	GuestCount       *int
	Template         *Template
}

// UpdateItem merges an update into the item with the given id. A
// replacement template keeps the item's template id.
func (s *Selection) UpdateItem(category Category, itemID string, upd ItemUpdate) error {
	if err := s.ensureOpen("update item"); err != nil {
		return err
	}
	if itemID == "" {
		s.logger().Errorf("update item in %s refused: no item id", category)
		return ErrMissingItemID
	}
	if _, err := ParseCategory(string(category)); err != nil {
		s.logger().Warnf("update item refused: %v", err)
		return err
	}
	if upd.Quantity != nil && *upd.Quantity < 1 {
		s.logger().Warnf("update item %s refused: quantity %d", itemID, *upd.Quantity)
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidFieldValue)
	}
	if upd.Template != nil && !category.Accepts(upd.Template.Kind) {
		s.logger().Warnf("update item %s refused: %s template in %s", itemID, upd.Template.Kind, category)
		return fmt.Errorf("%w: %s in %s", ErrTemplateKindMismatch, upd.Template.Kind, category)
	}

	var target *BudgetItem
	if category == CategoryStay {
		if s.budget.SelectedStay != nil && s.budget.SelectedStay.ID == itemID {
			target = s.budget.SelectedStay
		}
	} else {
		list := *s.items(category)
		for i := range list {
			if list[i].ID == itemID {
				target = &list[i]
				break
			}
		}
	}
	if target == nil {
		s.logger().Warnf("update item refused: %s not found in %s", itemID, category)
		return ErrItemNotFound
	}

	if upd.Quantity != nil {
		target.Quantity = *upd.Quantity
	}
	if upd.Customizations != nil {
		target.Customizations = upd.Customizations.clone()
	}
	if upd.IncludeTransport != nil {
		target.IncludeTransport = *upd.IncludeTransport
	}
	if upd.CalculatedPrice != nil {
		v := *upd.CalculatedPrice
		target.CalculatedPrice = &v
	}
	if upd.GuestCount != nil {
		v := *upd.GuestCount
		target.GuestCount = &v
	}
	if upd.Template != nil {
		t := upd.Template.Clone()
		t.ID = target.TemplateID
		target.Template = t
	}

	s.touch()
	return nil
}

// =============================================================================
// BASIC FIELDS
// =============================================================================

// Field names a scalar budget field settable through UpdateField.
type Field string

const (
	FieldClientName Field = "client_name"
	FieldEventDate  Field = "event_date"
	FieldGuestCount Field = "guest_count"
	FieldExtras     Field = "extras"
)

// UpdateField sets one scalar field. Values arriving from JSON (strings,
// float64, json.Number) are converted.
func (s *Selection) UpdateField(field Field, value any) error {
	if err := s.ensureOpen("update field"); err != nil {
		return err
	}

	switch field {
	case FieldClientName:
		v, ok := value.(string)
		if !ok {
			return s.badValue(field, value)
		}
		s.budget.ClientName = v

	case FieldEventDate:
		v, err := toDate(value)
		if err != nil {
			return s.badValue(field, value)
		}
		s.budget.EventDate = v

	case FieldGuestCount:
		v, err := toInt(value)
		if err != nil {
			return s.badValue(field, value)
		}
		s.budget.GuestCount = v

	case FieldExtras:
		v, err := toDecimal(value)
		if err != nil {
			return s.badValue(field, value)
		}
		s.budget.Extras = v

	default:
		s.logger().Warnf("update field refused: unknown field %q", field)
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	s.touch()
	return nil
}

func (s *Selection) badValue(field Field, value any) error {
	s.logger().Warnf("update field %s refused: bad value %v (%T)", field, value, value)
	return fmt.Errorf("%w: %s = %v", ErrInvalidFieldValue, field, value)
}

// =============================================================================
// CLOSE
// =============================================================================

// Close records payment and freezes the budget. Error findings block it;
// warnings do not. The returned snapshot has a fresh total.
func (s *Selection) Close(details PaymentDetails) (Budget, error) {
	if err := s.ensureOpen("close"); err != nil {
		return Budget{}, err
	}

	findings := s.Validate()
	if HasErrors(findings) {
		s.logger().Infof("close refused: %d findings", len(findings))
		return Budget{}, &ValidationFailedError{Findings: findings}
	}

	s.recalculate()
	now := s.clock.Now()
	s.budget.IsClosed = true
	s.budget.ClosedAt = &now
	s.budget.UpdatedAt = now
	if details != nil {
		s.budget.PaymentDetails = make(PaymentDetails, len(details))
		for k, v := range details {
			s.budget.PaymentDetails[k] = v
		}
	}
	s.dirty = true

	s.logger().WithField("total", s.budget.TotalAmount.StringFixed(2)).Info("budget closed")
	return s.Snapshot(), nil
}

// =============================================================================
// VALUE CONVERSION
// =============================================================================

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, ErrInvalidFieldValue
		}
		return int(x), nil
	case json.Number:
		n, err := x.Int64()
		return int(n), err
	case string:
		return strconv.Atoi(x)
	}
	return 0, ErrInvalidFieldValue
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(x)
	}
	return decimal.Zero, ErrInvalidFieldValue
}

func toDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		if x == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse("2006-01-02", x); err == nil {
			return t, nil
		}
		return time.Parse(time.RFC3339, x)
	}
	return time.Time{}, ErrInvalidFieldValue
}
