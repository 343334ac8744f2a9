/*
errors.go - Centralized error types for the quote engine

PURPOSE:
  All error types in one place. Mutations of a Selection never panic on
  bad input: they log, leave the draft untouched and return one of these.

ERROR CATEGORIES:
  1. Input errors - Missing ids, unknown categories or fields
  2. Invariant errors - Duplicates, broken links, capacity, closed budget
  3. Lookup errors - Items, assignments, templates, budgets not found
  4. Validation - Blocking findings at close time

SEE ALSO:
  - validation.go: Produces the findings wrapped by ValidationFailedError
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package budget

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingTemplateID is returned when a template has an empty id.
	ErrMissingTemplateID = errors.New("template id is required")

	// ErrMissingItemID is returned when a mutation names no item.
	ErrMissingItemID = errors.New("item id is required")

	// ErrDuplicateTemplate is returned when a template is already selected
	// in the same category.
	ErrDuplicateTemplate = errors.New("template already selected")

	// ErrTemplateKindMismatch is returned when a template kind does not
	// belong to the target category.
	ErrTemplateKindMismatch = errors.New("template kind does not fit category")

	// ErrUnknownCategory is returned for categories outside meals,
	// activities, transport and stay.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownField is returned by UpdateField for unsupported fields.
	ErrUnknownField = errors.New("unknown budget field")

	// ErrInvalidFieldValue is returned when a field value has the wrong type.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrItemNotFound is returned when no item has the given id.
	ErrItemNotFound = errors.New("item not found")

	// ErrAssignmentNotFound is returned when no assignment has the given id.
	ErrAssignmentNotFound = errors.New("transport assignment not found")

	// ErrActivityNotFound is returned when linking to an activity that is
	// not selected.
	ErrActivityNotFound = errors.New("activity not selected")

	// ErrActivityAlreadyLinked is returned when another assignment already
	// serves the activity.
	ErrActivityAlreadyLinked = errors.New("activity already has transport")

	// ErrCapacityExceeded is returned when guests do not fit the vehicle.
	ErrCapacityExceeded = errors.New("vehicle capacity exceeded")

	// ErrBudgetClosed is returned for any mutation after close.
	ErrBudgetClosed = errors.New("budget is closed")

	// ErrValidationFailed is returned when error findings block close.
	ErrValidationFailed = errors.New("budget validation failed")

	// ErrBudgetNotFound is returned by repositories.
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrBudgetExists is returned by repositories when the id already holds
	// a different saved budget.
	ErrBudgetExists = errors.New("budget already saved")

	// ErrTemplateNotFound is returned by catalog lookups.
	ErrTemplateNotFound = errors.New("template not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateTemplateError names the category and the template already there.
type DuplicateTemplateError struct {
	Category   Category
	TemplateID string
	ItemID     string
}

func (e *DuplicateTemplateError) Error() string {
	return fmt.Sprintf("template %s already selected in %s (item %s)", e.TemplateID, e.Category, e.ItemID)
}

func (e *DuplicateTemplateError) Unwrap() error { return ErrDuplicateTemplate }

// CategoryError reports an unknown category.
type CategoryError struct {
	Category Category
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", string(e.Category))
}

func (e *CategoryError) Unwrap() error { return ErrUnknownCategory }

// CapacityError reports a vehicle too small for the party.
type CapacityError struct {
	TransportID string
	Capacity    int
	Requested   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("transport %s seats %d, %d requested", e.TransportID, e.Capacity, e.Requested)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// LinkError reports an activity already served by another assignment.
type LinkError struct {
	ActivityID   string
	AssignmentID string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("activity %s already linked to transport %s", e.ActivityID, e.AssignmentID)
}

func (e *LinkError) Unwrap() error { return ErrActivityAlreadyLinked }

// ValidationFailedError carries the blocking findings.
type ValidationFailedError struct {
	Findings []Finding
}

func (e *ValidationFailedError) Error() string {
	var msgs []string
	for _, f := range e.Findings {
		if f.Severity == SeverityError {
			msgs = append(msgs, f.Message)
		}
	}
	return "budget validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationFailedError) Unwrap() error { return ErrValidationFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingTemplateID) ||
		errors.Is(err, ErrMissingItemID) ||
		errors.Is(err, ErrTemplateKindMismatch) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrInvalidFieldValue) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsConflict returns true if the error violates a selection invariant.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateTemplate) ||
		errors.Is(err, ErrActivityAlreadyLinked) ||
		errors.Is(err, ErrBudgetClosed) ||
		errors.Is(err, ErrBudgetExists)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrBudgetNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}
