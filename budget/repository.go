package budget

import "context"

// =============================================================================
// REPOSITORY - Where closed budgets go
// =============================================================================

// Repository persists closed budgets. A saved budget is a terminal record:
// Save refuses drafts, and there is no update path. Saving an id again is
// only accepted for the same close (same ClosedAt), so a failed save can be
// retried.
//
// Implementations:
//   - budget/store.Memory: in-memory, for tests and the CLI
//   - store/sqlite.Store: SQLite
type Repository interface {
	// Save stores a closed budget. Returns ErrValidationFailed wrapped when
	// the budget is not closed or its total disagrees with its breakdown,
	// and ErrBudgetExists when the id belongs to another close.
	Save(ctx context.Context, b Budget) error

	// Get returns the budget with the given id, or ErrBudgetNotFound.
	Get(ctx context.Context, id string) (Budget, error)

	// List returns saved budgets, most recently closed first.
	List(ctx context.Context) ([]Budget, error)
}

// CheckSavable enforces the save contract shared by every Repository.
func CheckSavable(b Budget) error {
	if b.ID == "" {
		return ErrMissingItemID
	}
	if !b.IsClosed {
		return &ValidationFailedError{Findings: []Finding{{
			Section: SectionGeneral, Message: "Only closed budgets can be saved", Severity: SeverityError,
		}}}
	}
	if !b.TotalAmount.Equal(b.Breakdown.Sum()) {
		return &ValidationFailedError{Findings: []Finding{{
			Section: SectionGeneral, Message: "Total does not match breakdown", Severity: SeverityError,
		}}}
	}
	return nil
}

// SameClose reports whether two saved budgets come from the same close.
func SameClose(a, b Budget) bool {
	if a.ClosedAt == nil || b.ClosedAt == nil {
		return a.ClosedAt == nil && b.ClosedAt == nil
	}
	return a.ClosedAt.Equal(*b.ClosedAt)
}
