// Package store provides budget.Repository implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/party-budget/budget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	budgets map[string]budget.Budget
}

func NewMemory() *Memory {
	return &Memory{
		budgets: make(map[string]budget.Budget),
	}
}

// Save stores a closed budget. Saving the same close again replaces it;
// any other budget under a saved id is refused.
func (m *Memory) Save(_ context.Context, b budget.Budget) error {
	if err := budget.CheckSavable(b); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.budgets[b.ID]; ok && !budget.SameClose(existing, b) {
		return fmt.Errorf("budget %s: %w", b.ID, budget.ErrBudgetExists)
	}
	m.budgets[b.ID] = b.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (budget.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.budgets[id]
	if !ok {
		return budget.Budget{}, budget.ErrBudgetNotFound
	}
	return b.Clone(), nil
}

func (m *Memory) List(_ context.Context) ([]budget.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]budget.Budget, 0, len(m.budgets))
	for _, b := range m.budgets {
		result = append(result, b.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := closedAt(result[i]), closedAt(result[j])
		if a.Equal(b) {
			return result[i].ID < result[j].ID
		}
		return a.After(b)
	})
	return result, nil
}

func closedAt(b budget.Budget) time.Time {
	if b.ClosedAt != nil {
		return *b.ClosedAt
	}
	return b.UpdatedAt
}
