// Package payment confirms payment for a budget before it is closed.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/internal/clock"
)

// ErrInvalidAmount is returned for negative amounts.
var ErrInvalidAmount = errors.New("payment amount must not be negative")

// Confirmer records a payment and returns the details stored on the
// closed budget.
type Confirmer interface {
	Confirm(ctx context.Context, budgetID string, amount decimal.Decimal) (budget.PaymentDetails, error)
}

// Stub confirms every payment immediately. It stands in for a payment
// provider in development and tests.
type Stub struct {
	Method string
	Clock  clock.Clock
}

// NewStub returns a stub confirming with the given method name.
func NewStub(method string) *Stub {
	if method == "" {
		method = "manual"
	}
	return &Stub{Method: method, Clock: clock.SystemClock{}}
}

func (s *Stub) Confirm(ctx context.Context, budgetID string, amount decimal.Decimal) (budget.PaymentDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if budgetID == "" {
		return nil, budget.ErrMissingItemID
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.StringFixed(2))
	}

	ref := "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	now := s.Clock.Now()
	log.WithFields(log.Fields{
		"budget_id": budgetID,
		"reference": ref,
		"amount":    amount.StringFixed(2),
	}).Info("payment confirmed")

	return budget.PaymentDetails{
		"reference":    ref,
		"method":       s.Method,
		"amount":       amount.StringFixed(2),
		"confirmed_at": now.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
