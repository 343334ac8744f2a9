package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/internal/clock"
	"github.com/warp/party-budget/payment"
)

func TestStub_Confirm(t *testing.T) {
	s := payment.NewStub("")
	s.Clock = &clock.MockClock{FixedNow: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}

	details, err := s.Confirm(context.Background(), "b-1", decimal.RequireFromString("1065.5"))
	require.NoError(t, err)

	assert.Equal(t, "manual", details["method"])
	assert.Equal(t, "1065.50", details["amount"])
	assert.Equal(t, "2026-03-02T10:00:00Z", details["confirmed_at"])
	ref, ok := details["reference"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^PAY-[0-9A-F]{12}$`, ref)
}

func TestStub_ReferencesAreUnique(t *testing.T) {
	s := payment.NewStub("card")
	a, err := s.Confirm(context.Background(), "b-1", decimal.Zero)
	require.NoError(t, err)
	b, err := s.Confirm(context.Background(), "b-1", decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "card", a["method"])
	assert.NotEqual(t, a["reference"], b["reference"])
}

func TestStub_Rejects(t *testing.T) {
	s := payment.NewStub("manual")

	_, err := s.Confirm(context.Background(), "", decimal.Zero)
	assert.ErrorIs(t, err, budget.ErrMissingItemID)

	_, err = s.Confirm(context.Background(), "b-1", decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Confirm(ctx, "b-1", decimal.Zero)
	assert.ErrorIs(t, err, context.Canceled)
}
