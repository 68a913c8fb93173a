package withdrawal

import (
	"testing"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComputesNetAmount(t *testing.T) {
	t.Parallel()
	w, err := New(uuid.New(), TypeProfit, decimal.NewFromInt(100), decimal.RequireFromString("2.50"), "USDT", "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, "97.50", w.AvailableForWithdraw.StringFixed(2))
	assert.Equal(t, StatusPending, w.Status)
}

func TestNewRejectsChargeAboveAmount(t *testing.T) {
	t.Parallel()
	_, err := New(uuid.New(), TypeDeposit, decimal.NewFromInt(5), decimal.NewFromInt(5), "BTC", "addr")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = New(uuid.New(), Type("savings"), decimal.NewFromInt(5), decimal.Zero, "BTC", "addr")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDebitPolicy(t *testing.T) {
	t.Parallel()
	profit := &Withdrawal{Type: TypeProfit}
	deposit := &Withdrawal{Type: TypeDeposit}

	f, err := DebitByType.Field(profit)
	require.NoError(t, err)
	assert.Equal(t, ledger.Profit, f)

	f, err = DebitByType.Field(deposit)
	require.NoError(t, err)
	assert.Equal(t, ledger.CurrentDeposit, f)

	f, err = DebitLegacyDeposit.Field(profit)
	require.NoError(t, err)
	assert.Equal(t, ledger.CurrentDeposit, f)
}

func TestDecideOnlyOnce(t *testing.T) {
	t.Parallel()
	w := &Withdrawal{Status: StatusPending}
	require.NoError(t, w.Reject(time.Now()))
	assert.NotNil(t, w.DecidedAt)
	assert.ErrorIs(t, w.Approve(time.Now()), domain.ErrInvalidTransition)
}
