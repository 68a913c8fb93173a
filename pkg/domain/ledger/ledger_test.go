package ledger_test

import (
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreditAndDebit(t *testing.T) {
	t.Parallel()
	var b ledger.Balances

	e, err := b.Credit(ledger.CurrentDeposit, d("100"))
	require.NoError(t, err)
	assert.True(t, e.Delta.Equal(d("100")))
	assert.True(t, b.CurrentDeposit.Equal(d("100")))

	e, err = b.Debit(ledger.CurrentDeposit, d("40.50"))
	require.NoError(t, err)
	assert.True(t, e.Delta.Equal(d("-40.50")))
	assert.True(t, e.BalanceAfter.Equal(d("59.50")))
}

func TestDebitNeverGoesNegative(t *testing.T) {
	t.Parallel()
	b := ledger.Balances{Profit: d("10")}

	_, err := b.Debit(ledger.Profit, d("10.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, b.Profit.Equal(d("10")), "failed debit must not mutate")
}

func TestInvalidAmounts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"zero", decimal.Zero},
		{"negative", d("-5")},
		{"sub-cent", d("1.005")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var b ledger.Balances
			_, err := b.Credit(ledger.Profit, tc.amount)
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		})
	}
}

func TestDebitUpToClampsAtZero(t *testing.T) {
	t.Parallel()
	b := ledger.Balances{Profit: d("30")}

	e, err := b.DebitUpTo(ledger.Profit, d("50"))
	require.NoError(t, err)
	assert.True(t, e.Delta.Equal(d("-30")))
	assert.True(t, b.Profit.IsZero())
}

func TestMoveIsAllOrNothing(t *testing.T) {
	t.Parallel()
	b := ledger.Balances{CurrentDeposit: d("20")}

	_, err := b.Move(ledger.CurrentDeposit, ledger.ROIInvestment, d("25"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, b.CurrentDeposit.Equal(d("20")))
	assert.True(t, b.ROIInvestment.IsZero())

	entries, err := b.Move(ledger.CurrentDeposit, ledger.ROIInvestment, d("15"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, b.CurrentDeposit.Equal(d("5")))
	assert.True(t, b.ROIInvestment.Equal(d("15")))
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	b := ledger.Balances{CurrentDeposit: d("100")}

	_, err := b.Apply(
		ledger.DebitOp(ledger.CurrentDeposit, d("60")),
		ledger.DebitOp(ledger.CurrentDeposit, d("60")),
	)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, b.CurrentDeposit.Equal(d("100")))
}

func TestSetOpRecordsDifferences(t *testing.T) {
	t.Parallel()
	b := ledger.Balances{CurrentDeposit: d("100"), Profit: d("5")}

	entries, err := b.Apply(ledger.SetOp(ledger.Balances{CurrentDeposit: d("80"), Profit: d("5"), CopyExpenses: d("1")}))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.CurrentDeposit, entries[0].Field)
	assert.True(t, entries[0].Delta.Equal(d("-20")))
	assert.Equal(t, ledger.CopyExpenses, entries[1].Field)
}

func TestReconcile(t *testing.T) {
	t.Parallel()
	var b ledger.Balances
	entries, err := b.Apply(
		ledger.CreditOp(ledger.CurrentDeposit, d("100")),
		ledger.MoveOp(ledger.CurrentDeposit, ledger.CopyExpenses, d("30")),
	)
	require.NoError(t, err)
	assert.Empty(t, ledger.Reconcile(b, entries))

	b.Profit = d("7")
	drift := ledger.Reconcile(b, entries)
	require.Len(t, drift, 1)
	assert.Equal(t, ledger.Profit, drift[0].Field)
}
