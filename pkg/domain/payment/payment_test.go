package payment

import (
	"testing"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTransactionNo(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name    string
		highest string
		want    string
	}{
		{"first of the day", "", "202403090001"},
		{"continues sequence", "202403090005", "202403090006"},
		{"ignores previous day", "202403080042", "202403090001"},
		{"rolls past four digits", "202403099999", "2024030910000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NextTransactionNo(day, tc.highest))
		})
	}
}

func TestPaymentStateMachine(t *testing.T) {
	t.Parallel()
	p, err := New(uuid.New(), decimal.NewFromInt(100), uuid.New(), PurposeDeposit, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)

	require.NoError(t, p.Approve())
	assert.Equal(t, StatusCompleted, p.Status)

	assert.ErrorIs(t, p.Approve(), domain.ErrInvalidTransition)
	assert.ErrorIs(t, p.Decline(), domain.ErrInvalidTransition)
}

func TestNewPaymentValidation(t *testing.T) {
	t.Parallel()
	_, err := New(uuid.New(), decimal.Zero, uuid.New(), PurposeDeposit, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = New(uuid.New(), decimal.NewFromInt(5), uuid.New(), PurposeBot, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	portfolio := uuid.New()
	p, err := New(uuid.New(), decimal.NewFromInt(5), uuid.New(), PurposeDeposit, &portfolio)
	require.NoError(t, err)
	assert.Nil(t, p.PortfolioID)
}
