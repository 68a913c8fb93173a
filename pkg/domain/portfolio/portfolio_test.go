package portfolio

import (
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() *Plan {
	return &Plan{
		ID:                 uuid.New(),
		Name:               "Starter",
		Percentage:         decimal.NewFromInt(5),
		MinimumInvestment:  decimal.NewFromInt(100),
		MaximumInvestment:  decimal.NewFromInt(1000),
		Active:             true,
		PlanType:           PlanShort,
		RecurringDays:      1,
		Term:               4,
		DurationMultiplier: 7,
	}
}

func TestPlanValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, validPlan().Validate())

	tests := []struct {
		name   string
		mutate func(p *Plan)
	}{
		{"max below min", func(p *Plan) { p.MaximumInvestment = decimal.NewFromInt(50) }},
		{"bad multiplier", func(p *Plan) { p.DurationMultiplier = 3 }},
		{"empty name", func(p *Plan) { p.Name = "  " }},
		{"bad type", func(p *Plan) { p.PlanType = "medium" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := validPlan()
			tc.mutate(p)
			assert.ErrorIs(t, p.Validate(), domain.ErrValidation)
		})
	}

	unbounded := validPlan()
	unbounded.MaximumInvestment = decimal.Zero
	assert.NoError(t, unbounded.Validate())
	assert.Equal(t, 28, unbounded.DurationDays())
}

func TestPlanAccepts(t *testing.T) {
	t.Parallel()
	p := validPlan()
	assert.NoError(t, p.Accepts(decimal.NewFromInt(100)))
	assert.ErrorIs(t, p.Accepts(decimal.NewFromInt(99)), domain.ErrInvalidAmount)
	assert.ErrorIs(t, p.Accepts(decimal.NewFromInt(1001)), domain.ErrInvalidAmount)

	p.Active = false
	assert.ErrorIs(t, p.Accepts(decimal.NewFromInt(100)), domain.ErrInactive)
}

func TestPortfolioTopUpAndWithdraw(t *testing.T) {
	t.Parallel()
	pf, err := New(uuid.New(), validPlan(), decimal.NewFromInt(200))
	require.NoError(t, err)

	require.NoError(t, pf.TopUp(decimal.NewFromInt(50)))
	assert.Equal(t, "250.00", pf.AmountInvested.StringFixed(2))

	assert.ErrorIs(t, pf.Withdraw(decimal.NewFromInt(1)), domain.ErrInsufficientFunds)

	pf.AmountAvailable = decimal.NewFromInt(30)
	require.NoError(t, pf.Withdraw(decimal.NewFromInt(10)))
	assert.Equal(t, "20.00", pf.AmountAvailable.StringFixed(2))

	pf.Status = StatusClosed
	assert.ErrorIs(t, pf.TopUp(decimal.NewFromInt(5)), domain.ErrInactive)
}
