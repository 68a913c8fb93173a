package portfolio_test

import (
	"context"
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	portfoliosvc "github.com/amirasaad/axeria/pkg/service/portfolio"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PortfolioServiceTestSuite struct {
	suite.Suite
	ctx  context.Context
	uow  repository.UnitOfWork
	svc  *portfoliosvc.Service
	plan *portfolio.Plan
}

func (s *PortfolioServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow = testutils.NewTestUoW(s.T())
	s.svc = portfoliosvc.New(s.uow, testutils.DiscardLogger())
	plan, err := s.svc.CreatePlan(s.ctx, planInput("Gold"))
	s.Require().NoError(err)
	s.plan = plan
}

func planInput(name string) portfolio.Plan {
	return portfolio.Plan{
		Name:               name,
		Percentage:         decimal.NewFromInt(5),
		MinimumInvestment:  decimal.NewFromInt(100),
		MaximumInvestment:  decimal.NewFromInt(1000),
		Active:             true,
		PlanType:           portfolio.PlanShort,
		RecurringDays:      1,
		Term:               2,
		DurationMultiplier: 7,
	}
}

func (s *PortfolioServiceTestSuite) reconcile(userID uuid.UUID) {
	drift, err := ledgersvc.New(s.uow, testutils.DiscardLogger()).Reconcile(s.ctx, userID)
	s.Require().NoError(err)
	s.Empty(drift)
}

func (s *PortfolioServiceTestSuite) TestPlanRules() {
	_, err := s.svc.CreatePlan(s.ctx, planInput("Gold"))
	s.ErrorIs(err, domain.ErrAlreadyExists)

	bad := planInput("Silver")
	bad.MaximumInvestment = decimal.NewFromInt(50)
	_, err = s.svc.CreatePlan(s.ctx, bad)
	s.ErrorIs(err, domain.ErrValidation)

	unbounded := planInput("Platinum")
	unbounded.MaximumInvestment = decimal.Zero
	_, err = s.svc.CreatePlan(s.ctx, unbounded)
	s.NoError(err)

	edit := planInput("Gold")
	edit.Active = false
	updated, err := s.svc.UpdatePlan(s.ctx, s.plan.ID, edit)
	s.Require().NoError(err)
	s.False(updated.Active)

	active, err := s.svc.Plans(s.ctx, true)
	s.Require().NoError(err)
	s.Len(active, 1)
}

func (s *PortfolioServiceTestSuite) TestInvestMovesDepositToInvestment() {
	u := testutils.CreateUser(s.T(), s.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(500)})

	pf, err := s.svc.Invest(s.ctx, u.ID, s.plan.ID, decimal.NewFromInt(300))
	s.Require().NoError(err)
	s.Equal(portfolio.StatusActive, pf.Status)
	s.True(pf.AmountInvested.Equal(decimal.NewFromInt(300)))

	b := testutils.Balances(s.T(), s.uow, u.ID)
	s.True(b.CurrentDeposit.Equal(decimal.NewFromInt(200)))
	s.True(b.ROIInvestment.Equal(decimal.NewFromInt(300)))

	txs, err := s.uow.TransactionRepository().ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Len(txs, 1)
	s.reconcile(u.ID)
}

func (s *PortfolioServiceTestSuite) TestInvestRefusals() {
	u := testutils.CreateUser(s.T(), s.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(150)})

	_, err := s.svc.Invest(s.ctx, u.ID, s.plan.ID, decimal.NewFromInt(50))
	s.ErrorIs(err, domain.ErrInvalidAmount)
	_, err = s.svc.Invest(s.ctx, u.ID, s.plan.ID, decimal.NewFromInt(2000))
	s.ErrorIs(err, domain.ErrInvalidAmount)
	_, err = s.svc.Invest(s.ctx, u.ID, s.plan.ID, decimal.NewFromInt(200))
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	_, err = s.svc.Invest(s.ctx, u.ID, uuid.New(), decimal.NewFromInt(100))
	s.ErrorIs(err, domain.ErrNotFound)

	list, err := s.svc.ListForUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(list)
	s.Error(s.svc.DeletePlan(s.ctx, uuid.New()))
}

func (s *PortfolioServiceTestSuite) TestTopUpAndWithdraw() {
	u := testutils.CreateUser(s.T(), s.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(1000)})
	other := testutils.CreateUser(s.T(), s.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(1000)})
	pf, err := s.svc.Invest(s.ctx, u.ID, s.plan.ID, decimal.NewFromInt(100))
	s.Require().NoError(err)

	_, err = s.svc.TopUp(s.ctx, other.ID, pf.ID, decimal.NewFromInt(10))
	s.ErrorIs(err, domain.ErrNotFound)

	pf, err = s.svc.TopUp(s.ctx, u.ID, pf.ID, decimal.NewFromInt(50))
	s.Require().NoError(err)
	s.True(pf.AmountInvested.Equal(decimal.NewFromInt(150)))

	_, err = s.svc.Withdraw(s.ctx, u.ID, pf.ID, decimal.NewFromInt(10))
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	_, err = s.svc.Edit(s.ctx, pf.ID, portfoliosvc.Edit{
		AmountInvested:  pf.AmountInvested,
		AmountAvailable: decimal.NewFromInt(40),
		Status:          portfolio.StatusActive,
	})
	s.Require().NoError(err)
	pf, err = s.svc.Withdraw(s.ctx, u.ID, pf.ID, decimal.NewFromInt(25))
	s.Require().NoError(err)
	s.True(pf.AmountAvailable.Equal(decimal.NewFromInt(15)))

	b := testutils.Balances(s.T(), s.uow, u.ID)
	s.True(b.CurrentDeposit.Equal(decimal.NewFromInt(850)))
	s.True(b.ROIInvestment.Equal(decimal.NewFromInt(150)))
	s.True(b.Profit.Equal(decimal.NewFromInt(25)))
	s.reconcile(u.ID)

	s.ErrorIs(s.svc.DeletePlan(s.ctx, s.plan.ID), domain.ErrInUse)
}

func (s *PortfolioServiceTestSuite) TestEditClosesPortfolio() {
	u := testutils.CreateUser(s.T(), s.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(500)})
	pf, err := s.svc.Invest(s.ctx, u.ID, s.plan.ID, decimal.NewFromInt(100))
	s.Require().NoError(err)

	_, err = s.svc.Edit(s.ctx, pf.ID, portfoliosvc.Edit{Status: "archived"})
	s.ErrorIs(err, domain.ErrValidation)

	edited, err := s.svc.Edit(s.ctx, pf.ID, portfoliosvc.Edit{
		AmountInvested: pf.AmountInvested,
		Status:         portfolio.StatusClosed,
		BotActive:      true,
		BotName:        "Atlas",
	})
	s.Require().NoError(err)
	s.Equal(portfolio.StatusClosed, edited.Status)

	_, err = s.svc.TopUp(s.ctx, u.ID, pf.ID, decimal.NewFromInt(10))
	s.ErrorIs(err, domain.ErrInactive)

	active, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
}

func TestPortfolioServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PortfolioServiceTestSuite))
}

func TestInvestIsAtomic(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	svc := portfoliosvc.New(uow, testutils.DiscardLogger())
	plan, err := svc.CreatePlan(ctx, planInput("Bronze"))
	require.NoError(t, err)
	u := testutils.CreateUser(t, uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(99)})

	_, err = svc.Invest(ctx, u.ID, plan.ID, decimal.NewFromInt(100))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.True(t, testutils.Balances(t, uow, u.ID).CurrentDeposit.Equal(decimal.NewFromInt(99)))
}
