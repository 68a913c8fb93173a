//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"

	infraeventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/infra/migrations"
	infrarepo "github.com/amirasaad/axeria/infra/repository"
	"github.com/amirasaad/axeria/pkg/app"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	paymentsvc "github.com/amirasaad/axeria/pkg/service/payment"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresSuite struct {
	suite.Suite
	db  *gorm.DB
	app *app.App
}

func (s *PostgresSuite) SetupSuite() {
	dsn := testutils.StartPostgres(s.T())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(sqlDB))
	s.db = db

	log := testutils.DiscardLogger()
	s.app = app.New(&app.Deps{
		Uow:      infrarepo.NewUoW(db),
		EventBus: infraeventbus.NewWithMemory(log),
		Logger:   log,
	}, &config.App{Site: &config.Site{Name: "Axeria"}, Ledger: &config.Ledger{}})
}

func (s *PostgresSuite) TearDownSuite() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Approvals racing on one user either apply or fail with a concurrency
// error; the stored balance always equals the ledger.
func (s *PostgresSuite) TestConcurrentApprovalsKeepLedgerConsistent() {
	ctx := context.Background()
	uow := s.app.Deps.Uow
	trader := testutils.CreateUser(s.T(), uow, ledger.Balances{})
	method, err := s.app.PaymentService.CreateMethod(ctx, paymentsvc.MethodInput{
		Name: "USDT", WalletAddress: "TXYZ1234567", Active: true,
	})
	s.Require().NoError(err)

	var pending []*payment.Payment
	for i := 1; i <= 8; i++ {
		p, err := s.app.PaymentService.Fund(ctx, trader.ID, decimal.NewFromInt(int64(i*10)), method.ID)
		s.Require().NoError(err)
		pending = append(pending, p)
	}

	approved := make([]bool, len(pending))
	var g errgroup.Group
	for i, p := range pending {
		g.Go(func() error {
			_, err := s.app.PaymentService.Approve(ctx, p.ID)
			switch {
			case err == nil:
				approved[i] = true
			case errors.Is(err, domain.ErrConcurrentUpdate):
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	want := decimal.Zero
	for i, ok := range approved {
		if ok {
			want = want.Add(pending[i].Amount)
		}
	}
	s.True(want.IsPositive())
	s.True(testutils.Balances(s.T(), uow, trader.ID).CurrentDeposit.Equal(want))

	drift, err := s.app.LedgerService.Reconcile(ctx, trader.ID)
	s.Require().NoError(err)
	s.Empty(drift)
}

func (s *PostgresSuite) TestForeignKeysMapToInUse() {
	ctx := context.Background()
	trader := testutils.CreateUser(s.T(), s.app.Deps.Uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(500)})
	plan, err := s.app.PortfolioService.CreatePlan(ctx, portfolio.Plan{
		Name:               "Starter",
		Percentage:         decimal.NewFromInt(5),
		MinimumInvestment:  decimal.NewFromInt(100),
		Active:             true,
		PlanType:           portfolio.PlanShort,
		RecurringDays:      1,
		Term:               1,
		DurationMultiplier: 7,
	})
	s.Require().NoError(err)
	_, err = s.app.PortfolioService.Invest(ctx, trader.ID, plan.ID, decimal.NewFromInt(150))
	s.Require().NoError(err)

	s.ErrorIs(s.app.PortfolioService.DeletePlan(ctx, plan.ID), domain.ErrInUse)
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}
