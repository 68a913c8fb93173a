package admin_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/domain/site"
	"github.com/amirasaad/axeria/pkg/service/admin"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteConfigSeededOnFirstRead(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	svc := admin.New(uow, &config.Site{Name: "Axeria", BotAmount: decimal.NewFromInt(75)}, testutils.DiscardLogger())

	cfg, err := svc.SiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Axeria", cfg.SiteName)
	assert.True(t, cfg.BotAmount.Equal(decimal.NewFromInt(75)))

	stored, err := uow.SiteConfigRepository().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Axeria", stored.SiteName)

	updated, err := svc.UpdateSiteConfig(ctx, site.Config{SiteName: " Renamed ", WithdrawalCharge: decimal.NewFromInt(3)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.SiteName)
	cfg, err = svc.SiteConfig(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.WithdrawalCharge.Equal(decimal.NewFromInt(3)))

	_, err = svc.UpdateSiteConfig(ctx, site.Config{BotAmount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	svc := admin.New(uow, nil, testutils.DiscardLogger())

	testutils.CreateAdmin(t, uow)
	active := testutils.CreateUser(t, uow, ledger.Balances{})
	blocked := testutils.CreateUser(t, uow, ledger.Balances{})
	blocked.Blocked = true
	blocked.Active = false
	require.NoError(t, uow.UserRepository().Update(ctx, blocked))

	method, err := payment.NewMethod("BTC", "bc1q", nil)
	require.NoError(t, err)
	require.NoError(t, uow.PaymentMethodRepository().Create(ctx, method))
	for i, amount := range []int64{100, 250, 40} {
		p, err := payment.New(active.ID, decimal.NewFromInt(amount), method.ID, payment.PurposeDeposit, nil)
		require.NoError(t, err)
		p.TransactionNo = fmt.Sprintf("20250101%04d", i+1)
		if amount != 40 {
			p.Status = payment.StatusCompleted
		}
		require.NoError(t, uow.PaymentRepository().Create(ctx, p))
	}

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, d.TotalDeposits.Equal(decimal.NewFromInt(350)))
	assert.EqualValues(t, 2, d.Traders)
	assert.EqualValues(t, 1, d.DeactivatedTraders)
	assert.EqualValues(t, 1, d.BlockedTraders)
	assert.EqualValues(t, 1, d.PendingPayments)
	assert.EqualValues(t, 0, d.ActivePortfolios)
}
