package payment

import (
	"context"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/amirasaad/axeria/pkg/service/admin"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *Service
	uow    repository.UnitOfWork
	bus    *infraeventbus.MemoryEventBus
	method *payment.Method
}

func setup(t *testing.T, botAmount int64) *fixture {
	t.Helper()
	uow := testutils.NewTestUoW(t)
	logger := testutils.DiscardLogger()
	bus := infraeventbus.NewWithMemory(logger)
	settings := admin.New(uow, &config.Site{BotAmount: decimal.NewFromInt(botAmount)}, logger)
	svc := New(uow, bus, settings, logger)
	m, err := svc.CreateMethod(context.Background(), MethodInput{Name: "USDT", WalletAddress: "T-wallet", Active: true})
	require.NoError(t, err)
	return &fixture{svc: svc, uow: uow, bus: bus, method: m}
}

func (f *fixture) linkedTransaction(t *testing.T, paymentID uuid.UUID) *transaction.Transaction {
	t.Helper()
	tx, err := f.uow.TransactionRepository().GetBySource(context.Background(), transaction.SourcePayment, paymentID)
	require.NoError(t, err)
	return tx
}

func TestFundThenApproveCreditsOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})

	p, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(100), f.method.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Len(t, p.TransactionNo, 12)
	tx := f.linkedTransaction(t, p.ID)
	assert.Equal(t, transaction.TypeDeposit, tx.Type)
	assert.Equal(t, transaction.StatusPending, tx.Status)

	approved, err := f.svc.Approve(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, approved.Status)

	balances := testutils.Balances(t, f.uow, u.ID)
	assert.True(t, balances.CurrentDeposit.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, transaction.StatusCompleted, f.linkedTransaction(t, p.ID).Status)

	_, err = f.svc.Approve(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.Decline(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	balances = testutils.Balances(t, f.uow, u.ID)
	assert.True(t, balances.CurrentDeposit.Equal(decimal.NewFromInt(100)))

	drift, err := ledgersvc.New(f.uow, testutils.DiscardLogger()).Reconcile(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, drift)

	var types []string
	for _, e := range f.bus.Published() {
		types = append(types, e.Type())
	}
	assert.Equal(t, []string{
		events.EventTypePaymentRequested.String(),
		events.EventTypePaymentApproved.String(),
	}, types)
}

func TestDeclineLeavesBalances(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	u := testutils.CreateUser(t, f.uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(10)})

	p, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(40), f.method.ID)
	require.NoError(t, err)
	declined, err := f.svc.Decline(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, declined.Status)
	assert.Equal(t, transaction.StatusFailed, f.linkedTransaction(t, p.ID).Status)
	assert.True(t, testutils.Balances(t, f.uow, u.ID).CurrentDeposit.Equal(decimal.NewFromInt(10)))
}

func TestApproveUnknownPayment(t *testing.T) {
	f := setup(t, 0)
	_, err := f.svc.Approve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApproveToleratesMissingTransaction(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})

	p, err := payment.New(u.ID, decimal.NewFromInt(25), f.method.ID, payment.PurposeDeposit, nil)
	require.NoError(t, err)
	p.TransactionNo = "199901010001"
	require.NoError(t, f.uow.PaymentRepository().Create(ctx, p))

	_, err = f.svc.Approve(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, testutils.Balances(t, f.uow, u.ID).CurrentDeposit.Equal(decimal.NewFromInt(25)))
}

func TestTransactionNumbersFollowDailySequence(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return day }
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})

	first, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(1), f.method.ID)
	require.NoError(t, err)
	second, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(2), f.method.ID)
	require.NoError(t, err)
	assert.Equal(t, "202501010001", first.TransactionNo)
	assert.Equal(t, "202501010002", second.TransactionNo)

	gap, err := payment.New(u.ID, decimal.NewFromInt(3), f.method.ID, payment.PurposeDeposit, nil)
	require.NoError(t, err)
	gap.TransactionNo = "202501010005"
	require.NoError(t, f.uow.PaymentRepository().Create(ctx, gap))

	next, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(4), f.method.ID)
	require.NoError(t, err)
	assert.Equal(t, "202501010006", next.TransactionNo)

	f.svc.now = func() time.Time { return day.AddDate(0, 0, 1) }
	tomorrow, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(5), f.method.ID)
	require.NoError(t, err)
	assert.Equal(t, "202501020001", tomorrow.TransactionNo)
}

// staleNumbersUoW hands out a PaymentRepository whose first stale reads
// of the highest transaction number miss a row another request already
// committed, as happens when two submissions land in the same second.
type staleNumbersUoW struct {
	repository.UnitOfWork
	stale int
	reads *int
}

func (u staleNumbersUoW) Do(ctx context.Context, fn func(repository.UnitOfWork) error) error {
	return u.UnitOfWork.Do(ctx, func(inner repository.UnitOfWork) error {
		return fn(staleNumbersUoW{UnitOfWork: inner, stale: u.stale, reads: u.reads})
	})
}

func (u staleNumbersUoW) PaymentRepository() repository.PaymentRepository {
	return stalePayments{PaymentRepository: u.UnitOfWork.PaymentRepository(), stale: u.stale, reads: u.reads}
}

type stalePayments struct {
	repository.PaymentRepository
	stale int
	reads *int
}

func (p stalePayments) HighestTransactionNo(ctx context.Context, prefix string) (string, error) {
	*p.reads++
	if *p.reads <= p.stale {
		return "", nil
	}
	return p.PaymentRepository.HighestTransactionNo(ctx, prefix)
}

func TestFundRetriesTakenTransactionNumber(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	day := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return day }
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})

	taken, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(10), f.method.ID)
	require.NoError(t, err)
	require.Equal(t, "202503070001", taken.TransactionNo)

	reads := 0
	f.svc.uow = staleNumbersUoW{UnitOfWork: f.uow, stale: 1, reads: &reads}
	p, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(20), f.method.ID)
	require.NoError(t, err)
	assert.Equal(t, "202503070002", p.TransactionNo)
	assert.Equal(t, 2, reads)

	stored, err := f.uow.PaymentRepository().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	tx := f.linkedTransaction(t, p.ID)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(20)))
}

func TestFundGivesUpAfterMaxNumberAttempts(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	day := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return day }
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})

	_, err := f.svc.Fund(ctx, u.ID, decimal.NewFromInt(10), f.method.ID)
	require.NoError(t, err)
	f.bus.ClearPublished()

	reads := 0
	f.svc.uow = staleNumbersUoW{UnitOfWork: f.uow, stale: maxNumberAttempts + 1, reads: &reads}
	_, err = f.svc.Fund(ctx, u.ID, decimal.NewFromInt(20), f.method.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, maxNumberAttempts, reads)

	stored, err := f.uow.PaymentRepository().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Empty(t, f.bus.Published())
}

func TestFundValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})

	_, err := f.svc.Fund(ctx, u.ID, decimal.Zero, f.method.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.Fund(ctx, u.ID, decimal.NewFromInt(10), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.UpdateMethod(ctx, f.method.ID, MethodInput{Name: "USDT", WalletAddress: "T-wallet", Active: false})
	require.NoError(t, err)
	_, err = f.svc.Fund(ctx, u.ID, decimal.NewFromInt(10), f.method.ID)
	assert.ErrorIs(t, err, domain.ErrInactive)

	active, err := f.svc.Methods(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInvoiceIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 0)
	owner := testutils.CreateUser(t, f.uow, ledger.Balances{})
	other := testutils.CreateUser(t, f.uow, ledger.Balances{})

	p, err := f.svc.Fund(ctx, owner.ID, decimal.NewFromInt(10), f.method.ID)
	require.NoError(t, err)
	got, err := f.svc.Invoice(ctx, owner.ID, p.Ref)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	_, err = f.svc.Invoice(ctx, other.ID, p.Ref)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func createPortfolio(t *testing.T, uow repository.UnitOfWork, userID uuid.UUID) *portfolio.Portfolio {
	t.Helper()
	ctx := context.Background()
	plan := &portfolio.Plan{
		ID: uuid.New(), Name: "Starter-" + uuid.NewString()[:6], Active: true, PlanType: portfolio.PlanShort,
		RecurringDays: 1, Term: 1, DurationMultiplier: 1, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, uow.PlanRepository().Create(ctx, plan))
	pf, err := portfolio.New(userID, plan, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, uow.PortfolioRepository().Create(ctx, pf))
	return pf
}

func TestBuyBotActivatesPortfolioOnApproval(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 50)
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})
	other := testutils.CreateUser(t, f.uow, ledger.Balances{})
	pf := createPortfolio(t, f.uow, u.ID)

	_, err := f.svc.BuyBot(ctx, other.ID, pf.ID, f.method.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := f.svc.BuyBot(ctx, u.ID, pf.ID, f.method.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.PurposeBot, p.Purpose)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, transaction.TypeBot, f.linkedTransaction(t, p.ID).Type)

	_, err = f.svc.Approve(ctx, p.ID)
	require.NoError(t, err)
	stored, err := f.uow.PortfolioRepository().Get(ctx, pf.ID)
	require.NoError(t, err)
	assert.True(t, stored.BotActive)
	assert.True(t, testutils.Balances(t, f.uow, u.ID).CurrentDeposit.Equal(decimal.NewFromInt(50)))
}

func TestBuyBotDisabledWithoutPrice(t *testing.T) {
	f := setup(t, 0)
	u := testutils.CreateUser(t, f.uow, ledger.Balances{})
	pf := createPortfolio(t, f.uow, u.ID)
	_, err := f.svc.BuyBot(context.Background(), u.ID, pf.ID, f.method.ID)
	assert.ErrorIs(t, err, domain.ErrInactive)
}
