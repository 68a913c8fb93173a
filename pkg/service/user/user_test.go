package user_test

import (
	"context"
	"testing"

	infraeventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	usersvc "github.com/amirasaad/axeria/pkg/service/user"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/amirasaad/axeria/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*usersvc.Service, repository.UnitOfWork, *infraeventbus.MemoryEventBus) {
	t.Helper()
	uow := testutils.NewTestUoW(t)
	bus := infraeventbus.NewWithMemory(testutils.DiscardLogger())
	return usersvc.New(uow, bus, testutils.DiscardLogger()), uow, bus
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, bus := newService(t)

	u, err := svc.Register(ctx, "alice", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTrader, u.Role)
	assert.True(t, u.Active)
	assert.Equal(t, "alice@example.com", u.Email)

	published := bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeUserRegistered.String(), published[0].Type())

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = svc.Register(ctx, "alice2", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = svc.Register(ctx, "bob", "bob@example.com", "123")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProfileAndAccountChanges(t *testing.T) {
	ctx := context.Background()
	svc, uow, _ := newService(t)
	u := testutils.CreateUser(t, uow, ledger.Balances{})
	other := testutils.CreateUser(t, uow, ledger.Balances{})

	updated, err := svc.UpdateProfile(ctx, u.ID, usersvc.Profile{FirstName: " Ada ", City: "Cairo"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "en", updated.Language)

	_, err = svc.ChangeUsername(ctx, u.ID, other.Username)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	updated, err = svc.ChangeUsername(ctx, u.ID, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", updated.Username)

	_, err = svc.ChangeEmail(ctx, u.ID, other.Email)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = svc.ChangeEmail(ctx, u.ID, "not-an-email")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "newpass1"), user.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, testutils.TestPassword, "123"), domain.ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, testutils.TestPassword, "newpass1"))
	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("newpass1", stored.Password))
}

func TestAdminEditPostsBalanceAdjustments(t *testing.T) {
	ctx := context.Background()
	svc, uow, _ := newService(t)
	u := testutils.CreateUser(t, uow, ledger.Balances{CurrentDeposit: decimal.NewFromInt(100)})

	edited, err := svc.Edit(ctx, u.ID, usersvc.AdminEdit{
		FirstName:     "Grace",
		CustomMessage: "Please verify your identity",
		MessageFormat: user.MessagePopup,
		Balances: &ledger.Balances{
			CurrentDeposit: decimal.NewFromInt(150),
			Profit:         decimal.NewFromInt(5),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", edited.FirstName)
	assert.True(t, edited.Balances.CurrentDeposit.Equal(decimal.NewFromInt(150)))

	drift, err := ledgersvc.New(uow, testutils.DiscardLogger()).Reconcile(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, drift)

	_, err = svc.Edit(ctx, u.ID, usersvc.AdminEdit{MessageFormat: "banner"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBlockActivateDelete(t *testing.T) {
	ctx := context.Background()
	svc, uow, _ := newService(t)
	u := testutils.CreateUser(t, uow, ledger.Balances{})

	got, err := svc.SetBlocked(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Blocked)
	got, err = svc.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Active)

	blocked := true
	list, err := svc.List(ctx, repository.UserFilter{Role: user.RoleTrader, Blocked: &blocked})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Deactivate(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	records, err := uow.LedgerRepository().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateAdmin(t *testing.T) {
	svc, _, _ := newService(t)
	u, err := svc.CreateAdmin(context.Background(), "root", "root@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}
