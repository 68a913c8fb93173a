package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/user"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Login(ctx context.Context, identity, password string) (*user.User, error) {
	args := m.Called(ctx, identity, password)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockStrategy) GetCurrentUserID(ctx context.Context) (uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockStrategy) GenerateToken(ctx context.Context, u *user.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

var jwtCfg = &config.Jwt{Secret: "test-secret", Expiry: time.Hour}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	uow := testutils.NewTestUoW(t)
	u := testutils.CreateUser(t, uow, ledger.Balances{})
	svc := authsvc.NewWithJWT(uow, jwtCfg, testutils.DiscardLogger())

	got, err := svc.Login(context.Background(), u.Username, testutils.TestPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = svc.Login(context.Background(), u.Email, testutils.TestPassword, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	stored, err := uow.UserRepository().Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, "10.0.0.2", stored.LastLoginIP)
}

func TestLogin_Rejections(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	u := testutils.CreateUser(t, uow, ledger.Balances{})
	svc := authsvc.NewWithJWT(uow, jwtCfg, testutils.DiscardLogger())

	_, err := svc.Login(ctx, u.Username, "wrong-password", "")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, "ghost", testutils.TestPassword, "")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	u.Blocked = true
	require.NoError(t, uow.UserRepository().Update(ctx, u))
	_, err = svc.Login(ctx, u.Username, testutils.TestPassword, "")
	assert.ErrorIs(t, err, user.ErrUserBlocked)

	u.Blocked = false
	u.Active = false
	require.NoError(t, uow.UserRepository().Update(ctx, u))
	_, err = svc.Login(ctx, u.Username, testutils.TestPassword, "")
	assert.ErrorIs(t, err, user.ErrUserInactive)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGenerateTokenAndCurrentUser(t *testing.T) {
	uow := testutils.NewTestUoW(t)
	u := testutils.CreateAdmin(t, uow)
	svc := authsvc.NewWithJWT(uow, jwtCfg, testutils.DiscardLogger())

	signed, err := svc.GenerateToken(context.Background(), u)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte(jwtCfg.Secret), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["role"])

	id, err := svc.GetCurrentUserId(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = svc.GetCurrentUserId(jwt.New(jwt.SigningMethodHS256))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_StrategyFailureIsReturned(t *testing.T) {
	strategy := new(mockStrategy)
	strategy.On("Login", mock.Anything, "user@example.com", "wrong").
		Return(nil, user.ErrInvalidCredentials).Once()

	svc := authsvc.New(nil, strategy, testutils.DiscardLogger())
	got, err := svc.Login(context.Background(), "user@example.com", "wrong", "")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.Nil(t, got)
	strategy.AssertExpectations(t)
}

func TestBasicAuthStrategy(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	u := testutils.CreateUser(t, uow, ledger.Balances{})
	strategy := authsvc.NewBasicAuthStrategy(uow, testutils.DiscardLogger())

	_, err := strategy.GetCurrentUserID(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = strategy.Login(ctx, u.Username, testutils.TestPassword)
	require.NoError(t, err)
	id, err := strategy.GetCurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}
