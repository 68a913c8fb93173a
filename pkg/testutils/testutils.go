// Package testutils holds helpers shared by service, handler and
// integration tests.
package testutils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infrarepo "github.com/amirasaad/axeria/infra/repository"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the password of every user made by CreateUser.
const TestPassword = "password123"

// NewTestDB opens a private in-memory SQLite database with the full schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infrarepo.AutoMigrate(db))
	return db
}

// NewTestUoW returns a unit of work over a fresh NewTestDB.
func NewTestUoW(t testing.TB) repository.UnitOfWork {
	t.Helper()
	return infrarepo.NewUoW(NewTestDB(t))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateUser stores a trader with a random name and the given balances.
// Balances written here bypass the ledger, so reconciliation starts from
// an opening entry per non-zero field.
func CreateUser(t testing.TB, uow repository.UnitOfWork, balances ledger.Balances) *user.User {
	t.Helper()
	return createUser(t, uow, user.RoleTrader, balances)
}

// CreateAdmin stores an administrator with a random name.
func CreateAdmin(t testing.TB, uow repository.UnitOfWork) *user.User {
	t.Helper()
	return createUser(t, uow, user.RoleAdmin, ledger.Balances{})
}

func createUser(t testing.TB, uow repository.UnitOfWork, role user.Role, balances ledger.Balances) *user.User {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	u, err := user.NewUser("user_"+suffix, "user_"+suffix+"@example.com", TestPassword)
	require.NoError(t, err)
	u.Role = role
	require.NoError(t, uow.UserRepository().Create(ctx, u))
	if balances == (ledger.Balances{}) {
		return u
	}
	entries, err := (&ledger.Balances{}).Apply(ledger.SetOp(balances))
	require.NoError(t, err)
	require.NoError(t, uow.UserRepository().UpdateBalances(ctx, u.ID, balances, u.Version))
	src := ledger.Source{Type: "admin", ID: u.ID, Reason: "opening balance"}
	require.NoError(t, uow.LedgerRepository().Append(ctx, ledger.NewRecords(u.ID, src, entries)))
	u.Balances = balances
	u.Version++
	return u
}

// Balances re-reads the user's stored balances.
func Balances(t testing.TB, uow repository.UnitOfWork, userID uuid.UUID) ledger.Balances {
	t.Helper()
	u, err := uow.UserRepository().Get(context.Background(), userID)
	require.NoError(t, err)
	return u.Balances
}

// MakeRequest runs one request against app. body, when non-empty, is sent
// as JSON; token, when non-empty, as a bearer token.
func MakeRequest(t testing.TB, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// StartPostgres starts a disposable Postgres container and returns its DSN.
func StartPostgres(t testing.TB) string {
	t.Helper()
	ctx := context.Background()
	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })
	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}
