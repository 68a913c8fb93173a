package repository

import (
	"context"
	"time"

	"github.com/amirasaad/axeria/pkg/domain/copytrade"
	"github.com/amirasaad/axeria/pkg/domain/kyc"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/livetrade"
	"github.com/amirasaad/axeria/pkg/domain/market"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/amirasaad/axeria/pkg/domain/site"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/domain/withdrawal"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserFilter narrows user listings. Nil pointers match everything.
type UserFilter struct {
	Role    user.Role
	Active  *bool
	Blocked *bool
}

// UserRepository defines the interface for user data access operations.
// Lookups return domain.ErrNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	// GetForUpdate reads the row under a write lock where the database
	// supports one.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	// Taken reports whether another user already holds username or email.
	Taken(ctx context.Context, column, value string, exclude uuid.UUID) (bool, error)
	// Update writes profile and status fields. Balances are untouched.
	Update(ctx context.Context, u *user.User) error
	// UpdateBalances writes balances if the stored version still equals
	// expectedVersion, bumping it by one. Otherwise domain.ErrConcurrentUpdate.
	UpdateBalances(ctx context.Context, id uuid.UUID, b ledger.Balances, expectedVersion int64) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f UserFilter) ([]*user.User, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
}

// LedgerRepository stores ledger entries. Rows are never updated.
type LedgerRepository interface {
	Append(ctx context.Context, records []*ledger.Record) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Record, error)
}

// TransactionRepository defines the interface for transaction data access operations.
type TransactionRepository interface {
	Create(ctx context.Context, tx *transaction.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	// GetBySource follows the polymorphic reference back to a transaction.
	GetBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) (*transaction.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error)
}

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *payment.Method) error
	Get(ctx context.Context, id uuid.UUID) (*payment.Method, error)
	Update(ctx context.Context, m *payment.Method) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*payment.Method, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	// GetForUpdate locks the row until the surrounding transaction ends, so
	// concurrent decisions on one payment serialise.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	GetByRef(ctx context.Context, ref uuid.UUID) (*payment.Payment, error)
	Update(ctx context.Context, p *payment.Payment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*payment.Payment, error)
	List(ctx context.Context, status payment.Status) ([]*payment.Payment, error)
	// HighestTransactionNo returns the greatest number starting with prefix,
	// or "" when there is none.
	HighestTransactionNo(ctx context.Context, prefix string) (string, error)
	Count(ctx context.Context, status payment.Status) (int64, error)
	SumAmount(ctx context.Context, status payment.Status) (decimal.Decimal, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *withdrawal.Withdrawal) error
	Get(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error)
	Update(ctx context.Context, w *withdrawal.Withdrawal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*withdrawal.Withdrawal, error)
	List(ctx context.Context, status withdrawal.Status) ([]*withdrawal.Withdrawal, error)
}

type PlanRepository interface {
	Create(ctx context.Context, p *portfolio.Plan) error
	Get(ctx context.Context, id uuid.UUID) (*portfolio.Plan, error)
	Update(ctx context.Context, p *portfolio.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*portfolio.Plan, error)
}

type PortfolioRepository interface {
	Create(ctx context.Context, p *portfolio.Portfolio) error
	Get(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error)
	Update(ctx context.Context, p *portfolio.Portfolio) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*portfolio.Portfolio, error)
	List(ctx context.Context, status portfolio.Status) ([]*portfolio.Portfolio, error)
	Count(ctx context.Context, status portfolio.Status) (int64, error)
}

type TraderRepository interface {
	Create(ctx context.Context, t *copytrade.Trader) error
	Get(ctx context.Context, id uuid.UUID) (*copytrade.Trader, error)
	Update(ctx context.Context, t *copytrade.Trader) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, verifiedOnly bool) ([]*copytrade.Trader, error)
}

type CopyTradeRepository interface {
	Create(ctx context.Context, c *copytrade.CopyTrade) error
	Get(ctx context.Context, id uuid.UUID) (*copytrade.CopyTrade, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*copytrade.CopyTrade, error)
	Update(ctx context.Context, c *copytrade.CopyTrade) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*copytrade.CopyTrade, error)
	List(ctx context.Context, activeOnly bool) ([]*copytrade.CopyTrade, error)
	ActiveTraderIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type LiveTradeRepository interface {
	Create(ctx context.Context, t *livetrade.LiveTrade) error
	Get(ctx context.Context, id uuid.UUID) (*livetrade.LiveTrade, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*livetrade.LiveTrade, error)
	Update(ctx context.Context, t *livetrade.LiveTrade) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*livetrade.LiveTrade, error)
	// ListExpired returns open trades with closed_at <= now, for one user or
	// for everyone when userID is uuid.Nil.
	ListExpired(ctx context.Context, userID uuid.UUID, now time.Time) ([]*livetrade.LiveTrade, error)
}

type KYCRepository interface {
	// Save inserts or replaces the user's single record.
	Save(ctx context.Context, v *kyc.Verification) error
	Get(ctx context.Context, id uuid.UUID) (*kyc.Verification, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*kyc.Verification, error)
	List(ctx context.Context, status kyc.Status) ([]*kyc.Verification, error)
}

type MarketRepository interface {
	CreateCategory(ctx context.Context, c *market.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*market.Category, error)
	CreateAsset(ctx context.Context, a *market.Asset) error
	// ListCategories returns categories ordered by name with their assets.
	ListCategories(ctx context.Context) ([]*market.Category, error)
}

type SiteConfigRepository interface {
	// Get returns domain.ErrNotFound until the row is first saved.
	Get(ctx context.Context) (*site.Config, error)
	Save(ctx context.Context, c *site.Config) error
}
