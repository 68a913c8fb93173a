package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn in a transaction boundary. Every repository obtained from the
// UnitOfWork passed to fn shares that transaction.
// GetRepository provides reflective access for code that only knows the
// interface type:
//
//	repoAny, err := uow.GetRepository(reflect.TypeOf((*UserRepository)(nil)).Elem())
//	repo := repoAny.(UserRepository)
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	GetRepository(repoType reflect.Type) (any, error)

	UserRepository() UserRepository
	LedgerRepository() LedgerRepository
	TransactionRepository() TransactionRepository
	PaymentMethodRepository() PaymentMethodRepository
	PaymentRepository() PaymentRepository
	WithdrawalRepository() WithdrawalRepository
	PlanRepository() PlanRepository
	PortfolioRepository() PortfolioRepository
	TraderRepository() TraderRepository
	CopyTradeRepository() CopyTradeRepository
	LiveTradeRepository() LiveTradeRepository
	KYCRepository() KYCRepository
	MarketRepository() MarketRepository
	SiteConfigRepository() SiteConfigRepository
}
