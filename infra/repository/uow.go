package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/axeria/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the transaction; outside Do they
// run against the base connection.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			typeOf[repository.UserRepository]():          func(db *gorm.DB) any { return NewUserRepository(db) },
			typeOf[repository.LedgerRepository]():        func(db *gorm.DB) any { return NewLedgerRepository(db) },
			typeOf[repository.TransactionRepository]():   func(db *gorm.DB) any { return NewTransactionRepository(db) },
			typeOf[repository.PaymentMethodRepository](): func(db *gorm.DB) any { return NewPaymentMethodRepository(db) },
			typeOf[repository.PaymentRepository]():       func(db *gorm.DB) any { return NewPaymentRepository(db) },
			typeOf[repository.WithdrawalRepository]():    func(db *gorm.DB) any { return NewWithdrawalRepository(db) },
			typeOf[repository.PlanRepository]():          func(db *gorm.DB) any { return NewPlanRepository(db) },
			typeOf[repository.PortfolioRepository]():     func(db *gorm.DB) any { return NewPortfolioRepository(db) },
			typeOf[repository.TraderRepository]():        func(db *gorm.DB) any { return NewTraderRepository(db) },
			typeOf[repository.CopyTradeRepository]():     func(db *gorm.DB) any { return NewCopyTradeRepository(db) },
			typeOf[repository.LiveTradeRepository]():     func(db *gorm.DB) any { return NewLiveTradeRepository(db) },
			typeOf[repository.KYCRepository]():           func(db *gorm.DB) any { return NewKYCRepository(db) },
			typeOf[repository.MarketRepository]():        func(db *gorm.DB) any { return NewMarketRepository(db) },
			typeOf[repository.SiteConfigRepository]():    func(db *gorm.DB) any { return NewSiteConfigRepository(db) },
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// GetRepository builds the repository registered for repoType on the
// current session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) UserRepository() repository.UserRepository {
	return NewUserRepository(u.session())
}

func (u *UoW) LedgerRepository() repository.LedgerRepository {
	return NewLedgerRepository(u.session())
}

func (u *UoW) TransactionRepository() repository.TransactionRepository {
	return NewTransactionRepository(u.session())
}

func (u *UoW) PaymentMethodRepository() repository.PaymentMethodRepository {
	return NewPaymentMethodRepository(u.session())
}

func (u *UoW) PaymentRepository() repository.PaymentRepository {
	return NewPaymentRepository(u.session())
}

func (u *UoW) WithdrawalRepository() repository.WithdrawalRepository {
	return NewWithdrawalRepository(u.session())
}

func (u *UoW) PlanRepository() repository.PlanRepository {
	return NewPlanRepository(u.session())
}

func (u *UoW) PortfolioRepository() repository.PortfolioRepository {
	return NewPortfolioRepository(u.session())
}

func (u *UoW) TraderRepository() repository.TraderRepository {
	return NewTraderRepository(u.session())
}

func (u *UoW) CopyTradeRepository() repository.CopyTradeRepository {
	return NewCopyTradeRepository(u.session())
}

func (u *UoW) LiveTradeRepository() repository.LiveTradeRepository {
	return NewLiveTradeRepository(u.session())
}

func (u *UoW) KYCRepository() repository.KYCRepository {
	return NewKYCRepository(u.session())
}

func (u *UoW) MarketRepository() repository.MarketRepository {
	return NewMarketRepository(u.session())
}

func (u *UoW) SiteConfigRepository() repository.SiteConfigRepository {
	return NewSiteConfigRepository(u.session())
}

// AutoMigrate creates or updates every table. Production deployments run
// the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
