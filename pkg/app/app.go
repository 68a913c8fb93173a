package app

import (
	"log/slog"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/withdrawal"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/amirasaad/axeria/pkg/service/admin"
	"github.com/amirasaad/axeria/pkg/service/auth"
	"github.com/amirasaad/axeria/pkg/service/copytrade"
	"github.com/amirasaad/axeria/pkg/service/kyc"
	"github.com/amirasaad/axeria/pkg/service/ledger"
	"github.com/amirasaad/axeria/pkg/service/livetrade"
	"github.com/amirasaad/axeria/pkg/service/market"
	"github.com/amirasaad/axeria/pkg/service/payment"
	"github.com/amirasaad/axeria/pkg/service/portfolio"
	"github.com/amirasaad/axeria/pkg/service/transaction"
	"github.com/amirasaad/axeria/pkg/service/user"
	withdrawalsvc "github.com/amirasaad/axeria/pkg/service/withdrawal"
)

// Subscriber attaches event handlers to a bus.
type Subscriber interface {
	Subscribe(bus eventbus.Bus)
}

// Deps contains the infrastructure the services are built from.
type Deps struct {
	Uow         repository.UnitOfWork
	EventBus    eventbus.Bus
	PriceTicker livetrade.PriceTicker
	Storage     kyc.Storage
	Subscribers []Subscriber
	Logger      *slog.Logger
}

type App struct {
	Deps               *Deps
	Config             *config.App
	AuthService        *auth.Service
	UserService        *user.Service
	LedgerService      *ledger.Service
	TransactionService *transaction.Service
	AdminService       *admin.Service
	PaymentService     *payment.Service
	WithdrawalService  *withdrawalsvc.Service
	PortfolioService   *portfolio.Service
	CopyTradeService   *copytrade.Service
	LiveTradeService   *livetrade.Service
	KYCService         *kyc.Service
	MarketService      *market.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	uow, bus, logger := deps.Uow, deps.EventBus, deps.Logger
	if cfg.Auth != nil && cfg.Auth.Jwt != nil {
		app.AuthService = auth.NewWithJWT(uow, cfg.Auth.Jwt, logger)
	} else {
		app.AuthService = auth.NewWithBasic(uow, logger)
	}
	app.UserService = user.New(uow, bus, logger)
	app.LedgerService = ledger.New(uow, logger)
	app.TransactionService = transaction.New(uow)
	app.AdminService = admin.New(uow, cfg.Site, logger)
	app.PaymentService = payment.New(uow, bus, app.AdminService, logger)

	policy := withdrawal.DebitByType
	if cfg.Ledger != nil && cfg.Ledger.WithdrawalDebit != "" {
		policy = withdrawal.DebitPolicy(cfg.Ledger.WithdrawalDebit)
	}
	app.WithdrawalService = withdrawalsvc.New(uow, bus, app.AdminService, policy, logger)
	app.PortfolioService = portfolio.New(uow, logger)
	app.CopyTradeService = copytrade.New(uow, bus, logger)
	app.LiveTradeService = livetrade.New(uow, bus, deps.PriceTicker, logger)

	var maxBytes int64
	if cfg.Storage != nil {
		maxBytes = cfg.Storage.MaxFileBytes
	}
	app.KYCService = kyc.New(uow, bus, deps.Storage, maxBytes, logger)
	app.MarketService = market.New(uow, logger)
	return app
}
