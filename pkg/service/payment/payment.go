// Package payment provides the manual deposit workflow: users submit a
// payment against an admin-managed method and an administrator confirms or
// declines it.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/domain/site"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/metrics"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	txsvc "github.com/amirasaad/axeria/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts bounds retries when two payments race for the same
// transaction number.
const maxNumberAttempts = 5

// Settings supplies the current site configuration.
type Settings interface {
	SiteConfig(ctx context.Context) (*site.Config, error)
}

type Service struct {
	uow      repository.UnitOfWork
	bus      eventbus.Bus
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	settings Settings,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:      uow,
		bus:      bus,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Fund records a pending deposit of amount through method.
func (s *Service) Fund(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	methodID uuid.UUID,
) (*payment.Payment, error) {
	p, err := payment.New(userID, amount, methodID, payment.PurposeDeposit, nil)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, p, transaction.TypeDeposit)
}

// BuyBot records a pending payment of the site's bot price for a trading
// bot on portfolioID.
func (s *Service) BuyBot(
	ctx context.Context,
	userID, portfolioID, methodID uuid.UUID,
) (*payment.Payment, error) {
	cfg, err := s.settings.SiteConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.BotAmount.IsPositive() {
		return nil, fmt.Errorf("trading bots: %w", domain.ErrInactive)
	}
	pf, err := s.uow.PortfolioRepository().Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if pf.UserID != userID {
		return nil, fmt.Errorf("portfolio %s: %w", portfolioID, domain.ErrNotFound)
	}
	p, err := payment.New(userID, cfg.BotAmount, methodID, payment.PurposeBot, &portfolioID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, p, transaction.TypeBot)
}

// submit stores p with the next free transaction number and a pending
// transaction row. A number taken by a concurrent submission is retried.
func (s *Service) submit(
	ctx context.Context,
	p *payment.Payment,
	txType transaction.Type,
) (*payment.Payment, error) {
	log := s.logger.With("context", "submit", "userID", p.UserID, "purpose", p.Purpose)
	var username string
	for attempt := 1; ; attempt++ {
		err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			u, err := uow.UserRepository().Get(ctx, p.UserID)
			if err != nil {
				return err
			}
			username = u.Username
			m, err := uow.PaymentMethodRepository().Get(ctx, *p.MethodID)
			if err != nil {
				return fmt.Errorf("payment method: %w", err)
			}
			if !m.Active {
				return fmt.Errorf("payment method %s: %w", m.Name, domain.ErrInactive)
			}
			day := s.now()
			highest, err := uow.PaymentRepository().HighestTransactionNo(ctx, payment.TransactionNoPrefix(day))
			if err != nil {
				return err
			}
			p.TransactionNo = payment.NextTransactionNo(day, highest)
			if err := uow.PaymentRepository().Create(ctx, p); err != nil {
				return err
			}
			tx := transaction.New(p.UserID, txType, p.Amount, transaction.StatusPending, transaction.SourcePayment, p.ID)
			return uow.TransactionRepository().Create(ctx, tx)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAlreadyExists) || attempt == maxNumberAttempts {
			log.Warn("Payment not recorded", "error", err, "attempt", attempt)
			return nil, err
		}
		log.Debug("Transaction number taken, retrying", "transactionNo", p.TransactionNo, "attempt", attempt)
	}
	log.Info("Payment requested", "paymentID", p.ID, "transactionNo", p.TransactionNo)
	eventbus.Publish(ctx, s.bus, s.logger, events.PaymentRequested{
		Meta:          events.NewMeta(p.UserID, username),
		PaymentID:     p.ID,
		Amount:        p.Amount,
		Purpose:       string(p.Purpose),
		TransactionNo: p.TransactionNo,
	})
	return p, nil
}

// Invoice returns the caller's payment by its public reference. Payments of
// other users are reported as missing.
func (s *Service) Invoice(
	ctx context.Context,
	userID, ref uuid.UUID,
) (*payment.Payment, error) {
	p, err := s.uow.PaymentRepository().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("payment %s: %w", ref, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*payment.Payment, error) {
	return s.uow.PaymentRepository().ListByUser(ctx, userID)
}

// List returns payments in status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status payment.Status) ([]*payment.Payment, error) {
	return s.uow.PaymentRepository().List(ctx, status)
}

func (s *Service) ListPending(ctx context.Context) ([]*payment.Payment, error) {
	return s.List(ctx, payment.StatusPending)
}

// Approve confirms a pending payment: the amount is credited to the owner's
// current deposit, the linked transaction completes and a bot purchase
// switches the bot on. A payment that is no longer pending is refused, so
// approving twice never credits twice.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	log := s.logger.With("context", "Approve", "paymentID", id)
	var (
		p        *payment.Payment
		username string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		p, err = uow.PaymentRepository().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Approve(); err != nil {
			return err
		}
		if err := uow.PaymentRepository().Update(ctx, p); err != nil {
			return err
		}
		src := ledger.Source{Type: transaction.SourcePayment, ID: p.ID, Reason: string(p.Purpose)}
		u, _, err := ledgersvc.Post(ctx, uow, p.UserID, src, ledger.CreditOp(ledger.CurrentDeposit, p.Amount))
		if err != nil {
			return err
		}
		username = u.Username
		if p.Purpose == payment.PurposeBot && p.PortfolioID != nil {
			pf, err := uow.PortfolioRepository().Get(ctx, *p.PortfolioID)
			if err != nil {
				return fmt.Errorf("bot portfolio: %w", err)
			}
			pf.BotActive = true
			pf.UpdatedAt = p.UpdatedAt
			if err := uow.PortfolioRepository().Update(ctx, pf); err != nil {
				return err
			}
		}
		return txsvc.SetStatusBySource(ctx, uow, s.logger, transaction.SourcePayment, p.ID, transaction.StatusCompleted)
	})
	if err != nil {
		log.Warn("Payment approval failed", "error", err)
		metrics.Decisions.WithLabelValues("payment", "failed").Inc()
		return nil, err
	}
	log.Info("Payment approved", "userID", p.UserID, "amount", p.Amount.StringFixed(2))
	metrics.Decisions.WithLabelValues("payment", "approved").Inc()
	eventbus.Publish(ctx, s.bus, s.logger, events.PaymentApproved{
		Meta:      events.NewMeta(p.UserID, username),
		PaymentID: p.ID,
		Amount:    p.Amount,
	})
	return p, nil
}

// Decline rejects a pending payment. Balances are untouched.
func (s *Service) Decline(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	log := s.logger.With("context", "Decline", "paymentID", id)
	var (
		p        *payment.Payment
		username string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		p, err = uow.PaymentRepository().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Decline(); err != nil {
			return err
		}
		if err := uow.PaymentRepository().Update(ctx, p); err != nil {
			return err
		}
		u, err := uow.UserRepository().Get(ctx, p.UserID)
		if err != nil {
			return err
		}
		username = u.Username
		return txsvc.SetStatusBySource(ctx, uow, s.logger, transaction.SourcePayment, p.ID, transaction.StatusFailed)
	})
	if err != nil {
		log.Warn("Payment decline failed", "error", err)
		return nil, err
	}
	log.Info("Payment declined")
	metrics.Decisions.WithLabelValues("payment", "declined").Inc()
	eventbus.Publish(ctx, s.bus, s.logger, events.PaymentDeclined{
		Meta:      events.NewMeta(p.UserID, username),
		PaymentID: p.ID,
		Amount:    p.Amount,
	})
	return p, nil
}
