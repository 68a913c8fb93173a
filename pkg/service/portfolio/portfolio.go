// Package portfolio provides investment plans and the positions users open
// in them.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, logger: logger}
}

// CreatePlan validates and stores a new plan. Names are unique.
func (s *Service) CreatePlan(ctx context.Context, in portfolio.Plan) (*portfolio.Plan, error) {
	p := in
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.uow.PlanRepository().Create(ctx, &p); err != nil {
		return nil, err
	}
	s.logger.Info("Plan created", "planID", p.ID, "name", p.Name)
	return &p, nil
}

// UpdatePlan replaces every editable field of the plan.
func (s *Service) UpdatePlan(
	ctx context.Context,
	id uuid.UUID,
	in portfolio.Plan,
) (*portfolio.Plan, error) {
	repo := s.uow.PlanRepository()
	existing, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := in
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlan refuses plans that still have portfolios.
func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.uow.PlanRepository().Delete(ctx, id)
}

func (s *Service) Plans(ctx context.Context, activeOnly bool) ([]*portfolio.Plan, error) {
	return s.uow.PlanRepository().List(ctx, activeOnly)
}

// Invest opens a portfolio in plan, moving amount from the current deposit
// into ROI investment.
func (s *Service) Invest(
	ctx context.Context,
	userID, planID uuid.UUID,
	amount decimal.Decimal,
) (*portfolio.Portfolio, error) {
	log := s.logger.With("context", "Invest", "userID", userID, "planID", planID)
	var pf *portfolio.Portfolio
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		plan, err := uow.PlanRepository().Get(ctx, planID)
		if err != nil {
			return err
		}
		if pf, err = portfolio.New(userID, plan, amount); err != nil {
			return err
		}
		if err := uow.PortfolioRepository().Create(ctx, pf); err != nil {
			return err
		}
		return s.post(ctx, uow, pf, "invest", amount,
			ledger.MoveOp(ledger.CurrentDeposit, ledger.ROIInvestment, amount))
	})
	if err != nil {
		log.Warn("Investment refused", "error", err)
		return nil, err
	}
	log.Info("Portfolio opened", "portfolioID", pf.ID, "amount", amount.StringFixed(2))
	return pf, nil
}

// TopUp adds capital to an active portfolio the user owns.
func (s *Service) TopUp(
	ctx context.Context,
	userID, portfolioID uuid.UUID,
	amount decimal.Decimal,
) (*portfolio.Portfolio, error) {
	return s.change(ctx, userID, portfolioID, "top_up", func(pf *portfolio.Portfolio) (ledger.Op, error) {
		if err := pf.TopUp(amount); err != nil {
			return nil, err
		}
		return ledger.MoveOp(ledger.CurrentDeposit, ledger.ROIInvestment, amount), nil
	}, amount)
}

// Withdraw moves amount from the portfolio's available balance to the
// user's profit.
func (s *Service) Withdraw(
	ctx context.Context,
	userID, portfolioID uuid.UUID,
	amount decimal.Decimal,
) (*portfolio.Portfolio, error) {
	return s.change(ctx, userID, portfolioID, "withdraw", func(pf *portfolio.Portfolio) (ledger.Op, error) {
		if err := pf.Withdraw(amount); err != nil {
			return nil, err
		}
		return ledger.CreditOp(ledger.Profit, amount), nil
	}, amount)
}

func (s *Service) change(
	ctx context.Context,
	userID, portfolioID uuid.UUID,
	reason string,
	apply func(pf *portfolio.Portfolio) (ledger.Op, error),
	amount decimal.Decimal,
) (*portfolio.Portfolio, error) {
	log := s.logger.With("context", reason, "userID", userID, "portfolioID", portfolioID)
	var pf *portfolio.Portfolio
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		pf, err = uow.PortfolioRepository().GetForUpdate(ctx, portfolioID)
		if err != nil {
			return err
		}
		if pf.UserID != userID {
			return fmt.Errorf("portfolio %s: %w", portfolioID, domain.ErrNotFound)
		}
		op, err := apply(pf)
		if err != nil {
			return err
		}
		if err := uow.PortfolioRepository().Update(ctx, pf); err != nil {
			return err
		}
		return s.post(ctx, uow, pf, reason, amount, op)
	})
	if err != nil {
		log.Warn("Portfolio change refused", "error", err)
		return nil, err
	}
	log.Info("Portfolio changed", "amount", amount.StringFixed(2))
	return pf, nil
}

// post applies op to the owner's balances and records a completed trade
// transaction for it.
func (s *Service) post(
	ctx context.Context,
	uow repository.UnitOfWork,
	pf *portfolio.Portfolio,
	reason string,
	amount decimal.Decimal,
	op ledger.Op,
) error {
	src := ledger.Source{Type: transaction.SourcePortfolio, ID: pf.ID, Reason: reason}
	if _, _, err := ledgersvc.Post(ctx, uow, pf.UserID, src, op); err != nil {
		return err
	}
	tx := transaction.New(pf.UserID, transaction.TypeTrade, amount, transaction.StatusCompleted, transaction.SourcePortfolio, pf.ID)
	return uow.TransactionRepository().Create(ctx, tx)
}

// Edit is an administrative correction of a portfolio. Balances are not
// touched.
type Edit struct {
	PlanID          uuid.UUID
	AmountInvested  decimal.Decimal
	AmountAvailable decimal.Decimal
	Profit          decimal.Decimal
	Status          portfolio.Status
	BotActive       bool
	BotName         string
}

func (s *Service) Edit(
	ctx context.Context,
	id uuid.UUID,
	in Edit,
) (*portfolio.Portfolio, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown portfolio status %q", domain.ErrValidation, in.Status)
	}
	if in.AmountInvested.IsNegative() || in.AmountAvailable.IsNegative() {
		return nil, fmt.Errorf("%w: portfolio amounts must not be negative", domain.ErrValidation)
	}
	var pf *portfolio.Portfolio
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if pf, err = uow.PortfolioRepository().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if in.PlanID != uuid.Nil && in.PlanID != pf.PlanID {
			if _, err := uow.PlanRepository().Get(ctx, in.PlanID); err != nil {
				return fmt.Errorf("plan: %w", err)
			}
			pf.PlanID = in.PlanID
		}
		pf.AmountInvested = ledger.Round(in.AmountInvested)
		pf.AmountAvailable = ledger.Round(in.AmountAvailable)
		pf.Profit = ledger.Round(in.Profit)
		pf.Status = in.Status
		pf.BotActive = in.BotActive
		pf.BotName = in.BotName
		pf.UpdatedAt = time.Now().UTC()
		return uow.PortfolioRepository().Update(ctx, pf)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Portfolio edited", "portfolioID", id, "status", pf.Status)
	return pf, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*portfolio.Portfolio, error) {
	return s.uow.PortfolioRepository().ListByUser(ctx, userID)
}

// List returns portfolios in status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status portfolio.Status) ([]*portfolio.Portfolio, error) {
	return s.uow.PortfolioRepository().List(ctx, status)
}

func (s *Service) ListActive(ctx context.Context) ([]*portfolio.Portfolio, error) {
	return s.List(ctx, portfolio.StatusActive)
}
