// Package copytrade provides the expert catalog and the positions users
// open to mirror an expert.
package copytrade

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/copytrade"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// TraderInput is the admin form for an expert. Duration is counted in
// Period units: days, weeks or months of four weeks.
type TraderInput struct {
	Name                 string
	Image                string
	Duration             int
	Period               string
	TotalInvestors       int
	ActiveInvestors      int
	MinDeposit           decimal.Decimal
	RiskLevel            decimal.Decimal
	WinRate              decimal.Decimal
	DailyROI             decimal.Decimal
	TradingFeePercentage decimal.Decimal
	Verified             bool
}

func (in TraderInput) apply(t *copytrade.Trader) error {
	days, err := copytrade.DurationDays(in.Duration, in.Period)
	if err != nil {
		return err
	}
	t.Name = in.Name
	t.Image = in.Image
	t.DurationDays = days
	t.TotalInvestors = in.TotalInvestors
	t.ActiveInvestors = in.ActiveInvestors
	t.MinDeposit = in.MinDeposit
	t.RiskLevel = in.RiskLevel
	t.WinRate = in.WinRate
	t.DailyROI = in.DailyROI
	t.TradingFeePercentage = in.TradingFeePercentage
	if t.TradingFeePercentage.IsZero() {
		t.TradingFeePercentage = copytrade.DefaultTradingFee
	}
	t.Verified = in.Verified
	return t.Validate()
}

func (s *Service) CreateTrader(ctx context.Context, in TraderInput) (*copytrade.Trader, error) {
	t := &copytrade.Trader{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	if err := in.apply(t); err != nil {
		return nil, err
	}
	if err := s.uow.TraderRepository().Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("Trader created", "traderID", t.ID, "name", t.Name)
	return t, nil
}

func (s *Service) UpdateTrader(
	ctx context.Context,
	id uuid.UUID,
	in TraderInput,
) (*copytrade.Trader, error) {
	repo := s.uow.TraderRepository()
	t, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(t); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTrader removes the expert together with every copy of it.
func (s *Service) DeleteTrader(ctx context.Context, id uuid.UUID) error {
	if err := s.uow.TraderRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Trader deleted", "traderID", id)
	return nil
}

func (s *Service) Traders(ctx context.Context, verifiedOnly bool) ([]*copytrade.Trader, error) {
	return s.uow.TraderRepository().List(ctx, verifiedOnly)
}

// AvailableTraders lists verified experts the user is not copying yet.
func (s *Service) AvailableTraders(ctx context.Context, userID uuid.UUID) ([]*copytrade.Trader, error) {
	traders, err := s.uow.TraderRepository().List(ctx, true)
	if err != nil {
		return nil, err
	}
	copying, err := s.uow.CopyTradeRepository().ActiveTraderIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(traders, func(t *copytrade.Trader) bool {
		return slices.Contains(copying, t.ID)
	}), nil
}

// Copy starts mirroring a verified expert, moving amount from the current
// deposit into copy expenses. One active copy per expert.
func (s *Service) Copy(
	ctx context.Context,
	userID, traderID uuid.UUID,
	amount decimal.Decimal,
) (*copytrade.CopyTrade, error) {
	log := s.logger.With("context", "Copy", "userID", userID, "traderID", traderID)
	var (
		c        *copytrade.CopyTrade
		trader   *copytrade.Trader
		username string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if trader, err = uow.TraderRepository().Get(ctx, traderID); err != nil {
			return err
		}
		if c, err = copytrade.Open(userID, trader, amount); err != nil {
			return err
		}
		// Posting first locks the user row, so the duplicate check below
		// cannot race another Copy by the same user.
		src := ledger.Source{Type: transaction.SourceCopyTrade, ID: c.ID, Reason: "copy"}
		u, _, err := ledgersvc.Post(ctx, uow, userID, src, ledger.MoveOp(ledger.CurrentDeposit, ledger.CopyExpenses, amount))
		if err != nil {
			return err
		}
		username = u.Username
		copying, err := uow.CopyTradeRepository().ActiveTraderIDs(ctx, userID)
		if err != nil {
			return err
		}
		if slices.Contains(copying, traderID) {
			return fmt.Errorf("already copying %s: %w", trader.Name, domain.ErrAlreadyExists)
		}
		if err := uow.CopyTradeRepository().Create(ctx, c); err != nil {
			return err
		}
		trader.TotalInvestors++
		trader.ActiveInvestors++
		if err := uow.TraderRepository().Update(ctx, trader); err != nil {
			return err
		}
		tx := transaction.New(userID, transaction.TypeLiveTrade, amount, transaction.StatusPending, transaction.SourceCopyTrade, c.ID)
		return uow.TransactionRepository().Create(ctx, tx)
	})
	if err != nil {
		log.Warn("Copy refused", "error", err)
		return nil, err
	}
	log.Info("Copy trade started", "copyTradeID", c.ID, "amount", amount.StringFixed(2))
	eventbus.Publish(ctx, s.bus, s.logger, events.CopyTradeStarted{
		Meta:        events.NewMeta(userID, username),
		CopyTradeID: c.ID,
		TraderName:  trader.Name,
		Amount:      amount,
	})
	return c, nil
}

// TopUp adds capital to an active copy.
func (s *Service) TopUp(
	ctx context.Context,
	userID, copyID uuid.UUID,
	amount decimal.Decimal,
) (*copytrade.CopyTrade, error) {
	return s.mutate(ctx, copyID, userID, "top_up", func(uow repository.UnitOfWork, c *copytrade.CopyTrade) error {
		if err := c.TopUp(amount); err != nil {
			return err
		}
		src := ledger.Source{Type: transaction.SourceCopyTrade, ID: c.ID, Reason: "top_up"}
		_, _, err := ledgersvc.Post(ctx, uow, c.UserID, src, ledger.MoveOp(ledger.CurrentDeposit, ledger.CopyExpenses, amount))
		return err
	})
}

// Withdraw takes earned, not yet withdrawn profit out of a copy into the
// user's profit balance.
func (s *Service) Withdraw(
	ctx context.Context,
	userID, copyID uuid.UUID,
	amount decimal.Decimal,
) (*copytrade.CopyTrade, error) {
	return s.mutate(ctx, copyID, userID, "withdraw", func(uow repository.UnitOfWork, c *copytrade.CopyTrade) error {
		if err := c.WithdrawProfit(amount); err != nil {
			return err
		}
		src := ledger.Source{Type: transaction.SourceCopyTrade, ID: c.ID, Reason: "profit_withdrawal"}
		_, _, err := ledgersvc.Post(ctx, uow, c.UserID, src, ledger.CreditOp(ledger.Profit, amount))
		return err
	})
}

// SetActive switches a copy on or off, keeping the expert's active
// investor count in step.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*copytrade.CopyTrade, error) {
	return s.mutate(ctx, id, uuid.Nil, "set_active", func(uow repository.UnitOfWork, c *copytrade.CopyTrade) error {
		if c.Active == active {
			return nil
		}
		c.Active = active
		t, err := uow.TraderRepository().Get(ctx, c.TraderID)
		if err != nil {
			return err
		}
		if active {
			t.ActiveInvestors++
		} else if t.ActiveInvestors > 0 {
			t.ActiveInvestors--
		}
		return uow.TraderRepository().Update(ctx, t)
	})
}

// SetProgress sets progress to a value within 0..100.
func (s *Service) SetProgress(ctx context.Context, id uuid.UUID, progress decimal.Decimal) (*copytrade.CopyTrade, error) {
	return s.mutate(ctx, id, uuid.Nil, "set_progress", func(_ repository.UnitOfWork, c *copytrade.CopyTrade) error {
		return c.SetProgress(progress)
	})
}

// mutate runs fn on a locked copy and saves it with a recomputed profit.
// A non-nil owner must match the copy's user.
func (s *Service) mutate(
	ctx context.Context,
	id, owner uuid.UUID,
	action string,
	fn func(uow repository.UnitOfWork, c *copytrade.CopyTrade) error,
) (*copytrade.CopyTrade, error) {
	log := s.logger.With("context", action, "copyTradeID", id)
	var c *copytrade.CopyTrade
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if c, err = uow.CopyTradeRepository().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if owner != uuid.Nil && c.UserID != owner {
			return fmt.Errorf("copy trade %s: %w", id, domain.ErrNotFound)
		}
		if err := fn(uow, c); err != nil {
			return err
		}
		return s.save(ctx, uow, c)
	})
	if err != nil {
		log.Warn("Copy trade change refused", "error", err)
		return nil, err
	}
	log.Debug("Copy trade updated", "progress", c.TradeProgress.String(), "profit", c.CurrentProfit.StringFixed(2))
	return c, nil
}

func (s *Service) save(ctx context.Context, uow repository.UnitOfWork, c *copytrade.CopyTrade) error {
	t, err := uow.TraderRepository().Get(ctx, c.TraderID)
	if err != nil {
		return err
	}
	c.Recompute(t)
	return uow.CopyTradeRepository().Update(ctx, c)
}

// AdvanceProgress moves every active copy to the share of its expert's
// period elapsed at now. It returns how many copies changed.
func (s *Service) AdvanceProgress(ctx context.Context, now time.Time) (int, error) {
	active, err := s.uow.CopyTradeRepository().List(ctx, true)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, snapshot := range active {
		err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			c, err := uow.CopyTradeRepository().GetForUpdate(ctx, snapshot.ID)
			if err != nil {
				return err
			}
			t, err := uow.TraderRepository().Get(ctx, c.TraderID)
			if err != nil {
				return err
			}
			progress := c.ElapsedProgress(now, t.DurationDays)
			if !c.Active || progress.Equal(c.TradeProgress) {
				return nil
			}
			if err := c.SetProgress(progress); err != nil {
				return err
			}
			c.Recompute(t)
			if err := uow.CopyTradeRepository().Update(ctx, c); err != nil {
				return err
			}
			changed++
			return nil
		})
		if err != nil {
			s.logger.Error("Advancing copy trade failed", "copyTradeID", snapshot.ID, "error", err)
			continue
		}
	}
	s.logger.Info("Copy trade progress advanced", "active", len(active), "changed", changed)
	return changed, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*copytrade.CopyTrade, error) {
	return s.uow.CopyTradeRepository().ListByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*copytrade.CopyTrade, error) {
	return s.uow.CopyTradeRepository().List(ctx, activeOnly)
}
