// Package livetrade provides admin-opened simulated trades and their
// settlement once the interval has elapsed.
package livetrade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/livetrade"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/metrics"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	txsvc "github.com/amirasaad/axeria/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceTicker returns the last traded price of an exchange symbol such as
// BTCUSDT.
type PriceTicker interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	ticker PriceTicker
	logger *slog.Logger
	now    func() time.Time
}

// New creates the service. A nil ticker leaves entry prices empty.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	ticker PriceTicker,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, ticker: ticker, logger: logger, now: time.Now}
}

// Symbol turns a catalog ticker (BTC, BTC/USDT) into an exchange pair.
func Symbol(ticker string) string {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(ticker), "/", ""))
	if !strings.HasSuffix(s, "USDT") {
		s += "USDT"
	}
	return s
}

// Open starts a trade for userID, debiting its amount from the current
// deposit. Crypto trades record the market price at opening when the
// ticker answers; a failed lookup leaves the entry price empty.
func (s *Service) Open(
	ctx context.Context,
	userID uuid.UUID,
	in livetrade.Input,
) (*livetrade.LiveTrade, error) {
	log := s.logger.With("context", "Open", "userID", userID, "ticker", in.Ticker)
	t, err := livetrade.New(userID, in, s.now())
	if err != nil {
		return nil, err
	}
	if t.Category == livetrade.CategoryCrypto && s.ticker != nil {
		price, err := s.ticker.GetPrice(ctx, Symbol(t.Ticker))
		if err != nil {
			log.Warn("Entry price unavailable", "error", err)
		} else {
			t.EntryPrice = &price
		}
	}
	var username string
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if t.TraderID != nil {
			if _, err := uow.TraderRepository().Get(ctx, *t.TraderID); err != nil {
				return fmt.Errorf("trader: %w", err)
			}
		}
		src := ledger.Source{Type: transaction.SourceLiveTrade, ID: t.ID, Reason: "live_trade"}
		u, _, err := ledgersvc.Post(ctx, uow, userID, src, ledger.DebitOp(ledger.CurrentDeposit, t.Amount))
		if err != nil {
			return err
		}
		username = u.Username
		if err := uow.LiveTradeRepository().Create(ctx, t); err != nil {
			return err
		}
		tx := transaction.New(userID, transaction.TypeLiveTrade, t.Amount, transaction.StatusActive, transaction.SourceLiveTrade, t.ID)
		return uow.TransactionRepository().Create(ctx, tx)
	})
	if err != nil {
		log.Warn("Live trade not opened", "error", err)
		return nil, err
	}
	log.Info("Live trade opened", "liveTradeID", t.ID, "closesAt", t.ClosedAt)
	eventbus.Publish(ctx, s.bus, s.logger, events.LiveTradeOpened{
		Meta:        events.NewMeta(userID, username),
		LiveTradeID: t.ID,
		Ticker:      t.Ticker,
		Amount:      t.Amount,
	})
	return t, nil
}

// Edit is an administrative correction. Balances are not touched: the
// amount was debited at opening and profit is applied at settlement.
type Edit struct {
	Amount decimal.Decimal
	Profit decimal.Decimal
	Open   bool
}

func (s *Service) Edit(ctx context.Context, id uuid.UUID, in Edit) (*livetrade.LiveTrade, error) {
	if err := ledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	var t *livetrade.LiveTrade
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if t, err = uow.LiveTradeRepository().GetForUpdate(ctx, id); err != nil {
			return err
		}
		t.Amount = in.Amount
		t.Profit = ledger.Round(in.Profit)
		t.Open = in.Open
		if err := uow.LiveTradeRepository().Update(ctx, t); err != nil {
			return err
		}
		status := transaction.StatusActive
		if !t.Open {
			status = transaction.StatusCompleted
		}
		return txsvc.SetStatusBySource(ctx, uow, s.logger, transaction.SourceLiveTrade, t.ID, status)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Live trade edited", "liveTradeID", id, "open", t.Open)
	return t, nil
}

// Settle closes every open trade of userID, or of everyone when userID is
// uuid.Nil, whose interval has elapsed at now. Each trade settles in its
// own transaction; failures are logged and the rest still settle. It
// returns the trades that closed.
func (s *Service) Settle(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*livetrade.LiveTrade, error) {
	expired, err := s.uow.LiveTradeRepository().ListExpired(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	settled := make([]*livetrade.LiveTrade, 0, len(expired))
	for _, snapshot := range expired {
		t, username, err := s.settleOne(ctx, snapshot.ID, now)
		if err != nil {
			s.logger.Error("Settling live trade failed", "liveTradeID", snapshot.ID, "error", err)
			continue
		}
		if t == nil {
			continue
		}
		settled = append(settled, t)
		metrics.SettledTrades.WithLabelValues(string(t.Outcome)).Inc()
		eventbus.Publish(ctx, s.bus, s.logger, events.LiveTradeSettled{
			Meta:        events.NewMeta(t.UserID, username),
			LiveTradeID: t.ID,
			Ticker:      t.Ticker,
			Outcome:     string(t.Outcome),
			Profit:      t.Profit,
		})
	}
	if len(expired) > 0 {
		s.logger.Info("Live trades settled", "expired", len(expired), "settled", len(settled))
	}
	return settled, nil
}

// settleOne returns a nil trade when another settlement got there first.
func (s *Service) settleOne(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (*livetrade.LiveTrade, string, error) {
	var (
		t        *livetrade.LiveTrade
		username string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		locked, err := uow.LiveTradeRepository().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !locked.Expired(now) {
			return nil
		}
		outcome, op, err := locked.Settle()
		if err != nil {
			return err
		}
		u, err := uow.UserRepository().Get(ctx, locked.UserID)
		if err != nil {
			return err
		}
		username = u.Username
		if op != nil {
			src := ledger.Source{Type: transaction.SourceLiveTrade, ID: locked.ID, Reason: "settlement"}
			if _, _, err := ledgersvc.Post(ctx, uow, locked.UserID, src, op); err != nil {
				return err
			}
		}
		if err := uow.LiveTradeRepository().Update(ctx, locked); err != nil {
			return err
		}
		t = locked
		return txsvc.SetStatusBySource(ctx, uow, s.logger, transaction.SourceLiveTrade, locked.ID, outcomeStatus(outcome))
	})
	if err != nil {
		return nil, "", err
	}
	return t, username, nil
}

func outcomeStatus(o livetrade.Outcome) transaction.Status {
	switch o {
	case livetrade.OutcomeWin:
		return transaction.StatusWin
	case livetrade.OutcomeLost:
		return transaction.StatusLost
	default:
		return transaction.StatusDraw
	}
}

// Delete removes a trade. Balances already posted stay as they are.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.uow.LiveTradeRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Live trade deleted", "liveTradeID", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*livetrade.LiveTrade, error) {
	return s.uow.LiveTradeRepository().Get(ctx, id)
}

// ListForUser returns the user's trades, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*livetrade.LiveTrade, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}
	return s.uow.LiveTradeRepository().ListByUser(ctx, userID)
}
