// Package withdrawal provides payout requests and their admin decisions.
package withdrawal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/site"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/domain/withdrawal"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/metrics"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	txsvc "github.com/amirasaad/axeria/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings supplies the current site configuration.
type Settings interface {
	SiteConfig(ctx context.Context) (*site.Config, error)
}

type Service struct {
	uow      repository.UnitOfWork
	bus      eventbus.Bus
	settings Settings
	policy   withdrawal.DebitPolicy
	logger   *slog.Logger
}

// New creates the service. policy decides which balance an approval
// drains; an empty policy debits by withdrawal type.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	settings Settings,
	policy withdrawal.DebitPolicy,
	logger *slog.Logger,
) *Service {
	if policy == "" {
		policy = withdrawal.DebitByType
	}
	return &Service{uow: uow, bus: bus, settings: settings, policy: policy, logger: logger}
}

// RequestInput is what a user submits.
type RequestInput struct {
	Type          withdrawal.Type
	Amount        decimal.Decimal
	Currency      string
	WalletAddress string
}

// Request records a pending withdrawal. The site charge is deducted from
// the payout and amount may not exceed the balance it is drawn from.
func (s *Service) Request(
	ctx context.Context,
	userID uuid.UUID,
	in RequestInput,
) (*withdrawal.Withdrawal, error) {
	log := s.logger.With("context", "Request", "userID", userID, "type", in.Type)
	cfg, err := s.settings.SiteConfig(ctx)
	if err != nil {
		return nil, err
	}
	w, err := withdrawal.New(userID, in.Type, in.Amount, cfg.WithdrawalCharge, in.Currency, in.WalletAddress)
	if err != nil {
		return nil, err
	}
	field, err := w.Type.SourceField()
	if err != nil {
		return nil, err
	}
	var username string
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		u, err := uow.UserRepository().Get(ctx, userID)
		if err != nil {
			return err
		}
		username = u.Username
		if available := u.Balances.Get(field); available.LessThan(w.Amount) {
			return fmt.Errorf(
				"%w: %s has %s, requested %s",
				domain.ErrInsufficientFunds, field, available.StringFixed(2), w.Amount.StringFixed(2),
			)
		}
		if err := uow.WithdrawalRepository().Create(ctx, w); err != nil {
			return err
		}
		tx := transaction.New(userID, transaction.TypeWithdrawal, w.Amount, transaction.StatusPending, transaction.SourceWithdrawal, w.ID)
		return uow.TransactionRepository().Create(ctx, tx)
	})
	if err != nil {
		log.Warn("Withdrawal request refused", "error", err)
		return nil, err
	}
	log.Info("Withdrawal requested", "withdrawalID", w.ID, "amount", w.Amount.StringFixed(2))
	eventbus.Publish(ctx, s.bus, s.logger, events.WithdrawalRequested{
		Meta:           events.NewMeta(userID, username),
		WithdrawalID:   w.ID,
		Amount:         w.Amount,
		WithdrawalType: string(w.Type),
		Currency:       w.Currency,
	})
	return w, nil
}

// Approve pays out a pending withdrawal, debiting the field chosen by the
// debit policy. Insufficient funds at approval time fail the approval and
// leave the request pending.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	log := s.logger.With("context", "Approve", "withdrawalID", id, "policy", s.policy)
	var (
		w        *withdrawal.Withdrawal
		field    ledger.Field
		username string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		w, err = uow.WithdrawalRepository().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := w.Approve(time.Now()); err != nil {
			return err
		}
		if field, err = s.policy.Field(w); err != nil {
			return err
		}
		src := ledger.Source{Type: transaction.SourceWithdrawal, ID: w.ID, Reason: "withdrawal"}
		u, _, err := ledgersvc.Post(ctx, uow, w.UserID, src, ledger.DebitOp(field, w.Amount))
		if err != nil {
			return err
		}
		username = u.Username
		if err := uow.WithdrawalRepository().Update(ctx, w); err != nil {
			return err
		}
		return txsvc.SetStatusBySource(ctx, uow, s.logger, transaction.SourceWithdrawal, w.ID, transaction.StatusCompleted)
	})
	if err != nil {
		log.Warn("Withdrawal approval failed", "error", err)
		metrics.Decisions.WithLabelValues("withdrawal", "failed").Inc()
		return nil, err
	}
	log.Info("Withdrawal approved", "field", field, "amount", w.Amount.StringFixed(2))
	metrics.Decisions.WithLabelValues("withdrawal", "approved").Inc()
	eventbus.Publish(ctx, s.bus, s.logger, events.WithdrawalApproved{
		Meta:         events.NewMeta(w.UserID, username),
		WithdrawalID: w.ID,
		Amount:       w.Amount,
		Field:        string(field),
	})
	return w, nil
}

// Reject refuses a pending withdrawal without touching balances.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	log := s.logger.With("context", "Reject", "withdrawalID", id)
	var (
		w        *withdrawal.Withdrawal
		username string
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		w, err = uow.WithdrawalRepository().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := w.Reject(time.Now()); err != nil {
			return err
		}
		if err := uow.WithdrawalRepository().Update(ctx, w); err != nil {
			return err
		}
		u, err := uow.UserRepository().Get(ctx, w.UserID)
		if err != nil {
			return err
		}
		username = u.Username
		return txsvc.SetStatusBySource(ctx, uow, s.logger, transaction.SourceWithdrawal, w.ID, transaction.StatusRejected)
	})
	if err != nil {
		log.Warn("Withdrawal rejection failed", "error", err)
		return nil, err
	}
	log.Info("Withdrawal rejected")
	metrics.Decisions.WithLabelValues("withdrawal", "rejected").Inc()
	eventbus.Publish(ctx, s.bus, s.logger, events.WithdrawalRejected{
		Meta:         events.NewMeta(w.UserID, username),
		WithdrawalID: w.ID,
		Amount:       w.Amount,
	})
	return w, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*withdrawal.Withdrawal, error) {
	return s.uow.WithdrawalRepository().ListByUser(ctx, userID)
}

// List returns withdrawals in status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status withdrawal.Status) ([]*withdrawal.Withdrawal, error) {
	return s.uow.WithdrawalRepository().List(ctx, status)
}
