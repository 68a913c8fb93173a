// Package ledger posts balance changes and reconciles stored balances
// against the entry log.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/metrics"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
)

// Post applies ops to the user's balances inside uow, which must already be
// transactional. The row is read under a write lock, written back with a
// version check and every resulting entry is appended to the ledger.
// The returned user carries the new balances and version.
func Post(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
	src ledger.Source,
	ops ...ledger.Op,
) (*user.User, []ledger.Entry, error) {
	users := uow.UserRepository()
	u, err := users.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	entries, err := u.Balances.Apply(ops...)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return u, nil, nil
	}
	if err := users.UpdateBalances(ctx, u.ID, u.Balances, u.Version); err != nil {
		return nil, nil, err
	}
	u.Version++
	if err := uow.LedgerRepository().Append(ctx, ledger.NewRecords(u.ID, src, entries)); err != nil {
		return nil, nil, fmt.Errorf("append ledger entries: %w", err)
	}
	for _, e := range entries {
		metrics.ObservePosting(string(e.Field), e.Delta)
	}
	return u, entries, nil
}

// Service exposes ledger reads and admin adjustments.
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

// Entries lists the user's ledger, oldest first.
func (s *Service) Entries(
	ctx context.Context,
	userID uuid.UUID,
) ([]*ledger.Record, error) {
	return s.uow.LedgerRepository().ListByUser(ctx, userID)
}

// Reconcile reports fields whose stored balance differs from the sum of
// their entries. An empty result means the user is consistent.
func (s *Service) Reconcile(
	ctx context.Context,
	userID uuid.UUID,
) ([]ledger.Drift, error) {
	log := s.logger.With("userID", userID)
	var drift []ledger.Drift
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		u, err := uow.UserRepository().Get(ctx, userID)
		if err != nil {
			return err
		}
		records, err := uow.LedgerRepository().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		drift = ledger.Reconcile(u.Balances, ledger.Entries(records))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(drift) > 0 {
		log.Warn("Ledger drift detected", "fields", len(drift))
	}
	return drift, nil
}

// SetBalances overwrites the user's balances, recording each changed field
// as an adjustment entry.
func (s *Service) SetBalances(
	ctx context.Context,
	userID uuid.UUID,
	target ledger.Balances,
) (*user.User, error) {
	log := s.logger.With("userID", userID)
	var updated *user.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		src := ledger.Source{Type: transaction.SourceAdmin, ID: userID, Reason: "adjustment"}
		u, _, err := Post(ctx, uow, userID, src, ledger.SetOp(target))
		updated = u
		return err
	})
	if err != nil {
		log.Error("Balance adjustment failed", "error", err)
		return nil, err
	}
	log.Info("Balances adjusted")
	return updated, nil
}
