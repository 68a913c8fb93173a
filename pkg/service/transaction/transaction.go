// Package transaction exposes the activity history and the helper the
// workflows use to move a linked transaction along with its source.
package transaction

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
)

// SetStatusBySource updates the transaction linked to (sourceType,
// sourceID) inside uow. Rows recorded before linking existed have no
// transaction; that is logged and tolerated.
func SetStatusBySource(
	ctx context.Context,
	uow repository.UnitOfWork,
	logger *slog.Logger,
	sourceType string,
	sourceID uuid.UUID,
	status transaction.Status,
) error {
	repo := uow.TransactionRepository()
	tx, err := repo.GetBySource(ctx, sourceType, sourceID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("No transaction linked", "sourceType", sourceType, "sourceID", sourceID)
		return nil
	}
	if err != nil {
		return err
	}
	return repo.UpdateStatus(ctx, tx.ID, status)
}

type Service struct {
	uow repository.UnitOfWork
}

func New(uow repository.UnitOfWork) *Service {
	return &Service{uow: uow}
}

// ListForUser returns the user's history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	return s.uow.TransactionRepository().ListByUser(ctx, userID)
}
