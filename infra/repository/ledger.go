package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain/ledger"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) repo.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(
	ctx context.Context,
	records []*ledger.Record,
) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]LedgerEntry, 0, len(records))
	for _, rec := range records {
		models = append(models, LedgerEntry{
			ID:           rec.ID,
			UserID:       rec.UserID,
			Field:        string(rec.Field),
			Delta:        rec.Delta,
			BalanceAfter: rec.Balance,
			Reason:       rec.Reason,
			SourceType:   rec.SourceType,
			SourceID:     rec.SourceID,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&models).Error
	})
}

func (r *ledgerRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*ledger.Record, error) {
	var models []LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*ledger.Record, 0, len(models))
	for _, m := range models {
		result = append(result, &ledger.Record{
			ID:         m.ID,
			UserID:     m.UserID,
			Field:      ledger.Field(m.Field),
			Delta:      m.Delta,
			Balance:    m.BalanceAfter,
			Reason:     m.Reason,
			SourceType: m.SourceType,
			SourceID:   m.SourceID,
			CreatedAt:  m.CreatedAt,
		})
	}
	return result, nil
}
