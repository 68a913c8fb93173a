package repository

import (
	"context"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/transaction"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository backed by db.
func NewTransactionRepository(db *gorm.DB) repo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(
	ctx context.Context,
	tx *transaction.Transaction,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapTransactionToModel(tx)).Error
	})
}

func (r *transactionRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*transaction.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapTransactionToDomain(&m), nil
}

func (r *transactionRepository) GetBySource(
	ctx context.Context,
	sourceType string,
	sourceID uuid.UUID,
) (*transaction.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapTransactionToDomain(&m), nil
}

func (r *transactionRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status transaction.Status,
) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*transaction.Transaction, error) {
	var models []Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*transaction.Transaction, 0, len(models))
	for i := range models {
		result = append(result, mapTransactionToDomain(&models[i]))
	}
	return result, nil
}

func mapTransactionToModel(tx *transaction.Transaction) *Transaction {
	return &Transaction{
		ID:         tx.ID,
		UserID:     tx.UserID,
		Type:       string(tx.Type),
		Amount:     tx.Amount,
		Status:     string(tx.Status),
		Ref:        tx.Ref,
		SourceType: tx.SourceType,
		SourceID:   tx.SourceID,
		Date:       tx.Date,
		UpdatedAt:  tx.UpdatedAt,
	}
}

func mapTransactionToDomain(m *Transaction) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         m.ID,
		UserID:     m.UserID,
		Type:       transaction.Type(m.Type),
		Amount:     m.Amount,
		Status:     transaction.Status(m.Status),
		Ref:        m.Ref,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
		Date:       m.Date,
		UpdatedAt:  m.UpdatedAt,
	}
}
