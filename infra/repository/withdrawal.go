package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/withdrawal"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) repo.WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) Create(ctx context.Context, w *withdrawal.Withdrawal) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapWithdrawalToModel(w)).Error
	})
}

func (r *withdrawalRepository) Get(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	var m Withdrawal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapWithdrawalToDomain(&m), nil
}

func (r *withdrawalRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	var m Withdrawal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapWithdrawalToDomain(&m), nil
}

// Update persists the decision fields. Amounts are fixed at request time.
func (r *withdrawalRepository) Update(ctx context.Context, w *withdrawal.Withdrawal) error {
	res := r.db.WithContext(ctx).Model(&Withdrawal{ID: w.ID}).
		Select("status", "decided_at").
		Updates(mapWithdrawalToModel(w))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*withdrawal.Withdrawal, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *withdrawalRepository) List(ctx context.Context, status withdrawal.Status) ([]*withdrawal.Withdrawal, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return r.find(q)
}

func (r *withdrawalRepository) find(q *gorm.DB) ([]*withdrawal.Withdrawal, error) {
	var models []Withdrawal
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*withdrawal.Withdrawal, 0, len(models))
	for i := range models {
		result = append(result, mapWithdrawalToDomain(&models[i]))
	}
	return result, nil
}

func mapWithdrawalToModel(w *withdrawal.Withdrawal) *Withdrawal {
	return &Withdrawal{
		ID:                   w.ID,
		UserID:               w.UserID,
		Currency:             w.Currency,
		WalletAddress:        w.WalletAddress,
		Amount:               w.Amount,
		Charges:              w.Charges,
		AvailableForWithdraw: w.AvailableForWithdraw,
		WithdrawalType:       string(w.Type),
		Status:               string(w.Status),
		Ref:                  w.Ref,
		CreatedAt:            w.CreatedAt,
		DecidedAt:            w.DecidedAt,
	}
}

func mapWithdrawalToDomain(m *Withdrawal) *withdrawal.Withdrawal {
	return &withdrawal.Withdrawal{
		ID:                   m.ID,
		UserID:               m.UserID,
		Currency:             m.Currency,
		WalletAddress:        m.WalletAddress,
		Amount:               m.Amount,
		Charges:              m.Charges,
		AvailableForWithdraw: m.AvailableForWithdraw,
		Type:                 withdrawal.Type(m.WithdrawalType),
		Status:               withdrawal.Status(m.Status),
		Ref:                  m.Ref,
		CreatedAt:            m.CreatedAt,
		DecidedAt:            m.DecidedAt,
	}
}
