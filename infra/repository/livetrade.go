package repository

import (
	"context"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/livetrade"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type liveTradeRepository struct {
	db *gorm.DB
}

// NewLiveTradeRepository creates a new live trade repository backed by db.
func NewLiveTradeRepository(db *gorm.DB) repo.LiveTradeRepository {
	return &liveTradeRepository{db: db}
}

func (r *liveTradeRepository) Create(
	ctx context.Context,
	t *livetrade.LiveTrade,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapLiveTradeToModel(t)).Error
	})
}

func (r *liveTradeRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*livetrade.LiveTrade, error) {
	var m LiveTrade
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapLiveTradeToDomain(&m), nil
}

func (r *liveTradeRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*livetrade.LiveTrade, error) {
	var m LiveTrade
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapLiveTradeToDomain(&m), nil
}

func (r *liveTradeRepository) Update(
	ctx context.Context,
	t *livetrade.LiveTrade,
) error {
	res := r.db.WithContext(ctx).Model(&LiveTrade{ID: t.ID}).
		Select("amount", "entry_price", "exit_price", "profit", "outcome", "is_open").
		Updates(mapLiveTradeToModel(t))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *liveTradeRepository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&LiveTrade{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *liveTradeRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*livetrade.LiveTrade, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID), "opened_at DESC")
}

func (r *liveTradeRepository) ListExpired(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*livetrade.LiveTrade, error) {
	q := r.db.WithContext(ctx).Where("is_open = ? AND closed_at <= ?", true, now.UTC())
	if userID != uuid.Nil {
		q = q.Where("user_id = ?", userID)
	}
	return r.find(q, "closed_at ASC")
}

func (r *liveTradeRepository) find(q *gorm.DB, order string) ([]*livetrade.LiveTrade, error) {
	var models []LiveTrade
	if err := q.Order(order).Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*livetrade.LiveTrade, 0, len(models))
	for i := range models {
		result = append(result, mapLiveTradeToDomain(&models[i]))
	}
	return result, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func mapLiveTradeToModel(t *livetrade.LiveTrade) *LiveTrade {
	return &LiveTrade{
		ID:              t.ID,
		UserID:          t.UserID,
		TraderID:        t.TraderID,
		Ticker:          t.Ticker,
		Striker:         t.Striker,
		IntervalSeconds: int64(t.Interval / time.Second),
		Side:            string(t.Side),
		Category:        string(t.Category),
		Amount:          t.Amount,
		EntryPrice:      nullDecimal(t.EntryPrice),
		ExitPrice:       nullDecimal(t.ExitPrice),
		Profit:          t.Profit,
		Outcome:         string(t.Outcome),
		Open:            t.Open,
		AdminCreated:    t.AdminCreated,
		OpenedAt:        t.OpenedAt,
		ClosedAt:        t.ClosedAt,
	}
}

func mapLiveTradeToDomain(m *LiveTrade) *livetrade.LiveTrade {
	return &livetrade.LiveTrade{
		ID:           m.ID,
		UserID:       m.UserID,
		TraderID:     m.TraderID,
		Ticker:       m.Ticker,
		Striker:      m.Striker,
		Interval:     time.Duration(m.IntervalSeconds) * time.Second,
		Side:         livetrade.Side(m.Side),
		Category:     livetrade.Category(m.Category),
		Amount:       m.Amount,
		EntryPrice:   decimalPtr(m.EntryPrice),
		ExitPrice:    decimalPtr(m.ExitPrice),
		Profit:       m.Profit,
		Outcome:      livetrade.Outcome(m.Outcome),
		Open:         m.Open,
		AdminCreated: m.AdminCreated,
		OpenedAt:     m.OpenedAt,
		ClosedAt:     m.ClosedAt,
	}
}
