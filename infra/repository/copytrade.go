package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/copytrade"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type traderRepository struct {
	db *gorm.DB
}

func NewTraderRepository(db *gorm.DB) repo.TraderRepository {
	return &traderRepository{db: db}
}

func (r *traderRepository) Create(ctx context.Context, t *copytrade.Trader) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapTraderToModel(t)).Error
	})
}

func (r *traderRepository) Get(ctx context.Context, id uuid.UUID) (*copytrade.Trader, error) {
	var m Trader
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapTraderToDomain(&m), nil
}

func (r *traderRepository) Update(ctx context.Context, t *copytrade.Trader) error {
	res := r.db.WithContext(ctx).Model(&Trader{ID: t.ID}).
		Select(
			"name", "image", "duration_days", "total_investors", "active_investors",
			"min_deposit", "risk_level", "win_rate", "daily_roi",
			"trading_fee_percentage", "verified",
		).
		Updates(mapTraderToModel(t))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the trader and, through the foreign key, its copy trades.
func (r *traderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Trader{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *traderRepository) List(ctx context.Context, verifiedOnly bool) ([]*copytrade.Trader, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if verifiedOnly {
		q = q.Where("verified = ?", true)
	}
	var models []Trader
	if err := q.Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*copytrade.Trader, 0, len(models))
	for i := range models {
		result = append(result, mapTraderToDomain(&models[i]))
	}
	return result, nil
}

type copyTradeRepository struct {
	db *gorm.DB
}

// NewCopyTradeRepository creates a new copy trade repository backed by db.
func NewCopyTradeRepository(db *gorm.DB) repo.CopyTradeRepository {
	return &copyTradeRepository{db: db}
}

func (r *copyTradeRepository) Create(
	ctx context.Context,
	c *copytrade.CopyTrade,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapCopyTradeToModel(c)).Error
	})
}

func (r *copyTradeRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*copytrade.CopyTrade, error) {
	var m CopyTrade
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapCopyTradeToDomain(&m), nil
}

func (r *copyTradeRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*copytrade.CopyTrade, error) {
	var m CopyTrade
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapCopyTradeToDomain(&m), nil
}

func (r *copyTradeRepository) Update(
	ctx context.Context,
	c *copytrade.CopyTrade,
) error {
	res := r.db.WithContext(ctx).Model(&CopyTrade{ID: c.ID}).
		Select(
			"amount_copying", "trade_progress", "current_profit",
			"withdrawn_profit", "active", "updated_at",
		).
		Updates(mapCopyTradeToModel(c))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *copyTradeRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*copytrade.CopyTrade, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *copyTradeRepository) List(
	ctx context.Context,
	activeOnly bool,
) ([]*copytrade.CopyTrade, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	return r.find(q)
}

func (r *copyTradeRepository) ActiveTraderIDs(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&CopyTrade{}).
		Where("user_id = ? AND active = ?", userID, true).
		Distinct().
		Pluck("trader_id", &ids).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return ids, nil
}

func (r *copyTradeRepository) find(q *gorm.DB) ([]*copytrade.CopyTrade, error) {
	var models []CopyTrade
	if err := q.Order("opened_at DESC").Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*copytrade.CopyTrade, 0, len(models))
	for i := range models {
		result = append(result, mapCopyTradeToDomain(&models[i]))
	}
	return result, nil
}

func mapTraderToModel(t *copytrade.Trader) *Trader {
	return &Trader{
		ID:                   t.ID,
		Name:                 t.Name,
		Image:                t.Image,
		DurationDays:         t.DurationDays,
		TotalInvestors:       t.TotalInvestors,
		ActiveInvestors:      t.ActiveInvestors,
		MinDeposit:           t.MinDeposit,
		RiskLevel:            t.RiskLevel,
		WinRate:              t.WinRate,
		DailyROI:             t.DailyROI,
		TradingFeePercentage: t.TradingFeePercentage,
		Verified:             t.Verified,
		CreatedAt:            t.CreatedAt,
	}
}

func mapTraderToDomain(m *Trader) *copytrade.Trader {
	return &copytrade.Trader{
		ID:                   m.ID,
		Name:                 m.Name,
		Image:                m.Image,
		DurationDays:         m.DurationDays,
		TotalInvestors:       m.TotalInvestors,
		ActiveInvestors:      m.ActiveInvestors,
		MinDeposit:           m.MinDeposit,
		RiskLevel:            m.RiskLevel,
		WinRate:              m.WinRate,
		DailyROI:             m.DailyROI,
		TradingFeePercentage: m.TradingFeePercentage,
		Verified:             m.Verified,
		CreatedAt:            m.CreatedAt,
	}
}

func mapCopyTradeToModel(c *copytrade.CopyTrade) *CopyTrade {
	return &CopyTrade{
		ID:              c.ID,
		UserID:          c.UserID,
		TraderID:        c.TraderID,
		AmountCopying:   c.AmountCopying,
		TradeProgress:   c.TradeProgress,
		CurrentProfit:   c.CurrentProfit,
		WithdrawnProfit: c.WithdrawnProfit,
		Active:          c.Active,
		OpenedAt:        c.OpenedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func mapCopyTradeToDomain(m *CopyTrade) *copytrade.CopyTrade {
	return &copytrade.CopyTrade{
		ID:              m.ID,
		UserID:          m.UserID,
		TraderID:        m.TraderID,
		AmountCopying:   m.AmountCopying,
		TradeProgress:   m.TradeProgress,
		CurrentProfit:   m.CurrentProfit,
		WithdrawnProfit: m.WithdrawnProfit,
		Active:          m.Active,
		OpenedAt:        m.OpenedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
