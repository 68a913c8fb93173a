package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var planColumns = []string{
	"name", "percentage", "referral_commission", "trade_fee",
	"minimum_investment", "maximum_investment", "active", "plan_type",
	"recurring_days", "term", "duration_multiplier",
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) repo.PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, p *portfolio.Plan) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapPlanToModel(p)).Error
	})
}

func (r *planRepository) Get(ctx context.Context, id uuid.UUID) (*portfolio.Plan, error) {
	var m InvestmentPlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapPlanToDomain(&m), nil
}

func (r *planRepository) Update(ctx context.Context, p *portfolio.Plan) error {
	res := r.db.WithContext(ctx).Model(&InvestmentPlan{ID: p.ID}).
		Select(planColumns).
		Updates(mapPlanToModel(p))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete fails with domain.ErrInUse while portfolios reference the plan.
func (r *planRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&InvestmentPlan{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *planRepository) List(ctx context.Context, activeOnly bool) ([]*portfolio.Plan, error) {
	q := r.db.WithContext(ctx).Order("minimum_investment ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var models []InvestmentPlan
	if err := q.Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*portfolio.Plan, 0, len(models))
	for i := range models {
		result = append(result, mapPlanToDomain(&models[i]))
	}
	return result, nil
}

type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new portfolio repository backed by db.
func NewPortfolioRepository(db *gorm.DB) repo.PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) Create(
	ctx context.Context,
	p *portfolio.Portfolio,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapPortfolioToModel(p)).Error
	})
}

func (r *portfolioRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*portfolio.Portfolio, error) {
	var m Portfolio
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapPortfolioToDomain(&m), nil
}

func (r *portfolioRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*portfolio.Portfolio, error) {
	var m Portfolio
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapPortfolioToDomain(&m), nil
}

func (r *portfolioRepository) Update(
	ctx context.Context,
	p *portfolio.Portfolio,
) error {
	res := r.db.WithContext(ctx).Model(&Portfolio{ID: p.ID}).
		Select(
			"plan_id", "amount_invested", "amount_available", "profit",
			"status", "bot_active", "bot_name", "updated_at",
		).
		Updates(mapPortfolioToModel(p))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *portfolioRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*portfolio.Portfolio, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *portfolioRepository) List(
	ctx context.Context,
	status portfolio.Status,
) ([]*portfolio.Portfolio, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return r.find(q)
}

func (r *portfolioRepository) Count(
	ctx context.Context,
	status portfolio.Status,
) (int64, error) {
	q := r.db.WithContext(ctx).Model(&Portfolio{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var n int64
	err := q.Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func (r *portfolioRepository) find(q *gorm.DB) ([]*portfolio.Portfolio, error) {
	var models []Portfolio
	if err := q.Order("setup_date DESC").Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*portfolio.Portfolio, 0, len(models))
	for i := range models {
		result = append(result, mapPortfolioToDomain(&models[i]))
	}
	return result, nil
}

func mapPlanToModel(p *portfolio.Plan) *InvestmentPlan {
	return &InvestmentPlan{
		ID:                 p.ID,
		Name:               p.Name,
		Percentage:         p.Percentage,
		ReferralCommission: p.ReferralCommission,
		TradeFee:           p.TradeFee,
		MinimumInvestment:  p.MinimumInvestment,
		MaximumInvestment:  p.MaximumInvestment,
		Active:             p.Active,
		PlanType:           string(p.PlanType),
		RecurringDays:      p.RecurringDays,
		Term:               p.Term,
		DurationMultiplier: p.DurationMultiplier,
		CreatedAt:          p.CreatedAt,
	}
}

func mapPlanToDomain(m *InvestmentPlan) *portfolio.Plan {
	return &portfolio.Plan{
		ID:                 m.ID,
		Name:               m.Name,
		Percentage:         m.Percentage,
		ReferralCommission: m.ReferralCommission,
		TradeFee:           m.TradeFee,
		MinimumInvestment:  m.MinimumInvestment,
		MaximumInvestment:  m.MaximumInvestment,
		Active:             m.Active,
		PlanType:           portfolio.PlanType(m.PlanType),
		RecurringDays:      m.RecurringDays,
		Term:               m.Term,
		DurationMultiplier: m.DurationMultiplier,
		CreatedAt:          m.CreatedAt,
	}
}

func mapPortfolioToModel(p *portfolio.Portfolio) *Portfolio {
	return &Portfolio{
		ID:              p.ID,
		UserID:          p.UserID,
		PlanID:          p.PlanID,
		AmountInvested:  p.AmountInvested,
		AmountAvailable: p.AmountAvailable,
		Profit:          p.Profit,
		Status:          string(p.Status),
		BotActive:       p.BotActive,
		BotName:         p.BotName,
		SetupDate:       p.SetupDate,
		UpdatedAt:       p.UpdatedAt,
	}
}

func mapPortfolioToDomain(m *Portfolio) *portfolio.Portfolio {
	return &portfolio.Portfolio{
		ID:              m.ID,
		UserID:          m.UserID,
		PlanID:          m.PlanID,
		AmountInvested:  m.AmountInvested,
		AmountAvailable: m.AmountAvailable,
		Profit:          m.Profit,
		Status:          portfolio.Status(m.Status),
		BotActive:       m.BotActive,
		BotName:         m.BotName,
		SetupDate:       m.SetupDate,
		UpdatedAt:       m.UpdatedAt,
	}
}
