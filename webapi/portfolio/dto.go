package portfolio

import (
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//revive:disable

type PlanRequest struct {
	Name               string             `json:"name" validate:"required,max=100"`
	Percentage         decimal.Decimal    `json:"percentage"`
	ReferralCommission decimal.Decimal    `json:"referral_commission"`
	TradeFee           decimal.Decimal    `json:"trade_fee"`
	MinimumInvestment  decimal.Decimal    `json:"minimum_investment"`
	MaximumInvestment  decimal.Decimal    `json:"maximum_investment"`
	Active             bool               `json:"active"`
	PlanType           portfolio.PlanType `json:"plan_type" validate:"required,oneof=short long"`
	RecurringDays      int                `json:"recurring_days" validate:"gte=0"`
	Term               int                `json:"term" validate:"gte=0"`
	DurationMultiplier int                `json:"duration_multiplier" validate:"gte=0"`
}

func (r PlanRequest) toPlan() portfolio.Plan {
	return portfolio.Plan{
		Name:               r.Name,
		Percentage:         r.Percentage,
		ReferralCommission: r.ReferralCommission,
		TradeFee:           r.TradeFee,
		MinimumInvestment:  r.MinimumInvestment,
		MaximumInvestment:  r.MaximumInvestment,
		Active:             r.Active,
		PlanType:           r.PlanType,
		RecurringDays:      r.RecurringDays,
		Term:               r.Term,
		DurationMultiplier: r.DurationMultiplier,
	}
}

// InvestRequest opens a portfolio on a plan from the current deposit.
type InvestRequest struct {
	PlanID uuid.UUID       `json:"plan_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BotRequest pays for a trading bot on a portfolio.
type BotRequest struct {
	MethodID uuid.UUID `json:"method_id" validate:"required"`
}

// EditRequest is an administrator's overwrite of a portfolio.
type EditRequest struct {
	PlanID          uuid.UUID        `json:"plan_id" validate:"required"`
	AmountInvested  decimal.Decimal  `json:"amount_invested"`
	AmountAvailable decimal.Decimal  `json:"amount_available"`
	Profit          decimal.Decimal  `json:"profit"`
	Status          portfolio.Status `json:"status" validate:"required,oneof=active closed pending"`
	BotActive       bool             `json:"bot_active"`
	BotName         string           `json:"bot_name" validate:"max=100"`
}
