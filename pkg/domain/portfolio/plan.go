package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanType string

const (
	PlanShort PlanType = "short"
	PlanLong  PlanType = "long"
)

// Plan is an admin-defined investment product.
type Plan struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	Percentage         decimal.Decimal `json:"percentage"`
	ReferralCommission decimal.Decimal `json:"referral_commission"`
	TradeFee           decimal.Decimal `json:"trade_fee"`
	MinimumInvestment  decimal.Decimal `json:"minimum_investment"`
	// MaximumInvestment of zero means unbounded.
	MaximumInvestment  decimal.Decimal `json:"maximum_investment"`
	Active             bool            `json:"active"`
	PlanType           PlanType        `json:"plan_type"`
	RecurringDays      int             `json:"recurring_days"`
	Term               int             `json:"term"`
	DurationMultiplier int             `json:"duration_multiplier"`
	CreatedAt          time.Time       `json:"created"`
}

// Validate checks the plan's own consistency.
func (p *Plan) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: plan name is required", domain.ErrValidation)
	case len(p.Name) > 20:
		return fmt.Errorf("%w: plan name is limited to 20 characters", domain.ErrValidation)
	case p.Percentage.IsNegative(), p.ReferralCommission.IsNegative(), p.TradeFee.IsNegative():
		return fmt.Errorf("%w: rates must not be negative", domain.ErrValidation)
	case p.MinimumInvestment.IsNegative(), p.MaximumInvestment.IsNegative():
		return fmt.Errorf("%w: investment bounds must not be negative", domain.ErrValidation)
	case p.MaximumInvestment.IsPositive() && p.MaximumInvestment.LessThan(p.MinimumInvestment):
		return fmt.Errorf("%w: maximum investment must be greater than or equal to minimum investment", domain.ErrValidation)
	case p.PlanType != PlanShort && p.PlanType != PlanLong:
		return fmt.Errorf("%w: plan type must be short or long", domain.ErrValidation)
	case p.RecurringDays < 1 || p.Term < 1:
		return fmt.Errorf("%w: recurring days and term must be at least 1", domain.ErrValidation)
	}
	switch p.DurationMultiplier {
	case 1, 7, 30:
	default:
		return fmt.Errorf("%w: duration multiplier must be 1, 7 or 30", domain.ErrValidation)
	}
	return nil
}

// Accepts checks amount against the plan's bounds.
func (p *Plan) Accepts(amount decimal.Decimal) error {
	if !p.Active {
		return fmt.Errorf("plan %s: %w", p.Name, domain.ErrInactive)
	}
	if amount.LessThan(p.MinimumInvestment) {
		return fmt.Errorf("%w: minimum investment for %s is %s", domain.ErrInvalidAmount, p.Name, p.MinimumInvestment.StringFixed(2))
	}
	if p.MaximumInvestment.IsPositive() && amount.GreaterThan(p.MaximumInvestment) {
		return fmt.Errorf("%w: maximum investment for %s is %s", domain.ErrInvalidAmount, p.Name, p.MaximumInvestment.StringFixed(2))
	}
	return nil
}

// DurationDays is term expressed in days.
func (p *Plan) DurationDays() int {
	return p.Term * p.DurationMultiplier
}
