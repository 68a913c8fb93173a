// Package copytrade models expert traders and the positions that mirror them.
package copytrade

import (
	"fmt"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Profit is amount × dailyROI/100 × durationDays × progress/100, rounded to
// cents. progress is not clamped here.
func Profit(amount, dailyROI decimal.Decimal, durationDays int, progress decimal.Decimal) decimal.Decimal {
	return ledger.Round(
		amount.
			Mul(dailyROI.Div(hundred)).
			Mul(decimal.NewFromInt(int64(durationDays))).
			Mul(progress.Div(hundred)),
	)
}

type CopyTrade struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	TraderID        uuid.UUID       `json:"trader_id"`
	AmountCopying   decimal.Decimal `json:"amount_copying"`
	TradeProgress   decimal.Decimal `json:"trade_progress"`
	CurrentProfit   decimal.Decimal `json:"current_profit"`
	WithdrawnProfit decimal.Decimal `json:"withdrawn_profit"`
	Active          bool            `json:"active"`
	OpenedAt        time.Time       `json:"opened_at"`
	UpdatedAt       time.Time       `json:"updated"`
}

// Open starts copying t with amount.
func Open(userID uuid.UUID, t *Trader, amount decimal.Decimal) (*CopyTrade, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !t.Verified {
		return nil, fmt.Errorf("trader %s is not verified: %w", t.Name, domain.ErrInactive)
	}
	if amount.LessThan(t.MinDeposit) {
		return nil, fmt.Errorf(
			"%w: %s requires at least %s",
			domain.ErrInvalidAmount, t.Name, t.MinDeposit.StringFixed(2),
		)
	}
	now := time.Now().UTC()
	c := &CopyTrade{
		ID:            uuid.New(),
		UserID:        userID,
		TraderID:      t.ID,
		AmountCopying: amount,
		Active:        true,
		OpenedAt:      now,
		UpdatedAt:     now,
	}
	c.Recompute(t)
	return c, nil
}

// Recompute refreshes CurrentProfit from the trader's live figures. Called
// before every save.
func (c *CopyTrade) Recompute(t *Trader) {
	c.CurrentProfit = Profit(c.AmountCopying, t.DailyROI, t.DurationDays, c.TradeProgress)
	c.UpdatedAt = time.Now().UTC()
}

// SetProgress accepts 0..100.
func (c *CopyTrade) SetProgress(progress decimal.Decimal) error {
	if progress.IsNegative() || progress.GreaterThan(hundred) {
		return fmt.Errorf("%w: progress must be within 0..100", domain.ErrValidation)
	}
	c.TradeProgress = progress.Round(2)
	return nil
}

// ElapsedProgress is the share of the trader's period that has passed since
// the copy opened, capped at 100.
func (c *CopyTrade) ElapsedProgress(now time.Time, durationDays int) decimal.Decimal {
	if durationDays <= 0 {
		return hundred
	}
	elapsed := now.Sub(c.OpenedAt)
	if elapsed <= 0 {
		return decimal.Zero
	}
	total := time.Duration(durationDays) * 24 * time.Hour
	p := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(total))).Mul(hundred).Round(2)
	return decimal.Min(p, hundred)
}

// TopUp adds capital to an active copy.
func (c *CopyTrade) TopUp(amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if !c.Active {
		return fmt.Errorf("copy trade %s: %w", c.ID, domain.ErrInactive)
	}
	c.AmountCopying = c.AmountCopying.Add(amount)
	return nil
}

// Withdrawable is profit earned but not yet taken out.
func (c *CopyTrade) Withdrawable() decimal.Decimal {
	w := c.CurrentProfit.Sub(c.WithdrawnProfit)
	if w.IsNegative() {
		return decimal.Zero
	}
	return w
}

// WithdrawProfit books amount as taken out.
func (c *CopyTrade) WithdrawProfit(amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(c.Withdrawable()) {
		return fmt.Errorf(
			"%w: %s profit available",
			domain.ErrInsufficientFunds, c.Withdrawable().StringFixed(2),
		)
	}
	c.WithdrawnProfit = c.WithdrawnProfit.Add(amount)
	return nil
}
