package copytrade

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTradingFee is applied when an expert is created without one.
var DefaultTradingFee = decimal.NewFromInt(10)

// Trader is an expert users can copy.
type Trader struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Image                string          `json:"image,omitempty"`
	DurationDays         int             `json:"duration_days"`
	TotalInvestors       int             `json:"total_investors"`
	ActiveInvestors      int             `json:"active_investors"`
	MinDeposit           decimal.Decimal `json:"min_deposit"`
	RiskLevel            decimal.Decimal `json:"risk_level"`
	WinRate              decimal.Decimal `json:"win_rate"`
	DailyROI             decimal.Decimal `json:"daily_roi"`
	TradingFeePercentage decimal.Decimal `json:"trading_fee_percentage"`
	Verified             bool            `json:"verified"`
	CreatedAt            time.Time       `json:"created"`
}

// DurationDays converts an admin-entered period to days. A month counts as
// four weeks.
func DurationDays(value int, period string) (int, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	}
	switch strings.ToLower(period) {
	case "days", "day":
		return value, nil
	case "weeks", "week", "":
		return value * 7, nil
	case "months", "month":
		return value * 28, nil
	}
	return 0, fmt.Errorf("%w: unknown duration period %q", domain.ErrValidation, period)
}

// Validate checks the trader's numeric fields.
func (t *Trader) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	switch {
	case t.Name == "":
		return fmt.Errorf("%w: trader name is required", domain.ErrValidation)
	case t.DurationDays <= 0:
		return fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	case t.MinDeposit.IsNegative(), t.DailyROI.IsNegative(), t.RiskLevel.IsNegative():
		return fmt.Errorf("%w: trader figures must not be negative", domain.ErrValidation)
	case t.WinRate.IsNegative() || t.WinRate.GreaterThan(decimal.NewFromInt(100)):
		return fmt.Errorf("%w: win rate must be within 0..100", domain.ErrValidation)
	case t.TradingFeePercentage.IsNegative() || t.TradingFeePercentage.GreaterThan(decimal.NewFromInt(100)):
		return fmt.Errorf("%w: trading fee must be within 0..100", domain.ErrValidation)
	case t.TotalInvestors < 0 || t.ActiveInvestors < 0:
		return fmt.Errorf("%w: investor counts must not be negative", domain.ErrValidation)
	}
	return nil
}
