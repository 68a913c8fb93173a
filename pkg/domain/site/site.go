// Package site holds the singleton site configuration edited by admins.
package site

import (
	"fmt"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/shopspring/decimal"
)

type Config struct {
	WithdrawalCharge decimal.Decimal `json:"withdrawal_charge"`
	Email            string          `json:"email"`
	SiteName         string          `json:"site_name"`
	SiteMobile       string          `json:"site_mobile"`
	BotAmount        decimal.Decimal `json:"bot_amount"`
}

func (c *Config) Validate() error {
	if c.WithdrawalCharge.IsNegative() || c.BotAmount.IsNegative() {
		return fmt.Errorf("%w: site amounts must not be negative", domain.ErrValidation)
	}
	return nil
}
