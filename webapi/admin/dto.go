package admin

import "github.com/shopspring/decimal"

// SiteConfigRequest replaces the site settings.
type SiteConfigRequest struct {
	WithdrawalCharge decimal.Decimal `json:"withdrawal_charge"`
	Email            string          `json:"email" validate:"omitempty,email,max=100"`
	SiteName         string          `json:"site_name" validate:"required,max=100"`
	SiteMobile       string          `json:"site_mobile" validate:"max=30"`
	BotAmount        decimal.Decimal `json:"bot_amount"`
}
